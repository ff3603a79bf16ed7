package formstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Fields is an ordered set of form fields. It unmarshals from a JSON
// object preserving key order, which encoding/json maps discard; the
// storage backend's presigned policy checks fields positionally, so the
// order the stage response sent them in must survive the round trip.
type Fields []Field

// UnmarshalJSON decodes a JSON object into fields in document order.
// Non-string scalar values are kept in their literal form (numbers do not
// gain a trailing ".0").
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("formstream: decode fields: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("formstream: decode fields: expected object, got %v", tok)
	}

	out := Fields{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("formstream: decode fields: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("formstream: decode fields: non-string key %v", keyTok)
		}

		var val any
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("formstream: decode field %q: %w", key, err)
		}
		s, err := stringifyValue(val)
		if err != nil {
			return fmt.Errorf("formstream: field %q: %w", key, err)
		}
		out = append(out, Field{Name: key, Value: s})
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return fmt.Errorf("formstream: decode fields: %w", err)
	}

	*f = out
	return nil
}

// Set replaces the named field's value in place, or appends a new field
// when the name is absent.
func (f *Fields) Set(name, value string) {
	for i := range *f {
		if (*f)[i].Name == name {
			(*f)[i].Value = value
			return
		}
	}
	*f = append(*f, Field{Name: name, Value: value})
}

// Get returns the named field's value.
func (f Fields) Get(name string) (string, bool) {
	for _, field := range f {
		if field.Name == name {
			return field.Value, true
		}
	}
	return "", false
}

func stringifyValue(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		if t {
			return "true", nil
		}
		return "false", nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
