// Package formstream encodes multipart/form-data request bodies without
// buffering file content in memory.
//
// The storage backends that terminate package uploads reject chunked
// transfer encoding, so the encoder computes the exact Content-Length of
// the body before any byte is produced: every static part is measured up
// front and the file part's size must be known. The body itself is
// streamed through a plain io.Reader, one pass, not restartable.
package formstream

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ErrShortFile is returned when the file content ends before the declared
// size has been streamed. The declared Content-Length is already on the
// wire at that point, so the request cannot be salvaged.
var ErrShortFile = errors.New("formstream: file content shorter than declared size")

// Field is a single form field. Fields are encoded in slice order because
// the storage backend validates hash-related fields positionally.
type Field struct {
	Name  string
	Value string
}

// FilePart describes the single binary part of the form.
type FilePart struct {
	// FieldName is the form field name, typically "file".
	FieldName string

	// Filename is sent in the part's Content-Disposition header.
	Filename string

	// ContentType of the part. Empty defaults to application/octet-stream.
	ContentType string

	// Content is read exactly once while the body streams.
	Content io.Reader

	// Size must be the exact number of bytes Content will yield.
	Size int64
}

// Progress reports cumulative bytes produced by the encoder.
type Progress struct {
	Sent  int64
	Total int64
}

// ProgressFunc receives a Progress after each chunk of the body is read.
// A panicking callback is recovered and logged; it never aborts the
// transfer.
type ProgressFunc func(Progress)

// Option configures an Encoder.
type Option func(*Encoder)

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Encoder) {
		e.progress = fn
	}
}

// WithLogger sets the logger used to report swallowed callback panics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Encoder) {
		e.logger = logger
	}
}

// Encoder streams a multipart/form-data body. Create one with NewEncoder;
// the zero value is not usable.
type Encoder struct {
	boundary string
	total    int64
	body     io.Reader
	fileSize int64

	sent     int64
	progress ProgressFunc
	logger   *slog.Logger
}

// NewEncoder builds an encoder for the given fields followed by one file
// part. The fields are framed in the order given.
func NewEncoder(fields []Field, file FilePart, opts ...Option) (*Encoder, error) {
	if file.Content == nil {
		return nil, errors.New("formstream: file content is nil")
	}
	if file.Size < 0 {
		return nil, fmt.Errorf("formstream: negative file size %d", file.Size)
	}

	e := &Encoder{fileSize: file.Size}
	for _, opt := range opts {
		opt(e)
	}

	boundary, err := randomBoundary()
	if err != nil {
		return nil, err
	}
	e.boundary = boundary

	fieldName := file.FieldName
	if fieldName == "" {
		fieldName = "file"
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var head bytes.Buffer
	for _, f := range fields {
		fmt.Fprintf(&head, "--%s\r\nContent-Disposition: form-data; name=\"%s\"\r\n\r\n%s\r\n",
			boundary, escapeQuotes(f.Name), f.Value)
	}
	fmt.Fprintf(&head, "--%s\r\nContent-Disposition: form-data; name=\"%s\"; filename=\"%s\"\r\nContent-Type: %s\r\n\r\n",
		boundary, escapeQuotes(fieldName), escapeQuotes(file.Filename), contentType)

	tail := fmt.Sprintf("\r\n--%s--\r\n", boundary)

	e.total = int64(head.Len()) + file.Size + int64(len(tail))
	e.body = io.MultiReader(
		bytes.NewReader(head.Bytes()),
		&exactReader{r: file.Content, remaining: file.Size},
		strings.NewReader(tail),
	)
	return e, nil
}

// ContentType returns the multipart media type carrying the generated
// boundary.
func (e *Encoder) ContentType() string {
	return "multipart/form-data; boundary=" + e.boundary
}

// ContentLength returns the exact number of bytes the body will produce.
func (e *Encoder) ContentLength() int64 {
	return e.total
}

// Read streams the next chunk of the encoded body.
func (e *Encoder) Read(p []byte) (int, error) {
	n, err := e.body.Read(p)
	if n > 0 {
		e.sent += int64(n)
		e.report()
	}
	return n, err
}

func (e *Encoder) report() {
	if e.progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.log().Warn("progress callback panicked", "panic", r)
		}
	}()
	e.progress(Progress{Sent: e.sent, Total: e.total})
}

func (e *Encoder) log() *slog.Logger {
	if e.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e.logger
}

// exactReader yields exactly remaining bytes from r. A longer source is
// truncated; a shorter one fails with ErrShortFile.
type exactReader struct {
	r         io.Reader
	remaining int64
}

func (x *exactReader) Read(p []byte) (int, error) {
	if x.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > x.remaining {
		p = p[:x.remaining]
	}
	n, err := x.r.Read(p)
	x.remaining -= int64(n)
	if err == io.EOF && x.remaining > 0 {
		return n, ErrShortFile
	}
	if err == io.EOF && x.remaining == 0 {
		return n, io.EOF
	}
	return n, err
}

func randomBoundary() (string, error) {
	var buf [15]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("formstream: generate boundary: %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
