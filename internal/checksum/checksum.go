// Package checksum computes streaming MD5 digests for upload integrity
// headers.
package checksum

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
)

// chunkSize bounds memory while hashing arbitrarily large content.
const chunkSize = 64 * 1024

// Digest holds both encodings of an MD5 sum plus the byte count that
// produced it. Hex is used for cache validation (ETag), Base64 for the
// storage backend's Content-MD5 field.
type Digest struct {
	Hex    string
	Base64 string
	Size   int64
}

// Sum consumes r to EOF and returns its MD5 digest and size.
//
// The reader is read exactly once, in order, and is not rewound; callers
// that need to re-read the content must seek back themselves.
func Sum(r io.Reader) (Digest, error) {
	h := md5.New()
	buf := make([]byte, chunkSize)
	n, err := io.CopyBuffer(h, r, buf)
	if err != nil {
		return Digest{}, fmt.Errorf("checksum: read content: %w", err)
	}
	sum := h.Sum(nil)
	return Digest{
		Hex:    hex.EncodeToString(sum),
		Base64: base64.StdEncoding.EncodeToString(sum),
		Size:   n,
	}, nil
}
