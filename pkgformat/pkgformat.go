// Package pkgformat recognizes the package formats hosted on
// anaconda.org style repositories and extracts metadata from conda
// archives. Callers use it to fill in a distribution type and attributes
// before uploading.
package pkgformat

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format identifies a recognized package format.
type Format int

const (
	FormatUnknown Format = iota

	// FormatCondaV1 is the classic .tar.bz2 conda package.
	FormatCondaV1

	// FormatCondaV2 is the .conda package: a zip container holding
	// zstd-compressed tarballs.
	FormatCondaV2

	// FormatWheel is a Python wheel.
	FormatWheel

	// FormatSDist is a Python source distribution.
	FormatSDist
)

func (f Format) String() string {
	switch f {
	case FormatCondaV1:
		return "conda (tar.bz2)"
	case FormatCondaV2:
		return "conda (v2)"
	case FormatWheel:
		return "wheel"
	case FormatSDist:
		return "sdist"
	default:
		return "unknown"
	}
}

// DistributionType returns the repository's distribution type string for
// the format, "file" for anything unrecognized.
func (f Format) DistributionType() string {
	switch f {
	case FormatCondaV1, FormatCondaV2:
		return "conda"
	case FormatWheel, FormatSDist:
		return "pypi"
	default:
		return "file"
	}
}

// detectHeader is the amount read for magic-byte sniffing, matching the
// mimetype library's default read limit.
const detectHeader = 3072

// Detect determines the package format from the file name and leading
// magic bytes. The reader is rewound to its original offset.
func Detect(filename string, r io.ReadSeeker) (Format, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return FormatUnknown, fmt.Errorf("pkgformat: seek: %w", err)
	}
	header := make([]byte, detectHeader)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return FormatUnknown, fmt.Errorf("pkgformat: read header: %w", err)
	}
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return FormatUnknown, fmt.Errorf("pkgformat: rewind: %w", err)
	}
	header = header[:n]

	mtype := mimetype.Detect(header)
	name := strings.ToLower(path.Base(filename))

	switch {
	case strings.HasSuffix(name, ".conda") && mtype.Is("application/zip"):
		return FormatCondaV2, nil
	case strings.HasSuffix(name, ".tar.bz2") && mtype.Is("application/x-bzip2"):
		return FormatCondaV1, nil
	case strings.HasSuffix(name, ".whl") && mtype.Is("application/zip"):
		return FormatWheel, nil
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		if mtype.Is("application/gzip") {
			return FormatSDist, nil
		}
	case strings.HasSuffix(name, ".zip") && mtype.Is("application/zip"):
		return FormatSDist, nil
	}
	return FormatUnknown, nil
}

// ContentType sniffs the media type of the leading bytes, rewinding the
// reader. It is used for the file part of multipart uploads.
func ContentType(r io.ReadSeeker) (string, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return "", fmt.Errorf("pkgformat: seek: %w", err)
	}
	header := make([]byte, detectHeader)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("pkgformat: read header: %w", err)
	}
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return "", fmt.Errorf("pkgformat: rewind: %w", err)
	}
	return mimetype.Detect(header[:n]).String(), nil
}
