package pkgformat

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ErrNoMetadata is returned when an archive has no info/index.json entry.
var ErrNoMetadata = errors.New("pkgformat: no info/index.json in archive")

// CondaInfo is the metadata conda build writes to info/index.json.
type CondaInfo struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Build       string   `json:"build"`
	BuildNumber int      `json:"build_number"`
	Depends     []string `json:"depends"`
	License     string   `json:"license"`
	Platform    string   `json:"platform"`
	Subdir      string   `json:"subdir"`
}

// Attrs returns the metadata as upload attributes, mirroring the fields
// the repository indexes for conda distributions.
func (ci *CondaInfo) Attrs() map[string]any {
	return map[string]any{
		"name":         ci.Name,
		"version":      ci.Version,
		"build":        ci.Build,
		"build_number": ci.BuildNumber,
		"depends":      ci.Depends,
		"license":      ci.License,
		"platform":     ci.Platform,
		"subdir":       ci.Subdir,
	}
}

// InspectConda reads info/index.json from a .conda (v2) archive: a zip
// container whose info-*.tar.zst member is a zstd-compressed tarball.
func InspectConda(r io.ReaderAt, size int64) (*CondaInfo, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("pkgformat: open conda container: %w", err)
	}

	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "info-") || !strings.HasSuffix(f.Name, ".tar.zst") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("pkgformat: open %s: %w", f.Name, err)
		}
		defer rc.Close()

		zstdReader, err := zstd.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("pkgformat: decompress %s: %w", f.Name, err)
		}
		defer zstdReader.Close()

		return readIndexJSON(tar.NewReader(zstdReader))
	}
	return nil, ErrNoMetadata
}

// InspectCondaV1 reads info/index.json from a classic .tar.bz2 conda
// package.
func InspectCondaV1(r io.Reader) (*CondaInfo, error) {
	return readIndexJSON(tar.NewReader(bzip2.NewReader(r)))
}

func readIndexJSON(tr *tar.Reader) (*CondaInfo, error) {
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, ErrNoMetadata
		}
		if err != nil {
			return nil, fmt.Errorf("pkgformat: read archive: %w", err)
		}
		if hdr.Name != "info/index.json" {
			continue
		}
		var info CondaInfo
		if err := json.NewDecoder(tr).Decode(&info); err != nil {
			return nil, fmt.Errorf("pkgformat: decode info/index.json: %w", err)
		}
		return &info, nil
	}
}
