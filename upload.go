package anaconda

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/Saraiah-TiPeAnCo-Wilson/anaconda-client/formstream"
	"github.com/Saraiah-TiPeAnCo-Wilson/anaconda-client/internal/checksum"
	"github.com/Saraiah-TiPeAnCo-Wilson/anaconda-client/pkgformat"
)

// Digest is a precomputed MD5 over upload content.
type Digest = checksum.Digest

// Dependency names a package the uploaded distribution depends on.
type Dependency struct {
	Name  string   `json:"name"`
	Specs []string `json:"specs,omitempty"`
}

// UploadRequest describes one distribution upload. It is not mutated by
// Upload.
type UploadRequest struct {
	Owner    string
	Package  string
	Release  string
	Basename string

	// Content is the distribution file. It is read at most once end to
	// end: when no Digest is supplied it must be an io.ReadSeeker so the
	// hashing pass can rewind before the transfer pass.
	Content io.Reader

	// DistributionType, e.g. "conda" or "pypi". When empty and Content
	// is seekable it is detected from the file's magic bytes.
	DistributionType string

	Description  string
	Attrs        map[string]any
	Dependencies []Dependency

	// Channels the distribution is published to. Defaults to ["main"].
	Channels []string

	// Digest skips the hashing phase when supplied. Size is consulted
	// when Digest carries no byte count.
	Digest *Digest
	Size   int64

	// ContentType of the file part. Detected from content when empty
	// and Content is seekable, otherwise application/octet-stream.
	ContentType string

	// Progress observes the storage transfer.
	Progress ProgressFunc
}

// stagedUpload is the server-issued storage target. It lives only
// between the stage response and the commit call.
type stagedUpload struct {
	PostURL  string            `json:"post_url"`
	FormData formstream.Fields `json:"form_data"`
	DistID   string            `json:"dist_id"`
}

// Upload adds a new distribution to a package release.
//
// Three phases run sequentially: a stage call reserving a presigned
// storage target, a streamed multipart POST of the content to that
// target, and a commit call finalizing the release file. Each phase's
// failure aborts the remainder; a storage failure leaves the staged entry
// orphaned server-side and surfaces as *UploadError, while a commit
// failure means the content was stored but the release is not finalized.
// Re-invoking Upload after any failure starts a fresh stage.
//
// The committed release file's JSON document is returned.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (map[string]any, error) {
	if err := c.validateUpload(&req); err != nil {
		return nil, err
	}

	distType := req.DistributionType
	if distType == "" {
		format, err := c.detectFormat(req)
		if err != nil {
			return nil, err
		}
		distType = format.DistributionType()
		c.log().Debug("detected distribution type", "basename", req.Basename, "type", distType)
	}

	// Phase 1: stage.
	staged, err := c.stage(ctx, req, distType)
	if err != nil {
		return nil, err
	}

	// Phase 2: hash, unless the caller brought a digest.
	digest, size, err := c.resolveDigest(req)
	if err != nil {
		return nil, err
	}
	staged.FormData.Set("Content-Length", strconv.FormatInt(size, 10))
	staged.FormData.Set("Content-MD5", digest)

	// Phase 3: transfer to storage.
	if err := c.transfer(ctx, req, staged, size); err != nil {
		return nil, err
	}

	// Phase 4: commit.
	return c.commit(ctx, req, staged.DistID)
}

func (c *Client) validateUpload(req *UploadRequest) error {
	switch {
	case req.Owner == "":
		return &ValidationError{Reason: "owner is required"}
	case req.Package == "":
		return &ValidationError{Reason: "package is required"}
	case req.Release == "":
		return &ValidationError{Reason: "release is required"}
	case req.Basename == "":
		return &ValidationError{Reason: "basename is required"}
	case req.Content == nil:
		return &ValidationError{Reason: "content is required"}
	}
	return nil
}

func (c *Client) detectFormat(req UploadRequest) (pkgformat.Format, error) {
	seeker, ok := req.Content.(io.ReadSeeker)
	if !ok {
		return pkgformat.FormatUnknown, &ValidationError{
			Reason: "distribution type is required for non-seekable content",
		}
	}
	format, err := pkgformat.Detect(req.Basename, seeker)
	if err != nil {
		return pkgformat.FormatUnknown, err
	}
	return format, nil
}

func (c *Client) stage(ctx context.Context, req UploadRequest, distType string) (*stagedUpload, error) {
	attrs := req.Attrs
	if attrs == nil {
		attrs = map[string]any{}
	}
	channels := req.Channels
	if len(channels) == 0 {
		channels = []string{"main"}
	}

	payload := map[string]any{
		"distribution_type": distType,
		"description":       req.Description,
		"attrs":             attrs,
		"dependencies":      req.Dependencies,
		"channels":          channels,
	}

	var staged stagedUpload
	path := apiPath("stage", req.Owner, req.Package, req.Release, req.Basename)
	if err := c.rest.Request(ctx, http.MethodPost, path, payload, &staged); err != nil {
		return nil, err
	}
	if staged.PostURL == "" || staged.DistID == "" {
		return nil, fmt.Errorf("anaconda: stage response missing post_url or dist_id")
	}
	return &staged, nil
}

// resolveDigest returns the base64 Content-MD5 and byte size for the
// content, hashing it when the caller supplied no digest. Hashing
// consumes the stream once and seeks back to the original offset; the
// transfer phase then consumes it again.
func (c *Client) resolveDigest(req UploadRequest) (string, int64, error) {
	if req.Digest != nil {
		size := req.Digest.Size
		if size == 0 && req.Size > 0 {
			size = req.Size
		}
		if size == 0 {
			probed, err := probeSize(req.Content)
			if err != nil {
				return "", 0, err
			}
			size = probed
		}
		return req.Digest.Base64, size, nil
	}

	seeker, ok := req.Content.(io.ReadSeeker)
	if !ok {
		return "", 0, &ValidationError{
			Reason: "content must be seekable unless a digest and size are supplied",
		}
	}
	start, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return "", 0, fmt.Errorf("anaconda: seek content: %w", err)
	}
	d, err := checksum.Sum(seeker)
	if err != nil {
		return "", 0, err
	}
	if _, err := seeker.Seek(start, io.SeekStart); err != nil {
		return "", 0, fmt.Errorf("anaconda: rewind content after hashing: %w", err)
	}
	return d.Base64, d.Size, nil
}

// probeSize measures the remaining bytes without reading them.
func probeSize(content io.Reader) (int64, error) {
	seeker, ok := content.(io.Seeker)
	if !ok {
		return 0, &ValidationError{
			Reason: "content size is required for non-seekable content",
		}
	}
	cur, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("anaconda: seek content: %w", err)
	}
	end, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("anaconda: seek content: %w", err)
	}
	if _, err := seeker.Seek(cur, io.SeekStart); err != nil {
		return 0, fmt.Errorf("anaconda: rewind content: %w", err)
	}
	return end - cur, nil
}

func (c *Client) transfer(ctx context.Context, req UploadRequest, staged *stagedUpload, size int64) error {
	contentType := req.ContentType
	if contentType == "" {
		if seeker, ok := req.Content.(io.ReadSeeker); ok {
			detected, err := pkgformat.ContentType(seeker)
			if err != nil {
				return err
			}
			contentType = detected
		}
	}

	encoderOpts := []formstream.Option{formstream.WithLogger(c.logger)}
	if req.Progress != nil {
		encoderOpts = append(encoderOpts, formstream.WithProgress(req.Progress))
	}
	enc, err := formstream.NewEncoder(staged.FormData, formstream.FilePart{
		FieldName:   "file",
		Filename:    req.Basename,
		ContentType: contentType,
		Content:     req.Content,
		Size:        size,
	}, encoderOpts...)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, staged.PostURL, enc)
	if err != nil {
		return fmt.Errorf("anaconda: build storage request: %w", err)
	}
	httpReq.Header.Set("Content-Type", enc.ContentType())
	httpReq.ContentLength = enc.ContentLength()

	c.log().Debug("transferring to storage", "url", staged.PostURL, "size", size)
	resp, err := c.storage.Do(httpReq)
	if err != nil {
		return &TransportError{Method: http.MethodPost, URL: staged.PostURL, Err: err}
	}
	defer resp.Body.Close()

	// The presigned policy promises 201 on success; anything else failed.
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return &UploadError{Status: resp.StatusCode, Body: string(body)}
	}
	return nil
}

func (c *Client) commit(ctx context.Context, req UploadRequest, distID string) (map[string]any, error) {
	var out map[string]any
	path := apiPath("commit", req.Owner, req.Package, req.Release, req.Basename)
	payload := map[string]any{"dist_id": distID}
	if err := c.rest.Request(ctx, http.MethodPost, path, payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}
