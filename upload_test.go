package anaconda_test

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	anaconda "github.com/Saraiah-TiPeAnCo-Wilson/anaconda-client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uploadHarness wires an API server and a storage server for upload
// scenario tests.
type uploadHarness struct {
	api     *httptest.Server
	storage *httptest.Server

	stageStatus   int
	storageStatus int
	commitBody    string

	storageCalls atomic.Int32
	commitCalls  atomic.Int32

	// captured by the storage handler
	gotFieldOrder []string
	gotFields     map[string]string
	gotFile       []byte
	gotFileName   string
}

func newUploadHarness(t *testing.T) *uploadHarness {
	t.Helper()

	h := &uploadHarness{
		stageStatus:   http.StatusOK,
		storageStatus: http.StatusCreated,
		commitBody:    `{"id": "release1"}`,
		gotFields:     map[string]string{},
	}

	h.storage = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.storageCalls.Add(1)

		// The encoder must declare an exact length; chunked transfer is
		// rejected by real storage backends.
		require.Positive(t, r.ContentLength)

		mr, err := r.MultipartReader()
		require.NoError(t, err)
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			data, err := io.ReadAll(part)
			require.NoError(t, err)
			if part.FileName() != "" {
				h.gotFile = data
				h.gotFileName = part.FileName()
				h.gotFieldOrder = append(h.gotFieldOrder, part.FormName())
				continue
			}
			h.gotFieldOrder = append(h.gotFieldOrder, part.FormName())
			h.gotFields[part.FormName()] = string(data)
		}

		if h.storageStatus != http.StatusCreated {
			w.WriteHeader(h.storageStatus)
			fmt.Fprint(w, "storage backend rejected the request")
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(h.storage.Close)

	mux := newMethodMux()
	mux.HandleFunc("POST /stage/owner/demo/1.0/{basename}", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Contains(t, payload, "distribution_type")
		assert.Contains(t, payload, "channels")

		if h.stageStatus != http.StatusOK {
			w.WriteHeader(h.stageStatus)
			return
		}
		// form_data key order is part of the contract.
		fmt.Fprintf(w, `{
			"post_url": %q,
			"form_data": {"key": "stage/abc", "AWSAccessKeyId": "AKIA", "policy": "cG9saWN5", "signature": "c2ln"},
			"dist_id": "abc"
		}`, h.storage.URL)
	})
	mux.HandleFunc("POST /commit/owner/demo/1.0/{basename}", func(w http.ResponseWriter, r *http.Request) {
		h.commitCalls.Add(1)
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "abc", payload["dist_id"])
		fmt.Fprint(w, h.commitBody)
	})
	h.api = httptest.NewServer(mux)
	t.Cleanup(h.api.Close)

	return h
}

func (h *uploadHarness) client(t *testing.T) *anaconda.Client {
	t.Helper()
	c, err := anaconda.New(anaconda.WithDomain(h.api.URL), anaconda.WithToken("tok"))
	require.NoError(t, err)
	return c
}

func b64md5(content []byte) string {
	sum := md5.Sum(content)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func TestUploadHappyPath(t *testing.T) {
	t.Parallel()

	h := newUploadHarness(t)
	content := bytes.Repeat([]byte("artifact"), 10_000)

	var events []anaconda.Progress
	result, err := h.client(t).Upload(context.Background(), anaconda.UploadRequest{
		Owner:            "owner",
		Package:          "demo",
		Release:          "1.0",
		Basename:         "demo-1.0.tar.bz2",
		Content:          bytes.NewReader(content),
		DistributionType: "conda",
		Description:      "a demo artifact",
		Progress: func(p anaconda.Progress) {
			events = append(events, p)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "release1"}, result)

	// Stage fields survive in order; the two integrity fields are
	// appended, nothing else is touched.
	assert.Equal(t,
		[]string{"key", "AWSAccessKeyId", "policy", "signature", "Content-Length", "Content-MD5", "file"},
		h.gotFieldOrder)
	assert.Equal(t, "stage/abc", h.gotFields["key"])
	assert.Equal(t, strconv.Itoa(len(content)), h.gotFields["Content-Length"])
	assert.Equal(t, b64md5(content), h.gotFields["Content-MD5"])

	assert.Equal(t, content, h.gotFile)
	assert.Equal(t, "demo-1.0.tar.bz2", h.gotFileName)

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, last.Total, last.Sent)
}

func TestUploadStageConflict(t *testing.T) {
	t.Parallel()

	h := newUploadHarness(t)
	h.stageStatus = http.StatusConflict

	_, err := h.client(t).Upload(context.Background(), anaconda.UploadRequest{
		Owner:            "owner",
		Package:          "demo",
		Release:          "1.0",
		Basename:         "demo-1.0.tar.bz2",
		Content:          bytes.NewReader([]byte("content")),
		DistributionType: "conda",
	})
	require.ErrorIs(t, err, anaconda.ErrConflict)
	assert.Zero(t, h.storageCalls.Load(), "storage POST must not be attempted")
	assert.Zero(t, h.commitCalls.Load())
}

func TestUploadStorageFailure(t *testing.T) {
	t.Parallel()

	h := newUploadHarness(t)
	h.storageStatus = http.StatusInternalServerError

	_, err := h.client(t).Upload(context.Background(), anaconda.UploadRequest{
		Owner:            "owner",
		Package:          "demo",
		Release:          "1.0",
		Basename:         "demo-1.0.tar.bz2",
		Content:          bytes.NewReader([]byte("content")),
		DistributionType: "conda",
	})

	var uploadErr *anaconda.UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, http.StatusInternalServerError, uploadErr.Status)
	assert.Contains(t, uploadErr.Body, "storage backend rejected the request")
	assert.Zero(t, h.commitCalls.Load(), "commit must not be attempted")
}

func TestUploadCommitFailure(t *testing.T) {
	t.Parallel()

	h := newUploadHarness(t)

	mux := newMethodMux()
	mux.HandleFunc("POST /stage/owner/demo/1.0/{basename}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"post_url": %q, "form_data": {}, "dist_id": "abc"}`, h.storage.URL)
	})
	mux.HandleFunc("POST /commit/owner/demo/1.0/{basename}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"error": "stage expired"}`)
	})
	api := httptest.NewServer(mux)
	t.Cleanup(api.Close)

	c, err := anaconda.New(anaconda.WithDomain(api.URL))
	require.NoError(t, err)

	_, err = c.Upload(context.Background(), anaconda.UploadRequest{
		Owner:            "owner",
		Package:          "demo",
		Release:          "1.0",
		Basename:         "demo-1.0.tar.bz2",
		Content:          bytes.NewReader([]byte("content")),
		DistributionType: "conda",
	})
	require.ErrorIs(t, err, anaconda.ErrConflict)
	assert.Equal(t, int32(1), h.storageCalls.Load(), "content was stored before commit failed")
}

func TestUploadSuppliedDigestSkipsHashing(t *testing.T) {
	t.Parallel()

	h := newUploadHarness(t)
	content := []byte("opaque bytes")

	// A bytes.Buffer cannot seek; the supplied digest and size must make
	// hashing unnecessary.
	result, err := h.client(t).Upload(context.Background(), anaconda.UploadRequest{
		Owner:            "owner",
		Package:          "demo",
		Release:          "1.0",
		Basename:         "demo-1.0.tar.bz2",
		Content:          bytes.NewBuffer(content),
		DistributionType: "conda",
		Digest: &anaconda.Digest{
			Hex:    "ignored-here",
			Base64: b64md5(content),
			Size:   int64(len(content)),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "release1"}, result)
	assert.Equal(t, b64md5(content), h.gotFields["Content-MD5"])
	assert.Equal(t, strconv.Itoa(len(content)), h.gotFields["Content-Length"])
}

func TestUploadNonSeekableWithoutDigest(t *testing.T) {
	t.Parallel()

	h := newUploadHarness(t)

	_, err := h.client(t).Upload(context.Background(), anaconda.UploadRequest{
		Owner:            "owner",
		Package:          "demo",
		Release:          "1.0",
		Basename:         "demo-1.0.tar.bz2",
		Content:          bytes.NewBuffer([]byte("content")),
		DistributionType: "conda",
	})

	var validationErr *anaconda.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Zero(t, h.storageCalls.Load())
}

func TestUploadValidation(t *testing.T) {
	t.Parallel()

	h := newUploadHarness(t)
	c := h.client(t)

	tests := []struct {
		name string
		req  anaconda.UploadRequest
	}{
		{name: "missing owner", req: anaconda.UploadRequest{Package: "p", Release: "1", Basename: "b", Content: bytes.NewReader(nil)}},
		{name: "missing package", req: anaconda.UploadRequest{Owner: "o", Release: "1", Basename: "b", Content: bytes.NewReader(nil)}},
		{name: "missing release", req: anaconda.UploadRequest{Owner: "o", Package: "p", Basename: "b", Content: bytes.NewReader(nil)}},
		{name: "missing basename", req: anaconda.UploadRequest{Owner: "o", Package: "p", Release: "1", Content: bytes.NewReader(nil)}},
		{name: "missing content", req: anaconda.UploadRequest{Owner: "o", Package: "p", Release: "1", Basename: "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Upload(context.Background(), tt.req)
			var validationErr *anaconda.ValidationError
			require.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestUploadDetectsDistributionType(t *testing.T) {
	t.Parallel()

	var gotType string
	h := newUploadHarness(t)

	mux := newMethodMux()
	mux.HandleFunc("POST /stage/owner/demo/1.0/{basename}", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		gotType, _ = payload["distribution_type"].(string)
		fmt.Fprintf(w, `{"post_url": %q, "form_data": {}, "dist_id": "abc"}`, h.storage.URL)
	})
	mux.HandleFunc("POST /commit/owner/demo/1.0/{basename}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": "release1"}`)
	})
	api := httptest.NewServer(mux)
	t.Cleanup(api.Close)

	c, err := anaconda.New(anaconda.WithDomain(api.URL))
	require.NoError(t, err)

	// Content with no recognizable package magic falls back to "file".
	_, err = c.Upload(context.Background(), anaconda.UploadRequest{
		Owner:    "owner",
		Package:  "demo",
		Release:  "1.0",
		Basename: "notes.txt",
		Content:  bytes.NewReader([]byte("plain text")),
	})
	require.NoError(t, err)
	assert.Equal(t, "file", gotType)
}
