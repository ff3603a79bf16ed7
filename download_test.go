package anaconda_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	anaconda "github.com/Saraiah-TiPeAnCo-Wilson/anaconda-client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadNotModified(t *testing.T) {
	t.Parallel()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/download/owner/demo/1.0/demo-1.0.tar.bz2", r.URL.Path)
		assert.Equal(t, "abc123", r.Header.Get("Etag"))
		w.WriteHeader(http.StatusNotModified)
	}))
	t.Cleanup(api.Close)

	c, err := anaconda.New(anaconda.WithDomain(api.URL))
	require.NoError(t, err)

	dl, err := c.Download(context.Background(), "owner", "demo", "1.0", "demo-1.0.tar.bz2",
		anaconda.DownloadWithMD5("abc123"))
	require.NoError(t, err)
	assert.Nil(t, dl, "304 means the cached copy is current")
}

func TestDownloadFollowsRedirect(t *testing.T) {
	t.Parallel()

	content := []byte("the artifact bytes")
	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-tar")
		_, _ = w.Write(content)
	}))
	t.Cleanup(cdn.Close)

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Etag"))
		w.Header().Set("Location", cdn.URL+"/artifact")
		w.WriteHeader(http.StatusFound)
	}))
	t.Cleanup(api.Close)

	c, err := anaconda.New(anaconda.WithDomain(api.URL))
	require.NoError(t, err)

	dl, err := c.Download(context.Background(), "owner", "demo", "1.0", "demo-1.0.tar.bz2")
	require.NoError(t, err)
	require.NotNil(t, dl)
	t.Cleanup(func() { dl.Body.Close() })

	got, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, "application/x-tar", dl.ContentType)
	assert.Equal(t, int64(len(content)), dl.ContentLength)
	assert.Equal(t, cdn.URL+"/artifact", dl.URL)
}

func TestDownloadNotFound(t *testing.T) {
	t.Parallel()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": "no such distribution"}`)
	}))
	t.Cleanup(api.Close)

	c, err := anaconda.New(anaconda.WithDomain(api.URL))
	require.NoError(t, err)

	_, err = c.Download(context.Background(), "owner", "demo", "1.0", "missing.tar.bz2")
	require.ErrorIs(t, err, anaconda.ErrNotFound)
	assert.Contains(t, err.Error(), "no such distribution")
}

func TestDownloadStorageFailure(t *testing.T) {
	t.Parallel()

	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(cdn.Close)

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", cdn.URL+"/expired")
		w.WriteHeader(http.StatusFound)
	}))
	t.Cleanup(api.Close)

	c, err := anaconda.New(anaconda.WithDomain(api.URL))
	require.NoError(t, err)

	_, err = c.Download(context.Background(), "owner", "demo", "1.0", "demo-1.0.tar.bz2")
	var apiErr *anaconda.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, cdn.URL+"/expired", apiErr.URL)
}
