package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Upload(t *testing.T) {
	var gotPath, gotAuth, gotKey, gotType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("apikey")
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Key":"media/uploads/a b.png"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "service-key", "media", nil)
	err := c.Upload(context.Background(), "uploads/a b.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "/storage/v1/object/media/uploads/a%20b.png", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "service-key", gotKey)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, "png-bytes", gotBody)
}

func TestClient_UploadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"statusCode":"409","error":"Duplicate","message":"The resource already exists"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "media", nil)
	err := c.Upload(context.Background(), "uploads/x.png", "image/png", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The resource already exists")
	assert.Contains(t, err.Error(), "400")
}

func TestClient_Delete(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "media", nil)
	require.NoError(t, c.Delete(context.Background(), "/uploads/2024/05/x.pdf"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/storage/v1/object/media/uploads/2024/05/x.pdf", path)
}

func TestClient_PublicURL(t *testing.T) {
	c := NewClient("https://files.example.com/", "k", "media", nil)
	assert.Equal(t, "media", c.Bucket())
	assert.Equal(t, "https://files.example.com/storage/v1/object/public/media/uploads/a.png", c.PublicURL("uploads/a.png"))
}
