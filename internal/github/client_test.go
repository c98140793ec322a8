package github

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagenius007/pr-reviewer/internal/logging"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	c, err := NewClient("test-token", server.URL, 5*time.Second, logging.Discard())
	require.NoError(t, err)
	return c
}

func TestListChangedFilesPaginates(t *testing.T) {
	mux := http.NewServeMux()
	var base string
	mux.HandleFunc("/repos/octo/app/pulls/7/files", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"filename":"logo.png","status":"added","changes":0}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octo/app/pulls/7/files?page=2>; rel="next"`, base))
		fmt.Fprint(w, `[
			{"filename":"main.go","status":"modified","additions":3,"deletions":1,"changes":4,"patch":"@@ -1 +1 @@"},
			{"filename":"old.go","status":"removed","deletions":10,"changes":10}
		]`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	base = server.URL

	c, err := NewClient("test-token", server.URL, 5*time.Second, logging.Discard())
	require.NoError(t, err)

	files, err := c.ListChangedFiles(t.Context(), "octo", "app", 7)
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, ChangedFile{
		Filename: "main.go", Status: StatusModified,
		Additions: 3, Deletions: 1, Changes: 4, Patch: "@@ -1 +1 @@",
	}, files[0])
	assert.False(t, files[1].Binary, "removed files are never marked binary")
	assert.True(t, files[2].Binary)
}

func TestListChangedFilesError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/app/pulls/7/files", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
	})
	c := newTestClient(t, mux)

	_, err := c.ListChangedFiles(t.Context(), "octo", "app", 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "octo/app#7")
}

func TestGetFileContent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/app/contents/src/main.go", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc123", r.URL.Query().Get("ref"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"type":     "file",
			"name":     "main.go",
			"path":     "src/main.go",
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte("package main\n")),
		})
	})
	mux.HandleFunc("/repos/octo/app/contents/missing.go", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})
	c := newTestClient(t, mux)

	content, err := c.GetFileContent(t.Context(), "octo", "app", "src/main.go", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "package main\n", content)

	_, err = c.GetFileContent(t.Context(), "octo", "app", "missing.go", "abc123")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPostReviewUsesCommentEvent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/app/pulls/7/reviews", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var req map[string]any
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &req))
		assert.Equal(t, "COMMENT", req["event"])
		assert.Equal(t, "## Review", req["body"])
		fmt.Fprint(w, `{"id":4242}`)
	})
	c := newTestClient(t, mux)

	id, err := c.PostReview(t.Context(), "octo", "app", 7, "## Review")
	require.NoError(t, err)
	assert.Equal(t, int64(4242), id)
}

func TestPostCommentAndAddLabel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/app/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":11}`)
	})
	var labels []string
	mux.HandleFunc("/repos/octo/app/issues/7/labels", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &labels))
		fmt.Fprint(w, `[{"name":"needs-manual-review"}]`)
	})
	c := newTestClient(t, mux)

	id, err := c.PostComment(t.Context(), "octo", "app", 7, "failed")
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)

	require.NoError(t, c.AddLabel(t.Context(), "octo", "app", 7, "needs-manual-review"))
	assert.Equal(t, []string{"needs-manual-review"}, labels)
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("", "://bad", time.Second, logging.Discard())
	assert.Error(t, err)
}
