package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	clierrors "github.com/campuscoders/campus-cli/pkg/errors"
	"github.com/campuscoders/campus-cli/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, srv *httptest.Server, ttl time.Duration, opts ...Option) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: srv.URL, Timeout: 5 * time.Second, CacheTTL: ttl}, opts...)
	require.NoError(t, err)
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestAPIBase(t *testing.T) {
	assert.Equal(t, "http://localhost:8000/api/v1", apiBase("http://localhost:8000"))
	assert.Equal(t, "http://localhost:8000/api/v1", apiBase("http://localhost:8000/"))
	assert.Equal(t, "https://campus.example.edu/api/v1", apiBase("https://campus.example.edu/api/v1/"))
}

func TestNormalization(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantType  clierrors.ErrorType
		wantMsg   string
		confirmed bool
	}{
		{"explicit success", 200, `{"success":true,"data":{"id":"p1"}}`, "", "", true},
		{"no success field", 200, `{"posts":[],"nextCursor":null}`, "", "", false},
		{"success false on 200", 200, `{"success":false,"message":"Already liked"}`, clierrors.ErrorTypeServer, "Already liked", false},
		{"unauthorized", 401, `{"success":false,"message":"Unauthorized"}`, clierrors.ErrorTypeAuth, "Unauthorized", false},
		{"unauthorized without body", 401, ``, clierrors.ErrorTypeAuth, "Not logged in", false},
		{"server error without envelope", 502, `<html>bad gateway</html>`, clierrors.ErrorTypeServer, "Server error (HTTP 502)", false},
		{"bad request with envelope", 400, `{"success":false,"message":"Invalid invite code"}`, clierrors.ErrorTypeServer, "Invalid invite code", false},
		{"rejected without message", 500, `{"success":false}`, clierrors.ErrorTypeServer, "Request failed", false},
		{"unauthorized rejection without message", 401, `{"success":false}`, clierrors.ErrorTypeAuth, "Not logged in", false},
		{"html on 200", 200, `<html>oops</html>`, "", "", false},
		{"empty object on 200", 200, `{}`, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := newTestClient(t, srv, 0)
			resp, err := c.Do(context.Background(), Request{Path: "/users/getMyProfile"})

			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.wantType == "" {
				assert.NoError(t, err)
				assert.Equal(t, tt.confirmed, resp.Envelope.Confirmed())
				return
			}

			var cliErr *clierrors.CLIError
			require.ErrorAs(t, err, &cliErr)
			assert.Equal(t, tt.wantType, cliErr.Type)
			assert.Equal(t, tt.wantMsg, cliErr.Message)
			assert.Equal(t, tt.status, cliErr.StatusCode)
		})
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := newTestClient(t, srv, 0)
	srv.Close()

	resp, err := c.Do(context.Background(), Request{Path: "/post/getfeed"})
	assert.Nil(t, resp)
	assert.True(t, clierrors.IsNetwork(err), "got %v", err)
}

func TestCachedResponseIsByteIdenticalWithinTTL(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		fmt.Fprintf(w, `{"success":true,"data":[{"username":"user%d"}]}`, n)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, time.Minute)
	req := Request{Path: "/users/getAllUser", Cache: true}

	first, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	first.Body[0] = 'X' // callers must not be able to corrupt the cache

	second, err := c.Do(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.True(t, second.Cached)
	assert.Equal(t, `{"success":true,"data":[{"username":"user1"}]}`, string(second.Body))
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		io.WriteString(w, `{"success":true}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 50*time.Millisecond)
	req := Request{Path: "/admin/stats", Cache: true}

	_, err := c.Do(context.Background(), req)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return c.Cache().Len() == 0 }, time.Second, 10*time.Millisecond)

	_, err = c.Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestFailuresAreNotCached(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		io.WriteString(w, `{"success":false,"message":"try later"}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, time.Minute)
	req := Request{Path: "/users/getAllUser", Cache: true}

	_, err := c.Do(context.Background(), req)
	assert.Error(t, err)
	_, err = c.Do(context.Background(), req)
	assert.Error(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	assert.Zero(t, c.Cache().Len())
}

func TestUncachedRequestsAlwaysHitServer(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		io.WriteString(w, `{"success":true}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, time.Minute)
	for i := 0; i < 3; i++ {
		_, err := c.Do(context.Background(), Request{Path: "/users/getMyProfile"})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestQueryAndHeaders(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		io.WriteString(w, `{"posts":[]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 0)
	_, err := c.Do(context.Background(), Request{
		Path:   "/post/getfeed",
		Query:  url.Values{"cursor": {"c1"}},
		Header: map[string]string{"Cache-Control": "no-cache"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/post/getfeed", got.URL.Path)
	assert.Equal(t, "c1", got.URL.Query().Get("cursor"))
	assert.Equal(t, "no-cache", got.Header.Get("Cache-Control"))
	assert.NotEmpty(t, got.Header.Get("X-Request-ID"))
	assert.Empty(t, got.Header.Get("Authorization"))
}

func TestJSONBody(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		io.WriteString(w, `{"success":true}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 0)
	_, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/post/comment/p1",
		Body:   map[string]string{"text": "nice"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"nice"}`, body)
}

func TestMultipartUpload(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "cat.png")
	require.NoError(t, os.WriteFile(img, []byte("\x89PNG\r\n\x1a\n"), 0600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			assert.Equal(t, "hello", r.FormValue("caption"))
			assert.Len(t, r.MultipartForm.File["media"], 2)
		}
		io.WriteString(w, `{"success":true}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 0)
	_, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/post/createPost",
		Form:   map[string]string{"caption": "hello"},
		Files:  []File{{Field: "media", Path: img}, {Field: "media", Path: img}},
	})
	require.NoError(t, err)

	_, err = c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/post/createPost",
		Files:  []File{{Field: "media", Path: filepath.Join(dir, "missing.png")}},
	})
	assert.True(t, clierrors.IsValidation(err))
}

func TestCookiesPersistAcrossClients(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/users/login":
			http.SetCookie(w, &http.Cookie{Name: "token", Value: "abc", Path: "/", MaxAge: 3600})
			io.WriteString(w, `{"success":true}`)
		default:
			c, err := r.Cookie("token")
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			fmt.Fprintf(w, `{"success":true,"data":{"token":%q}}`, c.Value)
		}
	}))
	defer srv.Close()

	store, err := storage.Open(filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	defer store.Close()

	first := newTestClient(t, srv, 0, WithStorage(store))
	_, err = first.Do(context.Background(), Request{Method: http.MethodPost, Path: "/users/login"})
	require.NoError(t, err)
	assert.True(t, first.HasSession())

	second := newTestClient(t, srv, 0, WithStorage(store))
	resp, err := second.Do(context.Background(), Request{Path: "/users/getMyProfile"})
	require.NoError(t, err)
	assert.Contains(t, string(resp.Body), `"abc"`)

	require.NoError(t, second.ClearSession())
	assert.False(t, second.HasSession())

	third := newTestClient(t, srv, 0, WithStorage(store))
	_, err = third.Do(context.Background(), Request{Path: "/users/getMyProfile"})
	assert.True(t, clierrors.IsAuth(err))
}
