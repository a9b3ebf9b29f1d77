package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/campuscoders/campus-cli/pkg/config"
	clierrors "github.com/campuscoders/campus-cli/pkg/errors"
	"github.com/campuscoders/campus-cli/pkg/logger"
	"github.com/campuscoders/campus-cli/pkg/storage"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	json "github.com/json-iterator/go"
)

// APIPrefix is appended to the configured base URL.
const APIPrefix = "/api/v1"

// Config configures a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	CacheTTL  time.Duration
	UserAgent string
}

// Option customizes a Client.
type Option func(*Client)

// WithStorage persists the cookie jar in store.
func WithStorage(store *storage.Store) Option {
	return func(c *Client) { c.store = store }
}

// Client talks to the campus backend. Every request carries the session
// cookies; opted-in GETs go through the response cache. It is safe for
// concurrent use.
type Client struct {
	http    *resty.Client
	baseURL string
	jar     *persistentJar
	cache   *Cache
	store   *storage.Store
}

// File is one part of a multipart upload.
type File struct {
	Field string
	Path  string
}

// Request describes one call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header map[string]string
	// Body is sent as JSON.
	Body interface{}
	// Form and Files switch the request to multipart/form-data.
	Form  map[string]string
	Files []File
	// Cache opts a GET into the response cache.
	Cache bool
}

// New builds a Client from cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "campus-cli"
	}

	c := &Client{
		baseURL: apiBase(cfg.BaseURL),
		cache:   NewCache(cfg.CacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}

	jar, err := newJar(c.store)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	c.jar = jar

	c.http = resty.New()
	c.http.SetBaseURL(c.baseURL)
	c.http.SetCookieJar(jar)
	if cfg.Timeout > 0 {
		c.http.SetTimeout(cfg.Timeout)
	}
	c.http.SetHeader("User-Agent", cfg.UserAgent)
	c.http.SetHeader("Accept", "application/json")

	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader("X-Request-ID", uuid.NewString())
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})

	c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response", "status", resp.StatusCode(), "url", resp.Request.URL, "elapsed", resp.Time())
		return nil
	})

	return c, nil
}

// NewFromConfig builds a Client from the loaded configuration.
func NewFromConfig(store *storage.Store, userAgent string) (*Client, error) {
	return New(Config{
		BaseURL:   config.GetString("api.base_url"),
		Timeout:   time.Duration(config.GetInt("api.timeout")) * time.Second,
		CacheTTL:  config.GetDuration("cache.ttl"),
		UserAgent: userAgent,
	}, WithStorage(store))
}

func apiBase(base string) string {
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, APIPrefix) {
		return base
	}
	return base + APIPrefix
}

// BaseURL returns the API root every path is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Cache exposes the response cache.
func (c *Client) Cache() *Cache {
	return c.cache
}

// ClearSession drops all cookies and cached responses.
func (c *Client) ClearSession() error {
	c.cache.Purge()
	return c.jar.Clear()
}

// HasSession reports whether any cookie would be sent to the backend.
func (c *Client) HasSession() bool {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return len(c.jar.Cookies(u)) > 0
}

// Do performs req and normalizes the outcome. The returned error is always a
// *errors.CLIError; the Response is non-nil whenever the server answered.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	multipart := len(req.Files) > 0 || len(req.Form) > 0

	var body []byte
	if req.Body != nil {
		var err error
		body, err = json.ConfigCompatibleWithStandardLibrary.Marshal(req.Body)
		if err != nil {
			return nil, clierrors.NewCLIError(clierrors.ErrorTypeValidation, "could not encode request body", err)
		}
	}

	var key string
	if req.Cache && method == http.MethodGet && !multipart {
		key = cacheKey(method, c.resolve(req.Path, req.Query), req.Header, body)
		if status, cached, ok := c.cache.Get(key); ok {
			logger.Debug("Cache hit", "key", key)
			return normalize(status, cached, true)
		}
	}

	r := c.http.R().SetContext(ctx)
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	for name, v := range req.Header {
		r.SetHeader(name, v)
	}

	if multipart {
		closers, err := attachFiles(r, req.Files)
		defer func() {
			for _, f := range closers {
				f.Close()
			}
		}()
		if err != nil {
			return nil, err
		}
		if len(req.Form) > 0 {
			r.SetMultipartFormData(req.Form)
		}
	} else if body != nil {
		r.SetHeader("Content-Type", "application/json")
		r.SetBody(body)
	}

	resp, err := r.Execute(method, req.Path)
	if err != nil {
		return nil, transportError(err)
	}

	result, err := normalize(resp.StatusCode(), resp.Body(), false)
	if err == nil && key != "" {
		c.cache.Set(key, resp.StatusCode(), resp.Body())
	}
	return result, err
}

func attachFiles(r *resty.Request, files []File) ([]io.Closer, error) {
	var closers []io.Closer
	for _, f := range files {
		fh, err := os.Open(f.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return closers, clierrors.FileNotFoundError(f.Path)
			}
			return closers, clierrors.NewCLIError(clierrors.ErrorTypeValidation, fmt.Sprintf("cannot read %s", f.Path), err)
		}
		closers = append(closers, fh)
		r.SetFileReader(f.Field, filepath.Base(f.Path), fh)
	}
	return closers, nil
}

func transportError(err error) *clierrors.CLIError {
	cliErr := clierrors.CategorizeError(err)
	if cliErr.Type == clierrors.ErrorTypeUnknown {
		return clierrors.NetworkError("Network error, please try again", err)
	}
	return cliErr
}

func (c *Client) resolve(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
