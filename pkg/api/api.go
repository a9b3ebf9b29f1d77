// Package api binds the campus backend endpoints to typed Go calls. Every
// call returns the normalized errors produced by the client package.
package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/campuscoders/campus-cli/pkg/client"
	json "github.com/json-iterator/go"
)

// Doer sends one normalized request. *client.Client implements it.
type Doer interface {
	Do(ctx context.Context, req client.Request) (*client.Response, error)
}

// API is the typed endpoint surface.
type API struct {
	c Doer
}

func New(c Doer) *API {
	return &API{c: c}
}

func (a *API) get(ctx context.Context, path string, cache bool) (*client.Response, error) {
	return a.c.Do(ctx, client.Request{Method: http.MethodGet, Path: path, Cache: cache})
}

func (a *API) post(ctx context.Context, path string, body interface{}) (*client.Response, error) {
	return a.c.Do(ctx, client.Request{Method: http.MethodPost, Path: path, Body: body})
}

func escape(segment string) string {
	return url.PathEscape(segment)
}

// decodeList reads a list that the backend sends either bare or wrapped in an
// object under field.
func decodeList(raw []byte, field string, dest interface{}) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '[' {
		return json.Unmarshal(raw, dest)
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return fmt.Errorf("failed to decode %s: %w", field, err)
	}
	inner, ok := wrapped[field]
	if !ok {
		return nil
	}
	return json.Unmarshal(inner, dest)
}
