package client

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/campuscoders/campus-cli/pkg/logger"
	"github.com/campuscoders/campus-cli/pkg/storage"
	json "github.com/json-iterator/go"
	"golang.org/x/net/publicsuffix"
)

type savedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

func (s savedCookie) expired(now time.Time) bool {
	return !s.Expires.IsZero() && !s.Expires.After(now)
}

// persistentJar is a cookie jar whose contents are mirrored into local
// storage, so the backend session survives between invocations.
type persistentJar struct {
	store *storage.Store

	mu    sync.Mutex
	jar   *cookiejar.Jar
	saved map[string][]savedCookie // origin -> cookies
}

func newJar(store *storage.Store) (*persistentJar, error) {
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	j := &persistentJar{store: store, jar: inner, saved: make(map[string][]savedCookie)}
	if store == nil {
		return j, nil
	}

	now := time.Now()
	for origin, raw := range store.LoadCookies() {
		var cookies []savedCookie
		if err := json.Unmarshal(raw, &cookies); err != nil {
			logger.Warn("Dropping unreadable saved cookies", "origin", origin, "error", err)
			continue
		}
		u, err := url.Parse(origin)
		if err != nil {
			continue
		}

		live := cookies[:0]
		httpCookies := make([]*http.Cookie, 0, len(cookies))
		for _, c := range cookies {
			if c.expired(now) {
				continue
			}
			live = append(live, c)
			httpCookies = append(httpCookies, &http.Cookie{
				Name:     c.Name,
				Value:    c.Value,
				Path:     c.Path,
				Domain:   c.Domain,
				Expires:  c.Expires,
				Secure:   c.Secure,
				HttpOnly: c.HttpOnly,
			})
		}
		j.saved[origin] = live
		inner.SetCookies(u, httpCookies)
	}
	return j, nil
}

func origin(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}

func (j *persistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.jar.SetCookies(u, cookies)

	key := origin(u)
	now := time.Now()
	current := j.saved[key]
	for _, c := range cookies {
		path := c.Path
		kept := current[:0]
		for _, s := range current {
			if s.Name != c.Name || s.Path != path {
				kept = append(kept, s)
			}
		}
		current = kept

		if c.MaxAge < 0 {
			continue
		}
		sc := savedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
		if c.MaxAge > 0 {
			sc.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		if sc.expired(now) {
			continue
		}
		current = append(current, sc)
	}
	j.saved[key] = current

	if j.store == nil {
		return
	}
	data, err := json.Marshal(current)
	if err != nil {
		return
	}
	if err := j.store.SaveCookies(key, data); err != nil {
		logger.Warn("Failed to persist cookies", "origin", key, "error", err)
	}
}

func (j *persistentJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

// Clear forgets every cookie, in memory and on disk.
func (j *persistentJar) Clear() error {
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return err
	}

	j.mu.Lock()
	j.jar = inner
	j.saved = make(map[string][]savedCookie)
	j.mu.Unlock()

	if j.store != nil {
		return j.store.ClearCookies()
	}
	return nil
}
