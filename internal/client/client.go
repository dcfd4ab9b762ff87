// Package client is a thin REST client for console-side tooling. Query
// results are memoised per key until invalidated, and the caller's profile
// drives an access.Tracker so permission checks can tell "still loading"
// from "denied".
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"chwadmin/internal/access"
	"chwadmin/internal/content"
	"chwadmin/internal/utils/logger"
)

const profileKey = "profile"

// BookKey is the cache key of a book's content tree.
func BookKey(id string) string { return "book:" + id }

// ErrUnauthorized is returned when the server rejects the client's token.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithToken sets the bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

type Client struct {
	baseURL string
	http    *http.Client
	tracker *access.Tracker
	group   singleflight.Group
	log     *logger.Logger

	mu    sync.RWMutex
	token string
	cache map[string]interface{}
}

// New returns a client for the API rooted at baseURL, e.g. http://host/api/v1.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		tracker: access.NewTracker(),
		log:     logger.New("api_client"),
		cache:   make(map[string]interface{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tracker exposes the profile state for permission checks.
func (c *Client) Tracker() *access.Tracker { return c.tracker }

// Evaluator answers permission checks against the current profile.
func (c *Client) Evaluator() *access.Evaluator { return access.NewEvaluator(c.tracker) }

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode >= 300 {
		var payload struct {
			Error interface{} `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &payload) == nil && payload.Error != nil {
			msg = fmt.Sprint(payload.Error)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// query returns the memoised value for key or runs fetch once, even when
// called concurrently.
func (c *Client) query(key string, fetch func() (interface{}, error)) (interface{}, error) {
	c.mu.RLock()
	v, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		v, err := fetch()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.cache[key] = v
		c.mu.Unlock()
		return v, nil
	})
	return v, err
}

// Invalidate drops memoised results for keys, or all of them when none are given.
func (c *Client) Invalidate(keys ...string) {
	c.mu.Lock()
	if len(keys) == 0 {
		c.cache = make(map[string]interface{})
	} else {
		for _, k := range keys {
			delete(c.cache, k)
		}
	}
	c.mu.Unlock()

	if len(keys) == 0 {
		c.tracker.Invalidate()
		return
	}
	for _, k := range keys {
		if k == profileKey {
			c.tracker.Invalidate()
		}
	}
}

type tokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// Login exchanges credentials for a token and drops everything cached for the
// previous identity.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var out tokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.token = out.Token
	c.mu.Unlock()
	c.Invalidate()
	return nil
}

// Profile fetches the caller's roles and feeds the tracker. A failed fetch
// leaves the tracker failed, which evaluates as no permissions.
func (c *Client) Profile(ctx context.Context) (access.Profile, error) {
	c.mu.RLock()
	cached, ok := c.cache[profileKey]
	c.mu.RUnlock()
	if ok {
		return cached.(access.Profile), nil
	}

	c.tracker.Begin()
	v, err := c.query(profileKey, func() (interface{}, error) {
		var doc access.ProfileDoc
		if err := c.do(ctx, http.MethodGet, "/users/me/profile", nil, &doc); err != nil {
			return nil, err
		}
		return doc.ToProfile(), nil
	})
	if err != nil {
		c.log.Warn("Profile fetch failed: %v", err)
		c.tracker.Fail(err)
		return access.Profile{}, err
	}
	profile := v.(access.Profile)
	c.tracker.Resolve(profile)
	return profile, nil
}

// Book loads a book's content tree.
func (c *Client) Book(ctx context.Context, id string) (*content.Book, error) {
	v, err := c.query(BookKey(id), func() (interface{}, error) {
		var tree content.Book
		if err := c.do(ctx, http.MethodGet, "/books/"+id+"/content", nil, &tree); err != nil {
			return nil, err
		}
		return &tree, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*content.Book), nil
}

// SaveBook replaces a book's content tree and drops the memoised copy.
func (c *Client) SaveBook(ctx context.Context, id string, tree *content.Book) error {
	if err := c.do(ctx, http.MethodPut, "/books/"+id+"/content", tree, nil); err != nil {
		return err
	}
	c.Invalidate(BookKey(id))
	return nil
}

// Publish queues a book for publishing.
func (c *Client) Publish(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/books/"+id+"/publish", nil, nil)
}
