// Package mediastore implements collagery.MediaStore against the media
// CDN's REST API. It is a thin HTTP wrapper: no retries, no caching, basic
// auth with the account's API key pair, and version-qualified delivery URLs
// for content fetches.
package mediastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/collagery/collagery"
)

// Config carries the CDN account settings.
type Config struct {
	// APIURL is the management API base, e.g. "https://api.mediacdn.example/v1/acct".
	APIURL string
	// DeliveryURL is the public content base, e.g. "https://res.mediacdn.example/acct".
	DeliveryURL string
	// Key and Secret authenticate management API calls.
	Key    string
	Secret string
	// Timeout bounds every request. Zero means 30 seconds.
	Timeout time.Duration
}

// Client talks to the CDN. It is safe for concurrent use.
type Client struct {
	apiURL      string
	deliveryURL string
	key         string
	secret      string
	http        *http.Client
}

// New creates a CDN client from config.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiURL:      strings.TrimSuffix(cfg.APIURL, "/"),
		deliveryURL: strings.TrimSuffix(cfg.DeliveryURL, "/"),
		key:         cfg.Key,
		secret:      cfg.Secret,
		http:        &http.Client{Timeout: timeout},
	}
}

// List enumerates objects under a key prefix, one page per call.
func (c *Client) List(ctx context.Context, kind collagery.ResourceKind, prefix string, pageSize int, cursor string) (collagery.ObjectPage, error) {
	q := url.Values{}
	q.Set("prefix", prefix)
	q.Set("max_results", strconv.Itoa(pageSize))
	if cursor != "" {
		q.Set("next_cursor", cursor)
	}

	endpoint := fmt.Sprintf("%s/resources/%s?%s", c.apiURL, kind, q.Encode())
	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return collagery.ObjectPage{}, fmt.Errorf("list %q: %w", prefix, err)
	}

	var page collagery.ObjectPage
	if err := json.Unmarshal(body, &page); err != nil {
		return collagery.ObjectPage{}, fmt.Errorf("list %q: decode response: %w", prefix, err)
	}
	return page, nil
}

// FetchVersion retrieves object content through the delivery URL with the
// exact version number embedded, bypassing any stale edge cache.
func (c *Client) FetchVersion(ctx context.Context, kind collagery.ResourceKind, key string, version int64) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/%s/upload/v%d/%s", c.deliveryURL, kind, version, key)
	body, err := c.fetch(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch %q v%d: %w", key, version, err)
	}
	return body, nil
}

// Fetch performs a plain GET against an absolute URL.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	body, err := c.fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", rawURL, err)
	}
	return body, nil
}

// Upload writes a base64 data URI to a key via the management API.
func (c *Client) Upload(ctx context.Context, dataURI string, opts collagery.UploadOptions) error {
	payload := map[string]any{
		"file":      dataURI,
		"public_id": opts.Key,
		"overwrite": opts.Overwrite,
	}
	if opts.Format != "" {
		payload["format"] = opts.Format
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("upload %q: %w", opts.Key, err)
	}

	endpoint := fmt.Sprintf("%s/%s/upload", c.apiURL, opts.Kind)
	if _, err := c.do(ctx, http.MethodPost, endpoint, raw); err != nil {
		return fmt.Errorf("upload %q: %w", opts.Key, err)
	}
	return nil
}

// DeleteByPrefix removes every object whose key starts with prefix.
func (c *Client) DeleteByPrefix(ctx context.Context, kind collagery.ResourceKind, prefix string) error {
	q := url.Values{}
	q.Set("prefix", prefix)

	endpoint := fmt.Sprintf("%s/resources/%s?%s", c.apiURL, kind, q.Encode())
	if _, err := c.do(ctx, http.MethodDelete, endpoint, nil); err != nil {
		return fmt.Errorf("delete prefix %q: %w", prefix, err)
	}
	return nil
}

// DeleteFolder removes the folder container itself.
func (c *Client) DeleteFolder(ctx context.Context, prefix string) error {
	endpoint := fmt.Sprintf("%s/folders/%s", c.apiURL, prefix)
	if _, err := c.do(ctx, http.MethodDelete, endpoint, nil); err != nil {
		return fmt.Errorf("delete folder %q: %w", prefix, err)
	}
	return nil
}

// do sends an authenticated management API request and returns the body on
// any 2xx status.
func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.key, c.secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(out)))
	}
	return out, nil
}

// fetch is an unauthenticated content GET.
func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return out, nil
}
