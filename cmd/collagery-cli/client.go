package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/collagery/collagery"
)

type apiClient struct {
	base  string
	token string
	http  *http.Client
}

func newClient(cfg *cliConfig) *apiClient {
	return &apiClient{
		base:  strings.TrimRight(cfg.Server, "/"),
		token: cfg.Token,
		http:  &http.Client{Timeout: 60 * time.Second},
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *apiClient) do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		var apiErr errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("server: %s (HTTP %d)", apiErr.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("server returned HTTP %d", resp.StatusCode)
	}

	return resp, nil
}

func (c *apiClient) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *apiClient) login(ctx context.Context, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/login", nil,
		map[string]string{"password": password}, &out)
	if err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *apiClient) list(ctx context.Context, hidden bool) ([]collagery.Collage, error) {
	var query url.Values
	if hidden {
		query = url.Values{"showHidden": {"true"}}
	}

	var out struct {
		Items []collagery.Collage `json:"items"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/posts", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *apiClient) setVisibility(ctx context.Context, slug string, visible bool) error {
	body := map[string]any{"slug": slug, "visible": visible}
	return c.doJSON(ctx, http.MethodPost, "/posts/visibility", nil, body, nil)
}

func (c *apiClient) delete(ctx context.Context, slug string) error {
	body := map[string]string{"slug": slug}
	return c.doJSON(ctx, http.MethodPost, "/posts/delete", nil, body, nil)
}

// export downloads the archive for slug and returns the zip bytes together
// with the server-suggested filename.
func (c *apiClient) export(ctx context.Context, slug string) ([]byte, string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/export", url.Values{"slug": {slug}}, nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read archive: %w", err)
	}

	name := slug + ".zip"
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if parsed := filenameFromDisposition(cd); parsed != "" {
			name = parsed
		}
	}
	return data, name, nil
}

func filenameFromDisposition(cd string) string {
	for _, part := range strings.Split(cd, ";") {
		part = strings.TrimSpace(part)
		if v, ok := strings.CutPrefix(part, "filename="); ok {
			return strings.Trim(v, `"`)
		}
	}
	return ""
}
