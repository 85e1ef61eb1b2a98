// Package fetch retrieves documents over HTTP for the version and artifact lookups.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dotcommander/pyright-action/internal/types"
)

// UserAgent identifies the action to upstream services.
const UserAgent = "pyright-action"

// Client performs GET requests and treats any non-2xx status as ErrUpstreamFetch.
type Client struct {
	HTTP *http.Client
}

// New returns a Client using http.DefaultClient.
func New() *Client {
	return &Client{HTTP: http.DefaultClient}
}

// Get returns the body of url.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	body, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", types.ErrUpstreamFetch, url, err)
	}
	return body, nil
}

// Open returns the body of url as a stream. The caller closes it.
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrUpstreamFetch, url, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrUpstreamFetch, url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s: %s", types.ErrUpstreamFetch, url, resp.Status)
	}

	return resp.Body, nil
}
