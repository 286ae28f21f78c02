// Package content fetches blog content from the publishing backend. Sites
// with the blog feature enabled render post listings and detail pages from
// this data; everything else on the site comes from the baseline document.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned when the backend has no post for a slug.
var ErrNotFound = errors.New("content: post not found")

// Summary is one entry in a post listing.
type Summary struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Excerpt     string   `json:"excerpt"`
	Tags        []string `json:"tags"`
	PublishedAt string   `json:"publishedAt"`
}

// Article is a full post.
type Article struct {
	Summary
	Body string `json:"body"`
}

// Listing is one page of post summaries.
type Listing struct {
	Posts    []Summary `json:"posts"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
	Total    int       `json:"total"`
}

// ClientOption customises the client configuration.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// Client talks to the blog content API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the content API rooted at baseURL.
func NewClient(baseURL string, options ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// List fetches one page of post summaries for a site. Page numbering starts
// at 1; zero values fall back to the first page and the server default size.
func (c *Client) List(ctx context.Context, siteID string, page, pageSize int) (*Listing, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}
	endpoint := c.baseURL + "/sites/" + url.PathEscape(siteID) + "/posts"
	if encoded := q.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var listing Listing
	if err := c.get(ctx, endpoint, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// Get fetches a single post by slug.
func (c *Client) Get(ctx context.Context, siteID, slug string) (*Article, error) {
	endpoint := c.baseURL + "/sites/" + url.PathEscape(siteID) + "/posts/" + url.PathEscape(slug)
	var article Article
	if err := c.get(ctx, endpoint, &article); err != nil {
		return nil, err
	}
	return &article, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("content: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("content: fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("content: fetch %s: unexpected status %d", endpoint, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("content: decode response: %w", err)
	}
	return nil
}
