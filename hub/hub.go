// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultBaseURL is the Docker Hub API base URL.
const DefaultBaseURL = "https://hub.docker.com/v2"

// PageSize is the number of tags requested per page.
const PageSize = 20

// DefaultTimeout limits each individual Docker Hub request.
const DefaultTimeout = 10 * time.Second

// maxPages stops following "next" links of a misbehaving API.
const maxPages = 1000

// Tag is an image tag on the Docker Hub.
type Tag struct {
	Name        string    `json:"name"`
	Digest      string    `json:"digest,omitempty"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
}

// tagPage is a single page of the paginated tag listing.
type tagPage struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Tag   `json:"results"`
}

// Client is a minimal Docker Hub API client for listing repository tags.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a new Docker Hub client for the specified API base URL;
// an empty base URL defaults to [DefaultBaseURL].
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Tags returns all tags of the specified repository, such as
// "library/postgres", following the pagination until the last page. Single
// names without a namespace refer to official images.
func (c *Client) Tags(ctx context.Context, repository string) ([]Tag, error) {
	if !strings.Contains(repository, "/") {
		repository = "library/" + repository
	}
	tags := []Tag{}
	for page := 1; page <= maxPages; page++ {
		p, err := c.page(ctx, repository, page)
		if err != nil {
			return nil, err
		}
		tags = append(tags, p.Results...)
		if p.Next == nil || *p.Next == "" {
			log.Debugf("fetched %d tags of %s in %d pages", len(tags), repository, page)
			return tags, nil
		}
	}
	return nil, fmt.Errorf("too many tag pages for repository %s", repository)
}

// page fetches a single page of the tag listing.
func (c *Client) page(ctx context.Context, repository string, page int) (*tagPage, error) {
	u := fmt.Sprintf("%s/repositories/%s/tags?page=%d&page_size=%d",
		c.baseURL, repository, page, PageSize)
	if _, err := url.Parse(u); err != nil {
		return nil, fmt.Errorf("invalid repository %q, reason: %w", repository, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create tag request, reason: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch tags of %s, reason: %w", repository, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("Docker Hub API error for %s: %s", repository, resp.Status)
	}
	var p tagPage
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("cannot parse tags of %s, reason: %w", repository, err)
	}
	return &p, nil
}
