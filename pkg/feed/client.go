// SPDX-License-Identifier: MPL-2.0

// Package feed implements the HTTP client for universal-package feeds.
//
// A feed exposes a small REST-ish surface: package listing and search,
// version queries, archive download, upload, and deletion. The client here
// is deliberately thin — it speaks the wire convention and maps HTTP
// failures onto errors; resolution, caching, and registration are other
// packages' concerns.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"upack-cli/pkg/upackid"
	"upack-cli/pkg/upackver"
)

const (
	// maxJSONResponseBytes caps JSON API responses (10 MB) so a malformed
	// or malicious feed cannot exhaust memory.
	maxJSONResponseBytes = 10 << 20

	// defaultRetryMax is the retry budget for transient HTTP failures.
	defaultRetryMax = 3

	// apiKeyHeader carries feed API keys.
	apiKeyHeader = "X-ApiKey"
)

// ErrPackageNotFound is returned when the feed has no such package or version.
var ErrPackageNotFound = errors.New("package not found in feed")

type (
	// Client talks to one universal-package feed endpoint.
	Client struct {
		httpClient *http.Client
		baseURL    string
		apiKey     string
		username   string
		password   string
		userAgent  string
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)

	// PackageInfo describes one package as reported by a feed.
	PackageInfo struct {
		Group         string   `json:"group"`
		Name          string   `json:"name"`
		Title         string   `json:"title"`
		Description   string   `json:"description"`
		LatestVersion string   `json:"latestVersion"`
		Versions      []string `json:"versions"`
	}

	// VersionInfo describes one published package version.
	VersionInfo struct {
		Group       string `json:"group"`
		Name        string `json:"name"`
		Version     string `json:"version"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Size        int64  `json:"size"`
		Published   string `json:"published"`
	}

	// HTTPError is returned for feed responses outside the 2xx range that
	// do not map to a more specific error.
	HTTPError struct {
		StatusCode int
		Status     string
		Body       string
	}
)

// Error formats the response status and a trimmed body excerpt.
func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("feed returned %s", e.Status)
	}
	return fmt.Sprintf("feed returned %s: %s", e.Status, e.Body)
}

// WithHTTPClient sets a custom HTTP client, useful for tests or proxies.
// It replaces the default retrying transport.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(f *Client) {
		f.httpClient = c
	}
}

// WithAPIKey authenticates requests with a feed API key.
func WithAPIKey(key string) ClientOption {
	return func(f *Client) {
		f.apiKey = key
	}
}

// WithBasicAuth authenticates requests with a username and password.
func WithBasicAuth(username, password string) ClientOption {
	return func(f *Client) {
		f.username = username
		f.password = password
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(f *Client) {
		f.userAgent = ua
	}
}

// NewClient creates a feed client for endpoint. By default requests go
// through a retrying transport that absorbs transient server and network
// failures.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(endpoint, "/"),
		userAgent: "upack-cli",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		rc := retryablehttp.NewClient()
		rc.RetryMax = defaultRetryMax
		rc.Logger = nil
		c.httpClient = rc.StandardClient()
	}
	return c
}

// URL returns the feed endpoint this client talks to.
func (c *Client) URL() string { return c.baseURL }

// ListPackages lists the feed's packages, optionally filtered to one group.
func (c *Client) ListPackages(ctx context.Context, group string) ([]*PackageInfo, error) {
	q := url.Values{}
	if group != "" {
		q.Set("group", group)
	}
	var out []*PackageInfo
	if err := c.getJSON(ctx, "packages", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchPackages lists packages whose names or metadata match term.
func (c *Client) SearchPackages(ctx context.Context, term string) ([]*PackageInfo, error) {
	q := url.Values{}
	q.Set("term", term)
	var out []*PackageInfo
	if err := c.getJSON(ctx, "search", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPackage fetches one package's feed record. A feed without the package
// returns ErrPackageNotFound.
func (c *Client) GetPackage(ctx context.Context, id *upackid.PackageID) (*PackageInfo, error) {
	q := url.Values{}
	if id.Group != "" {
		q.Set("group", id.Group)
	}
	q.Set("name", id.Name)
	var out PackageInfo
	if err := c.getJSON(ctx, "packages", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListVersions lists every published version of the package.
func (c *Client) ListVersions(ctx context.Context, id *upackid.PackageID) ([]*VersionInfo, error) {
	q := url.Values{}
	if id.Group != "" {
		q.Set("group", id.Group)
	}
	q.Set("name", id.Name)
	var out []*VersionInfo
	if err := c.getJSON(ctx, "versions", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetVersion fetches one published version's record.
func (c *Client) GetVersion(ctx context.Context, id *upackid.PackageID, version *upackver.Version) (*VersionInfo, error) {
	q := url.Values{}
	if id.Group != "" {
		q.Set("group", id.Group)
	}
	q.Set("name", id.Name)
	q.Set("version", version.String())
	var out VersionInfo
	if err := c.getJSON(ctx, "versions", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Download streams the archive for (id, version); a nil version downloads
// the feed's latest. The caller owns closing the result.
func (c *Client) Download(ctx context.Context, id *upackid.PackageID, version *upackver.Version) (io.ReadCloser, error) {
	path := "download/" + downloadPath(id)
	if version != nil {
		path += "/" + url.PathEscape(version.String())
	} else {
		path += "?latest"
	}

	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// Upload publishes a package archive to the feed. The body must be a
// complete archive; the feed reads identity and version from its manifest.
func (c *Client) Upload(ctx context.Context, archive io.Reader) error {
	resp, err := c.do(ctx, http.MethodPut, "upload", archive, "application/zip")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

// Delete removes one published version from the feed.
func (c *Client) Delete(ctx context.Context, id *upackid.PackageID, version *upackver.Version) error {
	path := "delete/" + downloadPath(id) + "/" + url.PathEscape(version.String())
	resp, err := c.do(ctx, http.MethodDelete, path, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

// downloadPath renders id as path segments, preserving group slashes.
func downloadPath(id *upackid.PackageID) string {
	if id.Group == "" {
		return url.PathEscape(id.Name)
	}
	segments := strings.Split(id.Group, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/") + "/" + url.PathEscape(id.Name)
}

// getJSON performs a GET and decodes the size-capped JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxJSONResponseBytes))
	if err != nil {
		return fmt.Errorf("read feed response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse feed response: %w", err)
	}
	return nil
}

// do builds and executes one request with the client's auth and headers.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, body)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	return resp, nil
}

// checkStatus maps non-2xx responses onto errors. 404 means the package or
// version is not in the feed.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrPackageNotFound
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(body)),
	}
}
