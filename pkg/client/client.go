// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package client provides a Go client library for the repoedit API.
//
// repoedit clones a repository and applies a search and replace across it.
// Both operations run as background tasks on the server; the client starts
// them and then polls or waits for their outcome.
//
// # Getting Started
//
//	c := client.New("http://localhost:5000")
//
//	resp, err := c.Clone(ctx, "https://github.com/example/repo.git")
//	task, err := c.Tasks.Get(ctx, resp.TaskID, 30*time.Second)
//
//	resp, err = c.Replace(ctx, "foo", "bar", nil)
//
// # Error Handling
//
// Failures reported by the server are returned as *APIError values:
//
//	if apiErr, ok := err.(*client.APIError); ok {
//	    fmt.Println(apiErr.Message)
//	}
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a repoedit API client.
//
// The Client is safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL    string
	version    string
	httpClient *http.Client

	// Tasks provides access to background clone and replace tasks.
	Tasks *TaskClient

	// Events provides access to the event history.
	Events *EventClient
}

// Option configures a [Client].
type Option func(*Client)

// New creates a new API client for the server at baseURL
// (e.g. "http://localhost:5000"). Any trailing slash is removed.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		version: LatestVersion,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.Tasks = &TaskClient{c: c}
	c.Events = &EventClient{c: c}

	return c
}

// WithVersion sets the API version to use for all requests.
func WithVersion(v string) Option {
	return func(c *Client) {
		c.version = v
	}
}

// WithHTTPClient sets a custom HTTP client for making requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the HTTP client timeout for all requests.
//
// The default of 90 seconds leaves room for Tasks.Get waits, which the
// server caps at 60 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// Version returns the API version being used.
func (c *Client) Version() string {
	return c.version
}

// BaseURL returns the base URL of the API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ReplaceOptions selects how a replacement runs. Empty fields use the
// server's configured defaults.
type ReplaceOptions struct {
	Engine string // "script" or "native"
	Mode   string // "literal" or "regex"
}

// Clone asks the server to clone repoURL. The returned TaskID can be
// passed to Tasks.Get to follow the clone.
func (c *Client) Clone(ctx context.Context, repoURL string) (*StatusResponse, error) {
	return c.postForm(ctx, "/api/v1/clone", url.Values{"repo_url": {repoURL}})
}

// CloneWith is Clone with an explicit engine ("script" or "native").
func (c *Client) CloneWith(ctx context.Context, repoURL, engine string) (*StatusResponse, error) {
	form := url.Values{"repo_url": {repoURL}}
	if engine != "" {
		form.Set("engine", engine)
	}
	return c.postForm(ctx, "/api/v1/clone", form)
}

// Replace replaces search with replacement across the most recently cloned
// repository. opts may be nil.
func (c *Client) Replace(ctx context.Context, search, replacement string, opts *ReplaceOptions) (*StatusResponse, error) {
	form := url.Values{
		"search_text":  {search},
		"replace_text": {replacement},
	}
	if opts != nil {
		if opts.Engine != "" {
			form.Set("engine", opts.Engine)
		}
		if opts.Mode != "" {
			form.Set("mode", opts.Mode)
		}
	}
	return c.postForm(ctx, "/api/v1/replace", form)
}

// ClonePath returns the most recently cloned repository. An *APIError with
// code NOT_FOUND is returned when nothing has been cloned.
func (c *Client) ClonePath(ctx context.Context) (*ClonePath, error) {
	data, err := c.get(ctx, "/api/v1/clone-path")
	if err != nil {
		return nil, err
	}

	var cp ClonePath
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to decode clone path: %w", err)
	}
	return &cp, nil
}

// apiResponse is the standard API response envelope.
type apiResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

// APIError represents an error response from the repoedit API.
//
// Common codes are NOT_FOUND, BAD_REQUEST, CONFLICT and INTERNAL_ERROR.
// Errors from the clone and replace endpoints carry only a Message.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"-"`

	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable description of the error.
	Message string `json:"message"`

	// Details contains additional error information, if available.
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// get performs a GET request to the given path.
func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return parseResponse(resp)
}

// post performs a POST request to the given path with no body.
func (c *Client) post(ctx context.Context, path string) (json.RawMessage, error) {
	resp, err := c.do(ctx, http.MethodPost, path, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return parseResponse(resp)
}

// postForm submits a form to one of the status endpoints.
func (c *Client) postForm(ctx context.Context, path string, form url.Values) (*StatusResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var sr StatusResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}
	if sr.Status != "success" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: sr.Message}
	}
	return &sr, nil
}

// do performs an HTTP request. The caller closes the response body.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(VersionHeader, c.version)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// parseResponse reads and unwraps an enveloped API response.
func parseResponse(resp *http.Response) (json.RawMessage, error) {
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
		}
		return respBody, nil
	}

	if apiResp.Error != nil {
		apiResp.Error.StatusCode = resp.StatusCode
		return nil, apiResp.Error
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	return apiResp.Data, nil
}
