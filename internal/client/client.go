// Package client talks to the scrum document store over HTTP. It exposes
// one accessor per collection; every call honours its context so a view
// that goes away cancels the requests it started.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scrumboard/internal/apperr"
)

// DefaultBaseURL is the address the store listens on out of the box.
const DefaultBaseURL = "http://localhost:4000"

// Client is the shared transport behind the three accessors.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
}

// New builds a client for the store at baseURL. A nil httpClient gets a
// client with a 10 second timeout.
func New(baseURL string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse store url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("store url %q must be absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{base: base, http: httpClient, logger: logger}, nil
}

// Users returns the accessor of the users collection.
func (c *Client) Users() *UserStore { return &UserStore{c: c} }

// Scrums returns the accessor of the scrums collection.
func (c *Client) Scrums() *ScrumStore { return &ScrumStore{c: c} }

// Tasks returns the accessor of the tasks collection.
func (c *Client) Tasks() *TaskStore { return &TaskStore{c: c} }

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	header http.Header
	body   any
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do runs one request and decodes a 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, r request, out any) (http.Header, error) {
	var body io.Reader
	if r.body != nil {
		buf, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", r.op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.endpoint(r.path, r.query), body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", r.op, ctxErr)
		}
		c.logger.Warn("store request failed", slog.String("op", r.op), slog.String("error", err.Error()))
		return nil, &apperr.NetworkError{Op: r.op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil && resp.StatusCode != http.StatusNoContent {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return nil, &apperr.NetworkError{Op: r.op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
			}
		}
		return resp.Header, nil
	}
	return nil, c.responseError(r.op, resp)
}

// responseError maps a non-2xx answer onto the apperr kinds.
func (c *Client) responseError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var eb errorBody
	_ = json.Unmarshal(raw, &eb)
	msg := eb.Error
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	case resp.StatusCode == http.StatusPreconditionFailed, resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%s: %s: %w", op, msg, apperr.ErrConflict)
	case resp.StatusCode == http.StatusBadRequest:
		ve := apperr.NewValidationError()
		for field, m := range eb.Fields {
			ve.Set(field, m)
		}
		if ve.Empty() {
			ve.Set("form", msg)
		}
		return fmt.Errorf("%s: %w", op, ve)
	case resp.StatusCode >= http.StatusInternalServerError:
		c.logger.Warn("store answered with an error", slog.String("op", op), slog.Int("status", resp.StatusCode))
		return &apperr.NetworkError{Op: op, Status: resp.StatusCode, Err: errors.New(msg)}
	default:
		return fmt.Errorf("%s: unexpected status %d: %s", op, resp.StatusCode, msg)
	}
}
