// Package client is a typed Go client for the content API. Calls that
// change data take an explicit Session; there is no ambient login state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"prismtech.dev/internal/models"
	"prismtech.dev/internal/validation"
)

var (
	// ErrNotFound matches API errors with status 404
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized matches API errors with status 401
	ErrUnauthorized = errors.New("unauthorized")
)

// Session is a bearer credential returned by Login
type Session struct {
	Token string
	User  models.UserInfo
}

// Error is a non-2xx response
type Error struct {
	Status  int
	Message string
	Fields  []validation.FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("api error %d: %s (%d invalid fields)", e.Status, e.Message, len(e.Fields))
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Unwrap maps well known statuses onto the package sentinels
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	}
	return nil
}

// Client talks to one API base URL, e.g. http://localhost:5000/api
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a Session
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var res struct {
		Token string          `json:"token"`
		User  models.UserInfo `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, nil, body, &res); err != nil {
		return Session{}, err
	}
	return Session{Token: res.Token, User: res.User}, nil
}

// Settings returns the public site settings
func (c *Client) Settings(ctx context.Context) (models.Settings, error) {
	var s models.Settings
	err := c.do(ctx, http.MethodGet, "/settings", nil, nil, nil, &s)
	return s, err
}

// SendMessage submits the public contact form
func (c *Client) SendMessage(ctx context.Context, name, email, message string) (models.Message, error) {
	var out models.Message
	body := models.Message{Name: name, Email: email, Message: message}
	err := c.do(ctx, http.MethodPost, "/messages", nil, nil, body, &out)
	return out, err
}

// Messages returns one page of the inbox
func (c *Client) Messages(ctx context.Context, sess Session, status string, page, pageSize int) (models.MessagePage, error) {
	v := url.Values{}
	if status != "" {
		v.Set("status", status)
	}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		v.Set("pageSize", strconv.Itoa(pageSize))
	}
	var out models.MessagePage
	err := c.do(ctx, http.MethodGet, "/messages", v, &sess, nil, &out)
	return out, err
}

// do sends one JSON request and decodes the response into out
func (c *Client) do(ctx context.Context, method, path string, query url.Values, sess *Session, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess != nil {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error  string                  `json:"error"`
		Errors []validation.FieldError `json:"errors"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(data))
		if body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
	}
	return &Error{Status: resp.StatusCode, Message: body.Error, Fields: body.Errors}
}
