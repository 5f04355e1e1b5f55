// Package api is the REST client for the catalog backend.
//
// Every request goes to {api_url}/api, carries JSON, and is authenticated
// with a bearer token when the configured TokenSource has one. Non-2xx
// responses come back as *Error; use Classify to decide what to do with them.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/cristianoliveira/retroshelf/internal/config"
	"github.com/cristianoliveira/retroshelf/internal/logging"
	"github.com/cristianoliveira/retroshelf/internal/version"
	"github.com/google/uuid"
)

const (
	defaultAPIURL  = "http://localhost:3001"
	defaultLocale  = "en"
	defaultTimeout = 10 * time.Second
	apiPrefix      = "/api"

	// HeaderRequestID correlates a request with backend logs.
	HeaderRequestID = "X-Request-ID"
)

// TokenSource supplies the current session token. An empty token means
// the request is sent unauthenticated.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token() string { return string(t) }

// Doer executes HTTP requests. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Client.
type Options struct {
	HTTP      Doer
	Tokens    TokenSource
	Locale    string
	Timeout   time.Duration
	UserAgent string
	Logger    logging.Logger
}

// Option modifies client options.
type Option func(*Options)

// WithHTTPClient replaces the transport.
func WithHTTPClient(d Doer) Option {
	return func(o *Options) { o.HTTP = d }
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(o *Options) { o.Tokens = ts }
}

// WithLocale sets the Accept-Language sent with every request.
func WithLocale(locale string) Option {
	return func(o *Options) { o.Locale = locale }
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithLogger sets the request logger.
func WithLogger(l logging.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// Client talks to the catalog REST API.
type Client struct {
	baseURL   *url.URL
	http      Doer
	tokens    TokenSource
	locale    string
	timeout   time.Duration
	userAgent string
	logger    logging.Logger
	requestID func() string
}

// NewClient builds a Client for apiURL, e.g. "https://api.example.com".
func NewClient(apiURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	o := Options{
		Locale:    defaultLocale,
		Timeout:   defaultTimeout,
		UserAgent: version.UserAgent(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.HTTP == nil {
		o.HTTP = &http.Client{}
	}
	if o.Logger == nil {
		o.Logger = logging.Noop()
	}
	return &Client{
		baseURL:   base,
		http:      o.HTTP,
		tokens:    o.Tokens,
		locale:    o.Locale,
		timeout:   o.Timeout,
		userAgent: o.UserAgent,
		logger:    o.Logger,
		requestID: uuid.NewString,
	}, nil
}

// NewFromConfig builds a Client from api_url, locale and request_timeout.
func NewFromConfig(tokens TokenSource, opts ...Option) (*Client, error) {
	base := []Option{
		WithTokenSource(tokens),
		WithLocale(config.Get("locale", defaultLocale)),
		WithTimeout(config.GetDuration("request_timeout", defaultTimeout)),
		WithLogger(logging.GetGlobal()),
	}
	return NewClient(config.Get("api_url", defaultAPIURL), append(base, opts...)...)
}

// Locale returns the locale sent as Accept-Language.
func (c *Client) Locale() string {
	return c.locale
}

// SetTokenSource swaps the token source. It must not race with requests.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// Get decodes GET path?query into dest.
func (c *Client) Get(ctx context.Context, path string, query url.Values, dest any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, dest)
}

// Post sends body as JSON and decodes the response into dest.
func (c *Client) Post(ctx context.Context, path string, body, dest any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, dest)
}

// Put sends body as JSON and decodes the response into dest.
func (c *Client) Put(ctx context.Context, path string, body, dest any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, dest)
}

// Patch sends body as JSON and decodes the response into dest.
func (c *Client) Patch(ctx context.Context, path string, body, dest any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, dest)
}

// Delete issues DELETE path and decodes any response into dest.
func (c *Client) Delete(ctx context.Context, path string, dest any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, dest)
}

// Do performs one JSON request. body and dest may be nil.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	return c.send(ctx, method, path, query, reader, "application/json", dest)
}

// UploadFile is one file part of a multipart upload.
type UploadFile struct {
	FieldName   string
	FileName    string
	ContentType string
	Content     io.Reader
}

// Upload sends fields and file as multipart/form-data with POST.
func (c *Client) Upload(ctx context.Context, path string, fields map[string]string, file UploadFile, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return fmt.Errorf("write field %s: %w", name, err)
		}
	}
	if file.Content != nil {
		fieldName := file.FieldName
		if fieldName == "" {
			fieldName = "file"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldName, file.FileName))
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			return fmt.Errorf("create file part: %w", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return fmt.Errorf("copy file %s: %w", file.FileName, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart body: %w", err)
	}
	return c.send(ctx, http.MethodPost, path, nil, &buf, w.FormDataContentType(), dest)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, dest any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// path segments arrive already escaped
	rel, err := url.Parse(c.baseURL.Path + apiPrefix + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return fmt.Errorf("build request path %q: %w", path, err)
	}
	if len(query) > 0 {
		rel.RawQuery = query.Encode()
	}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := c.requestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(HeaderRequestID, requestID)
	if c.locale != "" {
		req.Header.Set("Accept-Language", c.locale)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", "method", method, "path", rel.Path, "request_id", requestID, "error", err)
		return fmt.Errorf("execute request %s %s: %w", method, rel.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	c.logger.Debug("api request", "method", method, "path", rel.Path, "status", resp.StatusCode,
		"request_id", requestID, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(method, rel.Path, resp.StatusCode, resp.Body)
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("decode response %s %s: %w", method, rel.Path, err)
	}
	return nil
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", apiURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
