// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "reportdesk/internal/common/errors"
	"reportdesk/internal/common/logger"
	"reportdesk/internal/common/metrics"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderRequestID     = "X-Request-ID"
	ContentTypeJSON     = "application/json"
)

// TokenSource yields the bearer token for the next request, or "" when anonymous.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a plain function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	Tokens     TokenSource
	Logger     logger.Logger
	HTTPClient *http.Client
}

// Client is the single REST wrapper every feature service talks through.
// It never retries.
type Client struct {
	baseURL    string
	userAgent  string
	tokens     TokenSource
	logger     logger.Logger
	httpClient *http.Client
}

// Result describes a successful response. Empty is set for 204 and for
// bodies with no content; out is left untouched in that case.
type Result struct {
	Status    int
	Empty     bool
	RequestID string
}

// FilePart is one file of a multipart upload.
type FilePart struct {
	Field    string
	Filename string
	Content  io.Reader
}

// OpenFiles opens each path as an upload part named after its base name.
// The returned func closes every opened file.
func OpenFiles(field string, paths []string) ([]FilePart, func(), error) {
	parts := make([]FilePart, 0, len(paths))
	opened := make([]*os.File, 0, len(paths))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for _, p := range paths {
		fh, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, fh)
		parts = append(parts, FilePart{Field: field, Filename: filepath.Base(p), Content: fh})
	}
	return parts, closeAll, nil
}

// Blob is a binary download.
type Blob struct {
	Data        []byte
	ContentType string
	Filename    string
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		tokens:     opts.Tokens,
		logger:     log.WithFields(map[string]interface{}{"component": "api-client"}),
		httpClient: httpClient,
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetTokenSource swaps the token source; used when the session manager is
// built after the client.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

// DoJSON sends body (if non-nil) as JSON and decodes a JSON response into out.
func (c *Client) DoJSON(ctx context.Context, method, path string, body, out interface{}) (Result, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return Result{}, apperrors.NewValidationError("Failed to encode request", map[string]string{"body": err.Error()})
		}
		reader = bytes.NewReader(payload)
	}

	resp, data, res, err := c.send(ctx, method, path, reader, ContentTypeJSON)
	if err != nil {
		return res, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		res.Empty = true
		return res, nil
	}
	if out == nil {
		return res, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return res, apperrors.NewParseError(path, err)
	}
	return res, nil
}

func (c *Client) Get(ctx context.Context, path string, out interface{}) (Result, error) {
	return c.DoJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) (Result, error) {
	return c.DoJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) (Result, error) {
	return c.DoJSON(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) (Result, error) {
	return c.DoJSON(ctx, http.MethodDelete, path, nil, nil)
}

// Upload posts a multipart form. The Content-Type header is the multipart
// boundary type, never JSON.
func (c *Client) Upload(ctx context.Context, path string, file FilePart, fields map[string]string, out interface{}) (Result, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	field := file.Field
	if field == "" {
		field = "file"
	}
	part, err := mw.CreateFormFile(field, file.Filename)
	if err != nil {
		return Result{}, apperrors.NewUploadFailedError(file.Filename, err)
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return Result{}, apperrors.NewUploadFailedError(file.Filename, err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return Result{}, apperrors.NewUploadFailedError(file.Filename, err)
		}
	}
	if err := mw.Close(); err != nil {
		return Result{}, apperrors.NewUploadFailedError(file.Filename, err)
	}

	resp, data, res, err := c.send(ctx, http.MethodPost, path, &buf, mw.FormDataContentType())
	if err != nil {
		return res, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		res.Empty = true
		return res, nil
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return res, apperrors.NewParseError(path, err)
		}
	}
	return res, nil
}

// Download fetches a binary body without a JSON Content-Type.
func (c *Client) Download(ctx context.Context, path string) (*Blob, error) {
	resp, data, _, err := c.send(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return &Blob{
		Data:        data,
		ContentType: resp.Header.Get(HeaderContentType),
		Filename:    filenameFromDisposition(resp.Header.Get("Content-Disposition")),
	}, nil
}

// send performs the request and returns the fully read body. Non-2xx
// responses are turned into *APIError here.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, []byte, Result, error) {
	requestID := uuid.NewString()
	res := Result{RequestID: requestID}
	endpoint := EndpointLabel(path)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		metrics.APIRequestFailures.WithLabelValues(method, endpoint, string(apperrors.ErrCodeTransport)).Inc()
		return nil, nil, res, apperrors.NewTransportError(method, path, err)
	}
	if contentType != "" {
		req.Header.Set(HeaderContentType, contentType)
	}
	req.Header.Set(HeaderRequestID, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set(HeaderAuthorization, "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	metrics.APIRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequestFailures.WithLabelValues(method, endpoint, string(apperrors.ErrCodeTransport)).Inc()
		c.logger.Warn("request failed", map[string]interface{}{
			"method":    method,
			"path":      path,
			"requestId": requestID,
			"error":     err.Error(),
		})
		return nil, nil, res, apperrors.NewTransportError(method, path, err)
	}
	res.Status = resp.StatusCode
	metrics.APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		resp.Body.Close()
		metrics.APIRequestFailures.WithLabelValues(method, endpoint, string(apperrors.ErrCodeTransport)).Inc()
		return nil, nil, res, apperrors.NewTransportError(method, path, err)
	}

	c.logger.Debug("request completed", map[string]interface{}{
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"requestId":  requestID,
		"durationMs": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		var raw map[string]interface{}
		if len(bytes.TrimSpace(data)) > 0 {
			if err := json.Unmarshal(data, &raw); err != nil {
				raw = nil
			}
		}
		metrics.APIRequestFailures.WithLabelValues(method, endpoint, string(apperrors.ErrCodeHTTP)).Inc()
		return nil, nil, res, apperrors.NewAPIError(resp.StatusCode, raw, data)
	}

	return resp, data, res, nil
}

var idSegment = regexp.MustCompile(`^([0-9]+|[0-9a-fA-F-]{16,})$`)

// EndpointLabel collapses id-like path segments so metric labels stay bounded.
func EndpointLabel(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if idSegment.MatchString(p) {
			parts[i] = ":id"
		}
	}
	return "/" + strings.Join(parts, "/")
}

func filenameFromDisposition(header string) string {
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "filename=") {
			return strings.Trim(strings.TrimPrefix(part, "filename="), `"`)
		}
	}
	return ""
}

// PathEscape joins path segments, escaping each one.
func PathEscape(format string, args ...string) string {
	escaped := make([]interface{}, len(args))
	for i, a := range args {
		escaped[i] = url.PathEscape(a)
	}
	return fmt.Sprintf(format, escaped...)
}
