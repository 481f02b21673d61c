// Package client talks to a running dealerhub server over its HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"dealerhub/importer"
	"dealerhub/record"
	"dealerhub/web"
)

const defaultUserAgent = "dealerhub-cli/1.0"

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	BaseURL    string
	UserAgent  string
	HTTPClient httpDoer
}

type HTTPClient struct {
	baseURL    string
	userAgent  string
	httpClient httpDoer
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request %s %s failed with status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func NewClient(cfg ClientConfig) (*HTTPClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}

	parsedBase, err := url.Parse(baseURL)
	if err != nil || parsedBase.Scheme == "" || parsedBase.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: 5 * time.Minute}
	}

	return &HTTPClient{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: doer,
	}, nil
}

// Health reports whether the server can reach its storage backend.
func (c *HTTPClient) Health(ctx context.Context) error {
	var out map[string]string
	return c.doJSON(ctx, http.MethodGet, "/healthz", nil, "", &out)
}

func (c *HTTPClient) Schema(ctx context.Context, kind record.Kind) (web.SchemaView, error) {
	var out web.SchemaView
	err := c.doJSON(ctx, http.MethodGet, "/api/schema/"+url.PathEscape(kind.String()), nil, "", &out)
	return out, err
}

func (c *HTTPClient) Records(ctx context.Context, kind record.Kind) ([]web.RecordView, error) {
	var out []web.RecordView
	err := c.doJSON(ctx, http.MethodGet, "/api/records/"+url.PathEscape(kind.String()), nil, "", &out)
	return out, err
}

func (c *HTTPClient) Summary(ctx context.Context) ([]web.SummaryView, error) {
	var out []web.SummaryView
	err := c.doJSON(ctx, http.MethodGet, "/api/summary", nil, "", &out)
	return out, err
}

// Import uploads content as the multipart "file" field. The server answers
// every import with a Result; it is returned together with a *StatusError
// when the import failed as a whole.
func (c *HTTPClient) Import(ctx context.Context, kind record.Kind, fileName string, content []byte) (importer.Result, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filepath.Base(fileName))
	if err != nil {
		return importer.Result{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return importer.Result{}, fmt.Errorf("write form file: %w", err)
	}
	if err := form.Close(); err != nil {
		return importer.Result{}, fmt.Errorf("close form: %w", err)
	}

	path := "/api/import/" + url.PathEscape(kind.String())
	resp, err := c.do(ctx, http.MethodPost, path, &body, form.FormDataContentType())
	if err != nil {
		return importer.Result{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return importer.Result{}, fmt.Errorf("read response %s %s: %w", http.MethodPost, path, err)
	}

	var result importer.Result
	decodeErr := json.Unmarshal(raw, &result)
	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusUnprocessableEntity:
		if decodeErr != nil {
			return importer.Result{}, fmt.Errorf("decode response %s %s: %w", http.MethodPost, path, decodeErr)
		}
		return result, nil
	case decodeErr == nil && result.Message != "":
		return result, &StatusError{Method: http.MethodPost, Path: path, StatusCode: resp.StatusCode, Message: result.Message}
	default:
		return importer.Result{}, &StatusError{Method: http.MethodPost, Path: path, StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}
}

func (c *HTTPClient) do(ctx context.Context, method, endpointPath string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpointPath, body)
	if err != nil {
		return nil, fmt.Errorf("create request %s %s: %w", method, endpointPath, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s failed: %w", method, endpointPath, err)
	}
	return resp, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, endpointPath string, body io.Reader, contentType string, out any) error {
	resp, err := c.do(ctx, method, endpointPath, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{
			Method:     method,
			Path:       endpointPath,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(responseBody),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response %s %s: %w", method, endpointPath, err)
	}
	return nil
}

// errorMessage extracts {"error": "..."} bodies and falls back to the raw text.
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}
