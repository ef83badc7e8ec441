package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"todo/internal/logging"
)

// HTTPError is returned for any response with a non-2xx status.
// Body holds the decoded JSON response, the raw text when the body is not
// JSON, or nil when the body is empty.
type HTTPError struct {
	Method string
	URL    string
	Status int
	Body   any
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s %s failed: %d %s", e.Method, e.URL, e.Status, http.StatusText(e.Status))
	switch b := e.Body.(type) {
	case nil:
		return msg
	case string:
		if b = strings.TrimSpace(b); b != "" {
			return msg + ": " + b
		}
		return msg
	default:
		if data, err := json.Marshal(b); err == nil {
			return msg + ": " + string(data)
		}
		return msg
	}
}

// Transport performs JSON requests against a base URL.
type Transport struct {
	base   string
	client *http.Client
	log    *log.Logger
}

// NewTransport creates a transport. A nil client uses http.DefaultClient.
// A nil logger discards debug output.
func NewTransport(base string, client *http.Client, logger *log.Logger) *Transport {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Transport{
		base:   base,
		client: client,
		log:    logger,
	}
}

// URL joins the base URL and path with exactly one slash between them.
func (t *Transport) URL(path string) string {
	if t.base == "" {
		return path
	}
	return strings.TrimRight(t.base, "/") + "/" + strings.TrimLeft(path, "/")
}

// Get issues a GET request and decodes the response into out.
func (t *Transport) Get(ctx context.Context, path string, out any) error {
	return t.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body.
func (t *Transport) Post(ctx context.Context, path string, body, out any) error {
	return t.Do(ctx, http.MethodPost, path, body, out)
}

// Patch issues a PATCH request with a JSON body.
func (t *Transport) Patch(ctx context.Context, path string, body, out any) error {
	return t.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE request. out may be nil.
func (t *Transport) Delete(ctx context.Context, path string, out any) error {
	return t.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do sends one request. A nil body sends no payload; a nil out discards the
// response. An empty response body leaves out untouched.
func (t *Transport) Do(ctx context.Context, method, path string, body, out any) error {
	url := t.URL(path)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, url, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, url, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	t.log.Debug("request", "method", method, "url", url)

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", method, url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		herr := &HTTPError{
			Method: method,
			URL:    url,
			Status: resp.StatusCode,
			Body:   parseBody(raw),
		}
		t.log.Debug("request failed", "method", method, "url", url, "status", resp.StatusCode)
		return herr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, url, err)
	}
	return nil
}

// parseBody decodes raw as JSON, falling back to the raw text.
func parseBody(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}
