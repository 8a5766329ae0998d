package spec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MinikPLayer/OpenApiCsGenerator/internal/jsonnode"
)

// ErrorCode categorizes errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError              ErrorCode = "InputError"
	NetworkError            ErrorCode = "NetworkError"
	ParseError              ErrorCode = "ParseError"
	MalformedSchemaFragment ErrorCode = "MalformedSchemaFragment"
	MalformedOperation      ErrorCode = "MalformedOperation"
)

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path or URL
	JSONPointer string // e.g. "#/paths/~1pets/get"
	Cause       error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option  { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option            { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }

// Document is a loaded OpenAPI or Swagger document.
type Document struct {
	// Location is the absolute file path or the URL the document came from.
	Location string
	// Version is 3 for OpenAPI 3.x, 2 for Swagger 2.0 and 0 when the
	// document does not say.
	Version int
	Root    *jsonnode.Node
}

// Load reads input (a filesystem path or an http/https URL) and parses it
// into a Document. JSON and YAML are both accepted. file:// URLs are
// blocked.
func Load(ctx context.Context, input string, opts ...Option) (*Document, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}

	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	// Classify input as URL or file path.
	u, uerr := url.Parse(input)
	isURL := uerr == nil && u.Scheme != "" && u.Host != ""

	var (
		raw      []byte
		location string
	)
	if isURL {
		scheme := strings.ToLower(u.Scheme)
		if scheme == "file" {
			return nil, &SpecError{Code: InputError, Message: "spec: file:// URLs are blocked by default", Location: input}
		}
		if scheme != "http" && scheme != "https" {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		body, err := fetchWithRetry(ctx, input, settings)
		if err != nil {
			return nil, &SpecError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
		}
		raw, location = body, input
	} else {
		abs, err := filepath.Abs(input)
		if err != nil {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
		}
		body, err := os.ReadFile(abs)
		if err != nil {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
		}
		raw, location = body, abs
	}

	return Parse(raw, location)
}

// Parse builds a Document from raw bytes already in memory.
func Parse(raw []byte, location string) (*Document, error) {
	root, err := jsonnode.Parse(raw)
	if err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse spec: %v", err), Location: location, Cause: err}
	}
	if root.Kind != jsonnode.Object {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse spec: top-level value is %s, expected object", root.Kind), Location: location}
	}
	return &Document{Location: location, Version: detectSpecVersion(root), Root: root}, nil
}

// detectSpecVersion returns 3 for OpenAPI v3, 2 for Swagger v2, else 0.
func detectSpecVersion(root *jsonnode.Node) int {
	if v := root.Get("openapi"); v != nil && strings.HasPrefix(strings.TrimSpace(v.Text()), "3.") {
		return 3
	}
	if v := root.Get("swagger"); v != nil && strings.HasPrefix(strings.TrimSpace(v.Text()), "2.") {
		return 2
	}
	return 0
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		body, retry, err := fetchOnce(ctx, client, rawURL)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}

// fetchOnce performs a single GET. retry reports whether a failure is
// transient (network error, 5xx or 429).
func fetchOnce(ctx context.Context, client *http.Client, rawURL string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 300 {
		body, err := io.ReadAll(resp.Body)
		return body, false, err
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("transient http error %d", resp.StatusCode)
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return nil, false, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
}
