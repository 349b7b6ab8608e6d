// Package mclogs is a client for the mclo.gs paste service: upload a log to
// share it, or fetch a shared log by id for diagnosis.
package mclogs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public API endpoint.
	DefaultBaseURL = "https://api.mclo.gs"

	defaultTimeout     = 30 * time.Second
	defaultMaxRawBytes = 10 * 1024 * 1024
	maxResponseBytes   = 64 * 1024
)

// Rate limiter defaults: the public service allows 60 requests per minute.
const (
	defaultRateLimit = 60.0 / 60.0
	defaultBurst     = 5
)

// ErrNotFound is returned by Raw for an unknown paste id.
var ErrNotFound = errors.New("paste not found")

// APIError is a failure reported by the service in its JSON envelope.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mclo.gs: %s (status %d)", e.Message, e.StatusCode)
}

// Config configures a Client. Zero fields take their defaults.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond limits outgoing requests; Burst is the bucket size.
	RequestsPerSecond float64
	Burst             int
	// MaxRawBytes caps the size of a fetched paste.
	MaxRawBytes int64
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Paste describes an uploaded log.
type Paste struct {
	ID  string `json:"id"`
	URL string `json:"url"`
	Raw string `json:"raw"`
}

// Client talks to the paste service. It is safe for concurrent use.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxRawBytes int64
}

// New returns a Client for cfg.
func New(cfg Config) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", base)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := cfg.RequestsPerSecond
	if limit <= 0 {
		limit = defaultRateLimit
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}

	maxRaw := cfg.MaxRawBytes
	if maxRaw <= 0 {
		maxRaw = defaultMaxRawBytes
	}

	return &Client{
		baseURL:     strings.TrimRight(base, "/"),
		httpClient:  httpClient,
		limiter:     rate.NewLimiter(rate.Limit(limit), burst),
		maxRawBytes: maxRaw,
	}, nil
}

// envelope is the JSON shape of every API response.
type envelope struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	URL     string `json:"url"`
	Raw     string `json:"raw"`
	Error   string `json:"error"`
}

// Upload shares content and returns where it can be viewed.
func (c *Client) Upload(ctx context.Context, content string) (*Paste, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	form := url.Values{"content": {content}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/1/log", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uploading log: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding upload response (status %d): %w", resp.StatusCode, err)
	}
	if !env.Success || resp.StatusCode != http.StatusOK {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if env.ID == "" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "response has no paste id"}
	}

	return &Paste{ID: env.ID, URL: env.URL, Raw: env.Raw}, nil
}

// Raw fetches the plain text of paste id.
func (c *Client) Raw(ctx context.Context, id string) (string, error) {
	if !idPattern.MatchString(id) {
		return "", fmt.Errorf("invalid paste id %q", id)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/1/raw/"+id, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching paste: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	case resp.StatusCode != http.StatusOK:
		var env envelope
		_ = json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env)
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxRawBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading paste: %w", err)
	}
	if int64(len(data)) > c.maxRawBytes {
		return "", fmt.Errorf("paste %s exceeds %d bytes", id, c.maxRawBytes)
	}
	return string(data), nil
}

var (
	idPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

	// Matches: "https://mclo.gs/HpAwPry", "mclo.gs/HpAwPry"
	// Captures: (1) paste id
	linkPattern = regexp.MustCompile(`(?:https?://)?mclo\.gs/([A-Za-z0-9]+)`)
)

// ExtractIDs returns the paste ids linked in text, in order of first
// appearance, without duplicates.
func ExtractIDs(text string) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, m := range linkPattern.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			ids = append(ids, m[1])
		}
	}
	return ids
}
