// Package googletrans is a client for the Google Translate web endpoint
// (translate_a/single with client=gtx), which needs no API key.
package googletrans

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

const ProviderName = "google"

type ObserverFunc func(provider string, status int, duration time.Duration)

type Option func(*Client)

type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   ObserverFunc
}

type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("google translate request failed with status %d", e.StatusCode)
}

func WithObserver(observer ObserverFunc) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

func New(baseURL string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Client) Name() string { return ProviderName }

func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	started := time.Now()
	statusCode := 0
	defer func() { c.observe(statusCode, time.Since(started)) }()

	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", source)
	query.Set("tl", target)
	query.Set("dt", "t")
	query.Set("q", text)

	reqURL := c.baseURL + "/translate_a/single?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", &Error{StatusCode: resp.StatusCode, Body: truncateBody(string(body))}
	}

	return parseTranslation(body)
}

// parseTranslation walks the endpoint's nested-array payload:
// [[["translated","original",...],...],...]. The first element holds the
// translated segments; everything past index 0 of a segment is ignored.
func parseTranslation(data []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("invalid translation response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translation response")
	}

	var segments []json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("invalid translation segments: %w", err)
	}

	var sb strings.Builder
	for _, raw := range segments {
		var segment []json.RawMessage
		if err := json.Unmarshal(raw, &segment); err != nil || len(segment) == 0 {
			continue
		}
		var piece string
		if err := json.Unmarshal(segment[0], &piece); err != nil {
			continue
		}
		sb.WriteString(piece)
	}

	result := sb.String()
	if strings.TrimSpace(result) == "" {
		return "", fmt.Errorf("translation response contained no text")
	}
	return result, nil
}

func (c *Client) observe(status int, duration time.Duration) {
	if c.observer != nil {
		c.observer(ProviderName, status, duration)
	}
}

func truncateBody(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 4096 {
		return s
	}
	return s[:4096] + "..."
}
