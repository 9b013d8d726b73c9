// Package mymemory is a client for the MyMemory translation REST API.
package mymemory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const ProviderName = "mymemory"

type ObserverFunc func(provider string, status int, duration time.Duration)

type Option func(*Client)

type Client struct {
	baseURL    string
	email      string
	httpClient *http.Client
	observer   ObserverFunc
}

type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("mymemory request failed with status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("mymemory request failed with status %d", e.StatusCode)
}

func WithObserver(observer ObserverFunc) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// WithEmail attaches a contact address to requests, which raises the API's
// daily quota.
func WithEmail(email string) Option {
	return func(c *Client) {
		c.email = strings.TrimSpace(email)
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
	query.Set("q", text)
	query.Set("langpair", source+"|"+target)
	if c.email != "" {
		query.Set("de", c.email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/get?"+query.Encode(), nil)
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
		return "", &Error{StatusCode: resp.StatusCode, Detail: truncate(string(body))}
	}

	return parseResponse(body)
}

func parseResponse(data []byte) (string, error) {
	var parsed struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
		// The API returns this field as a number on success but as a
		// string on some errors.
		ResponseStatus  any    `json:"responseStatus"`
		ResponseDetails string `json:"responseDetails"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("invalid mymemory response: %w", err)
	}

	status := coerceStatus(parsed.ResponseStatus)
	if status != http.StatusOK {
		return "", &Error{StatusCode: status, Detail: truncate(parsed.ResponseDetails)}
	}

	text := parsed.ResponseData.TranslatedText
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("mymemory response contained no text")
	}
	return text, nil
}

func coerceStatus(value any) int {
	switch v := value.(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}

func (c *Client) observe(status int, duration time.Duration) {
	if c.observer != nil {
		c.observer(ProviderName, status, duration)
	}
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 1024 {
		return s
	}
	return s[:1024] + "..."
}
