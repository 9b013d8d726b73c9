// Package whisperapi is a client for an OpenAI-compatible speech-to-text
// server. It implements the asr backend contracts: Load binds a model
// identifier after checking the server knows it, Infer posts audio for
// transcription.
package whisperapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lingoflow/internal/asr"
)

type ObserverFunc func(endpoint string, status int, duration time.Duration)

type Option func(*Client)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	observer   ObserverFunc
}

type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("speech-to-text request failed with status %d", e.StatusCode)
}

func WithObserver(observer ObserverFunc) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

func New(baseURL, apiKey string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: httpClient,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Load verifies modelID against the server's model list and returns a handle
// bound to it. The server loads weights on first touch, so an unknown
// identifier fails here rather than on the first transcription.
func (c *Client) Load(ctx context.Context, modelID string) (asr.Handle, error) {
	models, err := c.listModels(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range models {
		if id == modelID || strings.HasSuffix(id, "/"+modelID) {
			return &modelHandle{client: c, modelID: id}, nil
		}
	}
	return nil, fmt.Errorf("model %q not available on server", modelID)
}

// CheckModels probes the server's model list; used by readiness checks.
func (c *Client) CheckModels(ctx context.Context) error {
	_, err := c.listModels(ctx)
	return err
}

func (c *Client) listModels(ctx context.Context) ([]string, error) {
	started := time.Now()
	statusCode := 0
	defer func() { c.observe("models", statusCode, time.Since(started)) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{StatusCode: resp.StatusCode, Body: truncateBody(string(body))}
	}

	var parsed struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("invalid models response: %w", err)
	}
	ids := make([]string, 0, len(parsed.Data))
	for _, m := range parsed.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

type modelHandle struct {
	client  *Client
	modelID string
}

func (h *modelHandle) Infer(ctx context.Context, audioPath string, opts asr.InferOptions) (asr.InferResult, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return asr.InferResult{}, &asr.AudioDecodeError{Path: audioPath, Err: err}
	}
	defer file.Close()
	return h.client.transcribe(ctx, file, filepath.Base(audioPath), h.modelID, audioPath, opts)
}

func (c *Client) transcribe(ctx context.Context, file io.Reader, fileName, modelID, audioPath string, opts asr.InferOptions) (asr.InferResult, error) {
	started := time.Now()
	statusCode := 0
	defer func() { c.observe("audio_transcriptions", statusCode, time.Since(started)) }()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fields := map[string]string{
		"model":           modelID,
		"response_format": "verbose_json",
	}
	if opts.Language != "" {
		fields["language"] = opts.Language
	}
	if opts.DisableHalfPrecision {
		fields["fp16"] = "false"
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return asr.InferResult{}, err
		}
	}
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return asr.InferResult{}, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return asr.InferResult{}, err
	}
	if err := writer.Close(); err != nil {
		return asr.InferResult{}, err
	}

	url := c.baseURL + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body.Bytes()))
	if err != nil {
		return asr.InferResult{}, err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return asr.InferResult{}, err
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return asr.InferResult{}, err
	}

	if resp.StatusCode != http.StatusOK {
		upErr := &Error{StatusCode: resp.StatusCode, Body: truncateBody(string(respBody))}
		if isDecodeStatus(resp.StatusCode) {
			return asr.InferResult{}, &asr.AudioDecodeError{Path: audioPath, Err: upErr}
		}
		return asr.InferResult{}, upErr
	}

	return parseTranscription(respBody)
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func (c *Client) observe(endpoint string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer(endpoint, status, duration)
	}
}

// isDecodeStatus reports statuses the server uses for unreadable audio.
func isDecodeStatus(status int) bool {
	switch status {
	case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusUnprocessableEntity:
		return true
	default:
		return false
	}
}

func parseTranscription(data []byte) (asr.InferResult, error) {
	var parsed struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return asr.InferResult{}, fmt.Errorf("invalid transcription response: %w", err)
	}
	// Empty text is a valid transcription of silence.
	return asr.InferResult{Text: parsed.Text, Language: parsed.Language}, nil
}

func truncateBody(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 4096 {
		return s
	}
	return s[:4096] + "..."
}
