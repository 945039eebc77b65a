package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"SkillForge/internal/config"
	"SkillForge/internal/ports"
	"SkillForge/internal/prompts"
)

// GeminiClient implements ports.ModelInvoker against the Gemini REST API.
// Attachments travel inline as base64 parts, so a retried call has no
// server-side residue and is safe to repeat blindly.
type GeminiClient struct {
	endpoint    string
	model       string
	apiKey      string
	promptLimit int
	retry       config.RetryConfig
	sink        ports.EventSink
	httpClient  *http.Client
	sleep       func(time.Duration)
}

var _ ports.ModelInvoker = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration.
func NewGeminiClient(cfg config.ModelConfig, retry config.RetryConfig, promptLimit int, sink ports.EventSink) *GeminiClient {
	return &GeminiClient{
		endpoint:    strings.TrimSuffix(cfg.Endpoint, "/"),
		model:       cfg.Name,
		apiKey:      cfg.APIKey,
		promptLimit: promptLimit,
		retry:       retry,
		sink:        sink,
		httpClient:  &http.Client{},
		sleep:       time.Sleep,
	}
}

// Invoke sends one prompt (plus optional attachment) and returns the
// generated text. Transient failures are retried with linearly increasing
// backoff; attachment calls back off longer. Exhausting all attempts yields
// an *ExhaustedError wrapping the last failure.
func (c *GeminiClient) Invoke(ctx context.Context, req ports.ModelRequest) (string, error) {
	if c == nil || c.model == "" || c.endpoint == "" {
		return "", fmt.Errorf("gemini client misconfigured")
	}

	prompt := prompts.Clip(req.Prompt, c.promptLimit)

	attempts := c.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := c.retry.TextBackoff()
	if req.Attachment != nil {
		backoff = c.retry.UploadBackoff()
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := c.generate(ctx, prompt, req.Attachment)
		if err == nil {
			return text, nil
		}
		if !isTransient(err) {
			return "", err
		}

		lastErr = err
		if attempt < attempts {
			wait := time.Duration(attempt) * backoff
			c.emit(ports.Event{
				Kind:    ports.EventRetryAttempt,
				Attempt: attempt + 1,
				Wait:    wait,
				Err:     err,
			})
			c.sleep(wait)
		}
	}

	return "", &ExhaustedError{Attempts: attempts, Err: lastErr}
}

type requestPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

func (c *GeminiClient) generate(ctx context.Context, prompt string, attachment *ports.Attachment) (string, error) {
	parts := []requestPart{{Text: prompt}}

	if attachment != nil {
		raw, err := os.ReadFile(attachment.Path)
		if err != nil {
			return "", &AttachmentError{Path: attachment.Path, Err: err}
		}
		parts = append(parts, requestPart{InlineData: &inlineData{
			MimeType: attachment.MediaType,
			Data:     base64.StdEncoding.EncodeToString(raw),
		}})
	}

	body, err := json.Marshal(map[string]any{
		"contents": []map[string]any{{"parts": parts}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal gemini payload: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &CredentialError{Status: resp.Status, Body: strings.TrimSpace(string(payload))}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}

	if len(out.Candidates) == 0 {
		return "", nil
	}

	var b strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String(), nil
}

func (c *GeminiClient) emit(event ports.Event) {
	if c.sink != nil {
		c.sink.Emit(event)
	}
}
