package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"SkillForge/internal/config"
	"SkillForge/internal/ports"
	"SkillForge/internal/prompts"
)

func testRetry(attempts int) config.RetryConfig {
	return config.RetryConfig{
		MaxAttempts:          attempts,
		TextBackoffSeconds:   10,
		UploadBackoffSeconds: 15,
	}
}

func newTestClient(endpoint string, retry config.RetryConfig) (*GeminiClient, *[]time.Duration) {
	client := NewGeminiClient(config.ModelConfig{
		Endpoint: endpoint,
		Name:     "gemini-test",
		APIKey:   "key",
	}, retry, 900_000, nil)

	waits := &[]time.Duration{}
	client.sleep = func(d time.Duration) { *waits = append(*waits, d) }
	return client, waits
}

func candidateResponse(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text)
}

// flakyTransport fails the first n round trips with a connection error, then
// hands off to the real transport.
type flakyTransport struct {
	failures int
	next     http.RoundTripper
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if f.failures > 0 {
		f.failures--
		return nil, &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection reset by peer")}
	}
	return f.next.RoundTrip(req)
}

func TestInvokeReturnsGeneratedText(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "models/gemini-test:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "key" {
			t.Errorf("missing api key header")
		}
		fmt.Fprint(w, candidateResponse("analysis text"))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, testRetry(3))

	text, err := client.Invoke(context.Background(), ports.ModelRequest{Prompt: "hello"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if text != "analysis text" {
		t.Fatalf("text = %q", text)
	}
}

func TestInvokeRetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, candidateResponse("recovered"))
	}))
	defer server.Close()

	client, waits := newTestClient(server.URL, testRetry(3))
	client.httpClient.Transport = &flakyTransport{failures: 2, next: http.DefaultTransport}

	text, err := client.Invoke(context.Background(), ports.ModelRequest{Prompt: "hello"})
	if err != nil {
		t.Fatalf("Invoke after transient failures: %v", err)
	}
	if text != "recovered" {
		t.Fatalf("text = %q", text)
	}

	// Linear backoff: attempt index times the text base delay.
	want := []time.Duration{10 * time.Second, 20 * time.Second}
	if len(*waits) != len(want) {
		t.Fatalf("waits = %v, want %v", *waits, want)
	}
	for i := range want {
		if (*waits)[i] != want[i] {
			t.Fatalf("waits[%d] = %v, want %v", i, (*waits)[i], want[i])
		}
	}
}

func TestInvokeExhaustsRetries(t *testing.T) {
	t.Parallel()

	client, waits := newTestClient("http://127.0.0.1:0", testRetry(3))
	client.httpClient.Transport = &flakyTransport{failures: 99, next: http.DefaultTransport}

	_, err := client.Invoke(context.Background(), ports.ModelRequest{Prompt: "hello"})
	if err == nil {
		t.Fatal("expected exhaustion error")
	}

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error type = %T: %v", err, err)
	}
	if exhausted.Attempts != 3 {
		t.Fatalf("attempts = %d, want 3", exhausted.Attempts)
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Fatalf("message missing attempt count: %v", err)
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("exhaustion does not wrap the last failure: %v", err)
	}
	if len(*waits) != 2 {
		t.Fatalf("slept %d times, want 2 (no sleep after final attempt)", len(*waits))
	}
}

func TestInvokeFatalStatusNotRetried(t *testing.T) {
	t.Parallel()

	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client, waits := newTestClient(server.URL, testRetry(3))

	_, err := client.Invoke(context.Background(), ports.ModelRequest{Prompt: "hello"})
	if err == nil {
		t.Fatal("expected error")
	}
	var exhausted *ExhaustedError
	if errors.As(err, &exhausted) {
		t.Fatalf("fatal error was retried: %v", err)
	}
	if calls != 1 || len(*waits) != 0 {
		t.Fatalf("calls = %d, waits = %v; fatal failures must propagate immediately", calls, *waits)
	}
}

func TestInvokeCredentialRejection(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "API key invalid", http.StatusForbidden)
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, testRetry(3))

	_, err := client.Invoke(context.Background(), ports.ModelRequest{Prompt: "hello"})
	var credential *CredentialError
	if !errors.As(err, &credential) {
		t.Fatalf("error type = %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Fatalf("credential error missing remediation hint: %v", err)
	}
}

func TestInvokeTruncatesPromptAtCeiling(t *testing.T) {
	t.Parallel()

	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		fmt.Fprint(w, candidateResponse("ok"))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, testRetry(1))
	client.promptLimit = 100

	long := strings.Repeat("x", 500)
	if _, err := client.Invoke(context.Background(), ports.ModelRequest{Prompt: long}); err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	if !strings.Contains(body, "[content truncated]") {
		t.Fatal("truncation marker missing from request")
	}
	if strings.Contains(body, strings.Repeat("x", 101)) {
		t.Fatal("prompt not cut at the ceiling")
	}
}

func TestAttachmentUsesUploadBackoff(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, candidateResponse("ok"))
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "img.png")
	if err := os.WriteFile(path, []byte{0x89, 0x50, 0x4e, 0x47}, 0o644); err != nil {
		t.Fatalf("fixture: %v", err)
	}

	client, waits := newTestClient(server.URL, testRetry(2))
	client.httpClient.Transport = &flakyTransport{failures: 1, next: http.DefaultTransport}

	_, err := client.Invoke(context.Background(), ports.ModelRequest{
		Prompt:     "analyze",
		Attachment: &ports.Attachment{Path: path, MediaType: "image/png"},
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if len(*waits) != 1 || (*waits)[0] != 15*time.Second {
		t.Fatalf("waits = %v, want the larger upload backoff", *waits)
	}
}

func TestMissingAttachmentIsFatal(t *testing.T) {
	t.Parallel()

	client, waits := newTestClient("http://127.0.0.1:0", testRetry(3))

	_, err := client.Invoke(context.Background(), ports.ModelRequest{
		Prompt:     "analyze",
		Attachment: &ports.Attachment{Path: "/does/not/exist.png", MediaType: "image/png"},
	})
	var attachment *AttachmentError
	if !errors.As(err, &attachment) {
		t.Fatalf("error type = %T: %v", err, err)
	}
	if len(*waits) != 0 {
		t.Fatal("attachment load failure must not be retried")
	}
}

func TestClipKeepsShortContent(t *testing.T) {
	t.Parallel()

	if got := prompts.Clip("short", 100); got != "short" {
		t.Fatalf("Clip altered content below the ceiling: %q", got)
	}
}
