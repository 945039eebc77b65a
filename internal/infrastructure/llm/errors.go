package llm

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
)

// ExhaustedError reports that every retry attempt failed with a transient
// error. It wraps the last underlying failure.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("model call failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// CredentialError marks an authentication or authorization rejection from the
// model service. Never retried.
type CredentialError struct {
	Status string
	Body   string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("model rejected credentials (%s): %s; the key may be expired or revoked, generate a fresh one or check GEMINI_API_KEY", e.Status, e.Body)
}

// AttachmentError marks a failure to load the binary attachment from disk.
// Fatal for the document's remaining stages.
type AttachmentError struct {
	Path string
	Err  error
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("load attachment %s: %v", e.Path, e.Err)
}

func (e *AttachmentError) Unwrap() error { return e.Err }

// isTransient classifies failures worth retrying: network, TLS, timeout,
// connection and generic I/O errors. HTTP status rejections and malformed
// responses are fatal and propagate immediately.
func isTransient(err error) bool {
	if err == nil {
		return false
	}

	var attachmentErr *AttachmentError
	if errors.As(err, &attachmentErr) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return true
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) || errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}

	return os.IsTimeout(err)
}
