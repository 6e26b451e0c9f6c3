package sse

import (
	"fmt"
	"net/http"
)

// Writer frames event payloads and keep-alive comments for one SSE
// connection. All writes happen from the streaming loop's goroutine.
type Writer struct {
	w        http.ResponseWriter
	flusher  http.Flusher
	clientID string
}

// NewWriter creates a writer over an established SSE response.
func NewWriter(w http.ResponseWriter, flusher http.Flusher, clientID string) *Writer {
	return &Writer{
		w:        w,
		flusher:  flusher,
		clientID: clientID,
	}
}

// WriteEvent writes one `data: <payload>` frame and flushes.
func (s *Writer) WriteEvent(payload string) error {
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("write event failed: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// WriteKeepAlive writes an SSE comment (: keepalive\n\n) and flushes.
// Returns error if connection is closed or write fails.
func (s *Writer) WriteKeepAlive() error {
	// SSE spec: lines starting with : are comments (ignored by client)
	if _, err := fmt.Fprintf(s.w, ": keepalive\n\n"); err != nil {
		return fmt.Errorf("write keepalive failed: %w", err)
	}

	s.flusher.Flush()

	// Health check: attempt zero-byte write to detect closed connections
	if _, err := s.w.Write([]byte{}); err != nil {
		return fmt.Errorf("connection closed: %w", err)
	}

	return nil
}
