package sse

import (
	"net/http/httptest"
	"testing"
)

func TestWriteEventFraming(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec, rec, "client-1")

	if err := w.WriteEvent(`{"event":{"type":"draft:updated"}}`); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}

	want := "data: {\"event\":{\"type\":\"draft:updated\"}}\n\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("frame = %q, want %q", got, want)
	}
	if !rec.Flushed {
		t.Error("WriteEvent did not flush")
	}
}

func TestWriteKeepAliveIsComment(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec, rec, "client-1")

	if err := w.WriteKeepAlive(); err != nil {
		t.Fatalf("WriteKeepAlive: %v", err)
	}

	if got := rec.Body.String(); got != ": keepalive\n\n" {
		t.Errorf("frame = %q, want comment line", got)
	}
	if !rec.Flushed {
		t.Error("WriteKeepAlive did not flush")
	}
}
