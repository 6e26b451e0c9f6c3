package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"drafthub/internal/bus"
	"drafthub/internal/capabilities"
	"drafthub/internal/domain/models"
	"drafthub/internal/handler/sse"
	"drafthub/internal/httputil"
)

// EventsHandler relays bus envelopes to dashboards over Server-Sent Events.
type EventsHandler struct {
	events    *bus.Bus
	manifest  *capabilities.Manifest
	sseConfig *sse.Config
	logger    *slog.Logger
}

// NewEventsHandler creates a new SSE events handler
func NewEventsHandler(events *bus.Bus, manifest *capabilities.Manifest, sseConfig *sse.Config, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		events:    events,
		manifest:  manifest,
		sseConfig: sseConfig,
		logger:    logger,
	}
}

// Stream handles GET /assistants/events.
// The first frame on every new stream is the handshake envelope; afterwards
// every published envelope arrives in publish order until the client
// disconnects. No event ids, no retry hints, no replay.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	sub := h.events.Subscribe()
	defer h.events.Unsubscribe(sub)

	writer := sse.NewWriter(w, flusher, sub.ID())

	h.logger.Info("SSE subscriber connected",
		"client_id", sub.ID(),
		"remote", r.RemoteAddr,
	)

	handshake := models.NewHandshakeEnvelope(time.Now(), h.manifest.Service, h.manifest.Capabilities)
	payload, err := json.Marshal(handshake)
	if err != nil {
		h.logger.Error("handshake marshal failed", "error", err)
		return
	}
	if err := writer.WriteEvent(string(payload)); err != nil {
		h.logger.Warn("handshake write failed", "client_id", sub.ID(), "error", err)
		return
	}

	keepalive := time.NewTicker(h.sseConfig.KeepAliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, open := <-sub.Events():
			if !open {
				return
			}
			if err := writer.WriteEvent(event); err != nil {
				h.logger.Debug("event write failed, closing stream",
					"client_id", sub.ID(),
					"error", err,
				)
				return
			}

		case <-keepalive.C:
			if err := writer.WriteKeepAlive(); err != nil {
				h.logger.Debug("keep-alive failed, closing stream",
					"client_id", sub.ID(),
					"error", err,
				)
				return
			}

		case <-r.Context().Done():
			h.logger.Info("SSE subscriber disconnected", "client_id", sub.ID())
			return
		}
	}
}
