package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"drafthub/internal/domain/models"
	"drafthub/internal/httputil"
	"drafthub/internal/service/inbox"
)

// DashboardHandler serves the read-side views the operator dashboard polls
// when it has no SSE connection.
type DashboardHandler struct {
	service *inbox.Service
	logger  *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service *inbox.Service, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger,
	}
}

// inboxResponse is the dashboard listing shape.
type inboxResponse struct {
	Items []models.TicketView `json:"items"`
	Total int                 `json:"total"`
}

// Inbox lists drafts for the dashboard; the advisory refresh cadence rides
// on the X-Refresh-After header instead of the body
// GET /dashboard/inbox?status&...
func (h *DashboardHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	filters, cursor, limit, ok := listQuery(w, r)
	if !ok {
		return
	}

	result, err := h.service.List(r.Context(), filters, cursor, limit)
	if err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("X-Refresh-After", strconv.Itoa(result.RefreshAfterSeconds))
	httputil.RespondJSON(w, http.StatusOK, inboxResponse{
		Items: result.Drafts,
		Total: result.Total,
	})
}

// Stats returns per-status counts, the overdue count, and the mean pending
// confidence
// GET /dashboard/inbox/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, stats)
}

// Detail returns the full draft view wrapped for the dashboard
// GET /dashboard/inbox/{id}
func (h *DashboardHandler) Detail(w http.ResponseWriter, r *http.Request) {
	draftID, ok := PathParam(w, r, "id", "Draft ID")
	if !ok {
		return
	}

	detail, err := h.service.Get(r.Context(), draftID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"draft": detail})
}
