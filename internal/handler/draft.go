package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"drafthub/internal/httputil"
	"drafthub/internal/service/inbox"
)

// DraftHandler binds the assistants command surface to the inbox service.
// Handlers only validate request shapes; all semantics live in the service.
type DraftHandler struct {
	service *inbox.Service
	logger  *slog.Logger
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(service *inbox.Service, logger *slog.Logger) *DraftHandler {
	return &DraftHandler{
		service: service,
		logger:  logger,
	}
}

// CreateDraft records a machine-generated draft for review
// POST /assistants/draft
func (h *DraftHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req inbox.CreateDraftRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	draftID, err := h.service.Create(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, map[string]string{"draft_id": draftID})
}

// Approve dispatches the current draft text and marks the draft sent, or
// routes to escalation when the specialist flag is set
// POST /assistants/approve
func (h *DraftHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req inbox.ApproveRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	msgID, err := h.service.Approve(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	if req.EscalateToSpecialist {
		httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "escalated"})
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"sent_msg_id": msgID})
}

// Edit replaces the draft text and dispatches the result
// POST /assistants/edit
func (h *DraftHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req inbox.EditRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	msgID, err := h.service.Edit(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"sent_msg_id": msgID})
}

// Escalate routes the draft to a specialist
// POST /assistants/escalate
func (h *DraftHandler) Escalate(w http.ResponseWriter, r *http.Request) {
	var req inbox.EscalateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.Escalate(r.Context(), &req); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "escalated"})
}

// AddNote attaches an operator note, allowed in any status
// POST /assistants/notes
func (h *DraftHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req inbox.NoteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	noteID, err := h.service.AddNote(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"note_id": noteID})
}

// ListDrafts pages through the inbox with filters
// GET /assistants/drafts?limit&cursor&channel&status&assigned&tag&search
func (h *DraftHandler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	filters, cursor, limit, ok := listQuery(w, r)
	if !ok {
		return
	}

	result, err := h.service.List(r.Context(), filters, cursor, limit)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// GetDraft returns the full public view of one draft
// GET /assistants/drafts/{id}
func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	draftID, ok := PathParam(w, r, "id", "Draft ID")
	if !ok {
		return
	}

	detail, err := h.service.Get(r.Context(), draftID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, detail)
}

// listQuery parses the shared list query parameters.
func listQuery(w http.ResponseWriter, r *http.Request) (inbox.ListFilters, string, int, bool) {
	q := r.URL.Query()
	filters := inbox.ListFilters{
		Channel:  q.Get("channel"),
		Status:   q.Get("status"),
		Assigned: q.Get("assigned"),
		Tag:      q.Get("tag"),
		Search:   q.Get("search"),
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.RespondError(w, http.StatusUnprocessableEntity, "limit must be a non-negative integer")
			return inbox.ListFilters{}, "", 0, false
		}
		limit = n
	}

	return filters, q.Get("cursor"), limit, true
}
