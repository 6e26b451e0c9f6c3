package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"drafthub/internal/adapter"
	"drafthub/internal/bus"
	"drafthub/internal/domain"
	"drafthub/internal/domain/models"
	"drafthub/internal/domain/repositories"
)

// Service is the authoritative draft store. Every mutation runs the sequence
// validate, mutate, append one audit entry, publish, atomically under a
// single lock. Approve and Edit release the lock while the send adapter
// runs, so a slow adapter never blocks unrelated operations, and re-acquire
// it to record the outcome; the draft is only mutated after the adapter
// returns.
type Service struct {
	mu       sync.Mutex
	repo     repositories.DraftRepository
	adapters *adapter.Registry
	events   *bus.Bus
	now      func() time.Time
	logger   *slog.Logger

	// refreshAfterSeconds is the advisory polling cadence returned on list
	// responses for clients without an SSE connection.
	refreshAfterSeconds int
}

// NewService creates the inbox service over the given repository, adapter
// registry, and event bus. refreshAfterSeconds <= 0 selects the default.
func NewService(
	repo repositories.DraftRepository,
	adapters *adapter.Registry,
	events *bus.Bus,
	refreshAfterSeconds int,
	logger *slog.Logger,
) *Service {
	if refreshAfterSeconds <= 0 {
		refreshAfterSeconds = DefaultRefreshAfterSeconds
	}
	return &Service{
		repo:                repo,
		adapters:            adapters,
		events:              events,
		now:                 time.Now,
		logger:              logger,
		refreshAfterSeconds: refreshAfterSeconds,
	}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create validates the payload, assigns the next id, derives the computed
// fields, and publishes draft:updated. Returns the new draft id.
func (s *Service) Create(ctx context.Context, req *CreateDraftRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.repo.NextID(ctx)
	if err != nil {
		return "", err
	}

	now := s.now()
	status := models.StatusPending
	if req.Confidence != nil && *req.Confidence < models.ConfidenceReviewThreshold {
		status = models.StatusNeedsReview
	}

	draft := &models.Draft{
		ID:                  id,
		Channel:             models.Channel(req.Channel),
		ConversationID:      req.ConversationID,
		IncomingText:        req.IncomingText,
		IncomingExcerpt:     models.Excerpt(req.IncomingText),
		DraftText:           req.DraftText,
		Status:              status,
		CustomerDisplay:     models.DisplayName(req.CustomerDisplay, req.CustomerEmail),
		CustomerEmail:       req.CustomerEmail,
		AssignedTo:          req.AssignedTo,
		Subject:             req.Subject,
		Tags:                models.NormalizeTags(req.Tags),
		SourceSnippets:      req.SourceSnippets,
		ConversationSummary: req.ConversationSummary,
		Confidence:          req.Confidence,
		LLMModel:            req.LLMModel,
		EstimatedTokensIn:   req.EstimatedTokensIn,
		EstimatedTokensOut:  req.EstimatedTokensOut,
		USDCost:             req.USDCost,
		SLADeadline:         req.SLADeadline,
		Metadata:            mergeMetadata(req.Metadata, req.Context, req.CustomerEmail),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	draft.AuditLog = append(draft.AuditLog, models.AuditEntry{
		Action: models.AuditDraftCreated,
		Actor:  "system",
		At:     now,
		Details: map[string]any{
			"channel": req.Channel,
			"status":  string(status),
		},
	})

	if err := s.repo.Insert(ctx, draft); err != nil {
		return "", err
	}

	s.logger.Info("draft created",
		"draft_id", id,
		"channel", req.Channel,
		"status", string(status),
		"conversation_id", req.ConversationID,
	)

	s.events.Publish(models.NewEnvelope(models.EventDraftUpdated, now, draft.ToTicket()))
	return id, nil
}

// mergeMetadata builds the stored metadata map: the raw request metadata is
// merged at top level, context nests under "context", and the customer email
// is preserved under "customer_email".
func mergeMetadata(raw, requestContext map[string]any, customerEmail string) map[string]any {
	merged := make(map[string]any, len(raw)+2)
	for k, v := range raw {
		merged[k] = v
	}
	if requestContext != nil {
		merged["context"] = requestContext
	}
	if customerEmail != "" {
		merged["customer_email"] = customerEmail
	}
	return merged
}

// Approve sends the current draft text through the channel adapter and marks
// the draft sent. When escalate_to_specialist is set the call routes to
// Escalate instead and returns an empty message id.
func (s *Service) Approve(ctx context.Context, req *ApproveRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.EscalateToSpecialist {
		esc := &EscalateRequest{
			DraftID:         req.DraftID,
			RequesterUserID: req.ApproverUserID,
			Reason:          req.EscalationReason,
			AssignedTo:      req.AssignTo,
		}
		if esc.Reason == "" {
			esc.Reason = "escalated during approval"
		}
		return "", s.Escalate(ctx, esc)
	}

	return s.send(ctx, req.DraftID, sendCommand{
		actor:     req.ApproverUserID,
		sendCopy:  req.SendCopyToCustomer,
		audit:     models.AuditDraftApproved,
		eventType: models.EventDraftApproved,
	})
}

// Edit replaces the draft text, records an optional learning note, and sends
// the result through the channel adapter.
func (s *Service) Edit(ctx context.Context, req *EditRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	return s.send(ctx, req.DraftID, sendCommand{
		actor:        req.EditorUserID,
		sendCopy:     req.SendCopyToCustomer,
		finalText:    req.FinalText,
		learningNote: req.LearningNotes,
		audit:        models.AuditDraftEdited,
		eventType:    models.EventDraftEdited,
	})
}

// sendCommand carries the per-operation differences between Approve and Edit
// through the shared dispatch path.
type sendCommand struct {
	actor        string
	sendCopy     bool
	finalText    string // empty for approve: send the stored draft text
	learningNote string
	audit        string
	eventType    string
}

// send is the shared approve/edit path: validate the transition, dispatch
// outside the lock, then record the result. On dispatch failure the draft is
// left exactly as it was.
func (s *Service) send(ctx context.Context, draftID string, cmd sendCommand) (string, error) {
	s.mu.Lock()
	draft, err := s.repo.Get(ctx, draftID)
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	if draft.Status.Terminal() {
		s.mu.Unlock()
		return "", &domain.InvalidTransitionError{
			Message: fmt.Sprintf("draft %s is %s and cannot be sent", draftID, draft.Status),
		}
	}

	finalText := draft.DraftText
	if cmd.finalText != "" {
		finalText = cmd.finalText
	}
	payload := adapter.Payload{
		DraftID:        draft.ID,
		ConversationID: draft.ConversationID,
		Channel:        string(draft.Channel),
		FinalText:      finalText,
		CustomerEmail:  draft.CustomerEmail,
		Metadata:       draft.Metadata,
	}
	channel := string(draft.Channel)
	s.mu.Unlock()

	// The adapter may block or suspend; nothing is mutated until it returns.
	msgID, err := s.adapters.Dispatch(ctx, channel, payload)
	if err != nil {
		s.logger.Warn("dispatch failed",
			"draft_id", draftID,
			"channel", channel,
			"error", err,
		)
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-read: the draft may have changed while the adapter ran.
	draft, err = s.repo.Get(ctx, draftID)
	if err != nil {
		return "", err
	}
	if draft.Status.Terminal() {
		return "", &domain.InvalidTransitionError{
			Message: fmt.Sprintf("draft %s became %s during dispatch", draftID, draft.Status),
		}
	}

	now := s.now()
	draft.DraftText = finalText
	draft.Status = models.StatusSent
	draft.ExternalMsgID = msgID
	draft.SentCopyToCustomer = cmd.sendCopy
	draft.UpdatedAt = now
	if cmd.learningNote != "" {
		draft.LearningNotes = append(draft.LearningNotes, models.LearningNote{
			AuthorUserID: cmd.actor,
			Note:         cmd.learningNote,
			CreatedAt:    now,
		})
	}
	draft.AuditLog = append(draft.AuditLog, models.AuditEntry{
		Action: cmd.audit,
		Actor:  cmd.actor,
		At:     now,
		Details: map[string]any{
			"external_msg_id":       msgID,
			"send_copy_to_customer": cmd.sendCopy,
		},
	})

	if err := s.repo.Update(ctx, draft); err != nil {
		return "", err
	}

	s.logger.Info("draft sent",
		"draft_id", draftID,
		"channel", channel,
		"external_msg_id", msgID,
		"actor", cmd.actor,
	)

	envelope := models.NewEnvelope(cmd.eventType, now, draft.ToTicket())
	if cmd.eventType == models.EventDraftApproved {
		envelope.Draft = map[string]any{"approved": true, "external_msg_id": msgID}
	} else {
		envelope.Draft = map[string]any{"edited": true, "external_msg_id": msgID}
	}
	s.events.Publish(envelope)

	return msgID, nil
}

// Escalate routes the draft to a specialist: non-terminal drafts only.
// Escalated drafts may later be approved or edited back into the send path.
func (s *Service) Escalate(ctx context.Context, req *EscalateRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.repo.Get(ctx, req.DraftID)
	if err != nil {
		return err
	}
	if draft.Status.Terminal() {
		return &domain.InvalidTransitionError{
			Message: fmt.Sprintf("draft %s is %s and cannot be escalated", req.DraftID, draft.Status),
		}
	}

	now := s.now()
	draft.Status = models.StatusEscalated
	if req.AssignedTo != nil {
		draft.AssignedTo = req.AssignedTo
	}
	draft.UpdatedAt = now
	draft.AuditLog = append(draft.AuditLog, models.AuditEntry{
		Action: models.AuditDraftEscalated,
		Actor:  req.RequesterUserID,
		At:     now,
		Details: map[string]any{
			"reason": req.Reason,
		},
	})

	if err := s.repo.Update(ctx, draft); err != nil {
		return err
	}

	s.logger.Info("draft escalated",
		"draft_id", req.DraftID,
		"actor", req.RequesterUserID,
		"reason", req.Reason,
	)

	s.events.Publish(models.NewEnvelope(models.EventDraftEscalated, now, draft.ToTicket()))
	return nil
}

// AddNote appends a free-form note. Allowed in every status, including
// terminal ones. A note whose text is structured feedback JSON additionally
// emits a draft:feedback envelope; the raw note is stored either way.
// Returns the new note id.
func (s *Service) AddNote(ctx context.Context, req *NoteRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.repo.Get(ctx, req.DraftID)
	if err != nil {
		return "", err
	}

	now := s.now()
	note := models.Note{
		ID:           uuid.New().String(),
		AuthorUserID: req.AuthorUserID,
		Text:         req.Text,
		CreatedAt:    now,
	}
	draft.Notes = append(draft.Notes, note)
	draft.UpdatedAt = now
	draft.AuditLog = append(draft.AuditLog, models.AuditEntry{
		Action: models.AuditNoteAdded,
		Actor:  req.AuthorUserID,
		At:     now,
		Details: map[string]any{
			"note_id": note.ID,
		},
	})

	if err := s.repo.Update(ctx, draft); err != nil {
		return "", err
	}

	s.events.Publish(models.NewEnvelope(models.EventDraftNote, now, draft.ToTicket()))

	if feedback, ok := models.ParseFeedback(req.Text); ok {
		envelope := models.NewEnvelope(models.EventDraftFeedback, now, draft.ToTicket())
		envelope.Feedback = feedback
		s.events.Publish(envelope)
	}

	return note.ID, nil
}

// Archive retires a draft. Operator-driven; not exposed over the HTTP
// surface. Archived drafts reject further approve/edit/escalate and drop out
// of default listings.
func (s *Service) Archive(ctx context.Context, draftID, actorUserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.repo.Get(ctx, draftID)
	if err != nil {
		return err
	}
	if draft.Status == models.StatusArchived {
		return &domain.InvalidTransitionError{
			Message: fmt.Sprintf("draft %s is already archived", draftID),
		}
	}

	now := s.now()
	draft.Status = models.StatusArchived
	draft.UpdatedAt = now
	draft.AuditLog = append(draft.AuditLog, models.AuditEntry{
		Action: models.AuditDraftArchived,
		Actor:  actorUserID,
		At:     now,
	})

	if err := s.repo.Update(ctx, draft); err != nil {
		return err
	}

	s.events.Publish(models.NewEnvelope(models.EventDraftUpdated, now, draft.ToTicket()))
	return nil
}

// Get returns the full public view of a draft.
func (s *Service) Get(ctx context.Context, draftID string) (*models.DetailView, error) {
	draft, err := s.repo.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	detail := draft.ToDetail()
	return &detail, nil
}

// Reset clears drafts, subscribers, and adapter bindings, and restarts id
// assignment. Test harness contract.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Reset(ctx); err != nil {
		return err
	}
	s.events.Reset()
	s.adapters.Reset()
	return nil
}
