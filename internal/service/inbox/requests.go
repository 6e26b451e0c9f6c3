package inbox

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"drafthub/internal/config"
	"drafthub/internal/domain/models"
)

// CreateDraftRequest is the payload an upstream drafting system posts for
// each incoming customer message.
type CreateDraftRequest struct {
	Channel             string                 `json:"channel"`
	ConversationID      string                 `json:"conversation_id"`
	IncomingText        string                 `json:"incoming_text"`
	DraftText           string                 `json:"draft_text"`
	Subject             string                 `json:"subject"`
	CustomerDisplay     string                 `json:"customer_display"`
	CustomerEmail       string                 `json:"customer_email"`
	AssignedTo          *string                `json:"assigned_to"`
	Tags                []string               `json:"tags"`
	SourceSnippets      []models.SourceSnippet `json:"source_snippets"`
	ConversationSummary []string               `json:"conversation_summary"`
	Confidence          *float64               `json:"confidence"`
	LLMModel            string                 `json:"llm_model"`
	EstimatedTokensIn   *int                   `json:"estimated_tokens_in"`
	EstimatedTokensOut  *int                   `json:"estimated_tokens_out"`
	USDCost             *float64               `json:"usd_cost"`
	SLADeadline         *time.Time             `json:"sla_deadline"`
	Context             map[string]any         `json:"context"`
	Metadata            map[string]any         `json:"metadata"`
}

// Validate checks the creation payload shape. Channel membership is part of
// the rule set so an unknown channel is rejected before any state change.
func (r CreateDraftRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Channel,
			validation.Required,
			validation.In(string(models.ChannelEmail), string(models.ChannelChat)),
		),
		validation.Field(&r.ConversationID, validation.Required),
		validation.Field(&r.IncomingText, validation.Required),
		validation.Field(&r.DraftText, validation.Required),
		validation.Field(&r.Subject, validation.Length(0, config.MaxSubjectLength)),
		validation.Field(&r.Confidence, validation.Min(0.0), validation.Max(1.0)),
	)
}

// ApproveRequest asks the store to send the current draft text as-is.
type ApproveRequest struct {
	DraftID              string  `json:"draft_id"`
	ApproverUserID       string  `json:"approver_user_id"`
	SendCopyToCustomer   bool    `json:"send_copy_to_customer"`
	EscalateToSpecialist bool    `json:"escalate_to_specialist"`
	EscalationReason     string  `json:"escalation_reason"`
	AssignTo             *string `json:"assign_to"`
}

func (r ApproveRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DraftID, validation.Required),
		validation.Field(&r.ApproverUserID, validation.Required),
	)
}

// EditRequest replaces the draft text and sends the result.
type EditRequest struct {
	DraftID            string `json:"draft_id"`
	EditorUserID       string `json:"editor_user_id"`
	FinalText          string `json:"final_text"`
	LearningNotes      string `json:"learning_notes"`
	SendCopyToCustomer bool   `json:"send_copy_to_customer"`
}

func (r EditRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DraftID, validation.Required),
		validation.Field(&r.EditorUserID, validation.Required),
		validation.Field(&r.FinalText, validation.Required),
		validation.Field(&r.LearningNotes, validation.Length(0, config.MaxNoteLength)),
	)
}

// EscalateRequest routes the draft to a specialist instead of sending it.
type EscalateRequest struct {
	DraftID         string  `json:"draft_id"`
	RequesterUserID string  `json:"requester_user_id"`
	Reason          string  `json:"reason"`
	AssignedTo      *string `json:"assigned_to"`
}

func (r EscalateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DraftID, validation.Required),
		validation.Field(&r.RequesterUserID, validation.Required),
		validation.Field(&r.Reason, validation.Required),
	)
}

// NoteRequest attaches a free-form note. Allowed in every status.
type NoteRequest struct {
	DraftID      string `json:"draft_id"`
	AuthorUserID string `json:"author_user_id"`
	Text         string `json:"text"`
}

func (r NoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DraftID, validation.Required),
		validation.Field(&r.AuthorUserID, validation.Required),
		validation.Field(&r.Text, validation.Required, validation.Length(1, config.MaxNoteLength)),
	)
}
