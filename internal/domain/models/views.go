package models

import "time"

// TicketView is the public draft view used in list rows and event envelopes.
// It carries everything an inbox row needs without the per-draft histories.
type TicketView struct {
	ID                 string     `json:"id"`
	Channel            Channel    `json:"channel"`
	ConversationID     string     `json:"conversation_id"`
	IncomingExcerpt    string     `json:"incoming_excerpt"`
	DraftText          string     `json:"draft_text"`
	Status             Status     `json:"status"`
	CustomerDisplay    string     `json:"customer_display"`
	CustomerEmail      string     `json:"customer_email,omitempty"`
	AssignedTo         *string    `json:"assigned_to"`
	Subject            string     `json:"subject,omitempty"`
	Tags               []string   `json:"tags"`
	Confidence         *float64   `json:"confidence,omitempty"`
	LLMModel           string     `json:"llm_model,omitempty"`
	USDCost            *float64   `json:"usd_cost,omitempty"`
	SLADeadline        *time.Time `json:"sla_deadline,omitempty"`
	SentCopyToCustomer bool       `json:"usd_sent_copy"`
	ExternalMsgID      string     `json:"external_msg_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// DetailView is the full public view returned by the detail endpoints,
// including histories and the derived sources list.
type DetailView struct {
	TicketView

	IncomingText        string          `json:"incoming_text"`
	SourceSnippets      []SourceSnippet `json:"source_snippets"`
	ConversationSummary []string        `json:"conversation_summary"`
	Sources             []string        `json:"sources"`
	Notes               []Note          `json:"notes"`
	LearningNotes       []LearningNote  `json:"learning_notes"`
	AuditLog            []AuditEntry    `json:"audit_log"`
	EstimatedTokensIn   *int            `json:"estimated_tokens_in,omitempty"`
	EstimatedTokensOut  *int            `json:"estimated_tokens_out,omitempty"`
	Metadata            map[string]any  `json:"metadata"`
}

// ToTicket builds the public row view of the draft.
func (d *Draft) ToTicket() TicketView {
	return TicketView{
		ID:                 d.ID,
		Channel:            d.Channel,
		ConversationID:     d.ConversationID,
		IncomingExcerpt:    d.IncomingExcerpt,
		DraftText:          d.DraftText,
		Status:             d.Status,
		CustomerDisplay:    d.CustomerDisplay,
		CustomerEmail:      d.CustomerEmail,
		AssignedTo:         d.AssignedTo,
		Subject:            d.Subject,
		Tags:               d.Tags,
		Confidence:         d.Confidence,
		LLMModel:           d.LLMModel,
		USDCost:            d.USDCost,
		SLADeadline:        d.SLADeadline,
		SentCopyToCustomer: d.SentCopyToCustomer,
		ExternalMsgID:      d.ExternalMsgID,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

// ToDetail builds the full public view of the draft.
func (d *Draft) ToDetail() DetailView {
	return DetailView{
		TicketView:          d.ToTicket(),
		IncomingText:        d.IncomingText,
		SourceSnippets:      d.SourceSnippets,
		ConversationSummary: d.ConversationSummary,
		Sources:             d.Sources(),
		Notes:               d.Notes,
		LearningNotes:       d.LearningNotes,
		AuditLog:            d.AuditLog,
		EstimatedTokensIn:   d.EstimatedTokensIn,
		EstimatedTokensOut:  d.EstimatedTokensOut,
		Metadata:            d.Metadata,
	}
}
