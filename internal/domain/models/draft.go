package models

import (
	"strings"
	"time"
)

// Channel identifies which send adapter a draft is dispatched through.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelChat  Channel = "chat"
)

// Valid reports whether the channel is one of the supported values.
func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelChat
}

// Status is the review lifecycle state of a draft.
type Status string

const (
	StatusPending     Status = "pending"
	StatusNeedsReview Status = "needs_review"
	StatusSent        Status = "sent"
	StatusEscalated   Status = "escalated"
	StatusArchived    Status = "archived"
)

// AllStatuses lists every valid status, used for filter validation.
var AllStatuses = []Status{StatusPending, StatusNeedsReview, StatusSent, StatusEscalated, StatusArchived}

// Terminal reports whether approve/edit/escalate are rejected in this status.
func (s Status) Terminal() bool {
	return s == StatusSent || s == StatusArchived
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Audit log actions. One entry is appended per successful mutation.
const (
	AuditDraftCreated   = "draft.created"
	AuditDraftApproved  = "draft.approved"
	AuditDraftEdited    = "draft.edited"
	AuditDraftEscalated = "draft.escalated"
	AuditDraftArchived  = "draft.archived"
	AuditNoteAdded      = "draft.note_added"
)

// ConfidenceReviewThreshold is the confidence below which a new draft starts
// in needs_review instead of pending.
const ConfidenceReviewThreshold = 0.6

// ExcerptMaxLen caps the derived incoming_excerpt length.
const ExcerptMaxLen = 160

// SourceSnippet is a retrieval citation attached to a draft at creation.
type SourceSnippet struct {
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Note is a free-form operator annotation. Notes are allowed in any status.
type Note struct {
	ID           string    `json:"id"`
	AuthorUserID string    `json:"author_user_id"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
}

// LearningNote is an operator annotation captured on edit, kept separate from
// free-form notes for later model-improvement review.
type LearningNote struct {
	AuthorUserID string    `json:"author_user_id"`
	Note         string    `json:"note"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuditEntry is one row of the append-only per-draft audit log.
type AuditEntry struct {
	Action  string         `json:"action"`
	Actor   string         `json:"actor"`
	At      time.Time      `json:"at"`
	Details map[string]any `json:"details,omitempty"`
}

// Draft is the central entity: one AI-proposed reply and all human activity
// against it.
type Draft struct {
	ID                  string          `json:"id"`
	Channel             Channel         `json:"channel"`
	ConversationID      string          `json:"conversation_id"`
	IncomingText        string          `json:"incoming_text"`
	IncomingExcerpt     string          `json:"incoming_excerpt"`
	DraftText           string          `json:"draft_text"`
	Status              Status          `json:"status"`
	CustomerDisplay     string          `json:"customer_display"`
	CustomerEmail       string          `json:"customer_email,omitempty"`
	AssignedTo          *string         `json:"assigned_to"`
	Subject             string          `json:"subject,omitempty"`
	Tags                []string        `json:"tags"`
	SourceSnippets      []SourceSnippet `json:"source_snippets"`
	ConversationSummary []string        `json:"conversation_summary"`
	Confidence          *float64        `json:"confidence,omitempty"`
	LLMModel            string          `json:"llm_model,omitempty"`
	EstimatedTokensIn   *int            `json:"estimated_tokens_in,omitempty"`
	EstimatedTokensOut  *int            `json:"estimated_tokens_out,omitempty"`
	USDCost             *float64        `json:"usd_cost,omitempty"`
	SLADeadline         *time.Time      `json:"sla_deadline,omitempty"`
	SentCopyToCustomer  bool            `json:"usd_sent_copy"`
	ExternalMsgID       string          `json:"external_msg_id,omitempty"`
	Metadata            map[string]any  `json:"metadata"`
	Notes               []Note          `json:"notes"`
	LearningNotes       []LearningNote  `json:"learning_notes"`
	AuditLog            []AuditEntry    `json:"audit_log"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// Excerpt derives incoming_excerpt from the customer message: the first line,
// truncated to ExcerptMaxLen characters.
func Excerpt(incomingText string) string {
	line := incomingText
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	runes := []rune(line)
	if len(runes) > ExcerptMaxLen {
		return string(runes[:ExcerptMaxLen])
	}
	return line
}

// DisplayName resolves customer_display with the documented fallbacks:
// display name, then email, then "Customer".
func DisplayName(display, email string) string {
	if d := strings.TrimSpace(display); d != "" {
		return d
	}
	if e := strings.TrimSpace(email); e != "" {
		return e
	}
	return "Customer"
}

// NormalizeTags collapses duplicates while preserving first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// Sources derives the deduped list of snippet URLs, preserving order.
func (d *Draft) Sources() []string {
	urls := make([]string, 0, len(d.SourceSnippets))
	seen := make(map[string]struct{}, len(d.SourceSnippets))
	for _, s := range d.SourceSnippets {
		if s.URL == "" {
			continue
		}
		if _, dup := seen[s.URL]; dup {
			continue
		}
		seen[s.URL] = struct{}{}
		urls = append(urls, s.URL)
	}
	return urls
}

// Clone returns a deep copy so repository snapshots cannot alias live state.
func (d *Draft) Clone() *Draft {
	cp := *d
	cp.Tags = append([]string(nil), d.Tags...)
	cp.SourceSnippets = append([]SourceSnippet(nil), d.SourceSnippets...)
	cp.ConversationSummary = append([]string(nil), d.ConversationSummary...)
	cp.Notes = append([]Note(nil), d.Notes...)
	cp.LearningNotes = append([]LearningNote(nil), d.LearningNotes...)
	cp.AuditLog = make([]AuditEntry, len(d.AuditLog))
	for i, e := range d.AuditLog {
		cp.AuditLog[i] = e
		cp.AuditLog[i].Details = cloneMap(e.Details)
	}
	cp.Metadata = cloneMap(d.Metadata)
	if d.AssignedTo != nil {
		v := *d.AssignedTo
		cp.AssignedTo = &v
	}
	if d.Confidence != nil {
		v := *d.Confidence
		cp.Confidence = &v
	}
	if d.EstimatedTokensIn != nil {
		v := *d.EstimatedTokensIn
		cp.EstimatedTokensIn = &v
	}
	if d.EstimatedTokensOut != nil {
		v := *d.EstimatedTokensOut
		cp.EstimatedTokensOut = &v
	}
	if d.USDCost != nil {
		v := *d.USDCost
		cp.USDCost = &v
	}
	if d.SLADeadline != nil {
		v := *d.SLADeadline
		cp.SLADeadline = &v
	}
	return &cp
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = cloneMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}
