package models

import (
	"encoding/json"
	"time"
)

// Event type constants published on the bus for every state change.
const (
	EventDraftUpdated   = "draft:updated"
	EventDraftApproved  = "draft:approved"
	EventDraftEdited    = "draft:edited"
	EventDraftEscalated = "draft:escalated"
	EventDraftNote      = "draft:note"
	EventDraftFeedback  = "draft:feedback"
	EventHandshake      = "handshake"
)

// EventMeta identifies the event kind and when it occurred.
type EventMeta struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}

// Feedback is the parsed payload of a feedback note.
type Feedback struct {
	Vote    string `json:"vote"`
	Comment string `json:"comment,omitempty"`
}

// Envelope is the JSON object fanned out to subscribers on every state change.
// Ticket carries the public draft view; Draft and Feedback are per-event
// extras; Service and Capabilities are set only on the handshake.
type Envelope struct {
	Event        EventMeta      `json:"event"`
	Ticket       *TicketView    `json:"ticket,omitempty"`
	Draft        map[string]any `json:"draft,omitempty"`
	Feedback     *Feedback      `json:"feedback,omitempty"`
	Service      string         `json:"service,omitempty"`
	Capabilities []string       `json:"capabilities,omitempty"`
}

// NewEnvelope builds a state-change envelope for a draft.
func NewEnvelope(eventType string, at time.Time, ticket TicketView) Envelope {
	return Envelope{
		Event:  EventMeta{Type: eventType, At: at},
		Ticket: &ticket,
	}
}

// NewHandshakeEnvelope builds the first envelope emitted on a new
// subscription, advertising service identity and observable event types.
func NewHandshakeEnvelope(at time.Time, service string, capabilities []string) Envelope {
	return Envelope{
		Event:        EventMeta{Type: EventHandshake, At: at},
		Service:      service,
		Capabilities: capabilities,
	}
}

// feedbackNote is the wire shape a note text must match to count as feedback.
type feedbackNote struct {
	Type    string `json:"type"`
	Vote    string `json:"vote"`
	Comment string `json:"comment"`
}

// Feedback votes. Anything else is treated as a plain note.
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// ParseFeedback reports whether a note text is a structured feedback note
// (JSON with "type": "feedback" and an up/down vote) and returns the parsed
// vote and comment.
func ParseFeedback(text string) (*Feedback, bool) {
	var fb feedbackNote
	if err := json.Unmarshal([]byte(text), &fb); err != nil {
		return nil, false
	}
	if fb.Type != "feedback" {
		return nil, false
	}
	if fb.Vote != VoteUp && fb.Vote != VoteDown {
		return nil, false
	}
	return &Feedback{Vote: fb.Vote, Comment: fb.Comment}, true
}
