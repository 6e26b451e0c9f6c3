package inbox

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"drafthub/internal/domain"
	"drafthub/internal/domain/models"
)

// List query defaults and caps.
const (
	DefaultListLimit           = 25
	MaxListLimit               = 100
	DefaultRefreshAfterSeconds = 30
)

// ListFilters narrows the inbox listing. Zero values mean "no restriction".
type ListFilters struct {
	// Channel matches exactly ("email" or "chat").
	Channel string
	// Status is a comma-separated status list; the literal "all" disables
	// the filter. Unknown values are rejected.
	Status string
	// Assigned matches the operator name, or the literal "unassigned" for
	// drafts with no assignee.
	Assigned string
	// Tag matches drafts carrying the tag.
	Tag string
	// Search is a case-insensitive substring over draft text, incoming
	// text, subject, and customer display.
	Search string
}

// ListResult is the page returned by List.
type ListResult struct {
	Drafts              []models.TicketView `json:"drafts"`
	Total               int                 `json:"total"`
	NextCursor          *string             `json:"next_cursor"`
	RefreshAfterSeconds int                 `json:"refresh_after_seconds"`
}

// Stats aggregates the inbox for dashboard tiles.
type Stats struct {
	Pending     int `json:"pending"`
	NeedsReview int `json:"needs_review"`
	Sent        int `json:"sent"`
	Escalated   int `json:"escalated"`
	Archived    int `json:"archived"`
	// Overdue counts non-terminal drafts whose SLA deadline has passed.
	Overdue int `json:"overdue"`
	// AvgConfidencePending is the mean confidence across pending drafts,
	// null when none carries a confidence value.
	AvgConfidencePending *float64 `json:"avg_confidence_pending"`
}

// List filters, sorts, and paginates the inbox. Archived drafts are hidden
// unless the status filter names them explicitly. The cursor is a decimal
// offset string; empty means the first page.
func (s *Service) List(ctx context.Context, filters ListFilters, cursor string, limit int) (*ListResult, error) {
	statuses, err := parseStatusFilter(filters.Status)
	if err != nil {
		return nil, err
	}

	offset := 0
	if cursor != "" {
		offset, err = strconv.Atoi(cursor)
		if err != nil || offset < 0 {
			return nil, fmt.Errorf("%w: invalid cursor %q", domain.ErrValidation, cursor)
		}
	}

	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	drafts, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*models.Draft, 0, len(drafts))
	for _, d := range drafts {
		if matchesFilters(d, filters, statuses) {
			matched = append(matched, d)
		}
	}

	// Newest first; ties broken by descending numeric id.
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return draftIDNum(matched[i].ID) > draftIDNum(matched[j].ID)
	})

	total := len(matched)
	result := &ListResult{
		Drafts:              []models.TicketView{},
		Total:               total,
		RefreshAfterSeconds: s.refreshAfterSeconds,
	}

	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		for _, d := range matched[offset:end] {
			result.Drafts = append(result.Drafts, d.ToTicket())
		}
		if end < total {
			next := strconv.Itoa(offset + limit)
			result.NextCursor = &next
		}
	}

	return result, nil
}

// Stats computes per-status counts, the overdue count, and the mean pending
// confidence from a consistent snapshot.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	drafts, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	stats := &Stats{}
	var confidenceSum float64
	var confidenceCount int

	for _, d := range drafts {
		switch d.Status {
		case models.StatusPending:
			stats.Pending++
			if d.Confidence != nil {
				confidenceSum += *d.Confidence
				confidenceCount++
			}
		case models.StatusNeedsReview:
			stats.NeedsReview++
		case models.StatusSent:
			stats.Sent++
		case models.StatusEscalated:
			stats.Escalated++
		case models.StatusArchived:
			stats.Archived++
		}

		if !d.Status.Terminal() && d.SLADeadline != nil && d.SLADeadline.Before(now) {
			stats.Overdue++
		}
	}

	if confidenceCount > 0 {
		avg := confidenceSum / float64(confidenceCount)
		stats.AvgConfidencePending = &avg
	}

	return stats, nil
}

// parseStatusFilter expands the comma-separated status parameter. Returns a
// nil set when the filter is disabled (empty or the literal "all").
func parseStatusFilter(raw string) (map[models.Status]struct{}, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "all" {
		return nil, nil
	}

	statuses := make(map[models.Status]struct{})
	for _, part := range strings.Split(trimmed, ",") {
		status := models.Status(strings.TrimSpace(part))
		if !status.Valid() {
			return nil, &domain.InvalidFilterError{
				Message: fmt.Sprintf("Unsupported status %q", part),
			}
		}
		statuses[status] = struct{}{}
	}
	return statuses, nil
}

func matchesFilters(d *models.Draft, filters ListFilters, statuses map[models.Status]struct{}) bool {
	if statuses == nil {
		// No status restriction: archived drafts stay hidden.
		if d.Status == models.StatusArchived {
			return false
		}
	} else if _, ok := statuses[d.Status]; !ok {
		return false
	}

	if filters.Channel != "" && string(d.Channel) != filters.Channel {
		return false
	}

	if filters.Assigned != "" {
		if filters.Assigned == "unassigned" {
			if d.AssignedTo != nil {
				return false
			}
		} else if d.AssignedTo == nil || *d.AssignedTo != filters.Assigned {
			return false
		}
	}

	if filters.Tag != "" {
		found := false
		for _, tag := range d.Tags {
			if tag == filters.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if filters.Search != "" {
		needle := strings.ToLower(filters.Search)
		haystacks := []string{d.DraftText, d.IncomingText, d.Subject, d.CustomerDisplay}
		found := false
		for _, h := range haystacks {
			if strings.Contains(strings.ToLower(h), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// draftIDNum extracts the numeric part of a draft id (d42 -> 42) for
// tie-breaking. Unparseable ids sort last.
func draftIDNum(id string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "d"))
	if err != nil {
		return -1
	}
	return n
}
