package inbox

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"drafthub/internal/domain"
)

// seedDrafts creates n drafts on the given channel and returns their ids in
// creation order.
func seedDrafts(t *testing.T, env *testEnv, n int, channel string) []string {
	t.Helper()

	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id, err := env.svc.Create(context.Background(), sampleCreate(channel))
		if err != nil {
			t.Fatalf("seed draft %d: %v", i+1, err)
		}
		ids = append(ids, id)
	}
	return ids
}

func listIDs(result *ListResult) []string {
	ids := make([]string, 0, len(result.Drafts))
	for _, d := range result.Drafts {
		ids = append(ids, d.ID)
	}
	return ids
}

func TestListNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	seedDrafts(t, env, 3, "email")

	result, err := env.svc.List(context.Background(), ListFilters{}, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	want := []string{"d3", "d2", "d1"}
	got := listIDs(result)
	if len(got) != len(want) {
		t.Fatalf("List returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %s, want %s", i, got[i], want[i])
		}
	}
	if result.Total != 3 {
		t.Errorf("total = %d, want 3", result.Total)
	}
	if result.NextCursor != nil {
		t.Errorf("next_cursor = %v, want nil on a complete page", *result.NextCursor)
	}
	if result.RefreshAfterSeconds != 30 {
		t.Errorf("refresh_after_seconds = %d, want 30", result.RefreshAfterSeconds)
	}
}

func TestListPagination(t *testing.T) {
	env := newTestEnv(t)
	seedDrafts(t, env, 3, "email")
	ctx := context.Background()

	page1, err := env.svc.List(ctx, ListFilters{}, "", 2)
	if err != nil {
		t.Fatalf("List page 1: %v", err)
	}
	if got := listIDs(page1); len(got) != 2 || got[0] != "d3" || got[1] != "d2" {
		t.Errorf("page 1 = %v, want [d3 d2]", got)
	}
	if page1.NextCursor == nil || *page1.NextCursor != "2" {
		t.Fatalf("page 1 next_cursor = %v, want \"2\"", page1.NextCursor)
	}

	page2, err := env.svc.List(ctx, ListFilters{}, *page1.NextCursor, 2)
	if err != nil {
		t.Fatalf("List page 2: %v", err)
	}
	if got := listIDs(page2); len(got) != 1 || got[0] != "d1" {
		t.Errorf("page 2 = %v, want [d1]", got)
	}
	if page2.NextCursor != nil {
		t.Errorf("page 2 next_cursor = %v, want nil", *page2.NextCursor)
	}
	if page2.Total != 3 {
		t.Errorf("page 2 total = %d, want 3", page2.Total)
	}
}

func TestListCursorPastEnd(t *testing.T) {
	env := newTestEnv(t)
	seedDrafts(t, env, 2, "email")

	result, err := env.svc.List(context.Background(), ListFilters{}, "50", 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(result.Drafts) != 0 {
		t.Errorf("rows = %v, want empty page", listIDs(result))
	}
	if result.Total != 2 {
		t.Errorf("total = %d, want 2", result.Total)
	}
}

func TestListChannelFilter(t *testing.T) {
	env := newTestEnv(t)
	seedDrafts(t, env, 2, "email")
	seedDrafts(t, env, 1, "chat")

	result, err := env.svc.List(context.Background(), ListFilters{Channel: "chat"}, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := listIDs(result); len(got) != 1 || got[0] != "d3" {
		t.Errorf("chat rows = %v, want [d3]", got)
	}
}

func TestListStatusFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerEcho(t, "email", "msg-1")
	ids := seedDrafts(t, env, 3, "email")

	if _, err := env.svc.Approve(ctx, &ApproveRequest{DraftID: ids[0], ApproverUserID: "op"}); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if err := env.svc.Escalate(ctx, &EscalateRequest{DraftID: ids[1], RequesterUserID: "op", Reason: "r"}); err != nil {
		t.Fatalf("Escalate: %v", err)
	}

	result, err := env.svc.List(ctx, ListFilters{Status: "sent,escalated"}, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	got := listIDs(result)
	if len(got) != 2 {
		t.Fatalf("rows = %v, want two", got)
	}
	for _, id := range got {
		if id == ids[2] {
			t.Errorf("pending draft %s leaked through status filter", id)
		}
	}
}

func TestListUnknownStatusRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.List(context.Background(), ListFilters{Status: "bogus"}, "", 0)
	if !errors.Is(err, domain.ErrInvalidFilter) {
		t.Errorf("err = %v, want ErrInvalidFilter", err)
	}
}

func TestListInvalidCursorRejected(t *testing.T) {
	env := newTestEnv(t)

	for _, cursor := range []string{"abc", "-1"} {
		_, err := env.svc.List(context.Background(), ListFilters{}, cursor, 0)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("cursor %q err = %v, want ErrValidation", cursor, err)
		}
	}
}

func TestListAssignedFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assignee := "operator-1"
	req := sampleCreate("email")
	req.AssignedTo = &assignee
	if _, err := env.svc.Create(ctx, req); err != nil {
		t.Fatalf("Create assigned: %v", err)
	}
	seedDrafts(t, env, 1, "email")

	assigned, err := env.svc.List(ctx, ListFilters{Assigned: "operator-1"}, "", 0)
	if err != nil {
		t.Fatalf("List assigned: %v", err)
	}
	if got := listIDs(assigned); len(got) != 1 || got[0] != "d1" {
		t.Errorf("assigned rows = %v, want [d1]", got)
	}

	unassigned, err := env.svc.List(ctx, ListFilters{Assigned: "unassigned"}, "", 0)
	if err != nil {
		t.Fatalf("List unassigned: %v", err)
	}
	if got := listIDs(unassigned); len(got) != 1 || got[0] != "d2" {
		t.Errorf("unassigned rows = %v, want [d2]", got)
	}
}

func TestListTagFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := sampleCreate("email")
	req.Tags = []string{"billing", "vip"}
	if _, err := env.svc.Create(ctx, req); err != nil {
		t.Fatalf("Create: %v", err)
	}
	seedDrafts(t, env, 1, "email")

	result, err := env.svc.List(ctx, ListFilters{Tag: "vip"}, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := listIDs(result); len(got) != 1 || got[0] != "d1" {
		t.Errorf("vip rows = %v, want [d1]", got)
	}
}

func TestListSearchFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := sampleCreate("email")
	req.IncomingText = "My invoice number is INV-9931, please double-check it."
	if _, err := env.svc.Create(ctx, req); err != nil {
		t.Fatalf("Create: %v", err)
	}
	seedDrafts(t, env, 1, "email")

	result, err := env.svc.List(ctx, ListFilters{Search: "inv-9931"}, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := listIDs(result); len(got) != 1 || got[0] != "d1" {
		t.Errorf("search rows = %v, want [d1]", got)
	}
}

func TestListHidesArchivedByDefault(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ids := seedDrafts(t, env, 2, "email")

	if err := env.svc.Archive(ctx, ids[0], "op"); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	hidden, err := env.svc.List(ctx, ListFilters{}, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := listIDs(hidden); len(got) != 1 || got[0] != ids[1] {
		t.Errorf("default rows = %v, want archived hidden", got)
	}

	explicit, err := env.svc.List(ctx, ListFilters{Status: "archived"}, "", 0)
	if err != nil {
		t.Fatalf("List archived: %v", err)
	}
	if got := listIDs(explicit); len(got) != 1 || got[0] != ids[0] {
		t.Errorf("archived rows = %v, want [%s]", got, ids[0])
	}

	all, err := env.svc.List(ctx, ListFilters{Status: "all"}, "", 0)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all.Drafts) != 2 {
		t.Errorf("status=all rows = %v, want both drafts", listIDs(all))
	}
}

func TestListLimitCappedAtMax(t *testing.T) {
	env := newTestEnv(t)
	seedDrafts(t, env, 2, "email")

	result, err := env.svc.List(context.Background(), ListFilters{}, "", MaxListLimit*10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(result.Drafts) != 2 {
		t.Errorf("rows = %d, want 2", len(result.Drafts))
	}
}

func TestStatsCountsAndAverages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerEcho(t, "email", "msg-1")

	// Two pending drafts with confidences 0.8 and 0.6.
	for _, c := range []float64{0.8, 0.6} {
		req := sampleCreate("email")
		conf := c
		req.Confidence = &conf
		if _, err := env.svc.Create(ctx, req); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	// One needs_review draft.
	low := 0.2
	reqLow := sampleCreate("email")
	reqLow.Confidence = &low
	if _, err := env.svc.Create(ctx, reqLow); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// One sent, one escalated.
	sentID, err := env.svc.Create(ctx, sampleCreate("email"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := env.svc.Approve(ctx, &ApproveRequest{DraftID: sentID, ApproverUserID: "op"}); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	escID, err := env.svc.Create(ctx, sampleCreate("email"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := env.svc.Escalate(ctx, &EscalateRequest{DraftID: escID, RequesterUserID: "op", Reason: "r"}); err != nil {
		t.Fatalf("Escalate: %v", err)
	}

	stats, err := env.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Pending != 2 || stats.NeedsReview != 1 || stats.Sent != 1 || stats.Escalated != 1 || stats.Archived != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.AvgConfidencePending == nil {
		t.Fatal("avg_confidence_pending is nil")
	}
	if math.Abs(*stats.AvgConfidencePending-0.7) > 1e-9 {
		t.Errorf("avg_confidence_pending = %v, want 0.7", *stats.AvgConfidencePending)
	}
}

func TestStatsOverdue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerEcho(t, "email", "msg-1")

	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	overdueReq := sampleCreate("email")
	overdueReq.SLADeadline = &past
	if _, err := env.svc.Create(ctx, overdueReq); err != nil {
		t.Fatalf("Create overdue: %v", err)
	}

	onTimeReq := sampleCreate("email")
	onTimeReq.SLADeadline = &future
	if _, err := env.svc.Create(ctx, onTimeReq); err != nil {
		t.Fatalf("Create on-time: %v", err)
	}

	// A sent draft with a past deadline is terminal and never overdue.
	sentReq := sampleCreate("email")
	sentReq.SLADeadline = &past
	sentID, err := env.svc.Create(ctx, sentReq)
	if err != nil {
		t.Fatalf("Create sent: %v", err)
	}
	if _, err := env.svc.Approve(ctx, &ApproveRequest{DraftID: sentID, ApproverUserID: "op"}); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	stats, err := env.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Overdue != 1 {
		t.Errorf("overdue = %d, want 1", stats.Overdue)
	}
}

func TestStatsNoConfidenceYieldsNil(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := sampleCreate("email")
	req.Confidence = nil
	if _, err := env.svc.Create(ctx, req); err != nil {
		t.Fatalf("Create: %v", err)
	}

	stats, err := env.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.AvgConfidencePending != nil {
		t.Errorf("avg_confidence_pending = %v, want nil", *stats.AvgConfidencePending)
	}
}
