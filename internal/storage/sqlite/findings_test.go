package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sweepdev/sweep/internal/storage"
	"github.com/sweepdev/sweep/internal/types"
)

func TestUpsertAddUpdateUnchanged(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	f := &types.Finding{
		Rule:     "java:S2095",
		Severity: types.SeverityMajor,
		Type:     types.TypeBug,
		Path:     "FileA.java",
		Line:     42,
		Message:  "Close this resource",
	}
	outcome, err := store.UpsertFinding(ctx, f)
	if err != nil {
		t.Fatalf("UpsertFinding failed: %v", err)
	}
	if outcome != storage.UpsertAdded {
		t.Errorf("expected Added, got %v", outcome)
	}

	// Field-identical upsert is a no-op.
	outcome, err = store.UpsertFinding(ctx, f)
	if err != nil {
		t.Fatalf("second UpsertFinding failed: %v", err)
	}
	if outcome != storage.UpsertUnchanged {
		t.Errorf("expected Unchanged, got %v", outcome)
	}

	// Remote severity change updates the record in place under the same key.
	f.Severity = types.SeverityCritical
	outcome, err = store.UpsertFinding(ctx, f)
	if err != nil {
		t.Fatalf("third UpsertFinding failed: %v", err)
	}
	if outcome != storage.UpsertUpdated {
		t.Errorf("expected Updated, got %v", outcome)
	}

	got, err := store.GetFinding(ctx, f.Key)
	if err != nil {
		t.Fatalf("GetFinding failed: %v", err)
	}
	if got.Severity != types.SeverityCritical {
		t.Errorf("severity not merged: got %s", got.Severity)
	}
}

func TestUpsertPreservesLocalState(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	key := seedFinding(t, store, "java:S2095", "FileA.java", 42)

	if err := store.AcquireLock(ctx, key, "rule=java:S2095", "h1", time.Now()); err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}

	// Re-sync the same finding with a changed message.
	f := &types.Finding{
		Key:      key,
		Rule:     "java:S2095",
		Severity: types.SeverityBlocker,
		Type:     types.TypeBug,
		Path:     "FileA.java",
		Line:     42,
		Message:  "Close this resource",
	}
	if _, err := store.UpsertFinding(ctx, f); err != nil {
		t.Fatalf("UpsertFinding failed: %v", err)
	}

	got, err := store.GetFinding(ctx, key)
	if err != nil {
		t.Fatalf("GetFinding failed: %v", err)
	}
	if got.Lock == nil || got.Lock.Holder != "h1" {
		t.Error("upsert must not discard lock state")
	}
	if got.Severity != types.SeverityBlocker {
		t.Error("upsert should still merge remote fields")
	}
}

func TestGetFindingNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetFinding(context.Background(), "nope")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchFindingsFilters(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedFinding(t, store, "java:S2095", "src/main/FileA.java", 42, "leak")
	seedFinding(t, store, "java:S2095", "src/main/FileB.java", 7, "leak", "cwe")
	seedFinding(t, store, "java:S2699", "src/test/TestA.java", 10, "junit")

	tests := []struct {
		name   string
		filter types.FilterSpec
		want   int
	}{
		{"all", types.FilterSpec{}, 3},
		{"by rule", types.FilterSpec{Rule: "java:S2095"}, 2},
		{"by path substring", types.FilterSpec{Path: "src/main"}, 2},
		{"exclude", types.FilterSpec{Exclude: "test"}, 2},
		{"tags AND", types.FilterSpec{Tags: []string{"leak", "cwe"}}, 1},
		{"tags-any OR", types.FilterSpec{TagsAny: []string{"cwe", "junit"}}, 2},
		{"limit", types.FilterSpec{Limit: 2}, 2},
		{"no match", types.FilterSpec{Rule: "java:S9999"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.SearchFindings(ctx, tt.filter)
			if err != nil {
				t.Fatalf("SearchFindings failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d findings, want %d", len(got), tt.want)
			}
		})
	}
}

func TestSearchFindingsOrdering(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedFinding(t, store, "java:S2699", "TestA.java", 10)
	seedFinding(t, store, "java:S2095", "FileB.java", 5)
	seedFinding(t, store, "java:S2095", "FileA.java", 42)
	seedFinding(t, store, "java:S2095", "FileA.java", 7)

	got, err := store.SearchFindings(ctx, types.FilterSpec{})
	if err != nil {
		t.Fatalf("SearchFindings failed: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d findings, want 4", len(got))
	}
	wantLoc := []string{"FileA.java:7", "FileA.java:42", "FileB.java:5", "TestA.java:10"}
	for i, want := range wantLoc {
		if got[i].Location() != want {
			t.Errorf("position %d: got %s, want %s", i, got[i].Location(), want)
		}
	}
}

func TestSearchExcludesResolvedByDefault(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	key := seedFinding(t, store, "java:S2095", "FileA.java", 42)
	seedFinding(t, store, "java:S2095", "FileB.java", 7)

	if ok, err := store.MarkResolved(ctx, key, time.Now()); err != nil || !ok {
		t.Fatalf("MarkResolved = %v, %v", ok, err)
	}

	got, err := store.SearchFindings(ctx, types.FilterSpec{})
	if err != nil {
		t.Fatalf("SearchFindings failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("default view should hide resolved: got %d", len(got))
	}

	got, err = store.SearchFindings(ctx, types.FilterSpec{IncludeResolved: true})
	if err != nil {
		t.Fatalf("SearchFindings failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("include-resolved view should show both: got %d", len(got))
	}
	for _, f := range got {
		if f.Key == key && !f.Resolved {
			t.Error("resolved flag lost on scan")
		}
	}
}
