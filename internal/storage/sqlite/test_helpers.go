package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/sweepdev/sweep/internal/types"
)

// newTestStore creates a Store backed by a temp file.
//
// File-based databases are more reliable than in-memory for connection
// pool scenarios, and give each test its own isolated database.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(context.Background(), t.TempDir()+"/test.db")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if cerr := store.Close(); cerr != nil {
			t.Fatalf("Failed to close test database: %v", cerr)
		}
	})
	return store
}

// seedFinding upserts a finding with sensible defaults and returns its key.
func seedFinding(t *testing.T, store *Store, rule, path string, line int, tags ...string) string {
	t.Helper()

	f := &types.Finding{
		Rule:      rule,
		Severity:  types.SeverityMajor,
		Type:      types.TypeBug,
		Path:      path,
		Line:      line,
		Message:   "Close this resource",
		Tags:      tags,
		FirstSeen: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	if _, err := store.UpsertFinding(context.Background(), f); err != nil {
		t.Fatalf("UpsertFinding failed: %v", err)
	}
	return f.Key
}
