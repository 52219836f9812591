// Package syncer reconciles batches of remote findings into the local
// store without discarding lock or resolution state.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/sweepdev/sweep/internal/storage"
	"github.com/sweepdev/sweep/internal/types"
)

// RemoteFinding is the raw record shape the remote analysis server must
// provide. Transport and auth live in the client packages; the engine
// only cares about the fields needed to merge records.
type RemoteFinding struct {
	Rule      string
	Severity  string
	Type      string
	Path      string
	Line      int
	Message   string
	Tags      []string
	CreatedAt time.Time
}

// SyncError describes a single malformed record. Malformed records are
// skipped and counted, never propagated, so one bad record cannot abort
// an otherwise-good batch.
type SyncError struct {
	Index  int
	Reason string
}

func (e SyncError) Error() string {
	return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
}

// Result reports what a reconciliation did.
type Result struct {
	Added     int         `json:"added"`
	Updated   int         `json:"updated"`
	Unchanged int         `json:"unchanged"`
	Malformed int         `json:"malformed,omitempty"`
	Errors    []SyncError `json:"-"`
}

// Reconcile merges a freshly fetched batch into the store. For every
// record it computes the identity key and upserts; findings present
// locally but absent from the batch are left untouched (the remote may
// have returned a filtered page, and silent deletion could drop an
// in-progress lock). Store-level failures abort the batch; malformed
// records do not.
func Reconcile(ctx context.Context, store storage.Storage, batch []RemoteFinding, now time.Time) (*Result, error) {
	result := &Result{}

	for i, rec := range batch {
		if reason := validate(rec); reason != "" {
			result.Malformed++
			result.Errors = append(result.Errors, SyncError{Index: i, Reason: reason})
			continue
		}

		f := &types.Finding{
			Rule:      rec.Rule,
			Severity:  normalizeSeverity(rec.Severity),
			Type:      types.FindingType(rec.Type),
			Path:      rec.Path,
			Line:      rec.Line,
			Message:   rec.Message,
			Tags:      rec.Tags,
			FirstSeen: rec.CreatedAt,
		}
		if f.FirstSeen.IsZero() {
			f.FirstSeen = now
		}
		f.ComputeKey()

		outcome, err := store.UpsertFinding(ctx, f)
		if err != nil {
			return result, fmt.Errorf("upserting record %d (%s): %w", i, f.Key, err)
		}
		switch outcome {
		case storage.UpsertAdded:
			result.Added++
		case storage.UpsertUpdated:
			result.Updated++
		default:
			result.Unchanged++
		}
	}
	return result, nil
}

// validate returns a non-empty reason when the record is missing a field
// required to compute its identity.
func validate(rec RemoteFinding) string {
	if rec.Rule == "" {
		return "missing rule"
	}
	if rec.Path == "" {
		return "missing path"
	}
	return ""
}

// normalizeSeverity maps unknown remote severities to MAJOR rather than
// rejecting the record; severity is not part of the identity.
func normalizeSeverity(s string) types.Severity {
	if sev, err := types.ParseSeverity(s); err == nil {
		return sev
	}
	return types.SeverityMajor
}
