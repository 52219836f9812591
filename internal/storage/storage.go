// Package storage provides the store contract for the sweep finding
// coordinator.
//
// The concrete implementation lives in the sqlite sub-package. Consumers
// (syncer, lockmgr, stats, cmd/sweep) depend on this interface rather than
// on the concrete type so that alternatives can be substituted in tests.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sweepdev/sweep/internal/types"
)

// ErrAlreadyLocked is returned when a lock transition loses the
// compare-and-set race to another holder. The error message names the
// current holder; callers that need it structurally should re-read the
// finding.
var ErrAlreadyLocked = errors.New("finding already locked")

// ErrNotFound is returned when a requested finding does not exist.
// Batch operations treat absence as a zero count, not an error.
var ErrNotFound = errors.New("not found")

// ErrStoreUnavailable is returned when the persistence file cannot be
// opened. Fatal to the invoking command; retry policy belongs to the
// caller.
var ErrStoreUnavailable = errors.New("store unavailable")

// UpsertOutcome classifies what UpsertFinding did to the record.
type UpsertOutcome int

const (
	UpsertAdded UpsertOutcome = iota
	UpsertUpdated
	UpsertUnchanged
)

// Storage is the single source of truth for finding and lock state.
//
// Mutations are atomic per record. No cross-record transactional guarantee
// is made: a batch claim over fifty findings may succeed on thirty and
// conflict on twenty. Lock transitions are compare-and-set; a claim never
// silently overwrites another holder.
type Storage interface {
	// UpsertFinding merges remote fields into an existing record by
	// identity key, preserving resolved and lock state. Inserts with
	// resolved=false and no lock when the key is new.
	UpsertFinding(ctx context.Context, f *types.Finding) (UpsertOutcome, error)

	// GetFinding returns ErrNotFound when the key does not exist.
	GetFinding(ctx context.Context, key string) (*types.Finding, error)

	// SearchFindings evaluates the filter over all stored findings and
	// returns them ordered by rule, path, line, key.
	SearchFindings(ctx context.Context, filter types.FilterSpec) ([]*types.Finding, error)

	// AcquireLock transitions a finding to LOCKED(group, holder) only if
	// it is unlocked or already held by the same holder (idempotent
	// re-claim refreshes acquired_at). Returns ErrAlreadyLocked when a
	// different holder owns it, ErrNotFound when the key is absent.
	AcquireLock(ctx context.Context, key, group, holder string, at time.Time) error

	// ReleaseLock clears the lock only when held by holder. Returns
	// false when the finding was not locked by holder.
	ReleaseLock(ctx context.Context, key, holder string) (bool, error)

	// ClearAllLocks force-releases every lock regardless of holder.
	ClearAllLocks(ctx context.Context) (int, error)

	// ClearLocksOlderThan force-releases locks acquired before cutoff.
	ClearLocksOlderThan(ctx context.Context, cutoff time.Time) (int, error)

	// ActiveLocks returns all currently locked findings.
	ActiveLocks(ctx context.Context) ([]*types.Finding, error)

	// MarkResolved sets resolved=true/resolved_at and clears any lock.
	// Returns false when the finding was already resolved or absent.
	MarkResolved(ctx context.Context, key string, at time.Time) (bool, error)

	Close() error
}
