// Package lockmgr grants and revokes exclusive claims over filter-defined
// groups of findings.
//
// A claim is a best-effort batch: each matching finding is claimed with a
// single compare-and-set against the store, so under contention a call may
// claim part of the group and report conflicts for the rest. Re-issuing
// the same call picks up only the remainder; it never steals another
// holder's claim.
package lockmgr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sweepdev/sweep/internal/storage"
	"github.com/sweepdev/sweep/internal/types"
)

// Conflict reports a finding that could not be claimed because another
// holder got there first.
type Conflict struct {
	Key    string `json:"key"`
	Rule   string `json:"rule"`
	Path   string `json:"path"`
	Holder string `json:"holder"`
}

// LockResult summarizes a batch claim.
type LockResult struct {
	Group     string     `json:"group"`
	Claimed   int        `json:"claimed"`
	Conflicts []Conflict `json:"conflicts,omitempty"`
}

// ResolveResult summarizes a batch resolution. Unowned counts findings
// resolved without a matching lock held by the caller; resolution is a
// statement of fact about the code, not an extension of the locking
// discipline, but reporting keeps the two distinguishable.
type ResolveResult struct {
	Resolved int `json:"resolved"`
	Unowned  int `json:"unowned,omitempty"`
}

// Lock claims every unlocked finding matching spec for holder. Resolved
// findings are excluded from the target set unless spec.IncludeResolved
// is set (the deliberate path for re-claiming a reverted remediation).
func Lock(ctx context.Context, store storage.Storage, spec types.FilterSpec, holder string, now time.Time) (*LockResult, error) {
	if holder == "" {
		return nil, fmt.Errorf("holder is required")
	}

	matches, err := store.SearchFindings(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("resolving lock group: %w", err)
	}

	result := &LockResult{Group: spec.CanonicalKey()}
	for _, f := range matches {
		err := store.AcquireLock(ctx, f.Key, result.Group, holder, now)
		switch {
		case err == nil:
			result.Claimed++
		case errors.Is(err, storage.ErrAlreadyLocked):
			conflict := Conflict{Key: f.Key, Rule: f.Rule, Path: f.Path}
			// Best-effort holder attribution; the scanned snapshot may
			// trail the CAS that beat us.
			if cur, gerr := store.GetFinding(ctx, f.Key); gerr == nil && cur.Lock != nil {
				conflict.Holder = cur.Lock.Holder
			}
			result.Conflicts = append(result.Conflicts, conflict)
		case errors.Is(err, storage.ErrNotFound):
			// Deleted between scan and claim; absence is a normal outcome.
		default:
			return result, err
		}
	}
	return result, nil
}

// Unlock releases matching findings held by holder. Findings locked by a
// different holder are left untouched; forced release goes through Clear.
func Unlock(ctx context.Context, store storage.Storage, spec types.FilterSpec, holder string) (int, error) {
	if holder == "" {
		return 0, fmt.Errorf("holder is required")
	}

	// Include resolved findings in the match so an unlock sweeps up
	// anything the holder still references, though resolve already
	// clears its own locks.
	spec.IncludeResolved = true
	matches, err := store.SearchFindings(ctx, spec)
	if err != nil {
		return 0, fmt.Errorf("resolving unlock group: %w", err)
	}

	released := 0
	for _, f := range matches {
		if f.Lock == nil || f.Lock.Holder != holder {
			continue
		}
		ok, err := store.ReleaseLock(ctx, f.Key, holder)
		if err != nil {
			return released, err
		}
		if ok {
			released++
		}
	}
	return released, nil
}

// ClearAll force-releases every lock regardless of holder.
func ClearAll(ctx context.Context, store storage.Storage) (int, error) {
	return store.ClearAllLocks(ctx)
}

// ClearOlderThan force-releases locks acquired before cutoff. This is the
// recovery path for holders that crashed without releasing; locks never
// expire by wall-clock timeout on their own.
func ClearOlderThan(ctx context.Context, store storage.Storage, cutoff time.Time) (int, error) {
	return store.ClearLocksOlderThan(ctx, cutoff)
}

// Resolve marks every finding matching spec as resolved, clearing any
// lock. Findings locked by a different holder (or not locked at all) are
// still resolved but counted as unowned.
func Resolve(ctx context.Context, store storage.Storage, spec types.FilterSpec, holder string, now time.Time) (*ResolveResult, error) {
	matches, err := store.SearchFindings(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("resolving target group: %w", err)
	}

	result := &ResolveResult{}
	for _, f := range matches {
		if f.Resolved {
			continue
		}
		ok, err := store.MarkResolved(ctx, f.Key, now)
		if err != nil {
			return result, err
		}
		if !ok {
			continue // raced with another resolver
		}
		result.Resolved++
		if f.Lock == nil || f.Lock.Holder != holder {
			result.Unowned++
		}
	}
	return result, nil
}
