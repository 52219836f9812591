package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sweepdev/sweep/internal/storage"
	"github.com/sweepdev/sweep/internal/types"
)

// AcquireLock atomically claims a finding using compare-and-swap
// semantics. The conditional UPDATE only succeeds when the finding is
// unlocked or already held by the same holder (an idempotent re-claim
// refreshes group and acquired_at). Returns storage.ErrAlreadyLocked
// naming the current holder otherwise.
func (s *Store) AcquireLock(ctx context.Context, key, group, holder string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE findings
		SET lock_group = ?, lock_holder = ?, lock_acquired_at = ?
		WHERE key = ? AND (lock_holder IS NULL OR lock_holder = ?)
	`, group, holder, at.UTC(), key, holder)
	if err != nil {
		return fmt.Errorf("locking finding %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("lock rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	// The UPDATE matched nothing: either the key is absent or another
	// holder's claim landed first.
	var current string
	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(lock_holder, '') FROM findings WHERE key = ?`, key).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("finding %s: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking lock holder for %s: %w", key, err)
	}
	return fmt.Errorf("%w by %s", storage.ErrAlreadyLocked, current)
}

// ReleaseLock clears the lock only when held by holder. A different
// holder's lock is left untouched and false is returned.
func (s *Store) ReleaseLock(ctx context.Context, key, holder string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE findings
		SET lock_group = NULL, lock_holder = NULL, lock_acquired_at = NULL
		WHERE key = ? AND lock_holder = ?
	`, key, holder)
	if err != nil {
		return false, fmt.Errorf("unlocking finding %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unlock rows affected: %w", err)
	}
	return n > 0, nil
}

// ClearAllLocks force-releases every lock regardless of holder. This is
// the administrative escape hatch; normal unlock never overrides.
func (s *Store) ClearAllLocks(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE findings
		SET lock_group = NULL, lock_holder = NULL, lock_acquired_at = NULL
		WHERE lock_holder IS NOT NULL
	`)
	if err != nil {
		return 0, fmt.Errorf("clearing locks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear rows affected: %w", err)
	}
	return int(n), nil
}

// ClearLocksOlderThan force-releases locks acquired before cutoff. Used
// to reclaim claims from holders that crashed without releasing; locks
// never expire on their own.
func (s *Store) ClearLocksOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE findings
		SET lock_group = NULL, lock_holder = NULL, lock_acquired_at = NULL
		WHERE lock_holder IS NOT NULL AND lock_acquired_at < ?
	`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("clearing stale locks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear rows affected: %w", err)
	}
	return int(n), nil
}

// ActiveLocks returns all currently locked findings, ordered like a scan.
func (s *Store) ActiveLocks(ctx context.Context) ([]*types.Finding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+findingColumns+` FROM findings
		WHERE lock_holder IS NOT NULL
		ORDER BY rule, path, line, key
	`)
	if err != nil {
		return nil, fmt.Errorf("listing locks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var findings []*types.Finding
	for rows.Next() {
		f, err := scanFinding(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning locked finding: %w", err)
		}
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating locks: %w", err)
	}
	return findings, nil
}

// MarkResolved transitions a finding to the resolved terminal state and
// clears any lock in the same row update. Returns false when the finding
// was already resolved or does not exist.
func (s *Store) MarkResolved(ctx context.Context, key string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE findings
		SET resolved = 1, resolved_at = ?,
		    lock_group = NULL, lock_holder = NULL, lock_acquired_at = NULL
		WHERE key = ? AND resolved = 0
	`, at.UTC(), key)
	if err != nil {
		return false, fmt.Errorf("resolving finding %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("resolve rows affected: %w", err)
	}
	return n > 0, nil
}
