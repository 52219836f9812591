package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sweepdev/sweep/internal/storage"
	"github.com/sweepdev/sweep/internal/types"
)

const findingColumns = `key, rule, severity, finding_type, path, line, message, tags,
       first_seen, resolved, resolved_at, lock_group, lock_holder, lock_acquired_at`

func joinTags(tags []string) string {
	return strings.Join(types.NormalizeTags(append([]string(nil), tags...)), ",")
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// scanFinding reads one findings row from a *sql.Row or *sql.Rows.
func scanFinding(scan func(dest ...interface{}) error) (*types.Finding, error) {
	var f types.Finding
	var findingType, tags string
	var resolved int
	var resolvedAt, lockAcquiredAt sql.NullTime
	var lockGroup, lockHolder sql.NullString

	err := scan(&f.Key, &f.Rule, &f.Severity, &findingType, &f.Path, &f.Line,
		&f.Message, &tags, &f.FirstSeen, &resolved, &resolvedAt,
		&lockGroup, &lockHolder, &lockAcquiredAt)
	if err != nil {
		return nil, err
	}

	f.Type = types.FindingType(findingType)
	f.Tags = splitTags(tags)
	f.Resolved = resolved != 0
	if resolvedAt.Valid {
		t := resolvedAt.Time
		f.ResolvedAt = &t
	}
	if lockHolder.Valid {
		f.Lock = &types.LockRef{
			Group:      lockGroup.String,
			Holder:     lockHolder.String,
			AcquiredAt: lockAcquiredAt.Time,
		}
	}
	return &f, nil
}

// UpsertFinding inserts a new finding or merges remote fields into the
// existing record by identity key. Resolved and lock columns are never
// touched here; rule, path and line are part of the identity so they
// cannot change under the same key.
func (s *Store) UpsertFinding(ctx context.Context, f *types.Finding) (storage.UpsertOutcome, error) {
	if f.Key == "" {
		f.ComputeKey()
	}
	tags := joinTags(f.Tags)
	firstSeen := f.FirstSeen
	if firstSeen.IsZero() {
		firstSeen = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO findings (key, rule, severity, finding_type, path, line, message, tags, first_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO NOTHING
	`, f.Key, f.Rule, string(f.Severity), string(f.Type), f.Path, f.Line, f.Message, tags, firstSeen)
	if err != nil {
		return 0, fmt.Errorf("inserting finding %s: %w", f.Key, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("insert rows affected: %w", err)
	} else if n > 0 {
		return storage.UpsertAdded, nil
	}

	// Existing record: update remote fields only when they actually differ,
	// so the caller can distinguish updated from unchanged.
	res, err = s.db.ExecContext(ctx, `
		UPDATE findings
		SET severity = ?, finding_type = ?, message = ?, tags = ?
		WHERE key = ? AND (severity <> ? OR finding_type <> ? OR message <> ? OR tags <> ?)
	`, string(f.Severity), string(f.Type), f.Message, tags,
		f.Key, string(f.Severity), string(f.Type), f.Message, tags)
	if err != nil {
		return 0, fmt.Errorf("updating finding %s: %w", f.Key, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("update rows affected: %w", err)
	} else if n > 0 {
		return storage.UpsertUpdated, nil
	}
	return storage.UpsertUnchanged, nil
}

// GetFinding retrieves a single finding by identity key.
func (s *Store) GetFinding(ctx context.Context, key string) (*types.Finding, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+findingColumns+` FROM findings WHERE key = ?`, key)
	f, err := scanFinding(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("finding %s: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting finding %s: %w", key, err)
	}
	return f, nil
}

// SearchFindings evaluates the filter and returns findings ordered by
// rule, path, line, key. Scalar clauses are pushed into SQL; tag set
// membership is evaluated in Go on the scanned rows.
func (s *Store) SearchFindings(ctx context.Context, filter types.FilterSpec) ([]*types.Finding, error) {
	var conditions []string
	var args []interface{}

	if !filter.IncludeResolved {
		conditions = append(conditions, "resolved = 0")
	}
	if filter.Rule != "" {
		conditions = append(conditions, "rule = ?")
		args = append(args, filter.Rule)
	}
	if filter.Severity != "" {
		conditions = append(conditions, "severity = ?")
		args = append(args, string(filter.Severity))
	}
	if filter.Type != "" {
		conditions = append(conditions, "finding_type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Path != "" {
		conditions = append(conditions, "instr(path, ?) > 0")
		args = append(args, filter.Path)
	}
	if filter.Exclude != "" {
		conditions = append(conditions, "instr(path, ?) = 0")
		args = append(args, filter.Exclude)
	}

	query := `SELECT ` + findingColumns + ` FROM findings`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY rule, path, line, key"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching findings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var findings []*types.Finding
	for rows.Next() {
		f, err := scanFinding(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning finding: %w", err)
		}
		if len(filter.Tags) > 0 && !f.HasAllTags(filter.Tags) {
			continue
		}
		if len(filter.TagsAny) > 0 && !f.HasAnyTag(filter.TagsAny) {
			continue
		}
		findings = append(findings, f)
		if filter.Limit > 0 && len(findings) >= filter.Limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating findings: %w", err)
	}
	return findings, nil
}
