package sqlite

const schema = `
-- Findings table: one row per remote finding identity.
-- Remote-derived columns are merged on every sync; resolved/lock columns
-- are local coordination state that sync never touches.
CREATE TABLE IF NOT EXISTS findings (
    key TEXT PRIMARY KEY,
    rule TEXT NOT NULL,
    severity TEXT NOT NULL DEFAULT 'MAJOR',
    finding_type TEXT NOT NULL DEFAULT '',
    path TEXT NOT NULL,
    line INTEGER NOT NULL DEFAULT 0,
    message TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '',
    first_seen DATETIME NOT NULL,
    resolved INTEGER NOT NULL DEFAULT 0,
    resolved_at DATETIME,
    lock_group TEXT,
    lock_holder TEXT,
    lock_acquired_at DATETIME,
    -- a lock is all-or-nothing: group, holder and acquired_at together
    CHECK (
        (lock_holder IS NULL AND lock_group IS NULL AND lock_acquired_at IS NULL) OR
        (lock_holder IS NOT NULL AND lock_group IS NOT NULL AND lock_acquired_at IS NOT NULL)
    )
);

CREATE INDEX IF NOT EXISTS idx_findings_rule ON findings(rule);
CREATE INDEX IF NOT EXISTS idx_findings_path ON findings(path);
CREATE INDEX IF NOT EXISTS idx_findings_resolved ON findings(resolved);
CREATE INDEX IF NOT EXISTS idx_findings_lock_holder ON findings(lock_holder) WHERE lock_holder IS NOT NULL;
`
