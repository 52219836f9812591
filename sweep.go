// Package sweep provides a minimal public API for driving sweep's store
// from custom orchestration.
//
// Most automation should go through the sweep CLI. This package exports
// only the essential types and functions needed for Go programs that
// want to use sweep's storage layer programmatically, e.g. a remediation
// bot that claims groups and marks findings resolved as it fixes them.
package sweep

import (
	"context"

	"github.com/sweepdev/sweep/internal/storage"
	"github.com/sweepdev/sweep/internal/storage/sqlite"
	"github.com/sweepdev/sweep/internal/types"
)

// Core types for working with findings
type (
	Finding     = types.Finding
	FilterSpec  = types.FilterSpec
	LockRef     = types.LockRef
	Severity    = types.Severity
	FindingType = types.FindingType
)

// Severity constants, lowest to highest.
const (
	SeverityInfo     = types.SeverityInfo
	SeverityMinor    = types.SeverityMinor
	SeverityMajor    = types.SeverityMajor
	SeverityCritical = types.SeverityCritical
	SeverityBlocker  = types.SeverityBlocker
)

// FindingType constants
const (
	TypeBug             = types.TypeBug
	TypeVulnerability   = types.TypeVulnerability
	TypeCodeSmell       = types.TypeCodeSmell
	TypeSecurityHotspot = types.TypeSecurityHotspot
)

// Storage provides the minimal interface for external orchestration.
type Storage = storage.Storage

// Sentinel errors surfaced by Storage implementations.
var (
	ErrAlreadyLocked = storage.ErrAlreadyLocked
	ErrNotFound      = storage.ErrNotFound
)

// Open opens a sweep SQLite database for programmatic access. The file
// is created if it does not exist.
func Open(ctx context.Context, dbPath string) (Storage, error) {
	return sqlite.New(ctx, dbPath)
}
