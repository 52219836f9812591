// Package types defines core data structures for the sweep finding coordinator.
package types

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Severity is the remote analyzer's severity classification.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityMinor    Severity = "MINOR"
	SeverityMajor    Severity = "MAJOR"
	SeverityCritical Severity = "CRITICAL"
	SeverityBlocker  Severity = "BLOCKER"
)

// severityRank orders severities for display, most severe first.
var severityRank = map[Severity]int{
	SeverityBlocker:  0,
	SeverityCritical: 1,
	SeverityMajor:    2,
	SeverityMinor:    3,
	SeverityInfo:     4,
}

// Rank returns the display rank of the severity (0 = most severe).
// Unknown severities sort after the known ones.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return len(severityRank)
}

// ParseSeverity validates a user-supplied severity string.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToUpper(s))
	if _, ok := severityRank[sev]; !ok {
		return "", fmt.Errorf("invalid severity %q (expected INFO, MINOR, MAJOR, CRITICAL or BLOCKER)", s)
	}
	return sev, nil
}

// FindingType is the remote analyzer's issue category.
type FindingType string

const (
	TypeBug             FindingType = "BUG"
	TypeVulnerability   FindingType = "VULNERABILITY"
	TypeCodeSmell       FindingType = "CODE_SMELL"
	TypeSecurityHotspot FindingType = "SECURITY_HOTSPOT"
)

// LockRef records which group currently holds the exclusive claim on a finding.
type LockRef struct {
	Group      string    `json:"group"`
	Holder     string    `json:"holder"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// Finding is a single static-analysis finding mirrored from the remote
// server, augmented with local resolution and lock state. Identity is the
// Key fingerprint, which survives re-fetches even when the remote server
// reassigns its internal numeric ids.
type Finding struct {
	Key       string      `json:"key"`
	Rule      string      `json:"rule"`
	Severity  Severity    `json:"severity"`
	Type      FindingType `json:"type,omitempty"`
	Path      string      `json:"path"`
	Line      int         `json:"line,omitempty"`
	Message   string      `json:"message,omitempty"`
	Tags      []string    `json:"tags,omitempty"`
	FirstSeen time.Time   `json:"first_seen"`

	// Local mutable state, never overwritten by sync.
	Resolved   bool       `json:"resolved,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	Lock       *LockRef   `json:"lock,omitempty"`
}

// Fingerprint computes the stable identity key for a finding. The message
// is normalized (lowercased, whitespace collapsed) so that cosmetic remote
// edits do not fabricate a new identity for the same underlying finding.
func Fingerprint(rule, path string, line int, message string) string {
	h := sha256.New()
	h.Write([]byte(rule))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	fmt.Fprintf(h, "%d", line)
	h.Write([]byte{0})
	h.Write([]byte(normalizeMessage(message)))
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}

func normalizeMessage(msg string) string {
	return strings.Join(strings.Fields(strings.ToLower(msg)), " ")
}

// ComputeKey derives and stores the finding's identity key from its
// immutable attributes.
func (f *Finding) ComputeKey() string {
	f.Key = Fingerprint(f.Rule, f.Path, f.Line, f.Message)
	return f.Key
}

// Location renders the path:line pair for display.
func (f *Finding) Location() string {
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d", f.Path, f.Line)
	}
	return f.Path
}

// HasAllTags reports whether the finding carries every listed tag.
func (f *Finding) HasAllTags(tags []string) bool {
	for _, want := range tags {
		if !f.hasTag(want) {
			return false
		}
	}
	return true
}

// HasAnyTag reports whether the finding carries at least one listed tag.
// An empty list matches nothing.
func (f *Finding) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		if f.hasTag(want) {
			return true
		}
	}
	return false
}

func (f *Finding) hasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// NormalizeTags sorts and dedupes a tag set in place, dropping empties.
// Both the store and the canonical group key rely on this ordering.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := tags[:0]
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
