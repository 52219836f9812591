package types

import (
	"strings"
)

// FilterSpec selects a group of findings. All fields are optional and
// combined conjunctively (AND across fields). Tags uses AND semantics
// (finding must carry all listed tags); TagsAny uses OR semantics
// (finding must carry at least one).
//
// The same canonicalization backs both querying and lock-group keys, so
// two semantically identical filters always name the same group.
type FilterSpec struct {
	Rule     string      // exact rule id match
	Severity Severity    // exact severity match
	Type     FindingType // exact type match
	Path     string      // substring match against file path
	Exclude  string      // substring match; matching findings are removed
	Tags     []string    // AND semantics
	TagsAny  []string    // OR semantics

	// IncludeResolved admits resolved findings into the result. The
	// default (false) hides them from every query, summary and lock
	// target set; they remain in the store for audit history.
	IncludeResolved bool

	Limit int // 0 = unlimited
}

// CanonicalKey serializes the filter into the stable group key used by
// the lock manager. Field order is fixed, tags are sorted, and empty
// fields are omitted so that equivalent specs collide. An unconstrained
// default spec canonicalizes to "all".
func (s FilterSpec) CanonicalKey() string {
	var parts []string
	add := func(k, v string) {
		if v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	add("rule", s.Rule)
	add("severity", string(s.Severity))
	add("type", string(s.Type))
	add("path", s.Path)
	add("exclude", s.Exclude)
	add("tags", strings.Join(NormalizeTags(append([]string(nil), s.Tags...)), ","))
	add("tags-any", strings.Join(NormalizeTags(append([]string(nil), s.TagsAny...)), ","))
	if s.IncludeResolved {
		parts = append(parts, "resolved=1")
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, ";")
}

// Matches evaluates the filter against a single finding. The store uses
// this for the tag clauses it cannot push into SQL; tests use it directly.
func (s FilterSpec) Matches(f *Finding) bool {
	if f.Resolved && !s.IncludeResolved {
		return false
	}
	if s.Rule != "" && f.Rule != s.Rule {
		return false
	}
	if s.Severity != "" && f.Severity != s.Severity {
		return false
	}
	if s.Type != "" && f.Type != s.Type {
		return false
	}
	if s.Path != "" && !strings.Contains(f.Path, s.Path) {
		return false
	}
	if s.Exclude != "" && strings.Contains(f.Path, s.Exclude) {
		return false
	}
	if len(s.Tags) > 0 && !f.HasAllTags(s.Tags) {
		return false
	}
	if len(s.TagsAny) > 0 && !f.HasAnyTag(s.TagsAny) {
		return false
	}
	return true
}

// IsEmpty reports whether the spec constrains nothing beyond the default
// resolved visibility.
func (s FilterSpec) IsEmpty() bool {
	return s.Rule == "" && s.Severity == "" && s.Type == "" &&
		s.Path == "" && s.Exclude == "" && len(s.Tags) == 0 && len(s.TagsAny) == 0
}
