package types

import "sort"

// SortFindings orders findings for human scanning: by rule, then path,
// then line, with identity key as the deterministic tiebreaker.
func SortFindings(findings []*Finding) {
	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Key < b.Key
	})
}
