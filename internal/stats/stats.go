// Package stats computes summary matrices over the finding store.
package stats

import (
	"context"
	"sort"

	"github.com/sweepdev/sweep/internal/storage"
	"github.com/sweepdev/sweep/internal/types"
)

// Cell is one (rule, severity) bucket of the summary matrix.
type Cell struct {
	Count    int `json:"count"`
	Resolved int `json:"resolved,omitempty"`
}

// RuleRow aggregates one rule across severities.
type RuleRow struct {
	Rule     string                 `json:"rule"`
	Total    int                    `json:"total"`
	Resolved int                    `json:"resolved,omitempty"`
	Cells    map[types.Severity]Cell `json:"by_severity"`
}

// Summary is the rule × severity count matrix, with resolved sub-counts
// when the resolved view is included.
type Summary struct {
	Rows            []RuleRow        `json:"rules"`
	Severities      []types.Severity `json:"severities"`
	Total           int              `json:"total"`
	TotalResolved   int              `json:"total_resolved,omitempty"`
	IncludeResolved bool             `json:"include_resolved"`
}

// Collect builds the matrix in a single pass over one store scan, using
// the same filtered view a query with only include_resolved set would
// produce.
func Collect(ctx context.Context, store storage.Storage, includeResolved bool) (*Summary, error) {
	findings, err := store.SearchFindings(ctx, types.FilterSpec{IncludeResolved: includeResolved})
	if err != nil {
		return nil, err
	}

	byRule := make(map[string]*RuleRow)
	sevSeen := make(map[types.Severity]bool)
	summary := &Summary{IncludeResolved: includeResolved}

	for _, f := range findings {
		row, ok := byRule[f.Rule]
		if !ok {
			row = &RuleRow{Rule: f.Rule, Cells: make(map[types.Severity]Cell)}
			byRule[f.Rule] = row
		}
		cell := row.Cells[f.Severity]
		cell.Count++
		row.Total++
		summary.Total++
		if f.Resolved {
			cell.Resolved++
			row.Resolved++
			summary.TotalResolved++
		}
		row.Cells[f.Severity] = cell
		sevSeen[f.Severity] = true
	}

	for rule := range byRule {
		summary.Rows = append(summary.Rows, *byRule[rule])
	}
	sort.Slice(summary.Rows, func(i, j int) bool {
		return summary.Rows[i].Rule < summary.Rows[j].Rule
	})

	for sev := range sevSeen {
		summary.Severities = append(summary.Severities, sev)
	}
	sort.Slice(summary.Severities, func(i, j int) bool {
		return summary.Severities[i].Rank() < summary.Severities[j].Rank()
	})

	return summary, nil
}
