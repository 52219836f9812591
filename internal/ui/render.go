package ui

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sweepdev/sweep/internal/stats"
	"github.com/sweepdev/sweep/internal/types"
)

// RenderFindings renders the ordered finding sequence as a table. The
// core only guarantees the ordered sequence; everything here is
// presentation.
func RenderFindings(findings []*types.Finding, useColor bool) string {
	if len(findings) == 0 {
		return "No findings match.\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tRULE\tSEV\tLOCATION\tMESSAGE\tSTATE")

	for _, f := range findings {
		sev := string(f.Severity)
		if useColor {
			sev = SeverityStyle(f.Severity).Render(sev)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			f.Key, f.Rule, sev, f.Location(), truncate(f.Message, 60), stateMarker(f))
	}
	_ = w.Flush()

	fmt.Fprintf(&b, "\n%d finding(s)\n", len(findings))
	return b.String()
}

// stateMarker renders the local state column: [R] for resolved,
// [locked:holder] for claimed, empty otherwise.
func stateMarker(f *types.Finding) string {
	switch {
	case f.Resolved:
		return "[R]"
	case f.Lock != nil:
		return "[locked:" + f.Lock.Holder + "]"
	default:
		return ""
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

// RenderFileList renders the deduplicated file-path view with per-file
// counts, preserving the scan order of first appearance.
func RenderFileList(findings []*types.Finding) string {
	counts := make(map[string]int)
	var order []string
	for _, f := range findings {
		if counts[f.Path] == 0 {
			order = append(order, f.Path)
		}
		counts[f.Path]++
	}
	sort.Strings(order)

	var b strings.Builder
	for _, path := range order {
		fmt.Fprintf(&b, "%s (%d)\n", path, counts[path])
	}
	return b.String()
}

// RenderSummary renders the rule × severity matrix. With the resolved
// view included, cells carry their resolved sub-count: "2 (2 resolved)".
func RenderSummary(summary *stats.Summary) string {
	if summary.Total == 0 {
		return "No findings.\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)

	header := "RULE"
	for _, sev := range summary.Severities {
		header += "\t" + string(sev)
	}
	header += "\tTOTAL"
	fmt.Fprintln(w, header)

	for _, row := range summary.Rows {
		line := row.Rule
		for _, sev := range summary.Severities {
			line += "\t" + renderCell(row.Cells[sev], summary.IncludeResolved)
		}
		line += "\t" + renderCell(stats.Cell{Count: row.Total, Resolved: row.Resolved}, summary.IncludeResolved)
		fmt.Fprintln(w, line)
	}
	_ = w.Flush()

	if summary.IncludeResolved {
		fmt.Fprintf(&b, "\n%d finding(s), %d resolved\n", summary.Total, summary.TotalResolved)
	} else {
		fmt.Fprintf(&b, "\n%d open finding(s)\n", summary.Total)
	}
	return b.String()
}

func renderCell(cell stats.Cell, includeResolved bool) string {
	if cell.Count == 0 {
		return "-"
	}
	if includeResolved && cell.Resolved > 0 {
		return fmt.Sprintf("%d (%d resolved)", cell.Count, cell.Resolved)
	}
	return fmt.Sprintf("%d", cell.Count)
}

// RenderLocks renders active locks grouped by group key and holder.
func RenderLocks(findings []*types.Finding, now time.Time) string {
	if len(findings) == 0 {
		return "No active locks.\n"
	}

	type groupKey struct{ group, holder string }
	groups := make(map[groupKey][]*types.Finding)
	var order []groupKey
	for _, f := range findings {
		if f.Lock == nil {
			continue
		}
		k := groupKey{f.Lock.Group, f.Lock.Holder}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], f)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].group != order[j].group {
			return order[i].group < order[j].group
		}
		return order[i].holder < order[j].holder
	})

	var b strings.Builder
	for _, k := range order {
		members := groups[k]
		age := now.Sub(members[0].Lock.AcquiredAt).Round(time.Minute)
		fmt.Fprintf(&b, "%s  holder=%s  %d finding(s)  age=%s\n", k.group, k.holder, len(members), age)
		for _, f := range members {
			fmt.Fprintf(&b, "  %s  %s  %s\n", f.Key, f.Rule, f.Location())
		}
	}
	return b.String()
}
