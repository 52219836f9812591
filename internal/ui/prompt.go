package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/sweepdev/sweep/internal/types"
)

// BuildPrompt assembles the remediation-prompt markdown document for a
// group of findings. The document is payload for whatever worker picks
// up the claim; sweep defines no fix semantics of its own.
func BuildPrompt(findings []*types.Finding, group, holder string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Remediation batch: %s\n\n", group)
	if holder != "" {
		fmt.Fprintf(&b, "Claimed by `%s`. ", holder)
	}
	fmt.Fprintf(&b, "This batch contains %d finding(s).\n\n", len(findings))

	b.WriteString("## Findings\n\n")
	for _, f := range findings {
		fmt.Fprintf(&b, "- **%s** `%s`: %s", f.Rule, f.Location(), f.Message)
		if len(f.Tags) > 0 {
			fmt.Fprintf(&b, " _(%s)_", strings.Join(f.Tags, ", "))
		}
		if f.Resolved {
			b.WriteString(" `[R]`")
		}
		b.WriteString("\n")
	}

	b.WriteString("\n## Instructions\n\n")
	b.WriteString("1. Fix each finding above without changing unrelated behavior.\n")
	b.WriteString("2. Run the project's build and tests after each file.\n")
	fmt.Fprintf(&b, "3. When done, run `sweep resolve` with the same filter and holder to record completion.\n")
	fmt.Fprintf(&b, "4. If you stop early, run `sweep unlock` so other workers can pick up the remainder.\n")

	return b.String()
}

// RenderMarkdown renders markdown with glamour for terminal display.
// Falls back to the raw text when rendering fails or color is disabled.
func RenderMarkdown(markdown string) string {
	if !ShouldUseColor() {
		return markdown
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(Width()),
	)
	if err != nil {
		return markdown
	}
	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return rendered
}
