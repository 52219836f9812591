package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/sweepdev/sweep/internal/types"
)

// addFilterFlags registers the shared filter flag set. Every command
// that selects a group of findings uses the same flags, so the same
// filter always names the same lock group.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("rule", "", "Exact rule id (e.g. java:S2095)")
	cmd.Flags().String("severity", "", "Severity: INFO, MINOR, MAJOR, CRITICAL, BLOCKER")
	cmd.Flags().String("type", "", "Finding type: BUG, VULNERABILITY, CODE_SMELL, ...")
	cmd.Flags().String("path", "", "Substring match against file path")
	cmd.Flags().String("exclude", "", "Drop findings whose path contains this substring")
	cmd.Flags().StringSlice("tag", nil, "Required tag (repeatable; finding must carry all)")
	cmd.Flags().StringSlice("tag-any", nil, "Alternative tag (repeatable; finding must carry at least one)")
	cmd.Flags().Bool("include-resolved", false, "Include resolved findings in the group")
}

// specFromFlags builds the filter spec from the shared flags, validating
// enum fields.
func specFromFlags(cmd *cobra.Command) types.FilterSpec {
	spec := types.FilterSpec{}

	spec.Rule, _ = cmd.Flags().GetString("rule")
	spec.Path, _ = cmd.Flags().GetString("path")
	spec.Exclude, _ = cmd.Flags().GetString("exclude")
	spec.Tags, _ = cmd.Flags().GetStringSlice("tag")
	spec.TagsAny, _ = cmd.Flags().GetStringSlice("tag-any")
	spec.IncludeResolved, _ = cmd.Flags().GetBool("include-resolved")

	if sev, _ := cmd.Flags().GetString("severity"); sev != "" {
		parsed, err := types.ParseSeverity(sev)
		if err != nil {
			FatalError("%v", err)
		}
		spec.Severity = parsed
	}
	if ft, _ := cmd.Flags().GetString("type"); ft != "" {
		spec.Type = types.FindingType(strings.ToUpper(ft))
	}
	return spec
}
