package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"canvass/internal/api"
	"canvass/internal/queueaccess"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <itemID>",
		Short: "Show queue item details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			id := ids[0]

			return ctx.withQueue(func(qa queueaccess.Access) error {
				item, err := qa.Describe(cmd.Context(), id)
				if err != nil {
					return err
				}
				if item == nil {
					if jsonOutput {
						return writeJSON(cmd, map[string]any{"id": id, "error": "not_found"})
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Item %d not found\n", id)
					return nil
				}
				if jsonOutput {
					return writeJSON(cmd, item)
				}
				printQueueItemDetail(cmd.OutOrStdout(), *item)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the item as JSON")
	return cmd
}

func printQueueItemDetail(out io.Writer, item api.QueueItem) {
	writeDetailLine(out, "ID", fmt.Sprintf("%d", item.ID))
	writeDetailLine(out, "Agency", api.DisplayName(item))
	writeDetailLine(out, "Seed URL", item.SeedURL)
	writeDetailLine(out, "Site Host", item.SiteHost)
	writeDetailLine(out, "Custom Query", item.CustomQuery)
	writeDetailLine(out, "Status", formatStatusLabel(item.Status))
	writeDetailLine(out, "Lane", formatLaneLabel(item.ProcessingLane))
	writeDetailLine(out, "Progress", formatProgressDetail(item.Progress))
	writeDetailLine(out, "Created", formatDisplayTime(item.CreatedAt))
	writeDetailLine(out, "Updated", formatDisplayTime(item.UpdatedAt))
	writeDetailLine(out, "Report Path", item.ReportPath)
	writeDetailLine(out, "Background Log", item.BackgroundLogPath)
	if item.NeedsReview {
		value := "yes"
		if reason := strings.TrimSpace(item.ReviewReason); reason != "" {
			value = fmt.Sprintf("yes (%s)", reason)
		}
		writeDetailLine(out, "Needs Review", value)
	}
	writeDetailLine(out, "Error", item.ErrorMessage)

	if item.Profile == nil {
		return
	}
	profile := item.Profile
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Profile:")
	completeness := api.CompletenessLabel(item)
	if profile.TotalFields > 0 {
		completeness = fmt.Sprintf("%s (%d/%d fields)", completeness, profile.FilledFields, profile.TotalFields)
	}
	writeProfileLine(out, "Completeness", completeness)
	writeProfileLine(out, "Sites", fmt.Sprintf("%d", profile.Sites))
	writeProfileLine(out, "Services", fmt.Sprintf("%d", profile.Services))
	if profile.CustomFields > 0 {
		writeProfileLine(out, "Custom Fields", fmt.Sprintf("%d", profile.CustomFields))
	}
	if profile.PagesVisited > 0 {
		writeProfileLine(out, "Pages Visited", fmt.Sprintf("%d", profile.PagesVisited))
	}
	if len(profile.Missing) > 0 {
		writeProfileLine(out, "Missing", strings.Join(profile.Missing, ", "))
	}
}

func writeDetailLine(out io.Writer, label, value string) {
	if strings.TrimSpace(value) == "" || value == "-" {
		return
	}
	fmt.Fprintf(out, "%-16s %s\n", label+":", value)
}

func writeProfileLine(out io.Writer, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(out, "%s%-14s %s\n", statusIndent, label+":", value)
}

func formatProgressDetail(progress api.QueueProgress) string {
	stage := strings.TrimSpace(progress.Stage)
	if stage == "" && progress.Percent <= 0 {
		return ""
	}
	part := formatStatusLabel(stage)
	if part == "" {
		part = "In progress"
	}
	if progress.Percent > 0 {
		part = fmt.Sprintf("%s (%.0f%%)", part, progress.Percent)
	}
	if message := strings.TrimSpace(progress.Message); message != "" {
		part += " – " + message
	}
	return part
}
