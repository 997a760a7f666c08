package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"canvass/internal/api"
	"canvass/internal/logging"
)

func newProfileCommand(ctx *commandContext) *cobra.Command {
	var agencyName string
	var customQuery string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "profile <url>",
		Short: "Profile a single agency site without the daemon",
		Long: `Profile one agency site in the foreground: scout the site map, extract
page content through the configured Ollama model, compile the profile, and
export the report. The run records a queue item like daemon-processed work,
so list and show display it afterwards.

Examples:
  canvass profile https://example.org
  canvass profile https://example.org --name "Harbor Light Shelter"
  canvass profile https://example.org --query "Does intake require ID?"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			seedURL := strings.TrimSpace(args[0])
			if seedURL == "" {
				return fmt.Errorf("seed URL is required")
			}

			logger, err := logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				OutputPaths: []string{"stdout"},
			})
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}

			out := cmd.OutOrStdout()
			if !jsonOutput {
				fmt.Fprintf(out, "🔍 Profiling site: %s\n", seedURL)
				if name := strings.TrimSpace(agencyName); name != "" {
					fmt.Fprintf(out, "🏢 Agency: %s\n\n", name)
				} else {
					fmt.Fprintln(out)
				}
			}

			result, err := api.ProfileSite(cmd.Context(), api.ProfileSiteRequest{
				Config:      cfg,
				SeedURL:     seedURL,
				AgencyName:  agencyName,
				CustomQuery: customQuery,
				Logger:      logger,
			})
			if err != nil {
				return err
			}

			assessment := api.AssessProfileRun(result.Item)
			if jsonOutput {
				return writeJSON(cmd, map[string]any{
					"itemId":       result.ItemID,
					"agencyName":   assessment.AgencyName,
					"seedUrl":      result.SeedURL,
					"siteHost":     result.SiteHost,
					"completeness": result.Completeness,
					"sites":        result.Sites,
					"services":     result.Services,
					"pagesVisited": result.PagesVisited,
					"reportPath":   result.ReportPath,
					"outcome":      assessment.Outcome,
					"reviewReason": assessment.ReviewReason,
				})
			}

			fmt.Fprintf(out, "\n📊 Profile Results:\n")
			fmt.Fprintf(out, "  Agency: %s\n", assessment.AgencyName)
			fmt.Fprintf(out, "  Seed URL: %s\n", result.SeedURL)
			if result.SiteHost != "" {
				fmt.Fprintf(out, "  Site Host: %s\n", result.SiteHost)
			}
			fmt.Fprintf(out, "  Completeness: %.0f%%\n", result.Completeness)
			fmt.Fprintf(out, "  Sites: %d\n", result.Sites)
			fmt.Fprintf(out, "  Services: %d\n", result.Services)
			if result.PagesVisited > 0 {
				fmt.Fprintf(out, "  Pages Visited: %d\n", result.PagesVisited)
			}
			if result.ReportPath != "" {
				fmt.Fprintf(out, "  Report: %s\n", result.ReportPath)
			}
			if assessment.ReviewRequired {
				fmt.Fprintf(out, "  Review Required: ⚠️  Yes - %s\n", assessment.ReviewReason)
			} else {
				fmt.Fprintf(out, "  Review Required: ✅ No\n")
			}

			fmt.Fprintf(out, "\n%s\n", assessment.OutcomeMessage)
			return nil
		},
	}

	cmd.Flags().StringVarP(&agencyName, "name", "n", "", "Agency name recorded with the queue item")
	cmd.Flags().StringVarP(&customQuery, "query", "q", "", "Custom question answered alongside the standard fields")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the run summary as JSON")
	return cmd
}
