package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"canvass/internal/daemonctl"
	"canvass/internal/ipc"
	"canvass/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check queue database, workspace, and dependency health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			db, queueHealth, daemonRunning, err := collectHealthReports(cmd, ctx)
			if err != nil {
				return err
			}

			deps := daemonctl.ResolveDependencies(cmd.Context(), cfg)
			depSummary := daemonctl.BuildDependencySummary(deps)
			features := preflight.RunFeatureChecks(cmd.Context(), cfg)

			if jsonOutput {
				featurePayload := make([]map[string]any, 0, len(features))
				for _, feature := range features {
					featurePayload = append(featurePayload, map[string]any{
						"name":   feature.Name,
						"passed": feature.Passed,
						"detail": feature.Detail,
					})
				}
				return writeJSON(cmd, map[string]any{
					"daemon_running":     daemonRunning,
					"database":           db,
					"queue":              queueHealth,
					"features":           featurePayload,
					"dependencies":       deps,
					"dependency_summary": depSummary,
				})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Database", colorize) {
				fmt.Fprintln(out, line)
			}
			printDatabaseHealth(cmd, db)

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Queue", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "Total: %d\nPending: %d\nProcessing: %d\nFailed: %d\nReview: %d\nCompleted: %d\n",
				queueHealth.Total,
				queueHealth.Pending,
				queueHealth.Processing,
				queueHealth.Failed,
				queueHealth.Review,
				queueHealth.Completed,
			)

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Workspace", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, feature := range features {
				kind := statusOK
				if !feature.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(feature.Name, kind, feature.Detail, colorize))
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, line := range dependencyLines(deps, depSummary, colorize) {
				fmt.Fprintln(out, line)
			}

			if !daemonRunning {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderStatusLine("Daemon", statusInfo, "Not running; checks ran against the database directly", colorize))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the full report as JSON")
	return cmd
}

func collectHealthReports(cmd *cobra.Command, ctx *commandContext) (ipc.DatabaseHealthResponse, ipc.QueueHealthResponse, bool, error) {
	if client, dialErr := ctx.dialClient(); dialErr == nil {
		defer client.Close()
		dbResp, err := client.DatabaseHealth()
		if err != nil {
			return ipc.DatabaseHealthResponse{}, ipc.QueueHealthResponse{}, true, err
		}
		healthResp, err := client.QueueHealth()
		if err != nil {
			return ipc.DatabaseHealthResponse{}, ipc.QueueHealthResponse{}, true, err
		}
		return *dbResp, *healthResp, true, nil
	}

	store, err := ctx.openStore()
	if err != nil {
		return ipc.DatabaseHealthResponse{}, ipc.QueueHealthResponse{}, false, err
	}
	defer store.Close()

	health, err := store.CheckHealth(cmd.Context())
	if err != nil {
		return ipc.DatabaseHealthResponse{}, ipc.QueueHealthResponse{}, false, err
	}
	summary, err := store.Health(cmd.Context())
	if err != nil {
		return ipc.DatabaseHealthResponse{}, ipc.QueueHealthResponse{}, false, err
	}

	db := ipc.DatabaseHealthResponse{
		DBPath:           health.DBPath,
		DatabaseExists:   health.DatabaseExists,
		DatabaseReadable: health.DatabaseReadable,
		SchemaVersion:    health.SchemaVersion,
		TableExists:      health.TableExists,
		ColumnsPresent:   health.ColumnsPresent,
		MissingColumns:   health.MissingColumns,
		IntegrityCheck:   health.IntegrityCheck,
		TotalItems:       health.TotalItems,
		Error:            health.Error,
	}
	queueHealth := ipc.QueueHealthResponse{
		Total:      summary.Total,
		Pending:    summary.Pending,
		Processing: summary.Processing,
		Failed:     summary.Failed,
		Review:     summary.Review,
		Completed:  summary.Completed,
	}
	return db, queueHealth, false, nil
}

func printDatabaseHealth(cmd *cobra.Command, resp ipc.DatabaseHealthResponse) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Database path: %s\n", resp.DBPath)
	fmt.Fprintf(out, "Database exists: %s\n", yesNo(resp.DatabaseExists))
	fmt.Fprintf(out, "Readable: %s\n", yesNo(resp.DatabaseReadable))
	fmt.Fprintf(out, "Schema version: %s\n", resp.SchemaVersion)
	fmt.Fprintf(out, "queue_items table present: %s\n", yesNo(resp.TableExists))
	if len(resp.ColumnsPresent) > 0 {
		cols := append([]string(nil), resp.ColumnsPresent...)
		sort.Strings(cols)
		fmt.Fprintf(out, "Columns: %s\n", strings.Join(cols, ", "))
	}
	if len(resp.MissingColumns) > 0 {
		missing := append([]string(nil), resp.MissingColumns...)
		sort.Strings(missing)
		fmt.Fprintf(out, "Missing columns: %s\n", strings.Join(missing, ", "))
	} else {
		fmt.Fprintln(out, "Missing columns: none")
	}
	fmt.Fprintf(out, "Integrity check: %s\n", yesNo(resp.IntegrityCheck))
	fmt.Fprintf(out, "Total items: %d\n", resp.TotalItems)
	if resp.Error != "" {
		fmt.Fprintf(out, "Error: %s\n", resp.Error)
	}
}
