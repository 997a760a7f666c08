package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"canvass/internal/logging"
	"canvass/internal/provision"
)

func newSetupCommand(ctx *commandContext) *cobra.Command {
	var prune bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Converge declared models and binaries",
		Long: `Make the machine match the [provision] manifest in the configuration:
missing Ollama models are pulled, required binaries are checked, and the
resolved set is recorded in a state file. Exits non-zero when any declared
dependency stays unresolved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:            cfg.Logging.Level,
				Format:           "console",
				OutputPaths:      []string{"stdout"},
				ErrorOutputPaths: []string{"stderr"},
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			provisioner := provision.NewProvisioner(cfg, logger)
			result, err := provisioner.Converge(cmd.Context(), prune)
			if err != nil {
				return err
			}

			if jsonOutput {
				type jsonResource struct {
					Kind   string `json:"kind"`
					Name   string `json:"name"`
					Status string `json:"status"`
					Detail string `json:"detail,omitempty"`
				}
				resources := make([]jsonResource, 0, len(result.Resources))
				for _, resource := range result.Resources {
					resources = append(resources, jsonResource{
						Kind:   resource.Kind,
						Name:   resource.Name,
						Status: string(resource.Status),
						Detail: resource.Detail,
					})
				}
				if err := writeJSON(cmd, map[string]any{
					"resolved":   result.Resolved,
					"state_path": result.StatePath,
					"resources":  resources,
				}); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(result.Resources))
				for _, resource := range result.Resources {
					rows = append(rows, []string{
						resource.Kind,
						resource.Name,
						string(resource.Status),
						resource.Detail,
					})
				}
				out := cmd.OutOrStdout()
				table := renderTable(
					[]string{"Kind", "Name", "Status", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(out, table)
				fmt.Fprintf(out, "State recorded at %s\n", result.StatePath)
			}

			if !result.Resolved {
				return fmt.Errorf("setup incomplete: one or more declared dependencies did not resolve")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&prune, "prune", false, "Remove previously provisioned models the manifest no longer declares")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}
