package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"canvass/internal/api"
	"canvass/internal/ipc"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var agencyName string
	var customQuery string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Queue an agency website for profiling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seedURL := strings.TrimSpace(args[0])
			if seedURL == "" {
				return errors.New("seed URL is required")
			}

			var item ipc.QueueItem
			if client, err := ctx.dialClient(); err == nil {
				defer client.Close()
				resp, err := client.AddSeed(seedURL, agencyName, customQuery)
				if err != nil {
					return err
				}
				if resp == nil {
					return errors.New("empty response from daemon")
				}
				item = resp.Item
			} else {
				store, err := ctx.openStore()
				if err != nil {
					return err
				}
				defer store.Close()
				created, err := store.NewSeed(cmd.Context(), seedURL, agencyName, customQuery)
				if err != nil {
					return err
				}
				item = api.FromQueueItem(created)
			}

			if jsonOutput {
				return writeJSON(cmd, item)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queued %s as item #%d (%s)\n", item.AgencyName, item.ID, item.SeedURL)
			return nil
		},
	}

	cmd.Flags().StringVarP(&agencyName, "name", "n", "", "Agency name to attach to the queue item")
	cmd.Flags().StringVarP(&customQuery, "query", "q", "", "Custom extraction goal replacing the missing-field checklist")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the created item as JSON")
	return cmd
}
