package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"canvass/internal/api"
	"canvass/internal/queueaccess"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(func(qa queueaccess.Access) error {
				items, err := qa.List(cmd.Context(), listStatuses)
				if err != nil {
					return err
				}
				if jsonOutput {
					sorted := api.SortQueueItemsNewestFirst(items)
					if sorted == nil {
						sorted = []api.QueueItem{}
					}
					return writeJSON(cmd, sorted)
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				headers, aligns := queueListHeaders()
				table := renderTable(headers, buildQueueListRows(items), aligns)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by queue status (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit items as JSON")
	return cmd
}

func newRetryCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "retry [itemID...]",
		Short: "Retry failed or review queue items",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}

			return ctx.withQueue(func(qa queueaccess.Access) error {
				out := cmd.OutOrStdout()
				if len(ids) == 0 {
					updated, err := qa.RetryAll(cmd.Context())
					if err != nil {
						return err
					}
					if jsonOutput {
						return writeJSON(cmd, map[string]any{"updated": updated})
					}
					fmt.Fprintf(out, "Retried %d failed items\n", updated)
					return nil
				}

				result, err := api.RetryItemsByID(cmd.Context(), qa, ids)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, result)
				}
				printQueueRetryResult(out, result)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit outcomes as JSON")
	return cmd
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stop <itemID...>",
		Short: "Stop queue items before their next stage",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}

			return ctx.withQueue(func(qa queueaccess.Access) error {
				result, err := api.StopItemsByID(cmd.Context(), qa, ids)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, result)
				}
				printQueueStopResult(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit outcomes as JSON")
	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "remove <itemID...>",
		Aliases: []string{"rm"},
		Short:   "Remove queue items by id",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}

			return ctx.withQueue(func(qa queueaccess.Access) error {
				result, err := api.RemoveItemsByID(cmd.Context(), qa, ids)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, result)
				}
				printQueueRemoveResult(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit outcomes as JSON")
	return cmd
}

func newClearCommand(ctx *commandContext) *cobra.Command {
	var clearCompleted bool
	var clearFailed bool
	var clearForce bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove queue items in bulk",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearCompleted && clearFailed {
				return errors.New("specify only one of --completed or --failed")
			}
			return ctx.withQueue(func(qa queueaccess.Access) error {
				out := cmd.OutOrStdout()
				if clearForce && !jsonOutput {
					fmt.Fprintln(out, "Clearing queue without confirmation (--force)")
				}

				var removed int64
				var err error
				switch {
				case clearCompleted:
					removed, err = qa.ClearCompleted(cmd.Context())
				case clearFailed:
					removed, err = qa.ClearFailed(cmd.Context())
				default:
					removed, err = qa.ClearAll(cmd.Context())
				}
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, map[string]any{"removed": removed})
				}
				fmt.Fprintf(out, "Cleared %d %s\n", removed, bulkClearLabel(clearCompleted, clearFailed))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearCompleted, "completed", false, "Remove only completed items")
	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove only failed items")
	cmd.Flags().BoolVar(&clearForce, "force", false, "No-op flag for compatibility; removal always proceeds")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the removed count as JSON")
	return cmd
}
