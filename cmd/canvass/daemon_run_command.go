package main

import (
	"strings"

	"github.com/spf13/cobra"

	"canvass/internal/daemonrun"
)

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	var debugLog bool
	var logLevel string
	cmd := &cobra.Command{
		Use:          "run",
		Short:        "Run the canvass daemon in the foreground (internal)",
		Hidden:       true,
		Annotations:  map[string]string{"skipConfigLoad": "true"},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			level := strings.TrimSpace(logLevel)
			if level == "" {
				level = cfg.Logging.Level
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel: level,
				DebugLog: debugLog,
			})
		},
	}
	cmd.Flags().BoolVar(&debugLog, "debug", false, "Write a full-debug log alongside the normal logs")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level for this run")
	return cmd
}
