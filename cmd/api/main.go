package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"todo-api/configs"
	"todo-api/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg configs.Config

	root := &cobra.Command{
		Use:           "todo-api",
		Short:         "Personal todo REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = configs.LoadConfig()
			// Inisialisasi logger
			return logger.InitLoggers(cfg.LogDir)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.SyncLoggers()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}

	root.AddCommand(
		newServeCmd(&cfg),
		newMigrateCmd(&cfg),
		newSeedCmd(&cfg),
	)
	return root
}
