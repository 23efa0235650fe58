package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"memorial/pkg/utils"
)

// GLOBAL FLAGS
var configFile string

func main() {
	utils.LoadEnv()

	rootCmd := &cobra.Command{
		Use:           "memorial",
		Short:         "A memorial page where friends and family share memories",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default ./config.yaml)")

	serveCmd := newServeCmd()
	rootCmd.RunE = serveCmd.RunE

	rootCmd.AddCommand(
		serveCmd,
		newSubmissionsCmd(),
		newBackupCmd(),
		newStatsCmd(),
		newSeedCmd(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
