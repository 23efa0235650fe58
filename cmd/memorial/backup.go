package main

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"memorial/internal/database"
	"memorial/pkg/utils"
)

func newBackupCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a point-in-time copy of the sqlite database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cliContext(cmd.Context())
			defer cancel()
			a := loadApp(ctx)
			defer a.Close()

			if out == "" {
				out = database.BackupFilename(time.Now())
			}

			spinner, _ := pterm.DefaultSpinner.Start("Snapshotting database...")
			size, err := database.Backup(ctx, a.db, a.conf.Database.Driver, out)
			if err != nil {
				spinner.Fail(err.Error())
				return err
			}
			spinner.Success("Backup written to " + out + " (" + utils.FormatBytes(size) + ")")
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Target file (default memorial_backup_<timestamp>.db)")
	return cmd
}
