package main

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"memorial/internal/database"
	"memorial/pkg/utils"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show submission counts and media usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cliContext(cmd.Context())
			defer cancel()
			a := loadApp(ctx)
			defer a.Close()

			s, err := database.LoadStats(a.db.WithContext(ctx))
			if err != nil {
				return err
			}

			data := pterm.TableData{
				{"Drafts", strconv.FormatInt(s.Drafts, 10)},
				{"Submitted", strconv.FormatInt(s.Submitted, 10)},
				{"Accepted", strconv.FormatInt(s.Accepted, 10)},
				{"Pending", strconv.FormatInt(s.Submitted-s.Accepted, 10)},
				{"Images", strconv.FormatInt(s.Images, 10) + " (" + utils.FormatBytes(s.ImageSize) + ")"},
				{"Links", strconv.FormatInt(s.Links, 10)},
			}
			pterm.DefaultSection.Println(a.conf.Site.Title)
			return pterm.DefaultTable.WithBoxed().WithData(data).Render()
		},
	}
}
