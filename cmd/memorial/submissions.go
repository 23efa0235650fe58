package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"memorial/internal/submissions"
	"memorial/pkg/utils"
)

func newSubmissionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "submissions",
		Aliases: []string{"sub"},
		Short:   "Moderate submissions",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List submissions by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, status)
		},
	}
	list.Flags().StringVarP(&status, "status", "s", "all", "draft, submitted, pending, accepted or all")

	pending := &cobra.Command{
		Use:   "pending",
		Short: "List submissions waiting for acceptance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, "pending")
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one submission in full",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}

	var moderator string
	accept := &cobra.Command{
		Use:   "accept <id>...",
		Short: "Accept submitted entries for publication",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccept(cmd, args, moderator)
		},
	}
	accept.Flags().StringVar(&moderator, "by", os.Getenv("USER"), "Moderator name recorded with the acceptance")

	unaccept := &cobra.Command{
		Use:   "unaccept <id>...",
		Short: "Withdraw acceptance",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runUnaccept,
	}

	var yes bool
	del := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete submissions with their images and links",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args, yes)
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	cmd.AddCommand(list, pending, show, accept, unaccept, del)
	return cmd
}

func parseIDs(args []string) ([]uint, error) {
	ids := make([]uint, 0, len(args))
	for _, a := range args {
		id, err := utils.ParseID(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func runList(cmd *cobra.Command, status string) error {
	ctx, cancel := cliContext(cmd.Context())
	defer cancel()
	a := loadApp(ctx)
	defer a.Close()

	subs, err := a.subs.List(ctx, status)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		pterm.Info.Printf("No %s submissions.\n", status)
		return nil
	}

	data := pterm.TableData{{"ID", "Status", "Name", "Email", "Images", "Links", "Submitted", "Excerpt"}}
	for i := range subs {
		s := &subs[i]
		data = append(data, []string{
			strconv.FormatUint(uint64(s.ID), 10),
			statusLabel(s.Status()),
			s.DisplayName(),
			s.Email,
			strconv.Itoa(len(s.Images)),
			strconv.Itoa(len(s.Links)),
			formatTime(s.SubmittedAt),
			excerpt(s.Text, 40),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render()
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := utils.ParseID(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := cliContext(cmd.Context())
	defer cancel()
	a := loadApp(ctx)
	defer a.Close()

	s, err := a.subs.Get(ctx, id)
	if err != nil {
		return err
	}

	pterm.DefaultSection.Printf("Submission #%d", s.ID)
	data := pterm.TableData{
		{"Status", statusLabel(s.Status())},
		{"Name", s.DisplayName()},
		{"Email", s.Email},
		{"Created", s.CreatedAt.Format("2006-01-02 15:04")},
		{"Submitted", formatTime(s.SubmittedAt)},
		{"Accepted", formatTime(s.AcceptedAt)},
		{"Accepted by", s.AcceptedBy},
	}
	if err := pterm.DefaultTable.WithBoxed().WithData(data).Render(); err != nil {
		return err
	}

	if s.Message != "" {
		pterm.DefaultSection.WithLevel(2).Println("Private message")
		pterm.Println(s.Message)
	}
	if s.Text != "" {
		pterm.DefaultSection.WithLevel(2).Println("Text")
		pterm.Println(s.Text)
	}
	if len(s.Images) > 0 {
		pterm.DefaultSection.WithLevel(2).Println("Images")
		for _, img := range s.Images {
			fmt.Printf(" • %s %dx%d %s\n", a.store.URL(img.File), img.Width, img.Height, utils.FormatBytes(img.Size))
		}
	}
	if len(s.Links) > 0 {
		pterm.DefaultSection.WithLevel(2).Println("Links")
		for _, l := range s.Links {
			embedded := ""
			if l.Embed != "" {
				embedded = color.GreenString(" [embed]")
			}
			fmt.Printf(" • %s %s%s\n", l.URL, l.Caption, embedded)
		}
	}
	return nil
}

func runAccept(cmd *cobra.Command, args []string, moderator string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	ctx, cancel := cliContext(cmd.Context())
	defer cancel()
	a := loadApp(ctx)
	defer a.Close()

	failed := 0
	for _, id := range ids {
		s, err := a.subs.Accept(ctx, id, moderator)
		switch {
		case errors.Is(err, submissions.ErrNotSubmitted):
			pterm.Warning.Printf("#%d is still a draft and cannot be accepted.\n", id)
			failed++
		case err != nil:
			pterm.Error.Printf("#%d: %v\n", id, err)
			failed++
		default:
			pterm.Success.Printf("#%d from %s accepted.\n", s.ID, s.DisplayName())
		}
	}
	cacheNotice(a)
	if failed > 0 {
		return fmt.Errorf("%d of %d submissions not accepted", failed, len(ids))
	}
	return nil
}

func runUnaccept(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	ctx, cancel := cliContext(cmd.Context())
	defer cancel()
	a := loadApp(ctx)
	defer a.Close()

	for _, id := range ids {
		s, err := a.subs.Unaccept(ctx, id)
		if err != nil {
			return fmt.Errorf("#%d: %w", id, err)
		}
		pterm.Success.Printf("#%d from %s is no longer accepted.\n", s.ID, s.DisplayName())
	}
	cacheNotice(a)
	return nil
}

func runDelete(cmd *cobra.Command, args []string, yes bool) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	if !yes {
		ok, _ := pterm.DefaultInteractiveConfirm.
			WithDefaultText(fmt.Sprintf("Delete %d submission(s) with all images and links?", len(ids))).
			Show()
		if !ok {
			pterm.Info.Println("Aborted.")
			return nil
		}
	}

	ctx, cancel := cliContext(cmd.Context())
	defer cancel()
	a := loadApp(ctx)
	defer a.Close()

	for _, id := range ids {
		if err := a.subs.AdminDelete(ctx, id); err != nil {
			return fmt.Errorf("#%d: %w", id, err)
		}
		pterm.Success.Printf("#%d deleted.\n", id)
	}
	cacheNotice(a)
	return nil
}

// cacheNotice reminds the moderator that a running server keeps its own page
// cache, which this process cannot purge.
func cacheNotice(a *app) {
	if !a.conf.Cache.Enabled {
		return
	}
	pterm.Info.Printf("A running server shows this change once its page cache expires (cache.ttl %s).\n", a.conf.Cache.TTL)
}

func statusLabel(status string) string {
	switch status {
	case "accepted":
		return color.GreenString(status)
	case "submitted":
		return color.YellowString(status)
	default:
		return color.HiBlackString(status)
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func excerpt(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max-1]) + "…"
}
