package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	imgcolor "image/color"
	"image/jpeg"
	"math/rand"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"memorial/internal/submissions"
	"memorial/pkg/utils"
)

var (
	seedNames = []string{"Ada Lovelace", "Grace Hopper", "Alan Turing", "Katherine Johnson", "Edsger Dijkstra", "Barbara Liskov", "Ken Thompson", "Radia Perlman"}
	seedTexts = []string{
		"She loved gardening. Every spring the **roses** came back, and so did we.",
		"I will never forget the summer at the lake.\nThank you for everything.",
		"Always the first to laugh and the last to leave the kitchen.",
		"The stories at dinner were the best part of every visit.",
	}
)

type seedResult struct {
	ID      uint
	Success bool
	Error   error
}

func newSeedCmd() *cobra.Command {
	var count, workers, images int
	var accept bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with demo submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), count, workers, images, accept)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 20, "Number of submissions")
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "Concurrent workers")
	cmd.Flags().IntVar(&images, "images", 2, "Max generated images per submission")
	cmd.Flags().BoolVar(&accept, "accept", false, "Accept every seeded submission")
	return cmd
}

func runSeed(parent context.Context, count, workers, maxImages int, accept bool) error {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := cliContext(parent)
	defer cancel()
	a := loadApp(ctx)
	defer a.Close()

	pterm.DefaultHeader.WithFullWidth().WithBackgroundStyle(pterm.NewStyle(pterm.BgLightMagenta)).WithTextStyle(pterm.NewStyle(pterm.FgBlack)).Println("MEMORIAL DEMO SEEDER")
	pterm.Println()

	data := pterm.TableData{
		{"Database", color.New(color.FgCyan).Sprint(a.conf.Database.Driver)},
		{"Submissions", color.New(color.FgYellow).Sprintf("%d", count)},
		{"Concurrency", color.New(color.FgYellow).Sprintf("%d workers", workers)},
		{"Accept", fmt.Sprint(accept)},
	}
	_ = pterm.DefaultTable.WithBoxed().WithData(data).Render()
	pterm.Println()

	bar, _ := pterm.DefaultProgressbar.
		WithTotal(count).
		WithTitle("Seeding submissions...").
		WithShowCount(true).
		WithShowElapsedTime(true).
		Start()

	var wg sync.WaitGroup
	jobs := make(chan int, count)
	results := make(chan seedResult, count)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- seedOne(ctx, a.subs, j, maxImages, accept)
				bar.Increment()
			}
		}()
	}
	for i := 0; i < count; i++ {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(results)
	bar.Stop()

	var failures []seedResult
	for res := range results {
		if !res.Success {
			failures = append(failures, res)
		}
	}

	pterm.Println()
	if len(failures) == 0 {
		pterm.DefaultSection.WithStyle(pterm.NewStyle(pterm.FgGreen)).Println("SEEDING COMPLETED SUCCESSFULLY")
		pterm.Info.Printf("Created %d submissions.\n", count)
		return nil
	}

	pterm.DefaultSection.WithStyle(pterm.NewStyle(pterm.FgYellow)).Println("COMPLETED WITH ERRORS")
	pterm.Info.Printf("Success: %d | Failed: %d\n", count-len(failures), len(failures))
	for _, f := range failures {
		fmt.Printf(" • #%s: %v\n", color.RedString("%d", f.ID), f.Error)
	}
	return fmt.Errorf("%d submissions failed", len(failures))
}

// seedOne walks a draft through the same steps a visitor takes.
func seedOne(ctx context.Context, svc *submissions.Service, n, maxImages int, accept bool) seedResult {
	draft, err := svc.ResumeDraft(ctx, 0)
	if err != nil {
		return seedResult{Error: err}
	}
	id := draft.ID

	images := 0
	if maxImages > 0 {
		images = rand.Intn(maxImages + 1)
	}
	for i := 0; i < images; i++ {
		if _, err := svc.AddImage(ctx, id, id, seedImage(n*10+i)); err != nil {
			return seedResult{ID: id, Error: fmt.Errorf("image: %w", err)}
		}
	}

	name := seedNames[n%len(seedNames)]
	form := submissions.DraftForm{
		Name: name,
		Text: seedTexts[rand.Intn(len(seedTexts))],
	}
	if _, errs, err := svc.Submit(ctx, id, id, form); err != nil || len(errs) > 0 {
		if err == nil {
			err = errs
		}
		return seedResult{ID: id, Error: err}
	}

	if accept {
		if _, err := svc.Accept(ctx, id, "seed"); err != nil {
			return seedResult{ID: id, Error: err}
		}
	}
	return seedResult{ID: id, Success: true}
}

// seedImage renders a gradient in the colours of a seeded name.
func seedImage(seed int) []byte {
	c1, c2 := utils.GradientFor(fmt.Sprintf("seed-%d", seed))
	const w, h = 800, 600
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		t := float64(y) / h
		c := imgcolor.RGBA{
			R: uint8(float64(c1.R)*(1-t) + float64(c2.R)*t),
			G: uint8(float64(c1.G)*(1-t) + float64(c2.G)*t),
			B: uint8(float64(c1.B)*(1-t) + float64(c2.B)*t),
			A: 255,
		}
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80})
	return buf.Bytes()
}
