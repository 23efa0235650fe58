package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
)

func printLogo() {
	if err := pterm.DefaultBigText.WithLetters(putils.LettersFromString("MEMORIAL")).Render(); err != nil {
		fmt.Println("MEMORIAL")
	}
}

func printSignature() {
	cyan := color.New(color.FgHiCyan, color.Bold).SprintFunc()
	white := color.New(color.FgWhite).SprintFunc()

	fmt.Println()
	fmt.Printf("%s : %s\n", cyan("Project    "), white("Memorial Page"))
	fmt.Printf("%s : %s\n", cyan("Config     "), white("config.yaml, MEMORIAL_* env, .env"))
	fmt.Printf("%s : %s\n", cyan("Moderation "), white("memorial submissions --help"))
	fmt.Println()
}
