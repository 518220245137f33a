package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

// renderMarkdown styles md for the terminal unless raw output was requested.
func renderMarkdown(md string, raw bool) (string, error) {
	if raw {
		return md, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func printMarkdown(md string) subcommands.ExitStatus {
	out, err := renderMarkdown(md, *rawOutput)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering output: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}
