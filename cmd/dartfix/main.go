package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/sokinpui/dartfix/cli"
	"github.com/sokinpui/dartfix/dartfix"
	"github.com/sokinpui/dartfix/internal/config"
	"github.com/sokinpui/dartfix/internal/fs"
	"github.com/sokinpui/dartfix/internal/tui"
	"github.com/sokinpui/dartfix/internal/ui"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	printer := ui.New(stdout, stderr)

	cfg, err := cli.ParseArgs(args, stdout)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		if !errors.Is(err, cli.ErrUsage) {
			printer.Error("%v", err)
		}
		return 1
	}

	if err := config.LoadInto(cfg); err != nil {
		printer.Error("Error: %v", err)
		return 1
	}

	app, err := dartfix.New(cfg, dartfix.WithOutput(stdout, stderr))
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize application: %v\n", err)
		return 1
	}

	if err := app.Validate(); err != nil {
		if errors.Is(err, fs.ErrNotADirectory) {
			printer.InvalidDirectory(cfg.Dir)
		} else {
			printer.Error("Error: %v", err)
		}
		return 1
	}

	if cfg.TUI && !cfg.Stdin {
		app.Quiet()
		model := tui.New(app)
		p := tea.NewProgram(model)
		model.SetProgram(p)
		final, err := p.Run()
		if err != nil {
			fmt.Fprintf(stderr, "Error running program: %v\n", err)
			return 1
		}
		if m, ok := final.(tui.Model); ok && m.Err() != nil {
			return 1
		}
		return 0
	}

	summary, err := app.Execute()
	if err != nil {
		var detailed *dartfix.DetailedError
		if errors.As(err, &detailed) {
			fmt.Fprintf(stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
		}
		printer.Error("Error: %v", err)
		return 1
	}

	switch {
	case cfg.Stdin:
		if cfg.Verbose {
			fmt.Fprintln(stderr, summary.Message)
		}
	case cfg.Clipboard:
		fmt.Fprintln(stdout, summary.Message)
	}
	return 0
}
