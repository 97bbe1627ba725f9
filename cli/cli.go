package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

// ErrUsage is returned when the invocation is incomplete, e.g. the
// directory argument is missing.
var ErrUsage = errors.New("usage")

// DefaultExtension is the file extension migrated when none is given.
const DefaultExtension = ".dart"

// Config holds all the command-line flag values.
type Config struct {
	Dir        string
	Extensions []string
	Exclude    []string
	DryRun     bool
	Diff       bool
	Markdown   bool
	Jobs       int
	Stdin      bool
	Clipboard  bool
	Nvim       string
	TUI        bool
	ConfigFile string
	Verbose    bool

	set map[string]bool
}

// IsSet reports whether the named flag was given on the command line.
func (c *Config) IsSet(name string) bool {
	return c.set[name]
}

// ParseFlags parses os.Args. Usage goes to stdout.
func ParseFlags() (*Config, error) {
	return ParseArgs(os.Args[1:], os.Stdout)
}

// ParseArgs defines and parses command-line flags using pflag.
func ParseArgs(args []string, usageOut io.Writer) (*Config, error) {
	cfg := &Config{}
	flags := pflag.NewFlagSet("dartfix", pflag.ContinueOnError)
	flags.SetOutput(usageOut)

	// Define flags
	flags.StringSliceVarP(&cfg.Extensions, "extension", "e", []string{DefaultExtension}, "File extensions to migrate (e.g., 'dart').")
	flags.StringSliceVarP(&cfg.Exclude, "exclude", "x", []string{}, "Gitignore-style patterns to skip, relative to the directory.")
	flags.BoolVarP(&cfg.DryRun, "dry-run", "n", false, "Report what would change without writing files.")
	flags.BoolVarP(&cfg.Diff, "diff", "d", false, "Print a unified diff for every modified file.")
	flags.BoolVarP(&cfg.Markdown, "markdown", "m", false, "Also migrate ```dart fences inside .md files.")
	flags.IntVarP(&cfg.Jobs, "jobs", "j", 1, "Number of files processed in parallel.")
	flags.StringVarP(&cfg.ConfigFile, "config", "c", "", "Read defaults from a config file (yaml, toml or json).")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Write debug logs to stderr.")
	flags.BoolVar(&cfg.TUI, "tui", false, "Show an interactive progress view.")
	flags.StringVar(&cfg.Nvim, "nvim", "", "Reload modified buffers in the Neovim listening on this address.")
	flags.Lookup("nvim").NoOptDefVal = "env"

	// Mutually exclusive filter group
	flags.BoolVar(&cfg.Stdin, "stdin", false, "Migrate text from stdin and print it to stdout.")
	flags.BoolVar(&cfg.Clipboard, "clipboard", false, "Migrate the clipboard contents in place.")

	flags.Usage = func() {
		fmt.Fprintln(usageOut, "Usage: dartfix [flags] <directory>")
		fmt.Fprintln(usageOut, "\nReplace deprecated Flutter .withOpacity(x) calls with .withValues(alpha: x).")
		fmt.Fprintln(usageOut, "\nExample: dartfix ./lib")
		fmt.Fprintln(usageOut, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	cfg.set = make(map[string]bool)
	flags.Visit(func(f *pflag.Flag) {
		cfg.set[f.Name] = true
	})

	// Validate mutually exclusive flags
	if cfg.Stdin && cfg.Clipboard {
		return nil, fmt.Errorf("error: --stdin and --clipboard are mutually exclusive")
	}
	if cfg.Jobs < 1 {
		return nil, fmt.Errorf("error: --jobs must be at least 1, got %d", cfg.Jobs)
	}

	if !cfg.Stdin && !cfg.Clipboard {
		if flags.NArg() < 1 {
			flags.Usage()
			return nil, ErrUsage
		}
		cfg.Dir = flags.Arg(0)
	}

	cfg.Extensions = NormalizeExtensions(cfg.Extensions)
	return cfg, nil
}

// NormalizeExtensions adds a leading dot where missing and drops empty entries.
func NormalizeExtensions(exts []string) []string {
	normalized := make([]string, 0, len(exts))
	for _, ext := range exts {
		if ext == "" {
			continue
		}
		if ext[0] != '.' {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	return normalized
}
