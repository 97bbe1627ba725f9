package dartfix

import (
	"fmt"
	"io"

	"github.com/sokinpui/dartfix/cli"
	"github.com/sokinpui/dartfix/internal/rewrite"
)

// Config for using dartfix as a library.
type Config struct {
	// Extensions to migrate (e.g., 'dart'). Defaults to .dart.
	Extensions []string
	// Gitignore-style patterns to skip, relative to the directory.
	Exclude []string
	// Report without writing files.
	DryRun bool
	// Also migrate ```dart fences in .md files.
	Markdown bool
	// Number of files processed in parallel.
	Jobs int
}

// Migrate rewrites every candidate file below dir. It returns the
// modified and failed paths in a map keyed "Modified" and "Failed".
// Nothing is printed.
func Migrate(dir string, config Config) (map[string][]string, error) {
	jobs := config.Jobs
	if jobs < 1 {
		jobs = 1
	}
	cliCfg := &cli.Config{
		Dir:        dir,
		Extensions: cli.NormalizeExtensions(config.Extensions),
		Exclude:    config.Exclude,
		DryRun:     config.DryRun,
		Markdown:   config.Markdown,
		Jobs:       jobs,
	}

	app, err := New(cliCfg, WithOutput(io.Discard, io.Discard))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dartfix app: %w", err)
	}

	summary, err := app.Execute()
	if err != nil {
		return nil, err
	}

	result := map[string][]string{
		"Modified": summary.Modified,
		"Failed":   summary.Failed,
	}

	return result, nil
}

// MigrateString rewrites Dart source text and returns it with the number
// of replaced calls.
func MigrateString(src string) (string, int) {
	return rewrite.RewriteString(src)
}
