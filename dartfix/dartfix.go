package dartfix

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"

	"github.com/sokinpui/dartfix/cli"
	"github.com/sokinpui/dartfix/internal/fs"
	"github.com/sokinpui/dartfix/internal/logging"
	"github.com/sokinpui/dartfix/internal/nvim"
	"github.com/sokinpui/dartfix/internal/patcher"
	"github.com/sokinpui/dartfix/internal/rewrite"
	"github.com/sokinpui/dartfix/internal/source"
	"github.com/sokinpui/dartfix/internal/ui"
	"github.com/sokinpui/dartfix/model"
)

// ProgressUpdate is a callback function to report progress.
type ProgressUpdate func(current, total int)

// App orchestrates the entire application logic.
type App struct {
	cfg              *cli.Config
	walker           *fs.Walker
	patcher          *patcher.Patcher
	printer          *ui.Printer
	sourceProvider   *source.SourceProvider
	log              zerolog.Logger
	progressCallback ProgressUpdate
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}

type options struct {
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	clipboard source.Clipboard
	logger    *zerolog.Logger
}

// Option customizes an App.
type Option func(*options)

// WithOutput redirects the run output.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(o *options) {
		o.stdout = stdout
		o.stderr = stderr
	}
}

// WithInput sets the stream read in --stdin mode.
func WithInput(r io.Reader) Option {
	return func(o *options) { o.stdin = r }
}

// WithClipboard replaces the system clipboard.
func WithClipboard(cb source.Clipboard) Option {
	return func(o *options) { o.clipboard = cb }
}

// WithLogger replaces the logger built from cfg.Verbose.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// New creates a new App instance.
func New(cfg *cli.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	o := options{
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		clipboard: source.SystemClipboard,
	}
	for _, opt := range opts {
		opt(&o)
	}

	log := logging.New(o.stderr, cfg.Verbose)
	if o.logger != nil {
		log = *o.logger
	}

	extensions := append([]string{}, cfg.Extensions...)
	if len(extensions) == 0 {
		extensions = []string{cli.DefaultExtension}
	}
	if cfg.Markdown && !contains(extensions, patcher.MarkdownExt) {
		extensions = append(extensions, patcher.MarkdownExt)
	}

	return &App{
		cfg:    cfg,
		walker: fs.NewWalker(extensions, cfg.Exclude, log),
		patcher: patcher.New(patcher.Options{
			DryRun:   cfg.DryRun,
			Diff:     cfg.Diff,
			Markdown: cfg.Markdown,
		}, log),
		printer:        ui.New(o.stdout, o.stderr),
		sourceProvider: source.New(o.stdin, o.stdout, o.clipboard),
		log:            log,
	}, nil
}

// SetProgressCallback sets a function to be called for progress updates.
func (a *App) SetProgressCallback(cb ProgressUpdate) {
	a.progressCallback = cb
}

// Quiet silences the line output; results are only returned.
func (a *App) Quiet() {
	a.printer.Out = io.Discard
	a.printer.Err = io.Discard
}

// Validate checks the invocation before anything is read or written.
func (a *App) Validate() error {
	if a.cfg.Stdin || a.cfg.Clipboard {
		return nil
	}
	return fs.ValidateRoot(a.cfg.Dir)
}

// Execute executes the main application logic based on parsed flags.
func (a *App) Execute() (summary model.Summary, err error) {
	// Centralized panic recovery.
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	switch {
	case a.cfg.Stdin:
		return a.filterStdin()
	case a.cfg.Clipboard:
		return a.filterClipboard()
	default:
		return a.processDirectory()
	}
}

// processDirectory walks the root, patches every candidate and prints a
// line per modified or failed file followed by the total.
func (a *App) processDirectory() (model.Summary, error) {
	root := a.cfg.Dir
	summary := model.Summary{Root: root, DryRun: a.cfg.DryRun}

	if err := fs.ValidateRoot(root); err != nil {
		return summary, err
	}

	a.printer.Processing(root)

	files, err := a.walker.Walk(root)
	if err != nil {
		return summary, err
	}

	total := len(files)
	if a.progressCallback != nil {
		a.progressCallback(0, total)
	}

	if a.cfg.Jobs > 1 && total > 1 {
		for _, r := range a.processConcurrently(files) {
			a.report(r)
			summary.Add(r)
		}
	} else {
		for i, path := range files {
			r := a.patcher.Process(path)
			a.report(r)
			summary.Add(r)
			if a.progressCallback != nil {
				a.progressCallback(i+1, total)
			}
		}
	}

	a.printer.Total(len(summary.Modified), a.cfg.DryRun)

	if a.cfg.Nvim != "" && !a.cfg.DryRun && len(summary.Modified) > 0 {
		a.reloadEditor(summary.Modified)
	}

	a.log.Debug().
		Int("scanned", summary.Scanned).
		Int("modified", len(summary.Modified)).
		Int("failed", len(summary.Failed)).
		Int("replacements", summary.Replacements).
		Msg("run finished")
	return summary, nil
}

// processConcurrently patches files on a bounded pool. Results keep the
// walk order.
func (a *App) processConcurrently(files []string) []model.FileResult {
	total := len(files)
	var done atomic.Int64
	mapper := iter.Mapper[string, model.FileResult]{MaxGoroutines: a.cfg.Jobs}
	return mapper.Map(files, func(path *string) model.FileResult {
		r := a.patcher.Process(*path)
		n := done.Add(1)
		if a.progressCallback != nil {
			a.progressCallback(int(n), total)
		}
		return r
	})
}

func (a *App) report(r model.FileResult) {
	switch r.State {
	case model.Modified:
		a.printer.Updated(r.Path)
		if r.Diff != "" {
			a.printer.Diff(r.Diff)
		}
	case model.Failed:
		a.printer.FileError(r.Path, r.Err)
	}
}

func (a *App) reloadEditor(paths []string) {
	manager, err := nvim.New(nvim.ResolveAddress(a.cfg.Nvim))
	if err != nil {
		a.printer.Warning("Could not reload Neovim buffers: %v", err)
		return
	}
	defer manager.Close()

	reloaded, failed := manager.ReloadBuffers(paths)
	a.log.Debug().Int("reloaded", len(reloaded)).Int("failed", len(failed)).Msg("neovim buffers")
	if len(failed) > 0 {
		a.printer.Warning("Could not reload %d Neovim buffer(s).", len(failed))
	}
}

// filterStdin migrates stdin to stdout.
func (a *App) filterStdin() (model.Summary, error) {
	content, err := a.sourceProvider.ReadStdin()
	if err != nil {
		return model.Summary{}, err
	}
	out, n := rewrite.RewriteString(content)
	if err := a.sourceProvider.WriteStdout(out); err != nil {
		return model.Summary{}, err
	}
	a.log.Debug().Int("replacements", n).Msg("stdin migrated")
	return model.Summary{Replacements: n, Message: fmt.Sprintf("Replaced %d call(s).", n)}, nil
}

// filterClipboard migrates the clipboard in place.
func (a *App) filterClipboard() (model.Summary, error) {
	content, err := a.sourceProvider.ReadClipboard()
	if err != nil {
		return model.Summary{}, err
	}
	out, n := rewrite.RewriteString(content)
	if n == 0 {
		return model.Summary{Message: "Clipboard has nothing to migrate."}, nil
	}
	if !a.cfg.DryRun {
		if err := a.sourceProvider.WriteClipboard(out); err != nil {
			return model.Summary{}, err
		}
	}
	return model.Summary{
		Replacements: n,
		DryRun:       a.cfg.DryRun,
		Message:      fmt.Sprintf("Clipboard updated: replaced %d call(s).", n),
	}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
