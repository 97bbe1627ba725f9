package patcher

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sokinpui/dartfix/internal/fs"
	"github.com/sokinpui/dartfix/internal/parser"
	"github.com/sokinpui/dartfix/internal/rewrite"
	"github.com/sokinpui/dartfix/model"
)

// MarkdownExt is the extension handled by the markdown fence rewriter.
const MarkdownExt = ".md"

// Options controls how files are patched.
type Options struct {
	// DryRun computes results without writing anything.
	DryRun bool
	// Diff attaches a unified diff to every modified result.
	Diff bool
	// Markdown rewrites only ```dart fences in .md files.
	Markdown bool
}

// Patcher reads, rewrites and writes back single files.
type Patcher struct {
	opts Options
	log  zerolog.Logger
}

// New creates a Patcher.
func New(opts Options, log zerolog.Logger) *Patcher {
	return &Patcher{opts: opts, log: log}
}

// Transform rewrites content that was read from path. Markdown files get
// the fence-only rewrite when enabled.
func (p *Patcher) Transform(path string, content []byte) ([]byte, int, error) {
	if p.opts.Markdown && strings.HasSuffix(path, MarkdownExt) {
		return parser.RewriteMarkdown(content)
	}
	out, n := rewrite.Rewrite(content)
	return out, n, nil
}

// Process runs one file through read, rewrite, compare and write. Errors
// never escape: they end up in a Failed result.
func (p *Patcher) Process(path string) model.FileResult {
	result := model.FileResult{Path: path}

	content, err := fs.ReadText(path)
	if err != nil {
		return p.fail(result, err)
	}

	updated, n, err := p.Transform(path, content)
	if err != nil {
		return p.fail(result, fmt.Errorf("failed to parse markdown: %w", err))
	}

	if bytes.Equal(content, updated) {
		p.log.Debug().Str("path", path).Msg("no match")
		result.State = model.Unmodified
		return result
	}

	if p.opts.Diff {
		diff, err := UnifiedDiff(path, content, updated)
		if err != nil {
			return p.fail(result, fmt.Errorf("failed to build diff: %w", err))
		}
		result.Diff = diff
	}

	if !p.opts.DryRun {
		if err := fs.WriteFile(path, updated); err != nil {
			return p.fail(result, err)
		}
	}

	p.log.Debug().Str("path", path).Int("replacements", n).Bool("dry_run", p.opts.DryRun).Msg("modified")
	result.State = model.Modified
	result.Replacements = n
	return result
}

func (p *Patcher) fail(result model.FileResult, err error) model.FileResult {
	p.log.Debug().Err(err).Str("path", result.Path).Msg("failed")
	result.State = model.Failed
	result.Err = err
	return result
}
