package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	AddedColor   = color.New(color.FgGreen)
	RemovedColor = color.New(color.FgRed)
	HunkColor    = color.New(color.FgCyan)
)

// Printer writes the human-facing run output. Regular lines go to Out,
// per-file failures and warnings to Err.
type Printer struct {
	Out     io.Writer
	Err     io.Writer
	NoColor bool
}

// New creates a Printer. Colors follow fatih/color's terminal detection
// and are off when out is not a file.
func New(out, errOut io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	_, isFile := out.(*os.File)
	return &Printer{Out: out, Err: errOut, NoColor: color.NoColor || !isFile}
}

func (p *Printer) paint(w io.Writer, c *color.Color, format string, a ...interface{}) {
	if p.NoColor || c == nil {
		fmt.Fprintf(w, format, a...)
		return
	}
	c.Fprintf(w, format, a...)
}

// Processing announces the directory being migrated.
func (p *Printer) Processing(dir string) {
	p.paint(p.Out, HeaderColor, "Processing directory: %s\n", dir)
}

// Updated reports a file that was rewritten.
func (p *Printer) Updated(path string) {
	p.paint(p.Out, SuccessColor, "Updated: %s\n", path)
}

// FileError reports a file that could not be processed.
func (p *Printer) FileError(path string, err error) {
	p.paint(p.Err, ErrorColor, "Error processing %s: %v\n", path, err)
}

// Total prints the closing summary line, preceded by a blank line.
func (p *Printer) Total(modified int, dryRun bool) {
	suffix := ""
	if dryRun {
		suffix = " (dry run)"
	}
	p.paint(p.Out, HeaderColor, "\nTotal files modified: %d%s\n", modified, suffix)
}

// InvalidDirectory reports an argument that is not a directory.
func (p *Printer) InvalidDirectory(dir string) {
	p.paint(p.Out, ErrorColor, "Error: %s is not a valid directory\n", dir)
}

// Warning prints a non-fatal problem to Err.
func (p *Printer) Warning(format string, a ...interface{}) {
	p.paint(p.Err, WarningColor, format+"\n", a...)
}

// Error prints a fatal problem to Err.
func (p *Printer) Error(format string, a ...interface{}) {
	p.paint(p.Err, ErrorColor, format+"\n", a...)
}

// Diff prints a unified diff, coloring added, removed and hunk lines.
func (p *Printer) Diff(diff string) {
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		var c *color.Color
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			c = HeaderColor
		case strings.HasPrefix(line, "@@"):
			c = HunkColor
		case strings.HasPrefix(line, "+"):
			c = AddedColor
		case strings.HasPrefix(line, "-"):
			c = RemovedColor
		}
		p.paint(p.Out, c, "%s", line)
	}
}
