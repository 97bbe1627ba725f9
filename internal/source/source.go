package source

import (
	"fmt"
	"io"

	"github.com/atotto/clipboard"
)

// Clipboard abstracts the system clipboard.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// SystemClipboard is the clipboard of the running desktop session.
var SystemClipboard Clipboard = systemClipboard{}

// SourceProvider reads content from a stream or the clipboard and writes
// the migrated result back to the same kind of place.
type SourceProvider struct {
	in        io.Reader
	out       io.Writer
	clipboard Clipboard
}

// New creates a SourceProvider. cb may be nil when clipboard mode is not used.
func New(in io.Reader, out io.Writer, cb Clipboard) *SourceProvider {
	return &SourceProvider{in: in, out: out, clipboard: cb}
}

// ReadStdin reads all of the input stream.
func (sp *SourceProvider) ReadStdin() (string, error) {
	content, err := io.ReadAll(sp.in)
	if err != nil {
		return "", fmt.Errorf("failed to read from stdin: %w", err)
	}
	return string(content), nil
}

// WriteStdout writes content to the output stream.
func (sp *SourceProvider) WriteStdout(content string) error {
	if _, err := io.WriteString(sp.out, content); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}

// ReadClipboard returns the clipboard text.
func (sp *SourceProvider) ReadClipboard() (string, error) {
	if sp.clipboard == nil {
		return "", fmt.Errorf("clipboard is not available")
	}
	content, err := sp.clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read from clipboard: %w", err)
	}
	return content, nil
}

// WriteClipboard replaces the clipboard text.
func (sp *SourceProvider) WriteClipboard(content string) error {
	if sp.clipboard == nil {
		return fmt.Errorf("clipboard is not available")
	}
	if err := sp.clipboard.WriteAll(content); err != nil {
		return fmt.Errorf("failed to write to clipboard: %w", err)
	}
	return nil
}
