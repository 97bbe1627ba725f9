package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestPrinter() (*Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	p := New(&out, &errOut)
	p.NoColor = true
	return p, &out, &errOut
}

func TestRunLines(t *testing.T) {
	p, out, errOut := newTestPrinter()

	p.Processing("lib")
	p.Updated("lib/a.dart")
	p.FileError("lib/b.dart", errors.New("permission denied"))
	p.Total(1, false)

	assert.Equal(t, "Processing directory: lib\nUpdated: lib/a.dart\n\nTotal files modified: 1\n", out.String())
	assert.Equal(t, "Error processing lib/b.dart: permission denied\n", errOut.String())
}

func TestTotalDryRun(t *testing.T) {
	p, out, _ := newTestPrinter()
	p.Total(2, true)
	assert.Equal(t, "\nTotal files modified: 2 (dry run)\n", out.String())
}

func TestInvalidDirectory(t *testing.T) {
	p, out, _ := newTestPrinter()
	p.InvalidDirectory("nope")
	assert.Equal(t, "Error: nope is not a valid directory\n", out.String())
}

func TestDiffWithoutColor(t *testing.T) {
	p, out, _ := newTestPrinter()
	diff := "--- a/x\n+++ b/x\n@@ -1 +1 @@\n-old\n+new\n"
	p.Diff(diff)
	assert.Equal(t, diff, out.String())
}
