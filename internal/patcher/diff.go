package patcher

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const diffContext = 3

// UnifiedDiff renders the change from before to after as a unified diff
// with a/ and b/ prefixed headers.
func UnifiedDiff(path string, before, after []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(string(before)),
		B:        splitLines(string(after)),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  diffContext,
	})
}

// splitLines keeps line terminators and, unlike difflib.SplitLines, does
// not invent an empty last line for text ending in a newline.
func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if last := len(lines) - 1; lines[last] == "" {
		lines = lines[:last]
	} else {
		lines[last] += "\n"
	}
	return lines
}
