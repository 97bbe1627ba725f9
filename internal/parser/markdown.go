package parser

import (
	"bytes"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/sokinpui/dartfix/internal/rewrite"
)

// DartLang is the fence info string whose blocks are migrated.
const DartLang = "dart"

// CodeBlock represents a fenced code block found in markdown content.
type CodeBlock struct {
	// Lang is the language identifier of the code block (e.g., "dart").
	Lang string
	// Content is the raw text inside the code block.
	Content string
	// Segments are the byte ranges of the block's lines in the source.
	Segments []text.Segment
}

// ExtractCodeBlocks uses a markdown AST to find all fenced code blocks.
func ExtractCodeBlocks(source []byte) ([]CodeBlock, error) {
	var blocks []CodeBlock
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		fenced, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		block := CodeBlock{Lang: string(fenced.Language(source))}

		var content bytes.Buffer
		lines := fenced.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			content.Write(line.Value(source))
			block.Segments = append(block.Segments, line)
		}
		block.Content = content.String()

		blocks = append(blocks, block)
		return ast.WalkSkipChildren, nil
	}

	if err := ast.Walk(root, walker); err != nil {
		return nil, err
	}

	return blocks, nil
}

// RewriteMarkdown migrates the contents of ```dart fences in source and
// leaves every other byte untouched. It returns the new text and the
// number of replacements.
func RewriteMarkdown(source []byte) ([]byte, int, error) {
	blocks, err := ExtractCodeBlocks(source)
	if err != nil {
		return nil, 0, err
	}

	var segments []text.Segment
	for _, b := range blocks {
		if strings.EqualFold(b.Lang, DartLang) {
			segments = append(segments, b.Segments...)
		}
	}
	if len(segments) == 0 {
		return source, 0, nil
	}
	sort.Slice(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})

	// The pattern never spans a newline, so rewriting line by line is the
	// same as rewriting the whole block.
	var out bytes.Buffer
	out.Grow(len(source))
	total, last := 0, 0
	for _, seg := range segments {
		if seg.Start < last {
			continue
		}
		out.Write(source[last:seg.Start])
		rewritten, n := rewrite.Rewrite(source[seg.Start:seg.Stop])
		out.Write(rewritten)
		total += n
		last = seg.Stop
	}
	out.Write(source[last:])

	if total == 0 {
		return source, 0, nil
	}
	return out.Bytes(), total, nil
}
