package dartfix_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/dartfix/cli"
	"github.com/sokinpui/dartfix/dartfix"
	"github.com/sokinpui/dartfix/internal/fs"
	"github.com/sokinpui/dartfix/model"
)

// project lays out a small Flutter-like tree and returns its root.
func project(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"lib/main.dart":          "final a = Colors.red.withOpacity(0.5);\nfinal b = x.withOpacity(1);\n",
		"lib/plain.dart":         "void main() {}\n",
		"lib/ui/theme.dart":      "shadow: Colors.black.withOpacity(0.25),\n",
		"readme.txt":             "Colors.red.withOpacity(0.2)\n",
		".hidden/generated.dart": "c.withOpacity(0.)\n",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func run(t *testing.T, cfg *cli.Config, opts ...dartfix.Option) (model.Summary, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	opts = append([]dartfix.Option{dartfix.WithOutput(&stdout, &stderr)}, opts...)
	app, err := dartfix.New(cfg, opts...)
	require.NoError(t, err)
	summary, err := app.Execute()
	require.NoError(t, err)
	return summary, stdout.String(), stderr.String()
}

func dirConfig(root string) *cli.Config {
	return &cli.Config{Dir: root, Extensions: []string{".dart"}, Jobs: 1}
}

func read(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestExecuteRewritesDirectory(t *testing.T) {
	root := project(t)

	summary, stdout, stderr := run(t, dirConfig(root))

	want := "Processing directory: " + root + "\n" +
		"Updated: " + filepath.Join(root, ".hidden/generated.dart") + "\n" +
		"Updated: " + filepath.Join(root, "lib/main.dart") + "\n" +
		"Updated: " + filepath.Join(root, "lib/ui/theme.dart") + "\n" +
		"\nTotal files modified: 3\n"
	assert.Equal(t, want, stdout)
	assert.Empty(t, stderr)

	assert.Equal(t, 4, summary.Scanned)
	assert.Equal(t, 4, summary.Replacements)
	assert.Len(t, summary.Modified, 3)

	assert.Equal(t, "final a = Colors.red.withValues(alpha: 0.5);\nfinal b = x.withValues(alpha: 1);\n", read(t, filepath.Join(root, "lib/main.dart")))
	assert.Equal(t, "c.withValues(alpha: 0.)\n", read(t, filepath.Join(root, ".hidden/generated.dart")))
	assert.Equal(t, "void main() {}\n", read(t, filepath.Join(root, "lib/plain.dart")))
	assert.Equal(t, "Colors.red.withOpacity(0.2)\n", read(t, filepath.Join(root, "readme.txt")))
}

func TestExecuteIsIdempotent(t *testing.T) {
	root := project(t)
	run(t, dirConfig(root))

	summary, stdout, _ := run(t, dirConfig(root))
	assert.Empty(t, summary.Modified)
	assert.True(t, strings.HasSuffix(stdout, "\nTotal files modified: 0\n"))
}

func TestExecuteContinuesAfterFailure(t *testing.T) {
	root := project(t)
	bad := filepath.Join(root, "lib/binary.dart")
	require.NoError(t, os.WriteFile(bad, []byte{0xff, 'x', '.', 'w'}, 0o644))

	summary, stdout, stderr := run(t, dirConfig(root))

	assert.Equal(t, []string{bad}, summary.Failed)
	assert.Len(t, summary.Modified, 3)
	assert.True(t, strings.HasPrefix(stderr, "Error processing "+bad+": invalid UTF-8 content"))
	assert.Equal(t, 1, strings.Count(stderr, "\n"))
	assert.Contains(t, stdout, "Total files modified: 3")
}

func TestExecuteDryRun(t *testing.T) {
	root := project(t)
	cfg := dirConfig(root)
	cfg.DryRun = true
	cfg.Diff = true

	summary, stdout, _ := run(t, cfg)

	assert.Len(t, summary.Modified, 3)
	assert.True(t, summary.DryRun)
	assert.Contains(t, stdout, "-final b = x.withOpacity(1);\n")
	assert.Contains(t, stdout, "+final b = x.withValues(alpha: 1);\n")
	assert.Contains(t, stdout, "Total files modified: 3 (dry run)")
	assert.Equal(t, "shadow: Colors.black.withOpacity(0.25),\n", read(t, filepath.Join(root, "lib/ui/theme.dart")))
}

func TestExecuteJobsKeepsOrder(t *testing.T) {
	sequential := project(t)
	_, seqOut, _ := run(t, dirConfig(sequential))

	parallel := project(t)
	cfg := dirConfig(parallel)
	cfg.Jobs = 4

	var calls atomic.Int32
	var stdout bytes.Buffer
	app, err := dartfix.New(cfg, dartfix.WithOutput(&stdout, &bytes.Buffer{}))
	require.NoError(t, err)
	app.SetProgressCallback(func(current, total int) {
		calls.Add(1)
		assert.Equal(t, 4, total)
	})
	_, err = app.Execute()
	require.NoError(t, err)
	assert.Equal(t, int32(5), calls.Load())

	// Same lines, modulo the root.
	assert.Equal(t, seqOut, strings.ReplaceAll(stdout.String(), parallel, sequential))
}

func TestExecuteExcludeAndExtensions(t *testing.T) {
	root := project(t)
	cfg := dirConfig(root)
	cfg.Exclude = []string{".hidden/", "ui"}
	cfg.Extensions = []string{".dart", ".txt"}

	summary, _, _ := run(t, cfg)

	assert.Equal(t, []string{
		filepath.Join(root, "lib/main.dart"),
		filepath.Join(root, "readme.txt"),
	}, summary.Modified)
}

func TestExecuteMarkdown(t *testing.T) {
	root := t.TempDir()
	doc := "a.withOpacity(0.1)\n\n```dart\nb.withOpacity(0.2)\n```\n"
	path := filepath.Join(root, "README.md")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg := dirConfig(root)
	cfg.Markdown = true
	summary, _, _ := run(t, cfg)

	assert.Equal(t, []string{path}, summary.Modified)
	assert.Equal(t, "a.withOpacity(0.1)\n\n```dart\nb.withValues(alpha: 0.2)\n```\n", read(t, path))
}

func TestValidate(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	app, err := dartfix.New(dirConfig(missing), dartfix.WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))
	require.NoError(t, err)

	assert.True(t, errors.Is(app.Validate(), fs.ErrNotADirectory))

	_, err = app.Execute()
	assert.True(t, errors.Is(err, fs.ErrNotADirectory))
	_, statErr := os.Stat(missing)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExecuteStdin(t *testing.T) {
	cfg := &cli.Config{Stdin: true, Jobs: 1}
	var stdout bytes.Buffer
	app, err := dartfix.New(cfg,
		dartfix.WithOutput(&stdout, &bytes.Buffer{}),
		dartfix.WithInput(strings.NewReader("x.withOpacity(0.3)\ny.withOpacity(1)\n")),
	)
	require.NoError(t, err)
	require.NoError(t, app.Validate())

	summary, err := app.Execute()
	require.NoError(t, err)
	assert.Equal(t, "x.withValues(alpha: 0.3)\ny.withValues(alpha: 1)\n", stdout.String())
	assert.Equal(t, 2, summary.Replacements)
}

type memClipboard struct{ text string }

func (m *memClipboard) ReadAll() (string, error) { return m.text, nil }

func (m *memClipboard) WriteAll(text string) error {
	m.text = text
	return nil
}

func TestExecuteClipboard(t *testing.T) {
	cb := &memClipboard{text: "Colors.red.withOpacity(0.5)"}
	summary, _, _ := run(t, &cli.Config{Clipboard: true, Jobs: 1}, dartfix.WithClipboard(cb))

	assert.Equal(t, "Colors.red.withValues(alpha: 0.5)", cb.text)
	assert.Equal(t, 1, summary.Replacements)
	assert.Contains(t, summary.Message, "Clipboard updated")

	summary, _, _ = run(t, &cli.Config{Clipboard: true, Jobs: 1}, dartfix.WithClipboard(cb))
	assert.Zero(t, summary.Replacements)
	assert.Equal(t, "Clipboard has nothing to migrate.", summary.Message)
}
