package dartfix_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/dartfix/dartfix"
	"github.com/sokinpui/dartfix/internal/fs"
)

func TestMigrate(t *testing.T) {
	dir := t.TempDir()
	widget := filepath.Join(dir, "lib", "widget.dart")
	require.NoError(t, os.MkdirAll(filepath.Dir(widget), 0o755))
	require.NoError(t, os.WriteFile(widget, []byte("Colors.red.withOpacity(0.5)"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain.dart"), []byte("void main() {}"), 0o644))

	result, err := dartfix.Migrate(dir, dartfix.Config{})
	require.NoError(t, err)

	assert.Equal(t, []string{widget}, result["Modified"])
	assert.Empty(t, result["Failed"])

	content, err := os.ReadFile(widget)
	require.NoError(t, err)
	assert.Equal(t, "Colors.red.withValues(alpha: 0.5)", string(content))
}

func TestMigrateNotADirectory(t *testing.T) {
	_, err := dartfix.Migrate(filepath.Join(t.TempDir(), "missing"), dartfix.Config{})
	assert.True(t, errors.Is(err, fs.ErrNotADirectory))
}

func TestMigrateString(t *testing.T) {
	out, n := dartfix.MigrateString("a.withOpacity(1); b.withOpacity(.5)")
	assert.Equal(t, "a.withValues(alpha: 1); b.withOpacity(.5)", out)
	assert.Equal(t, 1, n)
}
