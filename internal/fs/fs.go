package fs

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sys/unix"
)

var (
	// ErrNotADirectory is returned when the walk root is missing or is not a directory.
	ErrNotADirectory = errors.New("not a valid directory")
	// ErrInvalidEncoding is returned for files that are not UTF-8 text.
	ErrInvalidEncoding = errors.New("invalid UTF-8 content")
)

// Walker finds candidate files below a root directory.
type Walker struct {
	extensions []string
	exclude    *ignore.GitIgnore
	log        zerolog.Logger
}

// NewWalker creates a Walker matching names that end with one of
// extensions. exclude holds gitignore-style patterns relative to the root.
func NewWalker(extensions, exclude []string, log zerolog.Logger) *Walker {
	w := &Walker{
		extensions: extensions,
		log:        log,
	}
	if len(exclude) > 0 {
		w.exclude = ignore.CompileIgnoreLines(exclude...)
	}
	return w
}

// ValidateRoot checks that root exists and is a directory.
func ValidateRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s: %w", root, ErrNotADirectory)
	}
	return nil
}

// Match reports whether name ends with one of the walker's extensions.
func (w *Walker) Match(name string) bool {
	for _, ext := range w.extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Walk returns every candidate file below root, depth first, in lexical
// order within each directory. Hidden directories are included. Symbolic
// links to directories are not followed and unreadable directories,
// root included, are skipped. Returned paths keep root as given, so
// "./lib" yields "./lib/a.dart".
func (w *Walker) Walk(root string) ([]string, error) {
	if err := ValidateRoot(root); err != nil {
		return nil, err
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			w.log.Debug().Err(err).Str("path", path).Msg("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path != root && w.excluded(root, path, d.IsDir()) {
			w.log.Debug().Str("path", path).Msg("excluded")
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !w.Match(d.Name()) {
			return nil
		}

		if d.Type()&iofs.ModeSymlink != 0 {
			// A dangling link stays a candidate and fails on read.
			if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
				return nil
			}
		}

		files = append(files, displayPath(root, path))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	w.log.Debug().Str("root", root).Int("candidates", len(files)).Msg("walk finished")
	return files, nil
}

// displayPath joins root and the part of path below it without cleaning
// root. A root that already ends in a separator gets none added.
func displayPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return path
	}
	if strings.HasSuffix(root, string(os.PathSeparator)) {
		return root + rel
	}
	return root + string(os.PathSeparator) + rel
}

func (w *Walker) excluded(root, path string, isDir bool) bool {
	if w.exclude == nil {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if w.exclude.MatchesPath(rel) {
		return true
	}
	return isDir && w.exclude.MatchesPath(rel+"/")
}

// ReadText reads the whole file and rejects content that is not UTF-8.
func ReadText(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if off := invalidUTF8Offset(content); off >= 0 {
		return nil, fmt.Errorf("%w at byte %d", ErrInvalidEncoding, off)
	}
	return content, nil
}

func invalidUTF8Offset(b []byte) int {
	if utf8.Valid(b) {
		return -1
	}
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

// writable reports whether the caller may write path.
var writable = func(path string) error {
	return unix.Access(path, unix.W_OK)
}

// WriteFile replaces the content of the file at path. A file the caller
// may not write is an error and stays untouched. When its directory is
// writable the data goes through a temporary file and a rename, keeping
// the permission bits; otherwise the file is truncated and rewritten in
// place. Symbolic links are resolved so the link target is rewritten,
// not the link.
func WriteFile(path string, data []byte) error {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return err
	}
	if err := writable(target); err != nil {
		return &os.PathError{Op: "open", Path: path, Err: err}
	}

	dir := filepath.Dir(target)
	if err := writable(dir); err != nil {
		return writeInPlace(target, data)
	}
	return renameio.WriteFile(target, data, 0o644,
		renameio.WithTempDir(dir),
		renameio.WithExistingPermissions(),
	)
}

func writeInPlace(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
