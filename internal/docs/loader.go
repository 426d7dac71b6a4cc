// Package docs provides helpers over the climate document corpus the
// agent network reads: loading plain-text documents and breaking large
// file listings into bounded groups.
package docs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoFilePath is returned when no document path was provided.
var ErrNoFilePath = errors.New("no file path provided")

// LoadText reads one plain-text document under the corpus root and
// returns its content. Paths escaping the corpus root are rejected.
func LoadText(root, name string) (string, error) {
	if name == "" {
		return "", ErrNoFilePath
	}

	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("document path %q escapes corpus directory", name)
	}

	data, err := os.ReadFile(filepath.Join(root, clean))
	if err != nil {
		return "", fmt.Errorf("reading txt %s: %w", name, err)
	}
	return string(data), nil
}

// Index lists every .txt document under the corpus root, as sorted
// paths relative to root.
func Index(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".txt") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("indexing documents in %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}
