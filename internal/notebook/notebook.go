// Package notebook maps page names onto the files of a notebook
// directory. Pages are UTF-8 text files with a .txt suffix; the colon
// separated page name mirrors the directory layout, so "Foo:Bar" lives
// at Foo/Bar.txt under the root.
package notebook

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ggfazio/zim-desktop-wiki/core/errors"
)

const pageSuffix = ".txt"

// Notebook is an opened notebook directory.
type Notebook struct {
	Root string
}

// Open verifies that root is a directory and returns the notebook.
func Open(root string) (*Notebook, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.NewIO("open notebook", root, err)
	}
	if !info.IsDir() {
		return nil, errors.NewIO("open notebook", root, fmt.Errorf("not a directory"))
	}
	return &Notebook{Root: root}, nil
}

// PagePath returns the file path for a page name. Names with empty,
// dot or path-separator segments are rejected so a crafted name cannot
// escape the root.
func (nb *Notebook) PagePath(name string) (string, error) {
	parts := strings.Split(name, ":")
	for _, part := range parts {
		switch {
		case part == "" || part == "." || part == "..":
			return "", errors.NewParse("page name", name, "empty or dot segment")
		case strings.ContainsAny(part, `/\`):
			return "", errors.NewParse("page name", name, "separator in segment")
		}
	}
	return filepath.Join(append([]string{nb.Root}, parts...)...) + pageSuffix, nil
}

// PageName converts a path relative to the root back into a page name.
// ok is false for paths that do not name a page file.
func PageName(rel string) (string, bool) {
	rel = filepath.ToSlash(rel)
	if !strings.HasSuffix(rel, pageSuffix) {
		return "", false
	}
	rel = strings.TrimSuffix(rel, pageSuffix)
	for _, part := range strings.Split(rel, "/") {
		if part == "" || strings.HasPrefix(part, ".") {
			return "", false
		}
	}
	return strings.ReplaceAll(rel, "/", ":"), true
}

// Read returns the source text and modification time of a page.
func (nb *Notebook) Read(name string) (string, time.Time, error) {
	path, err := nb.PagePath(name)
	if err != nil {
		return "", time.Time{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", time.Time{}, errors.NewNotFound("page", name)
		}
		return "", time.Time{}, errors.NewIO("read page", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", time.Time{}, errors.NewIO("read page", path, err)
	}
	return string(data), info.ModTime(), nil
}

// List returns the names of all pages in the notebook, sorted.
// Dot-directories are skipped.
func (nb *Notebook) List() ([]string, error) {
	mtimes, err := nb.MTimes()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(mtimes))
	for name := range mtimes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// MTimes returns the modification time of every page in the notebook,
// keyed by page name.
func (nb *Notebook) MTimes() (map[string]time.Time, error) {
	mtimes := make(map[string]time.Time)
	err := filepath.WalkDir(nb.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != nb.Root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(nb.Root, path)
		if err != nil {
			return err
		}
		name, ok := PageName(rel)
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		mtimes[name] = info.ModTime()
		return nil
	})
	if err != nil {
		return nil, errors.NewIO("scan notebook", nb.Root, err)
	}
	return mtimes, nil
}
