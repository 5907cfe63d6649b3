package tree

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/codegraph/pkg/errors"
	"github.com/matzehuels/codegraph/pkg/random"
)

const (
	// MaxSelectionFolders caps the folders synthesized from a selection.
	MaxSelectionFolders = 12

	// MaxSelectionFiles caps how many handles SelectionFromDir collects.
	MaxSelectionFiles = 10000
)

// FileHandle describes one selected file. Only its name, path and size are
// known; the contents are never opened.
type FileHandle struct {
	Name string `json:"name"`
	Path string `json:"path,omitempty"` // slash-separated, relative to the selection root
	Size int64  `json:"size,omitempty"`
}

// Selection is the set of file handles a user picked.
type Selection struct {
	Files []FileHandle `json:"files"`
}

// Empty reports whether nothing was selected.
func (s Selection) Empty() bool { return len(s.Files) == 0 }

// TopLevelFolders returns the sorted distinct first path segments of the
// selected files that live inside a folder.
func (s Selection) TopLevelFolders() []string {
	seen := make(map[string]bool)
	for _, f := range s.Files {
		p := strings.TrimPrefix(filepath.ToSlash(f.Path), "/")
		first, _, found := strings.Cut(p, "/")
		if found && first != "" {
			seen[first] = true
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// FromSelection synthesizes a tree shaped by sel: one top-level folder per
// distinct selected folder (at least one, at most MaxSelectionFolders), named
// after those folders. File contents are never read; the files inside each
// folder are synthesized exactly as [Synthesize] does.
//
// An empty selection returns an ErrCodeNoSelection error, which callers treat
// as a no-op.
func FromSelection(rng random.Source, sel Selection, opts Options) (*Node, error) {
	if sel.Empty() {
		return nil, errors.New(errors.ErrCodeNoSelection, "no files selected")
	}
	names := sel.TopLevelFolders()
	opts.Folders = min(max(len(names), 1), MaxSelectionFolders)
	opts.FolderNames = names
	return Synthesize(rng, opts), nil
}

// SelectionFromDir lists regular files below dir the way a browser folder
// picker would hand them over: names, relative paths and sizes only.
// Hidden directories are skipped. At most MaxSelectionFiles handles are
// returned.
func SelectionFromDir(dir string) (Selection, error) {
	var sel Selection
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		sel.Files = append(sel.Files, FileHandle{
			Name: d.Name(),
			Path: filepath.ToSlash(rel),
			Size: info.Size(),
		})
		if len(sel.Files) >= MaxSelectionFiles {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return Selection{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "list %s", dir)
	}
	return sel, nil
}
