package opener

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/signadot/yay/debug"
)

// FS opens documents from a filesystem. Relative names are looked up in
// each search directory in turn.
type FS struct {
	fs     afero.Fs
	search []string
}

func NewFS(fs afero.Fs, search ...string) *FS {
	if len(search) == 0 {
		search = []string{"."}
	}
	return &FS{fs: fs, search: search}
}

func (f *FS) candidates(name string) []string {
	if filepath.IsAbs(name) {
		return []string{filepath.Clean(name)}
	}
	res := make([]string, 0, len(f.search))
	for _, dir := range f.search {
		res = append(res, filepath.Join(dir, name))
	}
	return res
}

func (f *FS) Open(ctx context.Context, name string) (*Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, p := range f.candidates(name) {
		d, err := f.read(p)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &Resource{Name: p, Data: d}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// OpenPath reads the document at p without consulting the search path,
// as for the results of Glob.
func (f *FS) OpenPath(p string) (*Resource, error) {
	d, err := f.read(p)
	if err != nil {
		return nil, err
	}
	return &Resource{Name: p, Data: d}, nil
}

func (f *FS) read(p string) ([]byte, error) {
	d, err := afero.ReadFile(f.fs, p)
	if errors.Is(err, os.ErrNotExist) {
		if debug.Open() {
			debug.Logf("open %s: not found\n", p)
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return d, nil
}

// Glob returns the sorted paths matching pattern in every search
// directory. Patterns support ** for any number of directories.
func (f *FS) Glob(pattern string) ([]string, error) {
	var res []string
	for _, p := range f.candidates(filepath.ToSlash(pattern)) {
		ms, err := f.glob(filepath.ToSlash(p))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		res = append(res, ms...)
	}
	slices.Sort(res)
	return slices.Compact(res), nil
}

func (f *FS) glob(pattern string) ([]string, error) {
	if !path.IsAbs(pattern) {
		if !fs.ValidPath(pattern) {
			return nil, errors.New("pattern leaves the search directory")
		}
		return doublestar.Glob(afero.NewIOFS(f.fs), pattern, doublestar.WithFilesOnly())
	}
	base, rest := doublestar.SplitPattern(pattern)
	ms, err := doublestar.Glob(afero.NewIOFS(afero.NewBasePathFs(f.fs, base)), rest, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	for i, m := range ms {
		ms[i] = path.Join(base, m)
	}
	return ms, nil
}
