package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

// AssetStore reads the catalog straight from the Laws folder tree.
type AssetStore struct {
	fsys fs.FS
}

// NewAssetStore returns a store over fsys, which must be rooted at the Laws
// folder.
func NewAssetStore(fsys fs.FS) *AssetStore {
	return &AssetStore{fsys: fsys}
}

// FS exposes the underlying tree so callers can open law files by Path.
func (s *AssetStore) FS() fs.FS {
	return s.fsys
}

func (s *AssetStore) Categories(ctx context.Context) ([]Category, error) {
	entries, err := s.readDir(".")
	if err != nil {
		return nil, err
	}

	var out []Category
	for _, e := range entries {
		if !e.IsDir() || strings.Contains(e.Name(), ".") {
			continue
		}
		out = append(out, Category{
			ID:     e.Name(),
			Name:   e.Name(),
			Folder: e.Name(),
			Order:  len(out),
		})
	}
	return out, nil
}

func (s *AssetStore) SubCategories(ctx context.Context, parentID string) ([]Category, error) {
	entries, err := s.readDir(parentID)
	if err != nil {
		return nil, err
	}

	var out []Category
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		folder := path.Join(parentID, e.Name())
		children, err := fs.ReadDir(s.fsys, folder)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", folder, err)
		}
		if len(children) == 0 || s.hasDeepFolders(folder, children) {
			continue
		}
		out = append(out, Category{
			ID:          folder,
			Name:        e.Name(),
			Folder:      folder,
			IsSubFolder: true,
			Group:       parentID,
			Order:       len(out),
		})
	}
	return out, nil
}

// hasDeepFolders reports whether any child of folder holds a non-empty
// folder of its own, which would make folder deeper than two levels.
func (s *AssetStore) hasDeepFolders(folder string, children []fs.DirEntry) bool {
	for _, c := range children {
		if !c.IsDir() {
			continue
		}
		grand, err := fs.ReadDir(s.fsys, path.Join(folder, c.Name()))
		if err != nil {
			continue
		}
		for _, g := range grand {
			if !g.IsDir() {
				continue
			}
			deep, err := fs.ReadDir(s.fsys, path.Join(folder, c.Name(), g.Name()))
			if err == nil && len(deep) > 0 {
				return true
			}
		}
	}
	return false
}

func (s *AssetStore) Laws(ctx context.Context, categoryID string) ([]Law, error) {
	entries, err := s.readDir(categoryID)
	if err != nil {
		return nil, err
	}

	var out []Law
	for _, e := range entries {
		if e.IsDir() || !IsLawFile(e.Name()) {
			continue
		}
		out = append(out, newLaw(categoryID, categoryID, e.Name(), len(out)))
	}
	return out, nil
}

func (s *AssetStore) AllLaws(ctx context.Context, parentID string) ([]Law, error) {
	direct, err := s.Laws(ctx, parentID)
	if err != nil {
		return nil, err
	}
	for i := range direct {
		direct[i].Order = 0
	}

	subs, err := s.SubCategories(ctx, parentID)
	if err != nil {
		return nil, err
	}

	out := direct
	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		laws, err := s.Laws(ctx, sub.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, laws...)
	}

	slices.SortStableFunc(out, func(a, b Law) int { return a.Order - b.Order })
	return out, nil
}

// readDir lists dir in catalog order.
func (s *AssetStore) readDir(dir string) ([]fs.DirEntry, error) {
	if dir != "." && !fs.ValidPath(dir) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
	}
	entries, err := fs.ReadDir(s.fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return compareNumberPrefix(a.Name(), b.Name())
	})
	return entries, nil
}
