package assetdb

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// extension priority when one object name exists in several formats
var extRank = map[string]int{
	".umesh": 0,
	".t3d":   1,
	".tga":   2,
	".png":   3,
	".bmp":   4,
	".jpg":   5,
	".jpeg":  6,
}

// Index maps lower-cased dotted object paths to filesystem paths.
type Index struct {
	entries map[string]string // "pkg.group.name" → full path
}

// BuildIndex scans root recursively. A file Pkg/Group/Name.ext is indexed as
// "pkg.group.name". Unknown extensions are ignored.
func BuildIndex(root string) (*Index, error) {
	idx := &Index{entries: make(map[string]string)}

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		rank, known := extRank[ext]
		if !known {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = strings.TrimSuffix(rel, filepath.Ext(rel))
		key := strings.ToLower(strings.ReplaceAll(filepath.ToSlash(rel), "/", "."))

		existing, exists := idx.entries[key]
		if !exists || rank < extRank[strings.ToLower(filepath.Ext(existing))] {
			idx.entries[key] = path
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// ResolvePath returns the filesystem path for a reference key, or ("", false).
func (idx *Index) ResolvePath(key string) (string, bool) {
	path, ok := idx.entries[strings.ToLower(key)]
	return path, ok
}

// Len returns the number of indexed objects.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Keys returns all indexed keys sorted.
func (idx *Index) Keys() []string {
	keys := make([]string, 0, len(idx.entries))
	for k := range idx.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
