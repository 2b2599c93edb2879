// Package assetdb resolves legacy object references against an extracted UDK content tree.
package assetdb

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"udk-migrate/internal/asset"
	"udk-migrate/internal/legacy/t3d"
	"udk-migrate/internal/legacy/texture"
	"udk-migrate/internal/legacy/umesh"
)

// Locator resolves a reference string to a loaded asset.
// Failures are *asset.Error with code Malformed, NotFound or IOError.
type Locator interface {
	Resolve(ref string) (*asset.Loaded, error)
}

// Database is a read-only Locator over a content directory.
type Database struct {
	root string

	mu    sync.RWMutex
	index *Index
}

// Open indexes the content tree at root.
func Open(root string) (*Database, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("assetdb: open %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("assetdb: %s is not a directory", root)
	}
	db := &Database{root: root}
	if err := db.Refresh(); err != nil {
		return nil, err
	}
	return db, nil
}

// Refresh rebuilds the index from disk.
func (db *Database) Refresh() error {
	idx, err := BuildIndex(db.root)
	if err != nil {
		return fmt.Errorf("assetdb: index %s: %w", db.root, err)
	}
	db.mu.Lock()
	db.index = idx
	db.mu.Unlock()
	return nil
}

// Root returns the content directory.
func (db *Database) Root() string { return db.root }

// Len returns the number of indexed objects.
func (db *Database) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.index.Len()
}

// Keys lists indexed references (lower-cased).
func (db *Database) Keys() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.index.Keys()
}

// Resolve validates ref, finds the object file and decodes it.
func (db *Database) Resolve(s string) (*asset.Loaded, error) {
	ref, err := asset.ParseReference(s)
	if err != nil {
		return nil, err
	}

	db.mu.RLock()
	path, ok := db.index.ResolvePath(ref.Key())
	db.mu.RUnlock()
	if !ok {
		return nil, asset.Errorf(asset.NotFound, ref.String(), "no object in %s", db.root)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, asset.Wrap(asset.NotFound, ref.String(), path, err)
		}
		return nil, asset.Wrap(asset.IOError, ref.String(), path, err)
	}

	loaded, err := load(ref, path)
	if err != nil {
		return nil, err
	}
	loaded.Size = info.Size()
	return loaded, nil
}

func load(ref asset.Reference, path string) (*asset.Loaded, error) {
	a := &asset.Loaded{Ref: ref, Source: path}

	switch ext := strings.ToLower(filepath.Ext(path)); {
	case ext == ".umesh":
		m, err := umesh.Parse(path)
		if err != nil {
			return nil, asset.Wrap(asset.StrategyFailure, ref.String(), path, err)
		}
		a.Kind = asset.StaticMesh
		a.Class = "StaticMesh"
		a.Payload = m
		a.Metrics = asset.Metrics{
			Vertices:  m.VertexCount(),
			Triangles: m.TriangleCount(),
			LODs:      len(m.LODs),
		}

	case ext == ".t3d":
		doc, err := t3d.Parse(path)
		if err != nil {
			return nil, asset.Wrap(asset.StrategyFailure, ref.String(), path, err)
		}
		root := doc.Root()
		if root == nil {
			return nil, asset.Errorf(asset.StrategyFailure, ref.String(), "empty T3D object")
		}
		a.Class = root.Class()
		a.Kind = KindOfClass(a.Class)
		a.Payload = root
		a.Metrics = asset.Metrics{Props: len(root.Props)}

	case texture.IsTexture(path):
		img, err := texture.Load(path)
		if err != nil {
			return nil, asset.Wrap(asset.StrategyFailure, ref.String(), path, err)
		}
		a.Kind = asset.Texture
		a.Class = "Texture2D"
		a.Payload = img
		a.Metrics = asset.Metrics{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}

	default:
		a.Kind = asset.Unknown
	}
	return a, nil
}

// KindOfClass maps a UDK class name to an asset kind.
func KindOfClass(class string) asset.Kind {
	c := strings.ToLower(class)
	switch {
	case c == "staticmesh":
		return asset.StaticMesh
	case c == "texture2d" || c == "texture":
		return asset.Texture
	case strings.HasPrefix(c, "material"):
		return asset.Material
	case strings.HasSuffix(c, "light") || strings.HasSuffix(c, "lightcomponent") ||
		strings.HasSuffix(c, "lighttoggleable") || strings.HasSuffix(c, "lightmovable"):
		return asset.Light
	case c == "brush" || c == "model" || c == "polys" || strings.HasSuffix(c, "volume"):
		return asset.Brush
	}
	return asset.Unknown
}
