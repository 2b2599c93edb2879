package scene

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"udk-migrate/internal/asset"
	"udk-migrate/internal/batch"
)

// ManifestVersion is the schema version written into manifests.
const ManifestVersion = 1

// ManifestName is the canonical file name inside the output directory.
const ManifestName = "manifest.json"

// ActorRecord is the manifest form of one entity.
type ActorRecord struct {
	Name       string            `json:"name"`
	Kind       string            `json:"kind"`
	Transform  Transform         `json:"transform"`
	MeshRefs   []string          `json:"meshRefs"`
	Properties map[string]string `json:"properties"`
}

// MeshExportRecord describes one unique referenced mesh. Path is relative to
// the output directory. Size and SHA256 are filled once the mesh is exported.
type MeshExportRecord struct {
	Ref    string `json:"ref"`
	Path   string `json:"path"`
	Size   int64  `json:"size,omitempty"`
	SHA256 string `json:"sha256,omitempty"`
	Blob   string `json:"blob,omitempty"`
}

// Exported reports whether the mesh file has been verified.
func (r MeshExportRecord) Exported() bool { return r.Size > 0 }

// Manifest is the scene document handed to the import stage.
type Manifest struct {
	Version   int                `json:"version"`
	ID        string             `json:"id"`
	Generated time.Time          `json:"generated"`
	Source    string             `json:"source,omitempty"`
	Actors    []ActorRecord      `json:"actors"`
	Meshes    []MeshExportRecord `json:"meshes"`
}

// Mesh returns the record for ref (case-insensitive).
func (m *Manifest) Mesh(ref string) (*MeshExportRecord, bool) {
	key := refKey(ref)
	for i := range m.Meshes {
		if refKey(m.Meshes[i].Ref) == key {
			return &m.Meshes[i], true
		}
	}
	return nil, false
}

// Unresolved lists meshes without a verified export.
func (m *Manifest) Unresolved() []MeshExportRecord {
	var out []MeshExportRecord
	for _, r := range m.Meshes {
		if !r.Exported() {
			out = append(out, r)
		}
	}
	return out
}

// Complete reports whether every referenced mesh has been exported.
func (m *Manifest) Complete() bool { return len(m.Unresolved()) == 0 }

// Jobs returns one batch job per unresolved mesh, writing below outDir.
func (m *Manifest) Jobs(outDir string) []batch.Job {
	var jobs []batch.Job
	for _, r := range m.Unresolved() {
		jobs = append(jobs, batch.Job{Ref: r.Ref, Dest: filepath.Join(outDir, filepath.FromSlash(r.Path))})
	}
	return jobs
}

// Apply records size and hash for every mesh the batch exported successfully.
// Outcomes for references not in the manifest are ignored.
func (m *Manifest) Apply(outDir string, res batch.Result) error {
	for _, o := range res.Outcomes {
		if !o.OK() {
			continue
		}
		rec, ok := m.Mesh(o.Job.Ref)
		if !ok {
			continue
		}
		size, sum, err := hashFile(o.Job.Dest)
		if err != nil {
			return asset.Wrap(asset.IOError, rec.Ref, o.Job.Dest, err)
		}
		rec.Size, rec.SHA256 = size, sum
		if rel, err := filepath.Rel(outDir, o.Job.Dest); err == nil && !strings.HasPrefix(rel, "..") {
			rec.Path = filepath.ToSlash(rel)
		} else {
			rec.Path = filepath.ToSlash(o.Job.Dest)
		}
	}
	return nil
}

func hashFile(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, "", err
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}

func refKey(ref string) string {
	if r, err := asset.ParseReference(ref); err == nil {
		return r.Key()
	}
	return strings.ToLower(strings.TrimSpace(ref))
}

// ReadManifest loads a manifest written by Write.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("scene: parse manifest %s: %w", path, err)
	}
	return &m, nil
}
