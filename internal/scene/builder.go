package scene

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"udk-migrate/internal/asset"
	"udk-migrate/internal/progress"
)

// Builder turns a Scene into a Manifest. It only records which meshes are
// referenced; exporting them is the batch runner's job.
type Builder struct {
	MeshDir    string // relative to the output directory, default "meshes"
	MeshFormat string // default "fbx"
	Source     string
}

// Build walks every entity once in scene order. Entities without content
// still get a record. When the sink is cancelled between entities the partial
// manifest is returned with a Cancelled error.
func (b *Builder) Build(s Scene, sink progress.Sink) (*Manifest, error) {
	if sink == nil {
		sink = progress.Nop
	}
	m := &Manifest{
		Version:   ManifestVersion,
		ID:        uuid.NewString(),
		Generated: time.Now().UTC().Truncate(time.Second),
		Source:    b.Source,
		Actors:    []ActorRecord{},
		Meshes:    []MeshExportRecord{},
	}
	meshIndex := map[string]int{}

	entities := s.Entities()
	total := len(entities)
	for i, e := range entities {
		if sink.IsCancelled() {
			sink.LogWarning(fmt.Sprintf("manifest cancelled after %d of %d actors", i, total))
			return m, asset.Errorf(asset.Cancelled, "", "manifest build cancelled after %d of %d actors", i, total)
		}

		rec := ActorRecord{
			Name:       e.Name,
			Kind:       e.Kind,
			Transform:  e.Transform,
			MeshRefs:   []string{},
			Properties: map[string]string{},
		}
		for k, v := range e.Properties {
			rec.Properties[k] = v
		}
		for _, raw := range e.MeshRefs {
			ref, err := asset.ParseReference(raw)
			if err != nil {
				sink.LogWarning(fmt.Sprintf("%s: skipping mesh reference: %v", e.Name, err))
				continue
			}
			canonical := ref.String()
			if _, ok := meshIndex[ref.Key()]; !ok {
				meshIndex[ref.Key()] = len(m.Meshes)
				m.Meshes = append(m.Meshes, MeshExportRecord{Ref: canonical, Path: b.meshPath(ref)})
			} else {
				canonical = m.Meshes[meshIndex[ref.Key()]].Ref
			}
			rec.MeshRefs = append(rec.MeshRefs, canonical)
		}
		m.Actors = append(m.Actors, rec)
		sink.ReportProgress(fmt.Sprintf("Actor %d/%d %s", i+1, total, e.Name), float64(i+1)/float64(total))
	}
	return m, nil
}

// meshPath mirrors the package structure: Pkg.Group.Name → meshes/Pkg/Group/Name.fbx.
func (b *Builder) meshPath(ref asset.Reference) string {
	dir := b.MeshDir
	if dir == "" {
		dir = "meshes"
	}
	format := strings.TrimPrefix(b.MeshFormat, ".")
	if format == "" {
		format = "fbx"
	}
	return path.Join(dir, path.Join(ref.Segments()...)+"."+format)
}
