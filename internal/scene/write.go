package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/google/renameio/v2/maybe"

	"udk-migrate/internal/asset"
	"udk-migrate/internal/assetdb"
	"udk-migrate/internal/progress"
)

// Write stores m as outDir/manifest.json, replacing any previous manifest
// atomically so readers see either the old or the new document. Windows has
// no atomic replace and gets a plain write.
func Write(m *Manifest, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", asset.Wrap(asset.IOError, "", outDir, err)
	}
	dest := filepath.Join(outDir, ManifestName)

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("scene: encode manifest: %w", err)
	}
	data = append(data, '\n')

	if err := maybe.WriteFile(dest, data, 0644); err != nil {
		return "", asset.Wrap(asset.IOError, "", dest, err)
	}
	return dest, nil
}

// WriteBlobs copies the raw source object of every manifest mesh to
// outDir/blobs/<Pkg>/<Group>/<Name><ext> and records the relative path.
// Meshes that cannot be resolved are reported and skipped. It returns the
// number of blobs written.
func WriteBlobs(m *Manifest, loc assetdb.Locator, outDir string, sink progress.Sink) (int, error) {
	if sink == nil {
		sink = progress.Nop
	}
	written := 0
	for i := range m.Meshes {
		rec := &m.Meshes[i]
		if sink.IsCancelled() {
			return written, asset.Errorf(asset.Cancelled, "", "blob export cancelled after %d meshes", written)
		}
		a, err := loc.Resolve(rec.Ref)
		if err != nil {
			sink.LogError(err.Error())
			continue
		}
		if a.Kind != asset.StaticMesh {
			sink.LogWarning(fmt.Sprintf("%s: %s is not a static mesh, no blob written", rec.Ref, a.Kind))
			continue
		}
		rel := path.Join(append([]string{"blobs"}, a.Ref.Segments()...)...) + filepath.Ext(a.Source)
		dest := filepath.Join(outDir, filepath.FromSlash(rel))
		if err := copyFile(a.Source, dest); err != nil {
			return written, asset.Wrap(asset.IOError, rec.Ref, dest, err)
		}
		rec.Blob = rel
		written++
		sink.ReportProgress(fmt.Sprintf("Blob %s", rel), float64(i+1)/float64(len(m.Meshes)))
	}
	return written, nil
}

func copyFile(src, dest string) (err error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(out, in)
	return err
}
