package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"udk-migrate/internal/asset"
	"udk-migrate/internal/assetdb"
	"udk-migrate/internal/progress"
	"udk-migrate/internal/testutil"
)

func openDB(t *testing.T) *assetdb.Database {
	t.Helper()
	root := t.TempDir()
	testutil.WriteMesh(t, root, "Kit.Meshes.SM_Cube", testutil.Cube("SM_Cube"))
	testutil.WriteObject(t, root, "Kit.Mats.M_Stone", testutil.MaterialT3D)
	testutil.WriteObject(t, root, "Kit.Lights.PointLight_0", testutil.LightT3D)
	testutil.WriteObject(t, root, "Kit.Geo.Brush_0", testutil.BrushT3D)
	testutil.WriteObject(t, root, "Kit.Misc.Trigger_0", "Begin Actor Class=Trigger Name=Trigger_0\nEnd Actor\n")
	testutil.WritePNG(t, root, "Kit.Tex.T_Stone_D", 32, 16)
	db, err := assetdb.Open(root)
	require.NoError(t, err)
	return db
}

func resolve(t *testing.T, db *assetdb.Database, ref string) *asset.Loaded {
	t.Helper()
	a, err := db.Resolve(ref)
	require.NoError(t, err)
	return a
}

func TestExportEachKind(t *testing.T) {
	db := openDB(t)
	e := New(Options{})
	out := t.TempDir()

	tests := []struct {
		ref, dest string
		check     func(t *testing.T, data []byte)
	}{
		{"Kit.Meshes.SM_Cube", "meshes/SM_Cube.fbx", func(t *testing.T, data []byte) {
			s := string(data)
			assert.True(t, strings.HasPrefix(s, "; FBX 7.3.0 project file"))
			assert.Contains(t, s, `Geometry: 1000, "Geometry::SM_Cube", "Mesh"`)
			assert.Contains(t, s, "Vertices: *24")
			assert.Contains(t, s, "PolygonVertexIndex: *36")
			assert.Contains(t, s, `"Material::M_Side"`)
			assert.Contains(t, s, `"Material::M_Top"`)
		}},
		{"Kit.Meshes.SM_Cube", "meshes/SM_Cube.obj", func(t *testing.T, data []byte) {
			s := string(data)
			assert.Equal(t, 8, strings.Count(s, "\nv "))
			assert.Equal(t, 12, strings.Count(s, "\nf "))
			assert.Contains(t, s, "usemtl M_Side")
			assert.Contains(t, s, "usemtl M_Top")
		}},
		{"Kit.Tex.T_Stone_D", "tex/T_Stone_D.webp", func(t *testing.T, data []byte) {
			require.Greater(t, len(data), 12)
			assert.Equal(t, "RIFF", string(data[:4]))
			assert.Equal(t, "WEBP", string(data[8:12]))
		}},
		{"Kit.Tex.T_Stone_D", "tex/T_Stone_D.png", func(t *testing.T, data []byte) {
			assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
		}},
		{"Kit.Mats.M_Stone", "mats/M_Stone.mtl", func(t *testing.T, data []byte) {
			s := string(data)
			assert.Contains(t, s, "newmtl M_Stone")
			assert.Contains(t, s, "Kd 0.800000 0.700000 0.600000")
			assert.Contains(t, s, "map_Kd T_Stone_D.webp")
			assert.Contains(t, s, "map_Bump T_Stone_N.webp")
		}},
		{"Kit.Lights.PointLight_0", "lights/PointLight_0.json", func(t *testing.T, data []byte) {
			var doc LightDoc
			require.NoError(t, json.Unmarshal(data, &doc))
			assert.Equal(t, "point", doc.Type)
			assert.Equal(t, 2.0, doc.Brightness)
			assert.Equal(t, 10000.0, doc.Intensity)
			assert.Equal(t, 1024.0, doc.Radius)
			assert.Equal(t, [3]float64{0, 0, 256}, doc.Location)
			assert.InDelta(t, 128.0/255, doc.Color[2], 1e-9)
		}},
		{"Kit.Geo.Brush_0", "geo/Brush_0.obj", func(t *testing.T, data []byte) {
			s := string(data)
			assert.Contains(t, s, "# csg CSG_Add")
			assert.Equal(t, 4, strings.Count(s, "\nv "))
			assert.Equal(t, 1, strings.Count(s, "\nvn "))
			assert.Contains(t, s, "\nv 0.000000 0.000000 256.000000\n")
			assert.Contains(t, s, "f 1//1 2//1 3//1 4//1")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.dest, func(t *testing.T) {
			dest := filepath.Join(out, tt.dest)
			res := e.Export(resolve(t, db, tt.ref), dest, progress.Nop)
			require.NoError(t, res.Err)
			data, err := os.ReadFile(dest)
			require.NoError(t, err)
			assert.Equal(t, int64(len(data)), res.Bytes)
			tt.check(t, data)
		})
	}
}

func TestExportDefaultFormatWithoutExtension(t *testing.T) {
	db := openDB(t)
	dest := filepath.Join(t.TempDir(), "SM_Cube")
	res := New(Options{MeshFormat: "obj"}).Export(resolve(t, db, "Kit.Meshes.SM_Cube"), dest, nil)
	require.NoError(t, res.Err)
	assert.Equal(t, "obj", res.Format)
}

func TestExportIdempotent(t *testing.T) {
	db := openDB(t)
	e := New(Options{})
	dest := filepath.Join(t.TempDir(), "a.fbx")
	a := resolve(t, db, "Kit.Meshes.SM_Cube")

	first := e.Export(a, dest, nil)
	second := e.Export(a, dest, nil)
	require.NoError(t, first.Err)
	require.NoError(t, second.Err)
	assert.Equal(t, first.Bytes, second.Bytes)
}

func TestExportUnsupportedKind(t *testing.T) {
	db := openDB(t)
	dest := filepath.Join(t.TempDir(), "trigger.json")
	res := New(Options{}).Export(resolve(t, db, "Kit.Misc.Trigger_0"), dest, nil)
	assert.Equal(t, asset.UnsupportedKind, asset.CodeOf(res.Err))

	// filtered kinds have no strategy either
	e := New(Options{Enabled: map[asset.Kind]bool{asset.Texture: true}})
	assert.False(t, e.Supports(asset.StaticMesh))
	res = e.Export(resolve(t, db, "Kit.Meshes.SM_Cube"), filepath.Join(t.TempDir(), "m.fbx"), nil)
	assert.Equal(t, asset.UnsupportedKind, asset.CodeOf(res.Err))
}

func TestExportWrongExtension(t *testing.T) {
	db := openDB(t)
	res := New(Options{}).Export(resolve(t, db, "Kit.Meshes.SM_Cube"), filepath.Join(t.TempDir(), "m.png"), nil)
	assert.Equal(t, asset.StrategyFailure, asset.CodeOf(res.Err))
}

func TestExportIOError(t *testing.T) {
	db := openDB(t)
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	res := New(Options{}).Export(resolve(t, db, "Kit.Meshes.SM_Cube"), filepath.Join(blocker, "sub", "m.fbx"), nil)
	assert.Equal(t, asset.IOError, asset.CodeOf(res.Err))
}

type stubStrategy struct {
	write []byte
	err   error
}

func (s *stubStrategy) Formats() []string { return []string{"fbx"} }

func (s *stubStrategy) Export(w io.Writer, _ *asset.Loaded, _ string, _ progress.Sink) error {
	if len(s.write) > 0 {
		if _, err := w.Write(s.write); err != nil {
			return err
		}
	}
	return s.err
}

func TestExportZeroByteGuard(t *testing.T) {
	e := &Exporter{}
	e.Register(asset.StaticMesh, &stubStrategy{})
	a := &asset.Loaded{Ref: asset.MustParseReference("Pkg.MeshA"), Kind: asset.StaticMesh}

	res := e.Export(a, filepath.Join(t.TempDir(), "a.fbx"), nil)
	require.Error(t, res.Err)
	assert.Equal(t, asset.EmptyOutput, asset.CodeOf(res.Err))
	assert.True(t, errors.Is(res.Err, asset.ErrEmptyOutput))
	assert.False(t, res.OK())
}

func TestExportStrategyFailure(t *testing.T) {
	e := &Exporter{}
	e.Register(asset.StaticMesh, &stubStrategy{write: []byte("partial"), err: errors.New("corrupted mesh")})
	a := &asset.Loaded{Ref: asset.MustParseReference("Pkg.MeshA"), Kind: asset.StaticMesh}

	res := e.Export(a, filepath.Join(t.TempDir(), "a.fbx"), nil)
	assert.Equal(t, asset.StrategyFailure, asset.CodeOf(res.Err))
	assert.Contains(t, res.Err.Error(), "corrupted mesh")
}

func TestExportReportsProgressAndWarnings(t *testing.T) {
	db := openDB(t)
	sink := progress.NewInteractive(nil, nil)
	e := New(Options{MaxTextureSize: 8})

	res := e.Export(resolve(t, db, "Kit.Tex.T_Stone_D"), filepath.Join(t.TempDir(), "t.png"), sink)
	require.NoError(t, res.Err)
	_, f := sink.Last()
	assert.Equal(t, 1.0, f)
	require.Len(t, sink.Warnings(), 1)
	assert.Contains(t, sink.Warnings()[0], "downscaled 32x16 to 8x4")
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	_, err := Verify(filepath.Join(dir, "missing"))
	assert.Equal(t, asset.IOError, asset.CodeOf(err))

	_, err = Verify(dir)
	assert.Equal(t, asset.IOError, asset.CodeOf(err))

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = Verify(empty)
	assert.Equal(t, asset.EmptyOutput, asset.CodeOf(err))

	full := filepath.Join(dir, "full")
	require.NoError(t, os.WriteFile(full, []byte("abc"), 0644))
	n, err := Verify(full)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestExportFile(t *testing.T) {
	db := openDB(t)
	e := New(Options{})
	sink := progress.NewInteractive(nil, nil)

	assert.True(t, ExportFile(db, e, "Kit.Meshes.SM_Cube", filepath.Join(t.TempDir(), "cube.fbx"), sink))
	assert.False(t, ExportFile(db, e, "BadRef", filepath.Join(t.TempDir(), "x.fbx"), sink))
	assert.False(t, ExportFile(db, e, "Kit.Nope", filepath.Join(t.TempDir(), "x.fbx"), sink))
	assert.Len(t, sink.Errors(), 2)
}
