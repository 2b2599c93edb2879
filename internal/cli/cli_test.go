package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"udk-migrate/internal/batch"
	"udk-migrate/internal/scene"
	"udk-migrate/internal/testutil"
)

const levelT3D = `Begin Map
   Begin Level NAME=PersistentLevel
      Begin Actor Class=StaticMeshActor Name=A
         Begin Object Class=StaticMeshComponent Name=C0
            StaticMesh=StaticMesh'Kit.SM_Crate'
         End Object
      End Actor
      Begin Actor Class=StaticMeshActor Name=B
         Begin Object Class=StaticMeshComponent Name=C0
            StaticMesh=StaticMesh'Kit.SM_Crate'
         End Object
         Location=(X=64.000000,Y=0.000000,Z=0.000000)
      End Actor
   End Level
End Map
`

func content(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	testutil.WriteMesh(t, root, "Kit.SM_Crate", testutil.Cube("SM_Crate"))
	testutil.WritePNG(t, root, "Kit.T_Crate", 8, 8)
	return root
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(append([]string{"--quiet"}, args...), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestVersion(t *testing.T) {
	code, out, _ := execute(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "udkmigrate "+Version+"\n", out)
}

func TestUnknownCommand(t *testing.T) {
	code, _, errOut := execute(t, "frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown command")
}

func TestExportCommand(t *testing.T) {
	root := content(t)
	dest := filepath.Join(t.TempDir(), "crate.obj")

	code, out, _ := execute(t, "--udk-root", root, "export", "Kit.SM_Crate", dest)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "OK")
	assert.FileExists(t, dest)

	code, out, _ = execute(t, "--udk-root", root, "export", "BadRef", dest)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "FAILED")
}

func TestExportNeedsContentRoot(t *testing.T) {
	t.Chdir(t.TempDir())
	code, _, errOut := execute(t, "export", "Kit.SM_Crate", "x.fbx")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "--udk-root")
}

func TestBatchCommand(t *testing.T) {
	root := content(t)
	out := t.TempDir()
	a, b := filepath.Join(out, "a.fbx"), filepath.Join(out, "t.png")
	report := filepath.Join(out, "report.json")

	code, stdout, _ := execute(t, "--udk-root", root, "batch", "Kit.SM_Crate", a, "Kit.T_Crate", b, "--report", report)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "2 succeeded")
	assert.FileExists(t, a)
	assert.FileExists(t, b)

	res, err := batch.ReadReport(report)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Succeeded)

	code, stdout, _ = execute(t, "--udk-root", root, "--workers", "2", "batch",
		"--params", "Kit.SM_Crate|"+filepath.Join(out, "c.fbx")+"|Kit.Missing|"+filepath.Join(out, "m.fbx"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "1 failed")
	assert.Contains(t, stdout, "NotFound")
}

func TestBatchRejected(t *testing.T) {
	root := content(t)
	out := t.TempDir()
	tests := map[string][]string{
		"odd":       {"batch", "Kit.SM_Crate", filepath.Join(out, "a.fbx"), "Kit.T_Crate"},
		"collision": {"batch", "Kit.SM_Crate", filepath.Join(out, "a.fbx"), "Kit.SM_Crate", filepath.Join(out, "a.fbx")},
		"empty":     {"batch"},
		"two sources": {"batch", "Kit.SM_Crate", filepath.Join(out, "a.fbx"),
			"--params", "Kit.SM_Crate|" + filepath.Join(out, "b.fbx")},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			code, _, errOut := execute(t, append([]string{"--udk-root", root}, args...)...)
			assert.Equal(t, 1, code)
			assert.Contains(t, errOut, "REJECTED")
			entries, err := os.ReadDir(out)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestSceneCommand(t *testing.T) {
	root := content(t)
	out := t.TempDir()
	level := filepath.Join(t.TempDir(), "Level.t3d")
	require.NoError(t, os.WriteFile(level, []byte(levelT3D), 0644))

	code, stdout, _ := execute(t, "--udk-root", root, "--output", out, "scene", "--export-meshes", level)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "all meshes exported")

	m, err := scene.ReadManifest(filepath.Join(out, scene.ManifestName))
	require.NoError(t, err)
	assert.Len(t, m.Actors, 2)
	require.Len(t, m.Meshes, 1)
	assert.True(t, m.Complete())
	assert.Equal(t, "Level.t3d", m.Source)
	assert.FileExists(t, filepath.Join(out, "meshes", "Kit", "SM_Crate.fbx"))
}

func TestSceneCommandWithoutExport(t *testing.T) {
	out := t.TempDir()
	level := filepath.Join(t.TempDir(), "Level.t3d")
	require.NoError(t, os.WriteFile(level, []byte(levelT3D), 0644))

	code, stdout, _ := execute(t, "--output", out, "scene", level)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "1 mesh(es) not exported yet")
	assert.FileExists(t, filepath.Join(out, scene.ManifestName))
}

func TestInspectCommand(t *testing.T) {
	root := content(t)
	code, out, _ := execute(t, "--udk-root", root, "inspect", "StaticMesh'Kit.SM_Crate'", "Kit.T_Crate")
	assert.Equal(t, 0, code)
	assert.Equal(t, 2, strings.Count(out, "---\n"))
	assert.Contains(t, out, "kind: StaticMesh")
	assert.Contains(t, out, "triangles: 12")
	assert.Contains(t, out, "kind: Texture")
	assert.Contains(t, out, "width: 8")

	code, out, _ = execute(t, "--udk-root", root, "inspect", "Kit.Nope")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "NotFound")
}

func TestConfigFile(t *testing.T) {
	root := content(t)
	cfg := filepath.Join(t.TempDir(), "udk.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("udk_root = \""+filepath.ToSlash(root)+"\"\nmesh_format = \"obj\"\nimport_textures = false\n"), 0644))
	out := t.TempDir()

	code, _, _ := execute(t, "--config", cfg, "export", "Kit.SM_Crate", filepath.Join(out, "crate"))
	assert.Equal(t, 0, code)
	data, err := os.ReadFile(filepath.Join(out, "crate"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# udk-migrate OBJ export"))

	code, _, _ = execute(t, "--config", cfg, "export", "Kit.T_Crate", filepath.Join(out, "t.png"))
	assert.Equal(t, 1, code)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("max_parallel_imports: 40\n"), 0644))
	code, _, errOut := execute(t, "--config", bad, "--udk-root", root, "inspect", "Kit.SM_Crate")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "max_parallel_imports")
}

func TestIsScenePath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "Maps", "Level.t3d")
	assert.True(t, isScenePath(filepath.Join(dir, "Maps", ".", "Level.t3d"), target))
	assert.True(t, isScenePath(filepath.Join(dir, "Maps", "LEVEL.T3D"), target))
	assert.False(t, isScenePath(filepath.Join(dir, "Maps", "Level.t3d~"), target))
	assert.False(t, isScenePath(filepath.Join(dir, "Other.t3d"), target))
}
