package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"udk-migrate/internal/asset"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, 5000.0, c.LightIntensityMultiplier)
	assert.Equal(t, 4, c.MaxParallelImports)
	assert.False(t, c.Parallel)
	assert.True(t, c.CacheExportedMeshes)
	assert.False(t, c.AutoConvert)
	for k, on := range c.EnabledKinds() {
		assert.True(t, on, k.String())
	}
	assert.Equal(t, 1, c.Workers())
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"udk.json": `{"udk_root": "/data/UDKGame/Content", "import_lights": false, "max_parallel_imports": 8, "parallel": true}`,
		"udk.toml": "udk_root = \"/data/UDKGame/Content\"\nimport_lights = false\nmax_parallel_imports = 8\nparallel = true\n",
		"udk.yaml": "udk_root: /data/UDKGame/Content\nimport_lights: false\nmax_parallel_imports: 8\nparallel: true\n",
	}
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))

			c, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "/data/UDKGame/Content", c.UDKRoot)
			assert.False(t, c.ImportLights)
			assert.True(t, c.ImportStaticMeshes, "unset fields keep defaults")
			assert.Equal(t, 5000.0, c.LightIntensityMultiplier)
			assert.Equal(t, 8, c.Workers())
			assert.False(t, c.EnabledKinds()[asset.Light])
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "config: read")

	ini := filepath.Join(dir, "udk.ini")
	require.NoError(t, os.WriteFile(ini, []byte("x=1"), 0644))
	_, err = Load(ini)
	assert.ErrorContains(t, err, "unsupported format")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "config: parse")
}

func TestResolve(t *testing.T) {
	c := Default()
	c.LightIntensityMultiplier = 1e9
	c.MeshFormat = ".OBJ"
	c.Resolve(Flags{UDKRoot: "/content", OutputDir: "/out", Workers: 6, Verbose: true})

	assert.Equal(t, "/content", c.UDKRoot)
	assert.Equal(t, "/out", c.OutputDir)
	assert.Equal(t, filepath.Join(os.TempDir(), "UDKImport"), c.TempDir)
	assert.Equal(t, MaxLightIntensityMultiplier, c.LightIntensityMultiplier)
	assert.Equal(t, "obj", c.MeshFormat)
	assert.Equal(t, 6, c.Workers())
	assert.Equal(t, slog.LevelDebug, c.LogLevel())
	require.NoError(t, c.Validate())

	low := Default()
	low.LightIntensityMultiplier = 0
	low.Resolve(Flags{UDKRoot: "/content"})
	assert.Equal(t, MinLightIntensityMultiplier, low.LightIntensityMultiplier)
	assert.Equal(t, low.TempDir, low.OutputDir)
	assert.Equal(t, 1, low.Workers())
}

func TestResolveDetectsContentDir(t *testing.T) {
	base := t.TempDir()
	content := filepath.Join(base, "UDKGame", "Content")
	require.NoError(t, os.MkdirAll(content, 0755))
	t.Chdir(base)

	c := Default()
	c.Resolve(Flags{})
	want, err := filepath.EvalSymlinks(content)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(c.UDKRoot)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveDetectsConverter(t *testing.T) {
	pf := t.TempDir()
	exe := filepath.Join(pf, ConverterRelPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(exe), 0755))
	require.NoError(t, os.WriteFile(exe, []byte("MZ"), 0755))
	t.Setenv("ProgramFiles(x86)", pf)

	c := Default()
	c.Resolve(Flags{UDKRoot: "/content"})
	assert.Equal(t, exe, c.ConverterPath)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"defaults", func(*Config) {}, ""},
		{"light too low", func(c *Config) { c.LightIntensityMultiplier = 0.01 }, "light_intensity_multiplier"},
		{"workers zero", func(c *Config) { c.MaxParallelImports = 0 }, "max_parallel_imports"},
		{"workers too many", func(c *Config) { c.MaxParallelImports = 17 }, "max_parallel_imports"},
		{"mesh format", func(c *Config) { c.MeshFormat = "dae" }, "mesh_format"},
		{"texture format", func(c *Config) { c.TextureFormat = "dds" }, "texture_format"},
		{"texture size", func(c *Config) { c.MaxTextureSize = -1 }, "max_texture_size"},
		{"auto convert", func(c *Config) { c.AutoConvert = true; c.ConverterPath = "" }, "converter_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestExportOptions(t *testing.T) {
	c := Default()
	c.ImportBrushes = false
	c.MaxTextureSize = 512
	opts := c.ExportOptions()
	assert.False(t, opts.Enabled[asset.Brush])
	assert.True(t, opts.Enabled[asset.StaticMesh])
	assert.Equal(t, 512, opts.MaxTextureSize)
	assert.Equal(t, "webp", opts.TextureFormat)
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("exported", "ref", "Pkg.Mesh")

	assert.Contains(t, stderr.String(), "exported")
	assert.Contains(t, stderr.String(), logPrefix)
	assert.NotContains(t, stderr.String(), "hidden")

	lines := strings.Split(strings.TrimSpace(file.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "exported", rec["msg"])
	assert.Equal(t, "Pkg.Mesh", rec["ref"])
}

func TestSetupLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "udk-migrate.log")
	logger, cleanup := SetupLogger(path, slog.LevelInfo)
	logger.Info("batch finished")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"batch finished"`)

	logger, cleanup = SetupLogger(filepath.Join(t.TempDir(), "no", "such", "dir", "x.log"), slog.LevelInfo)
	assert.NotNil(t, logger)
	assert.NoError(t, cleanup())
}
