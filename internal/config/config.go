package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"udk-migrate/internal/asset"
	"udk-migrate/internal/export"
)

// Config is the immutable settings snapshot handed to the pipeline.
type Config struct {
	// Paths
	UDKRoot       string `json:"udk_root" toml:"udk_root" yaml:"udk_root"`
	TempDir       string `json:"temp_dir" toml:"temp_dir" yaml:"temp_dir"`
	OutputDir     string `json:"output_dir" toml:"output_dir" yaml:"output_dir"`
	ConverterPath string `json:"converter_path" toml:"converter_path" yaml:"converter_path"`
	LogFile       string `json:"log_file" toml:"log_file" yaml:"log_file"`

	// Asset filters
	ImportStaticMeshes bool `json:"import_static_meshes" toml:"import_static_meshes" yaml:"import_static_meshes"`
	ImportMaterials    bool `json:"import_materials" toml:"import_materials" yaml:"import_materials"`
	ImportTextures     bool `json:"import_textures" toml:"import_textures" yaml:"import_textures"`
	ImportLights       bool `json:"import_lights" toml:"import_lights" yaml:"import_lights"`
	ImportBrushes      bool `json:"import_brushes" toml:"import_brushes" yaml:"import_brushes"`

	// Conversion
	LightIntensityMultiplier float64 `json:"light_intensity_multiplier" toml:"light_intensity_multiplier" yaml:"light_intensity_multiplier"`
	MeshFormat               string  `json:"mesh_format" toml:"mesh_format" yaml:"mesh_format"`
	TextureFormat            string  `json:"texture_format" toml:"texture_format" yaml:"texture_format"`
	MaxTextureSize           int     `json:"max_texture_size" toml:"max_texture_size" yaml:"max_texture_size"`
	AutoConvert              bool    `json:"auto_convert" toml:"auto_convert" yaml:"auto_convert"`

	// Performance
	MaxParallelImports  int  `json:"max_parallel_imports" toml:"max_parallel_imports" yaml:"max_parallel_imports"`
	Parallel            bool `json:"parallel" toml:"parallel" yaml:"parallel"`
	CacheExportedMeshes bool `json:"cache_exported_meshes" toml:"cache_exported_meshes" yaml:"cache_exported_meshes"`

	// Debug
	VerboseLogging bool `json:"verbose_logging" toml:"verbose_logging" yaml:"verbose_logging"`
}

// Limits
const (
	MinLightIntensityMultiplier = 0.1
	MaxLightIntensityMultiplier = 10000.0
	MinParallelImports          = 1
	MaxParallelImports          = 16
)

// ConverterRelPath is where the FBX Converter installs below Program Files.
var ConverterRelPath = filepath.Join("Autodesk", "FBX", "FBX Converter", "2013.3", "bin", "FbxConverter.exe")

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		ImportStaticMeshes:       true,
		ImportMaterials:          true,
		ImportTextures:           true,
		ImportLights:             true,
		ImportBrushes:            true,
		LightIntensityMultiplier: export.DefaultLightIntensityMultiplier,
		MeshFormat:               "fbx",
		TextureFormat:            "webp",
		MaxParallelImports:       4,
		CacheExportedMeshes:      true,
	}
}

// Load reads a config file on top of Default. The format follows the
// extension: .json, .toml, or .yaml/.yml.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("config: %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	UDKRoot   string
	OutputDir string
	LogFile   string
	Workers   int
	Verbose   bool
}

// Resolve applies flag overrides, fills derived paths and clamps the light
// multiplier. CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.UDKRoot != "" {
		c.UDKRoot = flags.UDKRoot
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.LogFile != "" {
		c.LogFile = flags.LogFile
	}
	if flags.Workers > 0 {
		c.MaxParallelImports = flags.Workers
		c.Parallel = flags.Workers > 1
	}
	if flags.Verbose {
		c.VerboseLogging = true
	}

	if c.UDKRoot == "" {
		c.UDKRoot = detectUDKRoot()
	}
	if c.TempDir == "" {
		c.TempDir = filepath.Join(os.TempDir(), "UDKImport")
	}
	if c.OutputDir == "" {
		c.OutputDir = c.TempDir
	}
	if c.ConverterPath == "" {
		c.ConverterPath = detectConverter()
	}

	c.MeshFormat = strings.ToLower(strings.TrimPrefix(c.MeshFormat, "."))
	c.TextureFormat = strings.ToLower(strings.TrimPrefix(c.TextureFormat, "."))
	if c.MeshFormat == "" {
		c.MeshFormat = "fbx"
	}
	if c.TextureFormat == "" {
		c.TextureFormat = "webp"
	}
	if !math.IsNaN(c.LightIntensityMultiplier) {
		c.LightIntensityMultiplier = min(max(c.LightIntensityMultiplier, MinLightIntensityMultiplier), MaxLightIntensityMultiplier)
	}
}

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	switch {
	case math.IsNaN(c.LightIntensityMultiplier) ||
		c.LightIntensityMultiplier < MinLightIntensityMultiplier ||
		c.LightIntensityMultiplier > MaxLightIntensityMultiplier:
		return fmt.Errorf("config: light_intensity_multiplier %v out of range [%v, %v]",
			c.LightIntensityMultiplier, MinLightIntensityMultiplier, MaxLightIntensityMultiplier)
	case c.MaxParallelImports < MinParallelImports || c.MaxParallelImports > MaxParallelImports:
		return fmt.Errorf("config: max_parallel_imports %d out of range [%d, %d]",
			c.MaxParallelImports, MinParallelImports, MaxParallelImports)
	case c.MeshFormat != "fbx" && c.MeshFormat != "obj":
		return fmt.Errorf("config: mesh_format %q: want fbx or obj", c.MeshFormat)
	case c.TextureFormat != "webp" && c.TextureFormat != "png":
		return fmt.Errorf("config: texture_format %q: want webp or png", c.TextureFormat)
	case c.MaxTextureSize < 0:
		return fmt.Errorf("config: max_texture_size %d is negative", c.MaxTextureSize)
	case c.AutoConvert && c.ConverterPath == "":
		return fmt.Errorf("config: auto_convert needs converter_path")
	}
	return nil
}

// EnabledKinds maps the import filters to asset kinds.
func (c Config) EnabledKinds() map[asset.Kind]bool {
	return map[asset.Kind]bool{
		asset.StaticMesh: c.ImportStaticMeshes,
		asset.Material:   c.ImportMaterials,
		asset.Texture:    c.ImportTextures,
		asset.Light:      c.ImportLights,
		asset.Brush:      c.ImportBrushes,
	}
}

// ExportOptions builds the exporter settings.
func (c Config) ExportOptions() export.Options {
	return export.Options{
		Enabled:                  c.EnabledKinds(),
		MeshFormat:               c.MeshFormat,
		TextureFormat:            c.TextureFormat,
		MaxTextureSize:           c.MaxTextureSize,
		LightIntensityMultiplier: c.LightIntensityMultiplier,
	}
}

// Workers is the effective batch parallelism: 1 unless parallel mode is on.
func (c Config) Workers() int {
	if !c.Parallel {
		return 1
	}
	return c.MaxParallelImports
}

// LogLevel is Debug with verbose logging, Info otherwise.
func (c Config) LogLevel() slog.Level {
	if c.VerboseLogging {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func detectUDKRoot() string {
	var bases []string

	// Try relative to executable
	if exe, _ := os.Executable(); exe != "" {
		dir := filepath.Dir(exe)
		bases = append(bases, dir, filepath.Dir(dir), filepath.Join(dir, "..", ".."))
	}

	// Try current working directory and its parent
	if cwd, _ := os.Getwd(); cwd != "" {
		bases = append(bases, cwd, filepath.Dir(cwd))
	}

	for _, base := range bases {
		content := filepath.Join(base, "UDKGame", "Content")
		if info, err := os.Stat(content); err == nil && info.IsDir() {
			return filepath.Clean(content)
		}
	}
	return ""
}

func detectConverter() string {
	for _, env := range []string{"ProgramFiles(x86)", "ProgramFiles"} {
		dir := os.Getenv(env)
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, ConverterRelPath)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
