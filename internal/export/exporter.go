// Package export converts one loaded legacy asset into an interchange file.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"udk-migrate/internal/asset"
	"udk-migrate/internal/assetdb"
	"udk-migrate/internal/progress"
)

// Strategy produces interchange bytes for one asset kind.
type Strategy interface {
	// Formats lists supported destination extensions without the dot.
	// The first entry is used when the destination has no extension.
	Formats() []string
	Export(w io.Writer, a *asset.Loaded, format string, sink progress.Sink) error
}

// Result is the outcome of one export. Err is nil on success and an
// *asset.Error otherwise.
type Result struct {
	Bytes  int64
	Format string
	Err    error
}

// OK reports success.
func (r Result) OK() bool { return r.Err == nil }

// Options configures the default strategy set.
type Options struct {
	// Enabled restricts which kinds get a strategy. Nil enables all kinds.
	Enabled map[asset.Kind]bool

	MeshFormat               string // "fbx" or "obj"
	TextureFormat            string // "webp" or "png"
	MaxTextureSize           int
	LightIntensityMultiplier float64
}

// Exporter selects a strategy by kind, writes the destination file and
// verifies it.
type Exporter struct {
	strategies map[asset.Kind]Strategy
}

// New builds an exporter with the default strategy for every enabled kind.
func New(opts Options) *Exporter {
	e := &Exporter{strategies: make(map[asset.Kind]Strategy)}
	enabled := func(k asset.Kind) bool { return opts.Enabled == nil || opts.Enabled[k] }

	if enabled(asset.StaticMesh) {
		e.Register(asset.StaticMesh, &MeshStrategy{Default: opts.MeshFormat})
	}
	if enabled(asset.Texture) {
		e.Register(asset.Texture, &TextureStrategy{Default: opts.TextureFormat, MaxSize: opts.MaxTextureSize})
	}
	if enabled(asset.Material) {
		e.Register(asset.Material, &MaterialStrategy{TextureFormat: opts.TextureFormat})
	}
	if enabled(asset.Light) {
		e.Register(asset.Light, &LightStrategy{Multiplier: opts.LightIntensityMultiplier})
	}
	if enabled(asset.Brush) {
		e.Register(asset.Brush, &BrushStrategy{})
	}
	return e
}

// Register installs or replaces the strategy for kind.
func (e *Exporter) Register(kind asset.Kind, s Strategy) {
	if e.strategies == nil {
		e.strategies = make(map[asset.Kind]Strategy)
	}
	e.strategies[kind] = s
}

// Supports reports whether kind has a registered strategy.
func (e *Exporter) Supports(kind asset.Kind) bool {
	_, ok := e.strategies[kind]
	return ok
}

// Export writes a to dest. The destination file is only trusted after the
// post-write size check; a failed Result says nothing about what is on disk.
func (e *Exporter) Export(a *asset.Loaded, dest string, sink progress.Sink) Result {
	if sink == nil {
		sink = progress.Nop
	}
	ref := a.Ref.String()

	// 1. parent directory
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fail(asset.Wrap(asset.IOError, ref, dest, err))
	}

	// 2. strategy
	strategy, ok := e.strategies[a.Kind]
	if !ok {
		return fail(asset.Errorf(asset.UnsupportedKind, ref, "no export strategy for %s", a.Kind))
	}
	format, err := pickFormat(strategy, dest)
	if err != nil {
		return fail(&asset.Error{Code: asset.StrategyFailure, Ref: ref, Path: dest, Err: err})
	}

	// 3-4. encode through a scoped handle
	if err := writeFile(dest, func(w io.Writer) error {
		return strategy.Export(w, a, format, sink)
	}); err != nil {
		var we *writeError
		if errors.As(err, &we) {
			return fail(asset.Wrap(asset.IOError, ref, dest, we.err))
		}
		return fail(&asset.Error{Code: asset.StrategyFailure, Ref: ref, Path: dest, Err: err})
	}

	// 5. verify independently of the strategy's verdict
	n, err := Verify(dest)
	if err != nil {
		var ae *asset.Error
		if errors.As(err, &ae) {
			ae.Ref = ref
		}
		return Result{Format: format, Err: err}
	}

	// 6.
	sink.ReportProgress(fmt.Sprintf("Exported %s to %s (%d bytes)", ref, dest, n), 1)
	return Result{Bytes: n, Format: format}
}

func fail(err *asset.Error) Result {
	return Result{Err: err}
}

func pickFormat(s Strategy, dest string) (string, error) {
	formats := s.Formats()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(dest)), ".")
	if ext == "" {
		return formats[0], nil
	}
	if !slices.Contains(formats, ext) {
		return "", fmt.Errorf("unsupported destination format %q (want one of %s)", ext, strings.Join(formats, ", "))
	}
	return ext, nil
}

// Verify re-reads the size of an exported file. A missing file is an IOError,
// a zero-byte file is EmptyOutput.
func Verify(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, asset.Wrap(asset.IOError, "", path, err)
	}
	if info.IsDir() {
		return 0, &asset.Error{Code: asset.IOError, Path: path, Msg: "output is a directory"}
	}
	if info.Size() == 0 {
		return 0, &asset.Error{Code: asset.EmptyOutput, Path: path, Msg: "export reported success but wrote 0 bytes"}
	}
	return info.Size(), nil
}

// writeError marks failures of the file itself, as opposed to the encoder.
type writeError struct{ err error }

func (e *writeError) Error() string { return e.err.Error() }
func (e *writeError) Unwrap() error { return e.err }

// trackingWriter remembers the first error of the underlying file.
type trackingWriter struct {
	w   io.Writer
	err error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil && t.err == nil {
		t.err = err
	}
	return n, err
}

// writeFile creates path and runs encode against a buffered writer. The file is
// flushed and closed on every path.
func writeFile(path string, encode func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &writeError{err}
	}
	tw := &trackingWriter{w: f}
	bw := bufio.NewWriter(tw)
	defer func() {
		ferr := bw.Flush()
		cerr := f.Close()
		switch {
		case tw.err != nil:
			err = &writeError{tw.err}
		case err != nil:
		case ferr != nil:
			err = &writeError{ferr}
		case cerr != nil:
			err = &writeError{cerr}
		}
	}()
	return encode(bw)
}

// ExportFile is the single export entry point: resolve ref, export it to dest
// and report success. Failures are logged through the sink.
func ExportFile(loc assetdb.Locator, e *Exporter, ref, dest string, sink progress.Sink) bool {
	if sink == nil {
		sink = progress.Nop
	}
	a, err := loc.Resolve(ref)
	if err != nil {
		sink.LogError(err.Error())
		return false
	}
	res := e.Export(a, dest, sink)
	if res.Err != nil {
		sink.LogError(res.Err.Error())
		return false
	}
	return true
}
