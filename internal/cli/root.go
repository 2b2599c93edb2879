// Package cli provides the command-line interface for udk-migrate.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"udk-migrate/internal/assetdb"
	"udk-migrate/internal/batch"
	"udk-migrate/internal/config"
	"udk-migrate/internal/convert"
	"udk-migrate/internal/export"
	"udk-migrate/internal/progress"
)

// Version is set at build time.
var Version = "0.1.0"

// exitStatus ends a command with a specific process status after the command
// has already reported why.
type exitStatus int

func (e exitStatus) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

// app carries what the subcommands share for one invocation.
type app struct {
	configPath string
	flags      config.Flags
	quiet      bool

	cfg     config.Config
	logger  *slog.Logger
	cleanup func() error

	out io.Writer
}

// NewRootCmd builds the command tree writing results to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out, cleanup: func() error { return nil }}

	root := &cobra.Command{
		Use:   "udkmigrate",
		Short: "Migrate assets out of an extracted UDK content tree",
		Long: `udkmigrate converts legacy UDK assets (static meshes, textures, materials,
lights and brushes) from an extracted content tree into interchange files, and
records level layouts as a scene manifest for a later import stage.

References use the package path form Package.Group.Name and may be written
class-qualified as in T3D exports: StaticMesh'Package.Group.Name'.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if err := a.cleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "settings file (.json, .toml or .yaml)")
	pf.StringVar(&a.flags.UDKRoot, "udk-root", "", "extracted UDK content directory (default: auto-detect UDKGame/Content)")
	pf.StringVarP(&a.flags.OutputDir, "output", "o", "", "output directory for manifests and scene meshes")
	pf.IntVarP(&a.flags.Workers, "workers", "w", 0, "parallel exports (1-16); more than 1 enables parallel mode")
	pf.BoolVarP(&a.flags.Verbose, "verbose", "v", false, "verbose logging")
	pf.StringVar(&a.flags.LogFile, "log-file", "", "also write JSON logs to this file")
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "do not print progress lines")

	root.AddCommand(
		newExportCmd(a),
		newBatchCmd(a),
		newSceneCmd(a),
		newInspectCmd(a),
		newWatchCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI and returns the process exit status.
func Execute() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, out, errOut io.Writer) int {
	root := NewRootCmd(out)
	root.SetErr(errOut)
	root.SetArgs(args)
	err := root.Execute()

	var st exitStatus
	switch {
	case err == nil:
		return 0
	case errors.As(err, &st):
		return int(st)
	default:
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
}

func (a *app) setup() error {
	cfg := config.Default()
	if a.configPath != "" {
		var err error
		if cfg, err = config.Load(a.configPath); err != nil {
			return err
		}
	}
	cfg.Resolve(a.flags)
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger, a.cleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel())
	a.logger.Debug("configuration", "udk_root", cfg.UDKRoot, "output", cfg.OutputDir,
		"workers", cfg.Workers(), "mesh_format", cfg.MeshFormat)
	return nil
}

// locator opens the content tree, cached when configured.
func (a *app) locator() (assetdb.Locator, error) {
	if a.cfg.UDKRoot == "" {
		return nil, errors.New("no UDK content directory found: pass --udk-root or set udk_root")
	}
	db, err := assetdb.Open(a.cfg.UDKRoot)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("content indexed", "root", db.Root(), "objects", db.Len())
	if a.cfg.CacheExportedMeshes {
		return assetdb.NewCache(db), nil
	}
	return db, nil
}

func (a *app) exporter() *export.Exporter {
	return export.New(a.cfg.ExportOptions())
}

func (a *app) runner(loc assetdb.Locator) *batch.Runner {
	r := &batch.Runner{
		Locator:     loc,
		Exporter:    a.exporter(),
		AutoConvert: a.cfg.AutoConvert,
		Parallel:    a.cfg.Parallel,
		Workers:     a.cfg.Workers(),
	}
	if a.cfg.ConverterPath != "" {
		r.Converter = convert.New(a.cfg.ConverterPath)
	}
	return r
}

// interactiveSink returns a sink that SIGINT cancels, and a stop function
// that releases the signal handler.
func (a *app) interactiveSink(cmd *cobra.Command) (*progress.Interactive, context.Context, func()) {
	var w io.Writer
	if !a.quiet {
		w = cmd.ErrOrStderr()
	}
	sink := progress.NewInteractive(a.logger, w)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	go func() {
		<-ctx.Done()
		sink.Cancel()
	}()
	return sink, ctx, stop
}
