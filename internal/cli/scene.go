package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"udk-migrate/internal/asset"
	"udk-migrate/internal/progress"
	"udk-migrate/internal/scene"
)

// sceneOptions controls one manifest build.
type sceneOptions struct {
	exportMeshes bool
	blobs        bool
}

func newSceneCmd(a *app) *cobra.Command {
	var opts sceneOptions
	cmd := &cobra.Command{
		Use:   "scene <map.t3d>",
		Short: "Write the scene manifest of a T3D level export",
		Long: `Read a UDK T3D map export and write manifest.json to the output
directory: every actor with its transform, properties and mesh references, and
one record per unique referenced mesh.

With --export-meshes the referenced meshes are exported through the batch
runner into <output>/meshes and their size and SHA-256 are recorded. With
--blobs the raw source objects are copied to <output>/blobs instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sink, _, stop := a.interactiveSink(cmd)
			defer stop()

			path, m, err := a.buildScene(args[0], opts, sink)
			if m != nil && path != "" {
				fmt.Fprintln(cmd.OutOrStdout(), renderManifest(path, m))
			}
			if err != nil {
				if asset.CodeOf(err) == asset.Cancelled {
					return exitStatus(1)
				}
				return err
			}
			if opts.exportMeshes && !m.Complete() {
				return exitStatus(1)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.exportMeshes, "export-meshes", false, "export referenced meshes and complete the manifest")
	cmd.Flags().BoolVar(&opts.blobs, "blobs", false, "copy raw mesh objects next to the manifest")
	return cmd
}

// buildScene loads the level, builds and optionally completes the manifest,
// and writes it. A cancelled build still writes the partial manifest.
func (a *app) buildScene(mapPath string, opts sceneOptions, sink progress.Sink) (string, *scene.Manifest, error) {
	s, err := scene.LoadT3D(mapPath, sink)
	if err != nil {
		return "", nil, err
	}
	out := a.cfg.OutputDir
	b := &scene.Builder{MeshFormat: a.cfg.MeshFormat, Source: filepath.Base(mapPath)}
	m, buildErr := b.Build(s, sink)

	if buildErr == nil && (opts.exportMeshes || opts.blobs) {
		loc, err := a.locator()
		if err != nil {
			return "", m, err
		}
		if opts.exportMeshes {
			if jobs := m.Jobs(out); len(jobs) > 0 {
				res, err := a.runner(loc).Run(jobs, sink)
				if err != nil {
					return "", m, err
				}
				a.logger.Info(res.Summary(), "id", res.ID)
				if err := m.Apply(out, res); err != nil {
					return "", m, err
				}
			}
		}
		if opts.blobs {
			n, err := scene.WriteBlobs(m, loc, out, sink)
			if err != nil {
				buildErr = err
			}
			a.logger.Info("blobs written", "count", n)
		}
	}

	path, err := scene.Write(m, out)
	if err != nil {
		return "", m, err
	}
	a.logger.Info("manifest written", "path", path, "actors", len(m.Actors), "meshes", len(m.Meshes),
		"unresolved", len(m.Unresolved()))
	if buildErr != nil {
		return path, m, buildErr
	}
	return path, m, nil
}

// isScenePath reports whether name is the watched map file.
func isScenePath(name, target string) bool {
	return strings.EqualFold(filepath.Clean(name), filepath.Clean(target))
}
