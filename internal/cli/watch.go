package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// editors save in bursts of events
const watchDebounce = 250 * time.Millisecond

func newWatchCmd(a *app) *cobra.Command {
	var opts sceneOptions
	cmd := &cobra.Command{
		Use:   "watch <map.t3d>",
		Short: "Rewrite the scene manifest whenever the map export changes",
		Long: `Build the manifest once, then watch the T3D file and rebuild on every
change until interrupted. Accepts the same flags as scene.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			w, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("watch: %w", err)
			}
			defer w.Close()

			// watch the directory: saving often replaces the file
			if err := w.Add(filepath.Dir(target)); err != nil {
				return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
			}

			rebuild := func() {
				sink, _, stop := a.interactiveSink(cmd)
				defer stop()
				path, m, err := a.buildScene(target, opts, sink)
				if err != nil {
					a.logger.Error("rebuild failed", "map", target, "error", err)
					return
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderManifest(path, m))
			}
			rebuild()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			a.logger.Info("watching", "map", target)

			var timer <-chan time.Time
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-w.Events:
					if !ok {
						return nil
					}
					if !isScenePath(ev.Name, target) || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
						continue
					}
					a.logger.Debug("change", "op", ev.Op.String(), "file", ev.Name)
					timer = time.After(watchDebounce)
				case err, ok := <-w.Errors:
					if !ok {
						return nil
					}
					a.logger.Error("watch error", "error", err)
				case <-timer:
					timer = nil
					rebuild()
				}
			}
		},
	}
	cmd.Flags().BoolVar(&opts.exportMeshes, "export-meshes", false, "export referenced meshes and complete the manifest")
	cmd.Flags().BoolVar(&opts.blobs, "blobs", false, "copy raw mesh objects next to the manifest")
	return cmd
}
