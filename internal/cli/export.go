package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"udk-migrate/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <ref> <dest>",
		Short: "Export one asset",
		Long: `Resolve one legacy reference and export it to dest. The destination
extension picks the format (.fbx/.obj meshes, .webp/.png textures, .mtl
materials, .json lights, .obj brushes); without one the configured default is used.

Exit status is 0 on success and 1 otherwise.

Examples:
  udkmigrate export CastleKit.Walls.SM_Wall out/SM_Wall.fbx
  udkmigrate export "Texture2D'CastleKit.Tex.T_Stone_D'" out/T_Stone_D.png`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := a.locator()
			if err != nil {
				return err
			}
			sink, _, stop := a.interactiveSink(cmd)
			defer stop()

			ref, dest := args[0], args[1]
			if !export.ExportFile(loc, a.exporter(), ref, dest, sink) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", failStyle.Render("FAILED"), ref)
				return exitStatus(1)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", okStyle.Render("OK"), ref, dest)
			return nil
		},
	}
}
