package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"udk-migrate/internal/asset"
)

// inspection is the printed form of a resolved asset.
type inspection struct {
	Ref     string        `yaml:"ref"`
	Kind    string        `yaml:"kind"`
	Class   string        `yaml:"class,omitempty"`
	Source  string        `yaml:"source"`
	Size    int64         `yaml:"size"`
	Metrics asset.Metrics `yaml:"metrics"`
	Export  bool          `yaml:"exportable"`
}

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <ref>...",
		Short: "Resolve references and print what they point at",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := a.locator()
			if err != nil {
				return err
			}
			exp := a.exporter()
			failed := false
			for _, ref := range args {
				l, err := loc.Resolve(ref)
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %v\n", failStyle.Render("ERROR"), err)
					failed = true
					continue
				}
				data, err := yaml.Marshal(inspection{
					Ref:     l.Ref.String(),
					Kind:    l.Kind.String(),
					Class:   l.Class,
					Source:  l.Source,
					Size:    l.Size,
					Metrics: l.Metrics,
					Export:  exp.Supports(l.Kind),
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "---\n%s", data)
			}
			if failed {
				return exitStatus(1)
			}
			return nil
		},
	}
}
