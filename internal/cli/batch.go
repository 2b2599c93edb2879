package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"udk-migrate/internal/batch"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		params string
		jobs   string
		report string
	)
	cmd := &cobra.Command{
		Use:   "batch [ref dest]...",
		Short: "Export many assets in one run",
		Long: `Export an ordered list of (reference, destination) pairs. Jobs come from
positional arguments, a legacy pipe-joined --params string, or a YAML --jobs
file. The whole list is rejected before anything is written when a
destination is missing or two jobs share a destination.

Exit status is 0 when every job succeeded and 1 otherwise. Ctrl-C stops the
batch after the current job; jobs not started are reported as cancelled.

Examples:
  udkmigrate batch Kit.SM_A out/a.fbx Kit.SM_B out/b.fbx
  udkmigrate batch --params "Kit.SM_A|out/a.fbx|Kit.SM_B|out/b.fbx"
  udkmigrate batch --jobs jobs.yaml --workers 4 --report out/batch.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := collectJobs(args, params, jobs)
			if err == nil {
				err = batch.Validate(list)
			}
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", failStyle.Render("REJECTED"), err)
				return exitStatus(1)
			}
			loc, err := a.locator()
			if err != nil {
				return err
			}
			sink, _, stop := a.interactiveSink(cmd)
			defer stop()

			res, err := a.runner(loc).Run(list, sink)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", failStyle.Render("REJECTED"), err)
				return exitStatus(1)
			}
			a.logger.Info(res.Summary(), "id", res.ID)
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(res))

			if report != "" {
				if err := batch.WriteReport(report, res); err != nil {
					return err
				}
			}
			if code := res.ExitCode(); code != 0 {
				return exitStatus(code)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&params, "params", "", `legacy job string "RefA|DestA|RefB|DestB"`)
	cmd.Flags().StringVar(&jobs, "jobs", "", "YAML file with a list of {ref, dest} jobs")
	cmd.Flags().StringVar(&report, "report", "", "write the batch result as JSON to this file")
	return cmd
}

// collectJobs reads exactly one job source.
func collectJobs(args []string, params, jobsFile string) ([]batch.Job, error) {
	sources := 0
	for _, set := range []bool{len(args) > 0, params != "", jobsFile != ""} {
		if set {
			sources++
		}
	}
	switch {
	case sources > 1:
		return nil, errors.New("use only one of positional pairs, --params or --jobs")
	case params != "":
		return batch.ParseParams(params)
	case jobsFile != "":
		return batch.LoadJobs(jobsFile)
	default:
		return batch.PairJobs(args)
	}
}
