// Package batch runs ordered lists of export jobs and accounts for every one of them.
package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"udk-migrate/internal/asset"
	"udk-migrate/internal/assetdb"
	"udk-migrate/internal/convert"
	"udk-migrate/internal/export"
	"udk-migrate/internal/progress"
)

// Runner holds the shared resources for a batch run.
type Runner struct {
	Locator  assetdb.Locator
	Exporter *export.Exporter

	// Converter runs on exported OBJ meshes when AutoConvert is set.
	Converter   *convert.Converter
	AutoConvert bool

	// Parallel enables the worker pool; Workers bounds it. The default is
	// one job at a time in submission order.
	Parallel bool
	Workers  int
}

// Run validates jobs and executes them. A validation failure is returned as
// an error with nothing executed; per-job failures are recorded in the Result.
func (r *Runner) Run(jobs []Job, sink progress.Sink) (Result, error) {
	if sink == nil {
		sink = progress.Nop
	}
	if err := Validate(jobs); err != nil {
		sink.LogError(fmt.Sprintf("batch rejected: %v", err))
		return Result{}, err
	}

	res := Result{ID: uuid.NewString(), Outcomes: make([]Outcome, len(jobs))}
	start := time.Now()
	sink.ReportProgress(fmt.Sprintf("Batch %s: %d job(s)", res.ID, len(jobs)), 0)

	if r.Parallel && r.Workers > 1 && len(jobs) > 1 {
		r.runParallel(jobs, res.Outcomes, sink)
	} else {
		r.runSequential(jobs, res.Outcomes, sink)
	}

	res.Elapsed = time.Since(start)
	res.tally()
	if res.Cancelled > 0 {
		sink.LogWarning(fmt.Sprintf("batch %s cancelled: %d job(s) not started", res.ID, res.Cancelled))
	}
	sink.ReportProgress(res.Summary(), 1)
	return res, nil
}

func (r *Runner) runSequential(jobs []Job, out []Outcome, sink progress.Sink) {
	total := len(jobs)
	for i, job := range jobs {
		if sink.IsCancelled() {
			for k := i; k < total; k++ {
				out[k] = cancelled(jobs[k])
			}
			return
		}
		out[i] = r.runJob(job, sink)
		sink.ReportProgress(progressMessage(i+1, total, out[i]), float64(i+1)/float64(total))
	}
}

// runParallel groups jobs by reference so one asset is never exported by two
// workers at once. Outcomes are stored by index to keep submission order.
func (r *Runner) runParallel(jobs []Job, out []Outcome, sink progress.Sink) {
	total := len(jobs)
	var completed atomic.Int64

	var g errgroup.Group
	g.SetLimit(r.Workers)
	for _, group := range groupByRef(jobs) {
		g.Go(func() error {
			for _, idx := range group {
				if sink.IsCancelled() {
					out[idx] = cancelled(jobs[idx])
					continue
				}
				out[idx] = r.runJob(jobs[idx], sink)
				n := completed.Add(1)
				sink.ReportProgress(progressMessage(int(n), total, out[idx]), float64(n)/float64(total))
			}
			return nil
		})
	}
	_ = g.Wait()
}

// groupByRef returns job indexes grouped by reference, groups in order of
// first appearance.
func groupByRef(jobs []Job) [][]int {
	pos := map[string]int{}
	var groups [][]int
	for i, j := range jobs {
		key := strings.ToLower(strings.TrimSpace(j.Ref))
		if ref, err := asset.ParseReference(j.Ref); err == nil {
			key = ref.Key()
		}
		p, ok := pos[key]
		if !ok {
			p = len(groups)
			pos[key] = p
			groups = append(groups, nil)
		}
		groups[p] = append(groups[p], i)
	}
	return groups
}

func (r *Runner) runJob(job Job, sink progress.Sink) (o Outcome) {
	start := time.Now()
	o = Outcome{Job: job}
	defer func() { o.Duration = time.Since(start) }()

	a, err := r.Locator.Resolve(job.Ref)
	if err != nil {
		return r.failed(o, err, sink)
	}
	o.Kind = a.Kind

	res := r.Exporter.Export(a, job.Dest, sink)
	if res.Err != nil {
		return r.failed(o, res.Err, sink)
	}
	o.Bytes = res.Bytes

	if r.AutoConvert && res.Format == "obj" && a.Kind == asset.StaticMesh {
		fbx := convert.OutputPath(job.Dest)
		if err := r.Converter.Convert(context.Background(), job.Dest, fbx); err != nil {
			return r.failed(o, err, sink)
		}
		o.Converted = fbx
	}
	o.Status = Succeeded
	return o
}

// failed records err on o and reports it. Kinds switched off in the
// configuration are warnings rather than errors.
func (r *Runner) failed(o Outcome, err error, sink progress.Sink) Outcome {
	o.Status = Failed
	o.Code = asset.CodeOf(err)
	o.Reason = err.Error()
	var ae *asset.Error
	if errors.As(err, &ae) && ae.Ref == "" {
		o.Reason = fmt.Sprintf("%s: %s", o.Job.Ref, o.Reason)
	}
	if o.Code == asset.UnsupportedKind && o.Kind != asset.Unknown {
		sink.LogWarning(fmt.Sprintf("%s skipped: %s import is disabled", o.Job.Ref, o.Kind))
		return o
	}
	sink.LogError(o.Reason)
	return o
}

func cancelled(job Job) Outcome {
	return Outcome{
		Job:    job,
		Status: Cancelled,
		Code:   asset.Cancelled,
		Reason: "cancelled before start",
	}
}

func progressMessage(done, total int, o Outcome) string {
	return fmt.Sprintf("%d/%d %s %s", done, total, o.Status, o.Job.Ref)
}

// RunParams is the legacy pipe-string entry point: 0 when every job
// succeeded, 1 otherwise (including a rejected batch).
func RunParams(params string, r *Runner, sink progress.Sink) int {
	if sink == nil {
		sink = progress.Nop
	}
	jobs, err := ParseParams(params)
	if err != nil {
		sink.LogError(fmt.Sprintf("batch rejected: %v", err))
		return 1
	}
	res, err := r.Run(jobs, sink)
	if err != nil {
		return 1
	}
	return res.ExitCode()
}
