package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"udk-migrate/internal/asset"
)

// Job is one (reference, destination) pair.
type Job struct {
	Ref  string `yaml:"ref" json:"ref"`
	Dest string `yaml:"dest" json:"dest"`
}

// PairJobs turns an alternating reference/destination list into jobs.
// An empty or odd-length list is rejected as a whole.
func PairJobs(fields []string) ([]Job, error) {
	if len(fields) == 0 {
		return nil, asset.Errorf(asset.InvalidInput, "", "empty batch")
	}
	if len(fields)%2 != 0 {
		return nil, asset.Errorf(asset.InvalidInput, fields[len(fields)-1],
			"%d fields do not pair up: reference without destination", len(fields))
	}
	jobs := make([]Job, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		jobs = append(jobs, Job{Ref: fields[i], Dest: fields[i+1]})
	}
	return jobs, nil
}

// ParseParams splits the legacy "RefA|DestA|RefB|DestB" string. Empty fields
// are dropped before pairing.
func ParseParams(params string) ([]Job, error) {
	var fields []string
	for _, f := range strings.Split(params, "|") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return PairJobs(fields)
}

// LoadJobs reads a YAML (or JSON) list of {ref, dest} jobs.
func LoadJobs(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("batch: read %s: %w", path, err)
	}
	var jobs []Job
	if err := yaml.Unmarshal(data, &jobs); err != nil {
		// also accept a document with a top-level "jobs" key
		var doc struct {
			Jobs []Job `yaml:"jobs"`
		}
		if derr := yaml.Unmarshal(data, &doc); derr != nil {
			return nil, fmt.Errorf("batch: parse %s: %w", path, err)
		}
		jobs = doc.Jobs
	}
	return jobs, nil
}

// Validate checks the whole batch before any work starts: the list must be
// non-empty, every job needs a reference and a destination, and no two jobs may
// write the same file.
func Validate(jobs []Job) error {
	if len(jobs) == 0 {
		return asset.Errorf(asset.InvalidInput, "", "empty batch")
	}
	seen := make(map[string]int, len(jobs))
	for i, j := range jobs {
		if strings.TrimSpace(j.Ref) == "" {
			return asset.Errorf(asset.InvalidInput, "", "job %d: missing reference", i+1)
		}
		if strings.TrimSpace(j.Dest) == "" {
			return asset.Errorf(asset.InvalidInput, j.Ref, "job %d: missing destination", i+1)
		}
		key := destKey(j.Dest)
		if prev, ok := seen[key]; ok {
			return &asset.Error{
				Code: asset.DestinationCollision,
				Ref:  j.Ref,
				Path: j.Dest,
				Msg:  fmt.Sprintf("jobs %d and %d write the same file", prev+1, i+1),
			}
		}
		seen[key] = i
	}
	return nil
}

// destKey normalises a destination for collision checks. Content trees come
// from Windows, so comparison ignores case.
func destKey(dest string) string {
	p := filepath.Clean(dest)
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return strings.ToLower(p)
}
