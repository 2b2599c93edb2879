// Package convert runs an external format converter on already exported files.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"udk-migrate/internal/asset"
	"udk-migrate/internal/export"
)

// DefaultArgs matches the FbxConverter command line: input, output, source
// and destination formats, FBX 2013 file version.
var DefaultArgs = []string{"{in}", "{out}", "/sffFBX", "/dffFBX", "/f201300"}

// DefaultTimeout bounds one converter invocation.
const DefaultTimeout = 5 * time.Minute

// stderr kept in error messages
const stderrTail = 512

// Converter invokes an executable that turns one file into another.
type Converter struct {
	Path    string
	Args    []string // "{in}" and "{out}" are substituted; nil uses DefaultArgs
	Timeout time.Duration
}

// New returns a converter for the executable at path with default arguments.
func New(path string) *Converter {
	return &Converter{Path: path}
}

// Available reports whether the converter executable exists.
func (c *Converter) Available() bool {
	if c == nil || c.Path == "" {
		return false
	}
	info, err := os.Stat(c.Path)
	return err == nil && !info.IsDir()
}

// OutputPath is the sibling .fbx path for in.
func OutputPath(in string) string {
	return strings.TrimSuffix(in, filepath.Ext(in)) + ".fbx"
}

// Convert runs the converter on in and verifies that out is a non-empty file.
// A previous out is removed first so a converter that silently does nothing
// cannot pass verification.
func (c *Converter) Convert(ctx context.Context, in, out string) error {
	if c == nil || c.Path == "" {
		return &asset.Error{Code: asset.StrategyFailure, Path: in, Msg: "no converter configured"}
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return asset.Wrap(asset.IOError, "", out, err)
	}
	if err := os.Remove(out); err != nil && !errors.Is(err, os.ErrNotExist) {
		return asset.Wrap(asset.IOError, "", out, err)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Path, c.args(in, out)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return &asset.Error{Code: asset.Cancelled, Path: in, Err: ctx.Err()}
		}
		msg := fmt.Sprintf("converter %s failed", filepath.Base(c.Path))
		if tail := tail(stderr.String(), stderrTail); tail != "" {
			msg += ": " + tail
		}
		return &asset.Error{Code: asset.StrategyFailure, Path: in, Msg: msg, Err: err}
	}

	if _, err := export.Verify(out); err != nil {
		return err
	}
	return nil
}

func (c *Converter) args(in, out string) []string {
	tmpl := c.Args
	if tmpl == nil {
		tmpl = DefaultArgs
	}
	r := strings.NewReplacer("{in}", in, "{out}", out)
	args := make([]string, len(tmpl))
	for i, a := range tmpl {
		args[i] = r.Replace(a)
	}
	return args
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		s = "..." + s[len(s)-n:]
	}
	return s
}
