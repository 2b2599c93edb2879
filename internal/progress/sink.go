// Package progress defines the diagnostics sink every pipeline stage reports through.
package progress

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	bar "charm.land/bubbles/v2/progress"
)

// BarWidth is the rendered width of the progress bar including its percentage.
const BarWidth = 30

// Sink receives progress, warnings and errors and is polled for cancellation.
// Implementations must not block indefinitely or panic.
type Sink interface {
	ReportProgress(message string, fraction float64)
	IsCancelled() bool
	LogWarning(message string)
	LogError(message string)
}

// Clamp bounds a progress fraction to [0,1]. NaN becomes 0.
func Clamp(f float64) float64 {
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func percent(f float64) int {
	return int(math.Round(Clamp(f) * 100))
}

// LogSink forwards everything to a slog.Logger and never cancels.
type LogSink struct {
	Logger *slog.Logger
}

// NewLogSink returns a pass-through sink. A nil logger uses slog.Default.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{Logger: logger}
}

func (s *LogSink) ReportProgress(message string, fraction float64) {
	s.Logger.Info(fmt.Sprintf("[%d%%] %s", percent(fraction), message))
}

func (s *LogSink) IsCancelled() bool { return false }

func (s *LogSink) LogWarning(message string) { s.Logger.Warn(message) }

func (s *LogSink) LogError(message string) { s.Logger.Error(message) }

// Interactive logs like LogSink and additionally keeps warnings and errors for
// later display, renders a progress line, and exposes a cancellation flag.
// Safe for concurrent use.
type Interactive struct {
	logger *slog.Logger
	out    io.Writer
	meter  bar.Model

	cancelled atomic.Bool

	mu       sync.Mutex
	warnings []string
	errors   []string
	fraction float64
	message  string
}

// NewInteractive creates an interactive sink. out may be nil to suppress the progress line.
func NewInteractive(logger *slog.Logger, out io.Writer) *Interactive {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interactive{
		logger: logger,
		out:    out,
		meter:  bar.New(bar.WithDefaultBlend(), bar.WithWidth(BarWidth)),
	}
}

func (s *Interactive) ReportProgress(message string, fraction float64) {
	f := Clamp(fraction)
	s.mu.Lock()
	s.fraction = f
	s.message = message
	if s.out != nil {
		fmt.Fprintf(s.out, "%s %s\n", s.meter.ViewAs(f), message)
	}
	s.mu.Unlock()
	s.logger.Debug(fmt.Sprintf("[%d%%] %s", percent(f), message))
}

func (s *Interactive) IsCancelled() bool { return s.cancelled.Load() }

// Cancel requests a cooperative stop. Running work finishes its current item.
func (s *Interactive) Cancel() { s.cancelled.Store(true) }

func (s *Interactive) LogWarning(message string) {
	s.logger.Warn(message)
	s.mu.Lock()
	s.warnings = append(s.warnings, message)
	s.mu.Unlock()
}

func (s *Interactive) LogError(message string) {
	s.logger.Error(message)
	s.mu.Lock()
	s.errors = append(s.errors, message)
	s.mu.Unlock()
}

// Warnings returns a copy of the accumulated warnings.
func (s *Interactive) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.warnings...)
}

// Errors returns a copy of the accumulated errors.
func (s *Interactive) Errors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.errors...)
}

// Last returns the most recent progress message and fraction.
func (s *Interactive) Last() (string, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message, s.fraction
}

// Nop discards everything and never cancels.
var Nop Sink = nopSink{}

type nopSink struct{}

func (nopSink) ReportProgress(string, float64) {}
func (nopSink) IsCancelled() bool              { return false }
func (nopSink) LogWarning(string)              {}
func (nopSink) LogError(string)                {}
