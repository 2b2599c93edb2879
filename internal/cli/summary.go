package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"udk-migrate/internal/batch"
	"udk-migrate/internal/scene"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D787")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF005F")).Bold(true)
	cancelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAF00"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C")).Italic(true)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func statusStyle(s batch.Status) lipgloss.Style {
	switch s {
	case batch.Succeeded:
		return okStyle
	case batch.Cancelled:
		return cancelStyle
	}
	return failStyle
}

// renderSummary formats a batch result for the terminal.
func renderSummary(res batch.Result) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Batch "+res.ID) + "\n")
	fmt.Fprintf(&b, "%s  %s  %s  %s\n",
		okStyle.Render(fmt.Sprintf("%d succeeded", res.Succeeded)),
		failStyle.Render(fmt.Sprintf("%d failed", res.Failed)),
		cancelStyle.Render(fmt.Sprintf("%d cancelled", res.Cancelled)),
		hintStyle.Render(fmt.Sprintf("of %d in %s", res.Total, res.Elapsed.Round(time.Millisecond))))

	for _, o := range res.Outcomes {
		line := fmt.Sprintf("%-9s %s -> %s", o.Status, o.Job.Ref, o.Job.Dest)
		switch {
		case o.OK():
			line += hintStyle.Render(fmt.Sprintf(" (%d bytes)", o.Bytes))
			if o.Converted != "" {
				line += hintStyle.Render(" + " + o.Converted)
			}
		case o.Status == batch.Failed:
			line += "\n          " + hintStyle.Render(o.Code.String()+": "+o.Reason)
		}
		b.WriteString(statusStyle(o.Status).Render(line[:9]) + line[9:] + "\n")
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// renderManifest formats a manifest summary for the terminal.
func renderManifest(path string, m *scene.Manifest) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Manifest "+m.ID) + "\n")
	fmt.Fprintf(&b, "%d actors, %d unique meshes\n", len(m.Actors), len(m.Meshes))
	if un := m.Unresolved(); len(un) > 0 {
		b.WriteString(cancelStyle.Render(fmt.Sprintf("%d mesh(es) not exported yet", len(un))) + "\n")
	} else {
		b.WriteString(okStyle.Render("all meshes exported") + "\n")
	}
	b.WriteString(hintStyle.Render(path))
	return boxStyle.Render(b.String())
}
