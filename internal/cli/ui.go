package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	"github.com/humbkr/nextjs-project-starter/internal/pipeline"
)

// styles holds the lipgloss styles used for terminal output. All styles
// are empty when colour is disabled.
type styles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

func newStyles(out io.Writer) styles {
	if !colorEnabled(out) {
		plain := lipgloss.NewStyle()
		return styles{Header: plain, Success: plain, Warning: plain, Error: plain, Muted: plain}
	}
	return styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51")),
		Success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82")),
		Warning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Muted:   lipgloss.NewStyle().Faint(true),
	}
}

func colorEnabled(out io.Writer) bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	return isTerminal(out)
}

func isTerminal(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return false
	}
	t := strings.TrimSpace(os.Getenv("TERM"))
	return t != "" && t != "dumb"
}

// reporter prints pipeline progress lines.
type reporter struct {
	out    io.Writer
	styles styles
}

func newReporter(out io.Writer) *reporter {
	return &reporter{out: out, styles: newStyles(out)}
}

func (r *reporter) Info(msg string) {
	switch {
	case msg == "DONE":
		msg = r.styles.Success.Render(msg)
	case strings.HasPrefix(msg, "Error:"):
		msg = r.styles.Error.Render(msg)
	case strings.HasPrefix(msg, "--"):
		msg = r.styles.Header.Render(msg)
	}
	fmt.Fprintln(r.out, msg)
}

func (r *reporter) Warn(msg string) {
	fmt.Fprintf(r.out, "%s %s\n", r.styles.Warning.Render("warning:"), msg)
}

// renderSummary prints one row per pipeline step.
func renderSummary(w io.Writer, results []pipeline.StepResult) {
	if len(results) == 0 {
		return
	}
	st := newStyles(w)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Step", "Status", "Duration", "Warnings"})
	for _, r := range results {
		status := string(r.Status)
		switch r.Status {
		case pipeline.StatusOK:
			status = st.Success.Render(status)
		case pipeline.StatusFailed:
			status = st.Error.Render(status)
		case pipeline.StatusSkipped:
			status = st.Muted.Render(status)
		}
		duration := "-"
		if r.Status != pipeline.StatusSkipped {
			duration = r.Duration.Round(time.Millisecond).String()
		}
		t.AppendRow(table.Row{r.Name, status, duration, len(r.Warnings)})
	}
	t.Render()
}
