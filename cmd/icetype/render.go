package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/rlch/icetype/analysis"
	"github.com/rlch/icetype/loader"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAF00")).Bold(true)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFFF"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F")).Bold(true)
)

// renderer writes diagnostics, styled only when w is a terminal.
type renderer struct {
	w     io.Writer
	color bool
}

func newRenderer(w io.Writer) *renderer {
	if w == nil {
		w = os.Stderr
	}

	f, ok := w.(*os.File)

	return &renderer{
		w:     w,
		color: ok && isatty.IsTerminal(f.Fd()),
	}
}

func (r *renderer) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}

	return s.Render(text)
}

func (r *renderer) severity(sev analysis.DiagnosticSeverity) string {
	switch sev {
	case analysis.SeverityError:
		return r.style(errorStyle, sev.String())
	case analysis.SeverityWarning:
		return r.style(warningStyle, sev.String())
	default:
		return r.style(hintStyle, sev.String())
	}
}

func (r *renderer) diagnostic(d analysis.Diagnostic) {
	loc := d.Path
	if d.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, d.Line)
	}

	_, _ = fmt.Fprintf(r.w, "%s: %s: %s %s\n",
		loc, r.severity(d.Severity), d.Message, r.style(dimStyle, "["+d.Code+"]"))
}

// loadError prints a file that failed to load as path[:line]. A parse error
// keeps its own field and expression position in the message.
func (r *renderer) loadError(err error) {
	var lerr *loader.LoadError
	if !errors.As(err, &lerr) {
		_, _ = fmt.Fprintf(r.w, "%s: %v\n", r.severity(analysis.SeverityError), err)
		return
	}

	loc := lerr.Path
	if lerr.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, lerr.Line)
	}

	_, _ = fmt.Fprintf(r.w, "%s: %s: %v\n", loc, r.severity(analysis.SeverityError), lerr.Cause)
}

func (r *renderer) summary(files, schemas, failed int, diags []analysis.Diagnostic) {
	var errs, warnings int

	for _, d := range diags {
		switch d.Severity {
		case analysis.SeverityError:
			errs++
		case analysis.SeverityWarning:
			warnings++
		}
	}

	errs += failed

	line := fmt.Sprintf("%d file(s), %d schema(s): %d error(s), %d warning(s)", files, schemas, errs, warnings)
	if errs == 0 {
		line = r.style(successStyle, line)
	}

	_, _ = fmt.Fprintln(r.w, line)
}
