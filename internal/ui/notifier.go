// Package ui is the terminal front end of the catalog: input checks,
// notifications, listings and confirmation prompts.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/maruel/bookshelf/internal/errors"
	"github.com/maruel/bookshelf/internal/models"
)

// Palette.
var (
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#2C4A54")
	colorAccent  = lipgloss.Color("#3A7BD5")
)

type styles struct {
	info, warn, err, title, muted, header lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		info:   r.NewStyle().Foreground(colorSuccess),
		warn:   r.NewStyle().Foreground(colorWarning),
		err:    r.NewStyle().Foreground(colorError),
		title:  r.NewStyle().Bold(true),
		muted:  r.NewStyle().Foreground(colorMuted),
		header: r.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1),
	}
}

// Notifier shows messages to the user, the way a desktop application would
// pop up a message box. Information and results go to out, warnings and
// errors to errw. Colors are only used when the writer is a terminal.
type Notifier struct {
	out, errw          io.Writer
	outStyle, errStyle styles
}

// NewNotifier returns a Notifier writing to out and errw.
func NewNotifier(out, errw io.Writer) *Notifier {
	return &Notifier{
		out:      out,
		errw:     errw,
		outStyle: newStyles(lipgloss.NewRenderer(out)),
		errStyle: newStyles(lipgloss.NewRenderer(errw)),
	}
}

// Info shows an informational message.
func (n *Notifier) Info(title, msg string) {
	writeLine(n.out, n.outStyle, n.outStyle.info.Render("✓"), title, msg)
}

// Warn shows a warning.
func (n *Notifier) Warn(title, msg string) {
	writeLine(n.errw, n.errStyle, n.errStyle.warn.Render("⚠"), title, msg)
}

// Error shows an error.
func (n *Notifier) Error(title, msg string) {
	writeLine(n.errw, n.errStyle, n.errStyle.err.Render("✗"), title, msg)
}

// Report implements storage.Reporter.
func (n *Notifier) Report(err *apperrors.Error) {
	if err.Severity() == apperrors.SeverityWarning {
		n.Warn(err.Title(), err.Error())
		return
	}
	n.Error(err.Title(), err.Error())
}

// Outcome shows the result of a borrow or return. A refused transition is
// still a result, so both cases go to out.
func (n *Notifier) Outcome(o models.Outcome) {
	if o.OK {
		n.Info("Result", o.Message)
		return
	}
	writeLine(n.out, n.outStyle, n.outStyle.warn.Render("⚠"), "Result", o.Message)
}

func writeLine(w io.Writer, s styles, icon, title, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s %s\n", icon, s.title.Render(title+":"), msg)
}
