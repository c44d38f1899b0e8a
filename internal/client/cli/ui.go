package cli

import (
	"fmt"
	"io"

	"github.com/dmitrijs2005/invoicekeeper/internal/client/forms"
)

// termButton stands in for a form's submit button. Progress labels are
// echoed so the user sees the request is running.
type termButton struct {
	out     io.Writer
	initial string
	label   string
	enabled bool
}

func newTermButton(out io.Writer, label string) *termButton {
	return &termButton{out: out, initial: label, label: label, enabled: true}
}

func (b *termButton) Label() string { return b.label }
func (b *termButton) Enabled() bool { return b.enabled }

func (b *termButton) SetEnabled(v bool) { b.enabled = v }

func (b *termButton) SetLabel(l string) {
	if l != b.initial && !b.enabled {
		fmt.Fprintln(b.out, l)
	}
	b.label = l
}

// ShowSuccess, ShowError and Navigate make App the forms.Presenter. A
// navigation is only recorded here and carried out by the command that
// submitted the form.

func (a *App) ShowSuccess(msg string) {
	fmt.Fprintln(a.out, "OK:", msg)
}

func (a *App) ShowError(kind forms.ErrorKind, msg string) {
	fmt.Fprintf(a.out, "Error (%s): %s\n", kind, msg)
}

func (a *App) Navigate(to forms.View) {
	a.next = to
}

func (a *App) newController(label string) *forms.Controller {
	a.next = ""
	return forms.NewController(newTermButton(a.out, label), a, a.config.ServerURL, a.log)
}
