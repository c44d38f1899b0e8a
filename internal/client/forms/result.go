package forms

import (
	"fmt"

	"github.com/dmitrijs2005/invoicekeeper/internal/client/models"
)

// ErrorKind classifies how a submission ended.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindValidation
	KindAuthRejected
	KindServer
	KindNetwork
	// KindBusy means a previous submission was still in flight and nothing
	// was sent.
	KindBusy
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindAuthRejected:
		return "auth_rejected"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	case KindBusy:
		return "busy"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Result is the outcome of Submit. Message is what was shown to the user.
type Result struct {
	Kind    ErrorKind
	Message string

	// Invoice is the record the backend created, set by a successful
	// SubmitInvoice.
	Invoice *models.Invoice
}

func (r Result) OK() bool { return r.Kind == KindNone }

// ValidationError is a client-side rejection of the form content.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }
