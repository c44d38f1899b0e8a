// Package forms drives form submission: validate locally, lock the submit
// button while the request runs, then report success or a classified error.
package forms

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/invoicekeeper/internal/client/client"
	"github.com/dmitrijs2005/invoicekeeper/internal/logging"
)

// View is a navigation target.
type View string

const (
	ViewLogin     View = "login"
	ViewDashboard View = "dashboard"
)

// Button is the submit control of a form.
type Button interface {
	Label() string
	SetLabel(label string)
	Enabled() bool
	SetEnabled(enabled bool)
}

// Presenter shows outcomes and moves between views.
type Presenter interface {
	ShowSuccess(msg string)
	ShowError(kind ErrorKind, msg string)
	Navigate(to View)
}

// Submission describes one form send.
type Submission struct {
	// Validate runs before anything else. A *ValidationError stops the
	// submission; other errors are treated the same way.
	Validate func() error
	// Send performs the request.
	Send func(ctx context.Context) error

	ProgressLabel  string
	SuccessMessage string
	// FallbackError is shown for server errors without a message.
	FallbackError string

	SuccessView View
	// SuccessDelay is how long the success message stays before SuccessView
	// is shown.
	SuccessDelay time.Duration

	// RejectView is where an auth rejection leads. Empty stays put.
	RejectView View
	// Messages for specific errors returned by Send, checked with errors.Is
	// before the generic classification.
	Messages map[error]string
}

type Controller struct {
	button    Button
	presenter Presenter
	serverURL string
	log       logging.Logger

	// sleep waits out the success delay; replaced in tests
	sleep func(ctx context.Context, d time.Duration)

	inFlight atomic.Bool
}

func NewController(button Button, presenter Presenter, serverURL string, log logging.Logger) *Controller {
	return &Controller{
		button:    button,
		presenter: presenter,
		serverURL: serverURL,
		log:       log.With("component", "forms"),
		sleep:     sleepCtx,
	}
}

// NetworkMessage is shown when the backend cannot be reached.
func NetworkMessage(serverURL string) string {
	return "Cannot connect to server. Please ensure backend is running at " + serverURL
}

// Submit runs s. While it is in flight further calls return KindBusy
// without sending anything.
func (c *Controller) Submit(ctx context.Context, s Submission) Result {
	if !c.button.Enabled() || !c.inFlight.CompareAndSwap(false, true) {
		return Result{Kind: KindBusy}
	}
	defer c.inFlight.Store(false)

	if s.Validate != nil {
		if err := s.Validate(); err != nil {
			msg := err.Error()
			c.presenter.ShowError(KindValidation, msg)
			return Result{Kind: KindValidation, Message: msg}
		}
	}

	original := c.button.Label()
	c.button.SetEnabled(false)
	c.button.SetLabel(s.ProgressLabel)

	err := s.Send(ctx)
	if err == nil {
		c.presenter.ShowSuccess(s.SuccessMessage)
		c.sleep(ctx, s.SuccessDelay)
		c.presenter.Navigate(s.SuccessView)
		return Result{Kind: KindNone, Message: s.SuccessMessage}
	}

	c.button.SetLabel(original)
	c.button.SetEnabled(true)

	kind, msg := c.classify(s, err)
	c.log.Debug(ctx, "submission failed", "kind", kind.String(), "error", err)
	c.presenter.ShowError(kind, msg)
	if kind == KindAuthRejected && s.RejectView != "" {
		c.presenter.Navigate(s.RejectView)
	}
	return Result{Kind: kind, Message: msg}
}

func (c *Controller) classify(s Submission, err error) (ErrorKind, string) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return KindValidation, verr.Message
	}

	for target, msg := range s.Messages {
		if errors.Is(err, target) {
			return KindServer, msg
		}
	}

	if errors.Is(err, client.ErrUnavailable) {
		return KindNetwork, NetworkMessage(c.serverURL)
	}

	kind := KindServer
	if errors.Is(err, client.ErrUnauthorized) {
		kind = KindAuthRejected
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return kind, apiErr.Message
	}
	return kind, s.FallbackError
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
