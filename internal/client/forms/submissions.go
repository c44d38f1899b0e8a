package forms

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/invoicekeeper/internal/client/client"
	"github.com/dmitrijs2005/invoicekeeper/internal/client/models"
)

const (
	LoginDelay        = time.Second
	RegistrationDelay = 1500 * time.Millisecond
	InvoiceDelay      = 1500 * time.Millisecond

	MinPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Authenticator is the sign-in side of services.AuthService.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, name, email, password string) (*models.User, error)
}

// InvoiceCreator is the create side of services.InvoiceService.
type InvoiceCreator interface {
	Create(ctx context.Context, draft models.InvoiceDraft) (*models.Invoice, error)
}

type LoginForm struct {
	Email    string
	Password string
}

type RegistrationForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

func ValidateLogin(f LoginForm) error {
	if strings.TrimSpace(f.Email) == "" || f.Password == "" {
		return invalid("Please enter both email and password")
	}
	return nil
}

func ValidateRegistration(f RegistrationForm) error {
	switch {
	case strings.TrimSpace(f.Name) == "", strings.TrimSpace(f.Email) == "", f.Password == "", f.ConfirmPassword == "":
		return invalid("Please fill in all fields")
	case f.Password != f.ConfirmPassword:
		return invalid("Passwords do not match")
	case len([]rune(f.Password)) < MinPasswordLength:
		return invalid("Password must be at least 6 characters")
	case !emailPattern.MatchString(strings.TrimSpace(f.Email)):
		return invalid("Please enter a valid email")
	}
	return nil
}

func ValidateInvoice(d models.InvoiceDraft) error {
	for _, v := range []string{d.SerialNumber, d.InvoiceDate, d.DeviceName, d.CustomerName, d.Amount} {
		if strings.TrimSpace(v) == "" {
			return invalid("Please fill in all required fields")
		}
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(d.Amount), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return invalid("Amount must be a number")
	}
	if amount <= 0 {
		return invalid("Amount must be greater than zero")
	}

	if e := strings.TrimSpace(d.CustomerEmail); e != "" && !emailPattern.MatchString(e) {
		return invalid("Please enter a valid email")
	}
	return nil
}

// SubmitLogin signs in. On success the dashboard is shown.
func (c *Controller) SubmitLogin(ctx context.Context, auth Authenticator, f LoginForm) Result {
	email := strings.TrimSpace(f.Email)
	return c.Submit(ctx, Submission{
		Validate: func() error { return ValidateLogin(f) },
		Send: func(ctx context.Context) error {
			_, err := auth.Login(ctx, email, f.Password)
			return err
		},
		ProgressLabel:  "Logging in...",
		SuccessMessage: "Login successful! Redirecting...",
		FallbackError:  "Invalid email or password",
		SuccessView:    ViewDashboard,
		SuccessDelay:   LoginDelay,
		Messages:       map[error]string{client.ErrNoToken: "Login failed: No token received"},
	})
}

// SubmitRegistration creates an account. It does not sign in; on success
// the login view is shown.
func (c *Controller) SubmitRegistration(ctx context.Context, auth Authenticator, f RegistrationForm) Result {
	name, email := strings.TrimSpace(f.Name), strings.TrimSpace(f.Email)
	return c.Submit(ctx, Submission{
		Validate: func() error { return ValidateRegistration(f) },
		Send: func(ctx context.Context) error {
			_, err := auth.Register(ctx, name, email, f.Password)
			return err
		},
		ProgressLabel:  "Creating Account...",
		SuccessMessage: "Account created! Please login.",
		FallbackError:  "Registration failed",
		SuccessView:    ViewLogin,
		SuccessDelay:   RegistrationDelay,
	})
}

// SubmitInvoice creates an invoice. A rejected session leads to the login
// view.
func (c *Controller) SubmitInvoice(ctx context.Context, invoices InvoiceCreator, d models.InvoiceDraft) Result {
	var created *models.Invoice
	res := c.Submit(ctx, Submission{
		Validate: func() error { return ValidateInvoice(d) },
		Send: func(ctx context.Context) (err error) {
			created, err = invoices.Create(ctx, d)
			return err
		},
		ProgressLabel:  "Saving...",
		SuccessMessage: "Invoice saved successfully!",
		FallbackError:  "Failed to save invoice",
		SuccessView:    ViewDashboard,
		SuccessDelay:   InvoiceDelay,
		RejectView:     ViewLogin,
	})
	if res.OK() {
		res.Invoice = created
	}
	return res
}
