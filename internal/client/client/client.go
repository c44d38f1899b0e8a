package client

import (
	"context"

	"github.com/dmitrijs2005/invoicekeeper/internal/client/models"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error

	CurrentUser(ctx context.Context) (*models.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Logout(ctx context.Context) error

	ListInvoices(ctx context.Context) ([]models.Invoice, error)
	GetInvoice(ctx context.Context, id int64) (*models.Invoice, error)
	CreateInvoice(ctx context.Context, in models.InvoiceInput) (*models.Invoice, error)
	UpdateInvoice(ctx context.Context, id int64, in models.InvoiceInput) (*models.Invoice, error)
	DeleteInvoice(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*models.Stats, error)
}

// LoginResult is a successful login: the issued bearer token and the profile
// of the account it belongs to.
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

// TokenSource yields the bearer token to attach to outgoing requests. An
// empty token means the request goes out unauthenticated.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context) (string, error)

func (f TokenSourceFunc) AccessToken(ctx context.Context) (string, error) { return f(ctx) }
