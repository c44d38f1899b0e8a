package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/invoicekeeper/internal/client/client"
	"github.com/dmitrijs2005/invoicekeeper/internal/client/models"
)

// ---- fake client ----

type fakeClient struct {
	mu sync.Mutex

	CurrentUserRet *models.User
	CurrentUserErr error

	LoginRet *client.LoginResult
	LoginErr error

	RegisterRet *models.User
	RegisterErr error

	LogoutErr error
	PingErr   error
	CloseErr  error

	InvoiceRet *models.Invoice
	InvoiceErr error
	DeleteErr  error

	StatsRet *models.Stats
	StatsErr error

	ListRet []models.Invoice
	ListErr error

	// for argument checks
	Calls        []string
	LastEmail    string
	LastPassword string
	LastName     string
	LastID       int64
	LastInput    models.InvoiceInput
}

func (f *fakeClient) called(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, name)
}

func (f *fakeClient) Close() error { f.called("Close"); return f.CloseErr }

func (f *fakeClient) Ping(ctx context.Context) error { f.called("Ping"); return f.PingErr }

func (f *fakeClient) CurrentUser(ctx context.Context) (*models.User, error) {
	f.called("CurrentUser")
	return f.CurrentUserRet, f.CurrentUserErr
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (*client.LoginResult, error) {
	f.called("Login")
	f.LastEmail, f.LastPassword = email, password
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	f.called("Register")
	f.LastName, f.LastEmail, f.LastPassword = name, email, password
	return f.RegisterRet, f.RegisterErr
}

func (f *fakeClient) Logout(ctx context.Context) error { f.called("Logout"); return f.LogoutErr }

func (f *fakeClient) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	f.called("ListInvoices")
	return f.ListRet, f.ListErr
}

func (f *fakeClient) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	f.called("GetInvoice")
	f.LastID = id
	return f.InvoiceRet, f.InvoiceErr
}

func (f *fakeClient) CreateInvoice(ctx context.Context, in models.InvoiceInput) (*models.Invoice, error) {
	f.called("CreateInvoice")
	f.LastInput = in
	return f.InvoiceRet, f.InvoiceErr
}

func (f *fakeClient) UpdateInvoice(ctx context.Context, id int64, in models.InvoiceInput) (*models.Invoice, error) {
	f.called("UpdateInvoice")
	f.LastID, f.LastInput = id, in
	return f.InvoiceRet, f.InvoiceErr
}

func (f *fakeClient) DeleteInvoice(ctx context.Context, id int64) error {
	f.called("DeleteInvoice")
	f.LastID = id
	return f.DeleteErr
}

func (f *fakeClient) Stats(ctx context.Context) (*models.Stats, error) {
	f.called("Stats")
	return f.StatsRet, f.StatsErr
}

// ---- fake session store ----

type fakeSessions struct {
	sess models.Session

	GetErr   error
	SetErr   error
	ClearErr error

	Sets   int
	Clears int
}

func (f *fakeSessions) Get(ctx context.Context) (models.Session, error) {
	return f.sess, f.GetErr
}

func (f *fakeSessions) Set(ctx context.Context, token string, user *models.User) error {
	f.Sets++
	if f.SetErr != nil {
		return f.SetErr
	}
	f.sess = models.Session{Token: token, User: user}
	return nil
}

func (f *fakeSessions) Clear(ctx context.Context) error {
	f.Clears++
	if f.ClearErr != nil {
		return f.ClearErr
	}
	f.sess = models.Session{}
	return nil
}

// ---- fake refresher ----

type fakeRefresher struct{ Refreshes int }

func (f *fakeRefresher) Refresh(ctx context.Context) { f.Refreshes++ }
