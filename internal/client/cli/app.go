package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"

	"github.com/dmitrijs2005/invoicekeeper/internal/client/client"
	"github.com/dmitrijs2005/invoicekeeper/internal/client/config"
	"github.com/dmitrijs2005/invoicekeeper/internal/client/forms"
	"github.com/dmitrijs2005/invoicekeeper/internal/client/localdb"
	"github.com/dmitrijs2005/invoicekeeper/internal/client/models"
	"github.com/dmitrijs2005/invoicekeeper/internal/client/services"
	"github.com/dmitrijs2005/invoicekeeper/internal/client/session"
	"github.com/dmitrijs2005/invoicekeeper/internal/client/staging"
	"github.com/dmitrijs2005/invoicekeeper/internal/client/syncer"
	"github.com/dmitrijs2005/invoicekeeper/internal/filex"
	"github.com/dmitrijs2005/invoicekeeper/internal/logging"
)

// App is one client session from start-up to exit. It owns every
// component; nothing is shared through package state.
type App struct {
	config *config.Config
	log    logging.Logger
	out    io.Writer
	reader *bufio.Reader
	// terminal to read passwords from without echo, -1 when input is not one
	ttyFd int

	db       *sql.DB
	api      *client.HTTPClient
	sessions *session.Store
	auth     services.AuthService
	invoices services.InvoiceService
	sync     *syncer.Engine
	stager   *staging.Stager
	registry *prometheus.Registry

	user *models.User
	// view requested by the last form submission
	next forms.View
}

// NewApp opens the local state and wires the components. in and out are
// the user's terminal; in tests any reader and writer do.
func NewApp(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, log logging.Logger) (*App, error) {
	if _, err := filex.EnsureParentDir(cfg.StatePath); err != nil {
		return nil, err
	}

	db, err := localdb.Open(ctx, cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	sessions := session.NewStore(db, log)
	api := client.NewHTTPClient(cfg.ServerURL, sessions, cfg.RequestTimeout)

	registry := prometheus.NewRegistry()
	engine := syncer.New(api, log,
		syncer.WithInterval(cfg.SyncInterval),
		syncer.WithMetrics(syncer.NewMetrics(registry)),
	)

	ttyFd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		ttyFd = int(f.Fd())
	}

	return &App{
		config:   cfg,
		log:      log,
		out:      out,
		reader:   bufio.NewReader(in),
		ttyFd:    ttyFd,
		db:       db,
		api:      api,
		sessions: sessions,
		auth:     services.NewAuthService(api, sessions, log),
		invoices: services.NewInvoiceService(api, sessions, engine, log),
		sync:     engine,
		stager:   staging.NewStager(),
		registry: registry,
	}, nil
}

// Run restores the session and serves commands until exit or end of input.
func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)

	fmt.Fprintln(a.out, "Welcome to invoicekeeper CLI (type 'help' for commands)")
	a.Start(ctx)
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

// Start is the page-load sequence: probe the backend, confirm the stored
// session and either start syncing or show demonstration data.
func (a *App) Start(ctx context.Context) {
	if err := a.auth.Ping(ctx); err != nil {
		a.log.Warn(ctx, "backend is not reachable", "url", a.config.ServerURL, "error", err)
	} else {
		a.log.Info(ctx, "backend is reachable", "url", a.config.ServerURL)
	}

	user := a.auth.ResolveCurrentUser(ctx)
	if user == nil {
		a.sync.LoadDemo()
		return
	}
	a.signedIn(ctx, user)
}

// Close stops syncing and releases the client and the database.
func (a *App) Close(ctx context.Context) {
	a.sync.Stop()
	if err := a.auth.Close(ctx); err != nil {
		a.log.Warn(ctx, "close client", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.log.Warn(ctx, "close database", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}

func (a *App) getStatus() string {
	if a.user == nil {
		return "(guest)"
	}
	return "(" + a.user.DisplayName() + ")"
}

func (a *App) signedIn(ctx context.Context, user *models.User) {
	a.user = user
	a.sync.Refresh(ctx)
	a.sync.Start(ctx)
}

func (a *App) signedOut() {
	a.sync.Stop()
	a.user = nil
	a.stager.Remove()
	a.sync.LoadDemo()
}

// follow carries out the navigation a form submission asked for.
func (a *App) follow(ctx context.Context) error {
	to := a.next
	a.next = ""

	switch to {
	case forms.ViewDashboard:
		if !a.isLoggedIn() {
			sess, err := a.sessions.Get(ctx)
			if err != nil {
				return err
			}
			user := sess.User
			if user == nil {
				user = &models.User{}
			}
			a.signedIn(ctx, user)
		}
		return a.List(ctx)
	case forms.ViewLogin:
		if a.isLoggedIn() {
			a.signedOut()
			fmt.Fprintln(a.out, "Your session has ended. Please login again.")
		} else {
			fmt.Fprintln(a.out, "Use 'login' to sign in.")
		}
	}
	return nil
}

// checkAuth signs out locally when err says the token was rejected. The
// services have already cleared the stored session by then.
func (a *App) checkAuth(err error) error {
	if errors.Is(err, client.ErrUnauthorized) && a.isLoggedIn() {
		a.signedOut()
		fmt.Fprintln(a.out, "Your session has ended. Please login again.")
	}
	return err
}
