package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/invoicekeeper/internal/client/client"
	"github.com/dmitrijs2005/invoicekeeper/internal/client/models"
	"github.com/dmitrijs2005/invoicekeeper/internal/client/session"
	"github.com/dmitrijs2005/invoicekeeper/internal/logging"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - ResolveCurrentUser: who is signed in, confirmed by the backend. Never fails;
//     problems are logged and reported as nil.
//   - Login: authenticate and persist token and profile.
//   - Register: create an account. Does not sign in.
//   - Logout: tell the backend (best effort), then clear the session.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
type AuthService interface {
	ResolveCurrentUser(ctx context.Context) *models.User
	Login(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client   client.Client
	sessions SessionStore
	log      logging.Logger
	now      func() time.Time
}

func NewAuthService(c client.Client, sessions SessionStore, log logging.Logger) AuthService {
	return &authService{
		client:   c,
		sessions: sessions,
		log:      log.With("component", "auth"),
		now:      time.Now,
	}
}

func (a *authService) ResolveCurrentUser(ctx context.Context) *models.User {
	sess, err := a.sessions.Get(ctx)
	if err != nil {
		a.log.Error(ctx, "read session", "error", err)
		return nil
	}
	if !sess.Authenticated() {
		return nil
	}

	if session.Expired(sess.Token, a.now()) {
		a.log.Info(ctx, "stored token has expired, signing out")
		a.clear(ctx)
		return nil
	}

	user, err := a.client.CurrentUser(ctx)
	switch {
	case err == nil:
		return user
	case errors.Is(err, client.ErrUnauthorized):
		a.log.Info(ctx, "stored token was rejected, signing out")
		a.clear(ctx)
	case errors.Is(err, client.ErrUnavailable):
		a.log.Warn(ctx, "cannot reach backend to confirm session", "error", err)
	default:
		a.log.Warn(ctx, "current user check failed", "error", err)
	}
	return nil
}

func (a *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	res, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	if err := a.sessions.Set(ctx, res.AccessToken, res.User); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	return res.User, nil
}

func (a *authService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	u, err := a.client.Register(ctx, name, email, password)
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	return u, nil
}

// Logout ignores backend failures; the local session is cleared regardless.
// The only error returned is a failure to clear it.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		a.log.Debug(ctx, "backend logout failed, ignoring", "error", err)
	}
	return a.sessions.Clear(ctx)
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}

func (a *authService) clear(ctx context.Context) {
	if err := a.sessions.Clear(ctx); err != nil {
		a.log.Error(ctx, "clear session", "error", err)
	}
}
