// Package services holds the application services of the invoicekeeper
// client. They sit between the CLI and the transport: they own the rules for
// when the stored session is written or cleared and when the invoice cache is
// resynchronised.
package services

import (
	"context"

	"github.com/dmitrijs2005/invoicekeeper/internal/client/models"
)

// SessionStore is the persisted session. *session.Store implements it.
type SessionStore interface {
	Get(ctx context.Context) (models.Session, error)
	Set(ctx context.Context, token string, user *models.User) error
	Clear(ctx context.Context) error
}

// Refresher resynchronises the local invoice cache. *syncer.Engine
// implements it.
type Refresher interface {
	Refresh(ctx context.Context)
}
