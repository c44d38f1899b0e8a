// Package session persists the bearer token and the cached user profile of
// the signed-in account.
//
// The two values live under fixed keys of the local key/value store and are
// always written and removed together. Reads go to the store every time, so
// a process observes whatever was last committed, including writes made by
// another process sharing the same database file.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/invoicekeeper/internal/client/models"
	"github.com/dmitrijs2005/invoicekeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/invoicekeeper/internal/dbx"
	"github.com/dmitrijs2005/invoicekeeper/internal/logging"
)

const (
	KeyAccessToken = "access_token"
	KeyUser        = "user"
)

var ErrEmptyToken = errors.New("session token must not be empty")

// DB is the database handle the store needs: plain statements for reads and
// transactions for paired writes. *sql.DB satisfies it.
type DB interface {
	dbx.DBTX
	dbx.TxBeginner
}

// RepositoryFactory binds a key/value repository to a database handle or to
// the transaction of a paired write.
type RepositoryFactory func(db dbx.DBTX) metadata.Repository

func sqliteRepository(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

type Store struct {
	db      DB
	log     logging.Logger
	newRepo RepositoryFactory

	// serialises writers within this process
	mu sync.Mutex
}

type Option func(*Store)

// WithRepository replaces the SQLite key/value repository.
func WithRepository(f RepositoryFactory) Option {
	return func(s *Store) { s.newRepo = f }
}

func NewStore(db DB, log logging.Logger, opts ...Option) *Store {
	s := &Store{db: db, log: log.With("component", "session"), newRepo: sqliteRepository}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get returns the current session. With nothing stored it returns the zero
// (unauthenticated) session and no error.
func (s *Store) Get(ctx context.Context) (models.Session, error) {
	values, err := s.newRepo(s.db).GetMany(ctx, KeyAccessToken, KeyUser)
	if err != nil {
		return models.Session{}, fmt.Errorf("read session: %w", err)
	}

	token := string(values[KeyAccessToken])
	if token == "" {
		return models.Session{}, nil
	}

	sess := models.Session{Token: token}

	if raw := values[KeyUser]; len(raw) > 0 {
		var u models.User
		if err := json.Unmarshal(raw, &u); err != nil {
			s.log.Warn(ctx, "stored user profile is unreadable", "error", err)
		} else {
			sess.User = &u
		}
	}

	return sess, nil
}

// AccessToken returns the stored bearer token or "" when signed out.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	v, err := s.newRepo(s.db).Get(ctx, KeyAccessToken)
	if err != nil {
		return "", fmt.Errorf("read access token: %w", err)
	}
	return string(v), nil
}

// Set stores token and profile in one transaction.
func (s *Store) Set(ctx context.Context, token string, user *models.User) error {
	if token == "" {
		return ErrEmptyToken
	}

	var profile []byte
	if user != nil {
		b, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("encode user profile: %w", err)
		}
		profile = b
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.newRepo(tx)
		if err := repo.Set(ctx, KeyAccessToken, []byte(token)); err != nil {
			return err
		}
		if profile == nil {
			return repo.Delete(ctx, KeyUser)
		}
		return repo.Set(ctx, KeyUser, profile)
	})
}

// Clear removes token and profile together. Clearing an empty store is not
// an error.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.newRepo(tx).Delete(ctx, KeyAccessToken, KeyUser)
	})
}
