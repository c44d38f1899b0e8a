package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/invoicekeeper/internal/client/localdb"
	"github.com/dmitrijs2005/invoicekeeper/internal/client/models"
	"github.com/dmitrijs2005/invoicekeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/invoicekeeper/internal/dbx"
	"github.com/dmitrijs2005/invoicekeeper/internal/logging"
)

func newStore(t *testing.T) (*Store, *metadata.SQLiteRepository) {
	t.Helper()
	db, err := localdb.Open(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db, logging.Nop()), metadata.NewSQLiteRepository(db)
}

func TestGet_EmptyStoreIsUnauthenticated(t *testing.T) {
	s, _ := newStore(t)

	sess, err := s.Get(context.Background())
	require.NoError(t, err)
	require.False(t, sess.Authenticated())
	require.Nil(t, sess.User)

	tok, err := s.AccessToken(context.Background())
	require.NoError(t, err)
	require.Empty(t, tok)
}

func TestSetThenGet_IsImmediatelyVisible(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	u := &models.User{ID: 5, Name: "Alice", Email: "alice@example.com", Role: "user"}

	require.NoError(t, s.Set(ctx, "tok-1", u))

	sess, err := s.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok-1", sess.Token)
	require.Equal(t, u, sess.User)

	tok, err := s.AccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok-1", tok)
}

func TestSet_WithoutUserDropsStaleProfile(t *testing.T) {
	s, repo := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "tok-1", &models.User{ID: 1}))
	require.NoError(t, s.Set(ctx, "tok-2", nil))

	sess, err := s.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok-2", sess.Token)
	require.Nil(t, sess.User)

	v, err := repo.Get(ctx, KeyUser)
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSet_RejectsEmptyToken(t *testing.T) {
	s, _ := newStore(t)
	require.ErrorIs(t, s.Set(context.Background(), "", &models.User{}), ErrEmptyToken)
}

func TestClear_RemovesBothKeys(t *testing.T) {
	s, repo := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "tok", &models.User{ID: 1}))
	require.NoError(t, repo.Set(ctx, "unrelated", []byte("kept")))

	require.NoError(t, s.Clear(ctx))

	all, err := repo.GetMany(ctx, KeyAccessToken, KeyUser, "unrelated")
	require.NoError(t, err)
	require.Equal(t, map[string][]byte{"unrelated": []byte("kept")}, all)

	sess, err := s.Get(ctx)
	require.NoError(t, err)
	require.False(t, sess.Authenticated())

	require.NoError(t, s.Clear(ctx), "clearing twice is fine")
}

func TestGet_ProfileWithoutTokenIsIgnored(t *testing.T) {
	s, repo := newStore(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, KeyUser, []byte(`{"id":1,"name":"Ghost"}`)))

	sess, err := s.Get(ctx)
	require.NoError(t, err)
	require.False(t, sess.Authenticated())
	require.Nil(t, sess.User)
}

func TestGet_CorruptProfileKeepsToken(t *testing.T) {
	s, repo := newStore(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, KeyAccessToken, []byte("tok")))
	require.NoError(t, repo.Set(ctx, KeyUser, []byte(`{not json`)))

	sess, err := s.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok", sess.Token)
	require.Nil(t, sess.User)
}

func TestSession_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	db, err := localdb.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, NewStore(db, logging.Nop()).Set(ctx, "tok", &models.User{ID: 9, Name: "Zed"}))
	require.NoError(t, db.Close())

	db, err = localdb.Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	sess, err := NewStore(db, logging.Nop()).Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok", sess.Token)
	require.Equal(t, "Zed", sess.User.Name)
}

func TestGet_StorageErrorIsReturned(t *testing.T) {
	db, err := localdb.Open(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	s := NewStore(db, logging.Nop())
	require.NoError(t, db.Close())

	_, err = s.Get(context.Background())
	require.ErrorContains(t, err, "read session")
}

// failingRepo fails writes of one key and delegates everything else.
type failingRepo struct {
	metadata.Repository
	key string
}

var errWrite = errors.New("disk full")

func (r failingRepo) Set(ctx context.Context, key string, value []byte) error {
	if key == r.key {
		return errWrite
	}
	return r.Repository.Set(ctx, key, value)
}

func TestSet_FailedProfileWriteRollsBackToken(t *testing.T) {
	ctx := context.Background()
	db, err := localdb.Open(ctx, filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewStore(db, logging.Nop(), WithRepository(func(db dbx.DBTX) metadata.Repository {
		return failingRepo{Repository: metadata.NewSQLiteRepository(db), key: KeyUser}
	}))

	require.ErrorIs(t, s.Set(ctx, "tok", &models.User{ID: 1}), errWrite)

	tok, err := s.AccessToken(ctx)
	require.NoError(t, err)
	require.Empty(t, tok, "token must not be stored without its profile")
}
