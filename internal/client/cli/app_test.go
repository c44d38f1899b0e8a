package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/invoicekeeper/internal/client/config"
	"github.com/dmitrijs2005/invoicekeeper/internal/client/localdb"
	"github.com/dmitrijs2005/invoicekeeper/internal/client/models"
	"github.com/dmitrijs2005/invoicekeeper/internal/client/session"
	"github.com/dmitrijs2005/invoicekeeper/internal/logging"
)

const goodToken = "tok-1"

var alice = models.User{ID: 1, Name: "Alice", Email: "alice@example.com", Role: "user"}

type backend struct {
	mu       sync.Mutex
	revoked  bool
	logouts  int
	listDown bool
	created  []map[string]any
	invoices []models.Invoice
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *backend) authorized(r *http.Request) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.revoked && r.Header.Get("Authorization") == "Bearer "+goodToken
}

func (b *backend) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Token has expired"})
			return
		}
		next(w, r)
	}
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	t.Helper()
	b := &backend{invoices: []models.Invoice{
		{ID: 10, SerialNumber: "SN-100", DeviceName: "iPhone", CustomerName: "Bob", InvoiceDate: "2025-02-01", Amount: 250, PaymentStatus: "paid"},
		{ID: 12, SerialNumber: "SN-120", DeviceName: "Pixel", CustomerName: "Dan", InvoiceDate: "2025-02-03", Amount: 80, PaymentStatus: "pending"},
	}}
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/api/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["email"] != alice.Email || req["password"] != "secret1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"access_token": goodToken, "user": alice})
	})
	r.Post("/api/logout", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.logouts++
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"message": "bye"})
	})
	r.Get("/api/current-user", b.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": alice})
	}))
	r.Get("/api/invoices", b.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.listDown {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "database is down"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"invoices": b.invoices})
	}))
	r.Delete("/api/invoices/{id}", b.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		b.mu.Lock()
		defer b.mu.Unlock()
		n := len(b.invoices)
		b.invoices = slices.DeleteFunc(b.invoices, func(inv models.Invoice) bool { return inv.ID == id })
		if len(b.invoices) == n {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Invoice not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Invoice deleted successfully"})
	}))
	r.Get("/api/invoices/stats", b.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"stats": models.Stats{TotalInvoices: 1, PaidInvoices: 1, TotalRevenue: 250}})
	}))
	r.Post("/api/invoices", b.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.created = append(b.created, body)
		inv := models.Invoice{ID: 11, SerialNumber: "SN-200", DeviceName: "Pixel", CustomerName: "Carol", InvoiceDate: "2025-03-01", Amount: 42}
		b.invoices = append(b.invoices, inv)
		b.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]any{"invoice": inv})
	}))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return b, srv
}

func testConfig(t *testing.T, url string) *config.Config {
	return &config.Config{
		ServerURL:      url,
		SyncInterval:   time.Hour,
		RequestTimeout: 2 * time.Second,
		StatePath:      filepath.Join(t.TempDir(), "state.db"),
		LogLevel:       "error",
	}
}

func seedToken(t *testing.T, cfg *config.Config, token string) {
	t.Helper()
	ctx := context.Background()
	db, err := localdb.Open(ctx, cfg.StatePath)
	require.NoError(t, err)
	defer db.Close()
	u := alice
	require.NoError(t, session.NewStore(db, logging.Nop()).Set(ctx, token, &u))
}

func storedToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	ctx := context.Background()
	db, err := localdb.Open(ctx, cfg.StatePath)
	require.NoError(t, err)
	defer db.Close()
	tok, err := session.NewStore(db, logging.Nop()).AccessToken(ctx)
	require.NoError(t, err)
	return tok
}

func newTestApp(t *testing.T, cfg *config.Config, input string) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	app, err := NewApp(context.Background(), cfg, strings.NewReader(input), &out, logging.Nop())
	require.NoError(t, err)
	return app, &out
}

func TestApp_GuestSeesDemoData(t *testing.T) {
	_, srv := newBackend(t)
	app, out := newTestApp(t, testConfig(t, srv.URL), "")
	ctx := context.Background()
	t.Cleanup(func() { app.Close(ctx) })

	app.Start(ctx)

	require.False(t, app.isLoggedIn())
	require.Equal(t, "(guest)", app.getStatus())
	require.NoError(t, app.List(ctx))
	require.Contains(t, out.String(), "(demonstration data)")
	require.Contains(t, out.String(), "DEMO-001")
	require.False(t, app.sync.Running())
}

func TestApp_RestoresStoredSession(t *testing.T) {
	_, srv := newBackend(t)
	cfg := testConfig(t, srv.URL)
	seedToken(t, cfg, goodToken)

	app, out := newTestApp(t, cfg, "")
	ctx := context.Background()
	t.Cleanup(func() { app.Close(ctx) })

	app.Start(ctx)

	require.True(t, app.isLoggedIn())
	require.Equal(t, "(Alice)", app.getStatus())
	require.True(t, app.sync.Running())
	require.False(t, app.sync.Demo())

	require.NoError(t, app.List(ctx))
	require.Contains(t, out.String(), "SN-100")
	require.NotContains(t, out.String(), "demonstration")
}

func TestApp_RejectedTokenIsCleared(t *testing.T) {
	_, srv := newBackend(t)
	cfg := testConfig(t, srv.URL)
	seedToken(t, cfg, "stale")

	app, _ := newTestApp(t, cfg, "")
	ctx := context.Background()
	app.Start(ctx)

	require.False(t, app.isLoggedIn())
	require.True(t, app.sync.Demo())
	app.Close(ctx)

	require.Empty(t, storedToken(t, cfg))
}

func TestApp_UnreachableBackendKeepsToken(t *testing.T) {
	_, srv := newBackend(t)
	cfg := testConfig(t, srv.URL)
	seedToken(t, cfg, goodToken)
	srv.Close()

	app, _ := newTestApp(t, cfg, "")
	ctx := context.Background()
	app.Start(ctx)

	require.False(t, app.isLoggedIn())
	require.True(t, app.sync.Demo())
	app.Close(ctx)

	require.Equal(t, goodToken, storedToken(t, cfg))
}

func TestApp_LoginListLogout(t *testing.T) {
	b, srv := newBackend(t)
	cfg := testConfig(t, srv.URL)

	input := strings.Join([]string{
		"login", "alice@example.com", "secret1",
		"stats",
		"logout",
		"exit",
	}, "\n") + "\n"

	app, out := newTestApp(t, cfg, input)
	app.Run(context.Background())

	got := out.String()
	require.Contains(t, got, "ik (guest) > ")
	require.Contains(t, got, "Logging in...")
	require.Contains(t, got, "OK: Login successful! Redirecting...")
	require.Contains(t, got, "SN-100")
	require.Contains(t, got, "ik (Alice) > ")
	require.Contains(t, got, "Invoices: 1 (pending 0, paid 1)")
	require.Contains(t, got, "Logged out.")
	require.Contains(t, got, "Bye!")

	b.mu.Lock()
	require.Equal(t, 1, b.logouts)
	b.mu.Unlock()
	require.Empty(t, storedToken(t, cfg))
}

func TestApp_LoginWrongPassword(t *testing.T) {
	_, srv := newBackend(t)
	app, out := newTestApp(t, testConfig(t, srv.URL), "alice@example.com\nwrong\n")
	ctx := context.Background()
	t.Cleanup(func() { app.Close(ctx) })
	app.Start(ctx)

	require.NoError(t, app.Login(ctx))

	require.False(t, app.isLoggedIn())
	require.Contains(t, out.String(), "Error (auth_rejected): Invalid email or password")
}

func TestApp_LoginRefusedWhenSignedIn(t *testing.T) {
	_, srv := newBackend(t)
	cfg := testConfig(t, srv.URL)
	seedToken(t, cfg, goodToken)

	app, _ := newTestApp(t, cfg, "")
	ctx := context.Background()
	t.Cleanup(func() { app.Close(ctx) })
	app.Start(ctx)

	require.ErrorIs(t, app.Login(ctx), errAlreadyLoggedIn)
	require.ErrorIs(t, app.Register(ctx), errAlreadyLoggedIn)
}

func TestApp_RevokedTokenEndsSession(t *testing.T) {
	b, srv := newBackend(t)
	cfg := testConfig(t, srv.URL)
	seedToken(t, cfg, goodToken)

	app, out := newTestApp(t, cfg, "")
	ctx := context.Background()
	app.Start(ctx)
	require.True(t, app.isLoggedIn())

	b.mu.Lock()
	b.revoked = true
	b.mu.Unlock()

	require.Error(t, app.Stats(ctx))
	require.False(t, app.isLoggedIn())
	require.False(t, app.sync.Running())
	require.Contains(t, out.String(), "Your session has ended. Please login again.")
	app.Close(ctx)

	require.Empty(t, storedToken(t, cfg))
}

func TestApp_AddInvoiceValidation(t *testing.T) {
	b, srv := newBackend(t)
	cfg := testConfig(t, srv.URL)
	seedToken(t, cfg, goodToken)

	input := strings.Join([]string{
		"SN-200", "", "Pixel", "Carol", "", "", "abc", "", "", "",
	}, "\n") + "\n"

	app, out := newTestApp(t, cfg, input)
	ctx := context.Background()
	t.Cleanup(func() { app.Close(ctx) })
	app.Start(ctx)

	require.NoError(t, app.Add(ctx))
	require.Contains(t, out.String(), "Error (validation): Amount must be a number")

	b.mu.Lock()
	require.Empty(t, b.created)
	b.mu.Unlock()
}

func TestApp_AddRequiresLogin(t *testing.T) {
	_, srv := newBackend(t)
	app, _ := newTestApp(t, testConfig(t, srv.URL), "")
	ctx := context.Background()
	t.Cleanup(func() { app.Close(ctx) })

	require.ErrorIs(t, app.Add(ctx), errNotLoggedIn)
	require.ErrorIs(t, app.Stats(ctx), errNotLoggedIn)
	require.ErrorIs(t, app.Show(ctx, "1"), errNotLoggedIn)
}

func TestApp_AttachAndDetach(t *testing.T) {
	_, srv := newBackend(t)
	app, out := newTestApp(t, testConfig(t, srv.URL), "")
	ctx := context.Background()
	t.Cleanup(func() { app.Close(ctx) })

	dir := t.TempDir()
	png := filepath.Join(dir, "receipt.png")
	require.NoError(t, os.WriteFile(png, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0o600))
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("plain text"), 0o600))

	require.NoError(t, app.Attach(ctx, png))
	require.Contains(t, out.String(), "Staged receipt.png")
	require.Contains(t, out.String(), "Preview ready")

	err := app.Attach(ctx, txt)
	require.EqualError(t, err, "Invalid file type. Please upload PNG, JPG, JPEG, or PDF files only.")
	require.Equal(t, "receipt.png", app.stager.Current().Name)

	require.NoError(t, app.Detach(ctx))
	require.Nil(t, app.stager.Current())
}

func TestApp_MetricsAfterRefresh(t *testing.T) {
	_, srv := newBackend(t)
	cfg := testConfig(t, srv.URL)
	seedToken(t, cfg, goodToken)

	app, out := newTestApp(t, cfg, "")
	ctx := context.Background()
	t.Cleanup(func() { app.Close(ctx) })
	app.Start(ctx)

	require.NoError(t, app.Metrics(ctx))
	got := out.String()
	require.Contains(t, got, `invoicekeeper_sync_refresh_total{result="ok"}`)
	require.Contains(t, got, "invoicekeeper_sync_cached_invoices")
}

func TestParseID(t *testing.T) {
	id, err := parseID(" 42 ")
	require.NoError(t, err)
	require.Equal(t, int64(42), id)

	for _, bad := range []string{"", "x", "0", "-3"} {
		_, err := parseID(bad)
		require.Error(t, err, bad)
	}
}


func snapshotIDs(app *App) []int64 {
	var ids []int64
	for _, inv := range app.sync.Snapshot() {
		ids = append(ids, inv.ID)
	}
	return ids
}

func TestApp_DeleteRefreshesCache(t *testing.T) {
	_, srv := newBackend(t)
	cfg := testConfig(t, srv.URL)
	seedToken(t, cfg, goodToken)

	app, out := newTestApp(t, cfg, "y\n")
	ctx := context.Background()
	t.Cleanup(func() { app.Close(ctx) })
	app.Start(ctx)
	require.Equal(t, []int64{10, 12}, snapshotIDs(app))

	require.NoError(t, app.Delete(ctx, "12"))

	require.Contains(t, out.String(), "Invoice deleted!")
	require.False(t, app.sync.Demo())
	require.Equal(t, []int64{10}, snapshotIDs(app))
}

func TestApp_DeleteWithFailedRefreshShowsDemoData(t *testing.T) {
	b, srv := newBackend(t)
	cfg := testConfig(t, srv.URL)
	seedToken(t, cfg, goodToken)

	app, _ := newTestApp(t, cfg, "y\n")
	ctx := context.Background()
	t.Cleanup(func() { app.Close(ctx) })
	app.Start(ctx)

	b.mu.Lock()
	b.listDown = true
	b.mu.Unlock()

	require.NoError(t, app.Delete(ctx, "12"))

	require.True(t, app.sync.Demo())
	require.Equal(t, models.DemoInvoices(), app.sync.Snapshot())
	require.True(t, app.isLoggedIn(), "a failed refresh does not end the session")
}

func TestApp_DeleteCancelled(t *testing.T) {
	b, srv := newBackend(t)
	cfg := testConfig(t, srv.URL)
	seedToken(t, cfg, goodToken)

	app, out := newTestApp(t, cfg, "n\n")
	ctx := context.Background()
	t.Cleanup(func() { app.Close(ctx) })
	app.Start(ctx)

	require.NoError(t, app.Delete(ctx, "12"))
	require.Contains(t, out.String(), "Cancelled.")

	b.mu.Lock()
	require.Len(t, b.invoices, 2)
	b.mu.Unlock()
}

func TestApp_AddInvoiceReportsCreatedID(t *testing.T) {
	b, srv := newBackend(t)
	cfg := testConfig(t, srv.URL)
	seedToken(t, cfg, goodToken)

	input := strings.Join([]string{
		"SN-200", "2025-03-01", "Pixel", "Carol", "", "", "42", "", "", "",
	}, "\n") + "\n"

	app, out := newTestApp(t, cfg, input)
	ctx := context.Background()
	t.Cleanup(func() { app.Close(ctx) })
	app.Start(ctx)

	require.NoError(t, app.Add(ctx))

	require.Contains(t, out.String(), "OK: Invoice saved successfully!")
	require.Contains(t, out.String(), "Invoice #11 created.")
	require.Contains(t, snapshotIDs(app), int64(11))

	b.mu.Lock()
	require.Len(t, b.created, 1)
	require.Equal(t, "SN-200", b.created[0]["serial_number"])
	b.mu.Unlock()
}
