package cli

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/railohail/timeline-rail/internal/client/config"
	"github.com/railohail/timeline-rail/internal/client/store"
	"github.com/railohail/timeline-rail/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, backend, serverURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		ServerURL:      serverURL,
		StorageBackend: backend,
		DatabasePath:   filepath.Join(dir, "cli.db"),
		KVDir:          filepath.Join(dir, "kv"),
		RequestTimeout: 5 * time.Second,
		DeleteTimeout:  5 * time.Second,
		LogLevel:       "info",
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := NewApp(context.Background(), cfg, logging.Nop{})
	require.NoError(t, err)
	a.out = io.Discard
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// feed replaces the app's input with the given lines.
func feed(a *App, lines ...string) {
	a.reader = bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func TestApp_LocalTimelineWorkflow(t *testing.T) {
	out := captureOutput(t)
	ctx := context.Background()
	a := newTestApp(t, testConfig(t, config.BackendKV, "http://127.0.0.1:1"))

	require.True(t, a.isLoggedIn())
	require.NoError(t, a.Timelines(ctx))
	require.Equal(t, store.Ready, a.store.State())
	assert.Equal(t, localUserID, a.store.UserID())
	assert.Equal(t, "My Timeline", a.store.Current().Name)
	assert.Equal(t, "(My Timeline)", a.status())

	feed(a, "Departure", "2024-01-01", "", "", "", "First leg", "of the trip", "")
	require.NoError(t, a.AddEvent(ctx))
	cur := a.store.Current()
	require.Len(t, cur.Events, 1)
	assert.Equal(t, "Departure", cur.Events[0].Title)
	assert.Equal(t, "First leg\nof the trip", *cur.Events[0].Description)

	require.NoError(t, a.Search(ctx, "leg"))
	assert.Contains(t, *out, "1 of 1 events match")
	require.NoError(t, a.Search(ctx, "nowhere"))
	assert.Contains(t, *out, "0 of 1 events match")

	csvPath := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, a.ExportCSV(ctx, csvPath))
	csv, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(csv), `"Departure","2024-01-01T00:00:00.000Z",""`)

	feed(a, "Arrival", "", "2024-01-03", "", "", "")
	require.NoError(t, a.EditEvent(ctx, "1"))
	ev := a.store.Current().Events[0]
	assert.Equal(t, "Arrival", ev.Title)
	require.NotNil(t, ev.EndDate)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), *ev.EndDate)

	feed(a, "2024-01-01", "2024-01-05", "Start", "", "")
	require.NoError(t, a.AddHighlight(ctx))
	require.Len(t, a.store.Current().Highlights, 1)
	require.NoError(t, a.RemoveHighlight(ctx, "1"))
	assert.Empty(t, a.store.Current().Highlights)

	require.NoError(t, a.Info(ctx))
	assert.Contains(t, strings.Join(*out, "\n"), "backend: kv, timelines: 1")
}

func TestApp_ExportImport(t *testing.T) {
	captureOutput(t)
	ctx := context.Background()
	a := newTestApp(t, testConfig(t, config.BackendSQLite, "http://127.0.0.1:1"))

	require.NoError(t, a.NewTimeline(ctx, "Trip"))
	feed(a, "Departure", "2024-01-01", "", "", "", "")
	require.NoError(t, a.AddEvent(ctx))
	orig := a.store.Current()

	path := filepath.Join(t.TempDir(), "trip.json")
	require.NoError(t, a.Export(ctx, path))

	require.NoError(t, a.Import(ctx, path))
	imported := a.store.Current()
	assert.Equal(t, "Trip", imported.Name)
	assert.NotEqual(t, orig.ID, imported.ID)
	require.Len(t, imported.Events, 1)
	assert.Equal(t, "Departure", imported.Events[0].Title)
	assert.True(t, orig.Events[0].StartDate.Equal(imported.Events[0].StartDate))
	assert.NotEqual(t, orig.Events[0].ID, imported.Events[0].ID)

	require.NoError(t, a.store.LoadAvailableTimelines(ctx))
	assert.Len(t, a.store.Available(), 3)

	require.NoError(t, a.RemoveTimeline(ctx, imported.ID))
	assert.NotContains(t, a.store.Available(), imported.ID)
	assert.NotEqual(t, imported.ID, a.store.Current().ID)

	assert.ErrorContains(t, a.OpenTimeline(ctx, "9"), "no item #9")
}

func TestApp_UploadAndRemoveEvent(t *testing.T) {
	captureOutput(t)
	ctx := context.Background()
	a := newTestApp(t, testConfig(t, config.BackendKV, "http://127.0.0.1:1"))

	require.NoError(t, a.Timelines(ctx))
	feed(a, "Photo day", "2024-02-01", "", "", "", "")
	require.NoError(t, a.AddEvent(ctx))

	dir := t.TempDir()
	png := filepath.Join(dir, "pic.png")
	require.NoError(t, os.WriteFile(png, append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...), 0o600))
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello there"), 0o600))

	assert.ErrorContains(t, a.Upload(ctx, "1", txt), "not an image")

	require.NoError(t, a.Upload(ctx, "1", png))
	ev := a.store.Current().Events[0]
	require.NotNil(t, ev.Image)
	assert.Equal(t, "event-"+ev.ID+".png", *ev.Image)

	stored, err := a.store.LoadImage(ctx, *ev.Image)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored, "data:image/png;base64,"))

	require.NoError(t, a.RemoveEvent(ctx, "1"))
	assert.Empty(t, a.store.Current().Events)
	_, err = a.store.LoadImage(ctx, *ev.Image)
	assert.Error(t, err)
}

const remoteTimeline = `{
	"id": "t1", "name": "Trip",
	"events": [{"id": "e1", "title": "Departure", "startDate": "2024-01-01T00:00:00.000Z", "track": 0}],
	"highlights": [],
	"settings": {"pixelsPerDay": 50},
	"createdAt": "2024-01-01T00:00:00Z", "updatedAt": "2024-01-01T00:00:00Z"
}`

func authServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/health":
			_, _ = io.WriteString(w, `{"status":"ok"}`)
			return
		case "/api/auth/login":
			_, _ = io.WriteString(w, `{"user":{"id":"u1","username":"alice","email":"a@example.com","createdAt":"2024-01-01T00:00:00Z"},"token":"tok"}`)
			return
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"Access token required"}`)
			return
		}
		switch r.Method + " " + r.URL.Path {
		case "GET /api/auth/me":
			_, _ = io.WriteString(w, `{"id":"u1","username":"alice","email":"a@example.com","createdAt":"2024-01-01T00:00:00Z"}`)
		case "GET /api/timelines":
			_, _ = io.WriteString(w, `[{"id":"t1","name":"Trip"}]`)
		case "GET /api/timelines/t1":
			_, _ = io.WriteString(w, remoteTimeline)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"not found"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestApp_RemoteLoginSessionLogout(t *testing.T) {
	out := captureOutput(t)
	ctx := context.Background()
	srv := authServer(t)
	cfg := testConfig(t, config.BackendRemote, srv.URL)

	origPassword := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte("secret"), nil }
	t.Cleanup(func() { getPassword = origPassword })

	a := newTestApp(t, cfg)
	require.False(t, a.isLoggedIn())
	assert.ErrorIs(t, a.Events(ctx), errNotLoggedIn)

	feed(a, "alice")
	require.NoError(t, a.Login(ctx))
	assert.Contains(t, *out, "Logged in as alice")
	assert.Equal(t, "u1", a.store.UserID())
	assert.Equal(t, "(alice Trip)", a.status())

	require.NoError(t, a.WhoAmI(ctx))
	assert.Contains(t, *out, "alice <a@example.com> since 2024-01-01")

	require.NoError(t, a.Events(ctx))
	assert.Contains(t, *out, "1. 2024-01-01T00:00  Departure")
	require.NoError(t, a.Close())

	// The session survives a restart.
	b := newTestApp(t, cfg)
	assert.True(t, b.isLoggedIn())
	assert.Equal(t, "alice", b.session.Username)
	assert.Equal(t, "tok", b.api.Token())

	require.NoError(t, b.Logout(ctx))
	assert.False(t, b.isLoggedIn())
	assert.Equal(t, store.Uninitialized, b.store.State())
	assert.Empty(t, b.api.Token())
	assert.ErrorIs(t, b.Timelines(ctx), errNotLoggedIn)
}
