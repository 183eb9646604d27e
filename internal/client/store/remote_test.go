package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/railohail/timeline-rail/internal/client/client"
	"github.com/railohail/timeline-rail/internal/client/storage"
	"github.com/railohail/timeline-rail/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sharedImageServer serves one timeline whose events e1 and e2 both point at
// event-gone.png, an image the server no longer has.
func sharedImageServer(t *testing.T) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	events := []string{"e1", "e2"}

	timeline := func() string {
		parts := make([]string, 0, len(events))
		for _, id := range events {
			parts = append(parts, fmt.Sprintf(
				`{"id":%q,"title":"Photo","startDate":"2024-01-01T00:00:00.000Z","image":"event-gone.png","track":0}`, id))
		}
		return `{"id":"t1","name":"Trip","events":[` + strings.Join(parts, ",") +
			`],"highlights":[],"settings":{"pixelsPerDay":50},"createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		w.Header().Set("Content-Type", "application/json")

		switch key := r.Method + " " + r.URL.Path; {
		case key == "GET /api/timelines":
			_, _ = io.WriteString(w, `[{"id":"t1","name":"Trip"}]`)
		case key == "GET /api/timelines/t1":
			_, _ = io.WriteString(w, timeline())
		case key == "PUT /api/timelines/t1", strings.HasPrefix(key, "PUT /api/timelines/t1/events/"):
			_, _ = io.WriteString(w, `{}`)
		case strings.HasPrefix(key, "DELETE /api/timelines/t1/events/"):
			id := strings.TrimPrefix(r.URL.Path, "/api/timelines/t1/events/")
			for i, ev := range events {
				if ev == id {
					events = append(events[:i], events[i+1:]...)
					break
				}
			}
			_, _ = io.WriteString(w, `{"message":"Event deleted successfully"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"Image not found"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDeleteEvent_RemoteImageAlreadyGone(t *testing.T) {
	ctx := context.Background()
	srv := sharedImageServer(t)
	s := New(storage.NewRemote(client.New(srv.URL, 0), logging.Nop{}), logging.Nop{})
	require.NoError(t, s.Initialize(ctx, "u1"))
	require.Len(t, s.Current().Events, 2)

	require.NoError(t, s.DeleteEvent(ctx, "e1"))
	require.NoError(t, s.DeleteEvent(ctx, "e2"))

	assert.Empty(t, s.Current().Events)
	assert.Empty(t, s.Error())
}
