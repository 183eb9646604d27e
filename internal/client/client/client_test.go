package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SendsTokenAndDecodes(t *testing.T) {
	var gotAuth, gotCT string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/timelines", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotCT = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"t1","name":"Trip"}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second)
	c.SetToken("tok")

	var out struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	err := c.Do(context.Background(), http.MethodPost, "/timelines", map[string]string{"name": "Trip"}, &out)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "application/json", gotCT)
	assert.Equal(t, "Trip", gotBody["name"])
	assert.Equal(t, "t1", out.ID)
}

func TestDo_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		is      error
	}{
		{name: "server message", status: http.StatusBadRequest, body: `{"error":"Title and start date are required"}`, message: "Title and start date are required"},
		{name: "no body", status: http.StatusBadGateway, body: ``, message: "HTTP 502"},
		{name: "not json", status: http.StatusInternalServerError, body: `oops`, message: "HTTP 500"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"Access token required"}`, message: "Access token required", is: ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, body: `{"error":"Token expired"}`, message: "Token expired", is: ErrForbidden},
		{name: "not found", status: http.StatusNotFound, body: `{"error":"Timeline not found"}`, message: "Timeline not found", is: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			err := New(srv.URL, time.Second).Do(context.Background(), http.MethodGet, "/x", nil, nil)
			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestDo_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(url, time.Second).Do(context.Background(), http.MethodGet, "/health", nil, nil)
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
}

func TestDo_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := New(srv.URL, 0).Do(ctx, http.MethodGet, "/slow", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, IsUnavailable(err))
}

func TestUploadImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/images/upload", r.URL.Path)
		file, hdr, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)

		assert.Equal(t, "photo.png", hdr.Filename)
		assert.Equal(t, "image/png", hdr.Header.Get("Content-Type"))
		assert.Equal(t, []byte{1, 2, 3}, data)

		_, _ = io.WriteString(w, `{"filename":"event-abc.png","originalName":"photo.png","mimeType":"image/png","size":3}`)
	}))
	defer srv.Close()

	res, err := New(srv.URL, time.Second).UploadImage(context.Background(), "photo.png", "image/png", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "event-abc.png", res.Filename)
	assert.Equal(t, int64(3), res.Size)
}

func TestFetch_ReturnsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/gif")
		_, _ = w.Write([]byte("GIF"))
	}))
	defer srv.Close()

	data, ct, err := New(srv.URL, time.Second).Fetch(context.Background(), "/images/a.gif")
	require.NoError(t, err)
	assert.Equal(t, "image/gif", ct)
	assert.Equal(t, []byte("GIF"), data)
}

func TestLogin_StoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			_, _ = io.WriteString(w, `{"user":{"id":"u1","username":"alice"},"token":"t-1"}`)
		case "/api/auth/me":
			if r.Header.Get("Authorization") != "Bearer t-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = io.WriteString(w, `{"id":"u1","username":"alice","email":"a@example.com"}`)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	res, err := c.Login(context.Background(), "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u1", res.User.ID)
	assert.Equal(t, "t-1", c.Token())

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", me.Email)
}
