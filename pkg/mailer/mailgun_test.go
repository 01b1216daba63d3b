package mailer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailgunSendReusesClient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/mg.example.com/messages"), "path %s", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "api", user)
		assert.Equal(t, "key-123", pass)

		assert.Equal(t, "Tracker <no-reply@example.com>", r.FormValue("from"))
		assert.Equal(t, "a@example.com", r.FormValue("to"))
		assert.Equal(t, "Welcome", r.FormValue("subject"))
		assert.Equal(t, "hi", r.FormValue("text"))
		if calls.Load() == 1 {
			assert.Equal(t, "<p>hi</p>", r.FormValue("html"))
		} else {
			assert.Empty(t, r.FormValue("html"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"<1@mg.example.com>","message":"Queued. Thank you."}`))
	}))
	defer srv.Close()

	m := NewMailgun("mg.example.com", "key-123", "Tracker <no-reply@example.com>", srv.URL+"/v3")
	require.NoError(t, m.Send(context.Background(), "a@example.com", "Welcome", "hi", "<p>hi</p>"))
	require.NoError(t, m.Send(context.Background(), "a@example.com", "Welcome", "hi", ""))
	assert.Equal(t, int32(2), calls.Load())
}

func TestMailgunSendSurfacesRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`Forbidden`))
	}))
	defer srv.Close()

	m := NewMailgun("mg.example.com", "bad", "no-reply@example.com", srv.URL+"/v3")
	assert.Error(t, m.Send(context.Background(), "a@example.com", "s", "t", ""))
}

func TestMailgunSendHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMailgun("mg.example.com", "key", "no-reply@example.com", srv.URL+"/v3")
	assert.Error(t, m.Send(ctx, "a@example.com", "s", "t", ""))
}
