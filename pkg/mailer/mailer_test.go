package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DisabledWithoutURL(t *testing.T) {
	assert.Nil(t, New(Config{}))
}

func TestSend_PostsMessage(t *testing.T) {
	var got Message
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"m-1"}`))
	}))
	defer srv.Close()

	m := New(Config{APIURL: srv.URL, APIKey: "k", From: "noreply@shop.test"})
	require.NoError(t, m.Send(context.Background(), "ada@shop.test", "Weekly schedule", "<p>hi</p>"))

	assert.Equal(t, "Bearer k", auth)
	assert.Equal(t, "noreply@shop.test", got.From)
	assert.Equal(t, "ada@shop.test", got.To)
	assert.Equal(t, "<p>hi</p>", got.HTML)
}

func TestSend_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"down"}`))
	}))
	defer srv.Close()

	m := New(Config{APIURL: srv.URL})
	err := m.Send(context.Background(), "ada@shop.test", "s", "b")
	assert.Error(t, err)

	assert.Error(t, m.Send(context.Background(), "", "s", "b"))
}
