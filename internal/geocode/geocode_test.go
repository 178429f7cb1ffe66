package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vibelink/vibelink-server/internal/model"
)

func TestRestClient_Reverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/reverse", r.URL.Path)
		require.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		require.NotEmpty(t, r.URL.Query().Get("lat"))
		require.NotEmpty(t, r.URL.Query().Get("lon"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name":"Shibuya, Tokyo, Japan"}`))
	}))
	defer srv.Close()

	c := NewRestClient(srv.URL)
	label, err := c.Reverse(context.Background(), model.Point{Longitude: 139.7, Latitude: 35.65})
	require.NoError(t, err)
	require.Equal(t, "Shibuya, Tokyo, Japan", label)
}

func TestRestClient_ReverseServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewRestClient(srv.URL)
	_, err := c.Reverse(context.Background(), model.Point{})
	require.Error(t, err)
}

func TestNoop_Reverse(t *testing.T) {
	label, err := Noop{}.Reverse(context.Background(), model.Point{Longitude: 1, Latitude: 2})
	require.NoError(t, err)
	require.Empty(t, label)
}
