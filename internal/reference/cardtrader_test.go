package reference

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sjsage522/cardwatch/internal/model"
	apperrors "sjsage522/cardwatch/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, status int, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestLowestSellableFiltersHubSellers(t *testing.T) {
	server := newServer(t, http.StatusOK, `{"12345": [
		{"price": {"cents": 850}, "user": {"can_sell_via_hub": false}},
		{"price": {"cents": 1025}, "user": {"can_sell_via_hub": true}},
		{"price": {"cents": 1200}, "user": {"can_sell_via_hub": true}},
		{"price": {"cents": 990}, "user": {}}
	]}`, func(r *http.Request) {
		assert.Equal(t, "/marketplace/products", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "12345", q.Get("blueprint_id"))
		assert.Equal(t, "true", q.Get("foil"))
		assert.Equal(t, "en", q.Get("language"))
		assert.Equal(t, "Near Mint", q.Get("condition"))
	})

	client := NewCardTrader(server.URL+"/", "secret", time.Second)
	price, err := client.LowestSellable(context.Background(), 12345, model.DefaultFilter)
	require.NoError(t, err)
	assert.True(t, price.Valid)
	assert.Equal(t, "10.25", price.String())
}

func TestLowestSellableNoQualifyingEntry(t *testing.T) {
	server := newServer(t, http.StatusOK, `{"12345": [
		{"price": {"cents": 100}, "user": {"can_sell_via_hub": false}}
	]}`, nil)

	client := NewCardTrader(server.URL, "secret", time.Second)
	price, err := client.LowestSellable(context.Background(), 12345, model.DefaultFilter)
	require.NoError(t, err)
	assert.False(t, price.Valid, "no hub seller means absence, not zero")
}

func TestLowestSellableMissingBlueprint(t *testing.T) {
	server := newServer(t, http.StatusOK, `{}`, nil)

	client := NewCardTrader(server.URL, "secret", time.Second)
	price, err := client.LowestSellable(context.Background(), 1, model.DefaultFilter)
	require.NoError(t, err)
	assert.False(t, price.Valid)
}

func TestLowestSellableOmitsEmptyCondition(t *testing.T) {
	server := newServer(t, http.StatusOK, `{}`, func(r *http.Request) {
		_, ok := r.URL.Query()["condition"]
		assert.False(t, ok)
	})

	client := NewCardTrader(server.URL, "secret", time.Second)
	_, err := client.LowestSellable(context.Background(), 1, model.Filter{Foil: "false", Language: "es"})
	require.NoError(t, err)
}

func TestLowestSellableErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error": "bad token"}`},
		{"server error", http.StatusInternalServerError, ``},
		{"malformed body", http.StatusOK, `[not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newServer(t, tt.status, tt.body, nil)
			client := NewCardTrader(server.URL, "secret", time.Second)

			price, err := client.LowestSellable(context.Background(), 1, model.DefaultFilter)
			require.Error(t, err)
			assert.False(t, price.Valid)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeSourceUnavailable))
		})
	}
}

func TestLowestSellableTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewCardTraderWithClient(server.URL, "secret", 50*time.Millisecond, http.DefaultClient)
	_, err := client.LowestSellable(context.Background(), 1, model.DefaultFilter)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeSourceUnavailable))
}
