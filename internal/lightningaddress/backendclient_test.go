package lightningaddress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeTokenSource struct {
	token string
	err   error
}

func (f *fakeTokenSource) QueryToken(context.Context) (string, error) {
	return f.token, f.err
}

func TestAssignLightningAddressSendsBearerTokenAndDecodesAddress(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/lightning-addresses", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(assignAddressResponse{LightningAddress: "alice@lipa.swiss"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := NewBackendClient(server.URL, &fakeTokenSource{token: "tok-1"})
	address, err := c.AssignLightningAddress(context.Background())
	require.NoError(t, err)
	require.Equal(t, "alice@lipa.swiss", address)
}

func TestAssignLightningAddressPropagatesAuthFailure(t *testing.T) {
	c := NewBackendClient("http://unused.invalid", &fakeTokenSource{err: context.Canceled})
	_, err := c.AssignLightningAddress(context.Background())
	require.Error(t, err)
}

func TestAssignLightningAddressWrapsBackendErrorStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/lightning-addresses", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := NewBackendClient(server.URL, &fakeTokenSource{token: "tok-1"})
	_, err := c.AssignLightningAddress(context.Background())
	require.Error(t, err)
}
