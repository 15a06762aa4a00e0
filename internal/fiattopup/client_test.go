package fiattopup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getlipa/lipa-lightning-lib-go/internal/sdkadapter"
	"github.com/getlipa/lipa-lightning-lib-go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir() + "/wallet.sqlite3")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type fakeTopupSDK struct {
	sdkadapter.SDK
	nodeID  string
	signErr error
}

func (f *fakeTopupSDK) SignMessage(context.Context, string) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return "deadbeef-signature", nil
}

func (f *fakeTopupSDK) NodeState(context.Context) (*sdkadapter.NodeState, error) {
	return &sdkadapter.NodeState{NodeID: f.nodeID}, nil
}

func TestRegisterStoresSepaDetailsOnSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/challenges", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(challengeResponse{ID: "chal-1", Token: "tok-1"})
	})
	mux.HandleFunc("/v1/orders", func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Active)
		assert.Equal(t, "node-pubkey", req.PayoutMethod.NodePubkey)
		assert.Equal(t, "deadbeef-signature", req.PayoutMethod.Signature)
		assert.Equal(t, "I confirm my bitcoin wallet. [tok-1]", req.PayoutMethod.Message)
		assert.Equal(t, CurrencyEUR, req.PaymentMethod.Currency)
		assert.Equal(t, "CH9300762011623852957", req.PaymentMethod.DebitorIBAN)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(createOrderResponse{
			ID: "order-1",
			PaymentMethod: paymentMethodResponse{
				CreditorIBAN: "DE89370400440532013000",
				CreditorName: "Pocket GmbH",
			},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	s := openTestStore(t)
	client := NewClient(server.URL, &fakeTopupSDK{nodeID: "node-pubkey"}, s)

	info, err := client.Register(context.Background(), "payment-1", CurrencyEUR, "CH9300762011623852957", nil)
	require.NoError(t, err)
	assert.Equal(t, "order-1", info.OrderID)
	assert.Equal(t, "DE89370400440532013000", info.CreditorIBAN)
	assert.Equal(t, "Pocket GmbH", info.CreditorName)

	stored, err := s.GetFiatTopupInfo(context.Background(), "payment-1")
	require.NoError(t, err)
	assert.Equal(t, "order-1", stored.OrderID)
}

func TestRegisterFailsWhenChallengeStatusIsNotCreated(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/challenges", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(server.URL, &fakeTopupSDK{nodeID: "node-pubkey"}, openTestStore(t))
	_, err := client.Register(context.Background(), "payment-1", CurrencyEUR, "CH9300762011623852957", nil)
	require.Error(t, err)
}

func TestRegisterFailsWhenOrderStatusIsNotCreated(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/challenges", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(challengeResponse{ID: "chal-1", Token: "tok-1"})
	})
	mux.HandleFunc("/v1/orders", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(server.URL, &fakeTopupSDK{nodeID: "node-pubkey"}, openTestStore(t))
	_, err := client.Register(context.Background(), "payment-1", CurrencyEUR, "CH9300762011623852957", nil)
	require.Error(t, err)
}

func TestRegisterFailsWhenSigningFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/challenges", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(challengeResponse{ID: "chal-1", Token: "tok-1"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(server.URL, &fakeTopupSDK{nodeID: "node-pubkey", signErr: assert.AnError}, openTestStore(t))
	_, err := client.Register(context.Background(), "payment-1", CurrencyEUR, "CH9300762011623852957", nil)
	require.Error(t, err)
}
