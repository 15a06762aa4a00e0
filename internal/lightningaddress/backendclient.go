package lightningaddress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/getlipa/lipa-lightning-lib-go/internal/walleterrors"
	"github.com/getlipa/lipa-lightning-lib-go/pkg/logger"
	"go.uber.org/zap"
)

// TokenSource returns a valid bearer access token for the wallet's
// backend, satisfied by *internal/auth.Client.QueryToken.
type TokenSource interface {
	QueryToken(ctx context.Context) (string, error)
}

type assignAddressResponse struct {
	LightningAddress string `json:"lightning_address"`
}

// BackendClient is the concrete RegisterClient: it authenticates with a
// bearer token obtained from Auth and calls the backend's
// address-assignment endpoint, mirroring
// original_source/src/lightning_address.rs's use of pigeon's
// assign_lightning_address behind an authenticated session (pigeon's
// wire format isn't in the example pack, so the request/response shape
// here is reconstructed from the same REST conventions as
// internal/fiattopup.Client and internal/auth.Client).
type BackendClient struct {
	BackendURL string
	HTTPClient *http.Client
	Auth       TokenSource
}

// NewBackendClient builds a BackendClient whose requests are
// authenticated via auth's cached challenge/response token.
func NewBackendClient(backendURL string, auth TokenSource) *BackendClient {
	return &BackendClient{
		BackendURL: backendURL,
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
		Auth:       auth,
	}
}

// AssignLightningAddress requests a freshly assigned lightning address
// from the backend, satisfying RegisterClient.
func (c *BackendClient) AssignLightningAddress(ctx context.Context) (string, error) {
	token, err := c.Auth.QueryToken(ctx)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BackendURL+"/v1/lightning-addresses", bytes.NewReader(nil))
	if err != nil {
		return "", fmt.Errorf("failed to create lightning-address request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logger.Error("lightning-address assignment request failed", zap.Error(err))
		return "", walleterrors.NewRuntimeError(walleterrors.CodeAuthServiceUnavailable, "lightning-address assignment request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error("backend returned unexpected status assigning lightning address", zap.Int("status", resp.StatusCode))
		return "", walleterrors.NewRuntimeError(walleterrors.CodeAuthServiceUnavailable,
			fmt.Sprintf("backend returned status %d assigning a lightning address", resp.StatusCode), nil)
	}

	var decoded assignAddressResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeAuthServiceUnavailable, "failed to decode lightning-address response", err)
	}
	if decoded.LightningAddress == "" {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeAuthServiceUnavailable, "backend returned an empty lightning address", nil)
	}
	return decoded.LightningAddress, nil
}
