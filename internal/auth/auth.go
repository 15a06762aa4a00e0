// Package auth implements the derived-key challenge/response handshake
// the wallet uses to authenticate itself to its backend services,
// grounded on honey_badger::Auth as wired through
// original_source/src/backend_client.rs and src/lightning_address.rs
// (both take an `Arc<Auth>`/`&AsyncAuth` and call `auth.query_token()`
// before every authenticated request), with the request/response shape
// mirroring the teacher's fiattopup-equivalent challenge flow in
// internal/fiattopup/client.go's requestChallenge/createOrder.
package auth

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/getlipa/lipa-lightning-lib-go/internal/keys"
	"github.com/getlipa/lipa-lightning-lib-go/internal/walleterrors"
	"github.com/getlipa/lipa-lightning-lib-go/pkg/logger"
	"go.uber.org/zap"
)

// tokenExpiryLeeway is subtracted from a token's reported expiry so a
// request in flight never races a token that expires mid-call.
const tokenExpiryLeeway = 30 * time.Second

type challengeResponse struct {
	Challenge string `json:"challenge"`
}

type tokenRequest struct {
	Pubkey    string `json:"pubkey"`
	Challenge string `json:"challenge"`
	Signature string `json:"signature"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
}

// Client performs the challenge/response handshake and caches the
// resulting bearer token, mirroring honey_badger::Auth's query_token:
// request a challenge, sign it with the wallet's derived auth key
// (keys.AuthKeyPath), and exchange the signature for an access token.
type Client struct {
	BackendURL string
	HTTPClient *http.Client
	KeyPair    *keys.DerivedKeyPair

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewClient builds a Client for a wallet whose auth key pair has already
// been derived via keys.DeriveKeyPair(secret, keys.AuthKeyPath).
func NewClient(backendURL string, keyPair *keys.DerivedKeyPair) *Client {
	return &Client{
		BackendURL: backendURL,
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
		KeyPair:    keyPair,
	}
}

// QueryToken returns a valid bearer access token, running the
// challenge/response handshake again if the cached token is missing or
// close to expiry, mirroring Auth::query_token's refresh-on-expiry
// behavior.
func (c *Client) QueryToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.expiresAt.Add(-tokenExpiryLeeway)) {
		return c.token, nil
	}

	challenge, err := c.requestChallenge(ctx)
	if err != nil {
		return "", err
	}
	token, expiresAt, err := c.exchangeChallenge(ctx, challenge)
	if err != nil {
		return "", err
	}
	c.token, c.expiresAt = token, expiresAt
	return token, nil
}

// requestChallenge asks the backend for a fresh challenge string.
func (c *Client) requestChallenge(ctx context.Context) (string, error) {
	var resp challengeResponse
	if err := c.postJSON(ctx, "/v1/auth/challenges", nil, &resp); err != nil {
		return "", err
	}
	return resp.Challenge, nil
}

// exchangeChallenge signs challenge with the derived auth key and trades
// the signature for an access token.
func (c *Client) exchangeChallenge(ctx context.Context, challenge string) (string, time.Time, error) {
	digest := sha256.Sum256([]byte(challenge))
	signature := ecdsa.Sign(c.KeyPair.PrivateKey, digest[:])

	reqBody := tokenRequest{
		Pubkey:    hex.EncodeToString(c.KeyPair.PublicKey.SerializeCompressed()),
		Challenge: challenge,
		Signature: base64.StdEncoding.EncodeToString(signature.Serialize()),
	}

	var resp tokenResponse
	if err := c.postJSON(ctx, "/v1/auth/tokens", reqBody, &resp); err != nil {
		return "", time.Time{}, err
	}
	if resp.AccessToken == "" {
		return "", time.Time{}, walleterrors.NewRuntimeError(walleterrors.CodeAuthServiceUnavailable, "backend returned an empty access token", nil)
	}
	return resp.AccessToken, time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second), nil
}

// postJSON POSTs body as JSON to c.BackendURL+path and decodes a 2xx
// response into target, mapping any other outcome to
// CodeAuthServiceUnavailable.
func (c *Client) postJSON(ctx context.Context, path string, body, target any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode auth request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BackendURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logger.Error("auth request failed", zap.String("path", path), zap.Error(err))
		return walleterrors.NewRuntimeError(walleterrors.CodeAuthServiceUnavailable, "auth request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error("auth service returned unexpected status", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return walleterrors.NewRuntimeError(walleterrors.CodeAuthServiceUnavailable,
			fmt.Sprintf("auth service returned status %d", resp.StatusCode), nil)
	}

	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return walleterrors.NewRuntimeError(walleterrors.CodeAuthServiceUnavailable, "failed to decode auth response", err)
	}
	return nil
}
