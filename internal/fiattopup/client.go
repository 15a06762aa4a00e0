// Package fiattopup implements registering a SEPA fiat top-up with Pocket,
// grounded on original_source/src/fiat_topup.rs's PocketClient.
package fiattopup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/getlipa/lipa-lightning-lib-go/internal/sdkadapter"
	"github.com/getlipa/lipa-lightning-lib-go/internal/store"
	"github.com/getlipa/lipa-lightning-lib-go/internal/walleterrors"
	"github.com/getlipa/lipa-lightning-lib-go/pkg/logger"
	"go.uber.org/zap"
)

// Currency is a topup settlement currency, mirroring TopupCurrency.
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyCHF Currency = "CHF"
	CurrencyGBP Currency = "GBP"
)

const confirmationMessagePrefix = "I confirm my bitcoin wallet. ["

// Client talks to Pocket's challenge/order endpoints and persists the
// resulting SEPA addressing details, mirroring PocketClient.
type Client struct {
	PocketURL  string
	HTTPClient *http.Client
	SDK        sdkadapter.SDK
	Store      *store.Store
}

// NewClient builds a Client with the teacher's default 20s request timeout.
func NewClient(pocketURL string, sdk sdkadapter.SDK, s *store.Store) *Client {
	return &Client{
		PocketURL:  pocketURL,
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
		SDK:        sdk,
		Store:      s,
	}
}

type challengeResponse struct {
	ID          string  `json:"id"`
	Token       string  `json:"token"`
	ExpiresOn   *string `json:"expires_on"`
	CompletedOn *string `json:"completed_on"`
}

type paymentMethodRequest struct {
	Currency    Currency `json:"currency"`
	DebitorIBAN string   `json:"debitor_iban"`
}

type payoutMethod struct {
	NodePubkey string `json:"node_pubkey"`
	Message    string `json:"message"`
	Signature  string `json:"signature"`
}

type createOrderRequest struct {
	Active       bool                 `json:"active"`
	AffiliateID  *string              `json:"affiliate_id,omitempty"`
	PaymentMethod paymentMethodRequest `json:"payment_method"`
	PayoutMethod  payoutMethod         `json:"payout_method"`
}

type paymentMethodResponse struct {
	CreditorReference      string `json:"creditor_reference"`
	CreditorIBAN           string `json:"creditor_iban"`
	CreditorBankName       string `json:"creditor_bank_name"`
	CreditorBankStreet     string `json:"creditor_bank_street"`
	CreditorBankPostalCode string `json:"creditor_bank_postal_code"`
	CreditorBankTown       string `json:"creditor_bank_town"`
	CreditorBankCountry    string `json:"creditor_bank_country"`
	CreditorBankBIC        string `json:"creditor_bank_bic"`
	CreditorName           string `json:"creditor_name"`
	CreditorStreet         string `json:"creditor_street"`
	CreditorPostalCode     string `json:"creditor_postal_code"`
	CreditorTown           string `json:"creditor_town"`
	CreditorCountry        string `json:"creditor_country"`
}

type createOrderResponse struct {
	ID            string                `json:"id"`
	PaymentMethod paymentMethodResponse `json:"payment_method"`
}

// Register registers a new Pocket fiat top-up for debitorIBAN, persists the
// resulting SEPA addressing details keyed by paymentID, and returns them.
// Mirrors register_pocket_fiat_topup: request_challenge() followed by
// create_order().
func (c *Client) Register(ctx context.Context, paymentID string, currency Currency, debitorIBAN string, affiliateID *string) (*store.FiatTopupInfo, error) {
	challenge, err := c.requestChallenge(ctx)
	if err != nil {
		return nil, err
	}

	order, err := c.createOrder(ctx, challenge.Token, currency, debitorIBAN, affiliateID)
	if err != nil {
		return nil, err
	}

	info := store.FiatTopupInfo{
		PaymentID:              paymentID,
		OrderID:                order.ID,
		DebitorIBAN:            debitorIBAN,
		CreditorReference:      order.PaymentMethod.CreditorReference,
		CreditorIBAN:           order.PaymentMethod.CreditorIBAN,
		CreditorBankName:       order.PaymentMethod.CreditorBankName,
		CreditorBankStreet:     order.PaymentMethod.CreditorBankStreet,
		CreditorBankPostalCode: order.PaymentMethod.CreditorBankPostalCode,
		CreditorBankTown:       order.PaymentMethod.CreditorBankTown,
		CreditorBankCountry:    order.PaymentMethod.CreditorBankCountry,
		CreditorBankBIC:        order.PaymentMethod.CreditorBankBIC,
		CreditorName:           order.PaymentMethod.CreditorName,
		CreditorStreet:         order.PaymentMethod.CreditorStreet,
		CreditorPostalCode:     order.PaymentMethod.CreditorPostalCode,
		CreditorTown:           order.PaymentMethod.CreditorTown,
		CreditorCountry:        order.PaymentMethod.CreditorCountry,
	}
	if err := c.Store.StoreFiatTopupInfo(ctx, info); err != nil {
		return nil, err
	}
	return &info, nil
}

// requestChallenge asks Pocket for a registration challenge, mirroring
// PocketClient::request_challenge.
func (c *Client) requestChallenge(ctx context.Context) (*challengeResponse, error) {
	var resp challengeResponse
	if err := c.postJSON(ctx, "/v1/challenges", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// createOrder signs the challenge token with the node's key and submits the
// order, mirroring PocketClient::create_order.
func (c *Client) createOrder(ctx context.Context, token string, currency Currency, debitorIBAN string, affiliateID *string) (*createOrderResponse, error) {
	message := fmt.Sprintf("%s%s]", confirmationMessagePrefix, token)
	signature, err := c.SDK.SignMessage(ctx, message)
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeOfferServiceUnavailable, "failed to sign pocket confirmation message", err)
	}
	nodeState, err := c.SDK.NodeState(ctx)
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeOfferServiceUnavailable, "failed to fetch node pubkey", err)
	}

	reqBody := createOrderRequest{
		Active:      true,
		AffiliateID: affiliateID,
		PaymentMethod: paymentMethodRequest{
			Currency:    currency,
			DebitorIBAN: debitorIBAN,
		},
		PayoutMethod: payoutMethod{
			NodePubkey: nodeState.NodeID,
			Message:    message,
			Signature:  signature,
		},
	}

	var resp createOrderResponse
	if err := c.postJSON(ctx, "/v1/orders", reqBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// postJSON POSTs body as JSON to c.PocketURL+path and decodes a 201
// response into target, mapping any other outcome to
// CodeOfferServiceUnavailable, mirroring both request_challenge and
// create_order's identical status-code handling.
func (c *Client) postJSON(ctx context.Context, path string, body, target any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode pocket request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.PocketURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create pocket request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logger.Error("pocket request failed", zap.String("path", path), zap.Error(err))
		return walleterrors.NewRuntimeError(walleterrors.CodeOfferServiceUnavailable, "pocket request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		logger.Error("pocket returned unexpected status", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return walleterrors.NewRuntimeError(walleterrors.CodeOfferServiceUnavailable,
			fmt.Sprintf("pocket returned status %d", resp.StatusCode), nil)
	}

	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return walleterrors.NewRuntimeError(walleterrors.CodeOfferServiceUnavailable, "failed to decode pocket response", err)
	}
	return nil
}
