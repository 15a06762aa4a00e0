// Package receive implements the BOLT11 invoice-creation pipeline (spec
// 4.5), grounded on original_source/src/lightning/bolt11.rs's
// Bolt11::create.
package receive

import (
	"context"
	"time"

	"github.com/getlipa/lipa-lightning-lib-go/internal/analytics"
	"github.com/getlipa/lipa-lightning-lib-go/internal/lsp"
	"github.com/getlipa/lipa-lightning-lib-go/internal/money"
	"github.com/getlipa/lipa-lightning-lib-go/internal/sdkadapter"
	"github.com/getlipa/lipa-lightning-lib-go/internal/store"
	"github.com/getlipa/lipa-lightning-lib-go/internal/walleterrors"
)

// LSPQuoter is the subset of *lsp.Client the receive pipeline needs to
// negotiate a just-in-time channel-opening fee quote when the caller
// doesn't already have one, narrowed to an interface so tests can fake
// it without a live LSP connection.
type LSPQuoter interface {
	QueryInfo(ctx context.Context) (*lsp.Info, error)
}

// Pipeline runs the invoice-creation flow, wired to the store and
// analytics interceptor the same way send.Pipeline is.
type Pipeline struct {
	SDK          sdkadapter.SDK
	LSP          LSPQuoter // nil means every invoice is created fee-free (no JIT channel negotiation)
	Store        *store.Store
	Analytics    *analytics.Interceptor
	ExchangeRate func() *money.ExchangeRate
}

// Create requests a BOLT11 invoice for amountSat (0 for an open-amount
// invoice, where the embedded SDK supports it), persists the invoice's
// bookkeeping row, and reports the request to analytics.
//
// feeParams is the just-in-time channel-opening fee the caller already
// quoted from the LSP; when nil, Create asks p.LSP for the LSP's current
// fee schedule itself, mirroring bolt11.rs's Bolt11::create fallback to
// query_lsp_fee when no caller-supplied LspFee is passed in.
//
// Failure policy: an SDK error maps to CodeNodeUnavailable (the node
// couldn't be reached to mint the invoice); a failure to persist the
// created invoice is a PermanentFailure, since the invoice would then be
// untracked by the activity multiplexer (spec 4.8) despite having been
// handed to the user, mirroring bolt11.rs's
// map_to_permanent_failure("Failed to persist created invoice").
func (p *Pipeline) Create(ctx context.Context, amountSat uint64, description string, requestCurrency string, feeParams *sdkadapter.OpeningFeeParams) (*sdkadapter.InvoiceDetails, error) {
	if feeParams == nil && p.LSP != nil {
		info, err := p.LSP.QueryInfo(ctx)
		if err != nil {
			return nil, walleterrors.NewRuntimeError(walleterrors.CodeRemoteServiceUnavailable, "failed to query LSP fee schedule", err)
		}
		feeParams = &sdkadapter.OpeningFeeParams{
			MinMsat:               info.Fee.ChannelMinimumFeeMsat,
			ProportionalPermyriad: info.Fee.ChannelFeePermyriad,
		}
	}

	details, bolt11, openingFeeMsat, err := p.SDK.CreateInvoice(ctx, amountSat*1000, description, feeParams)
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to create an invoice", err)
	}

	if err := p.Store.StorePaymentInfo(ctx, store.StoredPaymentMetadata{
		PaymentID:    details.PaymentHash,
		PaymentState: store.PaymentStateCreated,
		Description:  description,
		Invoice:      bolt11,
		CreatedAt:    time.Now(),
	}); err != nil {
		return nil, walleterrors.NewPermanentFailure("failed to persist payment metadata", err)
	}

	var amountMsat uint64
	if details.AmountMsat != nil {
		amountMsat = *details.AmountMsat
	}
	if err := p.Store.StoreCreatedInvoice(ctx, store.CreatedInvoice{
		PaymentHash:    details.PaymentHash,
		Invoice:        bolt11,
		AmountMsat:     amountMsat,
		OpeningFeeMsat: openingFeeMsat,
		Description:    description,
		CreatedAt:      time.Now(),
		ExpiresAt:      details.ExpiresAt,
	}); err != nil {
		return nil, walleterrors.NewPermanentFailure("failed to persist created invoice", err)
	}

	var rate *money.ExchangeRate
	if p.ExchangeRate != nil {
		rate = p.ExchangeRate()
	}
	var enteredAmount *uint64
	if amountSat != 0 {
		m := amountSat * 1000
		enteredAmount = &m
	}
	p.Analytics.RequestInitiated(details.PaymentHash, enteredAmount, requestCurrency, rate)

	return details, nil
}
