package send

import (
	"context"
	"errors"
	"time"

	"github.com/getlipa/lipa-lightning-lib-go/internal/analytics"
	"github.com/getlipa/lipa-lightning-lib-go/internal/money"
	"github.com/getlipa/lipa-lightning-lib-go/internal/sdkadapter"
	"github.com/getlipa/lipa-lightning-lib-go/internal/store"
	"github.com/getlipa/lipa-lightning-lib-go/internal/walleterrors"
)

// Pipeline runs the outgoing BOLT11 payment flow (spec 4.6), grounded on
// original_source/src/lightning/bolt11.rs's Bolt11, wired to the store and
// analytics interceptor the way the teacher's internal/lnd.LightningClient
// is wired to internal/card.Service.
type Pipeline struct {
	SDK          sdkadapter.SDK
	Store        *store.Store
	Analytics    *analytics.Interceptor
	ExchangeRate func() *money.ExchangeRate
}

// Pay pays invoiceDetails, which must already carry an amount. It is
// exactly PayOpenAmount with amountSat set to the invoice's own amount,
// mirroring Bolt11::pay's delegation to pay_open_amount.
func (p *Pipeline) Pay(ctx context.Context, invoiceDetails sdkadapter.InvoiceDetails, metadata store.StoredPaymentMetadata) error {
	return p.PayOpenAmount(ctx, invoiceDetails, 0, metadata)
}

// PayOpenAmount pays invoiceDetails for amountSat (0 to use the invoice's
// own embedded amount), following the preflight order from
// Bolt11::pay_open_amount: store metadata, read node state, reject
// self-pay, report initiation to analytics, call the SDK, classify the
// outcome.
func (p *Pipeline) PayOpenAmount(ctx context.Context, invoiceDetails sdkadapter.InvoiceDetails, amountSat uint64, metadata store.StoredPaymentMetadata) error {
	var amountMsat uint64
	if amountSat != 0 {
		amountMsat = amountSat * 1000
	} else if invoiceDetails.AmountMsat != nil {
		amountMsat = *invoiceDetails.AmountMsat
	}

	metadata.PaymentID = invoiceDetails.PaymentHash
	if metadata.PaymentState == "" {
		metadata.PaymentState = store.PaymentStateCreated
	}
	if metadata.CreatedAt.IsZero() {
		metadata.CreatedAt = time.Now()
	}
	if err := p.Store.StorePaymentInfo(ctx, metadata); err != nil {
		return walleterrors.NewPermanentFailure("failed to persist payment metadata", err)
	}

	nodeState, err := p.SDK.NodeState(ctx)
	if err != nil {
		return walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to read node info", err)
	}
	if nodeState.NodeID != "" && nodeState.NodeID == invoiceDetails.Payee {
		return walleterrors.NewRuntimeError(walleterrors.CodePayingToSelf, "a locally issued invoice tried to be paid", nil)
	}

	var rate *money.ExchangeRate
	if p.ExchangeRate != nil {
		rate = p.ExchangeRate()
	}
	var invoiceAmount *uint64
	if invoiceDetails.AmountMsat != nil {
		invoiceAmount = invoiceDetails.AmountMsat
	}
	var paidAmount *uint64
	if amountMsat != 0 {
		paidAmount = &amountMsat
	}
	p.Analytics.PayInitiated(invoiceDetails.PaymentHash, invoiceAmount, paidAmount, "", time.Now(), rate)

	maxFeeMsat := uint64(0) // the max fee cap is advisory to the UI; the SDK enforces its own routing budget

	payment, err := p.SDK.PayInvoice(ctx, invoiceDetails.Invoice, amountMsat, maxFeeMsat)
	if err != nil {
		var sendErr *sdkadapter.SendPaymentError
		if errors.As(err, &sendErr) && reportsSendIssue(sendErr.Kind) {
			p.Analytics.PayFailed(invoiceDetails.PaymentHash, sendErr.Message)
		}
		return mapSendPaymentError(sendErr, err)
	}

	p.Analytics.PaySucceeded(invoiceDetails.PaymentHash, payment.FeeMsat, time.Now())
	return nil
}

// reportsSendIssue mirrors bolt11.rs's match arm deciding which
// SendPaymentError variants are worth reporting to the analytics sink for
// fleet-wide diagnosis.
func reportsSendIssue(kind sdkadapter.SendPaymentErrorKind) bool {
	switch kind {
	case sdkadapter.SendPaymentGeneric,
		sdkadapter.SendPaymentFailed,
		sdkadapter.SendPaymentTimeout,
		sdkadapter.SendPaymentRouteNotFound,
		sdkadapter.SendPaymentRouteTooExpensive,
		sdkadapter.SendPaymentServiceConnectivity:
		return true
	default:
		return false
	}
}

// mapSendPaymentError translates a SendPaymentError into the wallet's
// PayErrorCode taxonomy, grounded on errors::map_send_payment_error.
func mapSendPaymentError(sendErr *sdkadapter.SendPaymentError, raw error) error {
	if sendErr == nil {
		return walleterrors.NewRuntimeError(walleterrors.CodeGenericError, "payment failed", raw)
	}
	switch sendErr.Kind {
	case sdkadapter.SendPaymentFailed:
		return walleterrors.NewRuntimeError(walleterrors.CodePaymentFailed, sendErr.Message, sendErr)
	case sdkadapter.SendPaymentTimeout:
		return walleterrors.NewRuntimeError(walleterrors.CodePaymentTimeout, sendErr.Message, sendErr)
	case sdkadapter.SendPaymentRouteNotFound:
		return walleterrors.NewRuntimeError(walleterrors.CodeNoRouteFound, sendErr.Message, sendErr)
	case sdkadapter.SendPaymentRouteTooExpensive:
		return walleterrors.NewRuntimeError(walleterrors.CodeRouteTooExpensive, sendErr.Message, sendErr)
	case sdkadapter.SendPaymentServiceConnectivity:
		return walleterrors.NewRuntimeError(walleterrors.CodeServiceConnectivity, sendErr.Message, sendErr)
	case sdkadapter.SendPaymentInvalidInvoice:
		return walleterrors.NewInvalidInput(sendErr.Message)
	default:
		return walleterrors.NewRuntimeError(walleterrors.CodeGenericError, sendErr.Message, sendErr)
	}
}
