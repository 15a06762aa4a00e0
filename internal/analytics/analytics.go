// Package analytics implements a fire-and-forget event interceptor that
// reports payment lifecycle milestones to a remote analytics sink,
// grounded on original_source/src/analytics.rs's AnalyticsInterceptor.
// Every report is best-effort: a failure is logged and swallowed, never
// propagated to the caller, since analytics must never affect payment
// outcomes.
package analytics

import (
	"context"
	"strings"
	"time"

	"github.com/getlipa/lipa-lightning-lib-go/internal/money"
	"github.com/getlipa/lipa-lightning-lib-go/pkg/logger"
	"go.uber.org/zap"
)

// Config toggles whether events are actually sent, grounded on
// analytics.rs's AnalyticsConfig enum.
type Config string

const (
	Enabled  Config = "enabled"
	Disabled Config = "disabled"
)

// PaymentSource records how a payment was initiated (scanned QR, pasted
// invoice, LNURL, lightning address, ...), mirroring parrot::PaymentSource.
type PaymentSource string

// FailureReason classifies a failed payment for fleet-wide diagnosis,
// mirroring parrot::PayFailureReason.
type FailureReason string

const (
	FailureReasonNoRoute FailureReason = "no_route"
	FailureReasonUnknown FailureReason = "unknown"
)

// ClassifyFailure maps a raw SDK error string to a FailureReason,
// grounded verbatim on analytics.rs's map_error_to_failure_reason.
func ClassifyFailure(errMessage string) FailureReason {
	if strings.HasPrefix(errMessage, "Route not found:") {
		return FailureReasonNoRoute
	}
	return FailureReasonUnknown
}

// Event is the sum type of everything this package can report. Exactly
// one of the Pay*/Request* fields is populated per call.
type Event struct {
	Kind EventKind

	PayInitiated      *PayInitiatedEvent
	PaySucceeded      *PaySucceededEvent
	PayFailed         *PayFailedEvent
	RequestInitiated  *RequestInitiatedEvent
	RequestSucceeded  *RequestSucceededEvent
}

type EventKind string

const (
	KindPayInitiated     EventKind = "pay_initiated"
	KindPaySucceeded     EventKind = "pay_succeeded"
	KindPayFailed        EventKind = "pay_failed"
	KindRequestInitiated EventKind = "request_initiated"
	KindRequestSucceeded EventKind = "request_succeeded"
)

type PayInitiatedEvent struct {
	PaymentHash           string
	PaidAmountMsat        uint64
	RequestedAmountMsat   *uint64
	SatsPerUserCurrency   *float64
	Source                PaymentSource
	UserCurrency          string
	ProcessStartedAt      time.Time
	ExecutedAt            time.Time
}

type PaySucceededEvent struct {
	PaymentHash    string
	LNFeesPaidMsat uint64
	ConfirmedAt    time.Time
}

type PayFailedEvent struct {
	PaymentHash string
	Reason      FailureReason
	FailedAt    time.Time
}

type RequestInitiatedEvent struct {
	PaymentHash         string
	EnteredAmountMsat   *uint64
	SatsPerUserCurrency *float64
	UserCurrency        string
	RequestCurrency     string
	CreatedAt           time.Time
}

type RequestSucceededEvent struct {
	PaymentHash          string
	PaidAmountMsat       uint64
	ChannelOpeningFeeMsat uint64
	ReceivedAt           time.Time
}

// Client is the boundary to the remote analytics sink (out of scope per
// spec.md Non-goals on concrete third-party analytics backends).
type Client interface {
	ReportEvent(ctx context.Context, event Event) error
}

// Interceptor reports payment lifecycle events to a Client, never
// blocking the caller and never surfacing a reporting failure.
type Interceptor struct {
	client       Client
	userCurrency func() string
	config       Config
}

// NewInterceptor builds an Interceptor. userCurrency is called at report
// time so the interceptor always reflects the user's current fiat
// currency preference rather than a snapshot taken at construction.
func NewInterceptor(client Client, userCurrency func() string, config Config) *Interceptor {
	return &Interceptor{client: client, userCurrency: userCurrency, config: config}
}

func (i *Interceptor) enabled() bool { return i.config == Enabled }

func (i *Interceptor) report(event Event) {
	if !i.enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := i.client.ReportEvent(ctx, event); err != nil {
			logger.Warn("failed to report an analytics event", zap.Error(err))
		}
	}()
}

// PayInitiated reports that a payment attempt started, grounded on
// AnalyticsInterceptor::pay_initiated. invoiceAmountMsat is the amount
// encoded on the invoice itself, if any (nil for an open-amount invoice).
func (i *Interceptor) PayInitiated(paymentHash string, invoiceAmountMsat *uint64, paidAmountMsat *uint64, source PaymentSource, processStartedAt time.Time, rate *money.ExchangeRate) {
	if !i.enabled() {
		return
	}

	amount := paidAmountMsat
	if amount == nil {
		amount = invoiceAmountMsat
	}
	if amount == nil {
		logger.Error("couldn't retrieve invoice amount of initiated payment", zap.String("payment_hash", paymentHash))
		return
	}

	var satsPerCurrency *float64
	if rate != nil {
		v := rate.RateSatPerFiat
		satsPerCurrency = &v
	}

	i.report(Event{Kind: KindPayInitiated, PayInitiated: &PayInitiatedEvent{
		PaymentHash:         paymentHash,
		PaidAmountMsat:      *amount,
		RequestedAmountMsat: invoiceAmountMsat,
		SatsPerUserCurrency: satsPerCurrency,
		Source:              source,
		UserCurrency:         i.userCurrency(),
		ProcessStartedAt:     processStartedAt,
		ExecutedAt:           time.Now(),
	}})
}

// PaySucceeded reports a completed outgoing Lightning payment.
func (i *Interceptor) PaySucceeded(paymentHash string, feeMsat uint64, confirmedAt time.Time) {
	i.report(Event{Kind: KindPaySucceeded, PaySucceeded: &PaySucceededEvent{
		PaymentHash:    paymentHash,
		LNFeesPaidMsat: feeMsat,
		ConfirmedAt:    confirmedAt,
	}})
}

// PayFailed reports a failed outgoing payment, grounded on
// AnalyticsInterceptor::pay_failed (which skips reporting when no
// invoice was ever decoded — there being nothing to correlate the
// failure with).
func (i *Interceptor) PayFailed(paymentHash string, rawError string) {
	if paymentHash == "" {
		logger.Info("payment failed without invoice, not reporting")
		return
	}
	i.report(Event{Kind: KindPayFailed, PayFailed: &PayFailedEvent{
		PaymentHash: paymentHash,
		Reason:      ClassifyFailure(rawError),
		FailedAt:    time.Now(),
	}})
}

// RequestInitiated reports that the user created a receive invoice.
func (i *Interceptor) RequestInitiated(paymentHash string, enteredAmountMsat *uint64, requestCurrency string, rate *money.ExchangeRate) {
	if !i.enabled() {
		return
	}
	var satsPerCurrency *float64
	if rate != nil {
		v := rate.RateSatPerFiat
		satsPerCurrency = &v
	}
	i.report(Event{Kind: KindRequestInitiated, RequestInitiated: &RequestInitiatedEvent{
		PaymentHash:         paymentHash,
		EnteredAmountMsat:   enteredAmountMsat,
		SatsPerUserCurrency: satsPerCurrency,
		UserCurrency:        i.userCurrency(),
		RequestCurrency:     requestCurrency,
		CreatedAt:           time.Now(),
	}})
}

// RequestSucceeded reports that a previously created invoice was paid.
func (i *Interceptor) RequestSucceeded(paymentHash string, paidAmountMsat, channelOpeningFeeMsat uint64) {
	i.report(Event{Kind: KindRequestSucceeded, RequestSucceeded: &RequestSucceededEvent{
		PaymentHash:           paymentHash,
		PaidAmountMsat:        paidAmountMsat,
		ChannelOpeningFeeMsat: channelOpeningFeeMsat,
		ReceivedAt:            time.Now(),
	}})
}
