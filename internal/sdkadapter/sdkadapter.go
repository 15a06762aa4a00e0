// Package sdkadapter defines the boundary between the wallet's own logic
// and the embedded Lightning SDK it sits on top of (a Breez-SDK-like
// node, out of scope per spec.md's Non-goals on LDK/BOLT wire internals).
// Every other package in this module depends on the SDK interface, never
// on a concrete node implementation, mirroring the teacher's
// internal/lnd.LightningClient boundary
// (internal/lnd/client.go) between card.Service and the concrete LND
// gRPC client.
package sdkadapter

import (
	"context"
	"time"
)

// PaymentDirection matches original_source/src/payment.rs's Recipient
// split between incoming and outgoing payments.
type PaymentDirection string

const (
	Incoming PaymentDirection = "incoming"
	Outgoing PaymentDirection = "outgoing"
)

// SDKPaymentState mirrors the embedded SDK's own payment lifecycle, which
// the wallet translates into its local store.PaymentState.
type SDKPaymentState string

const (
	SDKPaymentPending   SDKPaymentState = "pending"
	SDKPaymentSucceeded SDKPaymentState = "succeeded"
	SDKPaymentFailed    SDKPaymentState = "failed"
)

// Payment is the SDK's view of a single Lightning payment, modeled on
// original_source/mock/breez-sdk/src/lib.rs's Payment DTO and reusing the
// field shapes of the teacher's internal/lnd.Invoice/PaymentResult.
type Payment struct {
	PaymentHash     string
	PaymentPreimage string
	Direction       PaymentDirection
	State           SDKPaymentState
	AmountMsat      uint64
	FeeMsat         uint64
	Invoice         string
	Description     string
	LNAddress       string
	CreatedAt       time.Time

	// Swap, ReverseSwap and ChannelClose are mutually exclusive, set only
	// when this payment's on-chain counterpart applies; used by
	// internal/activity to classify a payment into the matching Activity
	// variant, mirroring breez_sdk_core::PaymentDetails::Ln's optional
	// swap_info/reverse_swap_info and PaymentDetails::ClosedChannel.
	Swap         *PaymentSwapDetails
	ReverseSwap  *PaymentReverseSwapDetails
	ChannelClose *PaymentChannelCloseDetails
}

// PaymentSwapDetails is attached to a Payment that settled an in-progress
// on-chain-to-Lightning swap.
type PaymentSwapDetails struct {
	BitcoinAddress string
	PaidMsat       uint64
	CreatedAt      time.Time
}

// PaymentReverseSwapDetails is attached to a Payment that funded a
// Lightning-to-on-chain reverse swap.
type PaymentReverseSwapDetails struct {
	OnchainAmountSat uint64
	ClaimTxID        string
	Status           string
}

// PaymentChannelCloseDetails is attached to a Payment representing a
// historical channel-close entry in the node's payment history (distinct
// from ClosedChannel, which lists closes still awaiting a sweep).
type PaymentChannelCloseDetails struct {
	Status      SDKPaymentState
	ClosingTxID string
}

// ClosedChannel is the SDK's view of a channel that has closed and may
// still have funds pending a sweep, grounded on
// original_source/src/onchain/channel_closes.rs's ChannelCloseInfo
// source data.
type ClosedChannel struct {
	ChannelID     string
	ClaimableSats uint64
	ClosedAt      time.Time
}

// NodeState summarizes the embedded node's current liquidity, used by the
// send pipeline's affordability check (spec 4.6) and the on-chain
// resolvers (spec 4.10).
type NodeState struct {
	NodeID                  string // the node's own Lightning pubkey, used to reject self-payments
	LocalBalanceMsat        uint64
	InboundLiquidityMsat    uint64
	MaxPayableMsat          uint64 // largest single payment the current channel graph could route
	MaxReceivableMsat       uint64
	ChannelsBalanceMsat     uint64 // total balance across all open LN channels, used by ReverseSwap
	OnchainBalanceMsat      uint64 // on-chain funds awaiting a sweep (e.g. from a channel close)
	ChannelsBalanceableMsat uint64
}

// SwapAddressInfo is a freshly generated on-chain swap-in address, mirroring
// breez_sdk_core::SwapInfo's caller-relevant subset.
type SwapAddressInfo struct {
	BitcoinAddress    string
	MinAllowedDeposit uint64 // sats
	MaxAllowedDeposit uint64 // sats
}

// FailedSwapInfo is a swap-in that received funds but never completed,
// grounded on original_source/src/onchain/swap.rs's FailedSwapInfo.
type FailedSwapInfo struct {
	Address       string
	ConfirmedSats uint64
	CreatedAt     time.Time
}

// UTXO is a single spendable on-chain output, used to detect the
// CLN dust-limit reserve UTXO described in spec 4.9/4.10.
type UTXO struct {
	AmountMsat uint64
}

// OnchainPaymentLimits bounds a reverse swap's clear-wallet amount,
// mirroring breez_sdk_core::OnchainPaymentLimitsResponse.
type OnchainPaymentLimits struct {
	MinSat        uint64
	MaxSat        uint64
	MaxPayableSat uint64
}

// PrepareOnchainPaymentResponse is the SDK's quote for a reverse swap,
// mirroring breez_sdk_core::PrepareOnchainPaymentResponse. Opaque to the
// wallet beyond the fields it reads; PayOnchain threads it back in
// unmodified.
type PrepareOnchainPaymentResponse struct {
	SenderAmountSat uint64
	FeesClaimSat    uint64
	FeesLockupSat   uint64
	TotalFeesSat    uint64
}

// LnUrlPayRequestData is the decoded LUD-06/LUD-16 pay endpoint metadata,
// mirroring breez_sdk_core::LnUrlPayRequestData.
type LnUrlPayRequestData struct {
	Domain          string
	URL             string
	MetadataStr     string
	MinSendableMsat uint64
	MaxSendableMsat uint64
	CommentAllowed  uint16
}

// LnUrlWithdrawRequestData is the decoded LUD-03 withdraw endpoint
// metadata, mirroring breez_sdk_core::LnUrlWithdrawRequestData.
type LnUrlWithdrawRequestData struct {
	Domain              string
	Callback            string
	K1                  string
	MinWithdrawableMsat uint64
	MaxWithdrawableMsat uint64
}

// LnUrlPayOutcome mirrors breez_sdk_core::lnurl::pay::LnUrlPayResult's
// three-way match.
type LnUrlPayOutcome struct {
	Kind          LnUrlPayOutcomeKind
	PaymentHash   string // set on EndpointSuccess
	ServerReason  string // set on EndpointError
	FailureReason string // set on PayError
}

type LnUrlPayOutcomeKind string

const (
	LnUrlPaySuccess       LnUrlPayOutcomeKind = "endpoint_success"
	LnUrlPayEndpointError LnUrlPayOutcomeKind = "endpoint_error"
	LnUrlPayFailed        LnUrlPayOutcomeKind = "pay_error"
)

// LnUrlWithdrawOutcome mirrors breez_sdk_core::LnUrlWithdrawResult's
// three-way match.
type LnUrlWithdrawOutcome struct {
	Kind         LnUrlWithdrawOutcomeKind
	PaymentHash  string // set on Ok and Timeout
	ServerReason string // set on ErrorStatus
}

type LnUrlWithdrawOutcomeKind string

const (
	LnUrlWithdrawOK      LnUrlWithdrawOutcomeKind = "ok"
	LnUrlWithdrawTimeout LnUrlWithdrawOutcomeKind = "timeout"
	LnUrlWithdrawError   LnUrlWithdrawOutcomeKind = "error_status"
)

// OpeningFeeParams is the LSP's quoted just-in-time channel-opening fee
// schedule for a single invoice, mirroring lsp.Fee but kept as its own
// DTO so sdkadapter doesn't depend on internal/lsp; the caller (usually
// internal/receive) fills it in from internal/lsp.Client.QueryInfo.
type OpeningFeeParams struct {
	MinMsat               uint64
	ProportionalPermyriad uint64
}

// InvoiceDetails is the decoded form of a BOLT11 invoice, mirroring
// spec.md's InvoiceDetails and the teacher's internal/lnd.Invoice.
type InvoiceDetails struct {
	PaymentHash string
	AmountMsat  *uint64 // nil for an open-amount invoice
	Description string
	Payee       string
	ExpiresAt   time.Time
	IsExpired   bool
}

// Event is the set of asynchronous notifications the embedded SDK can
// raise, consumed by internal/events.
type Event struct {
	Kind        EventKind
	PaymentHash string
	Payment     *Payment
}

type EventKind string

const (
	EventInvoicePaid      EventKind = "invoice_paid"
	EventPaymentSucceeded EventKind = "payment_succeeded"
	EventPaymentFailed    EventKind = "payment_failed"
	EventSynced           EventKind = "synced"
)

// SendPaymentErrorKind mirrors breez_sdk_core::error::SendPaymentError's
// variants that PayInvoice can fail with.
type SendPaymentErrorKind string

const (
	SendPaymentGeneric             SendPaymentErrorKind = "generic"
	SendPaymentFailed              SendPaymentErrorKind = "payment_failed"
	SendPaymentTimeout             SendPaymentErrorKind = "payment_timeout"
	SendPaymentRouteNotFound       SendPaymentErrorKind = "route_not_found"
	SendPaymentRouteTooExpensive   SendPaymentErrorKind = "route_too_expensive"
	SendPaymentServiceConnectivity SendPaymentErrorKind = "service_connectivity"
	SendPaymentInvalidInvoice      SendPaymentErrorKind = "invalid_invoice"
)

// SendPaymentError is the typed error PayInvoice returns on failure, so
// callers can classify it the way original_source/src/lightning/bolt11.rs's
// pay_open_amount matches on SendPaymentError variants.
type SendPaymentError struct {
	Kind    SendPaymentErrorKind
	Message string
}

func (e *SendPaymentError) Error() string { return e.Message }

// SDK is the interface every wallet component depends on instead of a
// concrete Lightning node implementation.
type SDK interface {
	// NodeState returns the current liquidity snapshot.
	NodeState(ctx context.Context) (*NodeState, error)

	// SignMessage signs message with the node's private key, proving
	// ownership of NodeState.NodeID to an external service (e.g. Pocket's
	// fiat top-up order confirmation), mirroring LightningNode::sign_message.
	SignMessage(ctx context.Context, message string) (signature string, err error)

	// CreateInvoice requests a BOLT11 invoice for amountMsat (0 for an
	// open-amount invoice where supported) with the given description.
	// feeParams quotes the just-in-time channel-opening fee the caller
	// already negotiated with the LSP (nil when the SDK should fall back
	// to whatever quote it currently holds); the SDK returns the opening
	// fee it actually charged in openingFeeMsat (zero if no new channel
	// was needed).
	CreateInvoice(ctx context.Context, amountMsat uint64, description string, feeParams *OpeningFeeParams) (details *InvoiceDetails, bolt11 string, openingFeeMsat uint64, err error)

	// DecodeInvoice decodes a BOLT11 invoice without paying it.
	DecodeInvoice(ctx context.Context, bolt11 string) (*InvoiceDetails, error)

	// PayInvoice pays a BOLT11 invoice, routing up to maxFeeMsat in fees.
	PayInvoice(ctx context.Context, bolt11 string, amountMsat uint64, maxFeeMsat uint64) (*Payment, error)

	// ListPayments returns the SDK's own payment history.
	ListPayments(ctx context.Context) ([]Payment, error)

	// ListClosedChannelsWithClaimableFunds returns channel closes with
	// on-chain funds still awaiting a sweep.
	ListClosedChannelsWithClaimableFunds(ctx context.Context) ([]ClosedChannel, error)

	// SweepClosedChannelFunds sweeps a closed channel's claimable funds
	// to the given on-chain destination.
	SweepClosedChannelFunds(ctx context.Context, channelID, destinationAddress string, feeRateSatPerVByte uint32) (txID string, err error)

	// SubscribeEvents returns a channel of asynchronous SDK events. The
	// channel is closed when ctx is cancelled.
	SubscribeEvents(ctx context.Context) (<-chan Event, error)

	// Sync forces the SDK to reconcile its state against the network.
	Sync(ctx context.Context) error

	// LnUrlPay executes an LNURL-pay for amountMsat against data,
	// attaching comment if non-empty.
	LnUrlPay(ctx context.Context, data LnUrlPayRequestData, amountMsat uint64, comment string) (*LnUrlPayOutcome, error)

	// LnUrlWithdraw executes an LNURL-withdraw for amountMsat against data.
	LnUrlWithdraw(ctx context.Context, data LnUrlWithdrawRequestData, amountMsat uint64) (*LnUrlWithdrawOutcome, error)

	// OnchainFeeRate returns the current recommended sat/vByte fee rate
	// for an on-chain transaction.
	OnchainFeeRate(ctx context.Context) (uint32, error)

	// ListUTXOs returns the node's spendable on-chain outputs.
	ListUTXOs(ctx context.Context) ([]UTXO, error)

	// ReceiveOnchain generates a fresh swap-in address, optionally quoting
	// lspFeeParamsToken (opaque, as returned by the LSP) for the channel
	// that may need to open once funds are swapped in.
	ReceiveOnchain(ctx context.Context, lspFeeParamsToken string) (*SwapAddressInfo, error)

	// ListRefundables returns swap-in addresses that received funds but
	// never completed.
	ListRefundables(ctx context.Context) ([]FailedSwapInfo, error)

	// PrepareRefund quotes the on-chain fee (in sats) for refunding a
	// failed swap's funds to toAddress.
	PrepareRefund(ctx context.Context, swapAddress, toAddress string, satPerVByte uint32) (refundTxFeeSat uint64, err error)

	// Refund broadcasts a failed-swap refund prepared by PrepareRefund.
	Refund(ctx context.Context, swapAddress, toAddress string, satPerVByte uint32) (txID string, err error)

	// PrepareRedeemOnchainFunds quotes the on-chain fee (in sats) for
	// sweeping channel-close funds to toAddress.
	PrepareRedeemOnchainFunds(ctx context.Context, toAddress string, satPerVByte uint32) (txFeeSat uint64, err error)

	// RedeemOnchainFunds broadcasts a channel-close sweep prepared by
	// PrepareRedeemOnchainFunds.
	RedeemOnchainFunds(ctx context.Context, toAddress string, satPerVByte uint32) (txID string, err error)

	// OnchainPaymentLimits returns the current reverse-swap amount range.
	OnchainPaymentLimits(ctx context.Context) (*OnchainPaymentLimits, error)

	// PrepareOnchainPayment quotes a reverse swap sending amountSat at
	// claimTxFeerate sat/vByte.
	PrepareOnchainPayment(ctx context.Context, amountSat uint64, claimTxFeerate uint32) (*PrepareOnchainPaymentResponse, error)

	// PayOnchain broadcasts a reverse swap prepared by PrepareOnchainPayment
	// to recipientAddress.
	PayOnchain(ctx context.Context, recipientAddress string, prepared PrepareOnchainPaymentResponse) error
}
