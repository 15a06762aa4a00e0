// Package activity implements the Activity Multiplexer (spec 4.8):
// merging the embedded SDK's own payment history with locally-created,
// not-yet-settled invoices into a single ordered, partitioned list.
// Grounded on original_source/src/activities.rs's Activities::list /
// multiplex_activities / activity_from_breez_payment.
package activity

import "time"

// PaymentState is the multiplexer's derived view of a payment's lifecycle,
// distinct from store.PaymentState: it adds InvoiceExpired for a locally
// created invoice whose expiry has passed without being paid, mirroring
// activities.rs's handling of payment_from_created_invoice rather than
// payment.rs's persisted enum.
type PaymentState string

const (
	PaymentStateCreated        PaymentState = "created"
	PaymentStateSucceeded      PaymentState = "succeeded"
	PaymentStateFailed         PaymentState = "failed"
	PaymentStateRetried        PaymentState = "retried"
	PaymentStateInvoiceExpired PaymentState = "invoice_expired"
)

// IsPending reports whether an activity in this state belongs in the
// pending partition of the list, mirroring PaymentState::is_pending.
func (s PaymentState) IsPending() bool {
	return s == PaymentStateCreated || s == PaymentStateRetried
}

// PaymentInfo is the set of fields common to every payment-shaped
// activity variant. Its PaymentHash field name (rather than the Rust
// source's bare "hash") is chosen deliberately so jinzhu/copier can
// field-name-match it directly against sdkadapter.Payment.
type PaymentInfo struct {
	PaymentState PaymentState
	PaymentHash  string
	AmountMsat   uint64
	Description  string
	CreatedAt    time.Time
	PersonalNote string
}

// IncomingPaymentInfo is a plain received Lightning payment, grounded on
// activities.rs's IncomingPaymentInfo. RequestedAmountMsat is the
// invoice's nominal amount before the LSP's just-in-time channel-opening
// fee is deducted; LspFeesMsat is that fee. PaymentInfo.AmountMsat is
// always RequestedAmountMsat − LspFeesMsat, the amount actually received.
type IncomingPaymentInfo struct {
	PaymentInfo
	LNAddress           string // set when received over a registered Lightning address
	RequestedAmountMsat uint64
	LspFeesMsat         uint64
}

// OutgoingPaymentInfo is a plain sent Lightning payment, grounded on
// activities.rs's OutgoingPaymentInfo.
type OutgoingPaymentInfo struct {
	PaymentInfo
	FeeMsat uint64
}

// OfferClaimInfo is an IncomingPaymentInfo whose payment hash matches a
// Pocket fiat top-up offer previously registered, grounded on
// activities.rs's OfferKind/get_offer lookup by hash.
type OfferClaimInfo struct {
	IncomingPaymentInfo
	ExchangeRate             float64
	TopupValueMinorUnits     int64
	TopupCurrency            string
	ExchangeFeeMinorUnits    int64
	ExchangeFeeRatePermyriad uint32
}

// SwapInfo is an IncomingPaymentInfo funded by resolving an in-progress
// on-chain-to-Lightning swap, grounded on activities.rs's SwapInfo.
type SwapInfo struct {
	IncomingPaymentInfo
	BitcoinAddress string
}

// ReverseSwapInfo is an OutgoingPaymentInfo that funded a
// Lightning-to-on-chain reverse swap, grounded on activities.rs's
// ReverseSwapInfo.
type ReverseSwapInfo struct {
	OutgoingPaymentInfo
	OnchainAmountSat uint64
	ClaimTxID        string
}

// ChannelCloseState mirrors activities.rs's ChannelCloseState, collapsing
// the SDK's richer channel-close status into Pending (no txid yet) or
// Confirmed (swept on-chain). A Failed SDK status is a permanent failure
// and never reaches this type.
type ChannelCloseState string

const (
	ChannelClosePending   ChannelCloseState = "pending"
	ChannelCloseConfirmed ChannelCloseState = "confirmed"
)

// ChannelCloseInfo is a historical channel-close entry in the node's
// payment history, grounded on activities.rs's ChannelCloseInfo.
type ChannelCloseInfo struct {
	ChannelID   string
	AmountSat   uint64
	State       ChannelCloseState
	ClosingTxID string
	ClosedAt    time.Time
}

// Kind discriminates the variant held by an Activity, mirroring
// activities.rs's Activity enum.
type Kind string

const (
	KindIncomingPayment Kind = "incoming_payment"
	KindOutgoingPayment Kind = "outgoing_payment"
	KindOfferClaim      Kind = "offer_claim"
	KindSwap            Kind = "swap"
	KindReverseSwap     Kind = "reverse_swap"
	KindChannelClose    Kind = "channel_close"
)

// Activity is a tagged union over every kind of entry the multiplexer can
// produce, mirroring activities.rs's Activity enum and reusing the
// teacher's discriminant-plus-pointer-fields shape already used by
// sdkadapter.Event and analytics' own event types.
type Activity struct {
	Kind Kind

	IncomingPayment *IncomingPaymentInfo
	OutgoingPayment *OutgoingPaymentInfo
	OfferClaim      *OfferClaimInfo
	Swap            *SwapInfo
	ReverseSwap     *ReverseSwapInfo
	ChannelClose    *ChannelCloseInfo
}

// Time returns the activity's ordering timestamp, mirroring
// activities.rs's Activity::get_time: created invoices and received
// payments use their invoice-creation time, sent payments and channel
// closes use the SDK's own payment_time.
func (a Activity) Time() time.Time {
	switch a.Kind {
	case KindIncomingPayment:
		return a.IncomingPayment.CreatedAt
	case KindOutgoingPayment:
		return a.OutgoingPayment.CreatedAt
	case KindOfferClaim:
		return a.OfferClaim.CreatedAt
	case KindSwap:
		return a.Swap.CreatedAt
	case KindReverseSwap:
		return a.ReverseSwap.CreatedAt
	case KindChannelClose:
		return a.ChannelClose.ClosedAt
	default:
		return time.Time{}
	}
}

// IsPending reports whether this activity belongs in the pending
// partition of the list, mirroring activities.rs's Activity::is_pending.
func (a Activity) IsPending() bool {
	switch a.Kind {
	case KindIncomingPayment:
		return a.IncomingPayment.PaymentState.IsPending()
	case KindOutgoingPayment:
		return a.OutgoingPayment.PaymentState.IsPending()
	case KindOfferClaim:
		return a.OfferClaim.PaymentState.IsPending()
	case KindSwap:
		return a.Swap.PaymentState.IsPending()
	case KindReverseSwap:
		return a.ReverseSwap.PaymentState.IsPending()
	case KindChannelClose:
		return a.ChannelClose.State == ChannelClosePending
	default:
		return false
	}
}

// PaymentID returns the key used to look up a personal note or an offer
// for this activity, empty for variants with no attachable payment id
// (a channel close has no payment_id in the local store).
func (a Activity) PaymentID() string {
	switch a.Kind {
	case KindIncomingPayment:
		return a.IncomingPayment.PaymentHash
	case KindOutgoingPayment:
		return a.OutgoingPayment.PaymentHash
	case KindOfferClaim:
		return a.OfferClaim.PaymentHash
	case KindSwap:
		return a.Swap.PaymentHash
	case KindReverseSwap:
		return a.ReverseSwap.PaymentHash
	default:
		return ""
	}
}

// ListActivitiesResponse is the multiplexer's output, partitioned the
// way activities.rs's list() returns it: pending entries (including any
// in-progress swap) first, then completed entries, each sorted newest
// first.
type ListActivitiesResponse struct {
	PendingActivities   []Activity
	CompletedActivities []Activity
}
