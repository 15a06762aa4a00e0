package activity

import (
	"context"
	"errors"
	"sort"

	"github.com/jinzhu/copier"

	"github.com/getlipa/lipa-lightning-lib-go/internal/sdkadapter"
	"github.com/getlipa/lipa-lightning-lib-go/internal/store"
	"github.com/getlipa/lipa-lightning-lib-go/internal/walleterrors"
)

// leewayForPendingPayments is the number of extra activities pulled past
// the requested completed count before partitioning, so a burst of
// pending activities doesn't push a genuinely completed one out of the
// list, mirroring activities.rs's LEEWAY_FOR_PENDING_PAYMENTS.
const leewayForPendingPayments = 30

// Pipeline runs the activity multiplexer, merging the SDK's payment
// history with locally-created invoices the SDK doesn't know about yet.
type Pipeline struct {
	SDK   sdkadapter.SDK
	Store *store.Store
}

// List returns up to numberOfCompletedActivities completed activities,
// plus every pending one, partitioned and ordered the way
// activities.rs's Activities::list does.
func (p *Pipeline) List(ctx context.Context, numberOfCompletedActivities uint32) (*ListActivitiesResponse, error) {
	payments, err := p.SDK.ListPayments(ctx)
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to list payments", err)
	}

	seenHashes := make(map[string]bool, len(payments))
	var all []Activity
	for _, payment := range payments {
		seenHashes[payment.PaymentHash] = true
		a, err := p.activityFromPayment(ctx, payment)
		if err != nil {
			return nil, err
		}
		if a != nil {
			all = append(all, *a)
		}
	}

	createdInvoices, err := p.Store.ListCreatedInvoices(ctx)
	if err != nil {
		return nil, walleterrors.NewPermanentFailure("failed to list created invoices", err)
	}
	for _, inv := range createdInvoices {
		if seenHashes[inv.PaymentHash] {
			continue
		}
		a, err := p.activityFromCreatedInvoice(ctx, inv)
		if err != nil {
			return nil, err
		}
		all = append(all, *a)
	}

	sortDescending(all)

	n := int(numberOfCompletedActivities) + len(createdInvoices)
	headCount := n + leewayForPendingPayments
	if headCount > len(all) {
		headCount = len(all)
	}
	head := all[:headCount]
	tail := all[headCount:]

	var pending, completedFromHead []Activity
	for _, a := range head {
		if a.IsPending() {
			pending = append(pending, a)
		} else {
			completedFromHead = append(completedFromHead, a)
		}
	}

	var tailCompleted []Activity
	for _, a := range tail {
		if a.IsPending() {
			// A tail-pending swap in progress is still surfaced to the
			// caller (it can otherwise sit silently for a long time);
			// every other tail-pending entry is dropped, mirroring
			// activities.rs's rationale that a payment this old pending
			// is no longer actionable except an in-progress swap.
			if a.Kind == KindSwap {
				pending = append(pending, a)
			}
			continue
		}
		tailCompleted = append(tailCompleted, a)
	}

	completed := append(completedFromHead, tailCompleted...)
	if len(completed) > int(numberOfCompletedActivities) {
		completed = completed[:numberOfCompletedActivities]
	}

	sortDescending(pending)
	sortDescending(completed)

	return &ListActivitiesResponse{PendingActivities: pending, CompletedActivities: completed}, nil
}

func sortDescending(activities []Activity) {
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Time().After(activities[j].Time())
	})
}

// activityFromPayment classifies a single SDK payment into its matching
// Activity variant, mirroring activities.rs's activity_from_breez_payment
// / activity_from_breez_ln_payment / activity_from_breez_closed_channel_payment.
func (p *Pipeline) activityFromPayment(ctx context.Context, payment sdkadapter.Payment) (*Activity, error) {
	if payment.ChannelClose != nil {
		return p.activityFromChannelClose(payment)
	}

	note, err := p.Store.GetPersonalNote(ctx, payment.PaymentHash)
	if err != nil {
		return nil, walleterrors.NewPermanentFailure("failed to read personal note", err)
	}

	var base PaymentInfo
	if err := copyInto(&base, &payment); err != nil {
		return nil, walleterrors.NewPermanentFailure("failed to copy payment fields", err)
	}
	base.PaymentState = derivedStateOf(payment.State)
	base.PersonalNote = note

	incoming := IncomingPaymentInfo{
		PaymentInfo:         base,
		LNAddress:           payment.LNAddress,
		RequestedAmountMsat: payment.AmountMsat + payment.FeeMsat,
		LspFeesMsat:         payment.FeeMsat,
	}

	if offer, err := p.Store.GetOffer(ctx, payment.PaymentHash); err == nil {
		return &Activity{
			Kind: KindOfferClaim,
			OfferClaim: &OfferClaimInfo{
				IncomingPaymentInfo:      incoming,
				ExchangeRate:             offer.ExchangeRate,
				TopupValueMinorUnits:     offer.TopupValueMinorUnits,
				TopupCurrency:            offer.TopupCurrency,
				ExchangeFeeMinorUnits:    offer.ExchangeFeeMinorUnits,
				ExchangeFeeRatePermyriad: offer.ExchangeFeeRatePermyriad,
			},
		}, nil
	} else if !errors.Is(err, store.ErrOfferNotFound) {
		return nil, walleterrors.NewPermanentFailure("failed to look up offer", err)
	}

	if payment.Swap != nil {
		return &Activity{
			Kind: KindSwap,
			Swap: &SwapInfo{
				IncomingPaymentInfo: incoming,
				BitcoinAddress:      payment.Swap.BitcoinAddress,
			},
		}, nil
	}

	if payment.ReverseSwap != nil {
		outgoing := OutgoingPaymentInfo{PaymentInfo: base, FeeMsat: payment.FeeMsat}
		return &Activity{
			Kind: KindReverseSwap,
			ReverseSwap: &ReverseSwapInfo{
				OutgoingPaymentInfo: outgoing,
				OnchainAmountSat:    payment.ReverseSwap.OnchainAmountSat,
				ClaimTxID:           payment.ReverseSwap.ClaimTxID,
			},
		}, nil
	}

	if payment.Direction == sdkadapter.Incoming {
		return &Activity{Kind: KindIncomingPayment, IncomingPayment: &incoming}, nil
	}

	outgoing := OutgoingPaymentInfo{PaymentInfo: base, FeeMsat: payment.FeeMsat}
	return &Activity{Kind: KindOutgoingPayment, OutgoingPayment: &outgoing}, nil
}

// activityFromChannelClose classifies a closed-channel payment history
// entry, mirroring activities.rs's activity_from_breez_closed_channel_payment.
// A Failed SDK status is unrecoverable by definition (the channel's funds
// are gone without a sweep path) and surfaces as a permanent failure.
func (p *Pipeline) activityFromChannelClose(payment sdkadapter.Payment) (*Activity, error) {
	switch payment.ChannelClose.Status {
	case sdkadapter.SDKPaymentFailed:
		return nil, walleterrors.NewPermanentFailure("a channel close payment has status Failed", nil)
	case sdkadapter.SDKPaymentSucceeded:
		return &Activity{
			Kind: KindChannelClose,
			ChannelClose: &ChannelCloseInfo{
				ChannelID:   payment.PaymentHash,
				AmountSat:   payment.AmountMsat / 1000,
				State:       ChannelCloseConfirmed,
				ClosingTxID: payment.ChannelClose.ClosingTxID,
				ClosedAt:    payment.CreatedAt,
			},
		}, nil
	default:
		return &Activity{
			Kind: KindChannelClose,
			ChannelClose: &ChannelCloseInfo{
				ChannelID: payment.PaymentHash,
				AmountSat: payment.AmountMsat / 1000,
				State:     ChannelClosePending,
				ClosedAt:  payment.CreatedAt,
			},
		}, nil
	}
}

// activityFromCreatedInvoice synthesizes an IncomingPayment activity for
// an invoice the receive pipeline created that the SDK doesn't report a
// settled payment for yet, mirroring activities.rs's
// payment_from_created_invoice.
func (p *Pipeline) activityFromCreatedInvoice(ctx context.Context, inv store.CreatedInvoice) (*Activity, error) {
	note, err := p.Store.GetPersonalNote(ctx, inv.PaymentHash)
	if err != nil {
		return nil, walleterrors.NewPermanentFailure("failed to read personal note", err)
	}

	state := PaymentStateCreated
	if details, err := p.SDK.DecodeInvoice(ctx, inv.Invoice); err == nil && details.IsExpired {
		state = PaymentStateInvoiceExpired
	}

	amountMsat := inv.AmountMsat
	if inv.OpeningFeeMsat > amountMsat {
		amountMsat = 0
	} else {
		amountMsat -= inv.OpeningFeeMsat
	}

	info := IncomingPaymentInfo{
		PaymentInfo: PaymentInfo{
			PaymentState: state,
			PaymentHash:  inv.PaymentHash,
			AmountMsat:   amountMsat,
			Description:  inv.Description,
			CreatedAt:    inv.CreatedAt,
			PersonalNote: note,
		},
		RequestedAmountMsat: inv.AmountMsat,
		LspFeesMsat:         inv.OpeningFeeMsat,
	}
	return &Activity{Kind: KindIncomingPayment, IncomingPayment: &info}, nil
}

func derivedStateOf(state sdkadapter.SDKPaymentState) PaymentState {
	switch state {
	case sdkadapter.SDKPaymentSucceeded:
		return PaymentStateSucceeded
	case sdkadapter.SDKPaymentFailed:
		return PaymentStateFailed
	default:
		return PaymentStateCreated
	}
}

// SetPersonalNote attaches a note to a payment, mirroring
// activities.rs's set_personal_note. Exposed alongside List since both
// operate on the same store-backed note table.
func (p *Pipeline) SetPersonalNote(ctx context.Context, paymentID, note string) error {
	if err := p.Store.SetPersonalNote(ctx, paymentID, note); err != nil {
		return walleterrors.NewPermanentFailure("failed to set personal note", err)
	}
	return nil
}

// copyInto is a thin wrapper around jinzhu/copier for the fields that
// can be mapped straight across by name, kept as a single call site so
// future payment DTO fields added to sdkadapter.Payment are automatically
// picked up without touching every classification branch.
func copyInto(dst any, src any) error {
	return copier.Copy(dst, src)
}
