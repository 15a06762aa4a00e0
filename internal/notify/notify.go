// Package notify implements the stateless push-notification entry point
// (spec 4.12): decode a notification payload, wait for the matching SDK
// event, and recommend what to show the user, grounded on
// original_source/src/notification_handling.rs.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/getlipa/lipa-lightning-lib-go/internal/sdkadapter"
	"github.com/getlipa/lipa-lightning-lib-go/internal/walleterrors"
)

// Notification is a single thing worth showing the user, mirroring
// notification_handling.rs's Notification enum (currently one variant).
type Notification struct {
	Bolt11PaymentReceived *Bolt11PaymentReceived
}

// Bolt11PaymentReceived reports that a previously issued invoice got paid.
type Bolt11PaymentReceived struct {
	AmountSat   uint64
	PaymentHash string
}

// RecommendedAction is HandleNotification's result: either nothing
// happened within the timeout, or a Notification to surface, mirroring
// notification_handling.rs's RecommendedAction.
type RecommendedAction struct {
	Notification *Notification // nil means no action is recommended
}

// payload is the wire schema spec 4.12 describes:
// {"template":"payment_received","data":{"payment_hash":"..."}}.
type payload struct {
	Template string `json:"template"`
	Data     struct {
		PaymentHash string `json:"payment_hash"`
	} `json:"data"`
}

const templatePaymentReceived = "payment_received"

// HandleNotification decodes payloadJSON, subscribes to sdk's event
// stream, and waits up to timeout for an InvoicePaid event whose payment
// hash matches. sdk is expected to already be running (construction and
// lifetime of the embedded SDK for this stateless call are the caller's
// responsibility, mirroring how every other component here receives an
// sdkadapter.SDK rather than building one). Mirrors
// notification_handling.rs's handle_notification.
func HandleNotification(ctx context.Context, sdk sdkadapter.SDK, payloadJSON string, timeout time.Duration) (*RecommendedAction, error) {
	var p payload
	if err := json.Unmarshal([]byte(payloadJSON), &p); err != nil {
		return nil, walleterrors.NewInvalidInput("invalid notification payload: %v", err)
	}
	if p.Template != templatePaymentReceived {
		return nil, walleterrors.NewInvalidInput("unsupported notification template %q", p.Template)
	}

	events, err := sdk.SubscribeEvents(ctx)
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to subscribe to sdk events", err)
	}

	return waitForPaymentReceived(ctx, events, p.Data.PaymentHash, timeout)
}

// waitForPaymentReceived blocks on events until one matching paymentHash
// arrives or timeout elapses, mirroring
// handle_payment_received_notification's polling loop (there implemented
// with a 1s recv_timeout poll against a real deadline; here a single
// timer suffices since Go channels don't need polling to stay
// responsive to context cancellation).
func waitForPaymentReceived(ctx context.Context, events <-chan sdkadapter.Event, paymentHash string, timeout time.Duration) (*RecommendedAction, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return &RecommendedAction{}, nil
		case event, ok := <-events:
			if !ok {
				return nil, walleterrors.NewPermanentFailure("the sdk stopped running unexpectedly", nil)
			}
			if event.Kind != sdkadapter.EventInvoicePaid || event.PaymentHash != paymentHash {
				continue
			}
			var amountSat uint64
			if event.Payment != nil {
				amountSat = event.Payment.AmountMsat / 1000
			}
			return &RecommendedAction{
				Notification: &Notification{
					Bolt11PaymentReceived: &Bolt11PaymentReceived{
						AmountSat:   amountSat,
						PaymentHash: paymentHash,
					},
				},
			}, nil
		}
	}
}
