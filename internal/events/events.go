// Package events runs the wallet's event loop: it subscribes to the
// embedded Lightning SDK's event stream and reacts to settlement and
// sync notifications by updating local state, grounded on the
// event-handling role spec.md 4.5/4.8/4.12 describe for the embedded SDK
// and on the teacher's internal/card.Service pattern of a single
// component wiring store + cache + logger together.
package events

import (
	"context"

	"github.com/getlipa/lipa-lightning-lib-go/internal/sdkadapter"
	"github.com/getlipa/lipa-lightning-lib-go/internal/store"
	"github.com/getlipa/lipa-lightning-lib-go/pkg/logger"
	"go.uber.org/zap"
)

// Handler processes a single SDK event. Implementations must not block
// for long; the event loop is single-threaded.
type Handler interface {
	HandleEvent(ctx context.Context, event sdkadapter.Event)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, event sdkadapter.Event)

func (f HandlerFunc) HandleEvent(ctx context.Context, event sdkadapter.Event) { f(ctx, event) }

// Loop subscribes to sdk's event stream and dispatches each event to
// every registered handler in order, until ctx is cancelled.
type Loop struct {
	sdk      sdkadapter.SDK
	handlers []Handler
}

// New builds a Loop with no handlers registered yet.
func New(sdk sdkadapter.SDK) *Loop {
	return &Loop{sdk: sdk}
}

// Register adds a handler invoked for every subsequent event.
func (l *Loop) Register(h Handler) {
	l.handlers = append(l.handlers, h)
}

// Run blocks, dispatching events until ctx is cancelled or the SDK's
// event channel closes.
func (l *Loop) Run(ctx context.Context) error {
	events, err := l.sdk.SubscribeEvents(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			for _, h := range l.handlers {
				h.HandleEvent(ctx, event)
			}
		}
	}
}

// PaymentStateHandler keeps a payment's StoredPaymentMetadata row's state
// in sync with the SDK's own view.
type PaymentStateHandler struct {
	Store *store.Store
}

func (h *PaymentStateHandler) HandleEvent(ctx context.Context, event sdkadapter.Event) {
	var state store.PaymentState
	switch event.Kind {
	case sdkadapter.EventPaymentSucceeded:
		state = store.PaymentStateSucceeded
	case sdkadapter.EventPaymentFailed:
		state = store.PaymentStateFailed
	default:
		return
	}
	if event.PaymentHash == "" {
		return
	}
	if err := h.Store.UpdatePaymentState(ctx, event.PaymentHash, state); err != nil {
		logger.Debug("no local payment metadata row to update for SDK event",
			zap.String("payment_hash", event.PaymentHash), zap.Error(err))
	}
}
