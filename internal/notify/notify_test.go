package notify

import (
	"context"
	"testing"
	"time"

	"github.com/getlipa/lipa-lightning-lib-go/internal/sdkadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifySDK struct {
	sdkadapter.SDK
	events chan sdkadapter.Event
}

func (f *fakeNotifySDK) SubscribeEvents(context.Context) (<-chan sdkadapter.Event, error) {
	return f.events, nil
}

func TestHandleNotificationReturnsShowNotificationOnMatchingEvent(t *testing.T) {
	sdk := &fakeNotifySDK{events: make(chan sdkadapter.Event, 1)}
	sdk.events <- sdkadapter.Event{
		Kind:        sdkadapter.EventInvoicePaid,
		PaymentHash: "hash",
		Payment:     &sdkadapter.Payment{AmountMsat: 5000},
	}

	action, err := HandleNotification(context.Background(), sdk,
		`{"template":"payment_received","data":{"payment_hash":"hash"}}`, time.Second)
	require.NoError(t, err)
	require.NotNil(t, action.Notification)
	require.NotNil(t, action.Notification.Bolt11PaymentReceived)
	assert.Equal(t, uint64(5), action.Notification.Bolt11PaymentReceived.AmountSat)
	assert.Equal(t, "hash", action.Notification.Bolt11PaymentReceived.PaymentHash)
}

func TestHandleNotificationIgnoresNonMatchingEvent(t *testing.T) {
	sdk := &fakeNotifySDK{events: make(chan sdkadapter.Event, 1)}
	sdk.events <- sdkadapter.Event{Kind: sdkadapter.EventInvoicePaid, PaymentHash: "other-hash"}

	action, err := HandleNotification(context.Background(), sdk,
		`{"template":"payment_received","data":{"payment_hash":"hash"}}`, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, action.Notification)
}

func TestHandleNotificationTimesOutWithoutEvent(t *testing.T) {
	sdk := &fakeNotifySDK{events: make(chan sdkadapter.Event)}

	action, err := HandleNotification(context.Background(), sdk,
		`{"template":"payment_received","data":{"payment_hash":"hash"}}`, 20*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, action.Notification)
}

func TestHandleNotificationRejectsMalformedPayload(t *testing.T) {
	sdk := &fakeNotifySDK{events: make(chan sdkadapter.Event)}

	_, err := HandleNotification(context.Background(), sdk, `not json`, time.Second)
	require.Error(t, err)
}

func TestHandleNotificationRejectsUnknownTemplate(t *testing.T) {
	sdk := &fakeNotifySDK{events: make(chan sdkadapter.Event)}

	_, err := HandleNotification(context.Background(), sdk, `{"template":"unknown","data":{}}`, time.Second)
	require.Error(t, err)
}
