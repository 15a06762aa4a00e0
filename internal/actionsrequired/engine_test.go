package actionsrequired

import (
	"context"
	"testing"

	"github.com/getlipa/lipa-lightning-lib-go/internal/onchain"
	"github.com/getlipa/lipa-lightning-lib-go/internal/sdkadapter"
	"github.com/getlipa/lipa-lightning-lib-go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir() + "/wallet.sqlite3")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type fakeEngineSDK struct {
	sdkadapter.SDK
	nodeState   *sdkadapter.NodeState
	utxos       []sdkadapter.UTXO
	refundables []sdkadapter.FailedSwapInfo
	feeRate     uint32
	prepareFee  uint64
}

func (f *fakeEngineSDK) NodeState(context.Context) (*sdkadapter.NodeState, error) {
	return f.nodeState, nil
}
func (f *fakeEngineSDK) ListUTXOs(context.Context) ([]sdkadapter.UTXO, error) { return f.utxos, nil }
func (f *fakeEngineSDK) ListRefundables(context.Context) ([]sdkadapter.FailedSwapInfo, error) {
	return f.refundables, nil
}
func (f *fakeEngineSDK) OnchainFeeRate(context.Context) (uint32, error) { return f.feeRate, nil }
func (f *fakeEngineSDK) PrepareRefund(context.Context, string, string, uint32) (uint64, error) {
	return f.prepareFee, nil
}
func (f *fakeEngineSDK) PrepareRedeemOnchainFunds(context.Context, string, uint32) (uint64, error) {
	return f.prepareFee, nil
}

func noLspFee(context.Context, uint64) (uint64, string, error) { return 0, "", nil }

func TestListIncludesUncompletedOffer(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.StoreOffer(ctx, store.StoredOffer{PaymentID: "pay-1", Kind: store.OfferKindPocketTopup}))

	sdk := &fakeEngineSDK{nodeState: &sdkadapter.NodeState{OnchainBalanceMsat: 0}}
	e := &Engine{
		Store:        s,
		SDK:          sdk,
		Swap:         &onchain.Swap{SDK: sdk, CalculateLspFee: noLspFee},
		ChannelClose: &onchain.ChannelClose{SDK: sdk, CalculateLspFee: noLspFee},
	}

	items, err := e.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, KindUncompletedOffer, items[0].Kind)
	assert.Equal(t, "pay-1", items[0].UncompletedOffer.PaymentID)
}

func TestListIncludesUnresolvedFailedSwap(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sdk := &fakeEngineSDK{
		nodeState:   &sdkadapter.NodeState{OnchainBalanceMsat: 0},
		feeRate:     5,
		prepareFee:  200,
		refundables: []sdkadapter.FailedSwapInfo{{Address: "bc1qswap", ConfirmedSats: 10_000}},
	}
	e := &Engine{
		Store:        s,
		SDK:          sdk,
		Swap:         &onchain.Swap{SDK: sdk, CalculateLspFee: noLspFee},
		ChannelClose: &onchain.ChannelClose{SDK: sdk, CalculateLspFee: noLspFee},
	}

	items, err := e.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, KindUnresolvedFailedSwap, items[0].Kind)
	assert.Equal(t, "bc1qswap", items[0].UnresolvedFailedSwap.SwapInfo.Address)
}

func TestHiddenFailedSwapDroppedUntilSweepableAgain(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sdk := &fakeEngineSDK{
		nodeState:   &sdkadapter.NodeState{OnchainBalanceMsat: 0},
		feeRate:     5,
		prepareFee:  9_999, // fee nearly swallows the whole amount, PrepareSweep still succeeds
		refundables: []sdkadapter.FailedSwapInfo{{Address: "bc1qswap", ConfirmedSats: 10_000}},
	}
	e := &Engine{
		Store:        s,
		SDK:          sdk,
		Swap:         &onchain.Swap{SDK: sdk, CalculateLspFee: noLspFee},
		ChannelClose: &onchain.ChannelClose{SDK: sdk, CalculateLspFee: noLspFee},
	}
	require.NoError(t, e.HideUnresolvedFailedSwap(ctx, "bc1qswap"))

	items, err := e.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1, "PrepareSweep still succeeds so the item resurfaces despite being hidden")
}

func TestChannelCloseFundsAvailableBelowDustLimitOmitted(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sdk := &fakeEngineSDK{nodeState: &sdkadapter.NodeState{OnchainBalanceMsat: uint64(onchain.ClnDustLimitSat) * 1000}}
	e := &Engine{
		Store:        s,
		SDK:          sdk,
		Swap:         &onchain.Swap{SDK: sdk, CalculateLspFee: noLspFee},
		ChannelClose: &onchain.ChannelClose{SDK: sdk, CalculateLspFee: noLspFee},
	}

	items, err := e.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestChannelCloseFundsAvailableSurfacesAboveDustLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sdk := &fakeEngineSDK{
		nodeState:  &sdkadapter.NodeState{OnchainBalanceMsat: 100_000_000},
		feeRate:    5,
		prepareFee: 300,
	}
	e := &Engine{
		Store:        s,
		SDK:          sdk,
		Swap:         &onchain.Swap{SDK: sdk, CalculateLspFee: noLspFee},
		ChannelClose: &onchain.ChannelClose{SDK: sdk, CalculateLspFee: noLspFee},
	}

	items, err := e.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, KindChannelClosesFundsAvailable, items[0].Kind)
	assert.Equal(t, uint64(100_000-onchain.ClnDustLimitSat), items[0].ChannelClosesFunds.AvailableFunds.Sats())
}

func TestDismissTopupMarksOfferCompleted(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.StoreOffer(ctx, store.StoredOffer{PaymentID: "pay-1", Kind: store.OfferKindPocketTopup}))

	sdk := &fakeEngineSDK{nodeState: &sdkadapter.NodeState{OnchainBalanceMsat: 0}}
	e := &Engine{
		Store:        s,
		SDK:          sdk,
		Swap:         &onchain.Swap{SDK: sdk, CalculateLspFee: noLspFee},
		ChannelClose: &onchain.ChannelClose{SDK: sdk, CalculateLspFee: noLspFee},
	}

	require.NoError(t, e.DismissTopup(ctx, "pay-1"))

	items, err := e.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}
