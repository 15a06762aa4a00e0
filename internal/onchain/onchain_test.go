package onchain

import (
	"context"
	"testing"

	"github.com/getlipa/lipa-lightning-lib-go/internal/sdkadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOnchainSDK struct {
	sdkadapter.SDK
	nodeState          *sdkadapter.NodeState
	feeRate            uint32
	utxos              []sdkadapter.UTXO
	prepareRefundFee   uint64
	refundTxID         string
	prepareRedeemFee   uint64
	redeemTxID         string
	onchainLimits      *sdkadapter.OnchainPaymentLimits
	prepareOnchainResp *sdkadapter.PrepareOnchainPaymentResponse
	swapAddress        *sdkadapter.SwapAddressInfo
}

func (f *fakeOnchainSDK) NodeState(context.Context) (*sdkadapter.NodeState, error) {
	return f.nodeState, nil
}
func (f *fakeOnchainSDK) OnchainFeeRate(context.Context) (uint32, error) { return f.feeRate, nil }
func (f *fakeOnchainSDK) ListUTXOs(context.Context) ([]sdkadapter.UTXO, error) { return f.utxos, nil }
func (f *fakeOnchainSDK) PrepareRedeemOnchainFunds(context.Context, string, uint32) (uint64, error) {
	return f.prepareRedeemFee, nil
}
func (f *fakeOnchainSDK) RedeemOnchainFunds(context.Context, string, uint32) (string, error) {
	return f.redeemTxID, nil
}
func (f *fakeOnchainSDK) PrepareRefund(context.Context, string, string, uint32) (uint64, error) {
	return f.prepareRefundFee, nil
}
func (f *fakeOnchainSDK) Refund(context.Context, string, string, uint32) (string, error) {
	return f.refundTxID, nil
}
func (f *fakeOnchainSDK) OnchainPaymentLimits(context.Context) (*sdkadapter.OnchainPaymentLimits, error) {
	return f.onchainLimits, nil
}
func (f *fakeOnchainSDK) PrepareOnchainPayment(context.Context, uint64, uint32) (*sdkadapter.PrepareOnchainPaymentResponse, error) {
	return f.prepareOnchainResp, nil
}
func (f *fakeOnchainSDK) ReceiveOnchain(context.Context, string) (*sdkadapter.SwapAddressInfo, error) {
	return f.swapAddress, nil
}

func noLspFee(context.Context, uint64) (uint64, string, error) { return 0, "", nil }

func TestChannelClosePrepareSweepAddsDustLimitWhenNoUTXO(t *testing.T) {
	sdk := &fakeOnchainSDK{
		nodeState:        &sdkadapter.NodeState{OnchainBalanceMsat: 100_000_000},
		feeRate:          5,
		prepareRedeemFee: 300,
	}
	c := &ChannelClose{SDK: sdk, CalculateLspFee: noLspFee}

	info, err := c.PrepareSweep(context.Background(), "bc1qdest")
	require.NoError(t, err)
	assert.Equal(t, uint64(300+ClnDustLimitSat), info.OnchainFeeAmount.Sats())
	assert.Equal(t, uint64(100_000-300), info.Amount.Sats())
}

func TestChannelClosePrepareSweepSkipsDustLimitWithExistingUTXO(t *testing.T) {
	sdk := &fakeOnchainSDK{
		nodeState:        &sdkadapter.NodeState{OnchainBalanceMsat: 100_000_000},
		feeRate:          5,
		prepareRedeemFee: 300,
		utxos:            []sdkadapter.UTXO{{AmountMsat: ClnDustLimitSat * 1000}},
	}
	c := &ChannelClose{SDK: sdk, CalculateLspFee: noLspFee}

	info, err := c.PrepareSweep(context.Background(), "bc1qdest")
	require.NoError(t, err)
	assert.Equal(t, uint64(300), info.OnchainFeeAmount.Sats())
}

func TestChannelCloseDetermineResolvingFeesRejectsZeroBalance(t *testing.T) {
	sdk := &fakeOnchainSDK{nodeState: &sdkadapter.NodeState{OnchainBalanceMsat: 0}}
	c := &ChannelClose{SDK: sdk, CalculateLspFee: noLspFee}

	_, err := c.DetermineResolvingFees(context.Background())
	require.Error(t, err)
}

func TestSwapPrepareSweepComputesRecoveredAmount(t *testing.T) {
	sdk := &fakeOnchainSDK{feeRate: 5, prepareRefundFee: 200}
	s := &Swap{SDK: sdk, CalculateLspFee: noLspFee}

	info, err := s.PrepareSweep(context.Background(), sdkadapter.FailedSwapInfo{Address: "bc1qswap", ConfirmedSats: 10_000}, "bc1qdest")
	require.NoError(t, err)
	assert.Equal(t, uint64(9_800), info.RecoveredAmount.Sats())
	assert.Equal(t, uint64(200), info.OnchainFee.Sats())
}

func TestReverseSwapFeasibilityBelowMinimum(t *testing.T) {
	sdk := &fakeOnchainSDK{
		nodeState:     &sdkadapter.NodeState{ChannelsBalanceMsat: 50_000_000},
		onchainLimits: &sdkadapter.OnchainPaymentLimits{MinSat: 100_000, MaxSat: 1_000_000},
	}
	r := &ReverseSwap{SDK: sdk, MaxRoutingFeePermyriad: 150}

	hit, err := r.DetermineClearWalletFeasibility(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RangeBelow, hit.Kind)
}

func TestReverseSwapFeasibilityIn(t *testing.T) {
	sdk := &fakeOnchainSDK{
		nodeState:     &sdkadapter.NodeState{ChannelsBalanceMsat: 500_000_000},
		onchainLimits: &sdkadapter.OnchainPaymentLimits{MinSat: 100_000, MaxSat: 1_000_000},
	}
	r := &ReverseSwap{SDK: sdk, MaxRoutingFeePermyriad: 150}

	hit, err := r.DetermineClearWalletFeasibility(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RangeIn, hit.Kind)
}

func TestReverseSwapFeasibilityAboveMaximum(t *testing.T) {
	sdk := &fakeOnchainSDK{
		nodeState:     &sdkadapter.NodeState{ChannelsBalanceMsat: 2_000_000_000},
		onchainLimits: &sdkadapter.OnchainPaymentLimits{MinSat: 100_000, MaxSat: 1_000_000},
	}
	r := &ReverseSwap{SDK: sdk, MaxRoutingFeePermyriad: 150}

	hit, err := r.DetermineClearWalletFeasibility(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RangeAbove, hit.Kind)
}

func TestReverseSwapPrepareClearWalletSplitsFees(t *testing.T) {
	sdk := &fakeOnchainSDK{
		feeRate:       5,
		onchainLimits: &sdkadapter.OnchainPaymentLimits{MaxPayableSat: 900_000},
		prepareOnchainResp: &sdkadapter.PrepareOnchainPaymentResponse{
			SenderAmountSat: 890_000,
			FeesClaimSat:    500,
			FeesLockupSat:   300,
			TotalFeesSat:    1_000,
		},
	}
	r := &ReverseSwap{SDK: sdk}

	info, err := r.PrepareClearWallet(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(800), info.OnchainFee.Sats())
	assert.Equal(t, uint64(200), info.SwapFee.Sats())
}
