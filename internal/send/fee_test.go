package send

import (
	"context"
	"testing"

	"github.com/getlipa/lipa-lightning-lib-go/internal/sdkadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exact constants from lightning/mod.rs's test module.
const (
	maxFeePermyriad = 150
	exemptFeeSats   = 21
	exemptFeeMsats  = exemptFeeSats * 1000
)

func TestDetermineMaxRoutingFeeModeAbsoluteBelowThreshold(t *testing.T) {
	cfg := MaxRoutingFeeConfig{MaxRoutingFeePermyriad: maxFeePermyriad, MaxRoutingFeeExemptFeeSats: exemptFeeSats}
	amountSat := exemptFeeMsats/(maxFeePermyriad/10) - 1

	mode := DetermineMaxRoutingFeeMode(cfg, amountSat)

	require.Equal(t, RoutingFeeModeAbsolute, mode.Kind)
	assert.Equal(t, uint64(exemptFeeSats), mode.MaxFeeAmountSat)
}

func TestDetermineMaxRoutingFeeModeRelativeAtThreshold(t *testing.T) {
	cfg := MaxRoutingFeeConfig{MaxRoutingFeePermyriad: maxFeePermyriad, MaxRoutingFeeExemptFeeSats: exemptFeeSats}
	amountSat := uint64(exemptFeeMsats / (maxFeePermyriad / 10))

	mode := DetermineMaxRoutingFeeMode(cfg, amountSat)

	require.Equal(t, RoutingFeeModeRelative, mode.Kind)
	assert.EqualValues(t, maxFeePermyriad, mode.MaxFeePermyriad)
}

type fakeNodeStateSDK struct {
	sdkadapter.SDK
	state *sdkadapter.NodeState
	err   error
}

func (f *fakeNodeStateSDK) NodeState(_ context.Context) (*sdkadapter.NodeState, error) {
	return f.state, f.err
}

func TestDeterminePaymentAffordability(t *testing.T) {
	cfg := MaxRoutingFeeConfig{MaxRoutingFeePermyriad: 50, MaxRoutingFeeExemptFeeSats: 21}

	t.Run("not enough funds", func(t *testing.T) {
		sdk := &fakeNodeStateSDK{state: &sdkadapter.NodeState{MaxPayableMsat: 500_000}}
		result, err := DeterminePaymentAffordability(context.Background(), sdk, cfg, 1000)
		require.NoError(t, err)
		assert.Equal(t, NotEnoughFunds, result)
	})

	t.Run("affordable", func(t *testing.T) {
		sdk := &fakeNodeStateSDK{state: &sdkadapter.NodeState{MaxPayableMsat: 10_000_000}}
		result, err := DeterminePaymentAffordability(context.Background(), sdk, cfg, 1000)
		require.NoError(t, err)
		assert.Equal(t, Affordable, result)
	})

	t.Run("unaffordable fees", func(t *testing.T) {
		amountSat := uint64(1000)
		mode := DetermineMaxRoutingFeeMode(cfg, amountSat)
		maxFeeMsat := mode.maxFeeMsat(amountSat)
		sdk := &fakeNodeStateSDK{state: &sdkadapter.NodeState{MaxPayableMsat: amountSat*1000 + maxFeeMsat - 1}}
		result, err := DeterminePaymentAffordability(context.Background(), sdk, cfg, amountSat)
		require.NoError(t, err)
		assert.Equal(t, UnaffordableFees, result)
	})
}
