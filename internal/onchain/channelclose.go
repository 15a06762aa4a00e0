package onchain

import (
	"context"

	"github.com/getlipa/lipa-lightning-lib-go/internal/money"
	"github.com/getlipa/lipa-lightning-lib-go/internal/sdkadapter"
	"github.com/getlipa/lipa-lightning-lib-go/internal/walleterrors"
)

// ChannelClose resolves on-chain funds left over from a channel close,
// grounded on original_source/src/onchain/channel_closes.rs.
type ChannelClose struct {
	SDK             sdkadapter.SDK
	CalculateLspFee calculateLspFeeFn
}

// HasDustLimitUTXO reports whether the node already holds a UTXO exactly
// at the CLN dust-limit reserve, in which case the full on-chain balance
// is already spendable without subtracting the reserve again, mirroring
// both actions_required.rs and channel_closes.rs's identical check.
// Exported so internal/actionsrequired's identical channel-close-funds
// check can share it instead of duplicating the loop.
func HasDustLimitUTXO(utxos []sdkadapter.UTXO) bool {
	for _, u := range utxos {
		if u.AmountMsat == ClnDustLimitSat*1000 {
			return true
		}
	}
	return false
}

// DetermineResolvingFees computes the on-chain sweep option for the node's
// current on-chain balance, mirroring channel_closes.rs's
// determine_resolving_fees. No swap address is passed to the shared
// preflight, so the result's SwapFees is always nil.
func (c *ChannelClose) DetermineResolvingFees(ctx context.Context) (*OnchainResolvingFees, error) {
	nodeState, err := c.SDK.NodeState(ctx)
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "couldn't fetch on-chain balance", err)
	}
	if nodeState.OnchainBalanceMsat == 0 {
		return nil, walleterrors.NewInvalidInput("no on-chain funds to resolve")
	}

	prepare := func(address string, _ uint32) (*preparedOnchainTx, error) {
		sweep, err := c.PrepareSweep(ctx, address)
		if err != nil {
			return nil, err
		}
		return &preparedOnchainTx{
			sentAmountSat: sweep.Amount.Sats(),
			onchainFeeSat: sweep.OnchainFeeAmount.Sats(),
			satPerVByte:   sweep.OnchainFeeRate,
		}, nil
	}

	return determineOnchainResolvingFees(ctx, money.NewAmountMsat(nodeState.OnchainBalanceMsat).Sats(), c.CalculateLspFee, prepare, nil)
}

// PrepareSweep quotes the on-chain fee for sweeping all available
// channel-close funds to address, mirroring channel_closes.rs's
// prepare_sweep.
func (c *ChannelClose) PrepareSweep(ctx context.Context, address string) (*SweepChannelCloseInfo, error) {
	feeRate, err := c.SDK.OnchainFeeRate(ctx)
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeServiceConnectivity, "failed to query on-chain fee rate", err)
	}

	txFeeSat, err := c.SDK.PrepareRedeemOnchainFunds(ctx, address, feeRate)
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to prepare redeem of on-chain funds", err)
	}

	nodeState, err := c.SDK.NodeState(ctx)
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to fetch on-chain balance", err)
	}
	onchainBalanceSat := money.NewAmountMsat(nodeState.OnchainBalanceMsat).Sats()

	utxos, err := c.SDK.ListUTXOs(ctx)
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to list on-chain UTXOs", err)
	}

	// The full dust-limit reserve is added to the *displayed* fee unless
	// it's already accounted for by an existing dust-limit UTXO, but the
	// actual sweepable amount only ever subtracts the real tx fee.
	onchainFeeSat := txFeeSat
	if !HasDustLimitUTXO(utxos) {
		onchainFeeSat += ClnDustLimitSat
	}

	return &SweepChannelCloseInfo{
		Address:          address,
		OnchainFeeRate:   feeRate,
		OnchainFeeAmount: money.NewAmountSat(onchainFeeSat),
		Amount:           money.NewAmountSat(onchainBalanceSat).Sub(money.NewAmountSat(txFeeSat)),
	}, nil
}

// Sweep broadcasts a channel-close sweep prepared by PrepareSweep,
// mirroring channel_closes.rs's sweep.
func (c *ChannelClose) Sweep(ctx context.Context, info SweepChannelCloseInfo) (string, error) {
	txID, err := c.SDK.RedeemOnchainFunds(ctx, info.Address, info.OnchainFeeRate)
	if err != nil {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to sweep funds", err)
	}
	return txID, nil
}

// SwapToLightning automatically routes channel-close funds back into a
// fresh Lightning channel, mirroring channel_closes.rs's swap.
func (c *ChannelClose) SwapToLightning(ctx context.Context, satPerVByte uint32, lspFeeParamsToken string) (string, error) {
	nodeState, err := c.SDK.NodeState(ctx)
	if err != nil {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to fetch on-chain balance", err)
	}
	onchainBalanceSat := money.NewAmountMsat(nodeState.OnchainBalanceMsat).Sats()

	swapAddress, err := c.SDK.ReceiveOnchain(ctx, lspFeeParamsToken)
	if err != nil {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "couldn't generate swap address", err)
	}

	txFeeSat, err := c.SDK.PrepareRedeemOnchainFunds(ctx, swapAddress.BitcoinAddress, satPerVByte)
	if err != nil {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to prepare redeem of on-chain funds", err)
	}

	sendAmountSat := onchainBalanceSat - ClnDustLimitSat - txFeeSat
	if swapAddress.MinAllowedDeposit > sendAmountSat {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "not enough funds after on-chain fees for the minimum swap amount", nil)
	}
	if swapAddress.MaxAllowedDeposit < sendAmountSat {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "available funds exceed the limit for a swap", nil)
	}

	lspFeeMsat, _, err := c.CalculateLspFee(ctx, sendAmountSat)
	if err != nil {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeServiceConnectivity, "could not get lsp fees", err)
	}
	if money.NewAmountMsat(lspFeeMsat).Sats() >= sendAmountSat {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "available funds after on-chain fees aren't enough for lsp fees", nil)
	}

	txID, err := c.SDK.RedeemOnchainFunds(ctx, swapAddress.BitcoinAddress, satPerVByte)
	if err != nil {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to redeem on-chain funds", err)
	}
	return txID, nil
}
