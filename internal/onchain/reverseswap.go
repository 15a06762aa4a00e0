package onchain

import (
	"context"

	"github.com/getlipa/lipa-lightning-lib-go/internal/money"
	"github.com/getlipa/lipa-lightning-lib-go/internal/sdkadapter"
	"github.com/getlipa/lipa-lightning-lib-go/internal/walleterrors"
)

// ReverseSwap sends the wallet's entire Lightning balance to an on-chain
// address (lightning -> on-chain), grounded on
// original_source/src/onchain/reverse_swap.rs.
type ReverseSwap struct {
	SDK                    sdkadapter.SDK
	MaxRoutingFeePermyriad uint32
}

// DetermineClearWalletFeasibility checks whether the node's current
// Lightning balance falls inside the reverse-swap amount range, mirroring
// reverse_swap.rs's determine_clear_wallet_feasibility.
func (r *ReverseSwap) DetermineClearWalletFeasibility(ctx context.Context) (*RangeHit, error) {
	limits, err := r.SDK.OnchainPaymentLimits(ctx)
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to get on-chain payment limits", err)
	}

	nodeState, err := r.SDK.NodeState(ctx)
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to read node info", err)
	}
	balanceSat := money.NewAmountMsat(nodeState.ChannelsBalanceMsat).Sats()

	// Accommodate Lightning routing fees on top of the SDK's own minimum,
	// rounding the fee up so the balance check stays conservative.
	routingFeeSat := (limits.MinSat*uint64(r.MaxRoutingFeePermyriad) + 9999) / 10000
	min := limits.MinSat + routingFeeSat

	switch {
	case balanceSat < min:
		return &RangeHit{Kind: RangeBelow, Min: money.NewAmountSat(min)}, nil
	case balanceSat <= limits.MaxSat:
		return &RangeHit{Kind: RangeIn}, nil
	default:
		return &RangeHit{Kind: RangeAbove, Max: money.NewAmountSat(limits.MaxSat)}, nil
	}
}

// PrepareClearWallet quotes sending the node's entire Lightning balance
// on-chain, mirroring reverse_swap.rs's prepare_clear_wallet.
func (r *ReverseSwap) PrepareClearWallet(ctx context.Context) (*ClearWalletInfo, error) {
	feeRate, err := r.SDK.OnchainFeeRate(ctx)
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to query on-chain fee rate", err)
	}

	limits, err := r.SDK.OnchainPaymentLimits(ctx)
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to get on-chain payment limits", err)
	}

	prepared, err := r.SDK.PrepareOnchainPayment(ctx, limits.MaxPayableSat, feeRate)
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to prepare on-chain payment", err)
	}

	onchainFee := money.NewAmountSat(prepared.FeesClaimSat + prepared.FeesLockupSat)
	totalFees := money.NewAmountSat(prepared.TotalFeesSat)
	swapFee := totalFees.Sub(onchainFee)

	return &ClearWalletInfo{
		ClearAmount:        money.NewAmountSat(prepared.SenderAmountSat),
		TotalEstimatedFees: totalFees,
		OnchainFee:         onchainFee,
		SwapFee:            swapFee,
		PrepareResponse:    *prepared,
	}, nil
}

// ClearWallet broadcasts a reverse swap prepared by PrepareClearWallet to
// destinationAddress, mirroring reverse_swap.rs's clear_wallet.
func (r *ReverseSwap) ClearWallet(ctx context.Context, info ClearWalletInfo, destinationAddress string) error {
	if err := r.SDK.PayOnchain(ctx, destinationAddress, info.PrepareResponse); err != nil {
		return walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to start reverse swap", err)
	}
	return nil
}
