package onchain

import (
	"context"

	"github.com/getlipa/lipa-lightning-lib-go/internal/money"
	"github.com/getlipa/lipa-lightning-lib-go/internal/sdkadapter"
	"github.com/getlipa/lipa-lightning-lib-go/internal/walleterrors"
)

// Swap resolves failed swap-in addresses: funds that arrived on-chain for
// a swap that never completed, grounded on
// original_source/src/onchain/swap.rs.
type Swap struct {
	SDK             sdkadapter.SDK
	CalculateLspFee calculateLspFeeFn
}

// ListFailedUnresolved returns swap-in addresses with funds that never
// completed a swap, mirroring swap.rs's list_failed_unresolved (already
// filtered to refund_tx_ids.is_empty() by the SDK adapter boundary).
func (s *Swap) ListFailedUnresolved(ctx context.Context) ([]sdkadapter.FailedSwapInfo, error) {
	swaps, err := s.SDK.ListRefundables(ctx)
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to list refundable failed swaps", err)
	}
	return swaps, nil
}

// DetermineResolvingFees computes the on-chain sweep option for resolving
// failedSwap, mirroring swap.rs's determine_resolving_fees. No swap
// address is passed to the shared preflight, so the result's SwapFees is
// always nil.
func (s *Swap) DetermineResolvingFees(ctx context.Context, failedSwap sdkadapter.FailedSwapInfo) (*OnchainResolvingFees, error) {
	prepare := func(address string, _ uint32) (*preparedOnchainTx, error) {
		sweep, err := s.PrepareSweep(ctx, failedSwap, address)
		if err != nil {
			return nil, err
		}
		return &preparedOnchainTx{
			sentAmountSat: sweep.RecoveredAmount.Sats(),
			onchainFeeSat: sweep.OnchainFee.Sats(),
			satPerVByte:   sweep.OnchainFeeRate,
		}, nil
	}
	return determineOnchainResolvingFees(ctx, failedSwap.ConfirmedSats, s.CalculateLspFee, prepare, nil)
}

// PrepareSweep quotes the on-chain fee for sweeping failedSwap's funds to
// toAddress, mirroring swap.rs's prepare_sweep.
func (s *Swap) PrepareSweep(ctx context.Context, failedSwap sdkadapter.FailedSwapInfo, toAddress string) (*SweepFailedSwapInfo, error) {
	feeRate, err := s.SDK.OnchainFeeRate(ctx)
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to query on-chain fee rate", err)
	}

	refundTxFeeSat, err := s.SDK.PrepareRefund(ctx, failedSwap.Address, toAddress, feeRate)
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to prepare a failed swap refund transaction", err)
	}

	onchainFee := money.NewAmountSat(refundTxFeeSat)
	recovered := money.NewAmountSat(failedSwap.ConfirmedSats).Sub(onchainFee)

	return &SweepFailedSwapInfo{
		SwapAddress:     failedSwap.Address,
		RecoveredAmount: recovered,
		OnchainFee:      onchainFee,
		ToAddress:       toAddress,
		OnchainFeeRate:  feeRate,
	}, nil
}

// Sweep broadcasts a failed-swap refund prepared by PrepareSweep,
// mirroring swap.rs's sweep. Returns the sweep transaction's txid.
func (s *Swap) Sweep(ctx context.Context, info SweepFailedSwapInfo) (string, error) {
	txID, err := s.SDK.Refund(ctx, info.SwapAddress, info.ToAddress, info.OnchainFeeRate)
	if err != nil {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to create and broadcast failed swap refund transaction", err)
	}
	return txID, nil
}

// SwapToLightning automatically routes a failed swap's funds back into a
// fresh Lightning channel instead of an external address, mirroring
// swap.rs's swap. satPerVByte and lspFeeParamsToken are normally the ones
// returned by DetermineResolvingFees.
func (s *Swap) SwapToLightning(ctx context.Context, failedSwap sdkadapter.FailedSwapInfo, satPerVByte uint32, lspFeeParamsToken string) (string, error) {
	swapAddress, err := s.SDK.ReceiveOnchain(ctx, lspFeeParamsToken)
	if err != nil {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "couldn't generate swap address", err)
	}

	refundTxFeeSat, err := s.SDK.PrepareRefund(ctx, failedSwap.Address, swapAddress.BitcoinAddress, satPerVByte)
	if err != nil {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "couldn't prepare refund", err)
	}

	sendAmountSat := failedSwap.ConfirmedSats - refundTxFeeSat
	if swapAddress.MinAllowedDeposit > sendAmountSat {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed swap amount isn't enough for creating a new swap", nil)
	}
	if swapAddress.MaxAllowedDeposit < sendAmountSat {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed swap amount is too big for creating a new swap", nil)
	}

	lspFeeMsat, _, err := s.CalculateLspFee(ctx, sendAmountSat)
	if err != nil {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to calculate lsp fee", err)
	}
	if money.NewAmountMsat(lspFeeMsat).Sats() >= sendAmountSat {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "a new channel is needed and the failed swap amount isn't enough to pay for fees", nil)
	}

	txID, err := s.SDK.Refund(ctx, failedSwap.Address, swapAddress.BitcoinAddress, satPerVByte)
	if err != nil {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "couldn't broadcast swap refund transaction", err)
	}
	return txID, nil
}
