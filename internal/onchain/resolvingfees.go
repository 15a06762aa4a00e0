package onchain

import (
	"context"

	"github.com/getlipa/lipa-lightning-lib-go/internal/money"
	"github.com/getlipa/lipa-lightning-lib-go/internal/sdkadapter"
	"github.com/getlipa/lipa-lightning-lib-go/internal/walleterrors"
)

// BurnAddress is the well-known unspendable address used to learn an
// on-chain fee estimate without committing to a real destination,
// grounded on mod.rs's "1BitcoinEaterAddressDontSendf59kuE" literal.
// Exported so internal/actionsrequired can reuse it for the same
// dry-run-sweep check it performs on a previously hidden failed swap.
const BurnAddress = "1BitcoinEaterAddressDontSendf59kuE"

// calculateLspFeeFn quotes the LSP's channel-opening fee for sending
// amountSat through a just-in-time channel, abstracting over
// lsp.CalculateFee so this package doesn't depend on the lsp
// client's transport.
type calculateLspFeeFn func(ctx context.Context, amountSat uint64) (feeMsat uint64, lspFeeParamsToken string, err error)

// preparedOnchainTx is the outcome of a resolver-specific dry-run sweep
// to the burn address, used only to learn the on-chain fee it would
// cost, mirroring mod.rs's prepare_onchain_tx closure parameter.
type preparedOnchainTx struct {
	sentAmountSat uint64
	onchainFeeSat uint64
	satPerVByte   uint32
}

// determineOnchainResolvingFees is the shared preflight every resolver's
// DetermineResolvingFees delegates to, an exact port of mod.rs's
// get_onchain_resolving_fees.
func determineOnchainResolvingFees(
	ctx context.Context,
	amountSat uint64,
	calculateLspFee calculateLspFeeFn,
	prepare func(address string, satPerVByte uint32) (*preparedOnchainTx, error),
	swapInfo *sdkadapter.SwapAddressInfo,
) (*OnchainResolvingFees, error) {
	address := BurnAddress
	if swapInfo != nil {
		address = swapInfo.BitcoinAddress
	}

	tx, err := prepare(address, 0)
	if err != nil {
		// A failure to even prepare a dry-run sweep means there's nothing
		// economically useful to report, mirroring mod.rs's Ok(None) on
		// prepare_onchain_tx failure rather than propagating the error.
		return nil, nil
	}

	// Require on-chain fees to stay under half the swept amount, leaving
	// some leeway since the real fee (to an unknown destination) may
	// differ slightly from this estimate.
	if tx.onchainFeeSat*2 > amountSat {
		return nil, nil
	}

	onchainFee := money.NewAmountSat(tx.onchainFeeSat)
	result := &OnchainResolvingFees{
		SweepOnchainFeeEstimate: onchainFee,
		SatPerVByte:             tx.satPerVByte,
	}

	lspFeeMsat, lspFeeParamsToken, err := calculateLspFee(ctx, tx.sentAmountSat)
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to calculate lsp fee", err)
	}
	lspFee := money.NewAmountMsat(lspFeeMsat)

	if swapInfo == nil ||
		tx.sentAmountSat < swapInfo.MinAllowedDeposit ||
		tx.sentAmountSat > swapInfo.MaxAllowedDeposit ||
		tx.sentAmountSat <= lspFee.Sats() {
		return result, nil
	}

	total := onchainFee.Add(lspFee)
	result.SwapFees = &SwapToLightningFees{
		SwapFee:           money.Amount{},
		OnchainFee:        onchainFee,
		ChannelOpeningFee: lspFee,
		TotalFees:         total,
		LspFeeParamsToken: lspFeeParamsToken,
	}
	return result, nil
}
