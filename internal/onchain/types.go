// Package onchain implements the four on-chain resolvers (spec 4.10):
// sweeping a failed swap or channel-close funds out to an external
// address, or swapping either back into Lightning, plus the reverse-swap
// "clear wallet" flow. Grounded on
// original_source/src/onchain/{mod,swap,channel_closes,reverse_swap}.rs.
package onchain

import (
	"github.com/getlipa/lipa-lightning-lib-go/internal/money"
	"github.com/getlipa/lipa-lightning-lib-go/internal/sdkadapter"
)

// ClnDustLimitSat is CLN's forced minimum on-chain emergency reserve,
// grounded on actions_required.rs's CLN_DUST_LIMIT_SAT. A TODO in the
// original marks this as removable once
// https://github.com/ElementsProject/lightning/issues/7131 is addressed;
// carried over verbatim since the upstream issue is still open. Exported
// so internal/actionsrequired's identical channel-close-funds check can
// share the constant instead of duplicating it.
const ClnDustLimitSat = 546

// SwapToLightningFees is the fee breakdown for resolving a failed swap or
// channel-close funds by swapping them back into a Lightning channel,
// grounded on mod.rs's SwapToLightningFees.
type SwapToLightningFees struct {
	SwapFee           money.Amount
	OnchainFee        money.Amount
	ChannelOpeningFee money.Amount
	TotalFees         money.Amount
	LspFeeParamsToken string
}

// OnchainResolvingFees is the result of a resolver's determine_resolving_fees
// preflight: the on-chain sweep's estimated fee, plus a swap-to-Lightning
// option when the amount qualifies, grounded on mod.rs's
// OnchainResolvingFees.
type OnchainResolvingFees struct {
	SwapFees                *SwapToLightningFees // nil when swapping back isn't viable
	SweepOnchainFeeEstimate money.Amount
	SatPerVByte             uint32
}

// SweepFailedSwapInfo is a prepared failed-swap sweep, grounded on
// swap.rs's SweepFailedSwapInfo.
type SweepFailedSwapInfo struct {
	SwapAddress     string
	RecoveredAmount money.Amount
	OnchainFee      money.Amount
	ToAddress       string
	OnchainFeeRate  uint32
}

// SweepChannelCloseInfo is a prepared channel-close sweep, grounded on
// channel_closes.rs's SweepChannelCloseInfo.
type SweepChannelCloseInfo struct {
	Address          string
	OnchainFeeRate   uint32
	OnchainFeeAmount money.Amount
	Amount           money.Amount
}

// RangeHitKind discriminates RangeHit, mirroring reverse_swap.rs's RangeHit.
type RangeHitKind string

const (
	RangeBelow RangeHitKind = "below"
	RangeIn    RangeHitKind = "in"
	RangeAbove RangeHitKind = "above"
)

// RangeHit is the result of DetermineClearWalletFeasibility.
type RangeHit struct {
	Kind RangeHitKind
	Min  money.Amount // set on RangeBelow
	Max  money.Amount // set on RangeAbove
}

// ClearWalletInfo is a prepared reverse swap, grounded on reverse_swap.rs's
// ClearWalletInfo. PrepareResponse is threaded back into ClearWallet
// unmodified, mirroring the Rust struct carrying the SDK's own
// PrepareOnchainPaymentResponse alongside the display amounts.
type ClearWalletInfo struct {
	ClearAmount        money.Amount
	TotalEstimatedFees money.Amount
	OnchainFee         money.Amount
	SwapFee            money.Amount
	PrepareResponse    sdkadapter.PrepareOnchainPaymentResponse
}
