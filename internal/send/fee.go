// Package send implements the outgoing BOLT11 payment pipeline (spec
// 4.6): preflight checks, the affordability trichotomy, and the
// max-routing-fee mode, grounded on
// original_source/src/lightning/{bolt11,mod}.rs's Bolt11::pay /
// Bolt11::pay_open_amount and Lightning::determine_payment_affordability /
// determine_max_routing_fee_mode.
package send

import (
	"context"

	"github.com/getlipa/lipa-lightning-lib-go/internal/sdkadapter"
	"github.com/getlipa/lipa-lightning-lib-go/internal/walleterrors"
)

// RoutingFeeModeKind is the discriminant of MaxRoutingFeeMode, mirroring
// breez_sdk_core::MaxRoutingFeeMode's Relative/Absolute variants.
type RoutingFeeModeKind string

const (
	RoutingFeeModeRelative RoutingFeeModeKind = "relative"
	RoutingFeeModeAbsolute RoutingFeeModeKind = "absolute"
)

// MaxRoutingFeeMode is the cap the wallet will place on routing fees for a
// given payment amount, returned by DetermineMaxRoutingFeeMode.
type MaxRoutingFeeMode struct {
	Kind            RoutingFeeModeKind
	MaxFeePermyriad uint32 // set when Kind == RoutingFeeModeRelative
	MaxFeeAmountSat uint64 // set when Kind == RoutingFeeModeAbsolute
}

// MaxRoutingFeeConfig mirrors config/wallet.go's WalletConfig.MaxRoutingFee
// block (itself grounded on original_source/src/config.rs's
// MaxRoutingFeeConfig).
type MaxRoutingFeeConfig struct {
	MaxRoutingFeePermyriad     uint32
	MaxRoutingFeeExemptFeeSats uint64
}

// DetermineMaxRoutingFeeMode picks the fee cap mode for amountSat, an exact
// port of lightning/mod.rs's get_payment_max_routing_fee_mode: below the
// exempt floor, a relative cap would be smaller than the floor, so the
// wallet falls back to an absolute cap at the floor instead.
func DetermineMaxRoutingFeeMode(cfg MaxRoutingFeeConfig, amountSat uint64) MaxRoutingFeeMode {
	relativeFeeMsat := amountSat * 1000 * uint64(cfg.MaxRoutingFeePermyriad) / 10000
	exemptFeeMsat := cfg.MaxRoutingFeeExemptFeeSats * 1000

	if relativeFeeMsat < exemptFeeMsat {
		return MaxRoutingFeeMode{Kind: RoutingFeeModeAbsolute, MaxFeeAmountSat: cfg.MaxRoutingFeeExemptFeeSats}
	}
	return MaxRoutingFeeMode{Kind: RoutingFeeModeRelative, MaxFeePermyriad: cfg.MaxRoutingFeePermyriad}
}

// maxFeeMsat returns the concrete fee cap in millisats this mode imposes
// on paying amountSat.
func (m MaxRoutingFeeMode) maxFeeMsat(amountSat uint64) uint64 {
	switch m.Kind {
	case RoutingFeeModeAbsolute:
		return m.MaxFeeAmountSat * 1000
	default:
		return amountSat * 1000 * uint64(m.MaxFeePermyriad) / 10000
	}
}

// PaymentAffordability is the outcome of DeterminePaymentAffordability,
// mirroring lightning/mod.rs's PaymentAffordability enum.
type PaymentAffordability string

const (
	NotEnoughFunds   PaymentAffordability = "not_enough_funds"
	UnaffordableFees PaymentAffordability = "unaffordable_fees"
	Affordable       PaymentAffordability = "affordable"
)

// DeterminePaymentAffordability checks whether amountSat (plus the routing
// fee cap it implies) fits under the node's current max payable amount,
// an exact port of Lightning::determine_payment_affordability.
func DeterminePaymentAffordability(ctx context.Context, sdk sdkadapter.SDK, cfg MaxRoutingFeeConfig, amountSat uint64) (PaymentAffordability, error) {
	mode := DetermineMaxRoutingFeeMode(cfg, amountSat)
	maxFeeMsat := mode.maxFeeMsat(amountSat)

	nodeState, err := sdk.NodeState(ctx)
	if err != nil {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to read node info", err)
	}

	amountMsat := amountSat * 1000
	if amountMsat > nodeState.MaxPayableMsat {
		return NotEnoughFunds, nil
	}
	if amountMsat+maxFeeMsat > nodeState.MaxPayableMsat {
		return UnaffordableFees, nil
	}
	return Affordable, nil
}
