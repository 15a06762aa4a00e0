// Package actionsrequired surfaces wallet items that need a user decision
// before they resolve themselves: a fiat top-up stuck on the exchange
// side, a failed swap whose funds are still on-chain, or channel-close
// funds waiting to be swept, grounded on
// original_source/src/actions_required.rs.
package actionsrequired

import (
	"github.com/getlipa/lipa-lightning-lib-go/internal/money"
	"github.com/getlipa/lipa-lightning-lib-go/internal/onchain"
	"github.com/getlipa/lipa-lightning-lib-go/internal/sdkadapter"
	"github.com/getlipa/lipa-lightning-lib-go/internal/store"
)

// Kind discriminates Item, mirroring actions_required.rs's ActionRequiredItem.
type Kind string

const (
	KindUncompletedOffer            Kind = "uncompleted_offer"
	KindUnresolvedFailedSwap        Kind = "unresolved_failed_swap"
	KindChannelClosesFundsAvailable Kind = "channel_closes_funds_available"
)

// Item is a single actions-required entry. Exactly one of the kind-specific
// fields is populated, matching Kind.
type Item struct {
	Kind Kind

	UncompletedOffer     *store.StoredOffer
	UnresolvedFailedSwap *UnresolvedFailedSwap
	ChannelClosesFunds   *ChannelClosesFundsAvailable
}

// UnresolvedFailedSwap is a failed swap whose on-chain funds haven't been
// swept or swapped back, grounded on actions_required.rs's
// ActionRequiredItem::UnresolvedFailedSwap.
type UnresolvedFailedSwap struct {
	SwapInfo      sdkadapter.FailedSwapInfo
	ResolvingFees *onchain.OnchainResolvingFees
}

// ChannelClosesFundsAvailable is leftover on-chain balance from one or
// more closed channels, grounded on actions_required.rs's
// ActionRequiredItem::ChannelClosesFundsAvailable.
type ChannelClosesFundsAvailable struct {
	AvailableFunds money.Amount
	ResolvingFees  *onchain.OnchainResolvingFees
}
