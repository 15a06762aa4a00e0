package actionsrequired

import (
	"context"
	"errors"
	"strconv"

	"github.com/getlipa/lipa-lightning-lib-go/internal/money"
	"github.com/getlipa/lipa-lightning-lib-go/internal/onchain"
	"github.com/getlipa/lipa-lightning-lib-go/internal/sdkadapter"
	"github.com/getlipa/lipa-lightning-lib-go/internal/store"
	"github.com/getlipa/lipa-lightning-lib-go/internal/walleterrors"
)

// channelCloseHiddenKey and failedSwapHiddenKey build the store's hidden-
// item keys. The original crate keeps a single overwritten hidden value
// per category; here every distinct balance/address gets its own key in
// the store's hidden-items set, which is equivalent in practice since a
// changed balance or a new swap address was never a match for an old
// hidden key to begin with.
func channelCloseHiddenKey(amountSat uint64) string {
	return "channel_close:" + strconv.FormatUint(amountSat, 10)
}

func failedSwapHiddenKey(address string) string {
	return "failed_swap:" + address
}

// Engine computes the list of actions-required items, grounded on
// actions_required.rs's list().
type Engine struct {
	Store        *store.Store
	Swap         *onchain.Swap
	ChannelClose *onchain.ChannelClose
	SDK          sdkadapter.SDK
}

// List returns every outstanding actions-required item: uncompleted fiat
// top-up offers, unresolved failed swaps, and channel-close funds
// available to sweep, mirroring actions_required.rs's list().
func (e *Engine) List(ctx context.Context) ([]Item, error) {
	var items []Item

	offers, err := e.Store.ListUncompletedOffers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range offers {
		items = append(items, Item{Kind: KindUncompletedOffer, UncompletedOffer: &offers[i]})
	}

	failedSwapItems, err := e.unresolvedFailedSwaps(ctx)
	if err != nil {
		return nil, err
	}
	items = append(items, failedSwapItems...)

	channelCloseItem, err := e.channelCloseFundsAvailable(ctx)
	if err != nil {
		return nil, err
	}
	if channelCloseItem != nil {
		items = append(items, *channelCloseItem)
	}

	return items, nil
}

// unresolvedFailedSwaps lists failed swaps still worth surfacing: one the
// user hasn't hidden, or one they hid but whose on-chain balance has since
// grown enough that a sweep is viable again, mirroring
// actions_required.rs's handling of hidden_unrecoverable_failed_swap_addresses.
func (e *Engine) unresolvedFailedSwaps(ctx context.Context) ([]Item, error) {
	failedSwaps, err := e.Swap.ListFailedUnresolved(ctx)
	if err != nil {
		return nil, err
	}

	var items []Item
	for _, swap := range failedSwaps {
		hidden, err := e.Store.IsActionsRequiredItemHidden(ctx, failedSwapHiddenKey(swap.Address))
		if err != nil {
			return nil, err
		}

		resolvingFees, err := e.Swap.DetermineResolvingFees(ctx, swap)
		if err != nil {
			return nil, err
		}

		if hidden {
			// A previously hidden swap only resurfaces once a burn-address
			// dry-run sweep succeeds again, meaning the balance grew
			// enough to make resolving it worthwhile.
			if _, err := e.Swap.PrepareSweep(ctx, swap, onchain.BurnAddress); err != nil {
				var runtimeErr *walleterrors.RuntimeError
				if errors.As(err, &runtimeErr) {
					continue
				}
				return nil, err
			}
		}

		items = append(items, Item{
			Kind: KindUnresolvedFailedSwap,
			UnresolvedFailedSwap: &UnresolvedFailedSwap{
				SwapInfo:      swap,
				ResolvingFees: resolvingFees,
			},
		})
	}
	return items, nil
}

// channelCloseFundsAvailable reports whether there's on-chain balance left
// over from closed channels worth surfacing, mirroring
// actions_required.rs's handling of hidden_unrecoverable_channel_close_funds_amount.
func (e *Engine) channelCloseFundsAvailable(ctx context.Context) (*Item, error) {
	nodeState, err := e.SDK.NodeState(ctx)
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "couldn't fetch on-chain balance", err)
	}
	onchainBalanceSat := money.NewAmountMsat(nodeState.OnchainBalanceMsat).Sats()
	if onchainBalanceSat <= onchain.ClnDustLimitSat {
		return nil, nil
	}

	utxos, err := e.SDK.ListUTXOs(ctx)
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "failed to list on-chain UTXOs", err)
	}
	availableFundsSat := onchainBalanceSat
	if !onchain.HasDustLimitUTXO(utxos) {
		availableFundsSat -= onchain.ClnDustLimitSat
	}

	hidden, err := e.Store.IsActionsRequiredItemHidden(ctx, channelCloseHiddenKey(onchainBalanceSat))
	if err != nil {
		return nil, err
	}

	// A hidden amount only resurfaces if resolving is still possible at
	// all, mirroring the Rust source's behavior of checking
	// determine_resolving_fees() again before giving up on the item.
	resolvingFees, err := e.ChannelClose.DetermineResolvingFees(ctx)
	if err != nil {
		var invalidInput *walleterrors.InvalidInput
		if errors.As(err, &invalidInput) {
			return nil, nil
		}
		return nil, err
	}
	if hidden && resolvingFees == nil {
		return nil, nil
	}

	return &Item{
		Kind: KindChannelClosesFundsAvailable,
		ChannelClosesFunds: &ChannelClosesFundsAvailable{
			AvailableFunds: money.NewAmountSat(availableFundsSat),
			ResolvingFees:  resolvingFees,
		},
	}, nil
}

// DismissTopup marks an uncompleted fiat top-up offer as resolved without
// a real settlement, mirroring actions_required.rs's dismiss_topup.
func (e *Engine) DismissTopup(ctx context.Context, paymentID string) error {
	err := e.Store.DismissTopup(ctx, paymentID)
	if err != nil {
		return walleterrors.NewRuntimeError(walleterrors.CodeOfferServiceUnavailable, "failed to dismiss topup", err)
	}
	return nil
}

// HideUnresolvedFailedSwap hides a failed swap item from future List
// calls, mirroring actions_required.rs's
// hide_unrecoverable_failed_swap_item.
func (e *Engine) HideUnresolvedFailedSwap(ctx context.Context, swapAddress string) error {
	return e.Store.HideActionsRequiredItem(ctx, failedSwapHiddenKey(swapAddress))
}

// HideChannelCloseFundsAvailable hides the current channel-close funds
// item from future List calls, mirroring actions_required.rs's
// hide_unrecoverable_channel_close_funds_item.
func (e *Engine) HideChannelCloseFundsAvailable(ctx context.Context) error {
	nodeState, err := e.SDK.NodeState(ctx)
	if err != nil {
		return walleterrors.NewRuntimeError(walleterrors.CodeNodeUnavailable, "couldn't fetch on-chain balance", err)
	}
	onchainBalanceSat := money.NewAmountMsat(nodeState.OnchainBalanceMsat).Sats()
	return e.Store.HideActionsRequiredItem(ctx, channelCloseHiddenKey(onchainBalanceSat))
}
