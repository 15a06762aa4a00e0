// Package ratefeed periodically refreshes the wallet's locally stored
// BTC/fiat exchange rates. The original crate receives rates through an
// externally fed `Support::get_exchange_rate` (mobile-app-supplied, out of
// scope per spec.md's Non-goals on the concrete fx-rate transport); this
// package gives internal/exchange's price providers -- otherwise unwired
// teacher code -- a concrete home, feeding internal/store/exchangerates.go
// the same way data_store.rs's update_exchange_rate is fed.
package ratefeed

import (
	"context"
	"time"

	"github.com/getlipa/lipa-lightning-lib-go/internal/exchange"
	"github.com/getlipa/lipa-lightning-lib-go/internal/money"
	"github.com/getlipa/lipa-lightning-lib-go/internal/store"
	"github.com/getlipa/lipa-lightning-lib-go/pkg/logger"
	"go.uber.org/zap"
)

// Feed refreshes a fixed set of fiat currencies from a PriceProvider into
// the store on each Refresh call.
type Feed struct {
	Provider   exchange.PriceProvider
	Store      *store.Store
	Currencies []string // e.g. []string{"USD", "EUR", "CHF"}
}

// Refresh fetches the current rate for every configured currency and
// upserts it into the store, logging and continuing past individual
// provider failures rather than aborting the whole batch.
func (f *Feed) Refresh(ctx context.Context) {
	for _, currency := range f.Currencies {
		price, err := f.Provider.GetPrice(ctx, currency)
		if err != nil {
			logger.Warn("failed to fetch exchange rate", zap.String("currency", currency), zap.Error(err))
			continue
		}
		if price <= 0 {
			continue
		}

		rate := money.ExchangeRate{
			Currency:       currency,
			RateSatPerFiat: 100_000_000 / price,
			UpdatedAt:      time.Now().UTC(),
		}
		if err := f.Store.UpdateExchangeRate(ctx, rate); err != nil {
			logger.Warn("failed to store exchange rate", zap.String("currency", currency), zap.Error(err))
		}
	}
}
