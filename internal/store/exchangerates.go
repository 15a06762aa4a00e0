package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/getlipa/lipa-lightning-lib-go/internal/money"
)

// ErrExchangeRateNotFound is returned when no rate has ever been recorded
// for a currency.
var ErrExchangeRateNotFound = errors.New("exchange rate not found")

// UpdateExchangeRate upserts the latest rate for a currency and appends a
// row to the history table, mirroring data_store.rs's update_exchange_rate.
func (s *Store) UpdateExchangeRate(ctx context.Context, rate money.ExchangeRate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin exchange rate transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO exchange_rates (currency_code, rate_sats_per_fiat, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(currency_code) DO UPDATE SET
			rate_sats_per_fiat = excluded.rate_sats_per_fiat,
			updated_at = excluded.updated_at
	`, rate.Currency, rate.RateSatPerFiat, rate.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert exchange rate for %s: %w", rate.Currency, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO exchange_rates_history (currency_code, rate_sats_per_fiat, updated_at)
		VALUES (?, ?, ?)
	`, rate.Currency, rate.RateSatPerFiat, rate.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to append exchange rate history for %s: %w", rate.Currency, err)
	}

	return tx.Commit()
}

// GetExchangeRate returns the latest known rate for currency.
func (s *Store) GetExchangeRate(ctx context.Context, currency string) (*money.ExchangeRate, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT currency_code, rate_sats_per_fiat, updated_at FROM exchange_rates WHERE currency_code = ?
	`, currency)

	var (
		rate      money.ExchangeRate
		updatedAt int64
	)
	err := row.Scan(&rate.Currency, &rate.RateSatPerFiat, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExchangeRateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange rate for %s: %w", currency, err)
	}
	rate.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &rate, nil
}

// GetAllExchangeRates returns the latest known rate for every currency
// the wallet has ever seen, mirroring get_all_exchange_rates.
func (s *Store) GetAllExchangeRates(ctx context.Context) ([]money.ExchangeRate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT currency_code, rate_sats_per_fiat, updated_at FROM exchange_rates`)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	defer rows.Close()

	var out []money.ExchangeRate
	for rows.Next() {
		var (
			rate      money.ExchangeRate
			updatedAt int64
		)
		if err := rows.Scan(&rate.Currency, &rate.RateSatPerFiat, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exchange rate row: %w", err)
		}
		rate.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		out = append(out, rate)
	}
	return out, rows.Err()
}
