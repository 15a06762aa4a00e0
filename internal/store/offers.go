package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrOfferNotFound = errors.New("offer not found")

// StoreOffer links a Pocket fiat top-up offer to a payment row, grounded
// on data_store.rs's offers table.
func (s *Store) StoreOffer(ctx context.Context, offer StoredOffer) error {
	var completedAt any
	if offer.CompletedAt != nil {
		completedAt = offer.CompletedAt.Unix()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO offers (
			payment_id, offer_kind, exchange_rate, topup_value_minor_units, topup_currency,
			exchange_fee_minor_units, exchange_fee_rate_permyriad, error, error_message, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(payment_id) DO UPDATE SET
			error = excluded.error,
			error_message = excluded.error_message,
			completed_at = excluded.completed_at
	`, offer.PaymentID, string(offer.Kind), offer.ExchangeRate, offer.TopupValueMinorUnits, offer.TopupCurrency,
		offer.ExchangeFeeMinorUnits, offer.ExchangeFeeRatePermyriad, offer.Error, offer.Error, completedAt)
	if err != nil {
		return fmt.Errorf("failed to store offer for payment %s: %w", offer.PaymentID, err)
	}
	return nil
}

// ListUncompletedOffers returns offers with no completed_at timestamp,
// the input to the Actions Required engine's uncompleted-offer scan,
// grounded on actions_required.rs's list().
func (s *Store) ListUncompletedOffers(ctx context.Context) ([]StoredOffer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payment_id, offer_kind, exchange_rate, topup_value_minor_units, topup_currency,
			exchange_fee_minor_units, exchange_fee_rate_permyriad, error, completed_at
		FROM offers WHERE completed_at IS NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list uncompleted offers: %w", err)
	}
	defer rows.Close()

	var out []StoredOffer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer row: %w", err)
		}
		out = append(out, *offer)
	}
	return out, rows.Err()
}

// GetOffer retrieves the offer tied to a single payment.
func (s *Store) GetOffer(ctx context.Context, paymentID string) (*StoredOffer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT payment_id, offer_kind, exchange_rate, topup_value_minor_units, topup_currency,
			exchange_fee_minor_units, exchange_fee_rate_permyriad, error, completed_at
		FROM offers WHERE payment_id = ?
	`, paymentID)

	offer, err := scanOffer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get offer for payment %s: %w", paymentID, err)
	}
	return offer, nil
}

// DismissTopup marks an offer's payment as completed without a real
// settlement, mirroring actions_required.rs's dismiss_topup.
func (s *Store) DismissTopup(ctx context.Context, paymentID string) error {
	now := time.Now().UTC().Unix()
	res, err := s.db.ExecContext(ctx, `UPDATE offers SET completed_at = ? WHERE payment_id = ?`, now, paymentID)
	if err != nil {
		return fmt.Errorf("failed to dismiss topup for payment %s: %w", paymentID, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrOfferNotFound
	}
	return nil
}

func scanOffer(row rowScanner) (*StoredOffer, error) {
	var (
		offer       StoredOffer
		kind        string
		completedAt sql.NullInt64
	)
	if err := row.Scan(&offer.PaymentID, &kind, &offer.ExchangeRate, &offer.TopupValueMinorUnits, &offer.TopupCurrency,
		&offer.ExchangeFeeMinorUnits, &offer.ExchangeFeeRatePermyriad, &offer.Error, &completedAt); err != nil {
		return nil, err
	}
	offer.Kind = OfferKind(kind)
	if completedAt.Valid {
		t := time.Unix(completedAt.Int64, 0).UTC()
		offer.CompletedAt = &t
	}
	return &offer, nil
}
