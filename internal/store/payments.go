package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrPaymentNotFound is returned when a payment_id has no matching row.
var ErrPaymentNotFound = errors.New("payment not found")

// StorePaymentInfo inserts or updates a payment's metadata row, grounded
// on data_store.rs's store_payment_info.
func (s *Store) StorePaymentInfo(ctx context.Context, meta StoredPaymentMetadata) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (payment_id, payment_state, description, invoice, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(payment_id) DO UPDATE SET
			payment_state = excluded.payment_state,
			description = excluded.description,
			invoice = excluded.invoice,
			metadata = excluded.metadata
	`, meta.PaymentID, string(meta.PaymentState), meta.Description, meta.Invoice, meta.Metadata, meta.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to store payment info for %s: %w", meta.PaymentID, err)
	}
	return nil
}

// UpdatePaymentState transitions an existing payment to a new state,
// mirroring the retry/fail/succeed transitions in payment.rs.
func (s *Store) UpdatePaymentState(ctx context.Context, paymentID string, state PaymentState) error {
	res, err := s.db.ExecContext(ctx, `UPDATE payments SET payment_state = ? WHERE payment_id = ?`, string(state), paymentID)
	if err != nil {
		return fmt.Errorf("failed to update payment state for %s: %w", paymentID, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// GetPayment retrieves a single payment's metadata by id.
func (s *Store) GetPayment(ctx context.Context, paymentID string) (*StoredPaymentMetadata, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT payment_id, payment_state, description, invoice, metadata, created_at
		FROM payments WHERE payment_id = ?
	`, paymentID)

	meta, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment %s: %w", paymentID, err)
	}
	return meta, nil
}

// ListPayments returns every locally-known payment, newest first. The
// activity multiplexer reads the SDK's payment history and does not call it.
func (s *Store) ListPayments(ctx context.Context) ([]StoredPaymentMetadata, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payment_id, payment_state, description, invoice, metadata, created_at
		FROM payments ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var out []StoredPaymentMetadata
	for rows.Next() {
		meta, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		out = append(out, *meta)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*StoredPaymentMetadata, error) {
	var (
		meta      StoredPaymentMetadata
		state     string
		createdAt int64
	)
	if err := row.Scan(&meta.PaymentID, &state, &meta.Description, &meta.Invoice, &meta.Metadata, &createdAt); err != nil {
		return nil, err
	}
	meta.PaymentState = PaymentState(state)
	meta.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &meta, nil
}
