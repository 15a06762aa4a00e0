package store

import (
	"context"
	"fmt"
	"time"
)

// StoreCreatedInvoice records an invoice produced by the receive pipeline
// so it can be shown as pending until the SDK reports it paid, grounded
// on original_source/src/migrations.rs's created_invoices table.
func (s *Store) StoreCreatedInvoice(ctx context.Context, inv CreatedInvoice) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO created_invoices (payment_hash, invoice, amount_msat, opening_fee_msat, description, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(payment_hash) DO NOTHING
	`, inv.PaymentHash, inv.Invoice, inv.AmountMsat, inv.OpeningFeeMsat, inv.Description, inv.CreatedAt.Unix(), inv.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to store created invoice %s: %w", inv.PaymentHash, err)
	}
	return nil
}

// ListCreatedInvoices returns every invoice the receive pipeline has
// created, used by the activity multiplexer's pending partition.
func (s *Store) ListCreatedInvoices(ctx context.Context) ([]CreatedInvoice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payment_hash, invoice, amount_msat, opening_fee_msat, description, created_at, expires_at FROM created_invoices ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list created invoices: %w", err)
	}
	defer rows.Close()

	var out []CreatedInvoice
	for rows.Next() {
		var (
			inv       CreatedInvoice
			createdAt int64
			expiresAt int64
		)
		if err := rows.Scan(&inv.PaymentHash, &inv.Invoice, &inv.AmountMsat, &inv.OpeningFeeMsat, &inv.Description, &createdAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan created invoice row: %w", err)
		}
		inv.CreatedAt = time.Unix(createdAt, 0).UTC()
		inv.ExpiresAt = time.Unix(expiresAt, 0).UTC()
		out = append(out, inv)
	}
	return out, rows.Err()
}
