package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// HideActionsRequiredItem hides an unrecoverable actions-required item
// (a failed swap or channel-close-funds entry) from future listings once
// the user has acknowledged it, mirroring
// actions_required.rs's hide_unrecoverable_channel_close_funds_item /
// hide_unrecoverable_failed_swap_item.
func (s *Store) HideActionsRequiredItem(ctx context.Context, itemKey string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO actions_required_hidden_items (item_key, hidden_at) VALUES (?, ?)
		ON CONFLICT(item_key) DO NOTHING
	`, itemKey, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("failed to hide actions required item %s: %w", itemKey, err)
	}
	return nil
}

// IsActionsRequiredItemHidden reports whether itemKey was previously
// hidden by HideActionsRequiredItem.
func (s *Store) IsActionsRequiredItemHidden(ctx context.Context, itemKey string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM actions_required_hidden_items WHERE item_key = ?`, itemKey).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check hidden status of %s: %w", itemKey, err)
	}
	return true, nil
}

// SetPersonalNote attaches a user-supplied note to a payment, mirroring
// activities.rs's set_personal_note.
func (s *Store) SetPersonalNote(ctx context.Context, paymentID, note string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_personal_notes (payment_id, note) VALUES (?, ?)
		ON CONFLICT(payment_id) DO UPDATE SET note = excluded.note
	`, paymentID, note)
	if err != nil {
		return fmt.Errorf("failed to set personal note for payment %s: %w", paymentID, err)
	}
	return nil
}

// GetPersonalNote returns the note attached to a payment, or "" if none.
func (s *Store) GetPersonalNote(ctx context.Context, paymentID string) (string, error) {
	var note string
	err := s.db.QueryRowContext(ctx, `SELECT note FROM activity_personal_notes WHERE payment_id = ?`, paymentID).Scan(&note)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get personal note for payment %s: %w", paymentID, err)
	}
	return note, nil
}
