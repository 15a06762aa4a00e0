package store

import (
	"context"
	"fmt"
	"time"
)

// LightningAddressStatus mirrors the `with_status` filter applied by
// lightning_address.rs's get() — a row that isn't Enabled is invisible to
// callers even though it's still recorded.
type LightningAddressStatus string

const (
	LightningAddressEnabled  LightningAddressStatus = "enabled"
	LightningAddressDisabled LightningAddressStatus = "disabled"
)

// StoreLightningAddress records a newly registered address, mirroring
// lightning_address.rs's store_lightning_address.
func (s *Store) StoreLightningAddress(ctx context.Context, address string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lightning_addresses (address, status, registered_at) VALUES (?, ?, ?)
		ON CONFLICT(address) DO NOTHING
	`, address, string(LightningAddressEnabled), time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("failed to store lightning address %s: %w", address, err)
	}
	return nil
}

// ListEnabledLightningAddresses returns every address currently enabled,
// mirroring lightning_address.rs's retrieve_lightning_addresses filtered
// to EnableStatus::Enabled.
func (s *Store) ListEnabledLightningAddresses(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT address FROM lightning_addresses WHERE status = ? ORDER BY registered_at ASC
	`, string(LightningAddressEnabled))
	if err != nil {
		return nil, fmt.Errorf("failed to list lightning addresses: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var address string
		if err := rows.Scan(&address); err != nil {
			return nil, fmt.Errorf("failed to scan lightning address row: %w", err)
		}
		out = append(out, address)
	}
	return out, rows.Err()
}
