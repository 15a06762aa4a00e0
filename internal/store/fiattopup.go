package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrFiatTopupInfoNotFound = errors.New("fiat topup info not found")

// StoreFiatTopupInfo persists the SEPA addressing details Pocket returned
// for a registered top-up, grounded on fiat_topup_info.rs's table.
func (s *Store) StoreFiatTopupInfo(ctx context.Context, info FiatTopupInfo) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fiat_topup_info (
			payment_id, order_id, debitor_iban, creditor_reference, creditor_iban,
			creditor_bank_name, creditor_bank_street, creditor_bank_postal_code,
			creditor_bank_town, creditor_bank_country, creditor_bank_bic,
			creditor_name, creditor_street, creditor_postal_code, creditor_town, creditor_country
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(payment_id) DO NOTHING
	`, info.PaymentID, info.OrderID, info.DebitorIBAN, info.CreditorReference, info.CreditorIBAN,
		info.CreditorBankName, info.CreditorBankStreet, info.CreditorBankPostalCode,
		info.CreditorBankTown, info.CreditorBankCountry, info.CreditorBankBIC,
		info.CreditorName, info.CreditorStreet, info.CreditorPostalCode, info.CreditorTown, info.CreditorCountry)
	if err != nil {
		return fmt.Errorf("failed to store fiat topup info for payment %s: %w", info.PaymentID, err)
	}
	return nil
}

// GetFiatTopupInfo retrieves the SEPA details for a payment.
func (s *Store) GetFiatTopupInfo(ctx context.Context, paymentID string) (*FiatTopupInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT payment_id, order_id, debitor_iban, creditor_reference, creditor_iban,
			creditor_bank_name, creditor_bank_street, creditor_bank_postal_code,
			creditor_bank_town, creditor_bank_country, creditor_bank_bic,
			creditor_name, creditor_street, creditor_postal_code, creditor_town, creditor_country
		FROM fiat_topup_info WHERE payment_id = ?
	`, paymentID)

	var info FiatTopupInfo
	err := row.Scan(&info.PaymentID, &info.OrderID, &info.DebitorIBAN, &info.CreditorReference, &info.CreditorIBAN,
		&info.CreditorBankName, &info.CreditorBankStreet, &info.CreditorBankPostalCode,
		&info.CreditorBankTown, &info.CreditorBankCountry, &info.CreditorBankBIC,
		&info.CreditorName, &info.CreditorStreet, &info.CreditorPostalCode, &info.CreditorTown, &info.CreditorCountry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFiatTopupInfoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fiat topup info for payment %s: %w", paymentID, err)
	}
	return &info, nil
}
