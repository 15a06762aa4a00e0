package store

import "time"

// PaymentState mirrors original_source/src/payment.rs's PaymentState enum.
type PaymentState string

const (
	PaymentStateCreated   PaymentState = "created"
	PaymentStateSucceeded PaymentState = "succeeded"
	PaymentStateFailed    PaymentState = "failed"
	PaymentStateRetried   PaymentState = "retried"
	PaymentStateInvalid   PaymentState = "invalid"
)

// IsPending reports whether a payment in this state should be shown in the
// pending partition of the activity list, mirroring PaymentState::is_pending.
func (s PaymentState) IsPending() bool {
	return s == PaymentStateCreated
}

// OfferKind mirrors original_source/src/payment.rs's OfferKind, currently
// carrying only the Pocket fiat top-up variant (spec.md Non-goals exclude
// other offer providers).
type OfferKind string

const OfferKindPocketTopup OfferKind = "pocket_topup"

// StoredPaymentMetadata is the row persisted for every payment the wallet
// is aware of, grounded on data_store.rs's payments table.
type StoredPaymentMetadata struct {
	PaymentID    string
	PaymentState PaymentState
	Description  string
	Invoice      string
	Metadata     string // opaque JSON blob for recipient/extra fields
	CreatedAt    time.Time
}

// StoredOffer is the row persisted for a Pocket fiat top-up tied to a
// payment, grounded on data_store.rs's offers table.
type StoredOffer struct {
	PaymentID               string
	Kind                    OfferKind
	ExchangeRate            float64
	TopupValueMinorUnits    int64
	TopupCurrency           string
	ExchangeFeeMinorUnits   int64
	ExchangeFeeRatePermyriad uint32
	Error                   string
	CompletedAt             *time.Time
}

// CreatedInvoice is a BOLT11 invoice the receive pipeline created, kept
// until the embedded Lightning SDK reports a matching settled payment.
// OpeningFeeMsat is the LSP's just-in-time channel-opening fee quoted
// when the invoice was created (zero when no new channel was needed),
// and ExpiresAt is the invoice's absolute expiry, both per spec.md 3's
// CreatedInvoice definition.
type CreatedInvoice struct {
	PaymentHash    string
	Invoice        string
	AmountMsat     uint64
	OpeningFeeMsat uint64
	Description    string
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// FiatTopupInfo is the SEPA addressing detail returned by Pocket for a
// registered fiat top-up, grounded on fiat_topup.rs's FiatTopupInfo.
type FiatTopupInfo struct {
	PaymentID               string
	OrderID                 string
	DebitorIBAN              string
	CreditorReference        string
	CreditorIBAN              string
	CreditorBankName          string
	CreditorBankStreet        string
	CreditorBankPostalCode    string
	CreditorBankTown          string
	CreditorBankCountry       string
	CreditorBankBIC           string
	CreditorName              string
	CreditorStreet            string
	CreditorPostalCode        string
	CreditorTown              string
	CreditorCountry           string
}
