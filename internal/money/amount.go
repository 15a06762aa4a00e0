// Package money implements the Amount and exchange-rate conversion model
// (spec 4.1): sats are the only unit ever persisted or summed; fiat values
// are derived at read time from the exchange rate in effect when needed.
package money

import (
	"fmt"
	"time"
)

// Amount is a quantity of bitcoin, always carried internally as
// millisatoshis to avoid rounding error accumulation across conversions,
// with a convenience Sats accessor that truncates toward zero.
type Amount struct {
	Msat uint64
}

// NewAmountSat builds an Amount from a whole-satoshi quantity.
func NewAmountSat(sats uint64) Amount {
	return Amount{Msat: sats * 1000}
}

// NewAmountMsat builds an Amount from a millisatoshi quantity.
func NewAmountMsat(msat uint64) Amount {
	return Amount{Msat: msat}
}

// Sats truncates the amount down to whole satoshis.
func (a Amount) Sats() uint64 {
	return a.Msat / 1000
}

func (a Amount) Add(other Amount) Amount {
	return Amount{Msat: a.Msat + other.Msat}
}

// Sub returns a-other, saturating at zero (an Amount is never negative).
func (a Amount) Sub(other Amount) Amount {
	if other.Msat >= a.Msat {
		return Amount{}
	}
	return Amount{Msat: a.Msat - other.Msat}
}

func (a Amount) LessThan(other Amount) bool    { return a.Msat < other.Msat }
func (a Amount) GreaterThan(other Amount) bool { return a.Msat > other.Msat }
func (a Amount) IsZero() bool                  { return a.Msat == 0 }

// ExchangeRate is a BTC/fiat rate snapshot as reported by a rate provider,
// carrying the currency code and the moment it was fetched so a caller can
// judge staleness (spec invariant: an Activity's fiat value is always
// computed with the rate in effect at the time it is displayed, not at the
// time the underlying payment settled, unless explicitly pinned).
type ExchangeRate struct {
	Currency      string
	RateSatPerFiat float64 // satoshis per 1 unit of Currency
	UpdatedAt     time.Time
}

// FiatValue is a monetary amount denominated in a fiat currency, always
// carried in the currency's minor unit (e.g. cents) to avoid float
// rounding in comparisons and persistence.
type FiatValue struct {
	Currency   string
	MinorUnits int64 // e.g. cents
}

// ToFiat converts an Amount to a FiatValue using rate. The conversion
// truncates toward zero, mirroring the original crate's use of integer
// division rather than banker's rounding for displayed fiat values.
func (a Amount) ToFiat(rate ExchangeRate) (FiatValue, error) {
	if rate.RateSatPerFiat <= 0 {
		return FiatValue{}, fmt.Errorf("exchange rate must be positive, got %f", rate.RateSatPerFiat)
	}
	fiatUnits := float64(a.Sats()) / rate.RateSatPerFiat
	return FiatValue{
		Currency:   rate.Currency,
		MinorUnits: int64(fiatUnits * 100),
	}, nil
}

// FromFiat converts a FiatValue back into an Amount using rate, the
// inverse of ToFiat. Used to translate a fiat-denominated receive/send
// request into the sat amount to actually route.
func FromFiat(value FiatValue, rate ExchangeRate) (Amount, error) {
	if rate.RateSatPerFiat <= 0 {
		return Amount{}, fmt.Errorf("exchange rate must be positive, got %f", rate.RateSatPerFiat)
	}
	if value.Currency != rate.Currency {
		return Amount{}, fmt.Errorf("currency mismatch: value is %s, rate is %s", value.Currency, rate.Currency)
	}
	fiatUnits := float64(value.MinorUnits) / 100
	sats := fiatUnits * rate.RateSatPerFiat
	return NewAmountSat(uint64(sats)), nil
}
