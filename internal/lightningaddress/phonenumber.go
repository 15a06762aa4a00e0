package lightningaddress

import (
	"strconv"
	"strings"

	"github.com/getlipa/lipa-lightning-lib-go/internal/walleterrors"
	"github.com/nyaruka/phonenumbers"
)

// Number is a validated phone number, grounded on phone_number.rs's
// PhoneNumber.
type Number struct {
	E164        string
	CountryCode string
}

// ParsePhoneNumber validates raw as an international phone number,
// mirroring phone_number.rs's PhoneNumber::parse.
func ParsePhoneNumber(raw string) (*Number, error) {
	parsed, err := phonenumbers.Parse(raw, "")
	if err != nil {
		if err == phonenumbers.ErrInvalidCountryCode {
			return nil, walleterrors.NewInvalidInput("phone number is missing a country code")
		}
		return nil, walleterrors.NewInvalidInput("failed to parse phone number: %v", err)
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return nil, walleterrors.NewInvalidInput("not a valid phone number")
	}

	region := phonenumbers.GetRegionCodeForNumber(parsed)
	if region == "" {
		return nil, walleterrors.NewInvalidInput("couldn't determine phone number's country code")
	}

	return &Number{
		E164:        phonenumbers.Format(parsed, phonenumbers.E164),
		CountryCode: region,
	}, nil
}

// ToLightningAddress derives the phone-number lightning address for the
// number, mirroring phone_number.rs's PhoneNumber::to_lightning_address: a
// leading '+' becomes '-', followed by the wallet's configured domain
// (spec 4.11's phone-number encoding).
func (n *Number) ToLightningAddress(domain string) string {
	return strings.Replace(n.E164, "+", "-", 1) + domain
}

// PhoneNumberFromLightningAddress recovers the E.164 number encoded in a
// phone-number-derived lightning address, or reports false if address
// isn't one, mirroring phone_number.rs's lightning_address_to_phone_number.
func PhoneNumberFromLightningAddress(address, domain string) (string, bool) {
	username, ok := strings.CutPrefix(address, "-")
	if !ok {
		return "", false
	}
	username, ok = strings.CutSuffix(username, domain)
	if !ok {
		return "", false
	}
	if username == "" || !isAllDigits(username) {
		return "", false
	}
	return "+" + username, true
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// PrefixResult discriminates PrefixParser.Parse's outcome, mirroring
// phone_number.rs's ParsePhoneNumberPrefixError.
type PrefixResult string

const (
	PrefixOK                 PrefixResult = "ok"
	PrefixIncomplete         PrefixResult = "incomplete"
	PrefixUnsupportedCountry PrefixResult = "unsupported_country"
	PrefixInvalidCharacter   PrefixResult = "invalid_character"
)

// PrefixParser validates a phone number prefix as the user types it,
// against a configured set of allowed countries, grounded on
// phone_number.rs's PhoneNumberPrefixParser.
type PrefixParser struct {
	allowedCallingCodes []string
}

// NewPrefixParser builds a PrefixParser from ISO 3166-1 alpha-2 country
// codes (the config's phone_number_allowed_countries_iso_3166_1_alpha_2).
func NewPrefixParser(allowedCountriesISO3166Alpha2 []string) *PrefixParser {
	var codes []string
	for _, region := range allowedCountriesISO3166Alpha2 {
		code := phonenumbers.GetCountryCodeForRegion(strings.ToUpper(region))
		if code != 0 {
			codes = append(codes, strconv.Itoa(code))
		}
	}
	return &PrefixParser{allowedCallingCodes: codes}
}

// Parse reports whether prefix is consistent with one of the parser's
// allowed countries, mirroring phone_number.rs's
// PhoneNumberPrefixParser::parse. prefix may be a partial number as the
// user is still typing it.
func (p *PrefixParser) Parse(prefix string) PrefixResult {
	digits, ok := extractDigits(prefix)
	if !ok {
		return PrefixInvalidCharacter
	}
	if digits == "" {
		return PrefixIncomplete
	}

	for _, code := range p.allowedCallingCodes {
		if strings.HasPrefix(digits, code) {
			return PrefixOK
		}
	}
	for _, code := range p.allowedCallingCodes {
		if strings.HasPrefix(code, digits) {
			return PrefixIncomplete
		}
	}
	return PrefixUnsupportedCountry
}

// extractDigits strips a leading '+' and any formatting characters
// (spaces, dashes, parentheses) a user might type while dialing, failing
// on any other character, mirroring the original crate's lenient
// formatting-character allowance in its incremental parser.
func extractDigits(s string) (string, bool) {
	s = strings.TrimPrefix(s, "+")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')':
			// formatting characters, ignored
		default:
			return "", false
		}
	}
	return b.String(), true
}
