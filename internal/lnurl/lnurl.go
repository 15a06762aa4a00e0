// Package lnurl implements LNURL-pay and LNURL-withdraw (spec 4.7),
// grounded on original_source/src/lightning/lnurl.rs's Lnurl::pay /
// Lnurl::withdraw and parse_metadata.
package lnurl

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/getlipa/lipa-lightning-lib-go/internal/sdkadapter"
	"github.com/getlipa/lipa-lightning-lib-go/internal/store"
	"github.com/getlipa/lipa-lightning-lib-go/internal/walleterrors"
)

// Pipeline runs LNURL pay/withdraw, wired to the store the same way
// send.Pipeline and receive.Pipeline are.
type Pipeline struct {
	SDK   sdkadapter.SDK
	Store *store.Store
}

// PayDetails is the user-facing view of a decoded LNURL-pay endpoint,
// mirroring lnurl.rs's LnUrlPayDetails.
type PayDetails struct {
	Domain           string
	ShortDescription string
	LongDescription  *string
	MinSendableMsat  uint64
	MaxSendableMsat  uint64
	MaxCommentLength uint16
	RequestData      sdkadapter.LnUrlPayRequestData
}

// DecodePayDetails builds a PayDetails from the SDK's decoded request
// data, mirroring LnUrlPayDetails::from_lnurl_pay_request_data.
func DecodePayDetails(data sdkadapter.LnUrlPayRequestData) (*PayDetails, error) {
	short, long, err := parseMetadata(data.MetadataStr)
	if err != nil {
		return nil, walleterrors.NewInvalidInput("%s", err)
	}
	return &PayDetails{
		Domain:           data.Domain,
		ShortDescription: short,
		LongDescription:  long,
		MinSendableMsat:  data.MinSendableMsat,
		MaxSendableMsat:  data.MaxSendableMsat,
		MaxCommentLength: data.CommentAllowed,
		RequestData:      data,
	}, nil
}

// WithdrawDetails is the user-facing view of a decoded LNURL-withdraw
// endpoint, mirroring lnurl.rs's LnUrlWithdrawDetails.
type WithdrawDetails struct {
	MinWithdrawableMsat uint64
	MaxWithdrawableMsat uint64
	RequestData         sdkadapter.LnUrlWithdrawRequestData
}

// DecodeWithdrawDetails builds a WithdrawDetails from the SDK's decoded
// request data.
func DecodeWithdrawDetails(data sdkadapter.LnUrlWithdrawRequestData) *WithdrawDetails {
	return &WithdrawDetails{
		MinWithdrawableMsat: data.MinWithdrawableMsat,
		MaxWithdrawableMsat: data.MaxWithdrawableMsat,
		RequestData:         data,
	}
}

// Pay pays an LNURL-pay endpoint for amountSat, optionally attaching
// comment, and returns the resulting payment hash. Grounded on
// Lnurl::pay's comment-length validation and three-way outcome match.
func (p *Pipeline) Pay(ctx context.Context, details PayDetails, amountSat uint64, comment string) (string, error) {
	if len(comment) > int(details.MaxCommentLength) {
		return "", walleterrors.NewInvalidInput(
			"the provided comment is longer than the allowed %d characters", details.MaxCommentLength)
	}

	outcome, err := p.SDK.LnUrlPay(ctx, details.RequestData, amountSat*1000, comment)
	if err != nil {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeRemoteServiceUnavailable, "LNURL pay request failed", err)
	}

	switch outcome.Kind {
	case sdkadapter.LnUrlPaySuccess:
		if err := p.Store.StorePaymentInfo(ctx, store.StoredPaymentMetadata{
			PaymentID:    outcome.PaymentHash,
			PaymentState: store.PaymentStateCreated,
		}); err != nil {
			return "", walleterrors.NewPermanentFailure("failed to persist payment metadata", err)
		}
		return outcome.PaymentHash, nil
	case sdkadapter.LnUrlPayEndpointError:
		return "", walleterrors.NewRuntimeError(walleterrors.CodeLnUrlServerError,
			fmt.Sprintf("LNURL server returned error: %s", outcome.ServerReason), nil)
	case sdkadapter.LnUrlPayFailed:
		return "", walleterrors.NewRuntimeError(walleterrors.CodePaymentFailed,
			fmt.Sprintf("paying invoice for LNURL pay failed: %s", outcome.FailureReason), nil)
	default:
		return "", walleterrors.NewRuntimeError(walleterrors.CodeGenericError, "unknown LNURL pay outcome", nil)
	}
}

// Withdraw withdraws amountSat from an LNURL-withdraw endpoint and returns
// the resulting payment hash. A Timeout outcome is tolerated: the remote
// service accepted the invoice but didn't confirm within its own window,
// so the hash is still stored and returned, mirroring Lnurl::withdraw.
func (p *Pipeline) Withdraw(ctx context.Context, details WithdrawDetails, amountSat uint64) (string, error) {
	outcome, err := p.SDK.LnUrlWithdraw(ctx, details.RequestData, amountSat*1000)
	if err != nil {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeRemoteServiceUnavailable, "LNURL withdraw request failed", err)
	}

	switch outcome.Kind {
	case sdkadapter.LnUrlWithdrawOK, sdkadapter.LnUrlWithdrawTimeout:
		if err := p.Store.StorePaymentInfo(ctx, store.StoredPaymentMetadata{
			PaymentID:    outcome.PaymentHash,
			PaymentState: store.PaymentStateCreated,
		}); err != nil {
			return "", walleterrors.NewPermanentFailure("failed to persist payment metadata", err)
		}
		return outcome.PaymentHash, nil
	case sdkadapter.LnUrlWithdrawError:
		return "", walleterrors.NewRuntimeError(walleterrors.CodeLnUrlServerError,
			fmt.Sprintf("LNURL server returned error: %s", outcome.ServerReason), nil)
	default:
		return "", walleterrors.NewRuntimeError(walleterrors.CodeGenericError, "unknown LNURL withdraw outcome", nil)
	}
}

// parseMetadata extracts the short (text/plain) and optional long
// (text/long-desc) description from an LNURL-pay endpoint's LUD-06
// metadata JSON array, an exact port of lnurl.rs's parse_metadata.
//
// The wire format is actually an array of [key, value] pairs rather than
// objects, per LUD-06; unmarshal into [][2]string and translate.
func parseMetadata(metadata string) (string, *string, error) {
	var raw [][2]string
	if err := json.Unmarshal([]byte(metadata), &raw); err != nil {
		return "", nil, fmt.Errorf("invalid metadata JSON: %w", err)
	}

	var short string
	var long *string
	for _, item := range raw {
		switch item[0] {
		case "text/plain":
			short = item[1]
		case "text/long-desc":
			v := item[1]
			long = &v
		}
	}
	if short == "" {
		return "", nil, fmt.Errorf("metadata missing short description")
	}
	return short, long, nil
}
