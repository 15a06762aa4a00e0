package lsp

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers below are taken directly off lspd's ChannelOpener service
// as exercised by original_source/eel/src/lsp_client/mod.rs and the
// decoded bytes in original_source/src/lsp.rs's test_parse_lsp_info
// (e.g. field 11 is exactly the 33-byte lsp_pubkey asserted there, field
// 7 the fee_rate double, and so on). Fields the wallet never reads
// (a name string in field 1 and three numeric fields lspd also sends) are
// skipped during decode.
const (
	fieldChannelInfoRequestPubkey = 1

	fieldChannelInfoReplyPubkey               = 2
	fieldChannelInfoReplyHost                 = 3
	fieldChannelInfoReplyBaseFeeMsat          = 6
	fieldChannelInfoReplyFeeRate              = 7
	fieldChannelInfoReplyTimeLockDelta        = 8
	fieldChannelInfoReplyMinHtlcMsat          = 9
	fieldChannelInfoReplyChannelFeePermyriad  = 10
	fieldChannelInfoReplyLspPubkey            = 11
	fieldChannelInfoReplyChannelMinimumFeeMsat = 13

	fieldRegisterPaymentRequestBlob = 1

	fieldPaymentInfoHash               = 1
	fieldPaymentInfoSecret             = 2
	fieldPaymentInfoDestination        = 3
	fieldPaymentInfoIncomingAmountMsat = 4
	fieldPaymentInfoOutgoingAmountMsat = 5
)

// channelInformationRequest encodes lspd.ChannelInformationRequest.
type channelInformationRequest struct {
	Pubkey string
}

func (r *channelInformationRequest) Marshal() []byte {
	var b []byte
	if r.Pubkey != "" {
		b = protowire.AppendTag(b, fieldChannelInfoRequestPubkey, protowire.BytesType)
		b = protowire.AppendString(b, r.Pubkey)
	}
	return b
}

// registerPaymentRequest encodes lspd.RegisterPaymentRequest.
type registerPaymentRequest struct {
	Blob []byte
}

func (r *registerPaymentRequest) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldRegisterPaymentRequestBlob, protowire.BytesType)
	b = protowire.AppendBytes(b, r.Blob)
	return b
}

// emptyReply is returned by register_payment; the wallet doesn't inspect
// any fields of it.
type emptyReply struct{}

func (e *emptyReply) Unmarshal([]byte) error { return nil }

// channelInformationReply decodes lspd.ChannelInformationReply.
type channelInformationReply struct {
	Pubkey                string // hex-encoded LN node pubkey
	Host                  string
	BaseFeeMsat           uint32
	FeeRate               float64
	TimeLockDelta         uint32
	MinHtlcMsat           uint64
	ChannelFeePermyriad   uint64
	LspPubkey             []byte
	ChannelMinimumFeeMsat uint64
}

func (m *channelInformationReply) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("lsp: invalid ChannelInformationReply tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch typ {
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("lsp: invalid ChannelInformationReply bytes field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
			switch num {
			case fieldChannelInfoReplyPubkey:
				m.Pubkey = string(v)
			case fieldChannelInfoReplyHost:
				m.Host = string(v)
			case fieldChannelInfoReplyLspPubkey:
				m.LspPubkey = append([]byte(nil), v...)
			}
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("lsp: invalid ChannelInformationReply varint field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
			switch num {
			case fieldChannelInfoReplyBaseFeeMsat:
				m.BaseFeeMsat = uint32(v)
			case fieldChannelInfoReplyTimeLockDelta:
				m.TimeLockDelta = uint32(v)
			case fieldChannelInfoReplyMinHtlcMsat:
				m.MinHtlcMsat = v
			case fieldChannelInfoReplyChannelFeePermyriad:
				m.ChannelFeePermyriad = v
			case fieldChannelInfoReplyChannelMinimumFeeMsat:
				m.ChannelMinimumFeeMsat = v
			}
		case protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return fmt.Errorf("lsp: invalid ChannelInformationReply fixed64 field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
			if num == fieldChannelInfoReplyFeeRate {
				m.FeeRate = math.Float64frombits(v)
			}
		case protowire.Fixed32Type:
			_, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return fmt.Errorf("lsp: invalid ChannelInformationReply fixed32 field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("lsp: invalid ChannelInformationReply field %d", num)
			}
			data = data[n:]
		}
	}
	return nil
}

// paymentInformation encodes original_source/src/lsp.rs's
// lspd::PaymentInformation, the just-in-time payment notice encrypted
// to the LSP's pubkey before being registered.
type paymentInformation struct {
	PaymentHash        []byte
	PaymentSecret      []byte
	Destination        []byte
	IncomingAmountMsat int64
	OutgoingAmountMsat int64
}

func (p *paymentInformation) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldPaymentInfoHash, protowire.BytesType)
	b = protowire.AppendBytes(b, p.PaymentHash)
	b = protowire.AppendTag(b, fieldPaymentInfoSecret, protowire.BytesType)
	b = protowire.AppendBytes(b, p.PaymentSecret)
	b = protowire.AppendTag(b, fieldPaymentInfoDestination, protowire.BytesType)
	b = protowire.AppendBytes(b, p.Destination)
	b = protowire.AppendTag(b, fieldPaymentInfoIncomingAmountMsat, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.IncomingAmountMsat))
	b = protowire.AppendTag(b, fieldPaymentInfoOutgoingAmountMsat, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.OutgoingAmountMsat))
	return b
}
