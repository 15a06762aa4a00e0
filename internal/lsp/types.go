// Package lsp implements the client for the Lightning Service Provider
// that opens inbound channels on demand and is paid a fee for doing so,
// grounded on original_source/src/lsp.rs and
// original_source/eel/src/lsp_client/mod.rs.
//
// The wire protocol is lspd's gRPC ChannelOpener service. No .proto
// toolchain is available in this module, so the two messages this
// client actually needs are hand-framed with
// google.golang.org/protobuf/encoding/protowire in wire.go, rather than
// generated by protoc — the same low-level package the pack's generated
// lnrpc stubs are themselves built on top of.
package lsp

import (
	"net"

	"github.com/btcsuite/btcd/btcec/v2"
)

// Fee describes the LSP's channel-opening fee schedule, grounded on
// lsp.rs's LspFee.
type Fee struct {
	ChannelMinimumFeeMsat uint64
	ChannelFeePermyriad   uint64 // 100 == 1%
}

// RoutingFees are the base/proportional fee the LSP charges for routing
// through the just-in-time channel, mirroring lightning::routing::gossip::RoutingFees.
type RoutingFees struct {
	BaseMsat                uint32
	ProportionalMillionths  uint32
}

// NodeInfo is the LSP's Lightning node identity and default channel
// terms, grounded on lsp.rs's NodeInfo.
type NodeInfo struct {
	Pubkey           *btcec.PublicKey
	Address          *net.TCPAddr
	Fees             RoutingFees
	CltvExpiryDelta  uint16
	HtlcMinimumMsat  *uint64
	HtlcMaximumMsat  *uint64
}

// Info bundles everything query_info() returns: the LSP's own pubkey
// (used for the payment-info encryption envelope), its fee schedule, and
// its node info (used to build the route hint for just-in-time invoices).
type Info struct {
	Pubkey   *btcec.PublicKey
	Fee      Fee
	NodeInfo NodeInfo
}

// RouteHintHop is the single-hop route hint appended to an invoice that
// requires the LSP to open a channel on receipt, mirroring
// lightning::routing::router::RouteHintHop as constructed in
// lsp.rs's register_payment.
type RouteHintHop struct {
	SrcNodeID       *btcec.PublicKey
	ShortChannelID  uint64
	Fees            RoutingFees
	CltvExpiryDelta uint16
	HtlcMinimumMsat *uint64
	HtlcMaximumMsat *uint64
}

// jitChannelShortID is the placeholder short channel ID lsp.rs hard-codes
// (0x10000000000) for a route hint hop that doesn't have a real channel
// yet, since the channel is only opened once the just-in-time payment
// actually arrives.
const jitChannelShortID = 0x10000000000

// PaymentRequest is the information register_payment needs about an
// incoming just-in-time payment, grounded on lsp.rs's PaymentRequest.
type PaymentRequest struct {
	PaymentHash    [32]byte
	PaymentSecret  [32]byte
	PayeePubkey    *btcec.PublicKey
	AmountMsat     uint64
}
