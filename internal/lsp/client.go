package lsp

import (
	"context"
	"encoding/hex"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/getlipa/lipa-lightning-lib-go/internal/crypto"
	"github.com/getlipa/lipa-lightning-lib-go/internal/walleterrors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/metadata"
)

const (
	channelOpenerChannelInformationMethod = "/lspd.ChannelOpener/channel_information"
	channelOpenerRegisterPaymentMethod    = "/lspd.ChannelOpener/register_payment"
	codecName                             = "lsp-raw"
)

// wireMessage is implemented by every hand-framed protobuf message this
// client sends or receives; see wire.go.
type wireMessage interface {
	Marshal() []byte
}

type wireUnmarshaler interface {
	Unmarshal([]byte) error
}

// rawCodec lets the gRPC transport carry our hand-framed messages without
// requiring a generated proto.Message implementation.
type rawCodec struct{}

func (rawCodec) Name() string { return codecName }

func (rawCodec) Marshal(v any) ([]byte, error) {
	m, ok := v.(wireMessage)
	if !ok {
		return nil, fmt.Errorf("lsp: %T does not implement wireMessage", v)
	}
	return m.Marshal(), nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	m, ok := v.(wireUnmarshaler)
	if !ok {
		return fmt.Errorf("lsp: %T does not implement wireUnmarshaler", v)
	}
	return m.Unmarshal(data)
}

func init() {
	encoding.RegisterCodec(rawCodec{})
}

// Config describes how to reach the LSP's gRPC ChannelOpener service,
// grounded on eel/src/lsp_client/mod.rs's LspClient::new.
type Config struct {
	Address          string
	AuthToken        string
	ConnectTimeout   time.Duration
	RequestTimeout   time.Duration
	InsecureTransport bool // disables TLS, for local integration testing only
}

// Client is a gRPC client for the LSP's ChannelOpener service.
type Client struct {
	conn   *grpc.ClientConn
	bearer string
	cfg    Config
}

// NewClient dials the LSP lazily; the connection is established on first
// use, matching Endpoint::connect_lazy() in the original client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 30 * time.Second
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	var transportCreds credentials.TransportCredentials
	if cfg.InsecureTransport {
		transportCreds = insecure.NewCredentials()
	} else {
		transportCreds = credentials.NewTLS(nil)
	}

	conn, err := grpc.NewClient(cfg.Address, grpc.WithTransportCredentials(transportCreds))
	if err != nil {
		return nil, walleterrors.NewPermanentFailure("failed to build LSP gRPC client", err)
	}

	return &Client{conn: conn, bearer: "Bearer " + cfg.AuthToken, cfg: cfg}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) authContext(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", c.bearer)
}

// QueryInfo fetches the LSP's current fee schedule and node identity,
// grounded on lsp.rs's LspClient::query_info / parse_lsp_info.
func (c *Client) QueryInfo(ctx context.Context) (*Info, error) {
	ctx, cancel := context.WithTimeout(c.authContext(ctx), c.cfg.RequestTimeout)
	defer cancel()

	req := &channelInformationRequest{}
	reply := &channelInformationReply{}
	err := c.conn.Invoke(ctx, channelOpenerChannelInformationMethod, req, reply, grpc.CallContentSubtype(codecName))
	if err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeRemoteServiceUnavailable, "failed to contact LSP", err)
	}

	info, err := parseLspInfo(reply)
	if err != nil {
		return nil, walleterrors.NewInvalidInput("invalid LSP response: %v", err)
	}
	return info, nil
}

// RegisterPayment notifies the LSP about an incoming just-in-time
// payment so it opens a channel when it lands, grounded on lsp.rs's
// LspClient::register_payment.
func (c *Client) RegisterPayment(ctx context.Context, req *PaymentRequest, info *Info) (*RouteHintHop, error) {
	feeMsat := CalculateFee(req.AmountMsat, info.Fee)
	if feeMsat > req.AmountMsat {
		return nil, walleterrors.NewInvalidInput("payment amount must be bigger than fees")
	}
	outgoingAmountMsat := int64(req.AmountMsat - feeMsat)

	paymentInfo := &paymentInformation{
		PaymentHash:        req.PaymentHash[:],
		PaymentSecret:      req.PaymentSecret[:],
		Destination:        req.PayeePubkey.SerializeCompressed(),
		IncomingAmountMsat: int64(req.AmountMsat),
		OutgoingAmountMsat: outgoingAmountMsat,
	}
	plaintext := paymentInfo.Marshal()

	encrypted, err := crypto.EncryptPaymentInfo(info.Pubkey, plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt payment request: %w", err)
	}

	grpcCtx, cancel := context.WithTimeout(c.authContext(ctx), c.cfg.RequestTimeout)
	defer cancel()

	rpcReq := &registerPaymentRequest{Blob: encrypted}
	reply := &emptyReply{}
	if err := c.conn.Invoke(grpcCtx, channelOpenerRegisterPaymentMethod, rpcReq, reply, grpc.CallContentSubtype(codecName)); err != nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeRemoteServiceUnavailable, "failed to contact LSP", err)
	}

	return &RouteHintHop{
		SrcNodeID:       info.NodeInfo.Pubkey,
		ShortChannelID:  jitChannelShortID,
		Fees:            info.NodeInfo.Fees,
		CltvExpiryDelta: info.NodeInfo.CltvExpiryDelta,
		HtlcMinimumMsat: info.NodeInfo.HtlcMinimumMsat,
		HtlcMaximumMsat: info.NodeInfo.HtlcMaximumMsat,
	}, nil
}

func parseLspInfo(reply *channelInformationReply) (*Info, error) {
	lspPubkey, err := btcec.ParsePubKey(reply.LspPubkey)
	if err != nil {
		return nil, fmt.Errorf("invalid LSP pubkey: %w", err)
	}

	lnPubkeyBytes, err := hex.DecodeString(reply.Pubkey)
	if err != nil {
		return nil, fmt.Errorf("invalid LN node pubkey: %w", err)
	}
	lnPubkey, err := btcec.ParsePubKey(lnPubkeyBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid LN node pubkey: %w", err)
	}

	addr, err := parseTCPAddr(reply.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid LN node host: %w", err)
	}

	minHtlc := reply.MinHtlcMsat
	return &Info{
		Pubkey: lspPubkey,
		Fee: Fee{
			ChannelMinimumFeeMsat: reply.ChannelMinimumFeeMsat,
			ChannelFeePermyriad:   reply.ChannelFeePermyriad,
		},
		NodeInfo: NodeInfo{
			Pubkey:  lnPubkey,
			Address: addr,
			Fees: RoutingFees{
				BaseMsat:               reply.BaseFeeMsat,
				ProportionalMillionths: uint32(reply.FeeRate * 1_000_000),
			},
			CltvExpiryDelta: uint16(reply.TimeLockDelta),
			HtlcMinimumMsat: &minHtlc,
			HtlcMaximumMsat: nil,
		},
	}, nil
}

func parseTCPAddr(hostPort string) (*net.TCPAddr, error) {
	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port: %w", err)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return nil, fmt.Errorf("invalid host: %s", host)
	}
	return &net.TCPAddr{IP: ip, Port: port}, nil
}

// CalculateFee computes the LSP's channel-opening fee for a payment of
// value_msat, grounded verbatim on lsp.rs's calculate_fee: the
// proportional fee is truncated down to whole sats before the flat
// minimum fee is applied.
func CalculateFee(valueMsat uint64, fee Fee) uint64 {
	feeValue := valueMsat * fee.ChannelFeePermyriad / 10_000 / 1_000 * 1_000
	if feeValue > fee.ChannelMinimumFeeMsat {
		return feeValue
	}
	return fee.ChannelMinimumFeeMsat
}
