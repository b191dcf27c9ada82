package lndclient

import (
	"context"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/avast/retry-go/v4"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/davecgh/go-spew/spew"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/channelguard/channel-guard/internal/config"
	"github.com/channelguard/channel-guard/internal/types"
)

const maxGRPCMsgSize = 50 * 1024 * 1024

type LNDClient struct {
	client lnrpc.LightningClient
	conn   *grpc.ClientConn
	cfg    *config.LNDConfig

	mu             sync.Mutex
	identityPubKey string
	channelPoints  map[uint64]string
}

type macaroonCredential struct {
	macaroon string
}

func (m macaroonCredential) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{"macaroon": m.macaroon}, nil
}

func (m macaroonCredential) RequireTransportSecurity() bool {
	return true
}

// NewLNDClient prepares a gRPC connection to lnd. The connection itself is
// established lazily by grpc, so an unreachable node surfaces on the first call.
func NewLNDClient(cfg *config.LNDConfig) (*LNDClient, error) {
	certBytes, err := os.ReadFile(cfg.TLSCertPath)
	if err != nil {
		return nil, types.NewConfigError("could not read tls cert %s: %v", cfg.TLSCertPath, err)
	}
	certPool := x509.NewCertPool()
	if ok := certPool.AppendCertsFromPEM(certBytes); !ok {
		return nil, types.NewConfigError("could not parse tls cert %s", cfg.TLSCertPath)
	}

	macBytes, err := os.ReadFile(cfg.MacaroonPath)
	if err != nil {
		return nil, types.NewConfigError("could not read macaroon %s: %v", cfg.MacaroonPath, err)
	}

	conn, err := grpc.NewClient(cfg.RPCHost,
		grpc.WithTransportCredentials(credentials.NewClientTLSFromCert(certPool, "")),
		grpc.WithPerRPCCredentials(macaroonCredential{hex.EncodeToString(macBytes)}),
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(maxGRPCMsgSize)),
	)
	if err != nil {
		return nil, types.NewConfigError("could not create lnd client for %s: %v", cfg.RPCHost, err)
	}

	return newLNDClient(lnrpc.NewLightningClient(conn), conn, cfg), nil
}

func newLNDClient(client lnrpc.LightningClient, conn *grpc.ClientConn, cfg *config.LNDConfig) *LNDClient {
	return &LNDClient{
		client:        client,
		conn:          conn,
		cfg:           cfg,
		channelPoints: make(map[uint64]string),
	}
}

func (c *LNDClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// IdentityPubKey returns the node's own pubkey. Once fetched it is cached
// since it never changes.
func (c *LNDClient) IdentityPubKey(ctx context.Context) (string, error) {
	c.mu.Lock()
	cached := c.identityPubKey
	c.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	callForInfo := func() (*lnrpc.GetInfoResponse, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
		return c.client.GetInfo(callCtx, &lnrpc.GetInfoRequest{})
	}

	info, err := clientCallWithRetry(ctx, callForInfo, c.cfg)
	if err != nil {
		return "", classifyError("get info", err)
	}

	c.mu.Lock()
	c.identityPubKey = info.IdentityPubkey
	c.mu.Unlock()

	return info.IdentityPubkey, nil
}

func (c *LNDClient) ListChannel(ctx context.Context, chanID lnwire.ShortChannelID) (*types.ChannelBalance, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.client.ListChannels(callCtx, &lnrpc.ListChannelsRequest{})
	if err != nil {
		return nil, classifyError("list channels", err)
	}

	numeric := chanID.ToUint64()
	for _, ch := range resp.Channels {
		if ch.ChanId != numeric {
			continue
		}

		c.mu.Lock()
		c.channelPoints[numeric] = ch.ChannelPoint
		c.mu.Unlock()

		return &types.ChannelBalance{
			ChannelPoint: ch.ChannelPoint,
			LocalBalance: btcutil.Amount(ch.LocalBalance),
			Capacity:     btcutil.Amount(ch.Capacity),
		}, nil
	}

	return nil, types.NewConnectivityError(
		fmt.Sprintf("channel %s not found in listchannels", chanID), nil,
	)
}

func (c *LNDClient) GetPolicy(ctx context.Context, chanID lnwire.ShortChannelID) (*types.FeePolicy, error) {
	pubKey, err := c.IdentityPubKey(ctx)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	edge, err := c.client.GetChanInfo(callCtx, &lnrpc.ChanInfoRequest{ChanId: chanID.ToUint64()})
	if err != nil {
		return nil, classifyError("get chan info", err)
	}

	policy := ourPolicy(edge, pubKey)
	if policy == nil {
		return nil, types.NewConnectivityError(
			fmt.Sprintf("could not find our policy for channel %s", chanID), nil,
		)
	}

	return &types.FeePolicy{
		BaseFeeMsat:   policy.FeeBaseMsat,
		FeeRatePPM:    policy.FeeRateMilliMsat,
		TimeLockDelta: policy.TimeLockDelta,
		MinHTLCMsat:   policy.MinHtlc,
		MaxHTLCMsat:   lnwire.MilliSatoshi(policy.MaxHtlcMsat),
	}, nil
}

func (c *LNDClient) UpdatePolicy(
	ctx context.Context, chanID lnwire.ShortChannelID, current *types.FeePolicy, update types.PolicyUpdate,
) error {
	chanPoint, err := c.channelPoint(ctx, chanID)
	if err != nil {
		return err
	}

	cp, err := parseChannelPoint(chanPoint)
	if err != nil {
		return types.NewPolicyApplyError("invalid channel point", err)
	}

	req := buildPolicyUpdateRequest(cp, current, update)
	log.Ctx(ctx).Debug().Msgf("sending policy update: %s", spew.Sdump(req))

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.client.UpdateChannelPolicy(callCtx, req)
	if err != nil {
		return classifyError("update channel policy", err)
	}

	if len(resp.FailedUpdates) > 0 {
		reasons := make([]string, 0, len(resp.FailedUpdates))
		for _, failed := range resp.FailedUpdates {
			reasons = append(reasons, fmt.Sprintf("%s: %s", failed.Reason, failed.UpdateError))
		}
		return types.NewPolicyApplyError(
			"update rejected by node", errors.New(strings.Join(reasons, "; ")),
		)
	}

	return nil
}

func (c *LNDClient) channelPoint(ctx context.Context, chanID lnwire.ShortChannelID) (string, error) {
	c.mu.Lock()
	chanPoint, ok := c.channelPoints[chanID.ToUint64()]
	c.mu.Unlock()
	if ok {
		return chanPoint, nil
	}

	balance, err := c.ListChannel(ctx, chanID)
	if err != nil {
		return "", err
	}
	return balance.ChannelPoint, nil
}

// buildPolicyUpdateRequest fills every field lnd requires from the current
// policy and overrides only those carried by update.
func buildPolicyUpdateRequest(cp *lnrpc.ChannelPoint, current *types.FeePolicy, update types.PolicyUpdate) *lnrpc.PolicyUpdateRequest {
	feeRate := current.FeeRatePPM
	if update.FeeRatePPM != nil {
		feeRate = *update.FeeRatePPM
	}

	maxHTLC := current.MaxHTLCMsat
	if update.MaxHTLCMsat != nil {
		maxHTLC = *update.MaxHTLCMsat
	}

	return &lnrpc.PolicyUpdateRequest{
		Scope:                &lnrpc.PolicyUpdateRequest_ChanPoint{ChanPoint: cp},
		BaseFeeMsat:          current.BaseFeeMsat,
		FeeRatePpm:           uint32(feeRate),
		TimeLockDelta:        current.TimeLockDelta,
		MaxHtlcMsat:          uint64(maxHTLC),
		MinHtlcMsat:          uint64(current.MinHTLCMsat),
		MinHtlcMsatSpecified: true,
	}
}

// ourPolicy picks the side of the edge announced by our own node.
func ourPolicy(edge *lnrpc.ChannelEdge, ourPubKey string) *lnrpc.RoutingPolicy {
	switch ourPubKey {
	case edge.Node1Pub:
		return edge.Node1Policy
	case edge.Node2Pub:
		return edge.Node2Policy
	default:
		return nil
	}
}

func parseChannelPoint(point string) (*lnrpc.ChannelPoint, error) {
	trimmed := strings.TrimSpace(point)
	if trimmed == "" {
		return nil, errors.New("channel_point required")
	}
	parts := strings.Split(trimmed, ":")
	if len(parts) != 2 {
		return nil, errors.New("channel_point must be txid:index")
	}
	idx, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return nil, errors.New("invalid channel_point index")
	}
	return &lnrpc.ChannelPoint{
		FundingTxid: &lnrpc.ChannelPoint_FundingTxidStr{FundingTxidStr: parts[0]},
		OutputIndex: uint32(idx),
	}, nil
}

func clientCallWithRetry[T any](
	ctx context.Context, call retry.RetryableFuncWithData[*T], cfg *config.LNDConfig,
) (*T, error) {
	result, err := retry.DoWithData(call,
		retry.Context(ctx),
		retry.Attempts(cfg.MaxRetryTimes),
		retry.Delay(cfg.RetryInterval),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Debug().
				Uint("attempt", n+1).
				Uint("max_attempts", cfg.MaxRetryTimes).
				Err(err).
				Msg("failed to call lnd")
		}))
	if err != nil {
		return nil, err
	}
	return result, nil
}
