package services

import (
	"context"
	"fmt"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/channelguard/channel-guard/internal/clients/lndclient"
	"github.com/channelguard/channel-guard/internal/config"
	"github.com/channelguard/channel-guard/internal/db"
	"github.com/channelguard/channel-guard/internal/observability/metrics"
	"github.com/channelguard/channel-guard/internal/queue"
	"github.com/channelguard/channel-guard/internal/types"
	"github.com/channelguard/channel-guard/internal/utils/poller"
)

// Service guards a single channel. It owns the channel's state and is
// driven by one poll loop, so none of its fields need locking.
type Service struct {
	cfg       *config.Config
	chanID    lnwire.ShortChannelID
	key       string
	store     db.StateStore
	publisher queue.EventPublisher
	clock     clock.Clock

	sampler *Sampler
	fees    *FeeController
	htlc    *HTLCController
	applier *PolicyApplier
	status  *StatusReporter

	// state is nil until the first successful sample.
	state *types.ChannelState
}

func NewService(
	cfg *config.Config,
	chanID lnwire.ShortChannelID,
	node lndclient.NodeInterface,
	store db.StateStore,
	publisher queue.EventPublisher,
	clk clock.Clock,
) *Service {
	if publisher == nil {
		publisher = queue.NoopPublisher{}
	}
	if clk == nil {
		clk = clock.NewDefaultClock()
	}

	return &Service{
		cfg:       cfg,
		chanID:    chanID,
		key:       types.ChannelKey(chanID),
		store:     store,
		publisher: publisher,
		clock:     clk,
		sampler:   NewSampler(node),
		fees:      NewFeeController(&cfg.Guard),
		htlc:      NewHTLCController(&cfg.Guard),
		applier:   NewPolicyApplier(node),
		status:    NewStatusReporter(clk, cfg.Poller.StatusInterval),
	}
}

// Run polls the channel until ctx is cancelled. It only returns an error for
// configuration problems discovered while polling.
func (s *Service) Run(ctx context.Context) error {
	guardPoller := poller.NewPoller(
		s.cfg.Poller.Interval,
		metrics.RecordPollerDuration("guard", s.tickWithMetrics),
		poller.WithClock(s.clock),
		poller.WithBackoff(s.cfg.Poller.BackoffBase, s.cfg.Poller.BackoffMax),
	)

	return guardPoller.Start(ctx)
}

// State returns a copy of the in-memory channel state, if loaded.
func (s *Service) State() (types.ChannelState, bool) {
	if s.state == nil {
		return types.ChannelState{}, false
	}
	return *s.state, true
}

func (s *Service) tickWithMetrics(ctx context.Context) error {
	err := s.Tick(ctx)
	if err != nil {
		label := "unknown"
		if typ, ok := types.TypeOf(err); ok {
			label = typ.String()
		}
		metrics.IncTickError(label)
	}

	return err
}

// Tick runs one sample, both controllers, the policy update and the state
// persistence for the guarded channel.
func (s *Service) Tick(ctx context.Context) error {
	snapshot, err := s.sampler.Sample(ctx, s.chanID)
	if err != nil {
		return err
	}

	state, err := s.loadState(ctx, snapshot)
	if err != nil {
		return err
	}

	ratio := snapshot.Ratio()
	liveFee := snapshot.Policy.FeeRatePPM

	decision := s.fees.Evaluate(state, ratio, liveFee)
	desiredHTLC := s.htlc.DesiredMaxHTLC(snapshot.LocalBalance, snapshot.Capacity)
	emitHTLC := s.htlc.ShouldEmit(ratio, state.LastHTLCRatio)

	desired := DesiredPolicy{FeeRatePPM: &decision.DesiredFeePPM}
	if emitHTLC {
		desired.MaxHTLC = &desiredHTLC
	} else {
		log.Ctx(ctx).Debug().
			Float64("ratio", ratio).
			Float64("last_htlc_ratio", state.LastHTLCRatio).
			Int64("desired_max_htlc_sat", int64(desiredHTLC)).
			Msg("ratio change below threshold, keeping max_htlc")
	}

	// Entering protection is recorded before the blocker fee goes out, so a
	// crash in between still remembers the original fee. Leaving protection
	// is recorded only once the original fee is live again.
	next := decision.State
	leaving := state.BlockerActive && !next.BlockerActive
	if !leaving && !next.Equal(state) {
		if err := s.persist(ctx, next); err != nil {
			return err
		}
	}

	update, err := s.applier.Apply(ctx, s.chanID, &snapshot.Policy, desired)
	if err != nil {
		return err
	}

	if emitHTLC {
		next.LastHTLCRatio = ratio
	}
	if !next.Equal(*s.state) {
		if err := s.persist(ctx, next); err != nil {
			return err
		}
	}

	s.report(ctx, snapshot, decision, update)

	return nil
}

// loadState returns the in-memory state, reading it from the store on first
// use and seeding a fresh baseline for channels the store does not know.
func (s *Service) loadState(ctx context.Context, snapshot *types.ChannelSnapshot) (types.ChannelState, error) {
	if s.state != nil {
		return *s.state, nil
	}

	states, err := s.store.Load(ctx)
	if err != nil {
		return types.ChannelState{}, fmt.Errorf("failed to load channel state: %w", err)
	}

	if state, ok := states[s.key]; ok {
		log.Ctx(ctx).Info().
			Stringer("fee_state", state.FeeState()).
			Interface("original_fee_ppm", state.OriginalFeePPM).
			Float64("last_htlc_ratio", state.LastHTLCRatio).
			Msg("Resuming from stored channel state")
		s.state = &state
		return state, nil
	}

	state := types.NewChannelState(snapshot)
	if err := s.persist(ctx, state); err != nil {
		return types.ChannelState{}, err
	}
	log.Ctx(ctx).Info().
		Int64("original_fee_ppm", snapshot.Policy.FeeRatePPM).
		Float64("ratio", state.LastHTLCRatio).
		Msg("No stored state for channel, created fresh baseline")

	return state, nil
}

func (s *Service) persist(ctx context.Context, state types.ChannelState) error {
	if err := s.store.Save(ctx, s.key, state); err != nil {
		return fmt.Errorf("failed to save channel state: %w", err)
	}
	s.state = &state

	return nil
}

func (s *Service) report(ctx context.Context, snapshot *types.ChannelSnapshot, decision FeeDecision, update *types.PolicyUpdate) {
	ratio := snapshot.Ratio()
	fee := snapshot.Policy.FeeRatePPM
	maxHTLC := snapshot.CurrentMaxHTLC()
	channel := s.key

	var events []types.EventType
	if decision.Event != "" {
		events = append(events, decision.Event)
	}
	if update != nil {
		if update.FeeRatePPM != nil {
			fee = *update.FeeRatePPM
			metrics.IncPolicyUpdate(channel, "fee_rate")
		}
		if update.MaxHTLCMsat != nil {
			maxHTLC = update.MaxHTLCMsat.ToSatoshis()
			metrics.IncPolicyUpdate(channel, "max_htlc")
			events = append(events, types.EventHTLCUpdated)
		}
	}

	metrics.RecordChannelStatus(channel, ratio, fee, int64(maxHTLC), s.state.BlockerActive)

	for _, evType := range events {
		ev := types.Event{
			Type:          evType,
			ChannelID:     channel,
			Ratio:         ratio,
			FeeRatePPM:    fee,
			PreviousFee:   snapshot.Policy.FeeRatePPM,
			MaxHTLCSat:    int64(maxHTLC),
			BlockerActive: s.state.BlockerActive,
			Timestamp:     s.clock.Now(),
		}
		s.logEvent(ctx, ev, snapshot)
		metrics.IncGuardEvent(channel, evType.String())
		if err := s.publisher.PublishEvent(ctx, ev); err != nil {
			log.Ctx(ctx).Warn().Err(err).Stringer("event", evType).Msg("failed to publish event")
		}
	}

	if len(events) > 0 {
		s.status.MarkReported(ratio)
		return
	}

	if s.status.Due(ratio) {
		log.Ctx(ctx).Info().
			Str("ratio", formatPercent(ratio)).
			Stringer("fee_state", s.state.FeeState()).
			Int64("fee_ppm", fee).
			Int64("max_htlc_sat", int64(maxHTLC)).
			Int64("local_balance_sat", int64(snapshot.LocalBalance)).
			Int64("capacity_sat", int64(snapshot.Capacity)).
			Msg("Channel status")
		s.status.MarkReported(ratio)
	}
}

func (s *Service) logEvent(ctx context.Context, ev types.Event, snapshot *types.ChannelSnapshot) {
	level := zerolog.InfoLevel
	if ev.Type == types.EventOriginalFeeMissing {
		level = zerolog.WarnLevel
	}
	logger := log.Ctx(ctx).WithLevel(level).
		Stringer("event", ev.Type).
		Str("ratio", formatPercent(ev.Ratio)).
		Int64("max_htlc_sat", ev.MaxHTLCSat)

	switch ev.Type {
	case types.EventBlockerActivated:
		logger.Msgf("Outbound liquidity %s below %s, applied blocker fee %d ppm (was %d ppm)",
			formatPercent(ev.Ratio), formatPercent(s.cfg.Guard.LowerThreshold), ev.FeeRatePPM, ev.PreviousFee)
	case types.EventBlockerDeactivated:
		logger.Msgf("Outbound liquidity %s above %s, removed blocker fee and restored %d ppm",
			formatPercent(ev.Ratio), formatPercent(s.cfg.Guard.UpperThreshold), ev.FeeRatePPM)
	case types.EventBlockerReasserted:
		logger.Msgf("Fee was changed to %d ppm while protected, re-applied blocker fee %d ppm",
			ev.PreviousFee, ev.FeeRatePPM)
	case types.EventOriginalFeeMissing:
		logger.Msgf("Outbound liquidity %s above %s, removed blocker protection but no original fee is stored, keeping %d ppm",
			formatPercent(ev.Ratio), formatPercent(s.cfg.Guard.UpperThreshold), ev.FeeRatePPM)
	case types.EventFeeAdopted:
		logger.Msgf("Fee was changed to %d ppm, adopting it as the fee to restore", ev.FeeRatePPM)
	case types.EventFeeRestored:
		logger.Msgf("Leftover blocker fee found, restored %d ppm", ev.FeeRatePPM)
	case types.EventHTLCUpdated:
		logger.Msgf("Updated max HTLC from %d to %d sats",
			int64(snapshot.CurrentMaxHTLC()), ev.MaxHTLCSat)
	default:
		logger.Msg("Channel guard event")
	}
}

func formatPercent(ratio float64) string {
	return fmt.Sprintf("%.2f%%", ratio*100)
}
