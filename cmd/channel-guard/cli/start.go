package cli

import (
	"github.com/lightningnetwork/lnd/clock"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/channelguard/channel-guard/internal/clients/lndclient"
	"github.com/channelguard/channel-guard/internal/config"
	"github.com/channelguard/channel-guard/internal/db"
	"github.com/channelguard/channel-guard/internal/observability/logging"
	"github.com/channelguard/channel-guard/internal/observability/metrics"
	"github.com/channelguard/channel-guard/internal/observability/tracing"
	"github.com/channelguard/channel-guard/internal/queue"
	"github.com/channelguard/channel-guard/internal/services"
	"github.com/channelguard/channel-guard/internal/types"
)

func StartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <channel-id>",
		Short: "Starts guarding a channel, given as a numeric or BLOCKxTXxOUT short channel id",
		Args:  cobra.ExactArgs(1),
		RunE:  start,
	}

	guard := config.DefaultGuardConfig()
	poller := config.DefaultPollerConfig()
	flags := cmd.Flags()
	flags.Float64("lower_threshold", guard.LowerThreshold, "outbound ratio below which the blocker fee is applied")
	flags.Float64("upper_threshold", guard.UpperThreshold, "outbound ratio above which the blocker fee is removed")
	flags.Float64("liquidity_floor", guard.LiquidityFloor, "fraction of capacity kept out of reach by max_htlc")
	flags.Int64("blocker_ppm", guard.BlockerPPM, "fee rate in ppm applied while protected")
	flags.Float64("htlc_change_threshold", guard.HTLCChangeThreshold, "minimum ratio change before max_htlc is updated")
	flags.Duration("poll_interval", poller.Interval, "time between liquidity samples")

	return cmd
}

func start(cmd *cobra.Command, args []string) error {
	chanID, err := types.ParseChannelID(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logCloser, err := logging.Setup(&cfg.Log)
	if err != nil {
		return types.NewConfigError("invalid log configuration: %v", err)
	}
	defer logCloser.Close() //nolint:errcheck

	ctx := tracing.InjectTraceID(cmd.Context(), types.HumanChannelID(chanID))
	log := log.Ctx(ctx)

	log.Info().
		Str("scid", types.HumanChannelID(chanID)).
		Str("chan_id", types.ChannelKey(chanID)).
		Msg("Starting channel guard")
	log.Info().Msgf("Lower threshold: %.0f%%, upper threshold: %.0f%%",
		cfg.Guard.LowerThreshold*100, cfg.Guard.UpperThreshold*100)
	log.Info().Msgf("Liquidity floor: %.0f%%, blocker fee: %d ppm",
		cfg.Guard.LiquidityFloor*100, cfg.Guard.BlockerPPM)
	log.Info().Msgf("HTLC change threshold: %.1f%%, poll interval: %s",
		cfg.Guard.HTLCChangeThreshold*100, cfg.Poller.Interval)

	store, closeStore, err := openStateStore(ctx, &cfg.State)
	if err != nil {
		return err
	}
	defer closeStore()

	node, err := lndclient.NewLNDClient(&cfg.LND)
	if err != nil {
		return err
	}
	defer node.Close() //nolint:errcheck

	var publisher queue.EventPublisher = queue.NoopPublisher{}
	if cfg.Notifier.Enabled() {
		qm, err := queue.NewQueueManager(&cfg.Notifier)
		if err != nil {
			return err
		}
		defer qm.Shutdown()
		publisher = qm
	}

	if cfg.Metrics.Enabled {
		metrics.Init(cfg.Metrics.Host, cfg.Metrics.GetMetricsPort())
	}

	service := services.NewService(
		cfg,
		chanID,
		lndclient.NewNodeClientWithMetrics(node),
		db.NewStoreWithMetrics(store),
		publisher,
		clock.NewDefaultClock(),
	)

	if err := service.Run(ctx); err != nil {
		return err
	}

	log.Info().Msg("Channel guard stopped")
	return nil
}
