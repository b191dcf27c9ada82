package poller

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/rs/zerolog/log"

	"github.com/channelguard/channel-guard/internal/types"
)

const (
	DefaultBackoffBase = time.Second
	DefaultBackoffMax  = time.Minute
)

type Poller struct {
	interval    time.Duration
	backoffBase time.Duration
	backoffMax  time.Duration
	clock       clock.Clock
	quit        chan struct{}
	pollMethod  func(ctx context.Context) error
}

type Option func(*Poller)

// WithClock replaces the wall clock used for the poll period and the
// backoff timer.
func WithClock(c clock.Clock) Option {
	return func(p *Poller) {
		p.clock = c
	}
}

// WithBackoff bounds the exponential backoff applied after connectivity
// failures. The n-th consecutive retry waits base*2^n, capped at max.
func WithBackoff(base, max time.Duration) Option {
	return func(p *Poller) {
		p.backoffBase = base
		p.backoffMax = max
	}
}

func NewPoller(interval time.Duration, pollMethod func(ctx context.Context) error, opts ...Option) *Poller {
	p := &Poller{
		interval:    interval,
		backoffBase: DefaultBackoffBase,
		backoffMax:  DefaultBackoffMax,
		clock:       clock.NewDefaultClock(),
		quit:        make(chan struct{}),
		pollMethod:  pollMethod,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Start polls immediately and then once per interval until the context is
// cancelled or Stop is called. Connectivity errors are retried with backoff
// inside a tick, configuration errors stop the poller and are returned, any
// other error is logged and the next tick proceeds as usual.
func (p *Poller) Start(ctx context.Context) error {
	log.Ctx(ctx).Info().Msgf("Starting poller with interval %s", p.interval)

	for {
		log.Ctx(ctx).Debug().Msg("Executing poll method")
		if err := p.pollWithRetry(ctx); err != nil {
			switch {
			case ctx.Err() != nil:
				log.Ctx(ctx).Info().Msg("Poller stopped due to context cancellation")
				return nil
			case types.IsConfigError(err):
				return err
			default:
				log.Ctx(ctx).Error().Err(err).Msg("Error polling")
			}
		} else {
			log.Ctx(ctx).Debug().Msg("Poll method executed successfully")
		}

		select {
		case <-p.clock.TickAfter(p.interval):
		case <-ctx.Done():
			log.Ctx(ctx).Info().Msg("Poller stopped due to context cancellation")
			return nil
		case <-p.quit:
			log.Ctx(ctx).Info().Msg("Poller stopped")
			return nil
		}
	}
}

func (p *Poller) Stop() {
	close(p.quit)
}

func (p *Poller) pollWithRetry(ctx context.Context) error {
	return retry.Do(
		func() error {
			return p.pollMethod(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(p.backoffBase),
		retry.MaxDelay(p.backoffMax),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(types.IsConnectivityError),
		retry.LastErrorOnly(true),
		retry.WithTimer(clockTimer{clock: p.clock}),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().
				Uint("attempt", n).
				Err(err).
				Msg("node unreachable, backing off")
		}),
	)
}

// clockTimer drives retry-go's backoff from the poller clock.
type clockTimer struct {
	clock clock.Clock
}

func (t clockTimer) After(d time.Duration) <-chan time.Time {
	return t.clock.TickAfter(d)
}
