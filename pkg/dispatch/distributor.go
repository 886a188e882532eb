package dispatch

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Distributor receives alerts, validates them, and fans them out to every
// enabled channel concurrently, each bounded by a per-channel timeout: one
// goroutine per channel, a WaitGroup, no unbounded goroutine burst.
type Distributor struct {
	channels       []Channel
	channelTimeout time.Duration
	logger         *slog.Logger
	tracer         trace.Tracer
}

// Option configures a Distributor at construction time.
type Option func(*Distributor)

func WithChannels(channels ...Channel) Option {
	return func(d *Distributor) { d.channels = channels }
}

func WithChannelTimeout(timeout time.Duration) Option {
	return func(d *Distributor) { d.channelTimeout = timeout }
}

func WithDistributorLogger(l *slog.Logger) Option {
	return func(d *Distributor) { d.logger = l }
}

// New constructs a Distributor with safe defaults.
func New(opts ...Option) *Distributor {
	d := &Distributor{
		channelTimeout: 60 * time.Second,
		logger:         slog.New(slog.NewTextHandler(os.Stdout, nil)),
		tracer:         otel.Tracer("surveillance/dispatch"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch validates the alert, then attempts delivery on every enabled
// channel concurrently, returning a per-channel outcome map (§4.3). A
// channel failure never prevents other channels from being attempted. A
// validation failure has no side effect: no channel is ever invoked.
func (d *Distributor) Dispatch(ctx context.Context, a Alert) (map[string]bool, error) {
	ctx, span := d.tracer.Start(ctx, "dispatch.Dispatch")
	defer span.End()

	if err := Validate(a); err != nil {
		return nil, err
	}

	results := make(map[string]bool, len(d.channels))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, ch := range d.channels {
		ch := ch
		wg.Add(1)
		go func() {
			defer wg.Done()
			chCtx, cancel := context.WithTimeout(ctx, d.channelTimeout)
			defer cancel()

			ok, err := ch.Send(chCtx, a)
			if err != nil {
				d.logger.Error("channel send failed", "channel", ch.Name(), "alert_id", a.AlertID, "error", err)
			}

			mu.Lock()
			results[ch.Name()] = ok
			mu.Unlock()
		}()
	}
	wg.Wait()

	span.SetAttributes(
		attribute.String("alert_id", a.AlertID),
		attribute.Int("channels", len(d.channels)),
	)

	// An all-false map is a complete failure; callers make that judgment
	// themselves (§4.3) — Dispatch never synthesizes an error for it.
	return results, nil
}
