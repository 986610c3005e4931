// Package telemetry records pipeline counters as OpenTelemetry metrics.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ScopeName is the instrumentation scope used for the default meter.
const ScopeName = "github.com/ayusman/phantomtouch"

// Metric names.
const (
	FramesProcessed = "phantomtouch.frames.processed"
	FramesRejected  = "phantomtouch.frames.rejected"
	HandDropouts    = "phantomtouch.hand.dropouts"
	ModeChanges     = "phantomtouch.mode.changes"
	Clicks          = "phantomtouch.clicks"
	Scrolls         = "phantomtouch.scrolls"
	FrameDuration   = "phantomtouch.frame.duration"
)

// Metrics holds the pipeline instruments. A nil *Metrics records nothing.
type Metrics struct {
	frames    metric.Int64Counter
	rejected  metric.Int64Counter
	dropouts  metric.Int64Counter
	modes     metric.Int64Counter
	clicks    metric.Int64Counter
	scrolls   metric.Int64Counter
	durations metric.Float64Histogram
}

// New creates the instruments on meter. A nil meter uses the global provider.
func New(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(ScopeName)
	}

	m := &Metrics{}
	var err error

	if m.frames, err = meter.Int64Counter(FramesProcessed,
		metric.WithDescription("Frames carrying a tracked hand that passed validation"),
		metric.WithUnit("{frame}"),
	); err != nil {
		return nil, fmt.Errorf("create %s: %w", FramesProcessed, err)
	}

	if m.rejected, err = meter.Int64Counter(FramesRejected,
		metric.WithDescription("Frames rejected for malformed landmarks"),
		metric.WithUnit("{frame}"),
	); err != nil {
		return nil, fmt.Errorf("create %s: %w", FramesRejected, err)
	}

	if m.dropouts, err = meter.Int64Counter(HandDropouts,
		metric.WithDescription("Frames without a tracked hand"),
		metric.WithUnit("{frame}"),
	); err != nil {
		return nil, fmt.Errorf("create %s: %w", HandDropouts, err)
	}

	if m.modes, err = meter.Int64Counter(ModeChanges,
		metric.WithDescription("Control mode transitions"),
		metric.WithUnit("{transition}"),
	); err != nil {
		return nil, fmt.Errorf("create %s: %w", ModeChanges, err)
	}

	if m.clicks, err = meter.Int64Counter(Clicks,
		metric.WithDescription("Clicks fired by pinch detection"),
		metric.WithUnit("{click}"),
	); err != nil {
		return nil, fmt.Errorf("create %s: %w", Clicks, err)
	}

	if m.scrolls, err = meter.Int64Counter(Scrolls,
		metric.WithDescription("Scroll actions emitted"),
		metric.WithUnit("{scroll}"),
	); err != nil {
		return nil, fmt.Errorf("create %s: %w", Scrolls, err)
	}

	if m.durations, err = meter.Float64Histogram(FrameDuration,
		metric.WithDescription("Time spent processing one frame"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1),
	); err != nil {
		return nil, fmt.Errorf("create %s: %w", FrameDuration, err)
	}

	return m, nil
}

func (m *Metrics) FrameProcessed(ctx context.Context, mode string) {
	if m == nil {
		return
	}
	m.frames.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode)))
}

func (m *Metrics) FrameRejected(ctx context.Context) {
	if m == nil {
		return
	}
	m.rejected.Add(ctx, 1)
}

func (m *Metrics) HandDropout(ctx context.Context) {
	if m == nil {
		return
	}
	m.dropouts.Add(ctx, 1)
}

func (m *Metrics) ModeChanged(ctx context.Context, from, to string) {
	if m == nil {
		return
	}
	m.modes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

func (m *Metrics) Click(ctx context.Context, button string) {
	if m == nil {
		return
	}
	m.clicks.Add(ctx, 1, metric.WithAttributes(attribute.String("button", button)))
}

func (m *Metrics) Scroll(ctx context.Context, direction string) {
	if m == nil {
		return
	}
	m.scrolls.Add(ctx, 1, metric.WithAttributes(attribute.String("direction", direction)))
}

// ObserveFrame records how long one frame took.
func (m *Metrics) ObserveFrame(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.durations.Record(ctx, d.Seconds())
}
