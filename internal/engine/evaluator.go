// Package engine runs the periodic fetch-estimate-publish loop that keeps
// every venue's wait estimate current. The collaborators on both sides are
// interfaces supplied by the caller; the engine itself performs no I/O.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/queuepeek/wait-engine/internal/domain"
	"github.com/queuepeek/wait-engine/internal/observability"
)

// Backoff after a failed cycle: start at 200ms, double each retry, cap at 5s.
// Keeps retry storms short while avoiding tight loops when the source is down.
const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// SnapshotSource supplies the current per-venue report snapshots.
type SnapshotSource interface {
	Snapshots(ctx context.Context) ([]domain.VenueSnapshot, error)
}

// EstimatePublisher receives each batch of freshly computed estimates.
type EstimatePublisher interface {
	Publish(ctx context.Context, estimates []domain.VenueEstimate) error
}

// Evaluator periodically re-estimates every venue from its snapshot.
type Evaluator struct {
	source    SnapshotSource
	publisher EstimatePublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	params    domain.Params
	interval  time.Duration
	clock     clockwork.Clock
	ready     atomic.Bool
}

// New creates an Evaluator with the given collaborators and tuning.
func New(source SnapshotSource, publisher EstimatePublisher, logger *slog.Logger, metrics *observability.Metrics, params domain.Params, interval time.Duration) *Evaluator {
	return &Evaluator{
		source:    source,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		params:    params,
		interval:  interval,
		clock:     clockwork.NewRealClock(),
	}
}

// SetClock swaps the evaluator's time source. Pass nil to reset to real time.
func (e *Evaluator) SetClock(c clockwork.Clock) {
	if c == nil {
		e.clock = clockwork.NewRealClock()
		return
	}
	e.clock = c
}

// Ready reports whether at least one cycle has published successfully.
func (e *Evaluator) Ready() bool {
	return e.ready.Load()
}

// Run executes the evaluation loop until the context is cancelled.
func (e *Evaluator) Run(ctx context.Context) error {
	e.logger.Info("evaluator started", "interval", e.interval)
	e.metrics.EvaluatorRunning.Set(1)
	defer e.metrics.EvaluatorRunning.Set(0)

	backoff := initialBackoff
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("evaluator stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if err := e.EvaluateOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			e.logger.Error("evaluation cycle failed", "error", err)
			e.metrics.EvaluationErrors.Inc()
			if !e.sleep(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff)
			continue
		}

		backoff = initialBackoff
		if !e.sleep(ctx, e.interval) {
			e.logger.Info("evaluator stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// EvaluateOnce runs a single fetch-estimate-publish cycle. Exposed so callers
// can drive one cycle without the loop.
func (e *Evaluator) EvaluateOnce(ctx context.Context) error {
	start := e.clock.Now()

	snapshots, err := e.source.Snapshots(ctx)
	if err != nil {
		return fmt.Errorf("fetch snapshots: %w", err)
	}
	if len(snapshots) == 0 {
		return nil
	}

	e.metrics.SnapshotsEvaluated.Add(float64(len(snapshots)))

	estimates := make([]domain.VenueEstimate, 0, len(snapshots))
	for _, snap := range snapshots {
		result := domain.EstimateWith(e.params, snap.Reports, start)
		e.metrics.ReportsConsidered.Add(float64(len(snap.Reports)))
		for _, r := range snap.Reports {
			if start.Sub(r.Timestamp) > e.params.MaxReportAge {
				e.metrics.ReportsExpired.Inc()
			}
		}
		e.metrics.Estimates.WithLabelValues(string(result.Category)).Inc()
		estimates = append(estimates, domain.VenueEstimate{
			VenueID:     snap.VenueID,
			Result:      result,
			GeneratedAt: start,
		})
	}

	if err := e.publisher.Publish(ctx, estimates); err != nil {
		return fmt.Errorf("publish estimates: %w", err)
	}

	e.metrics.EvaluationDuration.Observe(e.clock.Since(start).Seconds())
	e.ready.Store(true)
	return nil
}

// sleep waits for d or until the context is cancelled. Returns false if the
// evaluator should stop.
func (e *Evaluator) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-e.clock.After(d):
		return true
	}
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
