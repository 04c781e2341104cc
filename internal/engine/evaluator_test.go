package engine_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuepeek/wait-engine/internal/domain"
	"github.com/queuepeek/wait-engine/internal/engine"
	"github.com/queuepeek/wait-engine/internal/observability"
)

// --- mocks ---

type mockSource struct {
	snapshots []domain.VenueSnapshot
	err       error
	calls     atomic.Int64
}

func (m *mockSource) Snapshots(_ context.Context) ([]domain.VenueSnapshot, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshots, nil
}

type mockPublisher struct {
	mu      sync.Mutex
	batches [][]domain.VenueEstimate
	err     error
}

func (m *mockPublisher) Publish(_ context.Context, estimates []domain.VenueEstimate) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, estimates)
	return nil
}

func (m *mockPublisher) batchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

func newTestMetrics() *observability.Metrics {
	// Use unregistered collectors to avoid "already registered" panics.
	return observability.NewMetricsForTesting()
}

func testSnapshots(now time.Time) []domain.VenueSnapshot {
	return []domain.VenueSnapshot{
		{
			VenueID: "venue-001",
			Reports: []domain.Report{
				{ReportedMinutes: 10, Timestamp: now.Add(-5 * time.Minute), BaseWeight: 1.0},
				{ReportedMinutes: 20, Timestamp: now.Add(-30 * time.Minute), BaseWeight: 1.0},
			},
		},
		{VenueID: "venue-002"},
	}
}

// --- tests ---

func TestEvaluator_EvaluateOnce(t *testing.T) {
	now := time.Now().UTC()
	src := &mockSource{snapshots: testSnapshots(now)}
	pub := &mockPublisher{}

	e := engine.New(src, pub, slog.Default(), newTestMetrics(), domain.DefaultParams(), time.Second)

	err := e.EvaluateOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, pub.batchCount())

	estimates := pub.batches[0]
	require.Len(t, estimates, 2)

	assert.Equal(t, "venue-001", estimates[0].VenueID)
	assert.Equal(t, domain.CategoryMedium, estimates[0].Result.Category)
	assert.Greater(t, estimates[0].Result.Confidence, 0.0)
	assert.False(t, estimates[0].GeneratedAt.IsZero())

	// A venue with no reports still gets the degenerate estimate.
	assert.Equal(t, "venue-002", estimates[1].VenueID)
	assert.Equal(t, domain.CategoryNoLine, estimates[1].Result.Category)
	assert.Zero(t, estimates[1].Result.Confidence)

	assert.True(t, e.Ready())
}

func TestEvaluator_EvaluateOnce_NoSnapshots(t *testing.T) {
	src := &mockSource{}
	pub := &mockPublisher{}

	e := engine.New(src, pub, slog.Default(), newTestMetrics(), domain.DefaultParams(), time.Second)

	err := e.EvaluateOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, pub.batchCount())
	assert.False(t, e.Ready())
}

func TestEvaluator_EvaluateOnce_SourceError(t *testing.T) {
	src := &mockSource{err: errors.New("store unavailable")}
	pub := &mockPublisher{}

	e := engine.New(src, pub, slog.Default(), newTestMetrics(), domain.DefaultParams(), time.Second)

	err := e.EvaluateOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch snapshots")
	assert.Zero(t, pub.batchCount())
	assert.False(t, e.Ready())
}

func TestEvaluator_EvaluateOnce_PublishError(t *testing.T) {
	now := time.Now().UTC()
	src := &mockSource{snapshots: testSnapshots(now)}
	pub := &mockPublisher{err: errors.New("sink full")}

	e := engine.New(src, pub, slog.Default(), newTestMetrics(), domain.DefaultParams(), time.Second)

	err := e.EvaluateOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish estimates")
	assert.False(t, e.Ready())
}

func TestEvaluator_Run_ContextCancellation(t *testing.T) {
	src := &mockSource{snapshots: testSnapshots(time.Now().UTC())}
	pub := &mockPublisher{}

	e := engine.New(src, pub, slog.Default(), newTestMetrics(), domain.DefaultParams(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	err := e.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, pub.batchCount())
}

func TestEvaluator_Run_PublishesOnInterval(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := &mockSource{snapshots: testSnapshots(clock.Now().UTC())}
	pub := &mockPublisher{}

	e := engine.New(src, pub, slog.Default(), newTestMetrics(), domain.DefaultParams(), 30*time.Second)
	e.SetClock(clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	// The first cycle runs immediately; wait for the loop to sleep on the
	// interval, then advance past it for a second cycle.
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(30 * time.Second)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, 2, pub.batchCount())
	assert.True(t, e.Ready())
}

func TestEvaluator_Run_RetriesAfterSourceError(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := &mockSource{err: errors.New("store unavailable")}
	pub := &mockPublisher{}

	e := engine.New(src, pub, slog.Default(), newTestMetrics(), domain.DefaultParams(), time.Second)
	e.SetClock(clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	// Walk the loop through the 200ms and 400ms backoff sleeps.
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(200 * time.Millisecond)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(400 * time.Millisecond)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, int64(3), src.calls.Load())
	assert.Zero(t, pub.batchCount())
	assert.False(t, e.Ready())
}

func TestEvaluator_EvaluateOnce_CountsExpiredReports(t *testing.T) {
	now := time.Now().UTC()
	src := &mockSource{snapshots: []domain.VenueSnapshot{{
		VenueID: "venue-001",
		Reports: []domain.Report{
			{ReportedMinutes: 10, Timestamp: now.Add(-5 * time.Minute), BaseWeight: 1.0},
			{ReportedMinutes: 90, Timestamp: now.Add(-3 * time.Hour), BaseWeight: 5.0},
		},
	}}}
	pub := &mockPublisher{}
	metrics := newTestMetrics()

	e := engine.New(src, pub, slog.Default(), metrics, domain.DefaultParams(), time.Second)

	require.NoError(t, e.EvaluateOnce(context.Background()))

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ReportsConsidered))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ReportsExpired))
}
