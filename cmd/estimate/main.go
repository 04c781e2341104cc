// Command estimate computes venue wait-time estimates from a JSON snapshot
// file. It is the offline exerciser for the estimation engine; the mobile
// backend calls the same domain.EstimateWith over reports fetched from its
// own store.
//
// Usage:
//
//	go run ./cmd/estimate -reports testdata/snapshots.json
//	cat snapshots.json | go run ./cmd/estimate -reports - -at 2026-03-14T18:00:00Z -format json
//	go run ./cmd/estimate -reports testdata/snapshots.json -watch
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/queuepeek/wait-engine/internal/config"
	"github.com/queuepeek/wait-engine/internal/domain"
	"github.com/queuepeek/wait-engine/internal/engine"
	"github.com/queuepeek/wait-engine/internal/observability"
	"github.com/queuepeek/wait-engine/internal/presentation"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	reportsPath := flag.String("reports", "", "path to a JSON array of venue snapshots, or - for stdin")
	at := flag.String("at", "", "estimation instant as RFC3339 (default: now)")
	format := flag.String("format", "text", "output format: text or json")
	watch := flag.Bool("watch", false, "re-estimate on EVAL_INTERVAL until interrupted")
	flag.Parse()

	if *reportsPath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -reports")
	}

	// A .env file is optional; real environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if *watch {
		return runWatch(cfg, *reportsPath, *format)
	}
	return runOnce(cfg, *reportsPath, *at, *format)
}

// runOnce reads the snapshots a single time and prints their estimates.
func runOnce(cfg *config.Config, path, at, format string) error {
	now := time.Now().UTC()
	if at != "" {
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return fmt.Errorf("parse -at: %w", err)
		}
		now = parsed
		// Pin the presentation clock so "time ago" output is relative to -at.
		presentation.SetClock(clockwork.NewFakeClockAt(now))
		defer presentation.SetClock(nil)
	}

	snapshots, err := readSnapshots(path)
	if err != nil {
		return err
	}

	estimates := make([]domain.VenueEstimate, 0, len(snapshots))
	for _, snap := range snapshots {
		result := domain.EstimateWith(cfg.Params, snap.Reports, now)
		estimates = append(estimates, domain.VenueEstimate{
			VenueID:     snap.VenueID,
			Result:      result,
			GeneratedAt: now,
		})
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(estimates)
	case "text":
		printText(snapshots, estimates)
		return nil
	default:
		return fmt.Errorf("unknown -format %q", format)
	}
}

// runWatch runs the evaluator loop over the snapshot file until interrupted,
// re-reading it each cycle.
func runWatch(cfg *config.Config, path, format string) error {
	if path == "-" {
		return fmt.Errorf("-watch requires a file path, not stdin")
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown -format %q", format)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ev := engine.New(
		fileSource{path: path},
		printPublisher{format: format},
		logger, metrics, cfg.Params, cfg.EvalInterval,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return ev.Run(ctx)
}

// fileSource adapts a snapshot file to engine.SnapshotSource.
type fileSource struct {
	path string
}

func (s fileSource) Snapshots(_ context.Context) ([]domain.VenueSnapshot, error) {
	return readSnapshots(s.path)
}

// printPublisher writes each batch of estimates to stdout.
type printPublisher struct {
	format string
}

func (p printPublisher) Publish(_ context.Context, estimates []domain.VenueEstimate) error {
	if p.format == "json" {
		return json.NewEncoder(os.Stdout).Encode(estimates)
	}
	for _, est := range estimates {
		fmt.Println(presentation.FormatResult(est.VenueID, est.Result))
	}
	return nil
}

func readSnapshots(path string) ([]domain.VenueSnapshot, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var snapshots []domain.VenueSnapshot
	if err := json.NewDecoder(r).Decode(&snapshots); err != nil {
		return nil, fmt.Errorf("decode snapshots: %w", err)
	}
	return snapshots, nil
}

func printText(snapshots []domain.VenueSnapshot, estimates []domain.VenueEstimate) {
	for i, est := range estimates {
		fmt.Println(presentation.FormatResult(est.VenueID, est.Result))
		for _, r := range snapshots[i].Reports {
			fmt.Printf("  %s %3d min  %s  (+%d/-%d)\n",
				presentation.StatusGlyph(r.ReporterStatus),
				r.ReportedMinutes,
				presentation.TimeAgo(r.Timestamp),
				r.Upvotes, r.Downvotes)
		}
	}
}
