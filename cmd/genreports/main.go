// Command genreports generates mock venue snapshot fixtures for the
// estimator test suites. It runs the actual estimation engine over the
// generated data and prints a stats block so test assertions can be updated
// alongside the fixture.
//
// Usage:
//
//	go run ./cmd/genreports -out testdata/snapshots.json -venues 5 -per-venue 20 -seed 42
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/queuepeek/wait-engine/internal/domain"
)

// baseTime anchors every generated timestamp so fixtures are reproducible.
var baseTime = time.Date(2026, time.March, 14, 18, 0, 0, 0, time.UTC)

// statuses weights regular reporters higher, roughly matching production.
var statuses = []string{
	domain.StatusRegular,
	domain.StatusRegular,
	domain.StatusTrusted,
	domain.StatusExpert,
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the snapshot JSON fixture")
	venues := flag.Int("venues", 5, "number of venues to generate")
	perVenue := flag.Int("per-venue", 20, "reports per venue")
	seed := flag.Int64("seed", 1, "PRNG seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	rng := rand.New(rand.NewSource(*seed))

	snapshots := make([]domain.VenueSnapshot, 0, *venues)
	for v := 0; v < *venues; v++ {
		snap := domain.VenueSnapshot{VenueID: fmt.Sprintf("venue-%03d", v+1)}
		for i := 0; i < *perVenue; i++ {
			// Ages run past the 2h cutoff so fixtures always contain some
			// expired reports.
			ageMinutes := rng.Intn(210)
			votes := rng.Intn(12)
			up := rng.Intn(votes + 1)

			snap.Reports = append(snap.Reports, domain.Report{
				ReportedMinutes: rng.Intn(45),
				Timestamp:       baseTime.Add(-time.Duration(ageMinutes) * time.Minute),
				BaseWeight:      0.5 + rng.Float64()*1.5,
				Upvotes:         up,
				Downvotes:       votes - up,
				ReporterStatus:  statuses[rng.Intn(len(statuses))],
			})
		}
		snapshots = append(snapshots, snap)
	}

	if err := writeJSON(*out, snapshots); err != nil {
		return err
	}
	fmt.Printf("Wrote %d snapshots (%d reports each) to %s\n", len(snapshots), *perVenue, *out)

	printStats(snapshots)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(snapshots []domain.VenueSnapshot) {
	categoryCounts := map[domain.Category]int{}
	var expired, total int
	var confidenceSum float64

	for _, snap := range snapshots {
		result := domain.Estimate(snap.Reports, baseTime)
		categoryCounts[result.Category]++
		confidenceSum += result.Confidence

		for _, r := range snap.Reports {
			total++
			if baseTime.Sub(r.Timestamp) > domain.DefaultMaxReportAge {
				expired++
			}
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Reports: %d total, %d past the %s cutoff\n", total, expired, domain.DefaultMaxReportAge)
	fmt.Printf("Categories: none=%d short=%d medium=%d long=%d very_long=%d\n",
		categoryCounts[domain.CategoryNoLine],
		categoryCounts[domain.CategoryShort],
		categoryCounts[domain.CategoryMedium],
		categoryCounts[domain.CategoryLong],
		categoryCounts[domain.CategoryVeryLong])
	if len(snapshots) > 0 {
		fmt.Printf("Mean confidence: %.3f\n", confidenceSum/float64(len(snapshots)))
	}
}
