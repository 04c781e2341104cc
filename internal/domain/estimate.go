package domain

import (
	"math"
	"time"
)

// Default tuning constants for the estimator. The decay factor of 0.8 halves
// a report's influence in roughly 3.1 hours, matching the 2-hour hard cutoff.
const (
	DefaultMaxReportAge     = 2 * time.Hour
	DefaultDecayFactor      = 0.8
	DefaultVoteWeightFactor = 0.2
)

// Params holds the estimator tuning knobs. The zero value is not usable;
// start from DefaultParams.
type Params struct {
	// MaxReportAge is the hard freshness cutoff. Older reports are excluded
	// outright, not merely down-weighted.
	MaxReportAge time.Duration

	// DecayFactor is the per-hour multiplicative decay base, in (0, 1].
	DecayFactor float64

	// VoteWeightFactor bounds the community-vote adjustment: a unanimous
	// vote moves the weight by at most ±factor/2.
	VoteWeightFactor float64
}

// DefaultParams returns the production tuning.
func DefaultParams() Params {
	return Params{
		MaxReportAge:     DefaultMaxReportAge,
		DecayFactor:      DefaultDecayFactor,
		VoteWeightFactor: DefaultVoteWeightFactor,
	}
}

// categoryBreak maps a minimum minute threshold to its label.
type categoryBreak struct {
	min   int
	label Category
}

// categoryTable is the single source of truth for category boundaries,
// evaluated highest threshold first.
var categoryTable = []categoryBreak{
	{31, CategoryVeryLong},
	{16, CategoryLong},
	{5, CategoryMedium},
	{1, CategoryShort},
	{0, CategoryNoLine},
}

// CategoryFor maps a rounded minute estimate to its severity label.
func CategoryFor(minutes int) Category {
	for _, b := range categoryTable {
		if minutes >= b.min {
			return b.label
		}
	}
	return CategoryNoLine
}

// Estimate fuses a venue's reports into one wait-time estimate using the
// default tuning. It is pure and total: degenerate inputs (empty slice, all
// reports expired, all weights zero) yield the zero-confidence "No Line"
// result rather than an error.
func Estimate(reports []Report, now time.Time) EstimationResult {
	return EstimateWith(DefaultParams(), reports, now)
}

// EstimateWith is Estimate with explicit tuning, used by the evaluator when
// a tuning file overrides the defaults.
func EstimateWith(p Params, reports []Report, now time.Time) EstimationResult {
	maxAgeHours := p.MaxReportAge.Hours()

	var totalWeight, weightedSum float64
	for _, r := range reports {
		w := effectiveWeight(p, r, now, maxAgeHours)
		if w <= 0 {
			continue
		}
		totalWeight += w
		weightedSum += float64(clampMinutes(r.ReportedMinutes)) * w
	}

	// No fresh, positively-weighted signal. A normal outcome, not an error;
	// this short-circuit is also what keeps the division below safe.
	if totalWeight == 0 {
		return EstimationResult{Minutes: 0, Category: CategoryNoLine, Confidence: 0}
	}

	// Round half away from zero. Minutes are non-negative, so this is
	// round-half-up.
	minutes := int(math.Round(weightedSum / totalWeight))

	// Confidence normalizes the surviving weight by the ORIGINAL report
	// count, so stale or zero-weight reports depress it instead of being
	// ignored.
	confidence := math.Min(1, totalWeight/float64(len(reports)))

	return EstimationResult{
		Minutes:    minutes,
		Category:   CategoryFor(minutes),
		Confidence: confidence,
	}
}

// effectiveWeight computes baseWeight * decay^ageHours * voteMultiplier,
// or 0 for reports past the freshness cutoff.
func effectiveWeight(p Params, r Report, now time.Time, maxAgeHours float64) float64 {
	ageHours := now.Sub(r.Timestamp).Hours()
	if ageHours > maxAgeHours {
		return 0
	}
	if ageHours < 0 {
		// Future-dated report (client clock skew): treat as brand new so the
		// decay term cannot amplify it above the base weight.
		ageHours = 0
	}

	decay := math.Pow(p.DecayFactor, ageHours)

	voteMultiplier := 1.0
	if total := r.Upvotes + r.Downvotes; total > 0 {
		voteRatio := float64(r.Upvotes) / float64(total)
		voteMultiplier = 1 + (voteRatio-0.5)*p.VoteWeightFactor
	}

	return r.BaseWeight * decay * voteMultiplier
}

// clampMinutes guards against negative observed durations; the reporting
// subsystem does not validate them.
func clampMinutes(m int) int {
	if m < 0 {
		return 0
	}
	return m
}
