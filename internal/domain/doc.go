// Package domain models crowd-sourced venue wait reports and the estimator
// that fuses them into a single current wait time.
//
// # Weighting model
//
// Each report contributes an effective weight:
//
//	weight = baseWeight * decayFactor^ageHours * voteMultiplier
//
// baseWeight is the reporter reliability scalar computed by the upstream
// reputation subsystem (reputation, per-venue expertise, accuracy history)
// and treated as opaque here. Reports older than MaxReportAge (2h default)
// are excluded outright rather than down-weighted, which bounds the cost of
// an estimate regardless of historical volume and guarantees a stale report
// can never dominate a fresh one.
//
// Community votes nudge the weight by at most ±10%: a unanimously upvoted
// report gets multiplier 1.1, a unanimously downvoted one 0.9, and a report
// with no votes is left at exactly 1. Votes corroborate; they must never
// overwhelm the reliability-based base weight.
//
// # Categories
//
// The rounded estimate maps to a discrete label via an ordered breakpoint
// table, highest threshold first:
//
//	>= 31  Very Long Line
//	>= 16  Long Line
//	>=  5  Medium Line
//	>=  1  Short Line
//	    0  No Line
//
// # Confidence
//
// Confidence is min(1, survivingWeightSum / originalReportCount). The
// denominator counts every input report, including those dropped by the
// freshness filter, so a venue where most reports were too old to use gets
// a visibly low confidence even when the surviving estimate looks crisp.
// Confidence is 0 exactly when no report contributed positive weight.
//
// # Input hygiene
//
// The reporting subsystem does not validate observations, so the estimator
// clamps two degenerate shapes: negative reported minutes count as 0, and
// future-dated timestamps (client clock skew) count as age 0 so the decay
// term cannot amplify them.
package domain
