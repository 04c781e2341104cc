package domain

import "time"

// Reporter status values understood by the presentation layer.
const (
	StatusRegular = "regular"
	StatusTrusted = "trusted"
	StatusExpert  = "expert"
)

// Report is one user-submitted observation of a venue's wait time.
// BaseWeight is the reporter reliability scalar computed by the upstream
// reputation subsystem; the estimator treats it as an opaque non-negative
// number.
type Report struct {
	ReportedMinutes int       `json:"reported_minutes"`
	Timestamp       time.Time `json:"timestamp"`
	BaseWeight      float64   `json:"base_weight"`
	Upvotes         int       `json:"upvotes"`
	Downvotes       int       `json:"downvotes"`

	// ReporterStatus ("regular" | "trusted" | "expert") is display metadata
	// only; the estimator never reads it.
	ReporterStatus string `json:"reporter_status,omitempty"`
}

// VenueSnapshot is the set of reports for one venue at a point in time, as
// handed over by the reporting subsystem. Upstream applies a coarse venue and
// time-window filter; the estimator still applies its own freshness cutoff.
type VenueSnapshot struct {
	VenueID string   `json:"venue_id"`
	Reports []Report `json:"reports"`
}

// Category is the discrete severity label derived from the estimated minutes.
type Category string

const (
	CategoryNoLine   Category = "No Line"
	CategoryShort    Category = "Short Line"
	CategoryMedium   Category = "Medium Line"
	CategoryLong     Category = "Long Line"
	CategoryVeryLong Category = "Very Long Line"
)

// EstimationResult is the fused output for one venue.
type EstimationResult struct {
	Minutes    int      `json:"minutes"`
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
}

// VenueEstimate pairs a venue with its computed estimate, ready for the
// presentation layer.
type VenueEstimate struct {
	VenueID     string           `json:"venue_id"`
	Result      EstimationResult `json:"result"`
	GeneratedAt time.Time        `json:"generated_at"`
}
