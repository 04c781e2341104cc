// Package presentation renders estimator output for human display. It
// consumes the domain vocabulary but is independent of the estimation
// algorithm itself.
package presentation

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/queuepeek/wait-engine/internal/domain"
)

// justNowWindow is how close to the clock a timestamp may be before we stop
// counting seconds at the user.
const justNowWindow = 45 * time.Second

// TimeAgo renders how long ago t was, relative to the package clock,
// e.g. "5 minutes ago". Very recent timestamps render as "just now".
func TimeAgo(t time.Time) string {
	now := clock.Now()
	if d := now.Sub(t); d > -justNowWindow && d < justNowWindow {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// statusGlyphs maps reporter status to its display glyph.
var statusGlyphs = map[string]string{
	domain.StatusRegular: "•",
	domain.StatusTrusted: "✓",
	domain.StatusExpert:  "★",
}

// StatusGlyph returns the display glyph for a reporter status. Unknown
// statuses render as regular.
func StatusGlyph(status string) string {
	if g, ok := statusGlyphs[status]; ok {
		return g
	}
	return statusGlyphs[domain.StatusRegular]
}

// FormatResult renders a one-line summary for terminal output, e.g.
//
//	venue-042: ~14 min wait (Medium Line, confidence 0.60)
//
// The degenerate no-signal result renders as "no recent reports".
func FormatResult(venueID string, r domain.EstimationResult) string {
	if r.Confidence == 0 {
		return fmt.Sprintf("%s: no recent reports (%s)", venueID, r.Category)
	}
	return fmt.Sprintf("%s: ~%d min wait (%s, confidence %.2f)",
		venueID, r.Minutes, r.Category, r.Confidence)
}
