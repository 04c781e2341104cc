package presentation

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/queuepeek/wait-engine/internal/domain"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(now))
	defer SetClock(nil)

	tests := []struct {
		name     string
		at       time.Time
		expected string
	}{
		{"seconds ago", now.Add(-10 * time.Second), "just now"},
		{"just inside the window", now.Add(-44 * time.Second), "just now"},
		{"minutes ago", now.Add(-5 * time.Minute), "5 minutes ago"},
		{"one hour ago", now.Add(-time.Hour), "1 hour ago"},
		{"days ago", now.Add(-49 * time.Hour), "2 days ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TimeAgo(tt.at))
		})
	}
}

func TestStatusGlyph(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		expected string
	}{
		{"regular", domain.StatusRegular, "•"},
		{"trusted", domain.StatusTrusted, "✓"},
		{"expert", domain.StatusExpert, "★"},
		{"unknown falls back to regular", "moderator", "•"},
		{"empty falls back to regular", "", "•"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusGlyph(tt.status))
		})
	}
}

func TestFormatResult(t *testing.T) {
	t.Run("normal estimate", func(t *testing.T) {
		got := FormatResult("venue-042", domain.EstimationResult{
			Minutes:    14,
			Category:   domain.CategoryMedium,
			Confidence: 0.6,
		})
		assert.Equal(t, "venue-042: ~14 min wait (Medium Line, confidence 0.60)", got)
	})

	t.Run("degenerate estimate", func(t *testing.T) {
		got := FormatResult("venue-001", domain.EstimationResult{
			Minutes:    0,
			Category:   domain.CategoryNoLine,
			Confidence: 0,
		})
		assert.Equal(t, "venue-001: no recent reports (No Line)", got)
	})
}
