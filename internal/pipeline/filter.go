// Package pipeline derives the dashboard tables from a cleaned order-line
// table. Every function is pure: inputs are never mutated and identical inputs
// produce identical outputs.
package pipeline

import (
	"time"

	"commerce-dashboard/internal/models"
)

// Filter returns the lines whose purchase date lies in w, both ends
// inclusive. An inverted window yields an empty table.
func Filter(lines []models.OrderLine, w models.Window) []models.OrderLine {
	start := DateOf(w.Start)
	end := DateOf(w.End)

	filtered := make([]models.OrderLine, 0, len(lines))
	for _, line := range lines {
		day := DateOf(line.PurchasedAt)
		if day.Before(start) || day.After(end) {
			continue
		}
		filtered = append(filtered, line)
	}
	return filtered
}

// DateOf drops the time of day, keeping the calendar date of t in its own
// location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// Bounds reports the first and last purchase dates in lines. ok is false for
// an empty table.
func Bounds(lines []models.OrderLine) (b models.Bounds, ok bool) {
	for i, line := range lines {
		day := DateOf(line.PurchasedAt)
		if i == 0 || day.Before(b.Min) {
			b.Min = day
		}
		if i == 0 || day.After(b.Max) {
			b.Max = day
		}
	}
	return b, len(lines) > 0
}

// Head returns at most n leading rows of rows.
func Head[T any](rows []T, n int) []T {
	if n < 0 || len(rows) <= n {
		return rows
	}
	return rows[:n]
}
