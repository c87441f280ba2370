package dashboard

import (
	"time"

	"leadflow_backend/internal/leads/repository"
)

// Period names a reporting window.
type Period string

const (
	PeriodToday   Period = "today"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodYear    Period = "year"
	PeriodOverall Period = "overall"
)

// Periods lists the reporting windows in display order.
var Periods = []Period{PeriodToday, PeriodWeek, PeriodMonth, PeriodYear, PeriodOverall}

// window returns the half-open range of p around now. Weeks start on Monday.
// PeriodOverall is unbounded.
func window(p Period, now time.Time) repository.Window {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case PeriodToday:
		return repository.Window{From: day, To: day.AddDate(0, 0, 1)}
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		monday := day.AddDate(0, 0, -offset)
		return repository.Window{From: monday, To: monday.AddDate(0, 0, 7)}
	case PeriodMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return repository.Window{From: first, To: first.AddDate(0, 1, 0)}
	case PeriodYear:
		first := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return repository.Window{From: first, To: first.AddDate(1, 0, 0)}
	default:
		return repository.Window{}
	}
}
