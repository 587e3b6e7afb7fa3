// Package report turns the raw activity log into the dashboard shown by
// "habit-tracker view".
//
// Aggregation is a pure function of the activity slice, the clock and the
// time zone: activities are folded into daily buckets keyed by local
// calendar date, and every statistic is derived from those buckets.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/HendryAvila/habit-tracker/internal/activity"
)

const (
	// ChartDays is the fixed length of the daily chart, independent of the
	// requested window.
	ChartDays = 7
	// DayBarWidth is the bar length of the best day in the daily chart.
	DayBarWidth = 20
	// MonthBarWidth is the bar length of the best month in the rollup.
	MonthBarWidth = 30
	// MonthLimit is how many months the rollup shows.
	MonthLimit = 3
	// DefaultDays is the window used when none is given.
	DefaultDays = 365
)

// DailyBuckets sums hours per local calendar date (YYYY-MM-DD in loc).
// All activities are counted, regardless of any display window.
func DailyBuckets(activities []activity.Activity, loc *time.Location) map[string]float64 {
	buckets := make(map[string]float64)
	for _, a := range activities {
		buckets[a.LocalDate(loc)] += a.Hours
	}
	return buckets
}

// Streak counts consecutive days with a bucket, walking back from now and
// stopping at the first empty day or once the cursor is before now - days.
func Streak(daily map[string]float64, now time.Time, days int) int {
	start := now.AddDate(0, 0, -days)
	streak := 0
	for cursor := now; !cursor.Before(start); cursor = cursor.AddDate(0, 0, -1) {
		if _, ok := daily[activity.DateKey(cursor)]; !ok {
			break
		}
		streak++
	}
	return streak
}

// Summary holds the aggregate statistics over all daily buckets.
type Summary struct {
	TotalHours float64 `json:"total_hours"`
	ActiveDays int     `json:"active_days"`
	AvgHours   float64 `json:"avg_hours"`
	MaxHours   float64 `json:"max_hours"`
}

// Summarize computes totals over every bucket. Averages and maxima are 0
// when there are no buckets.
func Summarize(daily map[string]float64) Summary {
	var s Summary
	for _, h := range daily {
		s.TotalHours += h
		s.MaxHours = math.Max(s.MaxHours, h)
	}
	s.ActiveDays = len(daily)
	if s.ActiveDays > 0 {
		s.AvgHours = s.TotalHours / float64(s.ActiveDays)
	}
	return s
}

// DayBar is one row of the daily chart.
type DayBar struct {
	Date  time.Time `json:"date"`
	Hours float64   `json:"hours"`
	Bar   int       `json:"bar"`
}

// LastDays returns n rows ending today (oldest first), scaling bars
// against maxHours.
func LastDays(daily map[string]float64, now time.Time, n int, maxHours float64) []DayBar {
	bars := make([]DayBar, 0, n)
	for i := n - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)
		hours := daily[activity.DateKey(date)]
		bars = append(bars, DayBar{
			Date:  date,
			Hours: hours,
			Bar:   barLength(hours, maxHours, DayBarWidth),
		})
	}
	return bars
}

// MonthBar is one row of the monthly rollup.
type MonthBar struct {
	Label string  `json:"label"` // "January 2006"
	Hours float64 `json:"hours"`
	Bar   int     `json:"bar"`
}

// MonthlyRollup folds daily buckets into calendar months, newest first,
// and keeps at most limit of them. Bars are scaled against the best month
// among all months, shown or not.
func MonthlyRollup(daily map[string]float64, limit int) []MonthBar {
	type month struct {
		key   string // 2006-01, sorts chronologically
		label string
		hours float64
	}

	byKey := make(map[string]*month)
	for date, hours := range daily {
		t, err := time.Parse(activity.DateLayout, date)
		if err != nil {
			continue
		}
		key := t.Format("2006-01")
		m, ok := byKey[key]
		if !ok {
			m = &month{key: key, label: t.Format("January 2006")}
			byKey[key] = m
		}
		m.hours += hours
	}

	months := make([]*month, 0, len(byKey))
	maxHours := 0.0
	for _, m := range byKey {
		months = append(months, m)
		maxHours = math.Max(maxHours, m.hours)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].key > months[j].key })

	if limit >= 0 && len(months) > limit {
		months = months[:limit]
	}

	bars := make([]MonthBar, 0, len(months))
	for _, m := range months {
		bars = append(bars, MonthBar{
			Label: m.label,
			Hours: m.hours,
			Bar:   barLength(m.hours, maxHours, MonthBarWidth),
		})
	}
	return bars
}

// barLength scales value/peak to width characters, rounding to the nearest
// character. A non-positive peak yields 0 instead of NaN.
func barLength(value, peak float64, width int) int {
	if peak <= 0 || value <= 0 {
		return 0
	}
	return int(math.Round(value / peak * float64(width)))
}
