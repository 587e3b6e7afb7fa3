package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/HendryAvila/habit-tracker/internal/activity"
	"github.com/dustin/go-humanize"
)

// Reporter builds dashboards against a clock and a time zone.
type Reporter struct {
	now      func() time.Time
	location *time.Location
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) { r.now = now }
}

// WithLocation sets the zone used to decide which calendar day an
// activity belongs to. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(r *Reporter) {
		if loc != nil {
			r.location = loc
		}
	}
}

// New creates a Reporter using the local clock and zone unless overridden.
func New(opts ...Option) *Reporter {
	r := &Reporter{now: time.Now, location: time.Local}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dashboard is the computed view for one window.
type Dashboard struct {
	GeneratedAt  time.Time  `json:"generated_at"`
	Days         int        `json:"days"`
	Streak       int        `json:"streak"`
	Summary      Summary    `json:"summary"`
	LastDays     []DayBar   `json:"last_days"`
	Months       []MonthBar `json:"months"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}

// Build aggregates activities into a Dashboard for a trailing window of
// days. The window only bounds the streak; totals cover all history and
// the daily chart always spans ChartDays.
func (r *Reporter) Build(activities []activity.Activity, days int) *Dashboard {
	now := r.now().In(r.location)
	daily := DailyBuckets(activities, r.location)
	summary := Summarize(daily)

	d := &Dashboard{
		GeneratedAt: now,
		Days:        days,
		Streak:      Streak(daily, now, days),
		Summary:     summary,
		LastDays:    LastDays(daily, now, ChartDays, summary.MaxHours),
		Months:      MonthlyRollup(daily, MonthLimit),
	}

	for _, a := range activities {
		ts := a.Timestamp.In(r.location)
		if d.LastActivity == nil || ts.After(*d.LastActivity) {
			d.LastActivity = &ts
		}
	}
	return d
}

// Render builds the dashboard and writes it to w.
func (r *Reporter) Render(w io.Writer, activities []activity.Activity, days int) error {
	return r.Build(activities, days).Render(w)
}

// Render writes the text dashboard to w.
func (d *Dashboard) Render(w io.Writer) error {
	_, err := io.WriteString(w, d.String())
	return err
}

// String returns the text dashboard.
func (d *Dashboard) String() string {
	var b strings.Builder

	b.WriteString("\n📊 Activity Dashboard\n")
	b.WriteString("=================\n\n")

	b.WriteString("📈 Quick Stats\n")
	fmt.Fprintf(&b, "  • Current streak: %d days\n", d.Streak)
	fmt.Fprintf(&b, "  • Total hours: %.1f hrs\n", d.Summary.TotalHours)
	fmt.Fprintf(&b, "  • Active days: %d of %d days\n", d.Summary.ActiveDays, d.Days)
	fmt.Fprintf(&b, "  • Daily average: %.1f hrs\n", d.Summary.AvgHours)
	fmt.Fprintf(&b, "  • Best day: %.1f hrs\n", d.Summary.MaxHours)
	if d.LastActivity != nil {
		fmt.Fprintf(&b, "  • Last activity: %s\n", humanize.RelTime(*d.LastActivity, d.GeneratedAt, "ago", "from now"))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "📅 Last %d Days\n", len(d.LastDays))
	for _, day := range d.LastDays {
		bar := "·"
		if day.Hours > 0 {
			bar = strings.Repeat("█", day.Bar)
		}
		fmt.Fprintf(&b, "  %s %s %-5.1fh %s\n",
			day.Date.Format("Mon"), day.Date.Format("02/01"), day.Hours, bar)
	}

	b.WriteString("\n📊 Monthly Overview\n")
	if len(d.Months) == 0 {
		b.WriteString("  No activity logged yet.\n")
	}
	for _, m := range d.Months {
		fmt.Fprintf(&b, "  %-12s %-5.1fh %s\n", m.Label, m.Hours, strings.Repeat("█", m.Bar))
	}
	b.WriteString("\n")

	return b.String()
}
