// Package activity defines the activity record logged by habit-tracker.
//
// An Activity is one unit of time spent on an improvement task. Records are
// append-only: once created they are never updated or deleted, and the
// order in which they were logged is the order in which they are stored.
package activity

import (
	"time"

	"github.com/google/uuid"
)

// Activity is a single logged entry.
type Activity struct {
	// ID is optional so documents written before ids existed still load.
	ID          string    `json:"id,omitempty" yaml:"id,omitempty"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	Hours       float64   `json:"hours" yaml:"hours"`
	Description string    `json:"description" yaml:"description"`
}

// New creates an Activity stamped with the current UTC instant.
// No validation is applied: negative hours and empty descriptions are
// recorded as given.
func New(hours float64, description string) Activity {
	return Activity{
		ID:          NewID(),
		Timestamp:   timeNow().UTC(),
		Hours:       hours,
		Description: description,
	}
}

// NewID returns a fresh random activity identifier.
func NewID() string {
	return uuid.NewString()
}

// LocalDate returns the calendar date of the activity in loc, formatted as
// YYYY-MM-DD.
func (a Activity) LocalDate(loc *time.Location) string {
	return DateKey(a.Timestamp.In(loc))
}

// DateKey formats t as the YYYY-MM-DD key used for daily buckets.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// DateLayout is the layout of daily bucket keys.
const DateLayout = "2006-01-02"
