package entity

import "time"

// Timestamp normalises t for storage: UTC with microsecond precision, which
// both PostgreSQL and SQLite round-trip and compare identically.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
