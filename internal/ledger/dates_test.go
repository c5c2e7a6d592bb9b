package ledger

import (
	"testing"
	"time"
)

func TestDayLessComparesCalendarDays(t *testing.T) {
	baghdad := time.FixedZone("UTC+3", 3*60*60)

	// same calendar day in different zones is neither before nor after,
	// even though the instants differ by three hours
	utcMidnight := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)
	localMidnight := time.Date(2026, 9, 4, 0, 0, 0, 0, baghdad)
	if dayLess(utcMidnight, localMidnight) || dayLess(localMidnight, utcMidnight) {
		t.Error("same calendar day across zones ordered as different days")
	}

	nextDay := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	if !dayLess(localMidnight, nextDay) {
		t.Error("Sep 4 not before Sep 5")
	}
	if dayLess(nextDay, localMidnight) {
		t.Error("Sep 5 ordered before Sep 4")
	}

	// time-of-day never matters
	evening := time.Date(2026, 9, 4, 23, 59, 0, 0, baghdad)
	if dayLess(utcMidnight, evening) || dayLess(evening, utcMidnight) {
		t.Error("time-of-day changed the day ordering")
	}

	// month and year boundaries
	if !dayLess(time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC), time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("month boundary misordered")
	}
	if !dayLess(time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("year boundary misordered")
	}
}
