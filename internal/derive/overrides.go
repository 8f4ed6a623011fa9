package derive

import (
	"time"

	"freesleep-bridge/internal/snapshot"
)

// Grace period after the scheduled alarm time before a skip-tonight override
// lapses on its own.
const alarmOverrideGrace = 2 * time.Minute

// AlarmSkipExpiry returns the expiry instant for a "skip tonight's alarm"
// override: the scheduled alarm instant plus a short grace period. The second
// return is false when tonight's entry has no parsable alarm time, in which
// case there is nothing to skip.
func AlarmSkipExpiry(s *snapshot.Snapshot, side string, now time.Time, loc *time.Location) (time.Time, bool) {
	alarm := TonightAlarm(s, side, now, loc)
	hour, minute, err := ParseClock(alarm.Time)
	if err != nil {
		return time.Time{}, false
	}
	date := ActiveScheduleDate(now, loc)
	at := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc)
	return at.Add(alarmOverrideGrace), true
}

// TempScheduleSkipExpiry returns the expiry instant for a "skip tonight's
// temperature schedule" override: noon on tonight's calendar date, i.e. the
// next noon-crossover boundary.
func TempScheduleSkipExpiry(now time.Time, loc *time.Location) time.Time {
	date := ActiveScheduleDate(now, loc)
	return time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, loc)
}
