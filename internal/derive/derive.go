// Package derive computes time-dependent facts over a snapshot. Every function
// is pure: it takes the snapshot, the evaluation instant and the configured
// location explicitly and never mutates the snapshot. Malformed times and
// timestamps yield absent/inactive results, never errors.
package derive

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"freesleep-bridge/internal/models"
	"freesleep-bridge/internal/snapshot"
)

// Server subsystems that must not be failing for the pod to count as healthy.
var criticalSubsystems = []string{"franken", "database", "biometricsStream"}

// dayKeys is indexed by time.Weekday (Sunday = 0).
var dayKeys = [7]string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

// ActiveScheduleDate returns the calendar date whose schedule entry counts as
// "tonight's", using noon-crossover: past local noon, "tonight" falls on the
// next calendar date.
func ActiveScheduleDate(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	if local.Hour() >= 12 {
		local = local.AddDate(0, 0, 1)
	}
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// ActiveScheduleDay returns the day-of-week key for tonight's schedule entry.
func ActiveScheduleDay(now time.Time, loc *time.Location) string {
	return dayKeys[ActiveScheduleDate(now, loc).Weekday()]
}

// OverrideActive reports whether an override is currently in effect: disabled
// must be set and expiresAt must parse to a timestamp strictly in the future.
// An empty or unparsable expiresAt reads as inactive.
func OverrideActive(o models.Override, now time.Time) bool {
	if !o.Disabled || o.ExpiresAt == "" {
		return false
	}
	expires, err := time.Parse(time.RFC3339, o.ExpiresAt)
	if err != nil {
		return false
	}
	return expires.After(now)
}

// AlarmSuppressed reports whether the side's alarm override is active.
func AlarmSuppressed(s *snapshot.Snapshot, side string, now time.Time) bool {
	return OverrideActive(s.SideSettings(side).ScheduleOverrides.Alarm, now)
}

// TempScheduleSuppressed reports whether the side's temperature schedule
// override is active.
func TempScheduleSuppressed(s *snapshot.Snapshot, side string, now time.Time) bool {
	return OverrideActive(s.SideSettings(side).ScheduleOverrides.TemperatureSchedules, now)
}

// TonightAlarm returns the alarm record of tonight's schedule entry for a side.
func TonightAlarm(s *snapshot.Snapshot, side string, now time.Time, loc *time.Location) models.Alarm {
	day := ActiveScheduleDay(now, loc)
	return s.Schedules.Side(side).Day(day).Alarm
}

// NextAlarm returns the absolute instant tonight's alarm will fire. The second
// return is false when the alarm is disabled, suppressed by an active
// override, or has no parsable time.
func NextAlarm(s *snapshot.Snapshot, side string, now time.Time, loc *time.Location) (time.Time, bool) {
	alarm := TonightAlarm(s, side, now, loc)
	if !alarm.Enabled {
		return time.Time{}, false
	}
	if AlarmSuppressed(s, side, now) {
		return time.Time{}, false
	}
	hour, minute, err := ParseClock(alarm.Time)
	if err != nil {
		return time.Time{}, false
	}
	date := ActiveScheduleDate(now, loc)
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc), true
}

// MergeAlarm overlays the non-nil fields of patch onto a copy of current.
// The pod replaces the entire alarm record on write, so every partial update
// must be merged onto the full current record before submitting.
func MergeAlarm(current models.Alarm, patch models.AlarmPatch) models.Alarm {
	merged := current
	if patch.Enabled != nil {
		merged.Enabled = *patch.Enabled
	}
	if patch.Time != nil {
		merged.Time = *patch.Time
	}
	if patch.VibrationIntensity != nil {
		merged.VibrationIntensity = *patch.VibrationIntensity
	}
	if patch.VibrationPattern != nil {
		merged.VibrationPattern = *patch.VibrationPattern
	}
	if patch.AlarmTemperature != nil {
		merged.AlarmTemperature = *patch.AlarmTemperature
	}
	if patch.Duration != nil {
		merged.Duration = *patch.Duration
	}
	return merged
}

// Healthy rolls up server health: every critical subsystem must report a
// status outside {"failed", "not_started"}. A missing subsystem entry reads
// as "unknown" and counts as healthy, since it may not be installed.
func Healthy(s *snapshot.Snapshot) bool {
	for _, name := range criticalSubsystems {
		switch s.ServerService(name).Status {
		case models.StatusFailed, models.StatusNotStarted:
			return false
		}
	}
	return true
}

// CriticalSubsystems returns the health reports of the critical subsystems.
func CriticalSubsystems(s *snapshot.Snapshot) map[string]models.SubsystemStatus {
	out := make(map[string]models.SubsystemStatus, len(criticalSubsystems))
	for _, name := range criticalSubsystems {
		out[name] = s.ServerService(name)
	}
	return out
}

// Gain returns the heating/cooling power multiplier for a side, defaulting to
// models.DefaultGain when the pod has none stored.
func Gain(s *snapshot.Snapshot, side string) int {
	return s.DeviceStatus.Settings.Gain(side)
}

// ParseClock parses an "HH:MM" 24-hour time-of-day string.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed clock time %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed clock time %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed clock time %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("clock time %q out of range", s)
	}
	return hour, minute, nil
}
