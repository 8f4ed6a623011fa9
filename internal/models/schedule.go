package models

// Alarm is one day's alarm record. The pod replaces the whole record on write,
// so partial updates must go through an AlarmPatch merge.
type Alarm struct {
	Enabled            bool   `json:"enabled"`
	Time               string `json:"time"`
	VibrationIntensity int    `json:"vibrationIntensity"`
	VibrationPattern   string `json:"vibrationPattern"`
	AlarmTemperature   int    `json:"alarmTemperature"`
	Duration           int    `json:"duration"`
}

// Vibration patterns supported by the pod.
const (
	PatternDouble = "double"
	PatternRise   = "rise"
)

// DaySchedule is the schedule entry for one side on one day of the week.
type DaySchedule struct {
	Alarm Alarm `json:"alarm"`
}

// SideSchedule maps day-of-week keys ("monday".."sunday") to schedule entries.
type SideSchedule map[string]DaySchedule

// Day returns the entry for a day key, zero-valued when the day is missing.
func (s SideSchedule) Day(day string) DaySchedule {
	return s[day]
}

// Schedules is the full GET /api/schedules payload.
type Schedules struct {
	Left  SideSchedule `json:"left"`
	Right SideSchedule `json:"right"`
}

// Side returns the weekly schedule for the named side.
func (s Schedules) Side(side string) SideSchedule {
	if side == SideRight {
		return s.Right
	}
	return s.Left
}

// AlarmPatch is a partial alarm update. Nil fields keep the current value.
type AlarmPatch struct {
	Enabled            *bool   `json:"enabled,omitempty"`
	Time               *string `json:"time,omitempty"`
	VibrationIntensity *int    `json:"vibrationIntensity,omitempty"`
	VibrationPattern   *string `json:"vibrationPattern,omitempty"`
	AlarmTemperature   *int    `json:"alarmTemperature,omitempty"`
	Duration           *int    `json:"duration,omitempty"`
}
