package models

// VitalsSummary aggregates vitals for one side over a trailing window.
// All fields are zero when the window holds no samples.
type VitalsSummary struct {
	AvgHeartRate     float64 `json:"avgHeartRate,omitempty"`
	MinHeartRate     float64 `json:"minHeartRate,omitempty"`
	MaxHeartRate     float64 `json:"maxHeartRate,omitempty"`
	AvgHRV           float64 `json:"avgHRV,omitempty"`
	AvgBreathingRate float64 `json:"avgBreathingRate,omitempty"`
}

// SleepRecord is one completed sleep session. Timestamps are ISO-8601.
type SleepRecord struct {
	EnteredBedAt       string `json:"enteredBedAt"`
	LeftBedAt          string `json:"leftBedAt"`
	SleepPeriodSeconds int    `json:"sleepPeriodSeconds"`
	TimesExitedBed     int    `json:"timesExitedBed"`
}
