package models

// Override is a temporary, side-scoped suppression of a scheduled behavior.
// ExpiresAt is an ISO-8601 timestamp, or "" when no expiry is set. Whether the
// override is currently in effect is decided by derive.OverrideActive, never here.
type Override struct {
	Disabled     bool   `json:"disabled"`
	TimeOverride string `json:"timeOverride,omitempty"`
	ExpiresAt    string `json:"expiresAt"`
}

// ScheduleOverrides groups the per-feature overrides of one side.
type ScheduleOverrides struct {
	Alarm                Override `json:"alarm"`
	TemperatureSchedules Override `json:"temperatureSchedules"`
}

// TapConfig is the action bound to one tap gesture on the cover.
type TapConfig struct {
	Type                  string `json:"type"`
	Change                string `json:"change,omitempty"`
	Amount                int    `json:"amount,omitempty"`
	Behavior              string `json:"behavior,omitempty"`
	SnoozeDuration        int    `json:"snoozeDuration,omitempty"`
	InactiveAlarmBehavior string `json:"inactiveAlarmBehavior,omitempty"`
}

// SideSettings are the user preferences of one side.
type SideSettings struct {
	Name              string               `json:"name"`
	AwayMode          bool                 `json:"awayMode"`
	Taps              map[string]TapConfig `json:"taps"`
	ScheduleOverrides ScheduleOverrides    `json:"scheduleOverrides"`
}

// PrimePodDaily is the daily priming schedule. Time is "HH:MM", 24h.
type PrimePodDaily struct {
	Enabled bool   `json:"enabled"`
	Time    string `json:"time"`
}

// Settings is the full GET /api/settings payload.
type Settings struct {
	Left          SideSettings  `json:"left"`
	Right         SideSettings  `json:"right"`
	PrimePodDaily PrimePodDaily `json:"primePodDaily"`
	RebootDaily   bool          `json:"rebootDaily"`
}

// Side returns the settings block for the named side.
func (s Settings) Side(side string) SideSettings {
	if side == SideRight {
		return s.Right
	}
	return s.Left
}
