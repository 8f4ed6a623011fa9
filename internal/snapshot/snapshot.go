// Package snapshot builds one immutable, consistent view of the pod per
// refresh cycle. A Snapshot is never mutated after Refresh returns; consumers
// read whichever snapshot is currently published and stale ones are discarded.
package snapshot

import (
	"time"

	"freesleep-bridge/internal/models"
)

// VitalsResult is the outcome of one optional vitals fetch. Fetched is false
// when the endpoint errored (e.g. biometrics disabled), as opposed to a
// successful fetch that returned no samples.
type VitalsResult struct {
	Summary models.VitalsSummary
	Fetched bool
}

// SleepResult is the outcome of one optional sleep records fetch. Record is
// the chronologically last completed record of the window, nil when the window
// held none.
type SleepResult struct {
	Record  *models.SleepRecord
	Fetched bool
}

// Snapshot is the bundle of all resources polled in one refresh cycle.
type Snapshot struct {
	Taken time.Time

	DeviceStatus models.DeviceStatus
	Settings     models.Settings
	Presence     models.Presence
	Schedules    models.Schedules
	Services     models.Services
	ServerStatus models.ServerStatus

	Vitals    map[string]VitalsResult
	LastSleep map[string]SleepResult
}

// SideStatus returns the device status block for a side.
func (s *Snapshot) SideStatus(side string) models.SideStatus {
	return s.DeviceStatus.Side(side)
}

// SideSettings returns the settings block for a side.
func (s *Snapshot) SideSettings(side string) models.SideSettings {
	return s.Settings.Side(side)
}

// SideName returns the user-configured name of a side, defaulting to the
// capitalized side key.
func (s *Snapshot) SideName(side string) string {
	if name := s.SideSettings(side).Name; name != "" {
		return name
	}
	if side == "" {
		return side
	}
	return string(side[0]-'a'+'A') + side[1:]
}

// AwayMode reports whether away mode is on for a side.
func (s *Snapshot) AwayMode(side string) bool {
	return s.SideSettings(side).AwayMode
}

// IsPresent reports whether presence is detected on a side.
func (s *Snapshot) IsPresent(side string) bool {
	return s.Presence.Side(side).Present
}

// BiometricsEnabled reports whether the biometrics service is enabled.
func (s *Snapshot) BiometricsEnabled() bool {
	return s.Services.BiometricsEnabled()
}

// TapConfig returns the tap config for a gesture on a side, zero when unset.
func (s *Snapshot) TapConfig(side, gesture string) models.TapConfig {
	return s.SideSettings(side).Taps[gesture]
}

// SideVitals returns the optional vitals result for a side.
func (s *Snapshot) SideVitals(side string) VitalsResult {
	return s.Vitals[side]
}

// SideLastSleep returns the optional last-sleep result for a side.
func (s *Snapshot) SideLastSleep(side string) SleepResult {
	return s.LastSleep[side]
}

// ServerService returns the health report for a server subsystem; missing
// entries read as status "unknown".
func (s *Snapshot) ServerService(name string) models.SubsystemStatus {
	return s.ServerStatus.Service(name)
}
