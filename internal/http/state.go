package httpapi

import (
	"time"

	"freesleep-bridge/internal/derive"
	"freesleep-bridge/internal/models"
	"freesleep-bridge/internal/snapshot"
)

// PodState is the pod-global slice of the state document.
type PodState struct {
	IsPriming        bool   `json:"isPriming"`
	WaterLevel       string `json:"waterLevel"`
	WifiStrength     int    `json:"wifiStrength"`
	LedBrightness    int    `json:"ledBrightness"`
	CoverVersion     string `json:"coverVersion"`
	HubVersion       string `json:"hubVersion"`
	FreeSleepVersion string `json:"freeSleepVersion"`
	FreeSleepBranch  string `json:"freeSleepBranch"`
}

// SideState is the per-side slice of the state document, raw resources plus
// the derived facts for the evaluation instant the document was built at.
type SideState struct {
	Name                   string                `json:"name"`
	Status                 models.SideStatus     `json:"status"`
	Present                bool                  `json:"present"`
	AwayMode               bool                  `json:"awayMode"`
	Gain                   int                   `json:"gain"`
	TonightAlarm           models.Alarm          `json:"tonightAlarm"`
	NextAlarm              string                `json:"nextAlarm,omitempty"`
	AlarmSuppressed        bool                  `json:"alarmSuppressed"`
	TempScheduleSuppressed bool                  `json:"tempScheduleSuppressed"`
	Vitals                 *models.VitalsSummary `json:"vitals,omitempty"`
	LastSleep              *models.SleepRecord   `json:"lastSleep,omitempty"`
}

// StateResponse is the full document served on /api/v1/state and published
// over MQTT.
type StateResponse struct {
	Healthy       bool                              `json:"healthy"`
	Subsystems    map[string]models.SubsystemStatus `json:"subsystems"`
	Pod           PodState                          `json:"pod"`
	Sides         map[string]SideState              `json:"sides"`
	PrimePodDaily models.PrimePodDaily              `json:"primePodDaily"`
	RebootDaily   bool                              `json:"rebootDaily"`
	Biometrics    bool                              `json:"biometricsEnabled"`
	TakenAt       string                            `json:"takenAt"`
	LastError     string                            `json:"lastError,omitempty"`
}

// StateDocument renders a snapshot plus its derived facts at the given
// evaluation instant.
func StateDocument(s *snapshot.Snapshot, now time.Time, loc *time.Location, lastErr error) StateResponse {
	resp := StateResponse{
		Healthy:    derive.Healthy(s),
		Subsystems: derive.CriticalSubsystems(s),
		Pod: PodState{
			IsPriming:        s.DeviceStatus.IsPriming,
			WaterLevel:       s.DeviceStatus.WaterLevel,
			WifiStrength:     s.DeviceStatus.WifiStrength,
			LedBrightness:    s.DeviceStatus.Settings.LedBrightness,
			CoverVersion:     s.DeviceStatus.CoverVersion,
			HubVersion:       s.DeviceStatus.HubVersion,
			FreeSleepVersion: s.DeviceStatus.FreeSleep.Version,
			FreeSleepBranch:  s.DeviceStatus.FreeSleep.Branch,
		},
		Sides:         make(map[string]SideState, len(models.Sides)),
		PrimePodDaily: s.Settings.PrimePodDaily,
		RebootDaily:   s.Settings.RebootDaily,
		Biometrics:    s.BiometricsEnabled(),
		TakenAt:       s.Taken.In(loc).Format(time.RFC3339),
	}
	if lastErr != nil {
		resp.LastError = lastErr.Error()
	}

	for _, side := range models.Sides {
		st := SideState{
			Name:                   s.SideName(side),
			Status:                 s.SideStatus(side),
			Present:                s.IsPresent(side),
			AwayMode:               s.AwayMode(side),
			Gain:                   derive.Gain(s, side),
			TonightAlarm:           derive.TonightAlarm(s, side, now, loc),
			AlarmSuppressed:        derive.AlarmSuppressed(s, side, now),
			TempScheduleSuppressed: derive.TempScheduleSuppressed(s, side, now),
		}
		if at, ok := derive.NextAlarm(s, side, now, loc); ok {
			st.NextAlarm = at.Format(time.RFC3339)
		}
		if v := s.SideVitals(side); v.Fetched {
			summary := v.Summary
			st.Vitals = &summary
		}
		if sl := s.SideLastSleep(side); sl.Record != nil {
			record := *sl.Record
			st.LastSleep = &record
		}
		resp.Sides[side] = st
	}
	return resp
}
