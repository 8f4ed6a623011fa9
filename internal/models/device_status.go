package models

// SideStatus is the operational state of one side of the pod.
type SideStatus struct {
	TargetTemperatureF  int  `json:"targetTemperatureF"`
	CurrentTemperatureF int  `json:"currentTemperatureF"`
	SecondsRemaining    int  `json:"secondsRemaining"`
	IsOn                bool `json:"isOn"`
	IsAlarmVibrating    bool `json:"isAlarmVibrating"`
}

// DeviceSettings is the settings block nested inside device status.
// Gain values are absent until a user has changed them; DefaultGain applies then.
type DeviceSettings struct {
	LedBrightness int  `json:"ledBrightness"`
	GainLeft      *int `json:"gainLeft,omitempty"`
	GainRight     *int `json:"gainRight,omitempty"`
}

// DefaultGain is the power multiplier the pod assumes when no gain is stored.
const DefaultGain = 100

// FreeSleepInfo describes the free-sleep server build running on the pod.
type FreeSleepInfo struct {
	Version string `json:"version"`
	Branch  string `json:"branch"`
}

// DeviceStatus is the full GET /api/deviceStatus payload.
type DeviceStatus struct {
	Left         SideStatus     `json:"left"`
	Right        SideStatus     `json:"right"`
	IsPriming    bool           `json:"isPriming"`
	WaterLevel   string         `json:"waterLevel"`
	WifiStrength int            `json:"wifiStrength"`
	CoverVersion string         `json:"coverVersion"`
	HubVersion   string         `json:"hubVersion"`
	FreeSleep    FreeSleepInfo  `json:"freeSleep"`
	Settings     DeviceSettings `json:"settings"`
}

// Side returns the status block for the named side.
func (d DeviceStatus) Side(side string) SideStatus {
	if side == SideRight {
		return d.Right
	}
	return d.Left
}

// Gain returns the stored power multiplier for a side, or DefaultGain when unset.
func (s DeviceSettings) Gain(side string) int {
	var g *int
	if side == SideRight {
		g = s.GainRight
	} else {
		g = s.GainLeft
	}
	if g == nil {
		return DefaultGain
	}
	return *g
}
