package models

// SidePresence is the occupancy state of one side.
type SidePresence struct {
	Present bool `json:"present"`
}

// Presence is the full GET /api/metrics/presence payload.
type Presence struct {
	Left  SidePresence `json:"left"`
	Right SidePresence `json:"right"`
}

// Side returns the presence block for the named side.
func (p Presence) Side(side string) SidePresence {
	if side == SideRight {
		return p.Right
	}
	return p.Left
}
