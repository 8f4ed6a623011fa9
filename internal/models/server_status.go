package models

// SubsystemStatus is the health report of one server subsystem.
type SubsystemStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ServerStatus maps subsystem name to its health report.
type ServerStatus map[string]SubsystemStatus

// Subsystem statuses that count as failing in the health rollup.
const (
	StatusFailed     = "failed"
	StatusNotStarted = "not_started"
	StatusUnknown    = "unknown"
)

// Service returns the report for a subsystem; a missing entry reads as "unknown",
// since the subsystem may simply not be installed on this pod.
func (s ServerStatus) Service(name string) SubsystemStatus {
	if st, ok := s[name]; ok {
		return st
	}
	return SubsystemStatus{Status: StatusUnknown}
}
