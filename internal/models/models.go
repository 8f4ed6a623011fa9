package models

// Side identifiers for the two halves of the pod.
const (
	SideLeft  = "left"
	SideRight = "right"
)

// Sides lists both sides in a stable order.
var Sides = []string{SideLeft, SideRight}

// DaysOfWeek are the schedule day keys, Monday first to match the pod schema.
var DaysOfWeek = []string{
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
	"sunday",
}

// ValidSide reports whether s names a pod side.
func ValidSide(s string) bool {
	return s == SideLeft || s == SideRight
}
