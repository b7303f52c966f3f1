package slo

import "github.com/appclacks/sleepslo/pkg/slo/aggregates"

const (
	DegradedMinutes = 360
	MajorMinutes    = 240
)

// Classify returns the status of a night. A nil minutes means no record
// exists for that night. Only the OK boundary depends on the SLO.
func Classify(minutes *int, thresholdMinutes int) aggregates.NightStatus {
	if minutes == nil {
		return aggregates.StatusUnknown
	}
	switch m := *minutes; {
	case m >= thresholdMinutes:
		return aggregates.StatusOK
	case m >= DegradedMinutes:
		return aggregates.StatusDegraded
	case m >= MajorMinutes:
		return aggregates.StatusMajor
	default:
		return aggregates.StatusSev1
	}
}

// Severity orders statuses from OK (0) to SEV1 (3). UNKNOWN has no severity
// and returns -1.
func Severity(status aggregates.NightStatus) int {
	switch status {
	case aggregates.StatusOK:
		return 0
	case aggregates.StatusDegraded:
		return 1
	case aggregates.StatusMajor:
		return 2
	case aggregates.StatusSev1:
		return 3
	default:
		return -1
	}
}
