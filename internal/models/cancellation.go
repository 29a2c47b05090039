package models

import "strings"

// CancellationCategory groups session-level cancellation reasons for the
// daily summary rollup.
type CancellationCategory string

const (
	CancellationStaffUnavailable    CancellationCategory = "STAFF_UNAVAILABLE"
	CancellationStaffTraining       CancellationCategory = "STAFF_TRAINING"
	CancellationNotRequired         CancellationCategory = "NOT_REQUIRED"
	CancellationLocationUnavailable CancellationCategory = "LOCATION_UNAVAILABLE"
	CancellationOperationalIssue    CancellationCategory = "OPERATIONAL_ISSUE"
	CancellationUnclassified        CancellationCategory = "UNCLASSIFIED"
)

// cancellationReasonCatalog is the static reasons table supplied with the
// backend contract, keyed by the normalised reason text.
var cancellationReasonCatalog = map[string]CancellationCategory{
	"staff unavailable":       CancellationStaffUnavailable,
	"staff training":          CancellationStaffTraining,
	"session not required":    CancellationNotRequired,
	"activity not required":   CancellationNotRequired,
	"location unavailable":    CancellationLocationUnavailable,
	"operational prison issue": CancellationOperationalIssue,
	"operational issue":       CancellationOperationalIssue,
}

// ClassifyCancellationReason maps a session cancellation reason onto one of
// the six fixed categories. Reasons outside the catalog roll up as
// UNCLASSIFIED rather than failing: the free-text reason is staff supplied.
func ClassifyCancellationReason(reason string) CancellationCategory {
	normalised := strings.ToLower(strings.TrimSpace(reason))
	if category, ok := cancellationReasonCatalog[normalised]; ok {
		return category
	}
	return CancellationUnclassified
}
