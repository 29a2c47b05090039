package models

import "time"

// SlotCounts is one summary bucket sliced by time slot. Every increment adds
// to DAY and exactly one of AM/PM/ED, so DAY = AM + PM + ED always holds.
type SlotCounts struct {
	Day int `json:"DAY"`
	AM  int `json:"AM"`
	PM  int `json:"PM"`
	ED  int `json:"ED"`
}

// Add increments the bucket for the given slot.
func (c *SlotCounts) Add(slot TimeSlot, n int) {
	c.Day += n
	switch slot {
	case TimeSlotAM:
		c.AM += n
	case TimeSlotPM:
		c.PM += n
	case TimeSlotED:
		c.ED += n
	}
}

// Consistent reports whether the DAY = AM + PM + ED law holds.
func (c SlotCounts) Consistent() bool {
	return c.Day == c.AM+c.PM+c.ED
}

// DailyAttendanceSummary is the fixed set of named bucket counters produced
// by one aggregation call. Keys are stable strings consumed directly by the
// view layer. Created fresh per call, never persisted.
type DailyAttendanceSummary struct {
	PrisonCode  string    `json:"prisonCode,omitempty"`
	SummaryDate time.Time `json:"summaryDate,omitempty"`

	TotalActivities SlotCounts `json:"totalActivities"`
	TotalAllocated  SlotCounts `json:"totalAllocated"`
	TotalNotAttended SlotCounts `json:"totalNotAttended"`
	TotalAttended    SlotCounts `json:"totalAttended"`
	TotalAbsences    SlotCounts `json:"totalAbsences"`

	TotalPaidAbsences SlotCounts `json:"totalPaidAbsences"`
	TotalCancelled    SlotCounts `json:"totalCancelled"`
	TotalPaidSick     SlotCounts `json:"totalPaidSick"`
	TotalNotRequired  SlotCounts `json:"totalNotRequired"`
	TotalPaidRest     SlotCounts `json:"totalPaidRest"`
	TotalClash        SlotCounts `json:"totalClash"`
	TotalPaidOther    SlotCounts `json:"totalPaidOther"`

	TotalUnPaidAbsences  SlotCounts `json:"totalUnPaidAbsences"`
	TotalUnpaidSick      SlotCounts `json:"totalUnpaidSick"`
	TotalRefused         SlotCounts `json:"totalRefused"`
	TotalUnpaidRest      SlotCounts `json:"totalUnpaidRest"`
	TotalUnpaidOther     SlotCounts `json:"totalUnpaidOther"`
	TotalUnpaidSuspended SlotCounts `json:"totalUnpaidSuspended"`

	SuspendedPrisonerCount SlotCounts `json:"suspendedPrisonerCount"`

	TotalCancelledSessions   SlotCounts `json:"totalCancelledSessions"`
	TotalStaffUnavailable    SlotCounts `json:"totalStaffUnavailable"`
	TotalStaffTraining       SlotCounts `json:"totalStaffTraining"`
	TotalSessionsNotRequired SlotCounts `json:"totalSessionsNotRequired"`
	TotalLocationUnavailable SlotCounts `json:"totalLocationUnavailable"`
	TotalOperationalIssue    SlotCounts `json:"totalOperationalIssue"`
	TotalUnclassified        SlotCounts `json:"totalUnclassified"`
}

// SummaryBucketOrder is the presentation order for summary counters, used by
// exports so rows come out the same every run.
var SummaryBucketOrder = []string{
	"totalActivities",
	"totalAllocated",
	"totalNotAttended",
	"totalAttended",
	"totalAbsences",
	"totalPaidAbsences",
	"totalCancelled",
	"totalPaidSick",
	"totalNotRequired",
	"totalPaidRest",
	"totalClash",
	"totalPaidOther",
	"totalUnPaidAbsences",
	"totalUnpaidSick",
	"totalRefused",
	"totalUnpaidRest",
	"totalUnpaidOther",
	"totalUnpaidSuspended",
	"suspendedPrisonerCount",
	"totalCancelledSessions",
	"totalStaffUnavailable",
	"totalStaffTraining",
	"totalSessionsNotRequired",
	"totalLocationUnavailable",
	"totalOperationalIssue",
	"totalUnclassified",
}

// Buckets returns every counter keyed by its stable name, mainly so tests
// and exports can walk the full set without reflection.
func (s *DailyAttendanceSummary) Buckets() map[string]SlotCounts {
	return map[string]SlotCounts{
		"totalActivities":          s.TotalActivities,
		"totalAllocated":           s.TotalAllocated,
		"totalNotAttended":         s.TotalNotAttended,
		"totalAttended":            s.TotalAttended,
		"totalAbsences":            s.TotalAbsences,
		"totalPaidAbsences":        s.TotalPaidAbsences,
		"totalCancelled":           s.TotalCancelled,
		"totalPaidSick":            s.TotalPaidSick,
		"totalNotRequired":         s.TotalNotRequired,
		"totalPaidRest":            s.TotalPaidRest,
		"totalClash":               s.TotalClash,
		"totalPaidOther":           s.TotalPaidOther,
		"totalUnPaidAbsences":      s.TotalUnPaidAbsences,
		"totalUnpaidSick":          s.TotalUnpaidSick,
		"totalRefused":             s.TotalRefused,
		"totalUnpaidRest":          s.TotalUnpaidRest,
		"totalUnpaidOther":         s.TotalUnpaidOther,
		"totalUnpaidSuspended":     s.TotalUnpaidSuspended,
		"suspendedPrisonerCount":   s.SuspendedPrisonerCount,
		"totalCancelledSessions":   s.TotalCancelledSessions,
		"totalStaffUnavailable":    s.TotalStaffUnavailable,
		"totalStaffTraining":       s.TotalStaffTraining,
		"totalSessionsNotRequired": s.TotalSessionsNotRequired,
		"totalLocationUnavailable": s.TotalLocationUnavailable,
		"totalOperationalIssue":    s.TotalOperationalIssue,
		"totalUnclassified":        s.TotalUnclassified,
	}
}
