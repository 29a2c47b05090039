package models

import (
	"time"

	appErrors "github.com/justice-digital/activities-api/pkg/errors"
)

// AttendanceStatus represents the lifecycle state of an attendance record.
type AttendanceStatus string

const (
	AttendanceStatusWaiting   AttendanceStatus = "WAITING"
	AttendanceStatusCompleted AttendanceStatus = "COMPLETED"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	return s == AttendanceStatusWaiting || s == AttendanceStatusCompleted
}

// AttendanceRecord is one prisoner's attendance at one scheduled session
// instance. Reason and IssuePayment are unset while WAITING and both set once
// COMPLETED; a reset returns the record to WAITING and clears them.
type AttendanceRecord struct {
	ID                          int64             `db:"id" json:"id"`
	SessionInstanceID           int64             `db:"session_instance_id" json:"sessionInstanceId"`
	PrisonerNumber              string            `db:"prisoner_number" json:"prisonerNumber"`
	Status                      AttendanceStatus  `db:"status" json:"status"`
	Reason                      *AttendanceReason `db:"reason" json:"reason,omitempty"`
	IssuePayment                *bool             `db:"issue_payment" json:"issuePayment,omitempty"`
	TimeSlot                    TimeSlot          `db:"time_slot" json:"timeSlot"`
	SessionDate                 time.Time         `db:"session_date" json:"sessionDate"`
	AttendanceRequired          bool              `db:"attendance_required" json:"attendanceRequired"`
	IncentiveLevelWarningIssued *bool             `db:"incentive_level_warning_issued" json:"incentiveLevelWarningIssued,omitempty"`
	CaseNoteText                *string           `db:"case_note_text" json:"caseNoteText,omitempty"`
	OtherAbsenceReason          *string           `db:"other_absence_reason" json:"otherAbsenceReason,omitempty"`
	// AttendeeCount is 1 for per-attendance rows; pre-aggregated summary rows
	// supply the number of attendees they stand for.
	AttendeeCount int        `db:"attendee_count" json:"attendeeCount,omitempty"`
	RecordedBy    *string    `db:"recorded_by" json:"recordedBy,omitempty"`
	RecordedAt    *time.Time `db:"recorded_at" json:"recordedAt,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

// Attendees reports how many prisoners the record stands for.
func (r *AttendanceRecord) Attendees() int {
	if r.AttendeeCount > 0 {
		return r.AttendeeCount
	}
	return 1
}

// Complete transitions WAITING -> COMPLETED exactly once, recording the
// authoritative reason and the pay decision derived from it.
func (r *AttendanceRecord) Complete(reason AttendanceReason, issuePayment bool, recordedBy string, at time.Time) error {
	if r.Status == AttendanceStatusCompleted {
		return appErrors.Clone(appErrors.ErrConflict, "attendance already recorded")
	}
	if !reason.Valid() {
		return appErrors.Clone(appErrors.ErrUnknownReason, "unknown attendance reason")
	}
	r.Status = AttendanceStatusCompleted
	r.Reason = &reason
	r.IssuePayment = &issuePayment
	r.RecordedBy = &recordedBy
	r.RecordedAt = &at
	return nil
}

// Reset returns a COMPLETED record to WAITING, clearing reason, payment and
// capture fields.
func (r *AttendanceRecord) Reset() error {
	if r.Status != AttendanceStatusCompleted {
		return appErrors.Clone(appErrors.ErrConflict, "attendance is not recorded")
	}
	r.Status = AttendanceStatusWaiting
	r.Reason = nil
	r.IssuePayment = nil
	r.IncentiveLevelWarningIssued = nil
	r.CaseNoteText = nil
	r.OtherAbsenceReason = nil
	r.RecordedBy = nil
	r.RecordedAt = nil
	return nil
}

// AttendanceFilter scopes attendance listing queries.
type AttendanceFilter struct {
	SessionInstanceID int64
	PrisonCode        string
	PrisonerNumber    string
	SessionDate       *time.Time
	Status            *AttendanceStatus
	TimeSlot          *TimeSlot
	Page              int
	PageSize          int
	SortBy            string
	SortOrder         string
}
