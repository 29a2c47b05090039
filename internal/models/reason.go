package models

import (
	"fmt"
	"sort"

	appErrors "github.com/justice-digital/activities-api/pkg/errors"
)

// AttendanceReason is the closed set of codes explaining an attendance outcome.
type AttendanceReason string

const (
	ReasonSick          AttendanceReason = "SICK"
	ReasonRefused       AttendanceReason = "REFUSED"
	ReasonNotRequired   AttendanceReason = "NOT_REQUIRED"
	ReasonRest          AttendanceReason = "REST"
	ReasonClash         AttendanceReason = "CLASH"
	ReasonOther         AttendanceReason = "OTHER"
	ReasonSuspended     AttendanceReason = "SUSPENDED"
	ReasonAutoSuspended AttendanceReason = "AUTO_SUSPENDED"
	ReasonCancelled     AttendanceReason = "CANCELLED"
	ReasonAttended      AttendanceReason = "ATTENDED"
)

// AttendanceReasonDefinition carries the fixed per-code capture metadata. The
// set is closed and versioned with the backend contract; there is no dynamic
// registration.
type AttendanceReasonDefinition struct {
	Code                         AttendanceReason `json:"code"`
	Description                  string           `json:"description"`
	Attended                     bool             `json:"attended"`
	CapturePay                   bool             `json:"capturePay"`
	CaptureCaseNote              bool             `json:"captureCaseNote"`
	CaptureIncentiveLevelWarning bool             `json:"captureIncentiveLevelWarning"`
	CaptureOtherText             bool             `json:"captureOtherText"`
	DisplaySequence              int              `json:"displaySequence"`
	DisplayInAbsence             bool             `json:"displayInAbsence"`
}

var attendanceReasonCatalog = map[AttendanceReason]AttendanceReasonDefinition{
	ReasonSick: {
		Code: ReasonSick, Description: "Sick",
		CapturePay: true, DisplaySequence: 1, DisplayInAbsence: true,
	},
	ReasonRefused: {
		Code: ReasonRefused, Description: "Refused to attend",
		CaptureCaseNote: true, CaptureIncentiveLevelWarning: true,
		DisplaySequence: 2, DisplayInAbsence: true,
	},
	ReasonNotRequired: {
		Code: ReasonNotRequired, Description: "Not required or excused",
		DisplaySequence: 3, DisplayInAbsence: true,
	},
	ReasonRest: {
		Code: ReasonRest, Description: "Rest day",
		CapturePay: true, DisplaySequence: 4, DisplayInAbsence: true,
	},
	ReasonClash: {
		Code: ReasonClash, Description: "Prisoner's schedule shows another activity",
		DisplaySequence: 5, DisplayInAbsence: true,
	},
	ReasonOther: {
		Code: ReasonOther, Description: "Other absence reason not listed",
		CapturePay: true, CaptureOtherText: true,
		DisplaySequence: 6, DisplayInAbsence: true,
	},
	ReasonSuspended: {
		Code: ReasonSuspended, Description: "Suspended",
		DisplaySequence: 7,
	},
	ReasonAutoSuspended: {
		Code: ReasonAutoSuspended, Description: "Temporarily absent",
		DisplaySequence: 8,
	},
	ReasonCancelled: {
		Code: ReasonCancelled, Description: "Session cancelled",
		DisplaySequence: 9,
	},
	ReasonAttended: {
		Code: ReasonAttended, Description: "Attended",
		Attended: true, DisplaySequence: 10,
	},
}

// Valid returns true when the reason belongs to the closed catalog.
func (r AttendanceReason) Valid() bool {
	_, ok := attendanceReasonCatalog[r]
	return ok
}

// Suspended reports whether the reason represents a suspension.
func (r AttendanceReason) Suspended() bool {
	return r == ReasonSuspended || r == ReasonAutoSuspended
}

// LookupReason resolves a reason code to its catalog definition. Unknown
// codes are surfaced, never defaulted to a guessed reason.
func LookupReason(code AttendanceReason) (AttendanceReasonDefinition, error) {
	def, ok := attendanceReasonCatalog[code]
	if !ok {
		return AttendanceReasonDefinition{}, appErrors.Clone(appErrors.ErrUnknownReason, fmt.Sprintf("unknown attendance reason %q", code))
	}
	return def, nil
}

// ReasonDefinitions returns the catalog ordered by display sequence.
func ReasonDefinitions() []AttendanceReasonDefinition {
	defs := make([]AttendanceReasonDefinition, 0, len(attendanceReasonCatalog))
	for _, def := range attendanceReasonCatalog {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].DisplaySequence < defs[j].DisplaySequence })
	return defs
}
