package service

import (
	"fmt"

	"github.com/justice-digital/activities-api/internal/models"
	appErrors "github.com/justice-digital/activities-api/pkg/errors"
)

// PayChoice carries the yes/no decisions staff capture alongside a reason.
// Only the field the reason requires is consulted; everything else is
// ignored.
type PayChoice struct {
	SickPay                     *bool `json:"sickPay,omitempty"`
	RestPay                     *bool `json:"restPay,omitempty"`
	OtherAbsencePay             *bool `json:"otherAbsencePay,omitempty"`
	IncentiveLevelWarningIssued *bool `json:"incentiveLevelWarningIssued,omitempty"`
}

// PayDecision is the outcome consumed when building the attendance update.
type PayDecision struct {
	IssuePayment          bool `json:"issuePayment"`
	IncentiveLevelWarning bool `json:"incentiveLevelWarning"`
}

// ValidatePayChoice checks that every capture the reason's catalog entry
// demands was supplied. It runs before DeterminePay so the rule itself stays
// total.
func ValidatePayChoice(reason models.AttendanceReason, activityPaid bool, choice *PayChoice) error {
	def, err := models.LookupReason(reason)
	if err != nil {
		return err
	}
	if def.CapturePay && activityPaid {
		missing := ""
		switch reason {
		case models.ReasonSick:
			if choice == nil || choice.SickPay == nil {
				missing = "sickPay"
			}
		case models.ReasonRest:
			if choice == nil || choice.RestPay == nil {
				missing = "restPay"
			}
		case models.ReasonOther:
			if choice == nil || choice.OtherAbsencePay == nil {
				missing = "otherAbsencePay"
			}
		}
		if missing != "" {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s choice is required for reason %s on a paid activity", missing, reason))
		}
	}
	if def.CaptureIncentiveLevelWarning {
		if choice == nil || choice.IncentiveLevelWarningIssued == nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("incentiveLevelWarningIssued choice is required for reason %s", reason))
		}
	}
	return nil
}

// DeterminePay resolves whether payment is issued and whether an incentive
// level warning is recorded, from the reason, the activity's paid flag and
// the captured choice. Pure; persistence is the caller's responsibility.
//
// Rules in priority order: CLASH and NOT_REQUIRED are never chargeable to
// the prisoner; REFUSED is never paid; SICK/REST/OTHER follow the captured
// choice but only on a paid activity; ATTENDED and CANCELLED pass the
// activity's paid flag straight through; suspensions are unpaid. The warning
// is issued only for a confirmed REFUSED.
func DeterminePay(reason models.AttendanceReason, activityPaid bool, choice *PayChoice) (PayDecision, error) {
	switch reason {
	case models.ReasonClash, models.ReasonNotRequired:
		return PayDecision{IssuePayment: true}, nil
	case models.ReasonRefused:
		warning := choice != nil && choice.IncentiveLevelWarningIssued != nil && *choice.IncentiveLevelWarningIssued
		return PayDecision{IssuePayment: false, IncentiveLevelWarning: warning}, nil
	case models.ReasonSick:
		return PayDecision{IssuePayment: activityPaid && boolChoice(choice, func(c *PayChoice) *bool { return c.SickPay })}, nil
	case models.ReasonRest:
		return PayDecision{IssuePayment: activityPaid && boolChoice(choice, func(c *PayChoice) *bool { return c.RestPay })}, nil
	case models.ReasonOther:
		return PayDecision{IssuePayment: activityPaid && boolChoice(choice, func(c *PayChoice) *bool { return c.OtherAbsencePay })}, nil
	case models.ReasonAttended, models.ReasonCancelled:
		return PayDecision{IssuePayment: activityPaid}, nil
	case models.ReasonSuspended, models.ReasonAutoSuspended:
		return PayDecision{}, nil
	default:
		return PayDecision{}, appErrors.Clone(appErrors.ErrUnknownReason, fmt.Sprintf("unknown attendance reason %q", reason))
	}
}

func boolChoice(choice *PayChoice, pick func(*PayChoice) *bool) bool {
	if choice == nil {
		return false
	}
	v := pick(choice)
	return v != nil && *v
}
