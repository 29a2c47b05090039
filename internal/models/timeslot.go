package models

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	appErrors "github.com/justice-digital/activities-api/pkg/errors"
)

// TimeSlot is the coarse part-of-day bucket used for scheduling and reporting.
type TimeSlot string

const (
	TimeSlotAM TimeSlot = "AM"
	TimeSlotPM TimeSlot = "PM"
	TimeSlotED TimeSlot = "ED"
)

// AllTimeSlots lists slots in display order.
var AllTimeSlots = []TimeSlot{TimeSlotAM, TimeSlotPM, TimeSlotED}

// Valid returns true when the slot is a supported value.
func (s TimeSlot) Valid() bool {
	switch s {
	case TimeSlotAM, TimeSlotPM, TimeSlotED:
		return true
	default:
		return false
	}
}

// ordinal is used for deterministic AM < PM < ED ordering.
func (s TimeSlot) ordinal() int {
	switch s {
	case TimeSlotAM:
		return 0
	case TimeSlotPM:
		return 1
	default:
		return 2
	}
}

// Before reports whether s sorts ahead of other in AM/PM/ED order.
func (s TimeSlot) Before(other TimeSlot) bool {
	return s.ordinal() < other.ordinal()
}

// ParseTimeSlot normalises a slot identifier.
func ParseTimeSlot(raw string) (TimeSlot, error) {
	slot := TimeSlot(strings.ToUpper(strings.TrimSpace(raw)))
	if !slot.Valid() {
		return "", appErrors.Clone(appErrors.ErrParse, fmt.Sprintf("unknown time slot %q", raw))
	}
	return slot, nil
}

// Slot boundaries in minutes since midnight. Noon splits AM from PM; the
// evening threshold matches the upstream backend's slot classification and
// may be overridden once at startup via SetEveningStart.
const (
	noonMinutes           = 12 * 60
	defaultEveningMinutes = 17 * 60
)

// eveningOverride holds a configured PM/ED boundary; zero means the default
// applies. Atomic so a startup override never races classification.
var eveningOverride atomic.Int32

func eveningStartMinutes() int {
	if v := eveningOverride.Load(); v != 0 {
		return int(v)
	}
	return defaultEveningMinutes
}

// SetEveningStart overrides the PM/ED boundary from an "HH:mm" clock time.
// Called once during startup, before any classification happens.
func SetEveningStart(clock string) error {
	minutes, err := parseClockMinutes(clock)
	if err != nil {
		return err
	}
	if minutes <= noonMinutes {
		return appErrors.Clone(appErrors.ErrValidation, "evening start must be after noon")
	}
	eveningOverride.Store(int32(minutes))
	return nil
}

// TimeSlotAt classifies a 24-hour "HH:mm" clock time into AM, PM or ED.
func TimeSlotAt(clock string) (TimeSlot, error) {
	minutes, err := parseClockMinutes(clock)
	if err != nil {
		return "", err
	}
	switch {
	case minutes < noonMinutes:
		return TimeSlotAM, nil
	case minutes < eveningStartMinutes():
		return TimeSlotPM, nil
	default:
		return TimeSlotED, nil
	}
}

func parseClockMinutes(clock string) (int, error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, appErrors.Clone(appErrors.ErrParse, fmt.Sprintf("invalid clock time %q, expected HH:mm", clock))
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, appErrors.Clone(appErrors.ErrParse, fmt.Sprintf("invalid hour in clock time %q", clock))
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, appErrors.Clone(appErrors.ErrParse, fmt.Sprintf("invalid minute in clock time %q", clock))
	}
	return hour*60 + minute, nil
}

// DayOfWeek identifies a day within a weekly allocation pattern.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

// AllDaysOfWeek lists days Monday first, matching the weekly pattern rows.
var AllDaysOfWeek = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Valid returns true when the day is a supported value.
func (d DayOfWeek) Valid() bool {
	for _, day := range AllDaysOfWeek {
		if d == day {
			return true
		}
	}
	return false
}

// ordinal positions Monday at 0.
func (d DayOfWeek) ordinal() int {
	for i, day := range AllDaysOfWeek {
		if d == day {
			return i
		}
	}
	return len(AllDaysOfWeek)
}

// Before reports whether d sorts ahead of other in Monday-first order.
func (d DayOfWeek) Before(other DayOfWeek) bool {
	return d.ordinal() < other.ordinal()
}
