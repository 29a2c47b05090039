package dto

import "github.com/justice-digital/activities-api/internal/models"

// SessionTime is one resolved slot with its schedule's wall-clock times.
type SessionTime struct {
	TimeSlot  models.TimeSlot `json:"timeSlot"`
	StartTime string          `json:"startTime"`
	EndTime   string          `json:"endTime"`
}

// DaySessionTimes groups resolved slots under a day for display.
type DaySessionTimes struct {
	Day   models.DayOfWeek `json:"day"`
	Slots []SessionTime    `json:"slots"`
}

// WeeklyTimeSlots maps week number onto the resolved per-day slot times.
type WeeklyTimeSlots map[int][]DaySessionTimes

// ExclusionDiffResponse is the preview payload: which concrete day/slot
// combinations a proposed pattern adds and removes, resolved to times.
type ExclusionDiffResponse struct {
	Added   WeeklyTimeSlots `json:"added"`
	Removed WeeklyTimeSlots `json:"removed"`
}
