package models

import "time"

// Activity is the owning activity of a schedule. Paid drives every pay
// decision for its attendances; there is no per-record override for the
// ATTENDED case.
type Activity struct {
	ID         int64     `db:"id" json:"id"`
	PrisonCode string    `db:"prison_code" json:"prisonCode"`
	Summary    string    `db:"summary" json:"summary"`
	Category   string    `db:"category" json:"category"`
	Paid       bool      `db:"paid" json:"paid"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// ActivityScheduleSlot defines the wall-clock start/end time of a
// week-number + time-slot combination and the days it runs. Read-only from
// the engine's point of view.
type ActivityScheduleSlot struct {
	ID         int64       `db:"id" json:"id"`
	ScheduleID int64       `db:"schedule_id" json:"scheduleId"`
	WeekNumber int         `db:"week_number" json:"weekNumber"`
	TimeSlot   TimeSlot    `db:"time_slot" json:"timeSlot"`
	StartTime  string      `db:"start_time" json:"startTime"`
	EndTime    string      `db:"end_time" json:"endTime"`
	Monday     bool        `db:"monday" json:"monday"`
	Tuesday    bool        `db:"tuesday" json:"tuesday"`
	Wednesday  bool        `db:"wednesday" json:"wednesday"`
	Thursday   bool        `db:"thursday" json:"thursday"`
	Friday     bool        `db:"friday" json:"friday"`
	Saturday   bool        `db:"saturday" json:"saturday"`
	Sunday     bool        `db:"sunday" json:"sunday"`
	DaysOfWeek []DayOfWeek `db:"-" json:"daysOfWeek"`
}

// RunsOn reports whether the slot is scheduled for the given day.
func (s ActivityScheduleSlot) RunsOn(day DayOfWeek) bool {
	switch day {
	case Monday:
		return s.Monday
	case Tuesday:
		return s.Tuesday
	case Wednesday:
		return s.Wednesday
	case Thursday:
		return s.Thursday
	case Friday:
		return s.Friday
	case Saturday:
		return s.Saturday
	case Sunday:
		return s.Sunday
	default:
		return false
	}
}

// Normalize rebuilds DaysOfWeek from the day flags.
func (s *ActivityScheduleSlot) Normalize() {
	days := make([]DayOfWeek, 0, 7)
	for _, day := range AllDaysOfWeek {
		if s.RunsOn(day) {
			days = append(days, day)
		}
	}
	s.DaysOfWeek = days
}

// SessionInstance is one concrete occurrence of a schedule slot on a date.
// Attendance records hang off it; cancelling it completes every WAITING
// attendance with the CANCELLED reason.
type SessionInstance struct {
	ID              int64      `db:"id" json:"id"`
	ScheduleID      int64      `db:"schedule_id" json:"scheduleId"`
	ActivityID      int64      `db:"activity_id" json:"activityId"`
	PrisonCode      string     `db:"prison_code" json:"prisonCode"`
	SessionDate     time.Time  `db:"session_date" json:"sessionDate"`
	StartTime       string     `db:"start_time" json:"startTime"`
	EndTime         string     `db:"end_time" json:"endTime"`
	TimeSlot        TimeSlot   `db:"time_slot" json:"timeSlot"`
	Cancelled       bool       `db:"cancelled" json:"cancelled"`
	CancelledReason *string    `db:"cancelled_reason" json:"cancelledReason,omitempty"`
	CancelledBy     *string    `db:"cancelled_by" json:"cancelledBy,omitempty"`
	CancelledAt     *time.Time `db:"cancelled_at" json:"cancelledAt,omitempty"`
}

// Allocation ties a prisoner to an activity schedule, together with the
// weekly exclusion pattern stored in its own table.
type Allocation struct {
	ID             int64     `db:"id" json:"id"`
	ScheduleID     int64     `db:"schedule_id" json:"scheduleId"`
	ActivityID     int64     `db:"activity_id" json:"activityId"`
	PrisonerNumber string    `db:"prisoner_number" json:"prisonerNumber"`
	PrisonCode     string    `db:"prison_code" json:"prisonCode"`
	StartDate      time.Time `db:"start_date" json:"startDate"`
	EndDate        *time.Time `db:"end_date" json:"endDate,omitempty"`
	Suspended      bool      `db:"suspended" json:"suspended"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
