package models

// WeeklyExclusionSlot is one row of a prisoner's allocation exclusion
// pattern: for a given week of the schedule cycle and time slot, the day
// flags mark days the prisoner is not expected to attend. DaysOfWeek is the
// derived set form of the seven flags; the two representations must never
// disagree.
type WeeklyExclusionSlot struct {
	AllocationID int64       `db:"allocation_id" json:"-"`
	WeekNumber   int         `db:"week_number" json:"weekNumber"`
	TimeSlot     TimeSlot    `db:"time_slot" json:"timeSlot"`
	Monday       bool        `db:"monday" json:"monday"`
	Tuesday      bool        `db:"tuesday" json:"tuesday"`
	Wednesday    bool        `db:"wednesday" json:"wednesday"`
	Thursday     bool        `db:"thursday" json:"thursday"`
	Friday       bool        `db:"friday" json:"friday"`
	Saturday     bool        `db:"saturday" json:"saturday"`
	Sunday       bool        `db:"sunday" json:"sunday"`
	DaysOfWeek   []DayOfWeek `db:"-" json:"daysOfWeek"`
}

// DayFlag reads the boolean flag for a day.
func (s WeeklyExclusionSlot) DayFlag(day DayOfWeek) bool {
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

// SetDay writes the boolean flag for a day and keeps DaysOfWeek in step.
func (s *WeeklyExclusionSlot) SetDay(day DayOfWeek, excluded bool) {
	switch day {
	case Monday:
		s.Monday = excluded
	case Tuesday:
		s.Tuesday = excluded
	case Wednesday:
		s.Wednesday = excluded
	case Thursday:
		s.Thursday = excluded
	case Friday:
		s.Friday = excluded
	case Saturday:
		s.Saturday = excluded
	case Sunday:
		s.Sunday = excluded
	}
	s.DaysOfWeek = s.DerivedDays()
}

// DerivedDays rebuilds the day set from the seven flags, Monday first.
func (s WeeklyExclusionSlot) DerivedDays() []DayOfWeek {
	days := make([]DayOfWeek, 0, 7)
	for _, day := range AllDaysOfWeek {
		if s.DayFlag(day) {
			days = append(days, day)
		}
	}
	return days
}

// Normalize synchronises DaysOfWeek with the flags. Repository loads call
// this so the round-trip law holds for every slot handed to the engine.
func (s *WeeklyExclusionSlot) Normalize() {
	s.DaysOfWeek = s.DerivedDays()
}

// Empty reports whether no day is excluded for this week and slot.
func (s WeeklyExclusionSlot) Empty() bool {
	return !s.Monday && !s.Tuesday && !s.Wednesday && !s.Thursday && !s.Friday && !s.Saturday && !s.Sunday
}
