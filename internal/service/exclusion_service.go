package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/justice-digital/activities-api/internal/dto"
	"github.com/justice-digital/activities-api/internal/models"
	appErrors "github.com/justice-digital/activities-api/pkg/errors"
)

type weekSlotKey struct {
	week int
	slot models.TimeSlot
}

// foldByWeekSlot merges rows sharing a week number and time slot into one row
// whose day flags are the union of the duplicates. First-appearance order is
// kept and the input is never mutated.
func foldByWeekSlot(slots []models.WeeklyExclusionSlot) []models.WeeklyExclusionSlot {
	index := make(map[weekSlotKey]int, len(slots))
	folded := make([]models.WeeklyExclusionSlot, 0, len(slots))
	for _, s := range slots {
		k := weekSlotKey{s.WeekNumber, s.TimeSlot}
		if i, ok := index[k]; ok {
			for _, day := range models.AllDaysOfWeek {
				if s.DayFlag(day) {
					folded[i].SetDay(day, true)
				}
			}
			continue
		}
		index[k] = len(folded)
		row := s
		row.Normalize()
		folded = append(folded, row)
	}
	return folded
}

// DiffExclusions returns every slot present (day flag true) in candidate for
// a week + time slot + day combination that is absent in baseline, one
// single-day slot per combination. Both inputs are folded by week + time slot
// first, so duplicate rows on either side never emit duplicate tuples. The
// function is deliberately asymmetric: callers invoke it twice with swapped
// arguments to obtain added and removed slots. Neither input is mutated and
// DiffExclusions(x, x) is always empty.
func DiffExclusions(baseline, candidate []models.WeeklyExclusionSlot) []models.WeeklyExclusionSlot {
	base := make(map[weekSlotKey]models.WeeklyExclusionSlot, len(baseline))
	for _, s := range foldByWeekSlot(baseline) {
		base[weekSlotKey{s.WeekNumber, s.TimeSlot}] = s
	}

	var diff []models.WeeklyExclusionSlot
	for _, s := range foldByWeekSlot(candidate) {
		baseSlot, hasBase := base[weekSlotKey{s.WeekNumber, s.TimeSlot}]
		for _, day := range models.AllDaysOfWeek {
			if !s.DayFlag(day) {
				continue
			}
			if hasBase && baseSlot.DayFlag(day) {
				continue
			}
			out := models.WeeklyExclusionSlot{WeekNumber: s.WeekNumber, TimeSlot: s.TimeSlot}
			out.SetDay(day, true)
			diff = append(diff, out)
		}
	}

	sort.SliceStable(diff, func(i, j int) bool {
		a, b := diff[i], diff[j]
		if a.WeekNumber != b.WeekNumber {
			return a.WeekNumber < b.WeekNumber
		}
		if a.TimeSlot != b.TimeSlot {
			return a.TimeSlot.Before(b.TimeSlot)
		}
		return a.DaysOfWeek[0].Before(b.DaysOfWeek[0])
	})
	return diff
}

// MapSlotsToWeeklyTimeSlots resolves each single-day diff slot to the owning
// schedule's configured start/end time and groups the result by week then
// day. A slot whose week + time slot has no schedule definition covering
// that day is a data inconsistency between the allocation and its schedule
// and fails the whole call.
func MapSlotsToWeeklyTimeSlots(slots []models.WeeklyExclusionSlot, scheduleSlots []models.ActivityScheduleSlot) (dto.WeeklyTimeSlots, error) {
	weeks := dto.WeeklyTimeSlots{}
	for _, s := range slots {
		for _, day := range s.DerivedDays() {
			resolved, err := resolveScheduleSlot(s.WeekNumber, s.TimeSlot, day, scheduleSlots)
			if err != nil {
				return nil, err
			}
			appendDaySlot(weeks, s.WeekNumber, day, dto.SessionTime{
				TimeSlot:  s.TimeSlot,
				StartTime: resolved.StartTime,
				EndTime:   resolved.EndTime,
			})
		}
	}
	for week := range weeks {
		days := weeks[week]
		sort.SliceStable(days, func(i, j int) bool { return days[i].Day.Before(days[j].Day) })
		for _, d := range days {
			sort.SliceStable(d.Slots, func(i, j int) bool { return d.Slots[i].TimeSlot.Before(d.Slots[j].TimeSlot) })
		}
		weeks[week] = days
	}
	return weeks, nil
}

func resolveScheduleSlot(week int, slot models.TimeSlot, day models.DayOfWeek, scheduleSlots []models.ActivityScheduleSlot) (*models.ActivityScheduleSlot, error) {
	for i := range scheduleSlots {
		s := &scheduleSlots[i]
		if s.WeekNumber == week && s.TimeSlot == slot && s.RunsOn(day) {
			return s, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrUnresolvedSlot,
		fmt.Sprintf("no schedule slot for week %d %s on %s", week, slot, day))
}

func appendDaySlot(weeks dto.WeeklyTimeSlots, week int, day models.DayOfWeek, st dto.SessionTime) {
	days := weeks[week]
	for i := range days {
		if days[i].Day == day {
			days[i].Slots = append(days[i].Slots, st)
			weeks[week] = days
			return
		}
	}
	weeks[week] = append(days, dto.DaySessionTimes{Day: day, Slots: []dto.SessionTime{st}})
}

type allocationExclusionRepository interface {
	FindAllocation(ctx context.Context, id int64) (*models.Allocation, error)
	ListExclusions(ctx context.Context, allocationID int64) ([]models.WeeklyExclusionSlot, error)
	ReplaceExclusions(ctx context.Context, allocationID int64, slots []models.WeeklyExclusionSlot) error
}

type scheduleSlotReader interface {
	ListSlotsBySchedule(ctx context.Context, scheduleID int64) ([]models.ActivityScheduleSlot, error)
}

// ExclusionService previews and applies changes to an allocation's weekly
// exclusion pattern.
type ExclusionService struct {
	allocations allocationExclusionRepository
	schedules   scheduleSlotReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewExclusionService constructs the exclusion service.
func NewExclusionService(allocations allocationExclusionRepository, schedules scheduleSlotReader, validate *validator.Validate, logger *zap.Logger) *ExclusionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExclusionService{allocations: allocations, schedules: schedules, validator: validate, logger: logger}
}

// ExclusionSlotInput is one proposed pattern row.
type ExclusionSlotInput struct {
	WeekNumber int    `json:"weekNumber" validate:"required,min=1"`
	TimeSlot   string `json:"timeSlot" validate:"required"`
	Monday     bool   `json:"monday"`
	Tuesday    bool   `json:"tuesday"`
	Wednesday  bool   `json:"wednesday"`
	Thursday   bool   `json:"thursday"`
	Friday     bool   `json:"friday"`
	Saturday   bool   `json:"saturday"`
	Sunday     bool   `json:"sunday"`
}

// UpdateExclusionsRequest is the preview/update payload.
type UpdateExclusionsRequest struct {
	Slots []ExclusionSlotInput `json:"slots" validate:"dive"`
}

func (s *ExclusionService) toSlots(req UpdateExclusionsRequest) ([]models.WeeklyExclusionSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exclusion payload")
	}
	slots := make([]models.WeeklyExclusionSlot, 0, len(req.Slots))
	for _, in := range req.Slots {
		slot, err := models.ParseTimeSlot(in.TimeSlot)
		if err != nil {
			return nil, err
		}
		row := models.WeeklyExclusionSlot{
			WeekNumber: in.WeekNumber,
			TimeSlot:   slot,
			Monday:     in.Monday,
			Tuesday:    in.Tuesday,
			Wednesday:  in.Wednesday,
			Thursday:   in.Thursday,
			Friday:     in.Friday,
			Saturday:   in.Saturday,
			Sunday:     in.Sunday,
		}
		row.Normalize()
		slots = append(slots, row)
	}
	// duplicate week+slot rows are merged so the stored pattern keeps one
	// row per combination
	return foldByWeekSlot(slots), nil
}

// Preview diffs the stored pattern against the proposed one and resolves
// both directions to schedule times. The stored pattern is never mutated.
func (s *ExclusionService) Preview(ctx context.Context, allocationID int64, req UpdateExclusionsRequest) (*dto.ExclusionDiffResponse, error) {
	proposed, err := s.toSlots(req)
	if err != nil {
		return nil, err
	}
	allocation, err := s.allocations.FindAllocation(ctx, allocationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "allocation not found")
	}
	current, err := s.allocations.ListExclusions(ctx, allocationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exclusions")
	}
	scheduleSlots, err := s.schedules.ListSlotsBySchedule(ctx, allocation.ScheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule slots")
	}

	added, err := MapSlotsToWeeklyTimeSlots(DiffExclusions(current, proposed), scheduleSlots)
	if err != nil {
		return nil, err
	}
	removed, err := MapSlotsToWeeklyTimeSlots(DiffExclusions(proposed, current), scheduleSlots)
	if err != nil {
		return nil, err
	}
	return &dto.ExclusionDiffResponse{Added: added, Removed: removed}, nil
}

// Update previews the change, then replaces the stored pattern with the
// proposed slots (empty rows dropped). Returns the applied diff.
func (s *ExclusionService) Update(ctx context.Context, allocationID int64, req UpdateExclusionsRequest) (*dto.ExclusionDiffResponse, error) {
	diff, err := s.Preview(ctx, allocationID, req)
	if err != nil {
		return nil, err
	}
	proposed, err := s.toSlots(req)
	if err != nil {
		return nil, err
	}
	kept := proposed[:0]
	for _, slot := range proposed {
		if !slot.Empty() {
			kept = append(kept, slot)
		}
	}
	if err := s.allocations.ReplaceExclusions(ctx, allocationID, kept); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update exclusions")
	}
	s.logger.Info("exclusions updated",
		zap.Int64("allocation_id", allocationID),
		zap.Int("slots", len(kept)))
	return diff, nil
}
