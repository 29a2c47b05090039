package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/justice-digital/activities-api/internal/models"
	appErrors "github.com/justice-digital/activities-api/pkg/errors"
)

// AggregateAttendance folds attendance records into the fixed bucket set in
// a single pass. All-or-nothing: an unknown reason fails the whole call and
// no partial summary is returned. The input is never mutated.
//
// Reasons outside the finer paid/unpaid lists still count in the split
// totals but no finer bucket; that is intentional, not a gap.
func AggregateAttendance(records []models.AttendanceRecord) (*models.DailyAttendanceSummary, error) {
	summary := &models.DailyAttendanceSummary{}
	for i := range records {
		r := &records[i]
		slot := r.TimeSlot
		n := r.Attendees()

		summary.TotalActivities.Add(slot, 1)
		summary.TotalAllocated.Add(slot, n)

		if r.Status == models.AttendanceStatusWaiting {
			summary.TotalNotAttended.Add(slot, n)
			continue
		}

		if r.Reason == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("completed attendance %d has no reason", r.ID))
		}
		reason := *r.Reason
		if !reason.Valid() {
			return nil, appErrors.Clone(appErrors.ErrUnknownReason,
				fmt.Sprintf("unknown attendance reason %q", reason))
		}

		if reason == models.ReasonAttended {
			summary.TotalAttended.Add(slot, n)
			continue
		}

		summary.TotalAbsences.Add(slot, n)
		paid := r.IssuePayment != nil && *r.IssuePayment
		if paid {
			summary.TotalPaidAbsences.Add(slot, n)
			switch reason {
			case models.ReasonCancelled:
				summary.TotalCancelled.Add(slot, n)
			case models.ReasonSick:
				summary.TotalPaidSick.Add(slot, n)
			case models.ReasonNotRequired:
				summary.TotalNotRequired.Add(slot, n)
			case models.ReasonRest:
				summary.TotalPaidRest.Add(slot, n)
			case models.ReasonClash:
				summary.TotalClash.Add(slot, n)
			case models.ReasonOther:
				summary.TotalPaidOther.Add(slot, n)
			}
		} else {
			summary.TotalUnPaidAbsences.Add(slot, n)
			switch reason {
			case models.ReasonSick:
				summary.TotalUnpaidSick.Add(slot, n)
			case models.ReasonRefused:
				summary.TotalRefused.Add(slot, n)
			case models.ReasonRest:
				summary.TotalUnpaidRest.Add(slot, n)
			case models.ReasonOther:
				summary.TotalUnpaidOther.Add(slot, n)
			case models.ReasonSuspended, models.ReasonAutoSuspended:
				summary.TotalUnpaidSuspended.Add(slot, n)
			}
		}

		if reason.Suspended() {
			summary.SuspendedPrisonerCount.Add(slot, n)
		}
	}
	return summary, nil
}

// ApplyCancellations rolls cancelled session instances into the summary's
// cancellation counters, classifying each free-text reason into one of the
// six fixed categories.
func ApplyCancellations(summary *models.DailyAttendanceSummary, sessions []models.SessionInstance) {
	for i := range sessions {
		s := &sessions[i]
		if !s.Cancelled {
			continue
		}
		slot := s.TimeSlot
		summary.TotalCancelledSessions.Add(slot, 1)

		reason := ""
		if s.CancelledReason != nil {
			reason = *s.CancelledReason
		}
		switch models.ClassifyCancellationReason(reason) {
		case models.CancellationStaffUnavailable:
			summary.TotalStaffUnavailable.Add(slot, 1)
		case models.CancellationStaffTraining:
			summary.TotalStaffTraining.Add(slot, 1)
		case models.CancellationNotRequired:
			summary.TotalSessionsNotRequired.Add(slot, 1)
		case models.CancellationLocationUnavailable:
			summary.TotalLocationUnavailable.Add(slot, 1)
		case models.CancellationOperationalIssue:
			summary.TotalOperationalIssue.Add(slot, 1)
		default:
			summary.TotalUnclassified.Add(slot, 1)
		}
	}
}

type summaryAttendanceRepository interface {
	ListForDate(ctx context.Context, prisonCode string, date time.Time) ([]models.AttendanceRecord, error)
}

type summarySessionRepository interface {
	ListCancelledSessions(ctx context.Context, prisonCode string, date time.Time) ([]models.SessionInstance, error)
}

// SummaryService builds the daily attendance summary for a prison and date,
// with a cache-aside layer in front of the aggregation.
type SummaryService struct {
	attendance summaryAttendanceRepository
	sessions   summarySessionRepository
	cache      *CacheService
	metrics    *MetricsService
	cacheTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewSummaryService constructs the summary service.
func NewSummaryService(attendance summaryAttendanceRepository, sessions summarySessionRepository, cache *CacheService, metrics *MetricsService, cacheTTL time.Duration, logger *zap.Logger) *SummaryService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryService{
		attendance: attendance,
		sessions:   sessions,
		cache:      cache,
		metrics:    metrics,
		cacheTTL:   cacheTTL,
		logger:     logger,
		now:        time.Now,
	}
}

func summaryCacheKey(prisonCode string, date time.Time) string {
	return fmt.Sprintf("summary:daily:%s:%s", prisonCode, date.Format("2006-01-02"))
}

// Daily returns the AM/PM/ED/DAY-bucketed rollup of all attendance outcomes
// for one prison on one date. The second return reports cache utilisation.
func (s *SummaryService) Daily(ctx context.Context, prisonCode string, date time.Time) (*models.DailyAttendanceSummary, bool, error) {
	if prisonCode == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "prison code required")
	}
	key := summaryCacheKey(prisonCode, date)

	var cached models.DailyAttendanceSummary
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	records, err := s.attendance.ListForDate(ctx, prisonCode, date)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	cancelled, err := s.sessions.ListCancelledSessions(ctx, prisonCode, date)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cancelled sessions")
	}

	summary, err := AggregateAttendance(records)
	if err != nil {
		return nil, false, err
	}
	ApplyCancellations(summary, cancelled)
	summary.PrisonCode = prisonCode
	summary.SummaryDate = date

	if s.metrics != nil {
		s.metrics.RecordSummaryBuilt(prisonCode)
	}
	if err := s.cache.Set(ctx, key, summary, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache daily summary", zap.String("key", key), zap.Error(err))
	}
	return summary, false, nil
}

// Invalidate drops any cached summary for the prison and date; called after
// attendance writes so the next read reflects them.
func (s *SummaryService) Invalidate(ctx context.Context, prisonCode string, date time.Time) {
	if err := s.cache.Delete(ctx, summaryCacheKey(prisonCode, date)); err != nil {
		s.logger.Warn("failed to invalidate summary cache",
			zap.String("prison", prisonCode), zap.Error(err))
	}
}
