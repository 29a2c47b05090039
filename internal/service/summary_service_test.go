package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justice-digital/activities-api/internal/models"
	appErrors "github.com/justice-digital/activities-api/pkg/errors"
)

func waitingRecord(slot models.TimeSlot) models.AttendanceRecord {
	return models.AttendanceRecord{Status: models.AttendanceStatusWaiting, TimeSlot: slot}
}

func completedRecord(slot models.TimeSlot, reason models.AttendanceReason, paid bool) models.AttendanceRecord {
	return models.AttendanceRecord{
		Status:       models.AttendanceStatusCompleted,
		TimeSlot:     slot,
		Reason:       &reason,
		IssuePayment: &paid,
	}
}

func TestAggregateAttendanceBuckets(t *testing.T) {
	records := []models.AttendanceRecord{
		completedRecord(models.TimeSlotAM, models.ReasonAttended, true),
		completedRecord(models.TimeSlotAM, models.ReasonSick, true),
		completedRecord(models.TimeSlotPM, models.ReasonSick, false),
		completedRecord(models.TimeSlotPM, models.ReasonRefused, false),
		completedRecord(models.TimeSlotED, models.ReasonSuspended, false),
		completedRecord(models.TimeSlotED, models.ReasonCancelled, true),
		waitingRecord(models.TimeSlotAM),
	}

	summary, err := AggregateAttendance(records)
	require.NoError(t, err)

	assert.Equal(t, 7, summary.TotalActivities.Day)
	assert.Equal(t, 3, summary.TotalActivities.AM)
	assert.Equal(t, 2, summary.TotalActivities.PM)
	assert.Equal(t, 2, summary.TotalActivities.ED)

	assert.Equal(t, 1, summary.TotalNotAttended.Day)
	assert.Equal(t, 1, summary.TotalAttended.Day)
	assert.Equal(t, 5, summary.TotalAbsences.Day)

	assert.Equal(t, 2, summary.TotalPaidAbsences.Day)
	assert.Equal(t, 1, summary.TotalPaidSick.AM)
	assert.Equal(t, 1, summary.TotalCancelled.ED)

	assert.Equal(t, 3, summary.TotalUnPaidAbsences.Day)
	assert.Equal(t, 1, summary.TotalUnpaidSick.PM)
	assert.Equal(t, 1, summary.TotalRefused.PM)
	assert.Equal(t, 1, summary.TotalUnpaidSuspended.ED)
	assert.Equal(t, 1, summary.SuspendedPrisonerCount.Day)
}

func TestAggregateAttendanceDayEqualsSlotSum(t *testing.T) {
	records := []models.AttendanceRecord{
		completedRecord(models.TimeSlotAM, models.ReasonAttended, true),
		completedRecord(models.TimeSlotPM, models.ReasonRest, true),
		completedRecord(models.TimeSlotED, models.ReasonOther, false),
		completedRecord(models.TimeSlotAM, models.ReasonNotRequired, true),
		completedRecord(models.TimeSlotPM, models.ReasonClash, true),
		completedRecord(models.TimeSlotED, models.ReasonAutoSuspended, false),
		waitingRecord(models.TimeSlotED),
	}
	summary, err := AggregateAttendance(records)
	require.NoError(t, err)

	for name, counts := range summary.Buckets() {
		assert.True(t, counts.Consistent(), "bucket %s: DAY %d != AM %d + PM %d + ED %d",
			name, counts.Day, counts.AM, counts.PM, counts.ED)
	}
}

func TestAggregateAttendanceUsesAttendeeCount(t *testing.T) {
	record := completedRecord(models.TimeSlotAM, models.ReasonAttended, true)
	record.AttendeeCount = 12
	summary, err := AggregateAttendance([]models.AttendanceRecord{record})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalActivities.AM)
	assert.Equal(t, 12, summary.TotalAllocated.AM)
	assert.Equal(t, 12, summary.TotalAttended.AM)
}

func TestAggregateAttendanceFailsWholeCallOnUnknownReason(t *testing.T) {
	bad := models.AttendanceReason("HOLIDAY")
	records := []models.AttendanceRecord{
		completedRecord(models.TimeSlotAM, models.ReasonAttended, true),
		{Status: models.AttendanceStatusCompleted, TimeSlot: models.TimeSlotPM, Reason: &bad},
	}
	summary, err := AggregateAttendance(records)
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Equal(t, appErrors.ErrUnknownReason.Code, appErrors.FromError(err).Code)
}

func TestAggregateAttendanceCompletedWithoutReason(t *testing.T) {
	records := []models.AttendanceRecord{
		{ID: 4, Status: models.AttendanceStatusCompleted, TimeSlot: models.TimeSlotAM},
	}
	_, err := AggregateAttendance(records)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func strPtr(v string) *string { return &v }

func TestApplyCancellations(t *testing.T) {
	summary := &models.DailyAttendanceSummary{}
	sessions := []models.SessionInstance{
		{Cancelled: true, TimeSlot: models.TimeSlotAM, CancelledReason: strPtr("Staff unavailable")},
		{Cancelled: true, TimeSlot: models.TimeSlotPM, CancelledReason: strPtr("Location unavailable")},
		{Cancelled: true, TimeSlot: models.TimeSlotED, CancelledReason: strPtr("flooding")},
		{Cancelled: false, TimeSlot: models.TimeSlotAM},
	}
	ApplyCancellations(summary, sessions)

	assert.Equal(t, 3, summary.TotalCancelledSessions.Day)
	assert.Equal(t, 1, summary.TotalStaffUnavailable.AM)
	assert.Equal(t, 1, summary.TotalLocationUnavailable.PM)
	assert.Equal(t, 1, summary.TotalUnclassified.ED)
	assert.True(t, summary.TotalCancelledSessions.Consistent())
}

type stubSummaryAttendance struct {
	records []models.AttendanceRecord
	calls   int
}

func (s *stubSummaryAttendance) ListForDate(_ context.Context, _ string, _ time.Time) ([]models.AttendanceRecord, error) {
	s.calls++
	return s.records, nil
}

type stubSummarySessions struct {
	sessions []models.SessionInstance
}

func (s *stubSummarySessions) ListCancelledSessions(_ context.Context, _ string, _ time.Time) ([]models.SessionInstance, error) {
	return s.sessions, nil
}

type mapCacheRepo struct {
	store map[string][]byte
}

func (m *mapCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mapCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = raw
	return nil
}

func (m *mapCacheRepo) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.store, key)
	}
	return nil
}

func TestSummaryServiceDailyCachesResult(t *testing.T) {
	attendance := &stubSummaryAttendance{records: []models.AttendanceRecord{
		completedRecord(models.TimeSlotAM, models.ReasonAttended, true),
	}}
	sessions := &stubSummarySessions{}
	cacheSvc := NewCacheService(&mapCacheRepo{store: map[string][]byte{}}, nil, time.Minute, nil, true)
	svc := NewSummaryService(attendance, sessions, cacheSvc, nil, time.Minute, nil)

	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	summary, cached, err := svc.Daily(context.Background(), "MDI", date)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 1, summary.TotalAttended.AM)
	assert.Equal(t, "MDI", summary.PrisonCode)

	again, cached, err := svc.Daily(context.Background(), "MDI", date)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, summary.TotalAttended, again.TotalAttended)
	assert.Equal(t, 1, attendance.calls)
}

func TestSummaryServiceInvalidateForcesRebuild(t *testing.T) {
	attendance := &stubSummaryAttendance{}
	cacheSvc := NewCacheService(&mapCacheRepo{store: map[string][]byte{}}, nil, time.Minute, nil, true)
	svc := NewSummaryService(attendance, &stubSummarySessions{}, cacheSvc, nil, time.Minute, nil)

	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	_, _, err := svc.Daily(context.Background(), "MDI", date)
	require.NoError(t, err)

	svc.Invalidate(context.Background(), "MDI", date)

	_, cached, err := svc.Daily(context.Background(), "MDI", date)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, attendance.calls)
}

func TestSummaryServiceRequiresPrisonCode(t *testing.T) {
	svc := NewSummaryService(&stubSummaryAttendance{}, &stubSummarySessions{}, NewCacheService(nil, nil, 0, nil, false), nil, 0, nil)
	_, _, err := svc.Daily(context.Background(), "", time.Now())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
