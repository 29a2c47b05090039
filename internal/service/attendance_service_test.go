package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justice-digital/activities-api/internal/models"
	appErrors "github.com/justice-digital/activities-api/pkg/errors"
)

type stubAttendanceRepo struct {
	records map[int64]*models.AttendanceRecord
	updated []int64
}

func (s *stubAttendanceRepo) List(_ context.Context, _ models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	out := make([]models.AttendanceRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (s *stubAttendanceRepo) FindByID(_ context.Context, id int64) (*models.AttendanceRecord, error) {
	record, ok := s.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *record
	return &copied, nil
}

func (s *stubAttendanceRepo) ListBySession(_ context.Context, sessionID int64) ([]models.AttendanceRecord, error) {
	out := make([]models.AttendanceRecord, 0)
	for _, r := range s.records {
		if r.SessionInstanceID == sessionID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *stubAttendanceRepo) Update(_ context.Context, record *models.AttendanceRecord) error {
	copied := *record
	s.records[record.ID] = &copied
	s.updated = append(s.updated, record.ID)
	return nil
}

type stubSessionRepo struct {
	sessions map[int64]*models.SessionInstance
}

func (s *stubSessionRepo) FindSession(_ context.Context, id int64) (*models.SessionInstance, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *session
	return &copied, nil
}

func (s *stubSessionRepo) UpdateSession(_ context.Context, session *models.SessionInstance) error {
	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

type stubActivityRepo struct {
	activities map[int64]*models.Activity
}

func (s *stubActivityRepo) FindActivity(_ context.Context, id int64) (*models.Activity, error) {
	activity, ok := s.activities[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return activity, nil
}

type stubInvalidator struct {
	calls int
}

func (s *stubInvalidator) Invalidate(_ context.Context, _ string, _ time.Time) {
	s.calls++
}

type attendanceFixture struct {
	svc         *AttendanceService
	attendance  *stubAttendanceRepo
	sessions    *stubSessionRepo
	invalidator *stubInvalidator
}

func newAttendanceFixture(t *testing.T, activityPaid bool) *attendanceFixture {
	t.Helper()
	attendance := &stubAttendanceRepo{records: map[int64]*models.AttendanceRecord{
		1: {ID: 1, SessionInstanceID: 10, PrisonerNumber: "A1234BC",
			Status: models.AttendanceStatusWaiting, TimeSlot: models.TimeSlotAM,
			SessionDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), AttendanceRequired: true},
		2: {ID: 2, SessionInstanceID: 10, PrisonerNumber: "B5678CD",
			Status: models.AttendanceStatusWaiting, TimeSlot: models.TimeSlotAM,
			SessionDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), AttendanceRequired: true},
	}}
	sessions := &stubSessionRepo{sessions: map[int64]*models.SessionInstance{
		10: {ID: 10, ActivityID: 100, PrisonCode: "MDI", TimeSlot: models.TimeSlotAM,
			SessionDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
	}}
	activities := &stubActivityRepo{activities: map[int64]*models.Activity{
		100: {ID: 100, PrisonCode: "MDI", Summary: "Kitchens", Paid: activityPaid},
	}}
	invalidator := &stubInvalidator{}
	svc := NewAttendanceService(attendance, sessions, activities, invalidator, nil, nil, nil)
	return &attendanceFixture{svc: svc, attendance: attendance, sessions: sessions, invalidator: invalidator}
}

func TestMarkAttendedOnPaidActivity(t *testing.T) {
	f := newAttendanceFixture(t, true)

	result, err := f.svc.Mark(context.Background(), MarkAttendanceRequest{
		RecordedBy: "officer1",
		Items:      []MarkAttendanceItem{{AttendanceID: 1, Reason: "ATTENDED"}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Processed)

	record := f.attendance.records[1]
	assert.Equal(t, models.AttendanceStatusCompleted, record.Status)
	require.NotNil(t, record.Reason)
	assert.Equal(t, models.ReasonAttended, *record.Reason)
	require.NotNil(t, record.IssuePayment)
	assert.True(t, *record.IssuePayment)
	assert.Equal(t, "officer1", *record.RecordedBy)
	assert.Equal(t, 1, f.invalidator.calls)
}

func TestMarkSickFollowsPayChoice(t *testing.T) {
	f := newAttendanceFixture(t, true)

	_, err := f.svc.Mark(context.Background(), MarkAttendanceRequest{
		RecordedBy: "officer1",
		Items:      []MarkAttendanceItem{{AttendanceID: 1, Reason: "sick", SickPay: boolPtr(false)}},
	})
	require.NoError(t, err)

	record := f.attendance.records[1]
	require.NotNil(t, record.IssuePayment)
	assert.False(t, *record.IssuePayment)
}

func TestMarkSickOnPaidActivityRequiresChoice(t *testing.T) {
	f := newAttendanceFixture(t, true)

	_, err := f.svc.Mark(context.Background(), MarkAttendanceRequest{
		RecordedBy: "officer1",
		Items:      []MarkAttendanceItem{{AttendanceID: 1, Reason: "SICK"}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.AttendanceStatusWaiting, f.attendance.records[1].Status)
}

func TestMarkRefusedRecordsWarning(t *testing.T) {
	f := newAttendanceFixture(t, true)

	note := "refused at the gate"
	_, err := f.svc.Mark(context.Background(), MarkAttendanceRequest{
		RecordedBy: "officer1",
		Items: []MarkAttendanceItem{{
			AttendanceID:                1,
			Reason:                      "REFUSED",
			IncentiveLevelWarningIssued: boolPtr(true),
			CaseNoteText:                &note,
		}},
	})
	require.NoError(t, err)

	record := f.attendance.records[1]
	require.NotNil(t, record.IssuePayment)
	assert.False(t, *record.IssuePayment)
	require.NotNil(t, record.IncentiveLevelWarningIssued)
	assert.True(t, *record.IncentiveLevelWarningIssued)
	require.NotNil(t, record.CaseNoteText)
}

func TestMarkRefusedRequiresCaseNote(t *testing.T) {
	f := newAttendanceFixture(t, true)

	_, err := f.svc.Mark(context.Background(), MarkAttendanceRequest{
		RecordedBy: "officer1",
		Items: []MarkAttendanceItem{{
			AttendanceID:                1,
			Reason:                      "REFUSED",
			IncentiveLevelWarningIssued: boolPtr(false),
		}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestMarkRejectsDuplicateItems(t *testing.T) {
	f := newAttendanceFixture(t, true)

	_, err := f.svc.Mark(context.Background(), MarkAttendanceRequest{
		RecordedBy: "officer1",
		Items: []MarkAttendanceItem{
			{AttendanceID: 1, Reason: "ATTENDED"},
			{AttendanceID: 1, Reason: "ATTENDED"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestMarkTwiceConflicts(t *testing.T) {
	f := newAttendanceFixture(t, true)

	req := MarkAttendanceRequest{
		RecordedBy: "officer1",
		Items:      []MarkAttendanceItem{{AttendanceID: 1, Reason: "ATTENDED"}},
	}
	_, err := f.svc.Mark(context.Background(), req)
	require.NoError(t, err)

	_, err = f.svc.Mark(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestResetClearsCaptureFields(t *testing.T) {
	f := newAttendanceFixture(t, true)

	note := "note"
	_, err := f.svc.Mark(context.Background(), MarkAttendanceRequest{
		RecordedBy: "officer1",
		Items: []MarkAttendanceItem{{
			AttendanceID: 1, Reason: "REFUSED",
			IncentiveLevelWarningIssued: boolPtr(true), CaseNoteText: &note,
		}},
	})
	require.NoError(t, err)

	record, err := f.svc.Reset(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusWaiting, record.Status)
	assert.Nil(t, record.Reason)
	assert.Nil(t, record.IssuePayment)
	assert.Nil(t, record.IncentiveLevelWarningIssued)
	assert.Nil(t, record.CaseNoteText)
}

func TestResetWaitingRecordConflicts(t *testing.T) {
	f := newAttendanceFixture(t, true)

	_, err := f.svc.Reset(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCancelSessionCompletesWaitingAttendances(t *testing.T) {
	f := newAttendanceFixture(t, true)

	// one attendance already recorded before the cancellation
	_, err := f.svc.Mark(context.Background(), MarkAttendanceRequest{
		RecordedBy: "officer1",
		Items:      []MarkAttendanceItem{{AttendanceID: 2, Reason: "ATTENDED"}},
	})
	require.NoError(t, err)

	session, err := f.svc.CancelSession(context.Background(), 10, CancelSessionRequest{
		Reason:      "Staff unavailable",
		CancelledBy: "officer2",
	})
	require.NoError(t, err)
	assert.True(t, session.Cancelled)
	require.NotNil(t, session.CancelledReason)

	cancelled := f.attendance.records[1]
	require.NotNil(t, cancelled.Reason)
	assert.Equal(t, models.ReasonCancelled, *cancelled.Reason)
	require.NotNil(t, cancelled.IssuePayment)
	assert.True(t, *cancelled.IssuePayment)

	attended := f.attendance.records[2]
	assert.Equal(t, models.ReasonAttended, *attended.Reason)
}

func TestCancelSessionTwiceConflicts(t *testing.T) {
	f := newAttendanceFixture(t, true)

	_, err := f.svc.CancelSession(context.Background(), 10, CancelSessionRequest{Reason: "Staff training", CancelledBy: "o"})
	require.NoError(t, err)

	_, err = f.svc.CancelSession(context.Background(), 10, CancelSessionRequest{Reason: "Staff training", CancelledBy: "o"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCancelSessionUnpaidActivity(t *testing.T) {
	f := newAttendanceFixture(t, false)

	_, err := f.svc.CancelSession(context.Background(), 10, CancelSessionRequest{Reason: "Location unavailable", CancelledBy: "o"})
	require.NoError(t, err)

	record := f.attendance.records[1]
	require.NotNil(t, record.IssuePayment)
	assert.False(t, *record.IssuePayment)
}

func TestUncancelSessionResetsCancelledAttendances(t *testing.T) {
	f := newAttendanceFixture(t, true)

	_, err := f.svc.CancelSession(context.Background(), 10, CancelSessionRequest{Reason: "Staff unavailable", CancelledBy: "o"})
	require.NoError(t, err)

	session, err := f.svc.UncancelSession(context.Background(), 10, "officer3")
	require.NoError(t, err)
	assert.False(t, session.Cancelled)
	assert.Nil(t, session.CancelledReason)

	for _, id := range []int64{1, 2} {
		record := f.attendance.records[id]
		assert.Equal(t, models.AttendanceStatusWaiting, record.Status)
		assert.Nil(t, record.Reason)
	}
}

func TestUncancelActiveSessionConflicts(t *testing.T) {
	f := newAttendanceFixture(t, true)

	_, err := f.svc.UncancelSession(context.Background(), 10, "officer3")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestMarkUnknownAttendanceNotFound(t *testing.T) {
	f := newAttendanceFixture(t, true)

	_, err := f.svc.Mark(context.Background(), MarkAttendanceRequest{
		RecordedBy: "officer1",
		Items:      []MarkAttendanceItem{{AttendanceID: 404, Reason: "ATTENDED"}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestListRejectsInvalidTimeSlot(t *testing.T) {
	f := newAttendanceFixture(t, true)

	_, _, err := f.svc.List(context.Background(), AttendanceListRequest{TimeSlot: "EVENING"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrParse.Code, appErrors.FromError(err).Code)
}
