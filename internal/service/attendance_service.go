package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/justice-digital/activities-api/internal/models"
	appErrors "github.com/justice-digital/activities-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
	FindByID(ctx context.Context, id int64) (*models.AttendanceRecord, error)
	ListBySession(ctx context.Context, sessionInstanceID int64) ([]models.AttendanceRecord, error)
	Update(ctx context.Context, record *models.AttendanceRecord) error
}

type sessionRepository interface {
	FindSession(ctx context.Context, id int64) (*models.SessionInstance, error)
	UpdateSession(ctx context.Context, session *models.SessionInstance) error
}

type activityReader interface {
	FindActivity(ctx context.Context, id int64) (*models.Activity, error)
}

type summaryInvalidator interface {
	Invalidate(ctx context.Context, prisonCode string, date time.Time)
}

// AttendanceService coordinates the attendance recording workflows: marking,
// resetting and session-level cancellation.
type AttendanceService struct {
	attendance attendanceRepository
	sessions   sessionRepository
	activities activityReader
	summaries  summaryInvalidator
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(attendance attendanceRepository, sessions sessionRepository, activities activityReader, summaries summaryInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{
		attendance: attendance,
		sessions:   sessions,
		activities: activities,
		summaries:  summaries,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		now:        time.Now,
	}
	svc.validator.RegisterValidation("attendance_reason", func(fl validator.FieldLevel) bool {
		return models.AttendanceReason(strings.ToUpper(fl.Field().String())).Valid()
	})
	return svc
}

// MarkAttendanceItem is one attendance update within a mark request.
type MarkAttendanceItem struct {
	AttendanceID                int64   `json:"attendanceId" validate:"required"`
	Reason                      string  `json:"reason" validate:"required,attendance_reason"`
	SickPay                     *bool   `json:"sickPay,omitempty"`
	RestPay                     *bool   `json:"restPay,omitempty"`
	OtherAbsencePay             *bool   `json:"otherAbsencePay,omitempty"`
	IncentiveLevelWarningIssued *bool   `json:"incentiveLevelWarningIssued,omitempty"`
	CaseNoteText                *string `json:"caseNoteText,omitempty"`
	OtherAbsenceReason          *string `json:"otherAbsenceReason,omitempty"`
}

// MarkAttendanceRequest marks one or more attendances in a single action.
type MarkAttendanceRequest struct {
	Items      []MarkAttendanceItem `json:"items" validate:"required,min=1,dive"`
	RecordedBy string               `json:"-"`
}

// MarkResult summarises a mark call.
type MarkResult struct {
	Processed int                       `json:"processed"`
	Records   []models.AttendanceRecord `json:"records"`
}

func (i MarkAttendanceItem) payChoice() *PayChoice {
	return &PayChoice{
		SickPay:                     i.SickPay,
		RestPay:                     i.RestPay,
		OtherAbsencePay:             i.OtherAbsencePay,
		IncentiveLevelWarningIssued: i.IncentiveLevelWarningIssued,
	}
}

// validateCaptures enforces the catalog's capture requirements that are not
// pay choices: case notes and other-absence text.
func validateCaptures(def models.AttendanceReasonDefinition, item MarkAttendanceItem) error {
	if def.CaptureCaseNote && (item.CaseNoteText == nil || strings.TrimSpace(*item.CaseNoteText) == "") {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("case note is required for reason %s", def.Code))
	}
	if def.CaptureOtherText && (item.OtherAbsenceReason == nil || strings.TrimSpace(*item.OtherAbsenceReason) == "") {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("absence description is required for reason %s", def.Code))
	}
	return nil
}

// Mark completes WAITING attendances with their authoritative reason and the
// derived pay decision. The whole request is validated before any record is
// written.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest) (*MarkResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	seen := map[int64]struct{}{}
	for _, item := range req.Items {
		if _, ok := seen[item.AttendanceID]; ok {
			return nil, appErrors.Clone(appErrors.ErrConflict, "duplicate attendance in payload")
		}
		seen[item.AttendanceID] = struct{}{}
	}

	result := &MarkResult{}
	for _, item := range req.Items {
		record, err := s.markOne(ctx, item, req.RecordedBy)
		if err != nil {
			return nil, err
		}
		result.Records = append(result.Records, *record)
		result.Processed++
	}
	return result, nil
}

func (s *AttendanceService) markOne(ctx context.Context, item MarkAttendanceItem, recordedBy string) (*models.AttendanceRecord, error) {
	record, err := s.attendance.FindByID(ctx, item.AttendanceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("attendance %d not found", item.AttendanceID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	session, err := s.sessions.FindSession(ctx, record.SessionInstanceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	activity, err := s.activities.FindActivity(ctx, session.ActivityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}

	reason := models.AttendanceReason(strings.ToUpper(item.Reason))
	def, err := models.LookupReason(reason)
	if err != nil {
		return nil, err
	}
	if err := validateCaptures(def, item); err != nil {
		return nil, err
	}
	choice := item.payChoice()
	if err := ValidatePayChoice(reason, activity.Paid, choice); err != nil {
		return nil, err
	}
	decision, err := DeterminePay(reason, activity.Paid, choice)
	if err != nil {
		return nil, err
	}

	if err := record.Complete(reason, decision.IssuePayment, recordedBy, s.now()); err != nil {
		return nil, err
	}
	if def.CaptureIncentiveLevelWarning {
		warning := decision.IncentiveLevelWarning
		record.IncentiveLevelWarningIssued = &warning
	}
	record.CaseNoteText = item.CaseNoteText
	record.OtherAbsenceReason = item.OtherAbsenceReason

	if err := s.attendance.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attendance")
	}

	s.metrics.RecordAttendanceMarked(string(reason))
	if s.summaries != nil {
		s.summaries.Invalidate(ctx, session.PrisonCode, record.SessionDate)
	}
	s.logger.Info("attendance marked",
		zap.Int64("attendance_id", record.ID),
		zap.String("reason", string(reason)),
		zap.Bool("issue_payment", decision.IssuePayment))
	return record, nil
}

// Reset returns a recorded attendance to WAITING, clearing its reason and
// payment so it can be recorded again.
func (s *AttendanceService) Reset(ctx context.Context, attendanceID int64) (*models.AttendanceRecord, error) {
	record, err := s.attendance.FindByID(ctx, attendanceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	if err := record.Reset(); err != nil {
		return nil, err
	}
	if err := s.attendance.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attendance")
	}
	session, err := s.sessions.FindSession(ctx, record.SessionInstanceID)
	if err == nil && s.summaries != nil {
		s.summaries.Invalidate(ctx, session.PrisonCode, record.SessionDate)
	}
	return record, nil
}

// CancelSessionRequest cancels one session instance.
type CancelSessionRequest struct {
	Reason      string `json:"reason" validate:"required"`
	CancelledBy string `json:"-"`
}

// CancelSession records the cancellation and completes every WAITING
// attendance on the instance with the CANCELLED reason; pay follows the
// activity's paid flag.
func (s *AttendanceService) CancelSession(ctx context.Context, sessionID int64, req CancelSessionRequest) (*models.SessionInstance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	session, err := s.sessions.FindSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.Cancelled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "session is already cancelled")
	}
	activity, err := s.activities.FindActivity(ctx, session.ActivityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}

	now := s.now()
	session.Cancelled = true
	session.CancelledReason = &req.Reason
	session.CancelledBy = &req.CancelledBy
	session.CancelledAt = &now
	if err := s.sessions.UpdateSession(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store session")
	}

	records, err := s.attendance.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendances")
	}
	for i := range records {
		record := &records[i]
		if record.Status != models.AttendanceStatusWaiting {
			continue
		}
		if err := record.Complete(models.ReasonCancelled, activity.Paid, req.CancelledBy, now); err != nil {
			return nil, err
		}
		if err := s.attendance.Update(ctx, record); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attendance")
		}
	}

	category := models.ClassifyCancellationReason(req.Reason)
	s.metrics.RecordSessionCancelled(string(category))
	if s.summaries != nil {
		s.summaries.Invalidate(ctx, session.PrisonCode, session.SessionDate)
	}
	s.logger.Info("session cancelled",
		zap.Int64("session_id", sessionID),
		zap.String("category", string(category)),
		zap.Int("attendances", len(records)))
	return session, nil
}

// UncancelSession reverses a cancellation: the instance is reinstated and
// every attendance completed as CANCELLED is reset to WAITING.
func (s *AttendanceService) UncancelSession(ctx context.Context, sessionID int64, actionedBy string) (*models.SessionInstance, error) {
	session, err := s.sessions.FindSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if !session.Cancelled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "session is not cancelled")
	}

	session.Cancelled = false
	session.CancelledReason = nil
	session.CancelledBy = nil
	session.CancelledAt = nil
	if err := s.sessions.UpdateSession(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store session")
	}

	records, err := s.attendance.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendances")
	}
	for i := range records {
		record := &records[i]
		if record.Status != models.AttendanceStatusCompleted || record.Reason == nil || *record.Reason != models.ReasonCancelled {
			continue
		}
		if err := record.Reset(); err != nil {
			return nil, err
		}
		if err := s.attendance.Update(ctx, record); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attendance")
		}
	}

	if s.summaries != nil {
		s.summaries.Invalidate(ctx, session.PrisonCode, session.SessionDate)
	}
	s.logger.Info("session uncancelled",
		zap.Int64("session_id", sessionID),
		zap.String("actioned_by", actionedBy))
	return session, nil
}

// AttendanceListRequest filters attendance listings.
type AttendanceListRequest struct {
	SessionInstanceID int64
	PrisonCode        string
	PrisonerNumber    string
	SessionDate       *time.Time
	Status            string
	TimeSlot          string
	Page              int
	PageSize          int
	SortBy            string
	SortOrder         string
}

// List returns paginated attendance records.
func (s *AttendanceService) List(ctx context.Context, req AttendanceListRequest) ([]models.AttendanceRecord, *models.Pagination, error) {
	filter := models.AttendanceFilter{
		SessionInstanceID: req.SessionInstanceID,
		PrisonCode:        req.PrisonCode,
		PrisonerNumber:    req.PrisonerNumber,
		SessionDate:       req.SessionDate,
		SortBy:            req.SortBy,
		SortOrder:         req.SortOrder,
	}
	if req.Status != "" {
		status := models.AttendanceStatus(strings.ToUpper(req.Status))
		if !status.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid attendance status")
		}
		filter.Status = &status
	}
	if req.TimeSlot != "" {
		slot, err := models.ParseTimeSlot(req.TimeSlot)
		if err != nil {
			return nil, nil, err
		}
		filter.TimeSlot = &slot
	}
	filter.Page = req.Page
	if filter.Page < 1 {
		filter.Page = 1
	}
	filter.PageSize = req.PageSize
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}

	rows, total, err := s.attendance.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rows, pagination, nil
}
