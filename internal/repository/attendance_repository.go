package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/justice-digital/activities-api/internal/models"
)

const attendanceColumns = `a.id, a.session_instance_id, a.prisoner_number, a.status, a.reason,
a.issue_payment, a.time_slot, a.session_date, a.attendance_required,
a.incentive_level_warning_issued, a.case_note_text, a.other_absence_reason,
a.attendee_count, a.recorded_by, a.recorded_at, a.created_at, a.updated_at`

// AttendanceRepository handles persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// List returns attendance rows matching the provided filter.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	base := `FROM attendances a
JOIN session_instances si ON si.id = a.session_instance_id`
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.SessionInstanceID != 0 {
		where = append(where, fmt.Sprintf("a.session_instance_id = $%d", len(args)+1))
		args = append(args, filter.SessionInstanceID)
	}
	if filter.PrisonCode != "" {
		where = append(where, fmt.Sprintf("si.prison_code = $%d", len(args)+1))
		args = append(args, filter.PrisonCode)
	}
	if filter.PrisonerNumber != "" {
		where = append(where, fmt.Sprintf("a.prisoner_number = $%d", len(args)+1))
		args = append(args, filter.PrisonerNumber)
	}
	if filter.SessionDate != nil {
		where = append(where, fmt.Sprintf("a.session_date = $%d", len(args)+1))
		args = append(args, *filter.SessionDate)
	}
	if filter.Status != nil && filter.Status.Valid() {
		where = append(where, fmt.Sprintf("a.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.TimeSlot != nil && filter.TimeSlot.Valid() {
		where = append(where, fmt.Sprintf("a.time_slot = $%d", len(args)+1))
		args = append(args, *filter.TimeSlot)
	}
	whereClause := strings.Join(where, " AND ")
	allowedSort := map[string]string{
		"session_date": "a.session_date",
		"status":       "a.status",
		"created_at":   "a.created_at",
	}
	sortColumn, ok := allowedSort[filter.SortBy]
	if !ok {
		sortColumn = "a.session_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		attendanceColumns, base, whereClause, sortColumn, order, size, offset)

	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendances: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendances: %w", err)
	}
	return rows, total, nil
}

// FindByID loads one attendance record.
func (r *AttendanceRepository) FindByID(ctx context.Context, id int64) (*models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendances a WHERE a.id = $1 LIMIT 1`, attendanceColumns)
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListBySession returns every attendance hanging off a session instance.
func (r *AttendanceRepository) ListBySession(ctx context.Context, sessionInstanceID int64) ([]models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendances a WHERE a.session_instance_id = $1 ORDER BY a.prisoner_number`, attendanceColumns)
	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, sessionInstanceID); err != nil {
		return nil, fmt.Errorf("list session attendances: %w", err)
	}
	return rows, nil
}

// ListForDate returns all attendance rows for one prison and date, the input
// to the daily summary aggregation.
func (r *AttendanceRepository) ListForDate(ctx context.Context, prisonCode string, date time.Time) ([]models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendances a
JOIN session_instances si ON si.id = a.session_instance_id
WHERE si.prison_code = $1 AND a.session_date = $2 AND a.attendance_required = TRUE`, attendanceColumns)
	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, prisonCode, date); err != nil {
		return nil, fmt.Errorf("list attendances for date: %w", err)
	}
	return rows, nil
}

// Update persists the mutable fields of an attendance record.
func (r *AttendanceRepository) Update(ctx context.Context, record *models.AttendanceRecord) error {
	record.UpdatedAt = time.Now().UTC()
	query := `UPDATE attendances SET status = $1, reason = $2, issue_payment = $3,
incentive_level_warning_issued = $4, case_note_text = $5, other_absence_reason = $6,
recorded_by = $7, recorded_at = $8, updated_at = $9
WHERE id = $10`
	result, err := r.db.ExecContext(ctx, query,
		record.Status, record.Reason, record.IssuePayment,
		record.IncentiveLevelWarningIssued, record.CaseNoteText, record.OtherAbsenceReason,
		record.RecordedBy, record.RecordedAt, record.UpdatedAt, record.ID)
	if err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("update attendance: record %d not found", record.ID)
	}
	return nil
}
