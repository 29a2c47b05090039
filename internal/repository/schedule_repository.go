package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/justice-digital/activities-api/internal/models"
)

// ScheduleRepository handles persistence for activities, schedule slots and
// session instances.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs the repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// FindActivity loads one activity.
func (r *ScheduleRepository) FindActivity(ctx context.Context, id int64) (*models.Activity, error) {
	query := `SELECT id, prison_code, summary, category, paid, created_at, updated_at
FROM activities WHERE id = $1 LIMIT 1`
	var activity models.Activity
	if err := r.db.GetContext(ctx, &activity, query, id); err != nil {
		return nil, err
	}
	return &activity, nil
}

// FindSession loads one session instance.
func (r *ScheduleRepository) FindSession(ctx context.Context, id int64) (*models.SessionInstance, error) {
	query := `SELECT id, schedule_id, activity_id, prison_code, session_date, start_time, end_time,
time_slot, cancelled, cancelled_reason, cancelled_by, cancelled_at
FROM session_instances WHERE id = $1 LIMIT 1`
	var session models.SessionInstance
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateSession persists the cancellation state of a session instance.
func (r *ScheduleRepository) UpdateSession(ctx context.Context, session *models.SessionInstance) error {
	query := `UPDATE session_instances SET cancelled = $1, cancelled_reason = $2,
cancelled_by = $3, cancelled_at = $4 WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query,
		session.Cancelled, session.CancelledReason, session.CancelledBy, session.CancelledAt, session.ID)
	if err != nil {
		return fmt.Errorf("update session instance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("update session instance: session %d not found", session.ID)
	}
	return nil
}

// ListCancelledSessions returns cancelled session instances for one prison
// and date, feeding the summary's cancellation counters.
func (r *ScheduleRepository) ListCancelledSessions(ctx context.Context, prisonCode string, date time.Time) ([]models.SessionInstance, error) {
	query := `SELECT id, schedule_id, activity_id, prison_code, session_date, start_time, end_time,
time_slot, cancelled, cancelled_reason, cancelled_by, cancelled_at
FROM session_instances
WHERE prison_code = $1 AND session_date = $2 AND cancelled = TRUE`
	var rows []models.SessionInstance
	if err := r.db.SelectContext(ctx, &rows, query, prisonCode, date); err != nil {
		return nil, fmt.Errorf("list cancelled sessions: %w", err)
	}
	return rows, nil
}

// ListSlotsBySchedule returns the configured slots for a schedule, day sets
// rebuilt from the stored flags.
func (r *ScheduleRepository) ListSlotsBySchedule(ctx context.Context, scheduleID int64) ([]models.ActivityScheduleSlot, error) {
	query := `SELECT id, schedule_id, week_number, time_slot, start_time, end_time,
monday, tuesday, wednesday, thursday, friday, saturday, sunday
FROM activity_schedule_slots
WHERE schedule_id = $1
ORDER BY week_number, time_slot`
	var rows []models.ActivityScheduleSlot
	if err := r.db.SelectContext(ctx, &rows, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list schedule slots: %w", err)
	}
	for i := range rows {
		rows[i].Normalize()
	}
	return rows, nil
}
