package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/justice-digital/activities-api/internal/models"
)

// AllocationRepository handles persistence for allocations and their weekly
// exclusion patterns.
type AllocationRepository struct {
	db *sqlx.DB
}

// NewAllocationRepository constructs the repository.
func NewAllocationRepository(db *sqlx.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// FindAllocation loads one allocation.
func (r *AllocationRepository) FindAllocation(ctx context.Context, id int64) (*models.Allocation, error) {
	query := `SELECT id, schedule_id, activity_id, prisoner_number, prison_code,
start_date, end_date, suspended, created_at, updated_at
FROM allocations WHERE id = $1 LIMIT 1`
	var allocation models.Allocation
	if err := r.db.GetContext(ctx, &allocation, query, id); err != nil {
		return nil, err
	}
	return &allocation, nil
}

// ListExclusions returns the stored exclusion pattern for an allocation.
// Day sets are rebuilt from the stored flags so the two representations
// always agree.
func (r *AllocationRepository) ListExclusions(ctx context.Context, allocationID int64) ([]models.WeeklyExclusionSlot, error) {
	query := `SELECT allocation_id, week_number, time_slot,
monday, tuesday, wednesday, thursday, friday, saturday, sunday
FROM allocation_exclusions
WHERE allocation_id = $1
ORDER BY week_number, time_slot`
	var rows []models.WeeklyExclusionSlot
	if err := r.db.SelectContext(ctx, &rows, query, allocationID); err != nil {
		return nil, fmt.Errorf("list allocation exclusions: %w", err)
	}
	for i := range rows {
		rows[i].Normalize()
	}
	return rows, nil
}

// ReplaceExclusions swaps the stored pattern for the provided slots in one
// transaction.
func (r *AllocationRepository) ReplaceExclusions(ctx context.Context, allocationID int64, slots []models.WeeklyExclusionSlot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace exclusions: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM allocation_exclusions WHERE allocation_id = $1`, allocationID); err != nil {
		return fmt.Errorf("clear allocation exclusions: %w", err)
	}

	insert := `INSERT INTO allocation_exclusions (allocation_id, week_number, time_slot,
monday, tuesday, wednesday, thursday, friday, saturday, sunday)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for i := range slots {
		s := &slots[i]
		if _, err := tx.ExecContext(ctx, insert, allocationID, s.WeekNumber, s.TimeSlot,
			s.Monday, s.Tuesday, s.Wednesday, s.Thursday, s.Friday, s.Saturday, s.Sunday); err != nil {
			return fmt.Errorf("insert allocation exclusion: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace exclusions: %w", err)
	}
	commit = true
	return nil
}
