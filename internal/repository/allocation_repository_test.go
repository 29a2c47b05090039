package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justice-digital/activities-api/internal/models"
)

func TestListExclusionsNormalizesDaySets(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAllocationRepository(db)

	rows := sqlmock.NewRows([]string{
		"allocation_id", "week_number", "time_slot",
		"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	}).
		AddRow(int64(5), 1, string(models.TimeSlotAM), true, false, true, false, false, false, false).
		AddRow(int64(5), 2, string(models.TimeSlotED), false, false, false, false, true, false, false)
	mock.ExpectQuery(`SELECT .+ FROM allocation_exclusions WHERE allocation_id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(rows)

	slots, err := repo.ListExclusions(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, []models.DayOfWeek{models.Monday, models.Wednesday}, slots[0].DaysOfWeek)
	assert.Equal(t, []models.DayOfWeek{models.Friday}, slots[1].DaysOfWeek)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceExclusionsRunsInTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAllocationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM allocation_exclusions WHERE allocation_id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO allocation_exclusions`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	slot := models.WeeklyExclusionSlot{WeekNumber: 1, TimeSlot: models.TimeSlotPM, Tuesday: true}
	slot.Normalize()
	err := repo.ReplaceExclusions(context.Background(), 5, []models.WeeklyExclusionSlot{slot})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceExclusionsRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAllocationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM allocation_exclusions WHERE allocation_id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO allocation_exclusions`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	slot := models.WeeklyExclusionSlot{WeekNumber: 1, TimeSlot: models.TimeSlotAM, Monday: true}
	err := repo.ReplaceExclusions(context.Background(), 5, []models.WeeklyExclusionSlot{slot})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
