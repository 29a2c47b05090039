package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/justice-digital/activities-api/pkg/errors"
)

func TestTimeSlotAtBoundaries(t *testing.T) {
	cases := []struct {
		clock string
		want  TimeSlot
	}{
		{"00:00", TimeSlotAM},
		{"08:30", TimeSlotAM},
		{"11:59", TimeSlotAM},
		{"12:00", TimeSlotPM},
		{"13:45", TimeSlotPM},
		{"16:59", TimeSlotPM},
		{"17:00", TimeSlotED},
		{"19:30", TimeSlotED},
		{"23:59", TimeSlotED},
	}
	for _, tc := range cases {
		t.Run(tc.clock, func(t *testing.T) {
			got, err := TimeSlotAt(tc.clock)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTimeSlotAtRejectsMalformedInput(t *testing.T) {
	for _, clock := range []string{"", "7:00", "12", "12:0", "24:00", "12:60", "ab:cd", "12-30", "12:30:00"} {
		t.Run(clock, func(t *testing.T) {
			_, err := TimeSlotAt(clock)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrParse.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestSetEveningStartMovesBoundary(t *testing.T) {
	t.Cleanup(func() {
		require.NoError(t, SetEveningStart("17:00"))
	})

	require.NoError(t, SetEveningStart("18:00"))
	got, err := TimeSlotAt("17:30")
	require.NoError(t, err)
	assert.Equal(t, TimeSlotPM, got)
	got, err = TimeSlotAt("18:00")
	require.NoError(t, err)
	assert.Equal(t, TimeSlotED, got)
}

func TestTimeSlotAtSafeDuringBoundaryOverride(t *testing.T) {
	t.Cleanup(func() {
		require.NoError(t, SetEveningStart("17:00"))
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				slot, err := TimeSlotAt("18:30")
				assert.NoError(t, err)
				// 18:30 is ED for any valid boundary in play here
				assert.Equal(t, TimeSlotED, slot)
			}
		}()
	}
	require.NoError(t, SetEveningStart("18:00"))
	wg.Wait()
}

func TestSetEveningStartMustBeAfterNoon(t *testing.T) {
	err := SetEveningStart("11:00")
	require.Error(t, err)
	err = SetEveningStart("12:00")
	require.Error(t, err)
}

func TestParseTimeSlot(t *testing.T) {
	slot, err := ParseTimeSlot(" pm ")
	require.NoError(t, err)
	assert.Equal(t, TimeSlotPM, slot)

	_, err = ParseTimeSlot("EVENING")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrParse.Code, appErrors.FromError(err).Code)
}

func TestTimeSlotOrdering(t *testing.T) {
	assert.True(t, TimeSlotAM.Before(TimeSlotPM))
	assert.True(t, TimeSlotPM.Before(TimeSlotED))
	assert.False(t, TimeSlotED.Before(TimeSlotAM))
}

func TestDayOfWeekOrdering(t *testing.T) {
	assert.True(t, Monday.Before(Sunday))
	assert.True(t, Saturday.Before(Sunday))
	assert.False(t, Sunday.Before(Monday))
	assert.False(t, DayOfWeek("FUNDAY").Valid())
}
