package partition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklzl/rollsync/internal/types"
)

func TestFloor(t *testing.T) {
	in := time.Date(2023, time.August, 17, 14, 37, 25, 123456789, time.UTC)

	tests := []struct {
		g    types.Granularity
		want time.Time
	}{
		{types.GranMinute, at(2023, 8, 17, 14, 37, 0)},
		{types.GranHour, at(2023, 8, 17, 14, 0, 0)},
		{types.GranDay, day(2023, 8, 17)},
		{types.GranMonth, day(2023, 8, 1)},
		{types.GranQuarter, day(2023, 7, 1)},
		{types.GranYear, day(2023, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.g.Name(), func(t *testing.T) {
			got, err := Floor(in, tt.g)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestFloorQuarterBoundaries(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{day(2023, 1, 15), day(2023, 1, 1)},
		{day(2023, 3, 31), day(2023, 1, 1)},
		{day(2023, 4, 1), day(2023, 4, 1)},
		{day(2023, 6, 30), day(2023, 4, 1)},
		{day(2023, 11, 2), day(2023, 10, 1)},
		{day(2023, 12, 31), day(2023, 10, 1)},
	}
	for _, tt := range tests {
		got, err := Floor(tt.in, types.GranQuarter)
		require.NoError(t, err)
		assert.True(t, got.Equal(tt.want), "floor(%s) = %s, want %s", tt.in, got, tt.want)
	}
}

func TestCeilAlignedReturnsInputUnchanged(t *testing.T) {
	inputs := map[types.Granularity]time.Time{
		types.GranMinute:  at(2023, 1, 1, 5, 30, 0),
		types.GranHour:    at(2023, 1, 1, 5, 0, 0),
		types.GranDay:     day(2023, 1, 2),
		types.GranMonth:   day(2023, 2, 1),
		types.GranQuarter: day(2023, 10, 1),
		types.GranYear:    day(2024, 1, 1),
	}
	for g, in := range inputs {
		got, err := Ceil(in, g)
		require.NoError(t, err)
		assert.True(t, got.Equal(in), "%s: ceil of aligned %s moved to %s", g.Name(), in, got)
	}
}

func TestCeilUnalignedAdvancesOneUnit(t *testing.T) {
	tests := []struct {
		g    types.Granularity
		in   time.Time
		want time.Time
	}{
		{types.GranMinute, at(2023, 1, 1, 5, 30, 10), at(2023, 1, 1, 5, 31, 0)},
		{types.GranHour, at(2023, 1, 1, 5, 10, 0), at(2023, 1, 1, 6, 0, 0)},
		{types.GranDay, at(2023, 1, 1, 0, 0, 1), day(2023, 1, 2)},
		{types.GranMonth, day(2023, 1, 2), day(2023, 2, 1)},
		{types.GranQuarter, day(2023, 5, 15), day(2023, 7, 1)},
		{types.GranYear, day(2023, 6, 1), day(2024, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.g.Name(), func(t *testing.T) {
			got, err := Ceil(tt.in, tt.g)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

// For any unaligned t: floor(t) < t < ceil(t), and ceil(t) is aligned.
func TestCeilAlignmentProperty(t *testing.T) {
	in := at(2023, 3, 14, 15, 9, 26)
	for g := range map[types.Granularity]bool{
		types.GranMinute: true, types.GranHour: true, types.GranDay: true,
		types.GranMonth: true, types.GranQuarter: true, types.GranYear: true,
	} {
		floored, err := Floor(in, g)
		require.NoError(t, err)
		ceiled, err := Ceil(in, g)
		require.NoError(t, err)

		assert.True(t, floored.Before(in), "%s: floor must be below unaligned input", g.Name())
		assert.True(t, in.Before(ceiled), "%s: ceil must be above unaligned input", g.Name())

		refloored, err := Floor(ceiled, g)
		require.NoError(t, err)
		assert.True(t, refloored.Equal(ceiled), "%s: ceil result must be aligned", g.Name())
	}
}

func TestFloorCeilRejectInvalidGranularity(t *testing.T) {
	bad := types.Granularity(99)

	_, err := Floor(time.Now(), bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported granularity")

	_, err = Ceil(time.Now(), bad)
	require.Error(t, err)
}
