package schedule

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := map[string]Clock{
		"09:00":    9 * 60,
		"14:30:00": 14*60 + 30,
		"9h30":     9*60 + 30,
		"9.15":     9*60 + 15,
		"15":       15 * 60,
		"24:00":    24 * 60,
	}
	for in, want := range cases {
		got, err := ParseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "25:00", "10:75", "ab:cd", "24:30"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}

	assert.Equal(t, "09:05", Clock(9*60+5).String())
	assert.Equal(t, "19:30:00", AfternoonEnd.SQL())
}

func TestIntervalOverlap(t *testing.T) {
	a := Interval{Day: 1, Start: MustClock("09:00"), End: MustClock("11:00")}

	assert.True(t, a.Overlaps(Interval{Day: 1, Start: MustClock("10:00"), End: MustClock("12:00")}))
	assert.False(t, a.Overlaps(Interval{Day: 1, Start: MustClock("11:00"), End: MustClock("12:00")}), "touching")
	assert.False(t, a.Overlaps(Interval{Day: 2, Start: MustClock("09:00"), End: MustClock("11:00")}), "other day")
	assert.True(t, a.Contains(Interval{Day: 1, Start: MustClock("09:00"), End: MustClock("10:00")}))
	assert.False(t, a.Contains(Interval{Day: 1, Start: MustClock("10:30"), End: MustClock("11:30")}))
}

func TestParseDay(t *testing.T) {
	for in, want := range map[string]int{"1": 1, "Dimecres": 3, "dv.": 5, "friday": 5} {
		got, err := ParseDay(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseDay("8")
	assert.Error(t, err)
	assert.Equal(t, "Dijous", DayName(4))
}

func TestPeriods(t *testing.T) {
	start, end, err := PeriodBounds(PeriodAfternoon)
	require.NoError(t, err)
	assert.Equal(t, "15:00", start.String())
	assert.Equal(t, "19:30", end.String())

	assert.Equal(t, PeriodMorning, PeriodOf(MustClock("12:00")))
	assert.Equal(t, PeriodAfternoon, PeriodOf(MustClock("15:00")))
}

func TestWeekSet(t *testing.T) {
	full := NewWeekSet(nil, DefaultSemesterWeeks)
	assert.Len(t, full, 15)
	assert.True(t, full.IsFull(15))

	some := NewWeekSet([]int{1, 2, 3, 8, 20}, 15)
	assert.Equal(t, []int{1, 2, 3, 8}, some.Sorted())
	assert.Equal(t, "1-3, 8", some.String())

	other := NewWeekSet([]int{3, 4, 8}, 15)
	assert.Equal(t, []int{3, 8}, some.Intersect(other).Sorted())
	assert.Equal(t, []int{1, 2, 3, 4, 8}, some.Union(other).Sorted())
}

func TestParseWeeks(t *testing.T) {
	weeks, err := ParseWeeks("1-3, 8;10", 15)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 8, 10}, weeks)

	weeks, err = ParseWeeks("", 15)
	require.NoError(t, err)
	assert.Nil(t, weeks)

	weeks, err = ParseWeeks("1 - 3, 5 -6", 15)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 5, 6}, weeks)

	_, err = ParseWeeks("14-16", 15)
	assert.Error(t, err)

	_, err = ParseWeeks("3 -", 15)
	assert.Error(t, err)
}

func TestFindClashes(t *testing.T) {
	slot := Interval{Day: 2, Start: MorningStart, End: MorningEnd}
	edited := uuid.New()

	bookings := []Booking{
		{ID: uuid.New(), SubjectName: "Projectes I", Interval: slot, Weeks: NewWeekSet([]int{1, 2, 3}, 15)},
		{ID: uuid.New(), SubjectName: "Tipografia", Interval: slot, Weeks: NewWeekSet([]int{9, 10}, 15)},
		{ID: edited, SubjectName: "Edited", Interval: slot, Weeks: FullSemester(15)},
		{ID: uuid.New(), SubjectName: "Tarda", Interval: Interval{Day: 2, Start: AfternoonStart, End: AfternoonEnd}, Weeks: FullSemester(15)},
	}

	clashes := FindClashes(slot, NewWeekSet([]int{3, 4}, 15), bookings, edited)
	require.Len(t, clashes, 1)
	assert.Equal(t, "Projectes I", clashes[0].Booking.SubjectName)
	assert.Equal(t, []int{3}, clashes[0].CommonWeeks.Sorted())

	assert.Len(t, FindClashes(slot, FullSemester(15), bookings), 3)
}

func TestTotalMinutes(t *testing.T) {
	id := uuid.New()
	slot := Interval{Day: 1, Start: MustClock("09:00"), End: MustClock("11:00")}
	bookings := []Booking{
		{ID: id, Interval: slot},
		{ID: id, Interval: slot},
		{ID: uuid.New(), Interval: Interval{Day: 3, Start: MustClock("15:00"), End: MustClock("16:30")}},
	}
	assert.Equal(t, 210, TotalMinutes(bookings))
}

func TestComputeOccupancy(t *testing.T) {
	occ := ComputeOccupancy(nil)
	assert.Len(t, occ.Slots, 65)
	assert.Zero(t, occ.TotalPercent)

	// A Monday morning period covers 09-10 .. 13-14 (5 hourly cells); 14-15 is only
	// half covered and stays free.
	occ = ComputeOccupancy([]Booking{{
		ID:       uuid.New(),
		Interval: Interval{Day: 1, Start: MorningStart, End: MorningEnd},
		Weeks:    FullSemester(15),
	}})

	occupied := 0
	for _, s := range occ.Slots {
		if s.IsOccupied {
			occupied++
			assert.Equal(t, 1, s.DayOfWeek)
		}
	}
	assert.Equal(t, 5, occupied)
	// 30 morning cells (08..13 × 5 days), 35 afternoon cells (14..20 × 5 days).
	assert.Equal(t, 17, occ.MorningPercent)
	assert.Equal(t, 0, occ.AfternoonPercent)
	assert.Equal(t, 8, occ.TotalPercent)
}
