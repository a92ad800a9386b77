package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// DATE NORMALIZER TESTS
// =============================================================================

func TestNormalize_AcceptedShapes(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"canonical", "2024-03-01", "2024-03-01"},
		{"iso utc", "2024-03-01T10:00:00Z", "2024-03-01"},
		{"iso offset keeps written date", "2024-03-01T23:30:00-08:00", "2024-03-01"},
		{"iso lowercase t", "2024-03-01t08:00:00", "2024-03-01"},
		{"space separated", "2024-03-01 10:00:00", "2024-03-01"},
		{"day/month/year padded", "01/03/2024", "2024-03-01"},
		{"day/month/year unpadded", "1/3/2024", "2024-03-01"},
		{"surrounding whitespace", "  2024-12-25 ", "2024-12-25"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := generic.Normalize(tc.in)
			require.Equal(t, generic.KindParsed, n.Kind)
			assert.Equal(t, tc.want, n.Canonical())
			assert.NoError(t, n.Err())
		})
	}
}

func TestNormalize_Empty(t *testing.T) {
	for _, in := range []string{"", "   "} {
		n := generic.Normalize(in)
		assert.Equal(t, generic.KindEmpty, n.Kind)
		assert.Equal(t, "", n.Canonical())

		_, ok := generic.NormalizeString(in)
		assert.False(t, ok)
		assert.ErrorIs(t, n.Err(), generic.ErrInvalidDate)
	}
}

func TestNormalize_UnrecognizedPassesThrough(t *testing.T) {
	// GIVEN: Values that are neither ISO nor day/month/year
	// THEN: Permissive form returns them unchanged, strict form fails

	for _, in := range []string{"next tuesday", "2024/03/01", "31/02/2024", "2024-13-01", "20240301"} {
		got, ok := generic.NormalizeString(in)
		assert.True(t, ok, in)
		assert.Equal(t, in, got)

		n := generic.Normalize(in)
		assert.Equal(t, generic.KindUnrecognized, n.Kind, in)

		var dateErr *generic.InvalidDateError
		require.ErrorAs(t, n.Err(), &dateErr)
		assert.Equal(t, in, dateErr.Input)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, in := range []string{"2024-03-01T10:00:00Z", "9/11/2023", "2020-02-29"} {
		once, _ := generic.NormalizeString(in)
		twice, _ := generic.NormalizeString(once)
		assert.Equal(t, once, twice)
	}
}

func TestNormalizeAll_FailsOnFirstBadValue(t *testing.T) {
	dates, err := generic.NormalizeAll([]string{"2024-03-01", "03/03/2024"})
	require.NoError(t, err)
	assert.Equal(t, []generic.Date{
		generic.NewDate(2024, time.March, 1),
		generic.NewDate(2024, time.March, 3),
	}, dates)

	_, err = generic.NormalizeAll([]string{"2024-03-01", "soon"})
	assert.ErrorIs(t, err, generic.ErrInvalidDate)
}

// =============================================================================
// DATE / MONTH-DAY TESTS
// =============================================================================

func TestDate_ArithmeticAcrossDST(t *testing.T) {
	// 2024-03-10 is a DST transition in the US; calendar math must not care.
	d := generic.NewDate(2024, time.March, 9)
	assert.Equal(t, generic.NewDate(2024, time.March, 10), d.AddDays(1))
	assert.Equal(t, generic.NewDate(2024, time.March, 11), d.AddDays(2))
	assert.Equal(t, 2, d.DaysUntil(d.AddDays(2)))
	assert.Equal(t, -2, d.AddDays(2).DaysUntil(d))
}

func TestDate_TextRoundTripAcceptsLooseInput(t *testing.T) {
	var d generic.Date
	require.NoError(t, d.UnmarshalText([]byte("25/12/2024")))
	assert.Equal(t, "2024-12-25", d.String())

	err := d.UnmarshalText([]byte("xmas"))
	assert.ErrorIs(t, err, generic.ErrInvalidDate)
}

func TestMonthDay_Parse(t *testing.T) {
	cases := map[string]generic.MonthDay{
		"12-25":      {Month: time.December, Day: 25},
		"--02-29":    {Month: time.February, Day: 29},
		"1990-07-04": {Month: time.July, Day: 4},
	}
	for in, want := range cases {
		got, err := generic.ParseMonthDay(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := generic.ParseMonthDay("13-01")
	assert.ErrorIs(t, err, generic.ErrInvalidDate)
}

func TestMonthDay_LeapDayFallsBackToFeb28(t *testing.T) {
	leap := generic.MonthDay{Month: time.February, Day: 29}

	d, ok := leap.In(2024)
	assert.True(t, ok)
	assert.Equal(t, generic.NewDate(2024, time.February, 29), d)

	d, ok = leap.In(2025)
	assert.False(t, ok)
	assert.Equal(t, generic.NewDate(2025, time.February, 28), d)
}

func TestYearMonth_Bounds(t *testing.T) {
	ym, err := generic.ParseYearMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, generic.NewDate(2024, time.February, 1), ym.First())
	assert.Equal(t, generic.NewDate(2024, time.February, 29), ym.Last())
	assert.Equal(t, 29, ym.Period().Len())
}
