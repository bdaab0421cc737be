package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy/internal/apperr"
)

func TestBuildMonth_CellCounts(t *testing.T) {
	for year := 1999; year <= 2030; year++ {
		for m := time.January; m <= time.December; m++ {
			g, err := BuildMonth(YearMonth{Year: year, Month: m})
			require.NoError(t, err)

			var blanks, days int
			for c := range g.Cells() {
				if c.Blank() {
					assert.Zero(t, days, "blank after a day cell in %d-%02d", year, m)
					blanks++
					continue
				}
				days++
				assert.Equal(t, days, c.Day)
			}
			assert.Equal(t, DaysIn(year, m), days)
			assert.Equal(t, g.Offset, blanks)
			assert.GreaterOrEqual(t, g.Offset, 0)
			assert.LessOrEqual(t, g.Offset, 6)
		}
	}
}

func TestBuildMonth_Known(t *testing.T) {
	tests := []struct {
		name   string
		ym     YearMonth
		offset int
		days   int
	}{
		{name: "leap february", ym: YearMonth{2024, time.February}, offset: 4, days: 29},
		{name: "common february", ym: YearMonth{2023, time.February}, offset: 3, days: 28},
		{name: "century not leap", ym: YearMonth{1900, time.February}, offset: 4, days: 28},
		{name: "400 year leap", ym: YearMonth{2000, time.February}, offset: 2, days: 29},
		{name: "march 2025 starts saturday", ym: YearMonth{2025, time.March}, offset: 6, days: 31},
		{name: "june 2025 starts sunday", ym: YearMonth{2025, time.June}, offset: 0, days: 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := BuildMonth(tt.ym)
			require.NoError(t, err)
			assert.Equal(t, tt.offset, g.Offset)
			assert.Equal(t, tt.days, g.Days)
		})
	}
}

func TestBuildMonth_Invalid(t *testing.T) {
	for _, ym := range []YearMonth{{2025, 0}, {2025, 13}, {0, time.March}} {
		_, err := BuildMonth(ym)
		assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	}
}

func TestCells_Restartable(t *testing.T) {
	g, err := BuildMonth(YearMonth{2025, time.March})
	require.NoError(t, err)

	collect := func() []Cell {
		var out []Cell
		for c := range g.Cells() {
			out = append(out, c)
		}
		return out
	}
	first := collect()
	assert.Equal(t, first, collect())
	assert.Len(t, first, 37)
	assert.Equal(t, "2025-03-01", first[6].Date)
	assert.Equal(t, "2025-03-31", first[36].Date)

	// early exit must not panic
	for range g.Cells() {
		break
	}
}

func TestDatesAndContains(t *testing.T) {
	g, err := BuildMonth(YearMonth{2024, time.February})
	require.NoError(t, err)

	var dates []string
	for d := range g.Dates() {
		dates = append(dates, d)
	}
	require.Len(t, dates, 29)
	assert.Equal(t, "2024-02-29", dates[28])

	assert.True(t, g.Contains("2024-02-29"))
	assert.False(t, g.Contains("2024-03-01"))
	assert.False(t, g.Contains("2023-02-10"))
	assert.False(t, g.Contains("garbage"))
}

func TestWeeks(t *testing.T) {
	g, err := BuildMonth(YearMonth{2025, time.March})
	require.NoError(t, err)

	weeks := g.Weeks()
	require.Len(t, weeks, 6)
	for _, w := range weeks {
		assert.Len(t, w, 7)
	}
	assert.Equal(t, 1, weeks[0][6].Day)
	assert.Equal(t, 31, weeks[5][1].Day)
	assert.True(t, weeks[5][2].Blank())
}

func TestMonthTokens(t *testing.T) {
	ym, err := ParseMonthToken("March 2025")
	require.NoError(t, err)
	assert.Equal(t, YearMonth{2025, time.March}, ym)
	assert.Equal(t, "March 2025", ym.Token())
	assert.Equal(t, "2025-03", ym.String())

	ym, err = ParseYearMonth("2024-12")
	require.NoError(t, err)
	assert.Equal(t, YearMonth{2025, time.January}, ym.Next())
	assert.Equal(t, YearMonth{2024, time.November}, ym.Prev())
	assert.Equal(t, YearMonth{2024, time.December}, YearMonth{2025, time.January}.Prev())

	_, err = ParseYearMonth("2024-13")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = ParseMonthToken("Marchember 2025")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestIsLeap(t *testing.T) {
	assert.True(t, IsLeap(2024))
	assert.False(t, IsLeap(2023))
	assert.False(t, IsLeap(2100))
	assert.True(t, IsLeap(2400))
}
