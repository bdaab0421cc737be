package calendar

import (
	"fmt"
	"iter"
	"time"

	"academy/internal/apperr"
)

// Cell is one slot of the month grid. Leading cells are blank (Day 0, empty Date).
type Cell struct {
	Day  int    `json:"day"`
	Date string `json:"date,omitempty"`
}

// Blank reports whether the cell is a leading filler.
func (c Cell) Blank() bool { return c.Day == 0 }

// Grid is the layout of one month: Offset blank cells, then Days day cells.
type Grid struct {
	Month  YearMonth
	Offset int // weekday of day 1, Sunday = 0
	Days   int
}

// BuildMonth lays out ym.
func BuildMonth(ym YearMonth) (Grid, error) {
	if !ym.Valid() {
		return Grid{}, apperr.Invalid("month %d/%d is not a valid calendar month", int(ym.Month), ym.Year)
	}
	first := time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
	return Grid{
		Month:  ym,
		Offset: int(first.Weekday()),
		Days:   DaysIn(ym.Year, ym.Month),
	}, nil
}

// Date returns the token of the given day of the month.
func (g Grid) Date(day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", g.Month.Year, int(g.Month.Month), day)
}

// Cells yields the blank leading cells followed by one cell per day.
// The sequence can be ranged over any number of times.
func (g Grid) Cells() iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for i := 0; i < g.Offset; i++ {
			if !yield(Cell{}) {
				return
			}
		}
		for d := 1; d <= g.Days; d++ {
			if !yield(Cell{Day: d, Date: g.Date(d)}) {
				return
			}
		}
	}
}

// Dates yields the day tokens in order.
func (g Grid) Dates() iter.Seq[string] {
	return func(yield func(string) bool) {
		for d := 1; d <= g.Days; d++ {
			if !yield(g.Date(d)) {
				return
			}
		}
	}
}

// Contains reports whether date falls inside the grid's month.
func (g Grid) Contains(date string) bool {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return false
	}
	return t.Year() == g.Month.Year && t.Month() == g.Month.Month
}

// Weeks groups the cells into rows of seven, padding the last row with blanks.
func (g Grid) Weeks() [][]Cell {
	var (
		weeks [][]Cell
		row   []Cell
	)
	for c := range g.Cells() {
		row = append(row, c)
		if len(row) == 7 {
			weeks = append(weeks, row)
			row = nil
		}
	}
	if len(row) > 0 {
		for len(row) < 7 {
			row = append(row, Cell{})
		}
		weeks = append(weeks, row)
	}
	return weeks
}
