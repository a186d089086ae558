// Package calendar lays out month and quarter grids and shades weeks by how
// many holidays they contain.
package calendar

import (
	"fmt"
	"time"

	"github.com/adeilh/vacation/holiday"
)

// View selects the grid layout.
type View string

const (
	ViewMonth   View = "month"
	ViewQuarter View = "quarter"
)

// ParseView maps a query value to a View; empty means month.
func ParseView(s string) (View, error) {
	switch View(s) {
	case "", ViewMonth:
		return ViewMonth, nil
	case ViewQuarter:
		return ViewQuarter, nil
	}
	return "", fmt.Errorf("calendar: unknown view %q", s)
}

// Step is the number of months one navigation click moves for the view.
func (v View) Step() int {
	if v == ViewQuarter {
		return 3
	}
	return 1
}

// Shade is the background class of a day cell.
type Shade string

const (
	ShadeNone    Shade = "none"
	ShadeWeekend Shade = "weekend"
	ShadeLight   Shade = "light"
	ShadeDark    Shade = "dark"
	ShadeOutside Shade = "outside"
)

var shadeColors = map[Shade]string{
	ShadeNone:    "#fff",
	ShadeWeekend: "#f9f9f9",
	ShadeLight:   "#f0f0f0",
	ShadeDark:    "#c2c2c2",
	ShadeOutside: "#fafafa",
}

// Color is the CSS background of the shade.
func (s Shade) Color() string { return shadeColors[s] }

// WeekdayLabels are the column headers, Sunday first.
var WeekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

const minWeeks = 6

// Day is one cell of a month grid.
type Day struct {
	Date    time.Time
	InMonth bool
	Weekend bool
	Holiday *holiday.Holiday
	Shade   Shade
}

// ISO returns the date as YYYY-MM-DD.
func (d Day) ISO() string { return d.Date.Format(holiday.DateLayout) }

// Week is a Sunday-first row of seven days.
type Week struct {
	Days     [7]Day
	Holidays int
}

// MonthGrid is the layout of a single month.
type MonthGrid struct {
	Year  int
	Month time.Month
	Weeks []Week
}

// Title formats like "January 2006".
func (m MonthGrid) Title() string { return fmt.Sprintf("%s %d", m.Month, m.Year) }

// Start is the first day of the month.
func (m MonthGrid) Start() time.Time { return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC) }

// Index maps YYYY-MM-DD to holidays; later duplicates replace earlier ones.
type Index map[string]holiday.Holiday

// NewIndex builds an Index from a holiday list.
func NewIndex(hs []holiday.Holiday) Index {
	idx := make(Index, len(hs))
	for _, h := range hs {
		idx[h.Date] = h
	}
	return idx
}

func (idx Index) lookup(t time.Time) (holiday.Holiday, bool) {
	h, ok := idx[t.Format(holiday.DateLayout)]
	return h, ok
}

// Month lays out the month containing date.
func Month(date time.Time, hs []holiday.Holiday) MonthGrid {
	return buildMonth(date.Year(), date.Month(), NewIndex(hs))
}

func buildMonth(year int, month time.Month, idx Index) MonthGrid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	day := first.AddDate(0, 0, -int(first.Weekday()))

	grid := MonthGrid{Year: year, Month: month}
	for !day.After(last) || len(grid.Weeks) < minWeeks {
		var w Week
		for i := range w.Days {
			d := Day{
				Date:    day,
				InMonth: day.Month() == month && day.Year() == year,
				Weekend: day.Weekday() == time.Saturday || day.Weekday() == time.Sunday,
			}
			if h, ok := idx.lookup(day); ok {
				hc := h
				d.Holiday = &hc
				w.Holidays++
			}
			w.Days[i] = d
			day = day.AddDate(0, 0, 1)
		}
		for i := range w.Days {
			w.Days[i].Shade = shade(w.Days[i], w.Holidays)
		}
		grid.Weeks = append(grid.Weeks, w)
	}
	return grid
}

func shade(d Day, weekHolidays int) Shade {
	if !d.InMonth {
		return ShadeOutside
	}
	switch {
	case weekHolidays > 1:
		return ShadeDark
	case weekHolidays == 1:
		return ShadeLight
	case d.Weekend:
		return ShadeWeekend
	}
	return ShadeNone
}

// QuarterGrid is three consecutive month grids.
type QuarterGrid struct {
	Year    int
	Quarter int
	Months  [3]MonthGrid
}

// Title formats like "Q1 2006".
func (q QuarterGrid) Title() string { return fmt.Sprintf("Q%d %d", q.Quarter, q.Year) }

// QuarterOf returns the 1-based quarter of t.
func QuarterOf(t time.Time) int { return (int(t.Month())-1)/3 + 1 }

// Quarter lays out the quarter containing date.
func Quarter(date time.Time, hs []holiday.Holiday) QuarterGrid {
	idx := NewIndex(hs)
	q := QuarterGrid{Year: date.Year(), Quarter: QuarterOf(date)}
	first := time.Month((q.Quarter-1)*3 + 1)
	for i := range q.Months {
		q.Months[i] = buildMonth(q.Year, first+time.Month(i), idx)
	}
	return q
}

// AddMonths moves date by n months, clamping the day to the target month's
// last day instead of overflowing into the next month.
func AddMonths(date time.Time, n int) time.Time {
	y, m, d := date.Date()
	target := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, date.Location())
	lastDay := target.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	hh, mm, ss := date.Clock()
	return time.Date(target.Year(), target.Month(), d, hh, mm, ss, date.Nanosecond(), date.Location())
}
