package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/adeilh/vacation/holiday"
)

// Page is a rendered calendar view ready for JSON or text output.
type Page struct {
	View   View        `json:"view"`
	Title  string      `json:"title"`
	Date   string      `json:"date"`
	Prev   string      `json:"prev"`
	Next   string      `json:"next"`
	Months []MonthPage `json:"months"`
}

type MonthPage struct {
	Title string     `json:"title"`
	Weeks []WeekPage `json:"weeks"`
}

type WeekPage struct {
	Holidays int       `json:"holidays"`
	Days     []DayPage `json:"days"`
}

type DayPage struct {
	Date    string `json:"date"`
	Day     int    `json:"day"`
	InMonth bool   `json:"inMonth"`
	Weekend bool   `json:"weekend"`
	Shade   Shade  `json:"shade"`
	Color   string `json:"color"`
	Holiday string `json:"holiday,omitempty"`
}

// NewPage builds the page for view around date.
func NewPage(view View, date time.Time, hs []holiday.Holiday) Page {
	p := Page{
		View: view,
		Date: date.Format(holiday.DateLayout),
		Prev: AddMonths(date, -view.Step()).Format(holiday.DateLayout),
		Next: AddMonths(date, view.Step()).Format(holiday.DateLayout),
	}
	if view == ViewQuarter {
		q := Quarter(date, hs)
		p.Title = q.Title()
		for _, m := range q.Months {
			mp := monthPage(m)
			mp.Title = m.Month.String()
			p.Months = append(p.Months, mp)
		}
		return p
	}
	m := Month(date, hs)
	p.Title = m.Title()
	p.Months = []MonthPage{monthPage(m)}
	return p
}

func monthPage(m MonthGrid) MonthPage {
	mp := MonthPage{Title: m.Title(), Weeks: make([]WeekPage, 0, len(m.Weeks))}
	for _, w := range m.Weeks {
		wp := WeekPage{Holidays: w.Holidays, Days: make([]DayPage, 0, len(w.Days))}
		for _, d := range w.Days {
			dp := DayPage{
				Date:    d.ISO(),
				Day:     d.Date.Day(),
				InMonth: d.InMonth,
				Weekend: d.Weekend,
				Shade:   d.Shade,
				Color:   d.Shade.Color(),
			}
			if d.Holiday != nil {
				dp.Holiday = d.Holiday.Name
			}
			wp.Days = append(wp.Days, dp)
		}
		mp.Weeks = append(mp.Weeks, wp)
	}
	return mp
}

var shadeMarks = map[Shade]string{
	ShadeNone:    " ",
	ShadeWeekend: ".",
	ShadeLight:   "+",
	ShadeDark:    "#",
	ShadeOutside: " ",
}

// Render writes a plain-text calendar. Holidays are starred, the mark after
// each day shows the week shade, and holiday names are listed per month.
func Render(w io.Writer, p Page) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.Title)
	for _, m := range p.Months {
		if len(p.Months) > 1 {
			fmt.Fprintf(&b, "\n%s\n", m.Title)
		}
		for _, label := range WeekdayLabels {
			fmt.Fprintf(&b, " %-4s", label)
		}
		b.WriteByte('\n')
		var names []string
		for _, wk := range m.Weeks {
			for _, d := range wk.Days {
				if !d.InMonth {
					b.WriteString("     ")
					continue
				}
				star := " "
				if d.Holiday != "" {
					star = "*"
					names = append(names, fmt.Sprintf("  %s  %s", d.Date, d.Holiday))
				}
				fmt.Fprintf(&b, " %2d%s%s", d.Day, star, shadeMarks[d.Shade])
			}
			b.WriteByte('\n')
		}
		for _, n := range names {
			b.WriteString(n)
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
