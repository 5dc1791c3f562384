package world

import (
	"fmt"

	"github.com/kurohane/tenka/game/params"
)

// GameDate is the simulation calendar. One tick of the simulation advances
// one day.
type GameDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Advance moves one day forward and reports month and year rollovers.
func (d *GameDate) Advance() (newMonth, newYear bool) {
	d.Day++
	if d.Day > params.DaysPerMonth {
		d.Day = 1
		d.Month++
		newMonth = true
		if d.Month > params.MonthsPerYear {
			d.Month = 1
			d.Year++
			newYear = true
		}
	}
	return newMonth, newYear
}

// Quarter returns the 1-based quarter of the year.
func (d GameDate) Quarter() int {
	return (d.Month-1)/params.ObjectiveQuarterMonths + 1
}

// IsQuarterStart reports the first day of a quarter.
func (d GameDate) IsQuarterStart() bool {
	return d.Day == 1 && (d.Month-1)%params.ObjectiveQuarterMonths == 0
}

func (d GameDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}
