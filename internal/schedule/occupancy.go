package schedule

import "math"

// Occupancy grid bounds: hourly slots Monday to Friday, 08:00 to 21:00.
const (
	GridFirstDay  = 1
	GridLastDay   = 5
	GridFirstHour = 8
	GridLastHour  = 20 // last slot starts at 20:00
	MorningCutoff = 14 // slots starting before 14:00 count as morning
)

// HourSlot is one cell of the occupancy grid.
type HourSlot struct {
	DayOfWeek  int      `json:"day_of_week"`
	StartTime  string   `json:"start_time"`
	EndTime    string   `json:"end_time"`
	IsOccupied bool     `json:"is_occupied"`
	Booking    *Booking `json:"assignment,omitempty"`
}

// Occupancy summarizes how much of the teaching grid a classroom uses.
type Occupancy struct {
	MorningPercent   int        `json:"morning_occupancy"`
	AfternoonPercent int        `json:"afternoon_occupancy"`
	TotalPercent     int        `json:"total_occupancy"`
	Slots            []HourSlot `json:"time_slots"`
}

// HourlyGrid lists every hourly interval of the occupancy grid.
func HourlyGrid() []Interval {
	grid := make([]Interval, 0, (GridLastDay-GridFirstDay+1)*(GridLastHour-GridFirstHour+1))
	for day := GridFirstDay; day <= GridLastDay; day++ {
		for h := GridFirstHour; h <= GridLastHour; h++ {
			grid = append(grid, Interval{Day: day, Start: Clock(h * 60), End: Clock((h + 1) * 60)})
		}
	}
	return grid
}

// ComputeOccupancy marks a grid slot as occupied when it lies entirely inside one of
// the bookings, then derives rounded morning, afternoon and total percentages.
func ComputeOccupancy(bookings []Booking) Occupancy {
	grid := HourlyGrid()
	occ := Occupancy{Slots: make([]HourSlot, 0, len(grid))}

	var morning, morningUsed, afternoon, afternoonUsed int
	for _, cell := range grid {
		slot := HourSlot{
			DayOfWeek: cell.Day,
			StartTime: cell.Start.String(),
			EndTime:   cell.End.String(),
		}
		for i := range bookings {
			if bookings[i].Interval.Contains(cell) {
				b := bookings[i]
				slot.IsOccupied = true
				slot.Booking = &b
				break
			}
		}

		if cell.Start.Hour() < MorningCutoff {
			morning++
			if slot.IsOccupied {
				morningUsed++
			}
		} else {
			afternoon++
			if slot.IsOccupied {
				afternoonUsed++
			}
		}
		occ.Slots = append(occ.Slots, slot)
	}

	occ.MorningPercent = percent(morningUsed, morning)
	occ.AfternoonPercent = percent(afternoonUsed, afternoon)
	occ.TotalPercent = percent(morningUsed+afternoonUsed, morning+afternoon)
	return occ
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
