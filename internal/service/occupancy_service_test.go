package service

import (
	"testing"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/schedule"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeBuildings(t *testing.T) {
	p, g := "Pujades", "Granada"
	c1 := model.Classroom{ID: uuid.New(), Code: "P.1.3", Building: &p, Capacity: 30}
	c2 := model.Classroom{ID: uuid.New(), Code: "P.0.2", Building: &p, Capacity: 20}
	c3 := model.Classroom{ID: uuid.New(), Code: "G.0.1", Building: &g, Capacity: 40}

	// Monday to Friday 09:00-14:00 fills 25 of the 65 weekly cells.
	var mornings []schedule.Booking
	for day := 1; day <= 5; day++ {
		mornings = append(mornings, schedule.Booking{
			ClassroomID: c1.ID,
			Interval:    schedule.Interval{Day: day, Start: schedule.MustClock("09:00"), End: schedule.MustClock("14:00")},
		})
	}

	out := SummarizeBuildings([]model.Classroom{c1, c2, c3}, map[uuid.UUID][]schedule.Booking{c1.ID: mornings})
	require.Len(t, out, 2)
	assert.Equal(t, "Granada", out[0].Building)
	assert.Equal(t, "Pujades", out[1].Building)

	pujades := out[1]
	require.Len(t, pujades.Classrooms, 2)
	assert.Equal(t, "P.1.3", pujades.Classrooms[0].Code)
	assert.Equal(t, 83, pujades.Classrooms[0].MorningPercent)
	assert.Equal(t, 0, pujades.Classrooms[0].AfternoonPercent)
	assert.Equal(t, 38, pujades.Classrooms[0].TotalPercent)
	assert.Equal(t, 19, pujades.AveragePercent)
}
