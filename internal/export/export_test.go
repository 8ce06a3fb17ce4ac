package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func ptr[T any](v T) *T { return &v }

func view(subject, group string, day int, start, end string, rooms ...string) model.AssignmentView {
	return model.AssignmentView{
		SubjectName:    subject,
		GroupCode:      group,
		DayOfWeek:      ptr(day),
		StartTime:      ptr(start),
		EndTime:        ptr(end),
		ClassroomCodes: rooms,
	}
}

func sampleViews() []model.AssignmentView {
	tipo := view("Tipografia", "GR1-M1", 1, "09:00", "11:00", "P.1.3")
	tipo.TeacherName = ptr("Anna Puig")
	return []model.AssignmentView{
		view("Dibuix", "GR1-M1", 3, "11:30", "14:30", "G.0.2"),
		tipo,
		view("Color", "GR1-M1", 1, "09:00", "11:00"),
		{SubjectName: "Sense horari", GroupCode: "GR1-M1"},
	}
}

func TestBuildTimetable(t *testing.T) {
	tt := BuildTimetable("GR1-M1", "Semestre 1", sampleViews())

	assert.Equal(t, []int{1, 2, 3, 4, 5}, tt.Days)
	require.Len(t, tt.Rows, 2)
	assert.Equal(t, "09:00-11:00", tt.Rows[0].Label())
	assert.Equal(t, "11:30-14:30", tt.Rows[1].Label())

	monday := tt.Rows[0].Cells[1]
	require.Len(t, monday, 2)
	assert.Equal(t, "Color", monday[0].Subject)
	assert.Equal(t, []string{"Tipografia (GR1-M1)", "Anna Puig", "P.1.3"}, monday[1].Lines())
	assert.Empty(t, tt.Rows[0].Cells[3])
}

func TestBuildTimetableWeekend(t *testing.T) {
	tt := BuildTimetable("Tallers", "", []model.AssignmentView{view("Taller", "A", 6, "10:00", "13:00")})
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, tt.Days)
	assert.False(t, tt.Empty())

	assert.True(t, BuildTimetable("Buit", "", nil).Empty())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, BuildTimetable("GR1-M1", "Semestre 1", sampleViews())))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(timetableSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "GR1-M1", rows[0][0])
	assert.Equal(t, "Semestre 1", rows[1][0])
	assert.Equal(t, "Hora", rows[2][0])
	assert.Equal(t, "09:00-11:00", rows[3][0])
	assert.Equal(t, "Color (GR1-M1)\n\nTipografia (GR1-M1)\nAnna Puig\nP.1.3", rows[3][1])
	assert.Equal(t, "Dibuix (GR1-M1)\nG.0.2", rows[4][3])
}

func TestWritePDFMissingFont(t *testing.T) {
	var buf bytes.Buffer
	err := WritePDF(&buf, BuildTimetable("GR1-M1", "", sampleViews()), filepath.Join(t.TempDir(), "none.ttf"))
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}
