// Package export renders semester timetables as spreadsheets and printable PDFs.
package export

import (
	"sort"
	"strings"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/schedule"
)

// Entry is one assignment shown in a timetable cell.
type Entry struct {
	Subject    string
	Group      string
	Teacher    string
	Classrooms []string
	Color      string
}

// Lines returns the text lines of the entry as printed in a cell.
func (e Entry) Lines() []string {
	lines := []string{e.Subject + " (" + e.Group + ")"}
	if e.Teacher != "" {
		lines = append(lines, e.Teacher)
	}
	if len(e.Classrooms) > 0 {
		lines = append(lines, strings.Join(e.Classrooms, ", "))
	}
	return lines
}

// Row is a time band of the timetable. Cells are keyed by ISO weekday.
type Row struct {
	Start schedule.Clock
	End   schedule.Clock
	Cells map[int][]Entry
}

// Label formats the band as "09:00-11:00".
func (r Row) Label() string {
	return r.Start.String() + "-" + r.End.String()
}

// Timetable is a weekly grid: weekday columns and time rows.
type Timetable struct {
	Title    string
	Subtitle string
	Days     []int
	Rows     []Row
}

// Empty reports whether the timetable has no assignment.
func (t Timetable) Empty() bool {
	return len(t.Rows) == 0
}

// BuildTimetable groups assignments by time band and weekday. Monday to Friday are
// always present; weekend columns only when something is scheduled on them.
// Assignments without a time slot are left out.
func BuildTimetable(title, subtitle string, views []model.AssignmentView) Timetable {
	t := Timetable{Title: title, Subtitle: subtitle, Days: []int{1, 2, 3, 4, 5}}

	type band struct{ start, end schedule.Clock }
	rows := map[band]*Row{}
	weekend := map[int]bool{}

	for _, v := range views {
		if v.DayOfWeek == nil || v.StartTime == nil || v.EndTime == nil {
			continue
		}
		start, err1 := schedule.ParseClock(*v.StartTime)
		end, err2 := schedule.ParseClock(*v.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}

		b := band{start, end}
		r, ok := rows[b]
		if !ok {
			r = &Row{Start: start, End: end, Cells: map[int][]Entry{}}
			rows[b] = r
		}
		day := *v.DayOfWeek
		if day > 5 {
			weekend[day] = true
		}
		r.Cells[day] = append(r.Cells[day], entryOf(v))
	}

	for d := 6; d <= 7; d++ {
		if weekend[d] {
			t.Days = append(t.Days, d)
		}
	}
	for _, r := range rows {
		for _, entries := range r.Cells {
			sort.SliceStable(entries, func(i, j int) bool { return entries[i].Subject < entries[j].Subject })
		}
		t.Rows = append(t.Rows, *r)
	}
	sort.Slice(t.Rows, func(i, j int) bool {
		if t.Rows[i].Start != t.Rows[j].Start {
			return t.Rows[i].Start < t.Rows[j].Start
		}
		return t.Rows[i].End < t.Rows[j].End
	})
	return t
}

func entryOf(v model.AssignmentView) Entry {
	e := Entry{
		Subject:    v.SubjectName,
		Group:      v.GroupCode,
		Classrooms: v.ClassroomCodes,
	}
	if v.TeacherName != nil {
		e.Teacher = *v.TeacherName
	}
	if v.Color != nil {
		e.Color = *v.Color
	}
	return e
}

func dayHeader(day int) string {
	return schedule.DayName(day)
}
