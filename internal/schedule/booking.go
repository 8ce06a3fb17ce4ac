package schedule

import (
	"sort"

	"github.com/google/uuid"
)

// Source tells which table a booking comes from.
type Source string

const (
	SourceAssignment Source = "assignment"
	SourceProfile    Source = "profile_assignment"
)

// Booking is one occupied interval of a resource (classroom, teacher or student group)
// during a set of teaching weeks.
type Booking struct {
	Source         Source    `json:"source"`
	ID             uuid.UUID `json:"id"`
	SubjectID      uuid.UUID `json:"subject_id"`
	SubjectName    string    `json:"subject_name"`
	SubjectGroupID uuid.UUID `json:"subject_group_id"`
	GroupCode      string    `json:"group_code"`
	TeacherName    string    `json:"teacher_name,omitempty"`
	ClassroomID    uuid.UUID `json:"classroom_id"`
	ClassroomCode  string    `json:"classroom_code,omitempty"`
	Interval       Interval  `json:"-"`
	Weeks          WeekSet   `json:"-"`
}

// Clash is a booking that collides with a candidate, with the shared weeks.
type Clash struct {
	Booking     Booking
	CommonWeeks WeekSet
}

// FindClashes returns the bookings overlapping the candidate interval in time and in at
// least one week, ordered by start time. Bookings with an ID in exclude are ignored.
func FindClashes(candidate Interval, weeks WeekSet, bookings []Booking, exclude ...uuid.UUID) []Clash {
	skip := make(map[uuid.UUID]bool, len(exclude))
	for _, id := range exclude {
		if id != uuid.Nil {
			skip[id] = true
		}
	}

	var out []Clash
	for _, b := range bookings {
		if skip[b.ID] || !b.Interval.Overlaps(candidate) {
			continue
		}
		common := weeks.Intersect(b.Weeks)
		if len(common) == 0 {
			continue
		}
		out = append(out, Clash{Booking: b, CommonWeeks: common})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Booking.Interval.Start < out[j].Booking.Interval.Start
	})
	return out
}

// TotalMinutes sums the weekly minutes of a set of bookings, counting each booking ID
// once (an assignment in two classrooms still takes its teacher only once).
func TotalMinutes(bookings []Booking) int {
	seen := make(map[uuid.UUID]bool, len(bookings))
	total := 0
	for _, b := range bookings {
		if seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		total += b.Interval.Minutes()
	}
	return total
}
