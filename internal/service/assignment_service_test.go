package service

import (
	"testing"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWeeks(t *testing.T) {
	assert.Nil(t, normalizeWeeks(nil, 15))
	assert.Equal(t, []int{1, 3, 8}, normalizeWeeks([]int{8, 3, 1, 3}, 15))

	all := make([]int, 0, 15)
	for w := 15; w >= 1; w-- {
		all = append(all, w)
	}
	assert.Nil(t, normalizeWeeks(all, 15), "a selection of every week is the full semester")
}

func TestConflictsOfReportsPairsOnce(t *testing.T) {
	sem := uuid.New()
	a, b := uuid.New(), uuid.New()
	seen := make(map[string]bool)

	resA := model.NewValidationResult()
	resA.AddConflict(model.Conflict{Type: model.ConflictClassroom, BookingID: b, ClassroomCode: "P.1.3",
		SubjectName: "Tipografia", GroupCode: "T1", Weeks: []int{1, 2, 3, 7}}, "x")
	resA.AddConflict(model.Conflict{Type: model.ConflictTeacher, BookingID: b, TeacherName: "Anna Puig",
		SubjectName: "Tipografia", GroupCode: "T1", Weeks: []int{2}}, "y")

	resB := model.NewValidationResult()
	resB.AddConflict(model.Conflict{Type: model.ConflictClassroom, BookingID: a, ClassroomCode: "P.1.3",
		SubjectName: "Il·lustració", GroupCode: "M1", Weeks: []int{1, 2, 3, 7}}, "x")

	first := conflictsOf(sem, a, resA, seen)
	second := conflictsOf(sem, b, resB, seen)

	require.Len(t, first, 2)
	assert.Empty(t, second, "the mirrored classroom clash is already reported")

	assert.Equal(t, model.SeverityCritical, first[0].Severity)
	assert.Equal(t, "Aula P.1.3 compartida amb Tipografia (T1), setmanes 1-3, 7", first[0].Description)
	assert.Equal(t, model.SeverityHigh, first[1].Severity)
	assert.Equal(t, "Professor Anna Puig coincideix amb Tipografia (T1), setmanes 2", first[1].Description)
	assert.Equal(t, a, first[0].AssignmentID)
	assert.Equal(t, sem, first[0].SemesterID)
}
