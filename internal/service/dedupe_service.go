package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Josepmarimon/bau-assist-sub002/internal/matching"
	"github.com/Josepmarimon/bau-assist-sub002/internal/repository"
	"github.com/rs/zerolog"
)

// DedupeTarget is the catalogue a duplicate search runs over.
type DedupeTarget string

const (
	DedupeSubjects DedupeTarget = "subjects"
	DedupeTeachers DedupeTarget = "teachers"
)

// ParseDedupeTarget accepts "subjects" or "teachers".
func ParseDedupeTarget(s string) (DedupeTarget, error) {
	switch t := DedupeTarget(strings.ToLower(strings.TrimSpace(s))); t {
	case DedupeSubjects, DedupeTeachers:
		return t, nil
	}
	return "", invalid("unknown dedupe target %q", s)
}

// DedupeService looks for catalogue entries that are spelled differently but name the
// same subject or teacher.
type DedupeService struct {
	subjectRepo *repository.SubjectRepository
	teacherRepo *repository.TeacherRepository
	log         zerolog.Logger
}

func NewDedupeService(subjectRepo *repository.SubjectRepository, teacherRepo *repository.TeacherRepository, log zerolog.Logger) *DedupeService {
	return &DedupeService{
		subjectRepo: subjectRepo,
		teacherRepo: teacherRepo,
		log:         log.With().Str("component", "dedupe_service").Logger(),
	}
}

func (s *DedupeService) items(ctx context.Context, target DedupeTarget) ([]matching.Item, error) {
	switch target {
	case DedupeSubjects:
		subjects, err := s.subjectRepo.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("load subjects: %w", err)
		}
		items := make([]matching.Item, len(subjects))
		for i, sub := range subjects {
			items[i] = matching.Item{ID: sub.ID, Code: sub.Code, Label: sub.Name}
		}
		return items, nil
	case DedupeTeachers:
		teachers, err := s.teacherRepo.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("load teachers: %w", err)
		}
		items := make([]matching.Item, len(teachers))
		for i, t := range teachers {
			items[i] = matching.Item{ID: t.ID, Code: t.Code, Label: t.FullName()}
		}
		return items, nil
	}
	return nil, invalid("unknown dedupe target %q", target)
}

// Candidates lists pairs of entries of the catalogue that match at least min.
func (s *DedupeService) Candidates(ctx context.Context, target DedupeTarget, min matching.MatchType) ([]matching.Candidate, error) {
	items, err := s.items(ctx, target)
	if err != nil {
		return nil, err
	}
	pairs := matching.Pairs(items, min)
	s.log.Info().Str("target", string(target)).Int("entries", len(items)).Int("candidates", len(pairs)).Msg("Duplicate scan finished")
	if pairs == nil {
		pairs = []matching.Candidate{}
	}
	return pairs, nil
}

// MatchNames finds the closest catalogue entry for each external name, e.g. the
// subject names of a timetable spreadsheet.
func (s *DedupeService) MatchNames(ctx context.Context, target DedupeTarget, names []string) ([]matching.NameMatch, error) {
	items, err := s.items(ctx, target)
	if err != nil {
		return nil, err
	}
	out := make([]matching.NameMatch, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		out = append(out, matching.Best(n, items))
	}
	return out, nil
}
