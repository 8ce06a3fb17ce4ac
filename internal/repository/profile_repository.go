package repository

import (
	"context"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository handles subject group profiles and their classroom bookings.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

const profileSelect = `
	SELECT p.id, p.subject_id, p.name, p.description, p.created_at, p.updated_at,
	       COALESCE(ARRAY(SELECT m.subject_group_id FROM subject_group_profile_members m
	                      WHERE m.profile_id = p.id ORDER BY m.subject_group_id), '{}')
	FROM subject_group_profiles p`

func scanProfile(row pgx.Row) (*model.SubjectGroupProfile, error) {
	p := &model.SubjectGroupProfile{}
	if err := row.Scan(&p.ID, &p.SubjectID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt, &p.MemberIDs); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.SubjectGroupProfile, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []model.SubjectGroupProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range profiles {
		if err := r.loadRequirements(ctx, &profiles[i]); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

func (r *ProfileRepository) loadRequirements(ctx context.Context, p *model.SubjectGroupProfile) error {
	rows, err := r.pool.Query(ctx,
		`SELECT ps.software_id, s.name, ps.is_required
		 FROM subject_group_profile_software ps
		 JOIN software s ON s.id = ps.software_id
		 WHERE ps.profile_id = $1
		 ORDER BY s.name`, p.ID)
	if err != nil {
		return err
	}
	if p.Software, err = scanSoftwareRequirements(rows); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx,
		`SELECT pe.equipment_type_id, t.name, pe.quantity_required, pe.is_required
		 FROM subject_group_profile_equipment pe
		 JOIN equipment_types t ON t.id = pe.equipment_type_id
		 WHERE pe.profile_id = $1
		 ORDER BY t.name`, p.ID)
	if err != nil {
		return err
	}
	p.Equipment, err = scanEquipmentRequirements(rows)
	return err
}

// ListBySubject retrieves the profiles of a subject with members and requirements.
func (r *ProfileRepository) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]model.SubjectGroupProfile, error) {
	return r.list(ctx, profileSelect+` WHERE p.subject_id = $1 ORDER BY p.name`, subjectID)
}

// ListForGroup retrieves the profiles of a subject that include the given subject group.
func (r *ProfileRepository) ListForGroup(ctx context.Context, subjectID, subjectGroupID uuid.UUID) ([]model.SubjectGroupProfile, error) {
	return r.list(ctx, profileSelect+`
		WHERE p.subject_id = $1
		  AND EXISTS (SELECT 1 FROM subject_group_profile_members m
		              WHERE m.profile_id = p.id AND m.subject_group_id = $2)
		ORDER BY p.name`, subjectID, subjectGroupID)
}

// GetByID retrieves a profile with members and requirements.
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SubjectGroupProfile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, profileSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadRequirements(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Save inserts (ID == uuid.Nil) or updates a profile, replacing its members and
// requirements in one transaction.
func (r *ProfileRepository) Save(ctx context.Context, p *model.SubjectGroupProfile, software []model.RequirementSoftwareRow, equipment []model.RequirementEquipRow) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if p.ID == uuid.Nil {
			err := tx.QueryRow(ctx,
				`INSERT INTO subject_group_profiles (subject_id, name, description)
				 VALUES ($1, $2, $3)
				 RETURNING id, created_at, updated_at`,
				p.SubjectID, p.Name, p.Description,
			).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
			if err != nil {
				return err
			}
		} else {
			err := tx.QueryRow(ctx,
				`UPDATE subject_group_profiles
				 SET subject_id = $1, name = $2, description = $3, updated_at = CURRENT_TIMESTAMP
				 WHERE id = $4
				 RETURNING created_at, updated_at`,
				p.SubjectID, p.Name, p.Description, p.ID,
			).Scan(&p.CreatedAt, &p.UpdatedAt)
			if err != nil {
				return err
			}
			for _, table := range []string{
				"subject_group_profile_members",
				"subject_group_profile_software",
				"subject_group_profile_equipment",
			} {
				if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE profile_id = $1`, p.ID); err != nil {
					return err
				}
			}
		}

		if len(p.MemberIDs) > 0 {
			_, err := tx.CopyFrom(ctx,
				pgx.Identifier{"subject_group_profile_members"},
				[]string{"profile_id", "subject_group_id"},
				pgx.CopyFromSlice(len(p.MemberIDs), func(i int) ([]interface{}, error) {
					return []interface{}{p.ID, p.MemberIDs[i]}, nil
				}),
			)
			if err != nil {
				return err
			}
		}

		if len(software) > 0 {
			_, err := tx.CopyFrom(ctx,
				pgx.Identifier{"subject_group_profile_software"},
				[]string{"profile_id", "software_id", "is_required"},
				pgx.CopyFromSlice(len(software), func(i int) ([]interface{}, error) {
					return []interface{}{p.ID, software[i].SoftwareID, software[i].IsRequired}, nil
				}),
			)
			if err != nil {
				return err
			}
		}

		if len(equipment) > 0 {
			_, err := tx.CopyFrom(ctx,
				pgx.Identifier{"subject_group_profile_equipment"},
				[]string{"profile_id", "equipment_type_id", "quantity_required", "is_required"},
				pgx.CopyFromSlice(len(equipment), func(i int) ([]interface{}, error) {
					return []interface{}{p.ID, equipment[i].EquipmentTypeID, equipment[i].QuantityRequired, equipment[i].IsRequired}, nil
				}),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a profile. Members, requirements and bookings cascade.
func (r *ProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM subject_group_profiles WHERE id = $1`, id))
}

// LargestMemberSize returns the largest max_students among the profile's member groups.
func (r *ProfileRepository) LargestMemberSize(ctx context.Context, profileID uuid.UUID) (int, error) {
	var size int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(g.max_students), 0)
		 FROM subject_group_profile_members m
		 JOIN subject_groups g ON g.id = m.subject_group_id
		 WHERE m.profile_id = $1`, profileID,
	).Scan(&size)
	return size, err
}

// ─── Profile classroom bookings ──────────────────────────────────────────────

const profileAssignmentSelect = `
	SELECT pa.id, pa.profile_id, pa.classroom_id, pa.semester_id, pa.time_slot_id, pa.is_full_semester,
	       COALESCE(ARRAY(SELECT w.week_number::int FROM profile_assignment_weeks w
	                      WHERE w.profile_assignment_id = pa.id ORDER BY w.week_number), '{}'),
	       pa.created_at
	FROM profile_classroom_assignments pa`

func scanProfileAssignment(row pgx.Row) (*model.ProfileAssignment, error) {
	pa := &model.ProfileAssignment{}
	err := row.Scan(&pa.ID, &pa.ProfileID, &pa.ClassroomID, &pa.SemesterID, &pa.TimeSlotID,
		&pa.IsFullSemester, &pa.Weeks, &pa.CreatedAt)
	if err != nil {
		return nil, err
	}
	return pa, nil
}

// ListAssignments retrieves the classroom bookings of a profile, optionally in one semester.
func (r *ProfileRepository) ListAssignments(ctx context.Context, profileID uuid.UUID, semesterID *uuid.UUID) ([]model.ProfileAssignment, error) {
	var w where
	w.add("pa.profile_id = ?", profileID)
	if semesterID != nil {
		w.add("pa.semester_id = ?", *semesterID)
	}

	rows, err := r.pool.Query(ctx, profileAssignmentSelect+w.sql()+` ORDER BY pa.created_at`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.ProfileAssignment
	for rows.Next() {
		pa, err := scanProfileAssignment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *pa)
	}
	return list, rows.Err()
}

// GetAssignment retrieves a profile booking by ID.
func (r *ProfileRepository) GetAssignment(ctx context.Context, id uuid.UUID) (*model.ProfileAssignment, error) {
	return scanProfileAssignment(r.pool.QueryRow(ctx, profileAssignmentSelect+` WHERE pa.id = $1`, id))
}

// CreateAssignment inserts a profile booking with its weeks.
func (r *ProfileRepository) CreateAssignment(ctx context.Context, pa *model.ProfileAssignment) error {
	pa.IsFullSemester = len(pa.Weeks) == 0
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO profile_classroom_assignments (profile_id, classroom_id, semester_id, time_slot_id, is_full_semester)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, created_at`,
			pa.ProfileID, pa.ClassroomID, pa.SemesterID, pa.TimeSlotID, pa.IsFullSemester,
		).Scan(&pa.ID, &pa.CreatedAt)
		if err != nil {
			return err
		}
		return copyWeeks(ctx, tx, "profile_assignment_weeks", "profile_assignment_id", pa.ID, pa.Weeks)
	})
}

// DeleteAssignment removes a profile booking.
func (r *ProfileRepository) DeleteAssignment(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM profile_classroom_assignments WHERE id = $1`, id))
}

// copyWeeks bulk-inserts week numbers for a parent row.
func copyWeeks(ctx context.Context, tx pgx.Tx, table, parentColumn string, parentID uuid.UUID, weeks []int) error {
	if len(weeks) == 0 {
		return nil
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{table},
		[]string{parentColumn, "week_number"},
		pgx.CopyFromSlice(len(weeks), func(i int) ([]interface{}, error) {
			return []interface{}{parentID, int16(weeks[i])}, nil
		}),
	)
	return err
}
