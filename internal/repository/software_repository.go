package repository

import (
	"context"
	"time"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SoftwareRepository handles software, classroom installations and subject software
// requirements.
type SoftwareRepository struct {
	pool *pgxpool.Pool
}

// NewSoftwareRepository creates a new SoftwareRepository.
func NewSoftwareRepository(pool *pgxpool.Pool) *SoftwareRepository {
	return &SoftwareRepository{pool: pool}
}

const softwareColumns = `id, name, version, category, license_type, operating_systems, expiry_date,
	provider_name, provider_email, created_at, updated_at`

func scanSoftware(row pgx.Row) (*model.Software, error) {
	s := &model.Software{}
	err := row.Scan(&s.ID, &s.Name, &s.Version, &s.Category, &s.LicenseType, &s.OperatingSystems,
		&s.ExpiryDate, &s.ProviderName, &s.ProviderEmail, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List retrieves software, optionally filtered by category and a name search.
func (r *SoftwareRepository) List(ctx context.Context, search, category string) ([]model.Software, error) {
	var w where
	if search != "" {
		w.add("name ILIKE '%' || ?::text || '%'", search)
	}
	if category != "" {
		w.add("category = ?", category)
	}

	rows, err := r.pool.Query(ctx, `SELECT `+softwareColumns+` FROM software`+w.sql()+` ORDER BY name`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Software
	for rows.Next() {
		s, err := scanSoftware(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

// GetByID retrieves software by ID.
func (r *SoftwareRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Software, error) {
	return scanSoftware(r.pool.QueryRow(ctx, `SELECT `+softwareColumns+` FROM software WHERE id = $1`, id))
}

// GetByName retrieves software by name, case-insensitively.
func (r *SoftwareRepository) GetByName(ctx context.Context, name string) (*model.Software, error) {
	return scanSoftware(r.pool.QueryRow(ctx, `SELECT `+softwareColumns+` FROM software WHERE lower(name) = lower($1)`, name))
}

// Create inserts new software.
func (r *SoftwareRepository) Create(ctx context.Context, s *model.Software) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO software (name, version, category, license_type, operating_systems, expiry_date, provider_name, provider_email)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		s.Name, s.Version, s.Category, s.LicenseType, s.OperatingSystems, s.ExpiryDate, s.ProviderName, s.ProviderEmail,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// Update modifies existing software.
func (r *SoftwareRepository) Update(ctx context.Context, s *model.Software) error {
	return r.pool.QueryRow(ctx,
		`UPDATE software
		 SET name = $1, version = $2, category = $3, license_type = $4, operating_systems = $5,
		     expiry_date = $6, provider_name = $7, provider_email = $8, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $9
		 RETURNING created_at, updated_at`,
		s.Name, s.Version, s.Category, s.LicenseType, s.OperatingSystems, s.ExpiryDate,
		s.ProviderName, s.ProviderEmail, s.ID,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// Upsert inserts or updates software keyed by name. Returns true when a row was inserted.
func (r *SoftwareRepository) Upsert(ctx context.Context, s *model.Software) (bool, error) {
	var inserted bool
	err := r.pool.QueryRow(ctx,
		`INSERT INTO software (name, version, category, license_type, operating_systems, expiry_date, provider_name, provider_email)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (name) DO UPDATE
		 SET version = COALESCE(EXCLUDED.version, software.version),
		     category = COALESCE(EXCLUDED.category, software.category),
		     license_type = EXCLUDED.license_type,
		     operating_systems = EXCLUDED.operating_systems,
		     expiry_date = COALESCE(EXCLUDED.expiry_date, software.expiry_date),
		     provider_name = COALESCE(EXCLUDED.provider_name, software.provider_name),
		     provider_email = COALESCE(EXCLUDED.provider_email, software.provider_email),
		     updated_at = CURRENT_TIMESTAMP
		 RETURNING id, created_at, updated_at, (xmax = 0)`,
		s.Name, s.Version, s.Category, s.LicenseType, s.OperatingSystems, s.ExpiryDate, s.ProviderName, s.ProviderEmail,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt, &inserted)
	return inserted, err
}

// Delete removes software by ID.
func (r *SoftwareRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM software WHERE id = $1`, id))
}

// WithExpiryBefore retrieves software whose licence expires before the given date.
func (r *SoftwareRepository) WithExpiryBefore(ctx context.Context, before time.Time) ([]model.Software, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+softwareColumns+` FROM software
		 WHERE expiry_date IS NOT NULL AND expiry_date < $1
		 ORDER BY expiry_date, name`, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Software
	for rows.Next() {
		s, err := scanSoftware(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

// ─── Classroom installations ─────────────────────────────────────────────────

// Install records software in a classroom, replacing the version if already present.
func (r *SoftwareRepository) Install(ctx context.Context, cs *model.ClassroomSoftware) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO classroom_software (classroom_id, software_id, installed_version, installed_at)
		 VALUES ($1, $2, $3, COALESCE($4, CURRENT_DATE))
		 ON CONFLICT (classroom_id, software_id) DO UPDATE
		 SET installed_version = EXCLUDED.installed_version, installed_at = EXCLUDED.installed_at`,
		cs.ClassroomID, cs.SoftwareID, cs.InstalledVersion, cs.InstalledAt)
	return err
}

// Uninstall removes software from a classroom.
func (r *SoftwareRepository) Uninstall(ctx context.Context, classroomID, softwareID uuid.UUID) error {
	return affected(r.pool.Exec(ctx,
		`DELETE FROM classroom_software WHERE classroom_id = $1 AND software_id = $2`, classroomID, softwareID))
}

// ListInstalled retrieves the software installed in a classroom.
func (r *SoftwareRepository) ListInstalled(ctx context.Context, classroomID uuid.UUID) ([]model.ClassroomSoftware, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT cs.classroom_id, cs.software_id, s.name, cs.installed_version, cs.installed_at
		 FROM classroom_software cs
		 JOIN software s ON s.id = cs.software_id
		 WHERE cs.classroom_id = $1
		 ORDER BY s.name`, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.ClassroomSoftware
	for rows.Next() {
		var cs model.ClassroomSoftware
		if err := rows.Scan(&cs.ClassroomID, &cs.SoftwareID, &cs.SoftwareName, &cs.InstalledVersion, &cs.InstalledAt); err != nil {
			return nil, err
		}
		list = append(list, cs)
	}
	return list, rows.Err()
}

// InstalledIDs returns the set of software IDs installed in a classroom.
func (r *SoftwareRepository) InstalledIDs(ctx context.Context, classroomID uuid.UUID) (map[uuid.UUID]bool, error) {
	rows, err := r.pool.Query(ctx, `SELECT software_id FROM classroom_software WHERE classroom_id = $1`, classroomID)
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// ─── Subject requirements ────────────────────────────────────────────────────

// SubjectRequirements retrieves the software required or recommended by a subject.
func (r *SoftwareRepository) SubjectRequirements(ctx context.Context, subjectID uuid.UUID) ([]model.SoftwareRequirement, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ss.software_id, s.name, ss.is_required
		 FROM subject_software ss
		 JOIN software s ON s.id = ss.software_id
		 WHERE ss.subject_id = $1
		 ORDER BY s.name`, subjectID)
	if err != nil {
		return nil, err
	}
	return scanSoftwareRequirements(rows)
}

// SetSubjectRequirements replaces the software requirements of a subject.
func (r *SoftwareRepository) SetSubjectRequirements(ctx context.Context, subjectID uuid.UUID, reqs []model.RequirementSoftwareRow) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM subject_software WHERE subject_id = $1`, subjectID); err != nil {
			return err
		}
		if len(reqs) == 0 {
			return nil
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"subject_software"},
			[]string{"subject_id", "software_id", "is_required"},
			pgx.CopyFromSlice(len(reqs), func(i int) ([]interface{}, error) {
				return []interface{}{subjectID, reqs[i].SoftwareID, reqs[i].IsRequired}, nil
			}),
		)
		return err
	})
}

func scanSoftwareRequirements(rows pgx.Rows) ([]model.SoftwareRequirement, error) {
	defer rows.Close()
	var list []model.SoftwareRequirement
	for rows.Next() {
		var req model.SoftwareRequirement
		if err := rows.Scan(&req.SoftwareID, &req.SoftwareName, &req.IsRequired); err != nil {
			return nil, err
		}
		list = append(list, req)
	}
	return list, rows.Err()
}
