package repository

import (
	"context"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EquipmentRepository handles equipment types, classroom inventory and subject
// equipment requirements.
type EquipmentRepository struct {
	pool *pgxpool.Pool
}

// NewEquipmentRepository creates a new EquipmentRepository.
func NewEquipmentRepository(pool *pgxpool.Pool) *EquipmentRepository {
	return &EquipmentRepository{pool: pool}
}

const equipmentTypeColumns = `id, code, name, category, description, is_active, created_at, updated_at`

func scanEquipmentType(row pgx.Row) (*model.EquipmentType, error) {
	t := &model.EquipmentType{}
	if err := row.Scan(&t.ID, &t.Code, &t.Name, &t.Category, &t.Description, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTypes retrieves equipment types, optionally by category.
func (r *EquipmentRepository) ListTypes(ctx context.Context, category string) ([]model.EquipmentType, error) {
	var w where
	if category != "" {
		w.add("category = ?", category)
	}

	rows, err := r.pool.Query(ctx, `SELECT `+equipmentTypeColumns+` FROM equipment_types`+w.sql()+` ORDER BY category, name`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []model.EquipmentType
	for rows.Next() {
		t, err := scanEquipmentType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, *t)
	}
	return types, rows.Err()
}

// GetType retrieves an equipment type by ID.
func (r *EquipmentRepository) GetType(ctx context.Context, id uuid.UUID) (*model.EquipmentType, error) {
	return scanEquipmentType(r.pool.QueryRow(ctx, `SELECT `+equipmentTypeColumns+` FROM equipment_types WHERE id = $1`, id))
}

// CreateType inserts a new equipment type.
func (r *EquipmentRepository) CreateType(ctx context.Context, t *model.EquipmentType) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO equipment_types (code, name, category, description, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		t.Code, t.Name, t.Category, t.Description, t.IsActive,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// UpdateType modifies an existing equipment type.
func (r *EquipmentRepository) UpdateType(ctx context.Context, t *model.EquipmentType) error {
	return r.pool.QueryRow(ctx,
		`UPDATE equipment_types
		 SET code = $1, name = $2, category = $3, description = $4, is_active = $5, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6
		 RETURNING created_at, updated_at`,
		t.Code, t.Name, t.Category, t.Description, t.IsActive, t.ID,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

// DeleteType removes an equipment type. Fails with a FK violation while inventory uses it.
func (r *EquipmentRepository) DeleteType(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM equipment_types WHERE id = $1`, id))
}

// ─── Inventory ───────────────────────────────────────────────────────────────

const inventorySelect = `
	SELECT i.id, i.equipment_type_id, t.name, i.classroom_id, i.quantity, i.status,
	       i.serial_number, i.notes, i.created_at, i.updated_at
	FROM equipment_inventory i
	JOIN equipment_types t ON t.id = i.equipment_type_id`

func scanInventory(row pgx.Row) (*model.EquipmentInventory, error) {
	i := &model.EquipmentInventory{}
	err := row.Scan(&i.ID, &i.EquipmentTypeID, &i.EquipmentName, &i.ClassroomID, &i.Quantity, &i.Status,
		&i.SerialNumber, &i.Notes, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return i, nil
}

// ListInventory retrieves the inventory of a classroom, or all inventory when classroomID is nil.
func (r *EquipmentRepository) ListInventory(ctx context.Context, classroomID *uuid.UUID) ([]model.EquipmentInventory, error) {
	var w where
	if classroomID != nil {
		w.add("i.classroom_id = ?", *classroomID)
	}

	rows, err := r.pool.Query(ctx, inventorySelect+w.sql()+` ORDER BY t.name`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.EquipmentInventory
	for rows.Next() {
		i, err := scanInventory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *i)
	}
	return items, rows.Err()
}

// CreateInventory inserts a new inventory row.
func (r *EquipmentRepository) CreateInventory(ctx context.Context, i *model.EquipmentInventory) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO equipment_inventory (equipment_type_id, classroom_id, quantity, status, serial_number, notes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		i.EquipmentTypeID, i.ClassroomID, i.Quantity, i.Status, i.SerialNumber, i.Notes,
	).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
}

// UpdateInventory modifies an existing inventory row.
func (r *EquipmentRepository) UpdateInventory(ctx context.Context, i *model.EquipmentInventory) error {
	return r.pool.QueryRow(ctx,
		`UPDATE equipment_inventory
		 SET equipment_type_id = $1, classroom_id = $2, quantity = $3, status = $4, serial_number = $5,
		     notes = $6, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $7
		 RETURNING created_at, updated_at`,
		i.EquipmentTypeID, i.ClassroomID, i.Quantity, i.Status, i.SerialNumber, i.Notes, i.ID,
	).Scan(&i.CreatedAt, &i.UpdatedAt)
}

// DeleteInventory removes an inventory row.
func (r *EquipmentRepository) DeleteInventory(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM equipment_inventory WHERE id = $1`, id))
}

// OperationalQuantities returns, per equipment type, the operational units in a classroom.
func (r *EquipmentRepository) OperationalQuantities(ctx context.Context, classroomID uuid.UUID) (map[uuid.UUID]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT equipment_type_id, SUM(quantity)::int
		 FROM equipment_inventory
		 WHERE classroom_id = $1 AND status = 'operational'
		 GROUP BY equipment_type_id`, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID]int)
	for rows.Next() {
		var id uuid.UUID
		var qty int
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, err
		}
		out[id] = qty
	}
	return out, rows.Err()
}

// ─── Subject requirements ────────────────────────────────────────────────────

// SubjectRequirements retrieves the equipment required or recommended by a subject.
func (r *EquipmentRepository) SubjectRequirements(ctx context.Context, subjectID uuid.UUID) ([]model.EquipmentRequirement, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT se.equipment_type_id, t.name, se.quantity_required, se.is_required
		 FROM subject_equipment se
		 JOIN equipment_types t ON t.id = se.equipment_type_id
		 WHERE se.subject_id = $1
		 ORDER BY t.name`, subjectID)
	if err != nil {
		return nil, err
	}
	return scanEquipmentRequirements(rows)
}

// SetSubjectRequirements replaces the equipment requirements of a subject.
func (r *EquipmentRepository) SetSubjectRequirements(ctx context.Context, subjectID uuid.UUID, reqs []model.RequirementEquipRow) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM subject_equipment WHERE subject_id = $1`, subjectID); err != nil {
			return err
		}
		if len(reqs) == 0 {
			return nil
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"subject_equipment"},
			[]string{"subject_id", "equipment_type_id", "quantity_required", "is_required"},
			pgx.CopyFromSlice(len(reqs), func(i int) ([]interface{}, error) {
				return []interface{}{subjectID, reqs[i].EquipmentTypeID, reqs[i].QuantityRequired, reqs[i].IsRequired}, nil
			}),
		)
		return err
	})
}

func scanEquipmentRequirements(rows pgx.Rows) ([]model.EquipmentRequirement, error) {
	defer rows.Close()
	var list []model.EquipmentRequirement
	for rows.Next() {
		var req model.EquipmentRequirement
		if err := rows.Scan(&req.EquipmentTypeID, &req.EquipmentName, &req.QuantityRequired, &req.IsRequired); err != nil {
			return nil, err
		}
		list = append(list, req)
	}
	return list, rows.Err()
}
