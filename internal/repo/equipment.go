package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/inventory/internal/models"
)

const newestFirst = "created_at DESC, id DESC"

func withAssignee(db *gorm.DB) *gorm.DB {
	return db.Preload("Assignee", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name", "email")
	})
}

func applyFilter(q *gorm.DB, f models.EquipmentFilter) *gorm.DB {
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.Brand != "" {
		q = q.Where(`LOWER(brand) LIKE ? ESCAPE '\'`, containsPattern(f.Brand))
	}
	return q
}

func (r *GormRepo) ListEquipment(ctx context.Context, f models.EquipmentFilter, offset, limit int) (int64, []models.Equipment, error) {
	var total int64
	if err := applyFilter(r.DB.WithContext(ctx).Model(&models.Equipment{}), f).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Equipment, 0, limit)
	if err := withAssignee(applyFilter(r.DB.WithContext(ctx).Model(&models.Equipment{}), f)).
		Order(newestFirst).
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func (r *GormRepo) ListAssignedTo(ctx context.Context, userID uuid.UUID) ([]models.Equipment, error) {
	items := make([]models.Equipment, 0)
	if err := withAssignee(r.DB.WithContext(ctx)).
		Where("assigned_to = ?", userID).
		Order(newestFirst).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetEquipment(ctx context.Context, id uuid.UUID) (*models.Equipment, error) {
	var eq models.Equipment
	if err := withAssignee(r.DB.WithContext(ctx)).Where("id = ?", id).First(&eq).Error; err != nil {
		return nil, err
	}
	return &eq, nil
}

// GetEquipmentByIDs returns the rows for ids in the order of ids. Unknown ids are skipped.
func (r *GormRepo) GetEquipmentByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Equipment, error) {
	if len(ids) == 0 {
		return []models.Equipment{}, nil
	}

	var found []models.Equipment
	if err := withAssignee(r.DB.WithContext(ctx)).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Equipment, len(found))
	for _, eq := range found {
		byID[eq.ID] = eq
	}
	items := make([]models.Equipment, 0, len(found))
	for _, id := range ids {
		if eq, ok := byID[id]; ok {
			items = append(items, eq)
		}
	}
	return items, nil
}

func serialTaken(tx *gorm.DB, serial string, except uuid.UUID) (bool, error) {
	q := tx.Model(&models.Equipment{}).Where("serial_number = ?", serial)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) CreateEquipment(ctx context.Context, eq *models.Equipment) (*models.Equipment, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := serialTaken(tx, eq.SerialNumber, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return ErrSerialExists
		}
		return tx.Omit(clause.Associations).Create(eq).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrSerialExists
	}
	if err != nil {
		return nil, err
	}
	return r.GetEquipment(ctx, eq.ID)
}

// UpdateEquipment loads the row, lets apply merge the changes and saves it in
// one transaction.
func (r *GormRepo) UpdateEquipment(ctx context.Context, id uuid.UUID, apply func(*models.Equipment) error) (*models.Equipment, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var eq models.Equipment
		if err := tx.Where("id = ?", id).First(&eq).Error; err != nil {
			return err
		}

		prevSerial := eq.SerialNumber
		if err := apply(&eq); err != nil {
			return err
		}

		if eq.SerialNumber != prevSerial {
			taken, err := serialTaken(tx, eq.SerialNumber, id)
			if err != nil {
				return err
			}
			if taken {
				return ErrSerialExists
			}
		}

		eq.Assignee = nil
		return tx.Omit(clause.Associations).Save(&eq).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrSerialExists
	}
	if err != nil {
		return nil, err
	}
	return r.GetEquipment(ctx, id)
}

func (r *GormRepo) DeleteEquipment(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Equipment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SearchEquipment matches q as a substring of name, brand, model or serial number.
func (r *GormRepo) SearchEquipment(ctx context.Context, q string, offset, limit int) (int64, []models.Equipment, error) {
	pattern := containsPattern(q)
	where := `LOWER(name) LIKE @p ESCAPE '\' OR LOWER(brand) LIKE @p ESCAPE '\' OR LOWER(model) LIKE @p ESCAPE '\' OR LOWER(serial_number) LIKE @p ESCAPE '\'`
	args := map[string]any{"p": pattern}

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Equipment{}).Where(where, args).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Equipment, 0, limit)
	if err := withAssignee(r.DB.WithContext(ctx)).
		Where(where, args).
		Order(newestFirst).
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
