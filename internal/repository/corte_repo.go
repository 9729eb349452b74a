package repository

import (
	"context"

	"github.com/gabrilr/ferreteria-sistema/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CorteRepository persists daily closings. Records are never updated or deleted.
type CorteRepository interface {
	FindByFecha(ctx context.Context, fecha string) (*model.CorteCaja, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.CorteCaja, error)
	// Create returns ErrDuplicado when a closing for the same fecha already exists.
	Create(ctx context.Context, c *model.CorteCaja) error
	List(ctx context.Context, page, limit int) ([]model.CorteCaja, int64, error)
}

type corteRepo struct{ db *gorm.DB }

func NewCorteRepository(db *gorm.DB) CorteRepository { return &corteRepo{db: db} }

func (r *corteRepo) FindByFecha(ctx context.Context, fecha string) (*model.CorteCaja, error) {
	var c model.CorteCaja
	if err := r.db.WithContext(ctx).Where("fecha = ?", fecha).First(&c).Error; err != nil {
		return nil, traducir(err)
	}
	return &c, nil
}

func (r *corteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CorteCaja, error) {
	var c model.CorteCaja
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, traducir(err)
	}
	return &c, nil
}

func (r *corteRepo) Create(ctx context.Context, c *model.CorteCaja) error {
	return traducir(r.db.WithContext(ctx).Create(c).Error)
}

func (r *corteRepo) List(ctx context.Context, page, limit int) ([]model.CorteCaja, int64, error) {
	var cortes []model.CorteCaja
	var total int64

	q := r.db.WithContext(ctx).Model(&model.CorteCaja{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 30
	}
	err := q.Order("fecha DESC").Offset((page - 1) * limit).Limit(limit).Find(&cortes).Error
	return cortes, total, err
}
