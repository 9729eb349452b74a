package repository

import (
	"context"
	"time"

	"github.com/gabrilr/ferreteria-sistema/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VentaFilter selects sales by creation time range [Desde, Hasta) and estado.
// Zero values disable the corresponding condition.
type VentaFilter struct {
	Desde  time.Time
	Hasta  time.Time
	Estado string
	Page   int
	Limit  int
}

type VentaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	List(ctx context.Context, filter VentaFilter) ([]model.Venta, int64, error)
	// ListByRango returns every sale created in [desde, hasta) with its items, unpaginated.
	ListByRango(ctx context.Context, desde, hasta time.Time) ([]model.Venta, error)
	// CancelarTx moves a completed sale to cancelada; ErrSinCambios when it was not completed.
	CancelarTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, por string, at time.Time) error
	// RestaurarEstadoTx puts a sale back to completada. Used only to undo a cancellation
	// whose stock reversal could not be applied outside a transaction.
	RestaurarEstadoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	// EliminarTx removes a sale and its items. Used only to undo a sale whose stock
	// deduction could not be completed outside a transaction.
	EliminarTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

// Create inserts the sale and its items in one statement batch.
func (r *ventaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return traducir(r.conn(ctx, tx).Omit("Items.Producto").Create(v).Error)
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("posicion ASC") }).
		Preload("Items.Producto").
		First(&v, "id = ?", id).Error
	if err != nil {
		return nil, traducir(err)
	}
	return &v, nil
}

func (r *ventaRepo) List(ctx context.Context, filter VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Venta{})
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if !filter.Desde.IsZero() {
		q = q.Where("created_at >= ?", filter.Desde)
	}
	if !filter.Hasta.IsZero() {
		q = q.Where("created_at < ?", filter.Hasta)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}

	err := q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("posicion ASC") }).
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&ventas).Error
	return ventas, total, err
}

func (r *ventaRepo) ListByRango(ctx context.Context, desde, hasta time.Time) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", desde, hasta).
		Preload("Items").
		Order("created_at ASC").
		Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) CancelarTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, por string, at time.Time) error {
	res := r.conn(ctx, tx).Model(&model.Venta{}).
		Where("id = ? AND estado = ?", id, model.EstadoVentaCompletada).
		Updates(map[string]interface{}{
			"estado":        model.EstadoVentaCancelada,
			"cancelada_at":  at,
			"cancelada_por": por,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSinCambios
	}
	return nil
}

func (r *ventaRepo) RestaurarEstadoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.conn(ctx, tx).Model(&model.Venta{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"estado":        model.EstadoVentaCompletada,
			"cancelada_at":  nil,
			"cancelada_por": nil,
		}).Error
}

func (r *ventaRepo) EliminarTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	conn := r.conn(ctx, tx)
	if err := conn.Where("venta_id = ?", id).Delete(&model.VentaItem{}).Error; err != nil {
		return err
	}
	res := conn.Where("id = ?", id).Delete(&model.Venta{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
