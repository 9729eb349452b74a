package repository

import (
	"context"
	"strings"

	"github.com/gabrilr/ferreteria-sistema/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductoFilter narrows catalog listings.
type ProductoFilter struct {
	Nombre string
	Page   int
	Limit  int
}

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// so unit tests can run against in-memory fakes.
type ProductoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error)
	List(ctx context.Context, filter ProductoFilter) ([]model.Producto, int64, error)
	ListBajoStock(ctx context.Context) ([]model.Producto, error)

	// Used inside transactions — callers must pass the tx instance.
	// With a nil tx the repository's own connection is used.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
	DescontarStockTx(tx *gorm.DB, id uuid.UUID, cantidad int) error
	IncrementarStockTx(tx *gorm.DB, id uuid.UUID, cantidad int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("id = ? AND activo = true", id).First(&p).Error
	if err != nil {
		return nil, traducir(err)
	}
	return &p, nil
}

// FindByCodigo matches codigo ignoring case and surrounding spaces.
func (r *productoRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).
		Where("lower(codigo) = ? AND activo = true", strings.ToLower(strings.TrimSpace(codigo))).
		First(&p).Error
	if err != nil {
		return nil, traducir(err)
	}
	return &p, nil
}

func (r *productoRepo) List(ctx context.Context, filter ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{}).Where("activo = true")
	if filter.Nombre != "" {
		term := "%" + filter.Nombre + "%"
		q = q.Where("nombre ILIKE ? OR codigo ILIKE ?", term, term)
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
	err := q.Order("nombre ASC").Limit(limit).Offset((page - 1) * limit).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) ListBajoStock(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Where("activo = true AND stock <= stock_minimo").
		Order("stock ASC, nombre ASC").
		Find(&productos).Error
	return productos, err
}

// FindByIDForUpdateTx reads the product holding a row lock until tx ends, so the
// commit and cancellation protocols serialize on each product they touch.
func (r *productoRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.conn(tx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND activo = true", id).First(&p).Error
	if err != nil {
		return nil, traducir(err)
	}
	return &p, nil
}

// DescontarStockTx never drives stock below zero: the update only applies while
// stock >= cantidad and reports ErrStockInsuficiente otherwise.
func (r *productoRepo) DescontarStockTx(tx *gorm.DB, id uuid.UUID, cantidad int) error {
	res := r.conn(tx).Model(&model.Producto{}).
		Where("id = ? AND stock >= ?", id, cantidad).
		Update("stock", gorm.Expr("stock - ?", cantidad))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStockInsuficiente
	}
	return nil
}

func (r *productoRepo) IncrementarStockTx(tx *gorm.DB, id uuid.UUID, cantidad int) error {
	res := r.conn(tx).Model(&model.Producto{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", cantidad))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
