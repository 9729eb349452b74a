package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is the catalog entry the sale protocols read and whose Stock they mutate.
// Codigo is unique ignoring case (see the lower(codigo) index in infra.RunMigrations).
type Producto struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo      string          `gorm:"not null"`
	Nombre      string          `gorm:"index;not null"`
	Precio      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock       int             `gorm:"not null;default:0"`
	StockMinimo int             `gorm:"not null;default:0"`
	Activo      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BajoStockMinimo reports whether the product reached its reorder threshold.
func (p Producto) BajoStockMinimo() bool { return p.Stock <= p.StockMinimo }
