package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FechaLayout is the calendar-day key format used for CorteCaja.Fecha and date filters.
const FechaLayout = "2006-01-02"

// CorteCaja is the immutable end-of-day cash closing. At most one per Fecha:
// the unique index on fecha is what makes concurrent closes produce a single winner.
type CorteCaja struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Fecha             string          `gorm:"type:varchar(10);uniqueIndex;not null"`
	Responsable       string          `gorm:"not null"`
	VentasCompletadas int             `gorm:"not null"`
	VentasCanceladas  int             `gorm:"not null"`
	TotalIngresos     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ProductosVendidos int             `gorm:"not null"`
	CreatedAt         time.Time
}

func (CorteCaja) TableName() string { return "cortes_caja" }
