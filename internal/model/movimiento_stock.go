package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MovimientoVenta            = "venta"
	MovimientoCancelacionVenta = "cancelacion_venta"
	// MovimientoReversionVenta returns the units of a sale that could not be completed.
	MovimientoReversionVenta = "reversion_venta"
)

// MovimientoStock registra cada cambio de stock en un producto.
// Se crea dentro de la misma unidad de trabajo que registra o cancela la venta.
type MovimientoStock struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo          string    `gorm:"not null"` // "venta" | "cancelacion_venta" | "reversion_venta"
	Cantidad      int       `gorm:"not null"` // positive = entrada, negative = salida
	StockAnterior int       `gorm:"not null"`
	StockNuevo    int       `gorm:"not null"`
	Motivo        string
	ReferenciaID  *uuid.UUID `gorm:"type:uuid;index"` // venta_id
	CreatedAt     time.Time
}

// TableName overrides GORM's default pluralization (movimiento_stocks → movimientos_stock).
func (MovimientoStock) TableName() string { return "movimientos_stock" }
