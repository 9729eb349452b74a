package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EstadoVentaCompletada = "completada"
	EstadoVentaCancelada  = "cancelada"
)

// Venta is a committed sale. Estado starts as "completada"; "cancelada" is terminal.
// Total is computed once at commit time from the captured item prices.
type Venta struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Vendedor     string          `gorm:"not null"`
	Estado       string          `gorm:"type:varchar(20);not null;default:'completada';index"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt    time.Time       `gorm:"index"`
	CanceladaAt  *time.Time
	CanceladaPor *string

	Items []VentaItem `gorm:"foreignKey:VentaID"`
}

func (Venta) TableName() string { return "ventas" }

// Completada reports whether the sale still holds its stock deduction.
func (v Venta) Completada() bool { return v.Estado == EstadoVentaCompletada }

// Unidades is the sum of item quantities.
func (v Venta) Unidades() int {
	n := 0
	for _, it := range v.Items {
		n += it.Cantidad
	}
	return n
}

// VentaItem is one sale line. PrecioUnitario and Nombre are captured at commit.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	Posicion       int             `gorm:"not null"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	Nombre         string          `gorm:"not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (VentaItem) TableName() string { return "venta_items" }
