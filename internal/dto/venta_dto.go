package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha  string `form:"fecha"          validate:"omitempty,datetime=2006-01-02"` // YYYY-MM-DD; empty = today
	Estado string `form:"estado"         validate:"omitempty,oneof=completada cancelada all"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

// RegistrarVentaRequest commits a sale directly from a list of lines, without
// a server-side cart. Lines are accumulated with the same stock ceiling rules.
type RegistrarVentaRequest struct {
	Items []ItemVentaRequest `json:"items" validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID           string              `json:"id"`
	Vendedor     string              `json:"vendedor"`
	Items        []ItemVentaResponse `json:"items"`
	Total        decimal.Decimal     `json:"total"`
	Estado       string              `json:"estado"`
	CreatedAt    string              `json:"created_at"`
	CanceladaAt  *string             `json:"cancelada_at,omitempty"`
	CanceladaPor *string             `json:"cancelada_por,omitempty"`
}

// ResumenDiaResponse is the aggregate of one calendar day.
// TasaExito is a percentage rounded to one decimal.
type ResumenDiaResponse struct {
	Fecha             string          `json:"fecha"`
	VentasCompletadas int             `json:"ventas_completadas"`
	VentasCanceladas  int             `json:"ventas_canceladas"`
	TotalCompletadas  decimal.Decimal `json:"total_completadas"`
	TotalCanceladas   decimal.Decimal `json:"total_canceladas"`
	IngresosBrutos    decimal.Decimal `json:"ingresos_brutos"`
	TicketPromedio    decimal.Decimal `json:"ticket_promedio"`
	TasaExito         decimal.Decimal `json:"tasa_exito"`
	ProductosVendidos int             `json:"productos_vendidos"`
}
