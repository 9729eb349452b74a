package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CerrarCajaRequest optionally overrides the responsible name taken from the token.
type CerrarCajaRequest struct {
	Responsable string `json:"responsable" validate:"omitempty,min=2,max=120"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CorteCajaResponse struct {
	ID                string          `json:"id"`
	Fecha             string          `json:"fecha"`
	Responsable       string          `json:"responsable"`
	VentasCompletadas int             `json:"ventas_completadas"`
	VentasCanceladas  int             `json:"ventas_canceladas"`
	TotalIngresos     decimal.Decimal `json:"total_ingresos"`
	ProductosVendidos int             `json:"productos_vendidos"`
	CreatedAt         string          `json:"created_at"`
}

type CorteCajaListResponse struct {
	Data  []CorteCajaResponse `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

// ResumenHoyResponse is the live aggregate of today plus whether it is already closed.
type ResumenHoyResponse struct {
	ResumenDiaResponse
	CorteYaRealizado bool `json:"corte_ya_realizado"`
}
