package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AgregarItemRequest adds one unit of a product, found by id or by codigo.
type AgregarItemRequest struct {
	ProductoID string `json:"producto_id" validate:"required_without=Codigo,omitempty,uuid"`
	Codigo     string `json:"codigo"      validate:"required_without=ProductoID,omitempty,max=60"`
}

// CantidadItemRequest sets a line quantity; zero or negative removes the line.
type CantidadItemRequest struct {
	Cantidad int `json:"cantidad"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemCarritoResponse struct {
	ProductoID string          `json:"producto_id"`
	Nombre     string          `json:"nombre"`
	Precio     decimal.Decimal `json:"precio"`
	Cantidad   int             `json:"cantidad"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type CarritoResponse struct {
	Items    []ItemCarritoResponse `json:"items"`
	Total    decimal.Decimal       `json:"total"`
	Lineas   int                   `json:"lineas"`
	Unidades int                   `json:"unidades"`
}
