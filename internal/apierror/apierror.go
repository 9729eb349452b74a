// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// Codes let clients branch on the rejection without parsing Detail.
const (
	CodeValidacion        = "validacion"
	CodeCarritoVacio      = "carrito_vacio"
	CodeSinStock          = "sin_stock"
	CodeStockInsuficiente = "stock_insuficiente"
	CodeNoEncontrado      = "no_encontrado"
	CodeVentaYaCancelada  = "venta_ya_cancelada"
	CodeCorteYaRealizado  = "corte_ya_realizado"
	CodeCajaCerrada       = "caja_cerrada"
	CodeCommitParcial     = "commit_parcial"
	CodeNoDisponible      = "servicio_no_disponible"
	CodeInterno           = "interno"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
	// Disponible is set for stock rejections: the maximum quantity that can be sold.
	Disponible *int `json:"disponible,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

func NewCode(code, msg string) *APIError {
	return &APIError{Detail: msg, Code: code}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Code: CodeValidacion, Fields: fields}
}
