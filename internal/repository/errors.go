package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup matched no row.
	ErrNotFound = errors.New("registro no encontrado")
	// ErrDuplicado is returned when an insert violates a unique constraint.
	ErrDuplicado = errors.New("registro duplicado")
	// ErrStockInsuficiente is returned by DescontarStockTx when the conditional
	// decrement matched no row because the product has less stock than requested.
	ErrStockInsuficiente = errors.New("stock insuficiente")
	// ErrSinCambios is returned by conditional state transitions that matched no row.
	ErrSinCambios = errors.New("sin cambios")
)

// traducir maps GORM's translated errors to repository sentinels.
// Requires gorm.Config{TranslateError: true} (see infra.NewDatabase).
func traducir(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicado
	default:
		return err
	}
}
