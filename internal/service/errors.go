package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Rejections. None of them leaves a state change behind.
var (
	ErrCarritoVacio         = errors.New("el carrito está vacío")
	ErrProductoNoEncontrado = errors.New("producto no encontrado")
	ErrVentaNoEncontrada    = errors.New("venta no encontrada")
	ErrVentaYaCancelada     = errors.New("la venta ya fue cancelada")
	ErrCorteYaRealizado     = errors.New("el corte de caja de este día ya fue realizado")
	ErrCorteNoEncontrado    = errors.New("corte de caja no encontrado")
	ErrCajaCerrada          = errors.New("la caja de este día ya fue cerrada")
	ErrFechaInvalida        = errors.New("fecha inválida, formato esperado AAAA-MM-DD")
)

var (
	// ErrCommitParcial means a sale was persisted but its stock deduction was not fully
	// applied. The sale and the catalog may disagree until someone reconciles them.
	ErrCommitParcial = errors.New("venta registrada con descuento de stock incompleto")
	// ErrColaboradorNoDisponible wraps failures of the stores the protocols depend on.
	ErrColaboradorNoDisponible = errors.New("almacén de datos no disponible")
)

// CommitParcialError identifies the persisted sale and the product whose deduction failed.
type CommitParcialError struct {
	VentaID    uuid.UUID
	ProductoID uuid.UUID
	Err        error
}

func (e *CommitParcialError) Error() string {
	return fmt.Sprintf("%s: venta %s, producto %s: %v", ErrCommitParcial, e.VentaID, e.ProductoID, e.Err)
}

func (e *CommitParcialError) Is(target error) bool { return target == ErrCommitParcial }

func (e *CommitParcialError) Unwrap() error { return e.Err }

func colaborador(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrColaboradorNoDisponible, err)
}
