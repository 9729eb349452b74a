// Package resumen aggregates the sales of one calendar day.
//
// Calcular is pure and safe for concurrent use. It is shared by the daily
// history view and by the cash closing, so both always report the same numbers.
package resumen

import (
	"time"

	"github.com/gabrilr/ferreteria-sistema/internal/model"

	"github.com/shopspring/decimal"
)

// Resumen holds the statistics of a calendar day.
type Resumen struct {
	Fecha             string
	VentasCompletadas int
	VentasCanceladas  int
	TotalCompletadas  decimal.Decimal
	TotalCanceladas   decimal.Decimal
	ProductosVendidos int
	IngresosBrutos    decimal.Decimal
	TicketPromedio    decimal.Decimal
	// TasaExito is a fraction in [0, 1].
	TasaExito decimal.Decimal
}

// TasaExitoPct returns the success rate as a percentage rounded to one decimal (66.7).
func (r Resumen) TasaExitoPct() decimal.Decimal {
	return r.TasaExito.Mul(decimal.NewFromInt(100)).Round(1)
}

// Calcular aggregates the ventas whose CreatedAt falls on the calendar date of
// fecha, in fecha's location. Sales of other dates are ignored.
func Calcular(ventas []model.Venta, fecha time.Time) Resumen {
	r := Resumen{
		Fecha:            fecha.Format(model.FechaLayout),
		TotalCompletadas: decimal.Zero,
		TotalCanceladas:  decimal.Zero,
		IngresosBrutos:   decimal.Zero,
		TicketPromedio:   decimal.Zero,
		TasaExito:        decimal.Zero,
	}

	for _, v := range DelDia(ventas, fecha) {
		switch v.Estado {
		case model.EstadoVentaCompletada:
			r.VentasCompletadas++
			r.TotalCompletadas = r.TotalCompletadas.Add(v.Total)
			r.ProductosVendidos += v.Unidades()
		case model.EstadoVentaCancelada:
			r.VentasCanceladas++
			r.TotalCanceladas = r.TotalCanceladas.Add(v.Total)
		}
	}

	r.IngresosBrutos = r.TotalCompletadas.Add(r.TotalCanceladas)
	if r.VentasCompletadas > 0 {
		r.TicketPromedio = r.TotalCompletadas.Div(decimal.NewFromInt(int64(r.VentasCompletadas))).Round(2)
	}
	if n := r.VentasCompletadas + r.VentasCanceladas; n > 0 {
		r.TasaExito = decimal.NewFromInt(int64(r.VentasCompletadas)).Div(decimal.NewFromInt(int64(n)))
	}
	return r
}

// DelDia filters ventas to those created on fecha's calendar date.
func DelDia(ventas []model.Venta, fecha time.Time) []model.Venta {
	out := make([]model.Venta, 0, len(ventas))
	for _, v := range ventas {
		if MismoDia(v.CreatedAt, fecha) {
			out = append(out, v)
		}
	}
	return out
}

// MismoDia compares calendar dates in b's location.
func MismoDia(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// LimitesDelDia returns [inicio, fin) of fecha's calendar day in its location.
func LimitesDelDia(fecha time.Time) (time.Time, time.Time) {
	y, m, d := fecha.Date()
	inicio := time.Date(y, m, d, 0, 0, 0, 0, fecha.Location())
	return inicio, inicio.AddDate(0, 0, 1)
}
