package handler_test

import (
	"context"

	"github.com/gabrilr/ferreteria-sistema/internal/carrito"
	"github.com/gabrilr/ferreteria-sistema/internal/dto"
	"github.com/gabrilr/ferreteria-sistema/internal/service"
	"github.com/gabrilr/ferreteria-sistema/internal/worker"

	"github.com/google/uuid"
)

// ── Service stubs ─────────────────────────────────────────────────────────────
// Each stub returns resp/err and records the identity it received.

type stubVentaSvc struct {
	resp     *dto.VentaResponse
	err      error
	vendedor string
	filtro   dto.VentaFilter
}

func (s *stubVentaSvc) Registrar(_ context.Context, vendedor string, _ *carrito.Carrito) (*dto.VentaResponse, error) {
	s.vendedor = vendedor
	return s.resp, s.err
}

func (s *stubVentaSvc) RegistrarItems(_ context.Context, vendedor string, _ dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	s.vendedor = vendedor
	return s.resp, s.err
}

func (s *stubVentaSvc) Cancelar(_ context.Context, _ uuid.UUID, por string) (*dto.VentaResponse, error) {
	s.vendedor = por
	return s.resp, s.err
}

func (s *stubVentaSvc) ObtenerPorID(_ context.Context, _ uuid.UUID) (*dto.VentaResponse, error) {
	return s.resp, s.err
}

func (s *stubVentaSvc) Listar(_ context.Context, f dto.VentaFilter) (*dto.VentaListResponse, error) {
	s.filtro = f
	if s.err != nil {
		return nil, s.err
	}
	return &dto.VentaListResponse{Data: []dto.VentaResponse{}, Page: f.Page, Limit: f.Limit}, nil
}

func (s *stubVentaSvc) ResumenDelDia(_ context.Context, fecha string) (*dto.ResumenDiaResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ResumenDiaResponse{Fecha: fecha}, nil
}

var _ service.VentaService = (*stubVentaSvc)(nil)

type stubCorteSvc struct {
	resp        *dto.CorteCajaResponse
	err         error
	responsable string
}

func (s *stubCorteSvc) EstaCerradoHoy(_ context.Context) (bool, error) { return s.resp != nil, s.err }

func (s *stubCorteSvc) Cerrar(_ context.Context, responsable string) (*dto.CorteCajaResponse, error) {
	s.responsable = responsable
	return s.resp, s.err
}

func (s *stubCorteSvc) ObtenerHoy(_ context.Context) (*dto.CorteCajaResponse, error) {
	return s.resp, s.err
}

func (s *stubCorteSvc) ResumenHoy(_ context.Context) (*dto.ResumenHoyResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ResumenHoyResponse{CorteYaRealizado: s.resp != nil}, nil
}

func (s *stubCorteSvc) Listar(_ context.Context, page, limit int) (*dto.CorteCajaListResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.CorteCajaListResponse{Data: []dto.CorteCajaResponse{}, Page: page, Limit: limit}, nil
}

var _ service.CorteService = (*stubCorteSvc)(nil)

type stubCarritoSvc struct {
	err    error
	sesion string
}

func (s *stubCarritoSvc) resp() (*dto.CarritoResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.CarritoResponse{Items: []dto.ItemCarritoResponse{}}, nil
}

func (s *stubCarritoSvc) Obtener(_ context.Context, sesion string) (*dto.CarritoResponse, error) {
	s.sesion = sesion
	return s.resp()
}

func (s *stubCarritoSvc) Agregar(_ context.Context, sesion string, _ dto.AgregarItemRequest) (*dto.CarritoResponse, error) {
	s.sesion = sesion
	return s.resp()
}

func (s *stubCarritoSvc) EstablecerCantidad(_ context.Context, sesion string, _ uuid.UUID, _ int) (*dto.CarritoResponse, error) {
	s.sesion = sesion
	return s.resp()
}

func (s *stubCarritoSvc) Quitar(_ context.Context, sesion string, _ uuid.UUID) (*dto.CarritoResponse, error) {
	s.sesion = sesion
	return s.resp()
}

func (s *stubCarritoSvc) Vaciar(_ context.Context, sesion string) error {
	s.sesion = sesion
	return s.err
}

func (s *stubCarritoSvc) Confirmar(_ context.Context, sesion, _ string) (*dto.VentaResponse, error) {
	s.sesion = sesion
	if s.err != nil {
		return nil, s.err
	}
	return &dto.VentaResponse{ID: uuid.NewString()}, nil
}

var _ service.CarritoService = (*stubCarritoSvc)(nil)

type stubProductoSvc struct{ err error }

func (s *stubProductoSvc) Listar(_ context.Context, f dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	return &dto.ProductoListResponse{Data: []dto.ProductoResponse{}, Page: f.Page, Limit: f.Limit}, s.err
}

func (s *stubProductoSvc) ObtenerPorID(_ context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ProductoResponse{ID: id.String()}, nil
}

func (s *stubProductoSvc) BuscarPorCodigo(_ context.Context, codigo string) (*dto.ProductoResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ProductoResponse{Codigo: codigo}, nil
}

func (s *stubProductoSvc) AlertasStockBajo(_ context.Context) ([]dto.AlertaStockResponse, error) {
	return []dto.AlertaStockResponse{}, s.err
}

func (s *stubProductoSvc) Movimientos(_ context.Context, _ uuid.UUID, _ int) ([]dto.MovimientoStockResponse, error) {
	return []dto.MovimientoStockResponse{}, s.err
}

var _ service.ProductoService = (*stubProductoSvc)(nil)

type stubConciliador struct{ pendientes []worker.Inconsistencia }

func (s *stubConciliador) Inconsistencias(_ context.Context, limit int64) ([]worker.Inconsistencia, error) {
	if int64(len(s.pendientes)) > limit {
		return s.pendientes[:limit], nil
	}
	return s.pendientes, nil
}
