package service

import (
	"context"
	"errors"
	"time"

	"github.com/gabrilr/ferreteria-sistema/internal/dto"
	"github.com/gabrilr/ferreteria-sistema/internal/model"
	"github.com/gabrilr/ferreteria-sistema/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CorteService is the daily cash closing. A day is open until its closing record
// exists; there is no way to reopen it.
type CorteService interface {
	EstaCerradoHoy(ctx context.Context) (bool, error)
	Cerrar(ctx context.Context, responsable string) (*dto.CorteCajaResponse, error)
	ObtenerHoy(ctx context.Context) (*dto.CorteCajaResponse, error)
	ResumenHoy(ctx context.Context) (*dto.ResumenHoyResponse, error)
	Listar(ctx context.Context, page, limit int) (*dto.CorteCajaListResponse, error)
}

type corteService struct {
	repo       repository.CorteRepository
	ventaRepo  repository.VentaRepository
	dispatcher Despachador
	cal        Calendario
}

func NewCorteService(
	repo repository.CorteRepository,
	ventaRepo repository.VentaRepository,
	dispatcher Despachador,
	cal Calendario,
) CorteService {
	return &corteService{repo: repo, ventaRepo: ventaRepo, dispatcher: dispatcher, cal: cal}
}

// ── EstaCerradoHoy ────────────────────────────────────────────────────────────

func (s *corteService) EstaCerradoHoy(ctx context.Context) (bool, error) {
	_, err := s.repo.FindByFecha(ctx, s.cal.Fecha(s.cal.Hoy()))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, colaborador("consultar corte de caja", err)
	}
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
//   1. Reject when today already has a closing (a retry is an error, not a no-op)
//   2. Aggregate today's sales
//   3. Persist the snapshot; the unique fecha index decides concurrent closes
//   4. (async) enqueue the PDF/email report

func (s *corteService) Cerrar(ctx context.Context, responsable string) (*dto.CorteCajaResponse, error) {
	hoy := s.cal.Hoy()

	cerrado, err := s.EstaCerradoHoy(ctx)
	if err != nil {
		return nil, err
	}
	if cerrado {
		return nil, ErrCorteYaRealizado
	}

	r, err := resumenDe(ctx, s.ventaRepo, hoy)
	if err != nil {
		return nil, err
	}

	corte := &model.CorteCaja{
		ID:                uuid.New(),
		Fecha:             s.cal.Fecha(hoy),
		Responsable:       responsable,
		VentasCompletadas: r.VentasCompletadas,
		VentasCanceladas:  r.VentasCanceladas,
		TotalIngresos:     r.TotalCompletadas,
		ProductosVendidos: r.ProductosVendidos,
		CreatedAt:         hoy,
	}
	if err := s.repo.Create(ctx, corte); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return nil, ErrCorteYaRealizado
		}
		return nil, colaborador("registrar corte de caja", err)
	}

	log.Info().
		Str("fecha", corte.Fecha).
		Str("responsable", responsable).
		Int("ventas_completadas", corte.VentasCompletadas).
		Str("total_ingresos", corte.TotalIngresos.StringFixed(2)).
		Msg("corte de caja realizado")

	// Best effort: the closing is already final.
	if s.dispatcher != nil {
		if err := s.dispatcher.EncolarReporteCorte(ctx, corte.ID); err != nil {
			log.Warn().Err(err).Str("corte_id", corte.ID.String()).Msg("no se pudo encolar el reporte del corte")
		}
	}

	return corteToResponse(corte), nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *corteService) ObtenerHoy(ctx context.Context) (*dto.CorteCajaResponse, error) {
	corte, err := s.repo.FindByFecha(ctx, s.cal.Fecha(s.cal.Hoy()))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCorteNoEncontrado
	}
	if err != nil {
		return nil, colaborador("consultar corte de caja", err)
	}
	return corteToResponse(corte), nil
}

func (s *corteService) ResumenHoy(ctx context.Context) (*dto.ResumenHoyResponse, error) {
	r, err := resumenDe(ctx, s.ventaRepo, s.cal.Hoy())
	if err != nil {
		return nil, err
	}
	cerrado, err := s.EstaCerradoHoy(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ResumenHoyResponse{
		ResumenDiaResponse: resumenToResponse(r),
		CorteYaRealizado:   cerrado,
	}, nil
}

func (s *corteService) Listar(ctx context.Context, page, limit int) (*dto.CorteCajaListResponse, error) {
	cortes, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, colaborador("listar cortes de caja", err)
	}
	resp := &dto.CorteCajaListResponse{
		Data:  make([]dto.CorteCajaResponse, 0, len(cortes)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for i := range cortes {
		resp.Data = append(resp.Data, *corteToResponse(&cortes[i]))
	}
	return resp, nil
}

func corteToResponse(c *model.CorteCaja) *dto.CorteCajaResponse {
	return &dto.CorteCajaResponse{
		ID:                c.ID.String(),
		Fecha:             c.Fecha,
		Responsable:       c.Responsable,
		VentasCompletadas: c.VentasCompletadas,
		VentasCanceladas:  c.VentasCanceladas,
		TotalIngresos:     c.TotalIngresos,
		ProductosVendidos: c.ProductosVendidos,
		CreatedAt:         c.CreatedAt.Format(time.RFC3339),
	}
}
