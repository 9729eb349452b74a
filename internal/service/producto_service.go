package service

import (
	"context"
	"errors"
	"time"

	"github.com/gabrilr/ferreteria-sistema/internal/dto"
	"github.com/gabrilr/ferreteria-sistema/internal/model"
	"github.com/gabrilr/ferreteria-sistema/internal/repository"

	"github.com/google/uuid"
)

// ProductoService is the read side of the catalog used by the selling screens.
// Stock is always read from the store, never cached.
type ProductoService interface {
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	BuscarPorCodigo(ctx context.Context, codigo string) (*dto.ProductoResponse, error)
	AlertasStockBajo(ctx context.Context) ([]dto.AlertaStockResponse, error)
	Movimientos(ctx context.Context, id uuid.UUID, limit int) ([]dto.MovimientoStockResponse, error)
}

type productoService struct {
	repo    repository.ProductoRepository
	movRepo repository.MovimientoStockRepository
}

func NewProductoService(repo repository.ProductoRepository, movRepo repository.MovimientoStockRepository) ProductoService {
	return &productoService{repo: repo, movRepo: movRepo}
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	productos, total, err := s.repo.List(ctx, repository.ProductoFilter{
		Nombre: filter.Nombre,
		Page:   filter.Page,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, colaborador("listar productos", err)
	}

	resp := &dto.ProductoListResponse{
		Data:  make([]dto.ProductoResponse, 0, len(productos)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	if filter.Limit > 0 {
		resp.TotalPages = int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	}
	for i := range productos {
		resp.Data = append(resp.Data, *productoToResponse(&productos[i]))
	}
	return resp, nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, productoError(err)
	}
	return productoToResponse(p), nil
}

func (s *productoService) BuscarPorCodigo(ctx context.Context, codigo string) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		return nil, productoError(err)
	}
	return productoToResponse(p), nil
}

// AlertasStockBajo lists products at or below their minimum stock, emptiest first.
func (s *productoService) AlertasStockBajo(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	productos, err := s.repo.ListBajoStock(ctx)
	if err != nil {
		return nil, colaborador("listar alertas de stock", err)
	}
	alertas := make([]dto.AlertaStockResponse, 0, len(productos))
	for _, p := range productos {
		alertas = append(alertas, dto.AlertaStockResponse{
			ProductoID:  p.ID.String(),
			Codigo:      p.Codigo,
			Nombre:      p.Nombre,
			Stock:       p.Stock,
			StockMinimo: p.StockMinimo,
			SinStock:    p.Stock == 0,
		})
	}
	return alertas, nil
}

func (s *productoService) Movimientos(ctx context.Context, id uuid.UUID, limit int) ([]dto.MovimientoStockResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, productoError(err)
	}
	movs, err := s.movRepo.ListByProducto(ctx, id, limit)
	if err != nil {
		return nil, colaborador("listar movimientos de stock", err)
	}
	resp := make([]dto.MovimientoStockResponse, 0, len(movs))
	for _, m := range movs {
		item := dto.MovimientoStockResponse{
			ID:            m.ID.String(),
			Tipo:          m.Tipo,
			Cantidad:      m.Cantidad,
			StockAnterior: m.StockAnterior,
			StockNuevo:    m.StockNuevo,
			Motivo:        m.Motivo,
			CreatedAt:     m.CreatedAt.Format(time.RFC3339),
		}
		if m.ReferenciaID != nil {
			ref := m.ReferenciaID.String()
			item.ReferenciaID = &ref
		}
		resp = append(resp, item)
	}
	return resp, nil
}

func productoError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProductoNoEncontrado
	}
	return colaborador("leer producto", err)
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:          p.ID.String(),
		Codigo:      p.Codigo,
		Nombre:      p.Nombre,
		Precio:      p.Precio,
		Stock:       p.Stock,
		StockMinimo: p.StockMinimo,
		BajoStock:   p.BajoStockMinimo(),
	}
}
