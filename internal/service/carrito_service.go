package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabrilr/ferreteria-sistema/internal/carrito"
	"github.com/gabrilr/ferreteria-sistema/internal/dto"
	"github.com/gabrilr/ferreteria-sistema/internal/model"
	"github.com/gabrilr/ferreteria-sistema/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CarritoService keeps the cart of each selling session. Every mutation re-reads
// the product so the stock ceiling is checked against the live catalog.
type CarritoService interface {
	Obtener(ctx context.Context, sesion string) (*dto.CarritoResponse, error)
	Agregar(ctx context.Context, sesion string, req dto.AgregarItemRequest) (*dto.CarritoResponse, error)
	EstablecerCantidad(ctx context.Context, sesion string, productoID uuid.UUID, cantidad int) (*dto.CarritoResponse, error)
	Quitar(ctx context.Context, sesion string, productoID uuid.UUID) (*dto.CarritoResponse, error)
	Vaciar(ctx context.Context, sesion string) error
	// Confirmar commits the session cart as a sale. The cart survives a rejected commit;
	// after a CommitParcialError it is cleared like after a sale.
	Confirmar(ctx context.Context, sesion, vendedor string) (*dto.VentaResponse, error)
}

type carritoService struct {
	repo         repository.CarritoRepository
	productoRepo repository.ProductoRepository
	ventas       VentaService
}

func NewCarritoService(repo repository.CarritoRepository, productoRepo repository.ProductoRepository, ventas VentaService) CarritoService {
	return &carritoService{repo: repo, productoRepo: productoRepo, ventas: ventas}
}

func (s *carritoService) Obtener(ctx context.Context, sesion string) (*dto.CarritoResponse, error) {
	c, err := s.cargar(ctx, sesion)
	if err != nil {
		return nil, err
	}
	return carritoToResponse(c), nil
}

func (s *carritoService) Agregar(ctx context.Context, sesion string, req dto.AgregarItemRequest) (*dto.CarritoResponse, error) {
	p, err := s.resolverProducto(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.mutar(ctx, sesion, func(c *carrito.Carrito) error {
		return c.AgregarOIncrementar(*p)
	})
}

func (s *carritoService) EstablecerCantidad(ctx context.Context, sesion string, productoID uuid.UUID, cantidad int) (*dto.CarritoResponse, error) {
	if cantidad <= 0 {
		return s.Quitar(ctx, sesion, productoID)
	}
	p, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		return nil, productoError(err)
	}
	return s.mutar(ctx, sesion, func(c *carrito.Carrito) error {
		return c.EstablecerCantidad(*p, cantidad)
	})
}

func (s *carritoService) Quitar(ctx context.Context, sesion string, productoID uuid.UUID) (*dto.CarritoResponse, error) {
	return s.mutar(ctx, sesion, func(c *carrito.Carrito) error {
		c.Quitar(productoID)
		return nil
	})
}

func (s *carritoService) Vaciar(ctx context.Context, sesion string) error {
	if err := s.repo.Delete(ctx, sesion); err != nil {
		return colaborador("vaciar carrito", err)
	}
	return nil
}

func (s *carritoService) Confirmar(ctx context.Context, sesion, vendedor string) (*dto.VentaResponse, error) {
	c, err := s.cargar(ctx, sesion)
	if err != nil {
		return nil, err
	}
	venta, err := s.ventas.Registrar(ctx, vendedor, c)
	if errors.Is(err, ErrCommitParcial) {
		if derr := s.repo.Delete(ctx, sesion); derr != nil {
			log.Error().Err(derr).Str("sesion", sesion).Msg("carrito no eliminado tras un commit parcial")
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, sesion); err != nil {
		// The sale is final; a leftover cart only costs the seller a manual clear.
		log.Warn().Err(err).Str("sesion", sesion).Str("venta_id", venta.ID).Msg("carrito no eliminado tras la venta")
	}
	return venta, nil
}

func (s *carritoService) cargar(ctx context.Context, sesion string) (*carrito.Carrito, error) {
	c, err := s.repo.Get(ctx, sesion)
	if err != nil {
		return nil, colaborador("leer carrito", err)
	}
	return c, nil
}

// mutar loads the cart, applies fn and saves it back only when fn succeeded.
func (s *carritoService) mutar(ctx context.Context, sesion string, fn func(c *carrito.Carrito) error) (*dto.CarritoResponse, error) {
	c, err := s.cargar(ctx, sesion)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, sesion, c); err != nil {
		return nil, colaborador("guardar carrito", err)
	}
	return carritoToResponse(c), nil
}

func (s *carritoService) resolverProducto(ctx context.Context, req dto.AgregarItemRequest) (*model.Producto, error) {
	if req.ProductoID != "" {
		id, err := uuid.Parse(req.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("%w: producto_id %q", ErrProductoNoEncontrado, req.ProductoID)
		}
		p, err := s.productoRepo.FindByID(ctx, id)
		if err != nil {
			return nil, productoError(err)
		}
		return p, nil
	}
	p, err := s.productoRepo.FindByCodigo(ctx, req.Codigo)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: código %q", ErrProductoNoEncontrado, req.Codigo)
	}
	if err != nil {
		return nil, colaborador("buscar producto", err)
	}
	return p, nil
}

func carritoToResponse(c *carrito.Carrito) *dto.CarritoResponse {
	items := make([]dto.ItemCarritoResponse, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, dto.ItemCarritoResponse{
			ProductoID: it.ProductoID.String(),
			Nombre:     it.Nombre,
			Precio:     it.Precio,
			Cantidad:   it.Cantidad,
			Subtotal:   it.Subtotal(),
		})
	}
	return &dto.CarritoResponse{
		Items:    items,
		Total:    c.Total(),
		Lineas:   len(c.Items),
		Unidades: c.Unidades(),
	}
}
