package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gabrilr/ferreteria-sistema/internal/carrito"
	"github.com/gabrilr/ferreteria-sistema/internal/dto"
	"github.com/gabrilr/ferreteria-sistema/internal/model"
	"github.com/gabrilr/ferreteria-sistema/internal/repository"
	"github.com/gabrilr/ferreteria-sistema/internal/resumen"
	"github.com/gabrilr/ferreteria-sistema/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Despachador is the async side of the protocols: closing reports and the
// reconciliation list. *worker.Dispatcher implements it.
type Despachador interface {
	EncolarReporteCorte(ctx context.Context, corteID uuid.UUID) error
	RegistrarInconsistencia(ctx context.Context, inc worker.Inconsistencia) error
}

type VentaService interface {
	// Registrar commits the cart as a completed sale and empties it on success.
	Registrar(ctx context.Context, vendedor string, c *carrito.Carrito) (*dto.VentaResponse, error)
	// RegistrarItems builds a cart from req against the live catalog and commits it.
	RegistrarItems(ctx context.Context, vendedor string, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	Cancelar(ctx context.Context, id uuid.UUID, por string) (*dto.VentaResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	Listar(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
	ResumenDelDia(ctx context.Context, fecha string) (*dto.ResumenDiaResponse, error)
}

type ventaService struct {
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	movRepo      repository.MovimientoStockRepository
	corteRepo    repository.CorteRepository
	dispatcher   Despachador
	cal          Calendario
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	movRepo repository.MovimientoStockRepository,
	corteRepo repository.CorteRepository,
	dispatcher Despachador,
	cal Calendario,
) VentaService {
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		movRepo:      movRepo,
		corteRepo:    corteRepo,
		dispatcher:   dispatcher,
		cal:          cal,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Registrar ─────────────────────────────────────────────────────────────────
//   1. Reject an empty cart and a day that is already closed
//   2. Build the sale from the prices captured in the cart
//   3. TX: lock and re-validate every line against the live catalog (all or nothing),
//      persist the sale, descontar stock + movimiento per line
//   4. Clear the cart
//
// Rows are locked in ProductoID order so two carts sharing products cannot deadlock.
// Inside a transaction a failed deduction rolls the sale back. Without one (nil DB)
// the applied deductions are returned and the sale is deleted; only when that undo
// fails is the result a CommitParcialError, which empties the cart and goes to the
// reconciliation list.

func (s *ventaService) Registrar(ctx context.Context, vendedor string, c *carrito.Carrito) (*dto.VentaResponse, error) {
	if c == nil || c.Vacio() {
		return nil, ErrCarritoVacio
	}

	ahora := s.cal.Hoy()
	if err := s.verificarDiaAbierto(ctx, ahora); err != nil {
		return nil, err
	}

	venta := model.Venta{
		ID:        uuid.New(),
		Vendedor:  vendedor,
		Estado:    model.EstadoVentaCompletada,
		CreatedAt: ahora,
	}
	total := decimal.Zero
	for i, it := range c.Items {
		subtotal := it.Subtotal()
		venta.Items = append(venta.Items, model.VentaItem{
			ID:             uuid.New(),
			VentaID:        venta.ID,
			Posicion:       i + 1,
			ProductoID:     it.ProductoID,
			Nombre:         it.Nombre,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.Precio,
			Subtotal:       subtotal,
		})
		total = total.Add(subtotal)
	}
	venta.Total = total

	db := s.repo.DB()
	orden := ordenarPorProducto(venta.Items)
	var (
		parcial   *CommitParcialError
		aplicados []model.VentaItem
	)
	stock := make(map[uuid.UUID]int, len(venta.Items))
	txErr := runTx(ctx, db, func(tx *gorm.DB) error {
		for _, it := range orden {
			p, err := s.productoRepo.FindByIDForUpdateTx(tx, it.ProductoID)
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrProductoNoEncontrado, it.Nombre)
			}
			if err != nil {
				return colaborador("leer producto", err)
			}
			if it.Cantidad > p.Stock {
				return &carrito.StockInsuficienteError{
					ProductoID: p.ID,
					Nombre:     p.Nombre,
					Solicitado: it.Cantidad,
					Disponible: p.Stock,
				}
			}
			stock[p.ID] = p.Stock
		}

		if err := s.repo.Create(ctx, tx, &venta); err != nil {
			return colaborador("registrar venta", err)
		}

		for i, it := range orden {
			if err := s.productoRepo.DescontarStockTx(tx, it.ProductoID, it.Cantidad); err != nil {
				parcial = &CommitParcialError{VentaID: venta.ID, ProductoID: it.ProductoID, Err: err}
				aplicados = orden[:i]
				return parcial
			}
			antes := stock[it.ProductoID]
			stock[it.ProductoID] = antes - it.Cantidad
			if err := s.registrarMovimiento(tx, &model.MovimientoStock{
				ProductoID:    it.ProductoID,
				Tipo:          model.MovimientoVenta,
				Cantidad:      -it.Cantidad,
				StockAnterior: antes,
				StockNuevo:    antes - it.Cantidad,
				Motivo:        "Venta " + venta.ID.String(),
				ReferenciaID:  &venta.ID,
			}); err != nil {
				return err
			}
		}
		return nil
	})

	if txErr != nil {
		if parcial == nil {
			return nil, txErr
		}
		if db == nil && !s.revertirRegistro(ctx, &venta, aplicados, parcial.ProductoID, stock) {
			log.Error().Err(parcial.Err).
				Str("venta_id", parcial.VentaID.String()).
				Str("producto_id", parcial.ProductoID.String()).
				Msg("venta registrada sin descontar todo el stock")
			// The lines may already be sold: a retry of the same cart must not sell them again.
			c.Vaciar()
			return nil, parcial
		}
		// Nothing was retained, either by the rollback or by revertirRegistro.
		if errors.Is(parcial.Err, repository.ErrStockInsuficiente) {
			return nil, &carrito.StockInsuficienteError{
				ProductoID: parcial.ProductoID,
				Nombre:     nombreItem(venta.Items, parcial.ProductoID),
				Solicitado: cantidadItem(venta.Items, parcial.ProductoID),
				Disponible: stock[parcial.ProductoID],
			}
		}
		return nil, colaborador("descontar stock", parcial.Err)
	}

	c.Vaciar()
	log.Info().Str("venta_id", venta.ID.String()).Str("vendedor", vendedor).
		Str("total", venta.Total.StringFixed(2)).Msg("venta registrada")
	return ventaToResponse(&venta), nil
}

// revertirRegistro undoes a sale whose deduction failed midway without a transaction:
// the applied lines get their stock back and the sale is deleted. Whatever cannot
// be undone is sent to reconciliation and false is returned.
func (s *ventaService) revertirRegistro(ctx context.Context, venta *model.Venta, aplicados []model.VentaItem, fallido uuid.UUID, stock map[uuid.UUID]int) bool {
	consistente := true
	for _, it := range aplicados {
		if err := s.productoRepo.IncrementarStockTx(nil, it.ProductoID, it.Cantidad); err != nil {
			consistente = false
			s.reportarInconsistencia(ctx, "registrar", venta.ID, it.ProductoID, err)
			continue
		}
		antes := stock[it.ProductoID]
		stock[it.ProductoID] = antes + it.Cantidad
		_ = s.registrarMovimiento(nil, &model.MovimientoStock{
			ProductoID:    it.ProductoID,
			Tipo:          model.MovimientoReversionVenta,
			Cantidad:      it.Cantidad,
			StockAnterior: antes,
			StockNuevo:    antes + it.Cantidad,
			Motivo:        "Reversión venta " + venta.ID.String(),
			ReferenciaID:  &venta.ID,
		})
	}
	if !consistente {
		return false
	}
	if err := s.repo.EliminarTx(ctx, nil, venta.ID); err != nil {
		s.reportarInconsistencia(ctx, "registrar", venta.ID, fallido, err)
		return false
	}
	return true
}

// ── RegistrarItems ────────────────────────────────────────────────────────────

func (s *ventaService) RegistrarItems(ctx context.Context, vendedor string, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	c := carrito.New()
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("%w: producto_id %q", ErrProductoNoEncontrado, item.ProductoID)
		}
		p, err := s.productoRepo.FindByID(ctx, pid)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductoNoEncontrado, pid)
		}
		if err != nil {
			return nil, colaborador("leer producto", err)
		}
		if p.Stock <= 0 {
			return nil, fmt.Errorf("%w: %s", carrito.ErrSinStock, p.Nombre)
		}
		if err := c.EstablecerCantidad(*p, c.Cantidad(pid)+item.Cantidad); err != nil {
			return nil, err
		}
	}
	return s.Registrar(ctx, vendedor, c)
}

// ── Cancelar ──────────────────────────────────────────────────────────────────
// completada → cancelada, then every line's quantity goes back to stock.
// The conditional update in CancelarTx guarantees a single reversal even when two
// cancellations race past the estado check.

func (s *ventaService) Cancelar(ctx context.Context, id uuid.UUID, por string) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrVentaNoEncontrada
	}
	if err != nil {
		return nil, colaborador("leer venta", err)
	}
	if !venta.Completada() {
		return nil, ErrVentaYaCancelada
	}
	if err := s.verificarDiaAbierto(ctx, venta.CreatedAt); err != nil {
		return nil, err
	}

	ahora := s.cal.Hoy()
	db := s.repo.DB()
	txErr := runTx(ctx, db, func(tx *gorm.DB) error {
		if err := s.repo.CancelarTx(ctx, tx, id, por, ahora); err != nil {
			if errors.Is(err, repository.ErrSinCambios) {
				return ErrVentaYaCancelada
			}
			return colaborador("cancelar venta", err)
		}

		orden := ordenarPorProducto(venta.Items)
		for i, it := range orden {
			// A product removed from the catalog still gets its units back.
			antes := -1
			p, err := s.productoRepo.FindByIDForUpdateTx(tx, it.ProductoID)
			switch {
			case err == nil:
				antes = p.Stock
			case !errors.Is(err, repository.ErrNotFound):
				if db == nil {
					s.compensarCancelacion(ctx, venta, orden[:i], it.ProductoID, err)
				}
				return colaborador("leer producto", err)
			}
			if err := s.productoRepo.IncrementarStockTx(tx, it.ProductoID, it.Cantidad); err != nil {
				if db == nil {
					s.compensarCancelacion(ctx, venta, orden[:i], it.ProductoID, err)
				}
				return colaborador("restaurar stock", err)
			}
			mov := &model.MovimientoStock{
				ProductoID:   it.ProductoID,
				Tipo:         model.MovimientoCancelacionVenta,
				Cantidad:     it.Cantidad,
				Motivo:       "Cancelación venta " + venta.ID.String(),
				ReferenciaID: &venta.ID,
			}
			if antes >= 0 {
				mov.StockAnterior = antes
				mov.StockNuevo = antes + it.Cantidad
			}
			if err := s.registrarMovimiento(tx, mov); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	venta.Estado = model.EstadoVentaCancelada
	venta.CanceladaAt = &ahora
	venta.CanceladaPor = &por
	log.Info().Str("venta_id", venta.ID.String()).Str("por", por).Msg("venta cancelada")
	return ventaToResponse(venta), nil
}

// compensarCancelacion undoes a partially applied cancellation when there is no
// transaction to roll back. What cannot be undone is sent to reconciliation.
func (s *ventaService) compensarCancelacion(ctx context.Context, venta *model.Venta, aplicados []model.VentaItem, fallido uuid.UUID, causa error) {
	consistente := true
	for _, it := range aplicados {
		if err := s.productoRepo.DescontarStockTx(nil, it.ProductoID, it.Cantidad); err != nil {
			consistente = false
			s.reportarInconsistencia(ctx, "cancelar", venta.ID, it.ProductoID, err)
		}
	}
	if consistente {
		if err := s.repo.RestaurarEstadoTx(ctx, nil, venta.ID); err != nil {
			consistente = false
			s.reportarInconsistencia(ctx, "cancelar", venta.ID, fallido, err)
		}
	}
	if !consistente {
		log.Error().Err(causa).Str("venta_id", venta.ID.String()).Str("producto_id", fallido.String()).
			Msg("cancelación aplicada parcialmente")
	}
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *ventaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrVentaNoEncontrada
	}
	if err != nil {
		return nil, colaborador("leer venta", err)
	}
	return ventaToResponse(venta), nil
}

func (s *ventaService) Listar(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	dia, err := s.cal.Parse(filter.Fecha)
	if err != nil {
		return nil, err
	}
	desde, hasta := resumen.LimitesDelDia(dia)

	ventas, total, err := s.repo.List(ctx, repository.VentaFilter{
		Desde:  desde,
		Hasta:  hasta,
		Estado: filter.Estado,
		Page:   filter.Page,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, colaborador("listar ventas", err)
	}

	resp := &dto.VentaListResponse{
		Data:  make([]dto.VentaResponse, 0, len(ventas)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range ventas {
		resp.Data = append(resp.Data, *ventaToResponse(&ventas[i]))
	}
	return resp, nil
}

func (s *ventaService) ResumenDelDia(ctx context.Context, fecha string) (*dto.ResumenDiaResponse, error) {
	dia, err := s.cal.Parse(fecha)
	if err != nil {
		return nil, err
	}
	r, err := resumenDe(ctx, s.repo, dia)
	if err != nil {
		return nil, err
	}
	resp := resumenToResponse(r)
	return &resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// verificarDiaAbierto rejects writes on a calendar day that already has a closing.
func (s *ventaService) verificarDiaAbierto(ctx context.Context, t time.Time) error {
	_, err := s.corteRepo.FindByFecha(ctx, s.cal.Fecha(t))
	switch {
	case err == nil:
		return ErrCajaCerrada
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return colaborador("consultar corte de caja", err)
	}
}

// registrarMovimiento records the stock audit entry. Inside a transaction a failure
// aborts the unit; without one the sale and stock are already consistent, so the
// missing audit row is only logged.
func (s *ventaService) registrarMovimiento(tx *gorm.DB, mov *model.MovimientoStock) error {
	if err := s.movRepo.CreateTx(tx, mov); err != nil {
		if tx != nil {
			return colaborador("registrar movimiento de stock", err)
		}
		log.Warn().Err(err).Str("producto_id", mov.ProductoID.String()).Msg("movimiento de stock no registrado")
	}
	return nil
}

func (s *ventaService) reportarInconsistencia(ctx context.Context, op string, ventaID, productoID uuid.UUID, causa error) {
	if s.dispatcher == nil {
		return
	}
	inc := worker.Inconsistencia{
		VentaID:     ventaID.String(),
		ProductoID:  productoID.String(),
		Operacion:   op,
		Motivo:      causa.Error(),
		DetectadaAt: s.cal.Hoy().Format(time.RFC3339),
	}
	if err := s.dispatcher.RegistrarInconsistencia(ctx, inc); err != nil {
		log.Error().Err(err).Str("venta_id", inc.VentaID).Msg("no se pudo registrar la inconsistencia")
	}
}

func resumenDe(ctx context.Context, repo repository.VentaRepository, dia time.Time) (resumen.Resumen, error) {
	desde, hasta := resumen.LimitesDelDia(dia)
	ventas, err := repo.ListByRango(ctx, desde, hasta)
	if err != nil {
		return resumen.Resumen{}, colaborador("listar ventas del día", err)
	}
	return resumen.Calcular(ventas, dia), nil
}

// ordenarPorProducto returns a copy of items sorted by ProductoID, the order in
// which product rows are locked.
func ordenarPorProducto(items []model.VentaItem) []model.VentaItem {
	orden := append([]model.VentaItem(nil), items...)
	sort.SliceStable(orden, func(i, j int) bool {
		return bytes.Compare(orden[i].ProductoID[:], orden[j].ProductoID[:]) < 0
	})
	return orden
}

func nombreItem(items []model.VentaItem, productoID uuid.UUID) string {
	for _, it := range items {
		if it.ProductoID == productoID {
			return it.Nombre
		}
	}
	return productoID.String()
}

func cantidadItem(items []model.VentaItem, productoID uuid.UUID) int {
	for _, it := range items {
		if it.ProductoID == productoID {
			return it.Cantidad
		}
	}
	return 0
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, it := range v.Items {
		nombre := it.Nombre
		if nombre == "" && it.Producto != nil {
			nombre = it.Producto.Nombre
		}
		items = append(items, dto.ItemVentaResponse{
			ProductoID:     it.ProductoID.String(),
			Producto:       nombre,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Subtotal:       it.Subtotal,
		})
	}
	resp := &dto.VentaResponse{
		ID:           v.ID.String(),
		Vendedor:     v.Vendedor,
		Items:        items,
		Total:        v.Total,
		Estado:       v.Estado,
		CreatedAt:    v.CreatedAt.Format(time.RFC3339),
		CanceladaPor: v.CanceladaPor,
	}
	if v.CanceladaAt != nil {
		t := v.CanceladaAt.Format(time.RFC3339)
		resp.CanceladaAt = &t
	}
	return resp
}

func resumenToResponse(r resumen.Resumen) dto.ResumenDiaResponse {
	return dto.ResumenDiaResponse{
		Fecha:             r.Fecha,
		VentasCompletadas: r.VentasCompletadas,
		VentasCanceladas:  r.VentasCanceladas,
		TotalCompletadas:  r.TotalCompletadas,
		TotalCanceladas:   r.TotalCanceladas,
		IngresosBrutos:    r.IngresosBrutos,
		TicketPromedio:    r.TicketPromedio,
		TasaExito:         r.TasaExitoPct(),
		ProductosVendidos: r.ProductosVendidos,
	}
}
