package service_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gabrilr/ferreteria-sistema/internal/carrito"
	"github.com/gabrilr/ferreteria-sistema/internal/model"
	"github.com/gabrilr/ferreteria-sistema/internal/repository"
	"github.com/gabrilr/ferreteria-sistema/internal/service"
	"github.com/gabrilr/ferreteria-sistema/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────
// In-memory repositories. DB() returns nil, so the services run without a transaction.

var errAlmacen = errors.New("connection refused")

type stubProductoRepo struct {
	mu        sync.Mutex
	productos map[uuid.UUID]*model.Producto
	// failures injected per product
	descontarErr   map[uuid.UUID]error
	incrementarErr map[uuid.UUID]error
	findErr        error
	bloqueos       []uuid.UUID // ids passed to FindByIDForUpdateTx, in call order
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{
		productos:      make(map[uuid.UUID]*model.Producto),
		descontarErr:   make(map[uuid.UUID]error),
		incrementarErr: make(map[uuid.UUID]error),
	}
}

func (r *stubProductoRepo) add(codigo, nombre, precio string, stock int) model.Producto {
	return r.addID(uuid.New(), codigo, nombre, precio, stock)
}

// addID fixes the id, and with it the position of the product in the lock order.
func (r *stubProductoRepo) addID(id uuid.UUID, codigo, nombre, precio string, stock int) model.Producto {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := &model.Producto{
		ID:     id,
		Codigo: codigo,
		Nombre: nombre,
		Precio: decimal.RequireFromString(precio),
		Stock:  stock,
		Activo: true,
	}
	r.productos[p.ID] = p
	return *p
}

func (r *stubProductoRepo) stock(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.productos[id].Stock
}

func (r *stubProductoRepo) setStock(id uuid.UUID, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.productos[id].Stock = n
}

func (r *stubProductoRepo) get(id uuid.UUID) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	p, ok := r.productos[id]
	if !ok || !p.Activo {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	return r.get(id)
}

func (r *stubProductoRepo) FindByCodigo(_ context.Context, codigo string) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.productos {
		if p.Activo && strings.EqualFold(p.Codigo, strings.TrimSpace(codigo)) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubProductoRepo) List(_ context.Context, f repository.ProductoFilter) ([]model.Producto, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Producto
	for _, p := range r.productos {
		if f.Nombre == "" || strings.Contains(strings.ToLower(p.Nombre), strings.ToLower(f.Nombre)) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) ListBajoStock(_ context.Context) ([]model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Producto
	for _, p := range r.productos {
		if p.Activo && p.BajoStockMinimo() {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out, nil
}

func (r *stubProductoRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	r.mu.Lock()
	r.bloqueos = append(r.bloqueos, id)
	r.mu.Unlock()
	return r.get(id)
}

func (r *stubProductoRepo) ordenBloqueos() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uuid.UUID(nil), r.bloqueos...)
}

func (r *stubProductoRepo) DescontarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.descontarErr[id]; err != nil {
		return err
	}
	p, ok := r.productos[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.Stock < cantidad {
		return repository.ErrStockInsuficiente
	}
	p.Stock -= cantidad
	return nil
}

func (r *stubProductoRepo) IncrementarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.incrementarErr[id]; err != nil {
		return err
	}
	p, ok := r.productos[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Stock += cantidad
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

type stubVentaRepo struct {
	mu        sync.Mutex
	ventas    map[uuid.UUID]*model.Venta
	createErr   error
	listErr     error
	cancelErr   error
	eliminarErr error
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func copiarVenta(v *model.Venta) model.Venta {
	cp := *v
	cp.Items = append([]model.VentaItem(nil), v.Items...)
	return cp
}

func (r *stubVentaRepo) Create(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	cp := copiarVenta(v)
	r.ventas[v.ID] = &cp
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := copiarVenta(v)
	return &cp, nil
}

func (r *stubVentaRepo) filtrar(f repository.VentaFilter) []model.Venta {
	var out []model.Venta
	for _, v := range r.ventas {
		if f.Estado != "" && f.Estado != "all" && v.Estado != f.Estado {
			continue
		}
		if !f.Desde.IsZero() && v.CreatedAt.Before(f.Desde) {
			continue
		}
		if !f.Hasta.IsZero() && !v.CreatedAt.Before(f.Hasta) {
			continue
		}
		out = append(out, copiarVenta(v))
	}
	return out
}

func (r *stubVentaRepo) List(_ context.Context, f repository.VentaFilter) ([]model.Venta, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	out := r.filtrar(f)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (r *stubVentaRepo) ListByRango(_ context.Context, desde, hasta time.Time) ([]model.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.filtrar(repository.VentaFilter{Desde: desde, Hasta: hasta}), nil
}

func (r *stubVentaRepo) CancelarTx(_ context.Context, _ *gorm.DB, id uuid.UUID, por string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelErr != nil {
		return r.cancelErr
	}
	v, ok := r.ventas[id]
	if !ok || v.Estado != model.EstadoVentaCompletada {
		return repository.ErrSinCambios
	}
	v.Estado = model.EstadoVentaCancelada
	v.CanceladaAt = &at
	v.CanceladaPor = &por
	return nil
}

func (r *stubVentaRepo) RestaurarEstadoTx(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[id]
	if !ok {
		return repository.ErrNotFound
	}
	v.Estado = model.EstadoVentaCompletada
	v.CanceladaAt = nil
	v.CanceladaPor = nil
	return nil
}

func (r *stubVentaRepo) EliminarTx(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.eliminarErr != nil {
		return r.eliminarErr
	}
	if _, ok := r.ventas[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.ventas, id)
	return nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

func (r *stubVentaRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ventas)
}

func (r *stubVentaRepo) estado(id uuid.UUID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ventas[id].Estado
}

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

type stubCorteRepo struct {
	mu        sync.Mutex
	cortes    map[string]*model.CorteCaja
	findErr   error
	createErr error
}

func newStubCorteRepo() *stubCorteRepo {
	return &stubCorteRepo{cortes: make(map[string]*model.CorteCaja)}
}

func (r *stubCorteRepo) FindByFecha(_ context.Context, fecha string) (*model.CorteCaja, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	c, ok := r.cortes[fecha]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCorteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CorteCaja, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cortes {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubCorteRepo) Create(_ context.Context, c *model.CorteCaja) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.cortes[c.Fecha]; ok {
		return repository.ErrDuplicado
	}
	cp := *c
	r.cortes[c.Fecha] = &cp
	return nil
}

func (r *stubCorteRepo) List(_ context.Context, _, _ int) ([]model.CorteCaja, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.CorteCaja, 0, len(r.cortes))
	for _, c := range r.cortes {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fecha > out[j].Fecha })
	return out, int64(len(out)), nil
}

var _ repository.CorteRepository = (*stubCorteRepo)(nil)

type stubMovimientoRepo struct {
	mu          sync.Mutex
	movimientos []model.MovimientoStock
}

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = uuid.New()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) ListByProducto(_ context.Context, productoID uuid.UUID, limit int) ([]model.MovimientoStock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.MovimientoStock
	for i := len(r.movimientos) - 1; i >= 0; i-- {
		if r.movimientos[i].ProductoID == productoID {
			out = append(out, r.movimientos[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubMovimientoRepo) all() []model.MovimientoStock {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.MovimientoStock(nil), r.movimientos...)
}

func (r *stubMovimientoRepo) deTipo(productoID uuid.UUID, tipo string) []model.MovimientoStock {
	var out []model.MovimientoStock
	for _, m := range r.all() {
		if m.ProductoID == productoID && m.Tipo == tipo {
			out = append(out, m)
		}
	}
	return out
}

var _ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)

type stubCarritoRepo struct {
	mu       sync.Mutex
	carritos map[string][]carrito.Item
	saveErr  error
}

func newStubCarritoRepo() *stubCarritoRepo {
	return &stubCarritoRepo{carritos: make(map[string][]carrito.Item)}
}

func (r *stubCarritoRepo) Get(_ context.Context, sesion string) (*carrito.Carrito, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := carrito.New()
	c.Items = append(c.Items, r.carritos[sesion]...)
	return c, nil
}

func (r *stubCarritoRepo) Save(_ context.Context, sesion string, c *carrito.Carrito) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if c.Vacio() {
		delete(r.carritos, sesion)
		return nil
	}
	r.carritos[sesion] = append([]carrito.Item(nil), c.Items...)
	return nil
}

func (r *stubCarritoRepo) Delete(_ context.Context, sesion string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carritos, sesion)
	return nil
}

var _ repository.CarritoRepository = (*stubCarritoRepo)(nil)

type stubDespachador struct {
	mu              sync.Mutex
	reportes        []uuid.UUID
	inconsistencias []worker.Inconsistencia
	encolarErr      error
}

func (d *stubDespachador) EncolarReporteCorte(_ context.Context, corteID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.encolarErr != nil {
		return d.encolarErr
	}
	d.reportes = append(d.reportes, corteID)
	return nil
}

func (d *stubDespachador) RegistrarInconsistencia(_ context.Context, inc worker.Inconsistencia) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inconsistencias = append(d.inconsistencias, inc)
	return nil
}

func (d *stubDespachador) pendientes() []worker.Inconsistencia {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]worker.Inconsistencia(nil), d.inconsistencias...)
}

var _ service.Despachador = (*stubDespachador)(nil)

// reloj is a settable clock for service.Calendario.
type reloj struct {
	mu sync.Mutex
	t  time.Time
}

func (r *reloj) ahora() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.t
}

func (r *reloj) avanzar(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.t = r.t.Add(d)
}

var zonaTienda = time.FixedZone("CST", -6*3600)

// ── Environment ───────────────────────────────────────────────────────────────

type entorno struct {
	productos   *stubProductoRepo
	ventas      *stubVentaRepo
	cortes      *stubCorteRepo
	movimientos *stubMovimientoRepo
	carritos    *stubCarritoRepo
	despachador *stubDespachador
	reloj       *reloj

	ventaSvc    service.VentaService
	corteSvc    service.CorteService
	carritoSvc  service.CarritoService
	productoSvc service.ProductoService
}

// nuevoEntorno starts the clock at 2024-05-01 09:00 store time.
func nuevoEntorno() *entorno {
	e := &entorno{
		productos:   newStubProductoRepo(),
		ventas:      newStubVentaRepo(),
		cortes:      newStubCorteRepo(),
		movimientos: &stubMovimientoRepo{},
		carritos:    newStubCarritoRepo(),
		despachador: &stubDespachador{},
		reloj:       &reloj{t: time.Date(2024, 5, 1, 9, 0, 0, 0, zonaTienda)},
	}
	cal := service.Calendario{Loc: zonaTienda, Ahora: e.reloj.ahora}
	e.ventaSvc = service.NewVentaService(e.ventas, e.productos, e.movimientos, e.cortes, e.despachador, cal)
	e.corteSvc = service.NewCorteService(e.cortes, e.ventas, e.despachador, cal)
	e.carritoSvc = service.NewCarritoService(e.carritos, e.productos, e.ventaSvc)
	e.productoSvc = service.NewProductoService(e.productos, e.movimientos)
	return e
}

func carritoCon(t interface{ Helper() }, lineas ...carrito.Item) *carrito.Carrito {
	t.Helper()
	c := carrito.New()
	c.Items = append(c.Items, lineas...)
	return c
}

func linea(p model.Producto, cantidad int) carrito.Item {
	return carrito.Item{ProductoID: p.ID, Nombre: p.Nombre, Precio: p.Precio, Cantidad: cantidad}
}
