package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gabrilr/ferreteria-sistema/internal/apierror"
	"github.com/gabrilr/ferreteria-sistema/internal/carrito"
	"github.com/gabrilr/ferreteria-sistema/internal/dto"
	"github.com/gabrilr/ferreteria-sistema/internal/handler"
	"github.com/gabrilr/ferreteria-sistema/internal/middleware"
	"github.com/gabrilr/ferreteria-sistema/internal/service"
	"github.com/gabrilr/ferreteria-sistema/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type servicios struct {
	ventas    *stubVentaSvc
	cortes    *stubCorteSvc
	carritos  *stubCarritoSvc
	productos *stubProductoSvc
	conciliar *stubConciliador
}

// newRouter mounts the handlers behind a fake authentication step that sets the
// claims JWTAuth would have produced.
func newRouter(s *servicios) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &middleware.JWTClaims{
			UserID: "u-1",
			Nombre: "Ana",
			Rol:    middleware.RolSupervisor,
		})
		c.Next()
	})

	ventasH := handler.NewVentasHandler(s.ventas, s.conciliar)
	corteH := handler.NewCorteCajaHandler(s.cortes)
	carritoH := handler.NewCarritoHandler(s.carritos)
	productosH := handler.NewProductosHandler(s.productos)

	r.POST("/v1/ventas", ventasH.Registrar)
	r.GET("/v1/ventas", ventasH.Listar)
	r.GET("/v1/ventas/resumen", ventasH.Resumen)
	r.GET("/v1/ventas/reconciliacion", ventasH.Reconciliacion)
	r.GET("/v1/ventas/:id", ventasH.ObtenerPorID)
	r.PUT("/v1/ventas/:id/cancelar", ventasH.Cancelar)

	r.POST("/v1/corte-caja", corteH.Cerrar)
	r.GET("/v1/corte-caja", corteH.Listar)
	r.GET("/v1/corte-caja/today", corteH.Hoy)
	r.GET("/v1/corte-caja/resumen/today", corteH.ResumenHoy)

	r.GET("/v1/carrito", carritoH.Obtener)
	r.POST("/v1/carrito/items", carritoH.Agregar)
	r.PUT("/v1/carrito/items/:producto_id", carritoH.EstablecerCantidad)
	r.POST("/v1/carrito/confirmar", carritoH.Confirmar)

	r.GET("/v1/productos", productosH.Listar)
	r.GET("/v1/productos/codigo/:codigo", productosH.BuscarPorCodigo)
	return r
}

func nuevosServicios() *servicios {
	return &servicios{
		ventas:    &stubVentaSvc{},
		cortes:    &stubCorteSvc{},
		carritos:  &stubCarritoSvc{},
		productos: &stubProductoSvc{},
		conciliar: &stubConciliador{},
	}
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Buffer
	switch b := body.(type) {
	case nil:
		buf = &bytes.Buffer{}
	case string:
		buf = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		buf = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func apiErr(t *testing.T, w *httptest.ResponseRecorder) apierror.APIError {
	t.Helper()
	var e apierror.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

// ── Ventas ───────────────────────────────────────────────────────────────────

func TestRegistrarVenta_Creada(t *testing.T) {
	s := nuevosServicios()
	s.ventas.resp = &dto.VentaResponse{ID: uuid.NewString(), Estado: "completada"}

	w := do(t, newRouter(s), http.MethodPost, "/v1/ventas", dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{{ProductoID: uuid.NewString(), Cantidad: 2}},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Ana", s.ventas.vendedor, "seller identity comes from the token")
}

func TestRegistrarVenta_Validacion(t *testing.T) {
	s := nuevosServicios()
	r := newRouter(s)

	w := do(t, r, http.MethodPost, "/v1/ventas", `{"items": [}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/v1/ventas", dto.RegistrarVentaRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, r, http.MethodPost, "/v1/ventas", dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{{ProductoID: "no-es-uuid", Cantidad: 0}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var verr apierror.ValidationError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verr))
	assert.Equal(t, apierror.CodeValidacion, verr.Code)
	assert.Equal(t, "uuid", verr.Fields["ProductoID"])
}

func TestRegistrarVenta_MapeoDeErrores(t *testing.T) {
	casos := []struct {
		nombre string
		err    error
		status int
		code   string
	}{
		{"sin stock", fmt.Errorf("%w: Clavos", carrito.ErrSinStock), http.StatusConflict, apierror.CodeSinStock},
		{"carrito vacio", service.ErrCarritoVacio, http.StatusUnprocessableEntity, apierror.CodeCarritoVacio},
		{"producto", service.ErrProductoNoEncontrado, http.StatusNotFound, apierror.CodeNoEncontrado},
		{"caja cerrada", service.ErrCajaCerrada, http.StatusConflict, apierror.CodeCajaCerrada},
		{"commit parcial", &service.CommitParcialError{VentaID: uuid.New(), ProductoID: uuid.New(), Err: errors.New("timeout")},
			http.StatusInternalServerError, apierror.CodeCommitParcial},
		{"almacen", fmt.Errorf("leer producto: %w: %w", service.ErrColaboradorNoDisponible, errors.New("dial tcp")),
			http.StatusServiceUnavailable, apierror.CodeNoDisponible},
		{"desconocido", errors.New("boom"), http.StatusInternalServerError, apierror.CodeInterno},
	}
	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			s := nuevosServicios()
			s.ventas.err = tc.err

			w := do(t, newRouter(s), http.MethodPost, "/v1/ventas", dto.RegistrarVentaRequest{
				Items: []dto.ItemVentaRequest{{ProductoID: uuid.NewString(), Cantidad: 1}},
			})

			assert.Equal(t, tc.status, w.Code)
			e := apiErr(t, w)
			assert.Equal(t, tc.code, e.Code)
			assert.NotContains(t, e.Detail, "dial tcp", "store internals are not exposed")
		})
	}
}

func TestRegistrarVenta_StockInsuficienteInformaDisponible(t *testing.T) {
	s := nuevosServicios()
	s.ventas.err = &carrito.StockInsuficienteError{ProductoID: uuid.New(), Nombre: "Pinza", Solicitado: 5, Disponible: 2}

	w := do(t, newRouter(s), http.MethodPost, "/v1/ventas", dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{{ProductoID: uuid.NewString(), Cantidad: 5}},
	})

	require.Equal(t, http.StatusConflict, w.Code)
	e := apiErr(t, w)
	assert.Equal(t, apierror.CodeStockInsuficiente, e.Code)
	require.NotNil(t, e.Disponible)
	assert.Equal(t, 2, *e.Disponible)
	assert.Contains(t, e.Detail, "Pinza")
}

func TestCancelarVenta(t *testing.T) {
	s := nuevosServicios()
	r := newRouter(s)

	w := do(t, r, http.MethodPut, "/v1/ventas/no-es-uuid/cancelar", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.ventas.resp = &dto.VentaResponse{Estado: "cancelada"}
	w = do(t, r, http.MethodPut, "/v1/ventas/"+uuid.NewString()+"/cancelar", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ana", s.ventas.vendedor)

	s.ventas.err = service.ErrVentaYaCancelada
	w = do(t, r, http.MethodPut, "/v1/ventas/"+uuid.NewString()+"/cancelar", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apierror.CodeVentaYaCancelada, apiErr(t, w).Code)

	s.ventas.err = service.ErrVentaNoEncontrada
	w = do(t, r, http.MethodPut, "/v1/ventas/"+uuid.NewString()+"/cancelar", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListarVentas_Query(t *testing.T) {
	s := nuevosServicios()
	r := newRouter(s)

	w := do(t, r, http.MethodGet, "/v1/ventas?fecha=2024-05-01&estado=cancelada", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-05-01", s.ventas.filtro.Fecha)
	assert.Equal(t, "cancelada", s.ventas.filtro.Estado)
	assert.Equal(t, 1, s.ventas.filtro.Page)
	assert.Equal(t, 50, s.ventas.filtro.Limit)

	w = do(t, r, http.MethodGet, "/v1/ventas?fecha=01-05-2024", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, r, http.MethodGet, "/v1/ventas?estado=pendiente", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestResumenVentas_FechaInvalida(t *testing.T) {
	s := nuevosServicios()
	s.ventas.err = service.ErrFechaInvalida

	w := do(t, newRouter(s), http.MethodGet, "/v1/ventas/resumen?fecha=ayer", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierror.CodeValidacion, apiErr(t, w).Code)
}

func TestReconciliacion(t *testing.T) {
	s := nuevosServicios()
	s.conciliar.pendientes = []worker.Inconsistencia{
		{VentaID: "v1", Operacion: "registrar"},
		{VentaID: "v2", Operacion: "cancelar"},
	}

	w := do(t, newRouter(s), http.MethodGet, "/v1/ventas/reconciliacion?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out []worker.Inconsistencia
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "v1", out[0].VentaID)
}

// ── Corte de caja ────────────────────────────────────────────────────────────

func TestCerrarCaja(t *testing.T) {
	s := nuevosServicios()
	s.cortes.resp = &dto.CorteCajaResponse{ID: uuid.NewString(), Fecha: "2024-05-01"}
	r := newRouter(s)

	w := do(t, r, http.MethodPost, "/v1/corte-caja", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Ana", s.cortes.responsable)

	w = do(t, r, http.MethodPost, "/v1/corte-caja", dto.CerrarCajaRequest{Responsable: "Luis Pérez"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Luis Pérez", s.cortes.responsable)

	s.cortes.err = service.ErrCorteYaRealizado
	w = do(t, r, http.MethodPost, "/v1/corte-caja", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apierror.CodeCorteYaRealizado, apiErr(t, w).Code)
}

// A chunked body has no Content-Length and must still be read.
func TestCerrarCaja_CuerpoSinLongitud(t *testing.T) {
	s := nuevosServicios()
	s.cortes.resp = &dto.CorteCajaResponse{ID: uuid.NewString(), Fecha: "2024-05-01"}
	r := newRouter(s)

	enviar := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/corte-caja", io.MultiReader(strings.NewReader(body)))
		req.Header.Set("Content-Type", "application/json")
		require.Equal(t, int64(-1), req.ContentLength)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := enviar(`{"responsable": "Marta Ríos"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Marta Ríos", s.cortes.responsable)

	w = enviar(``)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Ana", s.cortes.responsable)

	w = enviar(`{"responsable": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = enviar(`{"responsable": "L"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCorteHoy_NoEncontrado(t *testing.T) {
	s := nuevosServicios()
	s.cortes.err = service.ErrCorteNoEncontrado

	w := do(t, newRouter(s), http.MethodGet, "/v1/corte-caja/today", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResumenHoy(t *testing.T) {
	s := nuevosServicios()
	w := do(t, newRouter(s), http.MethodGet, "/v1/corte-caja/resumen/today", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.ResumenHoyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.CorteYaRealizado)
}

// ── Carrito ──────────────────────────────────────────────────────────────────

func TestCarrito_SesionDelToken(t *testing.T) {
	s := nuevosServicios()
	r := newRouter(s)

	w := do(t, r, http.MethodGet, "/v1/carrito", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", s.carritos.sesion)

	w = do(t, r, http.MethodPost, "/v1/carrito/confirmar", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCarrito_AgregarValidacion(t *testing.T) {
	s := nuevosServicios()
	r := newRouter(s)

	w := do(t, r, http.MethodPost, "/v1/carrito/items", dto.AgregarItemRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, r, http.MethodPost, "/v1/carrito/items", dto.AgregarItemRequest{Codigo: "MART-16"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPut, "/v1/carrito/items/xyz", dto.CantidadItemRequest{Cantidad: 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCarrito_ConfirmarVacio(t *testing.T) {
	s := nuevosServicios()
	s.carritos.err = service.ErrCarritoVacio

	w := do(t, newRouter(s), http.MethodPost, "/v1/carrito/confirmar", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apierror.CodeCarritoVacio, apiErr(t, w).Code)
}

// ── Productos ────────────────────────────────────────────────────────────────

func TestProductos(t *testing.T) {
	s := nuevosServicios()
	r := newRouter(s)

	w := do(t, r, http.MethodGet, "/v1/productos?limit=500", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, r, http.MethodGet, "/v1/productos/codigo/MART-16", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	s.productos.err = service.ErrProductoNoEncontrado
	w = do(t, r, http.MethodGet, "/v1/productos/codigo/NADA", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
