package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gabrilr/ferreteria-sistema/internal/dto"
	"github.com/gabrilr/ferreteria-sistema/internal/middleware"
	"github.com/gabrilr/ferreteria-sistema/internal/service"
	"github.com/gabrilr/ferreteria-sistema/internal/worker"

	"github.com/gin-gonic/gin"
)

// Conciliador lists the sales waiting for manual reconciliation.
type Conciliador interface {
	Inconsistencias(ctx context.Context, limit int64) ([]worker.Inconsistencia, error)
}

type VentasHandler struct {
	svc       service.VentaService
	conciliar Conciliador
}

func NewVentasHandler(svc service.VentaService, conciliar Conciliador) *VentasHandler {
	return &VentasHandler{svc: svc, conciliar: conciliar}
}

// Registrar godoc
// @Summary      Registrar una venta
// @Description  Registra la venta y descuenta el stock de todas sus líneas en una sola transacción.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.RegistrarVentaRequest true "Líneas de la venta"
// @Success      201  {object} dto.VentaResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/ventas [post]
func (h *VentasHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarItems(c.Request.Context(), middleware.GetClaims(c).Vendedor(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Historial de ventas
// @Description  Ventas de un día (default hoy), filtrables por estado, más recientes primero.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        fecha  query string false "Fecha YYYY-MM-DD"
// @Param        estado query string false "completada | cancelada | all"
// @Param        page   query int    false "Página"
// @Param        limit  query int    false "Registros por página"
// @Success      200    {object} dto.VentaListResponse
// @Failure      400    {object} apierror.APIError
// @Router       /v1/ventas [get]
func (h *VentasHandler) Listar(c *gin.Context) {
	var filter dto.VentaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Resumen godoc
// @Summary      Resumen del día
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        fecha query    string false "Fecha YYYY-MM-DD (default hoy)"
// @Success      200   {object} dto.ResumenDiaResponse
// @Failure      400   {object} apierror.APIError
// @Router       /v1/ventas/resumen [get]
func (h *VentasHandler) Resumen(c *gin.Context) {
	resp, err := h.svc.ResumenDelDia(c.Request.Context(), c.Query("fecha"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID godoc
// @Summary      Detalle de venta
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "UUID de la venta"
// @Success      200 {object} dto.VentaResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/ventas/{id} [get]
func (h *VentasHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar godoc
// @Summary      Cancelar venta
// @Description  Marca la venta como cancelada y devuelve al stock cada línea, una sola vez.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "UUID de la venta"
// @Success      200 {object} dto.VentaResponse
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/ventas/{id}/cancelar [put]
func (h *VentasHandler) Cancelar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), id, middleware.GetClaims(c).Vendedor())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reconciliacion godoc
// @Summary      Ventas pendientes de conciliación
// @Description  Ventas cuyo efecto sobre el stock no pudo aplicarse por completo.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Máximo de registros (default 100)"
// @Success      200   {array} worker.Inconsistencia
// @Router       /v1/ventas/reconciliacion [get]
func (h *VentasHandler) Reconciliacion(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "100"), 10, 64)
	out, err := h.conciliar.Inconsistencias(c.Request.Context(), limit)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
