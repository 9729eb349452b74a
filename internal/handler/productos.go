package handler

import (
	"net/http"
	"strconv"

	"github.com/gabrilr/ferreteria-sistema/internal/dto"
	"github.com/gabrilr/ferreteria-sistema/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductosHandler struct{ svc service.ProductoService }

func NewProductosHandler(svc service.ProductoService) *ProductosHandler {
	return &ProductosHandler{svc: svc}
}

// Listar godoc
// @Summary      Listar productos
// @Description  Catálogo paginado con stock vigente; nombre filtra por nombre o código.
// @Tags         productos
// @Produce      json
// @Security     BearerAuth
// @Param        nombre query string false "Texto a buscar en nombre o código"
// @Param        page   query int    false "Página (default 1)"
// @Param        limit  query int    false "Registros por página (default 20)"
// @Success      200    {object} dto.ProductoListResponse
// @Failure      400    {object} apierror.APIError
// @Router       /v1/productos [get]
func (h *ProductosHandler) Listar(c *gin.Context) {
	var filter dto.ProductoFilter
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

// ObtenerPorID godoc
// @Summary      Obtener producto
// @Tags         productos
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "UUID del producto"
// @Success      200 {object} dto.ProductoResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/productos/{id} [get]
func (h *ProductosHandler) ObtenerPorID(c *gin.Context) {
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

// BuscarPorCodigo godoc
// @Summary      Buscar producto por código
// @Description  El código se compara sin distinguir mayúsculas.
// @Tags         productos
// @Produce      json
// @Security     BearerAuth
// @Param        codigo path     string true "Código del producto"
// @Success      200    {object} dto.ProductoResponse
// @Failure      404    {object} apierror.APIError
// @Router       /v1/productos/codigo/{codigo} [get]
func (h *ProductosHandler) BuscarPorCodigo(c *gin.Context) {
	resp, err := h.svc.BuscarPorCodigo(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Alertas godoc
// @Summary      Alertas de stock bajo
// @Description  Productos con stock igual o menor a su stock mínimo.
// @Tags         productos
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.AlertaStockResponse
// @Router       /v1/productos/alertas [get]
func (h *ProductosHandler) Alertas(c *gin.Context) {
	resp, err := h.svc.AlertasStockBajo(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movimientos godoc
// @Summary      Movimientos de stock de un producto
// @Tags         productos
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string true  "UUID del producto"
// @Param        limit query int    false "Máximo de registros (default 100)"
// @Success      200   {array} dto.MovimientoStockResponse
// @Failure      404   {object} apierror.APIError
// @Router       /v1/productos/{id}/movimientos [get]
func (h *ProductosHandler) Movimientos(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	resp, err := h.svc.Movimientos(c.Request.Context(), id, limit)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
