package handler

import (
	"net/http"

	"github.com/gabrilr/ferreteria-sistema/internal/dto"
	"github.com/gabrilr/ferreteria-sistema/internal/middleware"
	"github.com/gabrilr/ferreteria-sistema/internal/service"

	"github.com/gin-gonic/gin"
)

// CarritoHandler exposes the cart of the authenticated seller.
// The session is taken from the token, never from the request.
type CarritoHandler struct{ svc service.CarritoService }

func NewCarritoHandler(svc service.CarritoService) *CarritoHandler {
	return &CarritoHandler{svc: svc}
}

// Obtener godoc
// @Summary      Ver carrito
// @Tags         carrito
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.CarritoResponse
// @Router       /v1/carrito [get]
func (h *CarritoHandler) Obtener(c *gin.Context) {
	resp, err := h.svc.Obtener(c.Request.Context(), middleware.GetClaims(c).Sesion())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Agregar godoc
// @Summary      Agregar producto al carrito
// @Description  Agrega una unidad o incrementa la línea existente, validando contra el stock vigente.
// @Tags         carrito
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.AgregarItemRequest true "Producto por id o código"
// @Success      200  {object} dto.CarritoResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/carrito/items [post]
func (h *CarritoHandler) Agregar(c *gin.Context) {
	var req dto.AgregarItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Agregar(c.Request.Context(), middleware.GetClaims(c).Sesion(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EstablecerCantidad godoc
// @Summary      Cambiar cantidad de una línea
// @Description  Cantidad 0 o negativa quita la línea.
// @Tags         carrito
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        producto_id path     string                  true "UUID del producto"
// @Param        body        body     dto.CantidadItemRequest true "Nueva cantidad"
// @Success      200         {object} dto.CarritoResponse
// @Failure      409         {object} apierror.APIError
// @Router       /v1/carrito/items/{producto_id} [put]
func (h *CarritoHandler) EstablecerCantidad(c *gin.Context) {
	id, ok := parseUUIDParam(c, "producto_id")
	if !ok {
		return
	}
	var req dto.CantidadItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.EstablecerCantidad(c.Request.Context(), middleware.GetClaims(c).Sesion(), id, req.Cantidad)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Quitar godoc
// @Summary      Quitar línea del carrito
// @Tags         carrito
// @Produce      json
// @Security     BearerAuth
// @Param        producto_id path     string true "UUID del producto"
// @Success      200         {object} dto.CarritoResponse
// @Router       /v1/carrito/items/{producto_id} [delete]
func (h *CarritoHandler) Quitar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "producto_id")
	if !ok {
		return
	}
	resp, err := h.svc.Quitar(c.Request.Context(), middleware.GetClaims(c).Sesion(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Vaciar godoc
// @Summary      Vaciar carrito
// @Tags         carrito
// @Security     BearerAuth
// @Success      204
// @Router       /v1/carrito [delete]
func (h *CarritoHandler) Vaciar(c *gin.Context) {
	if err := h.svc.Vaciar(c.Request.Context(), middleware.GetClaims(c).Sesion()); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Confirmar godoc
// @Summary      Confirmar venta del carrito
// @Description  Registra la venta de forma atómica y vacía el carrito. Si falla, el carrito queda intacto.
// @Tags         carrito
// @Produce      json
// @Security     BearerAuth
// @Success      201 {object} dto.VentaResponse
// @Failure      409 {object} apierror.APIError
// @Failure      422 {object} apierror.APIError
// @Router       /v1/carrito/confirmar [post]
func (h *CarritoHandler) Confirmar(c *gin.Context) {
	claims := middleware.GetClaims(c)
	resp, err := h.svc.Confirmar(c.Request.Context(), claims.Sesion(), claims.Vendedor())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
