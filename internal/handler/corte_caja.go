package handler

import (
	"net/http"
	"strconv"

	"github.com/gabrilr/ferreteria-sistema/internal/dto"
	"github.com/gabrilr/ferreteria-sistema/internal/middleware"
	"github.com/gabrilr/ferreteria-sistema/internal/service"

	"github.com/gin-gonic/gin"
)

type CorteCajaHandler struct{ svc service.CorteService }

func NewCorteCajaHandler(svc service.CorteService) *CorteCajaHandler {
	return &CorteCajaHandler{svc: svc}
}

// Listar godoc
// @Summary      Historial de cortes
// @Tags         corte-caja
// @Produce      json
// @Security     BearerAuth
// @Param        page  query    int false "Página"
// @Param        limit query    int false "Registros por página (default 30)"
// @Success      200   {object} dto.CorteCajaListResponse
// @Router       /v1/corte-caja [get]
func (h *CorteCajaHandler) Listar(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	resp, err := h.svc.Listar(c.Request.Context(), page, limit)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Hoy godoc
// @Summary      Corte del día
// @Tags         corte-caja
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.CorteCajaResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/corte-caja/today [get]
func (h *CorteCajaHandler) Hoy(c *gin.Context) {
	resp, err := h.svc.ObtenerHoy(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ResumenHoy godoc
// @Summary      Resumen en vivo del día
// @Tags         corte-caja
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.ResumenHoyResponse
// @Router       /v1/corte-caja/resumen/today [get]
func (h *CorteCajaHandler) ResumenHoy(c *gin.Context) {
	resp, err := h.svc.ResumenHoy(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cerrar godoc
// @Summary      Realizar corte de caja
// @Description  Congela el resumen del día. Solo se permite un corte por fecha.
// @Tags         corte-caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.CerrarCajaRequest false "Responsable (default: usuario del token)"
// @Success      201  {object} dto.CorteCajaResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/corte-caja [post]
func (h *CorteCajaHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !bindOpcional(c, &req) {
		return
	}
	responsable := req.Responsable
	if responsable == "" {
		responsable = middleware.GetClaims(c).Vendedor()
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), responsable)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
