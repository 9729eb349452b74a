package handler

import (
	"errors"
	"io"
	"net/http"
	"reflect"

	"github.com/gabrilr/ferreteria-sistema/internal/apierror"
	"github.com/gabrilr/ferreteria-sistema/internal/carrito"
	"github.com/gabrilr/ferreteria-sistema/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewCode(apierror.CodeValidacion, "JSON invalido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

// bindOpcional is bindAndValidate for an optional body: an empty body, with or
// without Content-Length, leaves req at its zero value.
func bindOpcional(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, apierror.NewCode(apierror.CodeValidacion, "JSON invalido: "+err.Error()))
			return false
		}
	}
	return validar(c, req)
}

// bindQuery is bindAndValidate for query strings.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewCode(apierror.CodeValidacion, err.Error()))
		return false
	}
	return validar(c, req)
}

func validar(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.NewCode(apierror.CodeValidacion, err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewCode(apierror.CodeValidacion, "ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// responderError writes the HTTP form of a service error. Rejections keep their
// message, which names the violated rule; store failures are reported generically
// and logged through ErrorHandler.
func responderError(c *gin.Context, err error) {
	var stockErr *carrito.StockInsuficienteError
	switch {
	case errors.As(err, &stockErr):
		disponible := stockErr.Disponible
		c.JSON(http.StatusConflict, &apierror.APIError{
			Detail:     stockErr.Error(),
			Code:       apierror.CodeStockInsuficiente,
			Disponible: &disponible,
		})
	case errors.Is(err, carrito.ErrSinStock):
		c.JSON(http.StatusConflict, apierror.NewCode(apierror.CodeSinStock, err.Error()))
	case errors.Is(err, service.ErrCarritoVacio):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewCode(apierror.CodeCarritoVacio, err.Error()))
	case errors.Is(err, service.ErrFechaInvalida):
		c.JSON(http.StatusBadRequest, apierror.NewCode(apierror.CodeValidacion, err.Error()))
	case errors.Is(err, service.ErrProductoNoEncontrado),
		errors.Is(err, service.ErrVentaNoEncontrada),
		errors.Is(err, service.ErrCorteNoEncontrado):
		c.JSON(http.StatusNotFound, apierror.NewCode(apierror.CodeNoEncontrado, err.Error()))
	case errors.Is(err, service.ErrVentaYaCancelada):
		c.JSON(http.StatusConflict, apierror.NewCode(apierror.CodeVentaYaCancelada, err.Error()))
	case errors.Is(err, service.ErrCorteYaRealizado):
		c.JSON(http.StatusConflict, apierror.NewCode(apierror.CodeCorteYaRealizado, err.Error()))
	case errors.Is(err, service.ErrCajaCerrada):
		c.JSON(http.StatusConflict, apierror.NewCode(apierror.CodeCajaCerrada, err.Error()))
	case errors.Is(err, service.ErrCommitParcial):
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.NewCode(apierror.CodeCommitParcial,
			"La venta se registró pero el stock no se descontó por completo; quedó pendiente de conciliación"))
	case errors.Is(err, service.ErrColaboradorNoDisponible):
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, apierror.NewCode(apierror.CodeNoDisponible,
			"Servicio temporalmente no disponible, intente nuevamente"))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.NewCode(apierror.CodeInterno, "Error interno del servidor"))
	}
}
