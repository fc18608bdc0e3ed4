package handler

import (
	"errors"
	"net/http"
	"reflect"

	"repairpos/internal/apierror"
	"repairpos/internal/middleware"
	"repairpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0 and required work on prices instead of panicking.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds the JSON body and runs go-playground/validator tags.
// Returns false after writing the error response; the caller should return
// without writing another one.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeBadRequest, "invalid JSON: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeBadRequest, err.Error()))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeBadRequest, err.Error()))
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Namespace()] = fe.Tag()
	}
	c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
	return false
}

// parseID reads a UUID path parameter, answering 400 when it is malformed.
func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeBadRequest, "invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service errors onto HTTP statuses. Business outcomes
// keep their message; anything unexpected becomes a generic 500 and the
// cause is only logged.
func respondError(c *gin.Context, err error) {
	var (
		stockErr      *service.InsufficientStockError
		notFoundErr   *service.NotFoundError
		transitionErr *service.InvalidTransitionError
	)
	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, apierror.New(apierror.CodeInsufficientStock, stockErr.Error()).WithMeta(map[string]any{
			"product_id":   stockErr.ProductID,
			"product_name": stockErr.ProductName,
			"requested":    stockErr.Requested,
			"available":    stockErr.Available,
		}))
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, apierror.New(apierror.CodeInvalidTransition, transitionErr.Error()).WithMeta(map[string]any{
			"from": transitionErr.From,
			"to":   transitionErr.To,
		}))
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, apierror.New(apierror.CodeNotFound, notFoundErr.Error()).WithMeta(map[string]any{
			"kind": notFoundErr.Kind,
			"id":   notFoundErr.ID,
		}))
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidDueDate),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrEmptySummary),
		errors.Is(err, service.ErrEmptyName):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(apierror.CodeValidation, err.Error()))
	case errors.Is(err, service.ErrGenerationExhausted):
		log.Error().Err(err).Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).Msg("identifier generation exhausted")
		c.JSON(http.StatusServiceUnavailable, apierror.New(apierror.CodeUnavailable, "could not allocate a document number, retry the request"))
	default:
		_ = c.Error(err)
	}
}
