package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"repairpos/internal/middleware"
	"repairpos/internal/model"
	"repairpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func statusFor(err error) int {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.GET("/", func(c *gin.Context) { respondError(c, err) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w.Code
}

func TestRespondError_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"insufficient stock", &service.InsufficientStockError{Requested: 3, Available: 1}, http.StatusConflict},
		{"invalid transition", &service.InvalidTransitionError{From: model.JobCompleted, To: model.JobCompleted}, http.StatusConflict},
		{"wrapped not found", fmt.Errorf("removing part: %w", &service.NotFoundError{Kind: service.KindServiceJobPart}), http.StatusNotFound},
		{"not found", &service.NotFoundError{Kind: service.KindProduct, ID: uuid.New()}, http.StatusNotFound},
		{"empty cart", service.ErrEmptyCart, http.StatusUnprocessableEntity},
		{"bad due date", service.ErrInvalidDueDate, http.StatusUnprocessableEntity},
		{"exhausted", fmt.Errorf("%w: SAL after 20 attempts", service.ErrGenerationExhausted), http.StatusServiceUnavailable},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, statusFor(tc.err))
		})
	}
}
