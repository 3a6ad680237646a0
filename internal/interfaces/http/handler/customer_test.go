package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	salesapp "github.com/pharmacy-pos/backend/internal/application/sales"
	"github.com/pharmacy-pos/backend/internal/domain/sales"
	"github.com/pharmacy-pos/backend/internal/domain/shared"
	"github.com/pharmacy-pos/backend/internal/interfaces/http/dto"
)

func setupCustomerRouter(customerRepo *MockCustomerRepository, saleRepo *MockSaleRepository) *gin.Engine {
	service := salesapp.NewCustomerService(customerRepo, saleRepo, zap.NewNop())
	handler := NewCustomerHandler(service)

	engine := gin.New()
	api := engine.Group("/api/v1")
	handler.RegisterRoutes(api)
	return engine
}

func TestCustomerHandler_Create(t *testing.T) {
	t.Run("creates a customer", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		saleRepo := new(MockSaleRepository)
		engine := setupCustomerRouter(customerRepo, saleRepo)

		customerRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		recorder := postJSON(t, engine, "/api/v1/customers", gin.H{
			"name":  "Awa Diallo",
			"phone": "+221771234567",
		})

		require.Equal(t, http.StatusCreated, recorder.Code)
		resp := decodeResponse(t, recorder)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "Awa Diallo", data["name"])
		assert.Equal(t, "0.00", data["credit_balance"])
	})

	t.Run("missing name returns 400", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		saleRepo := new(MockSaleRepository)
		engine := setupCustomerRouter(customerRepo, saleRepo)

		recorder := postJSON(t, engine, "/api/v1/customers", gin.H{"phone": "+221771234567"})

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestCustomerHandler_Credit(t *testing.T) {
	t.Run("returns recomputed outstanding balance", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		saleRepo := new(MockSaleRepository)
		engine := setupCustomerRouter(customerRepo, saleRepo)

		customer, err := sales.NewCustomer("Awa Diallo", "+221771234567", "")
		require.NoError(t, err)

		customerRepo.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
		saleRepo.On("OutstandingBalanceByCustomer", mock.Anything, customer.ID).
			Return(decimal.NewFromInt(1500), nil)

		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/"+customer.ID.String()+"/credit", nil)
		engine.ServeHTTP(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		resp := decodeResponse(t, recorder)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "1500.00", data["credit_balance"])
		assert.Equal(t, true, data["has_credit"])
	})

	t.Run("unknown customer returns 404", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		saleRepo := new(MockSaleRepository)
		engine := setupCustomerRouter(customerRepo, saleRepo)

		customerID := uuid.New()
		customerRepo.On("FindByID", mock.Anything, customerID).Return(nil, shared.ErrNotFound)

		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/"+customerID.String()+"/credit", nil)
		engine.ServeHTTP(recorder, req)

		require.Equal(t, http.StatusNotFound, recorder.Code)
		resp := decodeResponse(t, recorder)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})
}
