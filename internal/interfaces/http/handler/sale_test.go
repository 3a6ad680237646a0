package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	salesapp "github.com/pharmacy-pos/backend/internal/application/sales"
	"github.com/pharmacy-pos/backend/internal/domain/catalog"
	"github.com/pharmacy-pos/backend/internal/interfaces/http/dto"
)

type saleRouterFixture struct {
	engine       *gin.Engine
	productRepo  *MockProductRepository
	lotRepo      *MockLotRepository
	movementRepo *MockStockMovementRepository
	saleRepo     *MockSaleRepository
	customerRepo *MockCustomerRepository
}

func setupSaleRouter() *saleRouterFixture {
	f := &saleRouterFixture{
		productRepo:  new(MockProductRepository),
		lotRepo:      new(MockLotRepository),
		movementRepo: new(MockStockMovementRepository),
		saleRepo:     new(MockSaleRepository),
		customerRepo: new(MockCustomerRepository),
	}

	scope := salesapp.NewNoOpTransactionScope(f.lotRepo, f.movementRepo, f.saleRepo, f.customerRepo)
	saleService := salesapp.NewSaleService(scope, f.productRepo, f.saleRepo, f.customerRepo, nil, zap.NewNop())
	allocationService := salesapp.NewAllocationService(f.productRepo, f.lotRepo, zap.NewNop())
	handler := NewSaleHandler(saleService, allocationService)

	f.engine = gin.New()
	api := f.engine.Group("/api/v1")
	handler.RegisterRoutes(api)
	return f
}

func postJSON(t *testing.T, engine *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(recorder, req)
	return recorder
}

func TestSaleHandler_ValidateItem(t *testing.T) {
	t.Run("previews a satisfiable line", func(t *testing.T) {
		f := setupSaleRouter()
		product := handlerTestProduct(t, "Paracetamol 500mg")
		lot := handlerTestLot(t, product.ID, 40)

		f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		f.lotRepo.On("FindAvailable", mock.Anything, product.ID, mock.Anything).
			Return([]catalog.Lot{*lot}, nil)

		recorder := postJSON(t, f.engine, "/api/v1/sales/validate-item", gin.H{
			"product_id": product.ID.String(),
			"quantity":   5,
		})

		require.Equal(t, http.StatusOK, recorder.Code)
		resp := decodeResponse(t, recorder)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, true, data["valid"])
		assert.Equal(t, "5000.00", data["total_price"])
	})

	t.Run("insufficient stock is a valid response, not an error", func(t *testing.T) {
		f := setupSaleRouter()
		product := handlerTestProduct(t, "Paracetamol 500mg")
		lot := handlerTestLot(t, product.ID, 3)

		f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		f.lotRepo.On("FindAvailable", mock.Anything, product.ID, mock.Anything).
			Return([]catalog.Lot{*lot}, nil)

		recorder := postJSON(t, f.engine, "/api/v1/sales/validate-item", gin.H{
			"product_id": product.ID.String(),
			"quantity":   10,
		})

		require.Equal(t, http.StatusOK, recorder.Code)
		resp := decodeResponse(t, recorder)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, false, data["valid"])
		assert.Equal(t, float64(7), data["short_by"])
	})

	t.Run("zero quantity returns 400", func(t *testing.T) {
		f := setupSaleRouter()
		product := handlerTestProduct(t, "Paracetamol 500mg")

		f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		f.lotRepo.On("FindAvailable", mock.Anything, product.ID, mock.Anything).
			Return([]catalog.Lot{}, nil)

		recorder := postJSON(t, f.engine, "/api/v1/sales/validate-item", gin.H{
			"product_id": product.ID.String(),
			"quantity":   0,
		})

		require.Equal(t, http.StatusBadRequest, recorder.Code)
		resp := decodeResponse(t, recorder)
		assert.Equal(t, dto.ErrCodeInvalidQuantity, resp.Error.Code)
	})
}

func TestSaleHandler_Create(t *testing.T) {
	t.Run("commits a sale and returns 201", func(t *testing.T) {
		f := setupSaleRouter()
		product := handlerTestProduct(t, "Paracetamol 500mg")
		lot := handlerTestLot(t, product.ID, 40)

		f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		f.lotRepo.On("FindAvailableForUpdate", mock.Anything, product.ID, mock.Anything).
			Return([]catalog.Lot{*lot}, nil)
		f.lotRepo.On("SaveAll", mock.Anything, mock.Anything).Return(nil)
		f.movementRepo.On("Record", mock.Anything, mock.Anything).Return(nil)
		f.saleRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		recorder := postJSON(t, f.engine, "/api/v1/sales", gin.H{
			"items": []gin.H{{"product_id": product.ID.String(), "quantity": 5}},
			"payments": []gin.H{{
				"amount": "5000",
				"method": "cash",
			}},
		})

		require.Equal(t, http.StatusCreated, recorder.Code)
		resp := decodeResponse(t, recorder)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "paid", data["status"])
		assert.Equal(t, "5000.00", data["total_amount"])
	})

	t.Run("insufficient stock returns 422", func(t *testing.T) {
		f := setupSaleRouter()
		product := handlerTestProduct(t, "Paracetamol 500mg")
		lot := handlerTestLot(t, product.ID, 3)

		f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		f.lotRepo.On("FindAvailableForUpdate", mock.Anything, product.ID, mock.Anything).
			Return([]catalog.Lot{*lot}, nil)

		recorder := postJSON(t, f.engine, "/api/v1/sales", gin.H{
			"items": []gin.H{{"product_id": product.ID.String(), "quantity": 10}},
		})

		require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		resp := decodeResponse(t, recorder)
		assert.Equal(t, dto.ErrCodeInsufficientStock, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "3 available, 10 requested")
	})

	t.Run("missing items returns 400", func(t *testing.T) {
		f := setupSaleRouter()

		recorder := postJSON(t, f.engine, "/api/v1/sales", gin.H{})

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestSaleHandler_Get(t *testing.T) {
	t.Run("malformed id returns 400", func(t *testing.T) {
		f := setupSaleRouter()

		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales/not-a-uuid", nil)
		f.engine.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestSaleHandler_List(t *testing.T) {
	t.Run("rejects invalid customer filter", func(t *testing.T) {
		f := setupSaleRouter()

		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales?customer_id=nope", nil)
		f.engine.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

// Guard against the validate-then-commit race being reintroduced: commit
// must re-read lots with row locks, not trust an earlier validation.
func TestSaleHandler_CreateUsesLockedReads(t *testing.T) {
	f := setupSaleRouter()
	product := handlerTestProduct(t, "Paracetamol 500mg")
	lot, err := catalog.NewLot(
		product.ID,
		"PO-001",
		"B-001",
		10,
		time.Now().Add(30*24*time.Hour),
		decimal.NewFromInt(700),
		decimal.NewFromInt(1000),
	)
	require.NoError(t, err)

	f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.lotRepo.On("FindAvailableForUpdate", mock.Anything, product.ID, mock.Anything).
		Return([]catalog.Lot{*lot}, nil)
	f.lotRepo.On("SaveAll", mock.Anything, mock.Anything).Return(nil)
	f.movementRepo.On("Record", mock.Anything, mock.Anything).Return(nil)
	f.saleRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	recorder := postJSON(t, f.engine, "/api/v1/sales", gin.H{
		"items": []gin.H{{"product_id": product.ID.String(), "quantity": 5}},
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	f.lotRepo.AssertNotCalled(t, "FindAvailable", mock.Anything, mock.Anything, mock.Anything)
}
