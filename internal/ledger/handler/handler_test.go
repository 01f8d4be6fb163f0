package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/apperr"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger/dto"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUseCase struct {
	mock.Mock
}

func (m *mockUseCase) GetSnapshot(ctx context.Context) (*dto.Snapshot, error) {
	args := m.Called(ctx)
	snap, _ := args.Get(0).(*dto.Snapshot)
	return snap, args.Error(1)
}

func (m *mockUseCase) ListTransactions(ctx context.Context, f *dto.TransactionFilters) ([]dto.TransactionView, error) {
	args := m.Called(ctx, f)
	views, _ := args.Get(0).([]dto.TransactionView)
	return views, args.Error(1)
}

func (m *mockUseCase) AddFullTruck(ctx context.Context, in *dto.AddFullTruckInput) (*dto.ActionResult, error) {
	return m.result(m.Called(ctx, in))
}

func (m *mockUseCase) AddSplitTruck(ctx context.Context, in *dto.AddSplitTruckInput) (*dto.ActionResult, error) {
	return m.result(m.Called(ctx, in))
}

func (m *mockUseCase) AddCustom(ctx context.Context, in *dto.AddCustomInput) (*dto.ActionResult, error) {
	return m.result(m.Called(ctx, in))
}

func (m *mockUseCase) Sell(ctx context.Context, in *dto.SellInput) (*dto.ActionResult, error) {
	return m.result(m.Called(ctx, in))
}

func (m *mockUseCase) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUseCase) result(args mock.Arguments) (*dto.ActionResult, error) {
	res, _ := args.Get(0).(*dto.ActionResult)
	return res, args.Error(1)
}

func newRouter(uc *mockUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewLedgerHandler(uc, logger.NewNop()).Register(r)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

var okResult = &dto.ActionResult{Message: "ok", Transactions: []dto.TransactionView{}, Balances: []dto.BalanceView{}}

func TestGetSnapshot(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("GetSnapshot", mock.Anything).Return(&dto.Snapshot{Locations: []dto.LocationView{{
		ID:           1,
		Name:         "Main Yard",
		Items:        []dto.ItemView{},
		Transactions: []dto.TransactionRowView{},
	}}}, nil)

	w := do(newRouter(uc), http.MethodGet, "/inventory", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"locations":[{"id":1,"name":"Main Yard","items":[],"inventory_value_cents":0,"profit_cents":0,"transactions":[]}]}`, w.Body.String())
}

func TestAddTruckPassesOptionalType(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("AddFullTruck", mock.Anything, mock.MatchedBy(func(in *dto.AddFullTruckInput) bool {
		return in.LocationID == 2 && in.TruckType != nil && *in.TruckType == "4x8" && in.TransactionDate == "2025-03-01"
	})).Return(okResult, nil).Once()
	uc.On("AddFullTruck", mock.Anything, mock.MatchedBy(func(in *dto.AddFullTruckInput) bool {
		return in.LocationID == 3 && in.TruckType == nil
	})).Return(okResult, nil).Once()
	r := newRouter(uc)

	w := do(r, http.MethodPost, "/inventory/add-truck", `{"location_id":2,"truck_type":"4x8","transaction_date":"2025-03-01"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/inventory/add-truck", `{"location_id":3}`)
	assert.Equal(t, http.StatusOK, w.Code)

	uc.AssertExpectations(t)
}

func TestSellAndCustomBodies(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("Sell", mock.Anything, &dto.SellInput{LocationID: 1, ItemType: "4x5", Quantity: 300}).Return(okResult, nil)
	uc.On("AddCustom", mock.Anything, &dto.AddCustomInput{LocationID: 1, Qty4x5: 4, Qty4x8: 0}).Return(okResult, nil)
	uc.On("AddSplitTruck", mock.Anything, &dto.AddSplitTruckInput{LocationID: 1}).Return(okResult, nil)
	r := newRouter(uc)

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/inventory/sell", `{"location_id":1,"item_type":"4x5","quantity":300}`).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/inventory/add-custom", `{"location_id":1,"qty_4x5":4}`).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/inventory/add-split-truck", `{"location_id":1}`).Code)
	uc.AssertExpectations(t)
}

func TestActionDispatch(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("AddFullTruck", mock.Anything, mock.Anything).Return(okResult, nil).Once()
	uc.On("AddSplitTruck", mock.Anything, mock.Anything).Return(okResult, nil).Once()
	uc.On("AddCustom", mock.Anything, mock.Anything).Return(okResult, nil).Once()
	uc.On("Sell", mock.Anything, mock.Anything).Return(okResult, nil).Once()
	r := newRouter(uc)

	for _, action := range []string{"fullTruck", "splitTruck", "custom", "sell"} {
		w := do(r, http.MethodPost, "/actions", `{"action":"`+action+`","location_id":1}`)
		assert.Equal(t, http.StatusOK, w.Code, action)
	}

	w := do(r, http.MethodPost, "/actions", `{"action":"refund","location_id":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "action", decode(t, w)["field"])

	uc.AssertExpectations(t)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"validation", apperr.Validation("quantity", "must be positive"), http.StatusBadRequest, "validation", "must be positive"},
		{"not found", apperr.NotFound("location_id", "location 9 does not exist"), http.StatusNotFound, "not_found", "location 9 does not exist"},
		{"conflict", apperr.Conflict("serialization", errors.New("40001")), http.StatusConflict, "conflict", "concurrent update, please retry"},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout", "operation timed out"},
		{"store", apperr.Store("update inventory", errors.New("password authentication failed for user ledger")), http.StatusInternalServerError, "store", "operation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{}
			uc.On("Sell", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := do(newRouter(uc), http.MethodPost, "/inventory/sell", `{"location_id":9,"item_type":"4x5","quantity":1}`)

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.code, body["code"])
			assert.Equal(t, tt.msg, body["error"])
			assert.NotContains(t, w.Body.String(), "password")
		})
	}
}

func TestMalformedBody(t *testing.T) {
	uc := &mockUseCase{}
	w := do(newRouter(uc), http.MethodPost, "/inventory/sell", `{"location_id":"one"`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "body", decode(t, w)["field"])
	uc.AssertNotCalled(t, "Sell", mock.Anything, mock.Anything)
}

func TestListTransactionsQuery(t *testing.T) {
	uc := &mockUseCase{}
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	uc.On("ListTransactions", mock.Anything, mock.MatchedBy(func(f *dto.TransactionFilters) bool {
		return f.LocationID == 2 && f.Type == "sell" && f.From != nil && f.From.Equal(from) && f.To == nil && f.Limit == 10
	})).Return([]dto.TransactionView{{ID: 1, LocationID: 2, SKU: "4x5", Quantity: 3, Type: "sell", Date: "2025-03-02"}}, nil)
	r := newRouter(uc)

	w := do(r, http.MethodGet, "/inventory/transactions?location_id=2&type=sell&from=2025-03-01&limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["transactions"], 1)

	w = do(r, http.MethodGet, "/inventory/transactions?to=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "to", decode(t, w)["field"])

	w = do(r, http.MethodGet, "/inventory/transactions?location_id=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("Ping", mock.Anything).Return(nil).Once()
	uc.On("Ping", mock.Anything).Return(errors.New("down")).Once()
	r := newRouter(uc)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodGet, "/healthz", "").Code)
}

func TestMutatingMiddlewareOnlyWrapsPosts(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("GetSnapshot", mock.Anything).Return(&dto.Snapshot{Locations: []dto.LocationView{}}, nil)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	hits := 0
	NewLedgerHandler(uc, logger.NewNop()).Register(r, func(c *gin.Context) {
		hits++
		c.AbortWithStatus(http.StatusTeapot)
	})

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/inventory", "").Code)
	assert.Equal(t, http.StatusTeapot, do(r, http.MethodPost, "/inventory/sell", `{}`).Code)
	assert.Equal(t, 1, hits)
}
