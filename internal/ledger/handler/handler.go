package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/apperr"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger/dto"
	"github.com/fekuna/omnipos-ledger-service/internal/middleware"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LedgerHandler struct {
	uc     ledger.UseCase
	logger logger.ZapLogger
}

func NewLedgerHandler(uc ledger.UseCase, log logger.ZapLogger) *LedgerHandler {
	return &LedgerHandler{
		uc:     uc,
		logger: log,
	}
}

// Register mounts the ledger routes. mutating middlewares only wrap POST routes.
func (h *LedgerHandler) Register(r gin.IRouter, mutating ...gin.HandlerFunc) {
	post := func(path string, fn gin.HandlerFunc) {
		r.POST(path, append(append([]gin.HandlerFunc{}, mutating...), fn)...)
	}

	r.GET("/healthz", h.Health)
	r.GET("/inventory", h.GetSnapshot)
	r.GET("/inventory/transactions", h.ListTransactions)
	post("/inventory/add-truck", h.AddTruck)
	post("/inventory/add-split-truck", h.AddSplitTruck)
	post("/inventory/add-custom", h.AddCustom)
	post("/inventory/sell", h.Sell)
	post("/actions", h.Action)
}

type addTruckRequest struct {
	LocationID      int64   `json:"location_id"`
	TruckType       *string `json:"truck_type"`
	TransactionDate string  `json:"transaction_date"`
}

type addSplitTruckRequest struct {
	LocationID      int64  `json:"location_id"`
	TransactionDate string `json:"transaction_date"`
}

type addCustomRequest struct {
	LocationID      int64  `json:"location_id"`
	Qty4x5          int64  `json:"qty_4x5"`
	Qty4x8          int64  `json:"qty_4x8"`
	TransactionDate string `json:"transaction_date"`
}

type sellRequest struct {
	LocationID      int64  `json:"location_id"`
	ItemType        string `json:"item_type"`
	Quantity        int64  `json:"quantity"`
	TransactionDate string `json:"transaction_date"`
}

// actionRequest is the single-endpoint form: one body, dispatched on Action.
type actionRequest struct {
	Action          string  `json:"action"`
	LocationID      int64   `json:"location_id"`
	TruckType       *string `json:"truck_type"`
	Qty4x5          int64   `json:"qty_4x5"`
	Qty4x8          int64   `json:"qty_4x8"`
	ItemType        string  `json:"item_type"`
	Quantity        int64   `json:"quantity"`
	TransactionDate string  `json:"transaction_date"`
}

func (h *LedgerHandler) Health(c *gin.Context) {
	if err := h.uc.Ping(c.Request.Context()); err != nil {
		h.logger.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *LedgerHandler) GetSnapshot(c *gin.Context) {
	snap, err := h.uc.GetSnapshot(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	filters := &dto.TransactionFilters{Type: c.Query("type")}

	if v := c.Query("location_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.writeError(c, apperr.Validation("location_id", "must be an integer"))
			return
		}
		filters.LocationID = id
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.writeError(c, apperr.Validation("limit", "must be an integer"))
			return
		}
		filters.Limit = n
	}
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &filters.From}, {"to", &filters.To}} {
		if v := c.Query(p.name); v != "" {
			d, err := time.Parse("2006-01-02", v)
			if err != nil {
				h.writeError(c, apperr.Validation(p.name, "must be formatted as YYYY-MM-DD"))
				return
			}
			*p.dst = &d
		}
	}

	views, err := h.uc.ListTransactions(c.Request.Context(), filters)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": views})
}

func (h *LedgerHandler) AddTruck(c *gin.Context) {
	var req addTruckRequest
	if !h.bind(c, &req) {
		return
	}
	h.respond(c)(h.uc.AddFullTruck(c.Request.Context(), &dto.AddFullTruckInput{
		LocationID:      req.LocationID,
		TruckType:       req.TruckType,
		TransactionDate: req.TransactionDate,
	}))
}

func (h *LedgerHandler) AddSplitTruck(c *gin.Context) {
	var req addSplitTruckRequest
	if !h.bind(c, &req) {
		return
	}
	h.respond(c)(h.uc.AddSplitTruck(c.Request.Context(), &dto.AddSplitTruckInput{
		LocationID:      req.LocationID,
		TransactionDate: req.TransactionDate,
	}))
}

func (h *LedgerHandler) AddCustom(c *gin.Context) {
	var req addCustomRequest
	if !h.bind(c, &req) {
		return
	}
	h.respond(c)(h.uc.AddCustom(c.Request.Context(), &dto.AddCustomInput{
		LocationID:      req.LocationID,
		Qty4x5:          req.Qty4x5,
		Qty4x8:          req.Qty4x8,
		TransactionDate: req.TransactionDate,
	}))
}

func (h *LedgerHandler) Sell(c *gin.Context) {
	var req sellRequest
	if !h.bind(c, &req) {
		return
	}
	h.respond(c)(h.uc.Sell(c.Request.Context(), &dto.SellInput{
		LocationID:      req.LocationID,
		ItemType:        req.ItemType,
		Quantity:        req.Quantity,
		TransactionDate: req.TransactionDate,
	}))
}

func (h *LedgerHandler) Action(c *gin.Context) {
	var req actionRequest
	if !h.bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	switch req.Action {
	case "fullTruck":
		h.respond(c)(h.uc.AddFullTruck(ctx, &dto.AddFullTruckInput{
			LocationID:      req.LocationID,
			TruckType:       req.TruckType,
			TransactionDate: req.TransactionDate,
		}))
	case "splitTruck":
		h.respond(c)(h.uc.AddSplitTruck(ctx, &dto.AddSplitTruckInput{
			LocationID:      req.LocationID,
			TransactionDate: req.TransactionDate,
		}))
	case "custom":
		h.respond(c)(h.uc.AddCustom(ctx, &dto.AddCustomInput{
			LocationID:      req.LocationID,
			Qty4x5:          req.Qty4x5,
			Qty4x8:          req.Qty4x8,
			TransactionDate: req.TransactionDate,
		}))
	case "sell":
		h.respond(c)(h.uc.Sell(ctx, &dto.SellInput{
			LocationID:      req.LocationID,
			ItemType:        req.ItemType,
			Quantity:        req.Quantity,
			TransactionDate: req.TransactionDate,
		}))
	default:
		h.writeError(c, apperr.Validation("action", "must be one of fullTruck, splitTruck, custom, sell"))
	}
}

func (h *LedgerHandler) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.logger.Debug("Invalid request body", zap.Error(err))
		h.writeError(c, apperr.Validation("body", "invalid JSON payload"))
		return false
	}
	return true
}

func (h *LedgerHandler) respond(c *gin.Context) func(*dto.ActionResult, error) {
	return func(res *dto.ActionResult, err error) {
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func (h *LedgerHandler) writeError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	body := gin.H{"code": string(kind)}

	e, _ := apperr.As(err)
	if e != nil && e.Field != "" && kind != apperr.KindStore {
		body["field"] = e.Field
	}

	var status int
	switch kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
		body["error"] = e.Message
	case apperr.KindNotFound:
		status = http.StatusNotFound
		body["error"] = e.Message
	case apperr.KindConflict:
		status = http.StatusConflict
		body["error"] = "concurrent update, please retry"
	case apperr.KindTimeout:
		status = http.StatusGatewayTimeout
		body["error"] = "operation timed out"
	default:
		status = http.StatusInternalServerError
		body["error"] = "operation failed"
		h.logger.Error("Ledger operation failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
	}

	c.AbortWithStatusJSON(status, body)
}
