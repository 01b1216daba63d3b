package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/oksasatya/go-portfolio-tracker/internal/application"
	"github.com/oksasatya/go-portfolio-tracker/internal/interface/middleware"
	"github.com/oksasatya/go-portfolio-tracker/pkg/response"
)

type TransactionHandler struct {
	Svc *application.TransactionService
}

func NewTransactionHandler(svc *application.TransactionService) *TransactionHandler {
	return &TransactionHandler{Svc: svc}
}

type createTransactionRequest struct {
	AssetSymbol string           `json:"assetSymbol" binding:"symbol"`
	Quantity    *decimal.Decimal `json:"quantity" binding:"required,ne=0"`
	Price       *decimal.Decimal `json:"price" binding:"required,gt=0"`
}

type searchQuery struct {
	Q    string `form:"q"`
	Size int    `form:"size" binding:"omitempty,min=1"`
}

// Create POST /api/transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(middleware.BindError(err))
		return
	}
	tx, err := h.Svc.CreateTransaction(c.Request.Context(), middleware.UserID(c), req.AssetSymbol, *req.Quantity, *req.Price)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusCreated, gin.H{"transaction": toTransactionDTO(*tx)}, "transaction recorded", nil)
}

// List GET /api/transactions
func (h *TransactionHandler) List(c *gin.Context) {
	txs, err := h.Svc.ListTransactions(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusOK, toTransactionDTOs(txs), "transactions", gin.H{"count": len(txs)})
}

// Get GET /api/transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	tx, err := h.Svc.GetTransaction(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"transaction": toTransactionDTO(*tx)}, "transaction", nil)
}

// Search GET /api/transactions/search?q=&size=
func (h *TransactionHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(middleware.BindError(err))
		return
	}
	txs, err := h.Svc.SearchTransactions(c.Request.Context(), middleware.UserID(c), q.Q, q.Size)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusOK, toTransactionDTOs(txs), "search results", gin.H{"count": len(txs)})
}
