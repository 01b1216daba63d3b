package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/oksasatya/go-portfolio-tracker/internal/application"
	"github.com/oksasatya/go-portfolio-tracker/internal/interface/middleware"
	"github.com/oksasatya/go-portfolio-tracker/pkg/response"
)

type PortfolioHandler struct {
	Svc *application.PortfolioService
}

func NewPortfolioHandler(svc *application.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{Svc: svc}
}

type assetRequest struct {
	AssetSymbol string           `json:"assetSymbol" binding:"symbol"`
	Quantity    *decimal.Decimal `json:"quantity" binding:"required,gte=0"`
	Price       *decimal.Decimal `json:"price" binding:"required,gt=0"`
}

type updatePortfolioRequest struct {
	Assets []assetRequest `json:"assets" binding:"required,min=1,dive"`
}

// Get GET /api/portfolio
func (h *PortfolioHandler) Get(c *gin.Context) {
	view, err := h.Svc.GetPortfolio(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusOK, toPortfolioDTO(view), "portfolio", nil)
}

// Update PUT /api/portfolio
func (h *PortfolioHandler) Update(c *gin.Context) {
	var req updatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(middleware.BindError(err))
		return
	}
	assets := make([]application.AssetInput, 0, len(req.Assets))
	for _, a := range req.Assets {
		assets = append(assets, application.AssetInput{Symbol: a.AssetSymbol, Quantity: *a.Quantity, Price: *a.Price})
	}

	holdings, err := h.Svc.UpdatePortfolio(c.Request.Context(), middleware.UserID(c), assets)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"portfolio": toHoldingDTOs(holdings)}, "portfolio updated", nil)
}

// Export POST /api/portfolio/export
func (h *PortfolioHandler) Export(c *gin.Context) {
	url, err := h.Svc.ExportPortfolio(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusCreated, gin.H{"url": url}, "portfolio exported", nil)
}
