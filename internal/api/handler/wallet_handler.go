package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/d60-Lab/quickcart/internal/api/middleware"
	"github.com/d60-Lab/quickcart/pkg/response"
)

type topUpRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"number"`
}

// GetWallet 余额与最近 20 条流水
// @Summary 钱包
// @Tags 钱包
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=service.WalletView}
// @Router /api/wallet [get]
func (h *Handler) GetWallet(c *gin.Context) {
	view, err := h.wallet.GetWallet(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, view)
}

// TopUp 充值
// @Summary 钱包充值
// @Tags 钱包
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body topUpRequest true "金额"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Router /api/wallet/add [post]
func (h *Handler) TopUp(c *gin.Context) {
	var req topUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	balance, err := h.wallet.TopUp(c.Request.Context(), middleware.CurrentUserID(c), req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"walletBalance": balance})
}
