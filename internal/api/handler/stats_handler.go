package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/quickcart/internal/service"
	"github.com/d60-Lab/quickcart/pkg/response"
)

// RevenueStats 已送达订单营收
// @Summary 营收统计
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param period query string false "daily|weekly|monthly|yearly" default(monthly)
// @Success 200 {object} response.Response{data=[]service.StatPoint}
// @Failure 400 {object} response.Response
// @Router /api/orders/stats [get]
func (h *Handler) RevenueStats(c *gin.Context) {
	p, err := service.ParsePeriod(c.Query("period"))
	if err != nil {
		fail(c, err)
		return
	}
	points, err := h.stats.Revenue(c.Request.Context(), p)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, points)
}

// OrderCountStats 订单量（全部状态）
// @Summary 订单量统计
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param period query string false "daily|weekly|monthly|yearly" default(monthly)
// @Success 200 {object} response.Response{data=[]service.StatPoint}
// @Failure 400 {object} response.Response
// @Router /api/orders/stats/count [get]
func (h *Handler) OrderCountStats(c *gin.Context) {
	p, err := service.ParsePeriod(c.Query("period"))
	if err != nil {
		fail(c, err)
		return
	}
	points, err := h.stats.OrderCounts(c.Request.Context(), p)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, points)
}

// CategoryStats
// @Summary 各分类商品数
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]repository.CategoryCount}
// @Router /api/products/stats/category [get]
func (h *Handler) CategoryStats(c *gin.Context) {
	counts, err := h.stats.CategoryCounts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, counts)
}

// LowStock 低库存商品，按数量升序
// @Summary 低库存预警
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]service.LowStockItem}
// @Router /api/products/stats/lowstock [get]
func (h *Handler) LowStock(c *gin.Context) {
	items, err := h.stats.LowStock(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, items)
}
