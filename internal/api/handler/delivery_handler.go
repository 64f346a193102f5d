package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/quickcart/internal/api/middleware"
	"github.com/d60-Lab/quickcart/pkg/response"
)

// AvailableDeliveries 可接订单
// @Summary 待接单订单
// @Tags 配送
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.Order}
// @Failure 403 {object} response.Response
// @Router /api/delivery/available [get]
func (h *Handler) AvailableDeliveries(c *gin.Context) {
	list, err := h.deliveries.Available(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}

// AcceptDelivery 司机接单；并发接单只有一人成功
// @Summary 接单
// @Tags 配送
// @Produce json
// @Security BearerAuth
// @Param id path string true "订单ID"
// @Success 201 {object} response.Response{data=model.Delivery}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/delivery/{id}/accept [post]
func (h *Handler) AcceptDelivery(c *gin.Context) {
	d, err := h.deliveries.Accept(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, d)
}

// CompleteDelivery
// @Summary 确认送达
// @Tags 配送
// @Produce json
// @Security BearerAuth
// @Param id path string true "配送单ID"
// @Success 200 {object} response.Response{data=model.Delivery}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/delivery/{id}/complete [put]
func (h *Handler) CompleteDelivery(c *gin.Context) {
	d, err := h.deliveries.Complete(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, d)
}

// MyDeliveries
// @Summary 我的配送单
// @Tags 配送
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.Delivery}
// @Router /api/delivery/my-deliveries [get]
func (h *Handler) MyDeliveries(c *gin.Context) {
	list, err := h.deliveries.MyDeliveries(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}
