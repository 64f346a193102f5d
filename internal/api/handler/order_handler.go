package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/d60-Lab/quickcart/internal/api/middleware"
	"github.com/d60-Lab/quickcart/internal/model"
	"github.com/d60-Lab/quickcart/internal/service"
	"github.com/d60-Lab/quickcart/pkg/response"
)

type cartItemRequest struct {
	ID       string          `json:"id" binding:"required"`
	Quantity int             `json:"quantity" binding:"required,gt=0"`
	Price    decimal.Decimal `json:"price" swaggertype:"number"`
}

type placeOrderRequest struct {
	CartItems     []cartItemRequest `json:"cartItems" binding:"dive"`
	TotalPrice    decimal.Decimal   `json:"totalPrice" swaggertype:"number"`
	AddressID     string            `json:"addressId" binding:"required"`
	PaymentMethod string            `json:"paymentMethod" binding:"required,payment_method"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PlaceOrder 下单
// @Summary 创建订单（校验库存、扣减库存、钱包支付同一事务）
// @Tags 订单
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body placeOrderRequest true "购物车"
// @Success 201 {object} response.Response{data=model.Order}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/orders [post]
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	in := service.PlaceOrderInput{
		TotalPrice:    req.TotalPrice,
		AddressID:     req.AddressID,
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
	}
	for _, it := range req.CartItems {
		in.Items = append(in.Items, service.CartLine{ProductID: it.ID, Quantity: it.Quantity, Price: it.Price})
	}
	order, err := h.orders.PlaceOrder(c.Request.Context(), middleware.CurrentUserID(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, order)
}

// MyOrders 当前用户的订单
// @Summary 我的订单
// @Tags 订单
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.Order}
// @Router /api/orders/myorders [get]
func (h *Handler) MyOrders(c *gin.Context) {
	orders, err := h.orders.MyOrders(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, orders)
}

// ListOrders 后台订单列表
// @Summary 全部订单
// @Tags 订单
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.Order}
// @Failure 403 {object} response.Response
// @Router /api/orders [get]
func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, orders)
}

// GetOrder 订单详情
// @Summary 订单详情
// @Tags 订单
// @Produce json
// @Security BearerAuth
// @Param id path string true "订单ID"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 404 {object} response.Response
// @Router /api/orders/{id} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, order)
}

// UpdateOrderStatus 后台修改订单状态
// @Summary 修改订单状态（仅 PENDING/CONFIRMED/PACKING）
// @Tags 订单
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "订单ID"
// @Param request body updateStatusRequest true "目标状态"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/orders/{id}/status [put]
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), model.OrderStatus(req.Status))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, order)
}

// CancelOrder 顾客取消订单
// @Summary 取消订单（PENDING/CONFIRMED 可取消）
// @Tags 订单
// @Produce json
// @Security BearerAuth
// @Param id path string true "订单ID"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/orders/{id}/cancel [put]
func (h *Handler) CancelOrder(c *gin.Context) {
	order, err := h.orders.CancelOrder(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, order)
}
