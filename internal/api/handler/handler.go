package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/quickcart/internal/service"
	"github.com/d60-Lab/quickcart/pkg/response"
)

// Handler 聚合全部 HTTP 处理函数
type Handler struct {
	orders     service.OrderService
	wallet     service.WalletService
	catalog    service.CatalogService
	users      service.UserService
	deliveries service.DeliveryService
	stats      service.StatsService
}

// Services 构造 Handler 所需的服务
type Services struct {
	Orders     service.OrderService
	Wallet     service.WalletService
	Catalog    service.CatalogService
	Users      service.UserService
	Deliveries service.DeliveryService
	Stats      service.StatsService
}

func NewHandler(s Services) *Handler {
	return &Handler{
		orders:     s.Orders,
		wallet:     s.Wallet,
		catalog:    s.Catalog,
		users:      s.Users,
		deliveries: s.Deliveries,
		stats:      s.Stats,
	}
}

// Health 健康检查
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} response.Response
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

var notFoundErrors = []error{
	service.ErrOrderNotFound,
	service.ErrProductNotFound,
	service.ErrCategoryNotFound,
	service.ErrDeliveryNotFound,
	service.ErrUserNotFound,
	service.ErrAddressNotFound,
}

var badRequestErrors = []error{
	service.ErrEmptyCart, service.ErrInvalidQuantity, service.ErrInvalidPaymentMethod, service.ErrAddressRequired,
	service.ErrInsufficientStock, service.ErrInsufficientBalance, service.ErrTotalMismatch,
	service.ErrInvalidStatus, service.ErrStatusLocked, service.ErrNotCancellable, service.ErrInvalidAmount,
	service.ErrDuplicateSKU, service.ErrDuplicateCategory, service.ErrProductInUse, service.ErrCategoryInUse,
	service.ErrMissingFields, service.ErrInvalidPrice, service.ErrInvalidStockAmount,
	service.ErrOrderNotAvailable, service.ErrDeliveryDone, service.ErrEmailTaken, service.ErrInvalidPeriod,
}

// fail 把服务层错误映射为 HTTP 状态；未知错误记录后返回 500
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
	case matchAny(err, notFoundErrors):
		response.NotFound(c, err.Error())
	case matchAny(err, badRequestErrors):
		response.BadRequest(c, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, response.Response{Code: http.StatusServiceUnavailable, Message: "request timed out"})
	default:
		response.InternalError(c, err)
	}
}

func matchAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
