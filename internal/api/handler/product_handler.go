package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/d60-Lab/quickcart/internal/service"
	"github.com/d60-Lab/quickcart/pkg/response"
)

type createProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	SKU         string          `json:"sku" binding:"required,sku"`
	Price       decimal.Decimal `json:"price" swaggertype:"number"`
	Description string          `json:"description"`
	CategoryID  string          `json:"categoryId" binding:"required"`
	ImageURL    *string         `json:"imageUrl"`
	Stock       int             `json:"stock" binding:"gte=0"`
}

type updateProductRequest struct {
	Name        *string          `json:"name"`
	SKU         *string          `json:"sku" binding:"omitempty,sku"`
	Price       *decimal.Decimal `json:"price" swaggertype:"number"`
	Description *string          `json:"description"`
	CategoryID  *string          `json:"categoryId"`
	ImageURL    *string          `json:"imageUrl"`
	Stock       *int             `json:"stock" binding:"omitempty,gte=0"`
}

// ListProducts 商品列表
// @Summary 商品列表（可按名称搜索）
// @Tags 商品
// @Produce json
// @Param search query string false "名称关键字"
// @Success 200 {object} response.Response{data=[]service.ProductListItem}
// @Router /api/products [get]
func (h *Handler) ListProducts(c *gin.Context) {
	items, err := h.catalog.ListProducts(c.Request.Context(), c.Query("search"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, items)
}

// GetProduct 商品详情（含履约门店库存）
// @Summary 商品详情
// @Tags 商品
// @Produce json
// @Security BearerAuth
// @Param id path string true "商品ID"
// @Success 200 {object} response.Response{data=service.ProductDetail}
// @Failure 404 {object} response.Response
// @Router /api/products/{id} [get]
func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}

// CreateProduct 新建商品及初始库存
// @Summary 新建商品
// @Tags 商品
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createProductRequest true "商品"
// @Success 201 {object} response.Response{data=model.Product}
// @Failure 400 {object} response.Response
// @Router /api/products [post]
func (h *Handler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.catalog.CreateProduct(c.Request.Context(), service.ProductInput{
		Name:        req.Name,
		SKU:         req.SKU,
		Price:       req.Price,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, p)
}

// UpdateProduct 部分更新商品，可同时设置库存
// @Summary 更新商品
// @Tags 商品
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "商品ID"
// @Param request body updateProductRequest true "变更字段"
// @Success 200 {object} response.Response{data=model.Product}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/products/{id} [put]
func (h *Handler) UpdateProduct(c *gin.Context) {
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("id"), service.ProductPatch{
		Name:        req.Name,
		SKU:         req.SKU,
		Price:       req.Price,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}

// DeleteProduct 删除商品；已被订单引用时拒绝
// @Summary 删除商品
// @Tags 商品
// @Produce json
// @Security BearerAuth
// @Param id path string true "商品ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/products/{id} [delete]
func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"message": "product removed"})
}
