package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/quickcart/internal/service"
	"github.com/d60-Lab/quickcart/pkg/response"
)

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListCategories
// @Summary 分类列表
// @Tags 分类
// @Produce json
// @Success 200 {object} response.Response{data=[]model.Category}
// @Router /api/categories [get]
func (h *Handler) ListCategories(c *gin.Context) {
	list, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}

// CreateCategory
// @Summary 新建分类
// @Tags 分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body categoryRequest true "分类"
// @Success 201 {object} response.Response{data=model.Category}
// @Failure 400 {object} response.Response
// @Router /api/categories [post]
func (h *Handler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	cat, err := h.catalog.CreateCategory(c.Request.Context(), service.CategoryInput(req))
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, cat)
}

// UpdateCategory
// @Summary 更新分类
// @Tags 分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "分类ID"
// @Param request body categoryRequest true "分类"
// @Success 200 {object} response.Response{data=model.Category}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/categories/{id} [put]
func (h *Handler) UpdateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	cat, err := h.catalog.UpdateCategory(c.Request.Context(), c.Param("id"), service.CategoryInput(req))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, cat)
}

// DeleteCategory 仍有商品时拒绝
// @Summary 删除分类
// @Tags 分类
// @Produce json
// @Security BearerAuth
// @Param id path string true "分类ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/categories/{id} [delete]
func (h *Handler) DeleteCategory(c *gin.Context) {
	if err := h.catalog.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"message": "category removed"})
}
