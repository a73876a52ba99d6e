package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mindhaven/internal/service"
)

// ListCategories 返回分类列表，可按形态过滤
func (a *API) ListCategories(c *gin.Context) {
	categories, err := a.categories.List(c.Query("kind"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取分类列表失败")
		return
	}

	items := make([]gin.H, 0, len(categories))
	for _, category := range categories {
		items = append(items, gin.H{"id": category.ID, "name": category.Name, "kind": category.Kind})
	}

	respondSuccess(c, http.StatusOK, gin.H{"categories": items})
}

// CreateCategory 创建分类
func (a *API) CreateCategory(c *gin.Context) {
	var payload struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	category, err := a.categories.Create(payload.Name, payload.Kind)
	if err != nil {
		handleCategoryError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"category": gin.H{"id": category.ID, "name": category.Name, "kind": category.Kind}})
}

// RenameCategory 重命名分类
func (a *API) RenameCategory(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的分类ID")
		return
	}

	var payload struct {
		Name string `json:"name"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	category, err := a.categories.Rename(id, payload.Name)
	if err != nil {
		handleCategoryError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"category": gin.H{"id": category.ID, "name": category.Name, "kind": category.Kind}})
}

// DeleteCategory 删除分类
func (a *API) DeleteCategory(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的分类ID")
		return
	}

	if err := a.categories.Delete(id); err != nil {
		handleCategoryError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

func handleCategoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, http.StatusNotFound, "分类不存在")
	case errors.Is(err, service.ErrCategoryInvalidInput):
		respondError(c, http.StatusBadRequest, "分类配置无效")
	case errors.Is(err, service.ErrCategoryInUse):
		respondError(c, http.StatusConflict, "分类下仍有内容，无法删除")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
