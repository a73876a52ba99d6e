package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mindhaven/internal/db"
	"github.com/mindhaven/internal/service"
)

type resourcePayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	MediaURL    string `json:"media_url"`
	CoverURL    string `json:"cover_url"`
	DurationSec int    `json:"duration_sec"`
	Status      string `json:"status"`
	CategoryID  uint   `json:"category_id"`
}

// ListResources 返回后台资源列表
func (a *API) ListResources(c *gin.Context) {
	filter := service.ResourceFilter{
		Kind:   c.Query("kind"),
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
	if id, err := parseUintQuery(c, "category_id"); err == nil {
		filter.CategoryID = id
	}

	resources, err := a.resources.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取资源列表失败")
		return
	}

	items := make([]gin.H, 0, len(resources))
	for _, resource := range resources {
		items = append(items, resourceToPayload(resource))
	}

	respondSuccess(c, http.StatusOK, gin.H{"resources": items})
}

// ListPublishedResources 返回学生端可见的资源列表
func (a *API) ListPublishedResources(c *gin.Context) {
	filter := service.ResourceFilter{
		Kind:   c.Query("kind"),
		Status: "published",
		Search: c.Query("search"),
	}
	if id, err := parseUintQuery(c, "category_id"); err == nil {
		filter.CategoryID = id
	}

	resources, err := a.resources.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取资源列表失败")
		return
	}

	items := make([]gin.H, 0, len(resources))
	for _, resource := range resources {
		items = append(items, resourceToPayload(resource))
	}

	respondSuccess(c, http.StatusOK, gin.H{"resources": items})
}

// PlayResource 返回资源播放信息，并记录一次播放事件
func (a *API) PlayResource(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的资源ID")
		return
	}

	resource, err := a.resources.GetPublished(id)
	if err != nil {
		handleResourceError(c, err)
		return
	}

	userID := currentUserID(c)
	if userID != 0 {
		counted, err := a.access.RecordAccess(userID, accessKindForResource(resource.Kind), resource.ID, time.Now())
		if err != nil {
			c.Error(err)
		}
		if counted {
			a.recordActivity(c, userID)
		}
	}

	respondSuccess(c, http.StatusOK, gin.H{"resource": resourceToPayload(*resource)})
}

// CreateResource 创建资源
func (a *API) CreateResource(c *gin.Context) {
	var payload resourcePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	resource, err := a.resources.Create(resourceInputFromPayload(payload))
	if err != nil {
		handleResourceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"resource": resourceToPayload(*resource)})
}

// UpdateResource 更新资源
func (a *API) UpdateResource(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的资源ID")
		return
	}

	var payload resourcePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	resource, err := a.resources.Update(id, resourceInputFromPayload(payload))
	if err != nil {
		handleResourceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"resource": resourceToPayload(*resource)})
}

// DeleteResource 删除资源
func (a *API) DeleteResource(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的资源ID")
		return
	}

	if err := a.resources.Delete(id); err != nil {
		respondError(c, http.StatusInternalServerError, "删除资源失败")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

func resourceInputFromPayload(payload resourcePayload) service.ResourceInput {
	return service.ResourceInput{
		Title:       payload.Title,
		Description: payload.Description,
		Kind:        payload.Kind,
		MediaURL:    payload.MediaURL,
		CoverURL:    payload.CoverURL,
		DurationSec: payload.DurationSec,
		Status:      payload.Status,
		CategoryID:  payload.CategoryID,
	}
}

func resourceToPayload(resource db.Resource) gin.H {
	item := gin.H{
		"id":           resource.ID,
		"title":        resource.Title,
		"description":  resource.Description,
		"kind":         resource.Kind,
		"media_url":    resource.MediaURL,
		"cover_url":    resource.CoverURL,
		"duration_sec": resource.DurationSec,
		"status":       resource.Status,
		"category_id":  resource.CategoryID,
	}
	if resource.Category.ID != 0 {
		item["category"] = resource.Category.Name
	}
	return item
}

func accessKindForResource(kind string) string {
	if strings.ToLower(kind) == db.ResourceKindMeditation {
		return db.AccessKindMeditation
	}
	return db.AccessKindMusic
}

func handleResourceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrResourceNotFound):
		respondError(c, http.StatusNotFound, "资源不存在")
	case errors.Is(err, service.ErrResourceInvalidInput):
		respondError(c, http.StatusBadRequest, "资源配置无效")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
