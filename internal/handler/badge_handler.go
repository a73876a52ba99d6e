package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mindhaven/internal/db"
	"github.com/mindhaven/internal/service"
)

type badgePayload struct {
	Name           string `json:"name"`
	Icon           string `json:"icon"`
	Description    string `json:"description"`
	Requirement    string `json:"requirement"`
	Type           string `json:"type"`
	ConditionValue int    `json:"condition_value"`
	IsActive       *bool  `json:"is_active"`
}

// GetMyBadges 返回当前用户的徽章与进度列表
func (a *API) GetMyBadges(c *gin.Context) {
	progress, err := a.badges.GetUserBadges(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取徽章列表失败")
		return
	}

	items := make([]gin.H, 0, len(progress))
	for _, entry := range progress {
		items = append(items, badgeProgressToPayload(entry))
	}

	respondSuccess(c, http.StatusOK, gin.H{"badges": items})
}

// GetMyStreak 返回当前用户的连续活跃天数
func (a *API) GetMyStreak(c *gin.Context) {
	streak, err := a.streaks.GetStreak(currentUserID(c), time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取连续天数失败")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"count":       streak.Count,
		"last_active": streak.LastActive.Format(dateFormat),
	})
}

// ListBadges 返回后台徽章模板列表
func (a *API) ListBadges(c *gin.Context) {
	badges, err := a.badges.List(c.Query("active") == "true")
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取徽章列表失败")
		return
	}

	items := make([]gin.H, 0, len(badges))
	for _, badge := range badges {
		items = append(items, badgeToPayload(badge))
	}

	respondSuccess(c, http.StatusOK, gin.H{"badges": items})
}

// GetBadge 返回单个徽章模板详情
func (a *API) GetBadge(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的徽章ID")
		return
	}

	badge, err := a.badges.Get(id)
	if err != nil {
		handleBadgeError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"badge": badgeToPayload(*badge)})
}

// CreateBadge 创建徽章模板
func (a *API) CreateBadge(c *gin.Context) {
	var payload badgePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	badge, err := a.badges.Create(badgeInputFromPayload(payload))
	if err != nil {
		handleBadgeError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"badge": badgeToPayload(*badge)})
}

// UpdateBadge 更新徽章模板
func (a *API) UpdateBadge(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的徽章ID")
		return
	}

	var payload badgePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	badge, err := a.badges.Update(id, badgeInputFromPayload(payload))
	if err != nil {
		handleBadgeError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"badge": badgeToPayload(*badge)})
}

// DeleteBadge 删除徽章模板
func (a *API) DeleteBadge(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的徽章ID")
		return
	}

	if err := a.badges.Delete(id); err != nil {
		respondError(c, http.StatusInternalServerError, "删除徽章失败")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

// ResetUserStreak 管理员强制清零某个用户的连续天数
func (a *API) ResetUserStreak(c *gin.Context) {
	userID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的用户ID")
		return
	}

	if err := a.streaks.ResetStreak(userID, time.Now()); err != nil {
		respondError(c, http.StatusInternalServerError, "重置连续天数失败")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"reset": true})
}

func badgeInputFromPayload(payload badgePayload) service.BadgeInput {
	isActive := true
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}
	return service.BadgeInput{
		Name:           payload.Name,
		Icon:           payload.Icon,
		Description:    payload.Description,
		Requirement:    payload.Requirement,
		Type:           payload.Type,
		ConditionValue: payload.ConditionValue,
		IsActive:       isActive,
	}
}

func badgeToPayload(badge db.Badge) gin.H {
	return gin.H{
		"id":              badge.ID,
		"name":            badge.Name,
		"icon":            badge.Icon,
		"description":     badge.Description,
		"requirement":     badge.Requirement,
		"type":            badge.Type,
		"condition_value": badge.ConditionValue,
		"is_active":       badge.IsActive,
	}
}

func badgeProgressToPayload(entry service.BadgeProgress) gin.H {
	item := badgeToPayload(entry.Badge)
	item["earned"] = entry.Earned
	item["progress"] = entry.Progress
	if entry.EarnedAt != nil {
		item["earned_at"] = entry.EarnedAt.Format(time.RFC3339)
	}
	return item
}

func handleBadgeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBadgeNotFound):
		respondError(c, http.StatusNotFound, "徽章不存在")
	case errors.Is(err, service.ErrBadgeInvalidInput):
		respondError(c, http.StatusBadRequest, "徽章配置无效")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
