package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mindhaven/internal/db"
	"github.com/mindhaven/internal/service"
)

// Dashboard 返回后台总览计数
func (a *API) Dashboard(c *gin.Context) {
	var studentCount, articleCount, resourceCount, journalCount, checkinCount, awardedCount int64

	a.db.Model(&db.User{}).Where("role = ?", db.RoleStudent).Count(&studentCount)
	a.db.Model(&db.Article{}).Count(&articleCount)
	a.db.Model(&db.Resource{}).Count(&resourceCount)
	a.db.Model(&db.JournalEntry{}).Count(&journalCount)
	a.db.Model(&db.MoodCheckin{}).Count(&checkinCount)
	a.db.Model(&db.UserBadge{}).Count(&awardedCount)

	respondSuccess(c, http.StatusOK, gin.H{
		"students":       studentCount,
		"articles":       articleCount,
		"resources":      resourceCount,
		"journals":       journalCount,
		"mood_checkins":  checkinCount,
		"badges_awarded": awardedCount,
	})
}

// GetSettings 返回系统设置，密钥按掩码输出
func (a *API) GetSettings(c *gin.Context) {
	settings, err := a.system.GetSettings()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取系统设置失败")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"site_name":        settings.SiteName,
		"site_logo_url":    settings.SiteLogoURL,
		"ai_provider":      settings.AIProvider,
		"openai_key_set":   settings.OpenAIAPIKey != "",
		"deepseek_key_set": settings.DeepSeekAPIKey != "",
		"mood_chat_prompt": settings.MoodChatPrompt,
	})
}

// UpdateSettings 保存系统设置
func (a *API) UpdateSettings(c *gin.Context) {
	var payload struct {
		SiteName       string `json:"site_name"`
		SiteLogoURL    string `json:"site_logo_url"`
		AIProvider     string `json:"ai_provider"`
		OpenAIAPIKey   string `json:"openai_api_key"`
		DeepSeekAPIKey string `json:"deepseek_api_key"`
		MoodChatPrompt string `json:"mood_chat_prompt"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	settings, err := a.system.UpdateSettings(service.SystemSettingsInput{
		SiteName:       payload.SiteName,
		SiteLogoURL:    payload.SiteLogoURL,
		AIProvider:     payload.AIProvider,
		OpenAIAPIKey:   payload.OpenAIAPIKey,
		DeepSeekAPIKey: payload.DeepSeekAPIKey,
		MoodChatPrompt: payload.MoodChatPrompt,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "保存系统设置失败")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"site_name":        settings.SiteName,
		"site_logo_url":    settings.SiteLogoURL,
		"ai_provider":      settings.AIProvider,
		"mood_chat_prompt": settings.MoodChatPrompt,
	})
}

// ListStudents 返回学生账号列表，供管理员查看或重置连续天数
func (a *API) ListStudents(c *gin.Context) {
	var users []db.User
	if err := a.db.Where("role = ?", db.RoleStudent).Order("created_at DESC").Find(&users).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "获取学生列表失败")
		return
	}

	items := make([]gin.H, 0, len(users))
	for _, user := range users {
		items = append(items, userToPayload(user))
	}

	respondSuccess(c, http.StatusOK, gin.H{"students": items})
}
