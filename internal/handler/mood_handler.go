package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mindhaven/internal/db"
	"github.com/mindhaven/internal/service"
)

type moodPayload struct {
	Mood      string `json:"mood"`
	Intensity int    `json:"intensity"`
	Note      string `json:"note"`
}

type chatPayload struct {
	Message string `json:"message"`
	History []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"history"`
}

// CheckinMood 记录一次心情打卡，成功后计入一次有效活跃动作
func (a *API) CheckinMood(c *gin.Context) {
	userID := currentUserID(c)

	var payload moodPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	checkin, err := a.moods.Checkin(userID, service.MoodInput{
		Mood:      payload.Mood,
		Intensity: payload.Intensity,
		Note:      payload.Note,
	})
	if err != nil {
		if errors.Is(err, service.ErrMoodInvalidInput) {
			respondError(c, http.StatusBadRequest, "心情打卡内容不完整")
			return
		}
		respondError(c, http.StatusInternalServerError, "保存心情打卡失败")
		return
	}

	a.recordActivity(c, userID)

	respondSuccess(c, http.StatusOK, gin.H{"checkin": moodToPayload(*checkin)})
}

// ListMoodCheckins 返回指定日期区间内的打卡记录，默认最近 30 天
func (a *API) ListMoodCheckins(c *gin.Context) {
	now := time.Now()
	start := now.AddDate(0, 0, -30)
	end := now

	if raw := c.Query("start"); raw != "" {
		if parsed, err := time.ParseInLocation(dateFormat, raw, time.Local); err == nil {
			start = parsed
		}
	}
	if raw := c.Query("end"); raw != "" {
		if parsed, err := time.ParseInLocation(dateFormat, raw, time.Local); err == nil {
			end = parsed.AddDate(0, 0, 1)
		}
	}

	checkins, err := a.moods.ListBetween(currentUserID(c), start, end)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取心情记录失败")
		return
	}

	items := make([]gin.H, 0, len(checkins))
	for _, checkin := range checkins {
		items = append(items, moodToPayload(checkin))
	}

	respondSuccess(c, http.StatusOK, gin.H{"checkins": items})
}

// MoodChat 处理心情陪伴对话，模型不可用时返回兜底回复而非错误
func (a *API) MoodChat(c *gin.Context) {
	var payload chatPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	history := make([]service.ChatTurn, 0, len(payload.History))
	for _, turn := range payload.History {
		history = append(history, service.ChatTurn{Role: turn.Role, Content: turn.Content})
	}

	reply, err := a.moodChat.Reply(c.Request.Context(), currentUserID(c), payload.Message, history)
	if err != nil {
		if errors.Is(err, service.ErrChatMessageEmpty) {
			respondError(c, http.StatusBadRequest, "消息不能为空")
			return
		}
		respondError(c, http.StatusInternalServerError, "对话服务暂不可用")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"reply":    reply.Content,
		"fallback": reply.Fallback,
	})
}

func moodToPayload(checkin db.MoodCheckin) gin.H {
	return gin.H{
		"id":         checkin.ID,
		"mood":       checkin.Mood,
		"intensity":  checkin.Intensity,
		"note":       checkin.Note,
		"created_at": checkin.CreatedAt.Format(time.RFC3339),
	}
}
