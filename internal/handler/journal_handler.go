package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mindhaven/internal/db"
	"github.com/mindhaven/internal/service"
)

type journalPayload struct {
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	MediaURL string `json:"media_url"`
	Mood     string `json:"mood"`
}

// CreateJournal 保存一篇日记，成功后计入一次有效活跃动作
func (a *API) CreateJournal(c *gin.Context) {
	userID := currentUserID(c)

	var payload journalPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	entry, err := a.journals.Create(userID, service.JournalInput{
		Kind:     payload.Kind,
		Title:    payload.Title,
		Content:  payload.Content,
		MediaURL: payload.MediaURL,
		Mood:     payload.Mood,
	})
	if err != nil {
		handleJournalError(c, err)
		return
	}

	a.recordActivity(c, userID)

	respondSuccess(c, http.StatusOK, gin.H{"entry": journalToPayload(*entry)})
}

// ListJournals 返回当前用户的日记列表
func (a *API) ListJournals(c *gin.Context) {
	entries, err := a.journals.List(currentUserID(c), service.JournalFilter{
		Kind:   c.Query("kind"),
		Search: c.Query("search"),
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取日记列表失败")
		return
	}

	items := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		items = append(items, journalToPayload(entry))
	}

	respondSuccess(c, http.StatusOK, gin.H{"entries": items})
}

// GetJournal 返回当前用户的单篇日记
func (a *API) GetJournal(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日记ID")
		return
	}

	entry, err := a.journals.Get(currentUserID(c), id)
	if err != nil {
		handleJournalError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"entry": journalToPayload(*entry)})
}

// DeleteJournal 删除当前用户的日记
func (a *API) DeleteJournal(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日记ID")
		return
	}

	if err := a.journals.Delete(currentUserID(c), id); err != nil {
		handleJournalError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

func journalToPayload(entry db.JournalEntry) gin.H {
	return gin.H{
		"id":         entry.ID,
		"kind":       entry.Kind,
		"title":      entry.Title,
		"content":    entry.Content,
		"media_url":  entry.MediaURL,
		"mood":       entry.Mood,
		"created_at": entry.CreatedAt.Format(time.RFC3339),
	}
}

func handleJournalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrJournalNotFound):
		respondError(c, http.StatusNotFound, "日记不存在")
	case errors.Is(err, service.ErrJournalInvalidInput):
		respondError(c, http.StatusBadRequest, "日记内容不完整")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
