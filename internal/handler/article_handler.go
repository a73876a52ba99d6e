package handler

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mindhaven/internal/db"
	"github.com/mindhaven/internal/service"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

type articlePayload struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Summary    string `json:"summary"`
	CoverURL   string `json:"cover_url"`
	CategoryID uint   `json:"category_id"`
}

// ListArticles 返回后台文章列表（含草稿与分页计数）
func (a *API) ListArticles(c *gin.Context) {
	filter := service.ArticleFilter{
		Search:  c.Query("search"),
		Status:  c.Query("status"),
		Page:    parsePositiveInt(c.DefaultQuery("page", "1"), 1),
		PerPage: parsePositiveInt(c.DefaultQuery("per_page", "10"), 10),
	}
	if id, err := parseUintQuery(c, "category_id"); err == nil {
		filter.CategoryID = id
	}

	result, err := a.articles.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取文章列表失败")
		return
	}

	items := make([]gin.H, 0, len(result.Articles))
	for _, article := range result.Articles {
		items = append(items, articleToPayload(article, false))
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"articles":        items,
		"total":           result.Total,
		"published_count": result.PublishedCount,
		"draft_count":     result.DraftCount,
		"total_pages":     result.TotalPages,
		"page":            result.Page,
		"per_page":        result.PerPage,
	})
}

// ListPublishedArticles 返回学生端可见的文章列表
func (a *API) ListPublishedArticles(c *gin.Context) {
	filter := service.ArticleFilter{
		Search:  c.Query("search"),
		Status:  "published",
		Page:    parsePositiveInt(c.DefaultQuery("page", "1"), 1),
		PerPage: parsePositiveInt(c.DefaultQuery("per_page", "10"), 10),
	}
	if id, err := parseUintQuery(c, "category_id"); err == nil {
		filter.CategoryID = id
	}

	result, err := a.articles.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取文章列表失败")
		return
	}

	items := make([]gin.H, 0, len(result.Articles))
	for _, article := range result.Articles {
		items = append(items, articleToPayload(article, false))
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"articles":    items,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
		"per_page":    result.PerPage,
	})
}

// GetArticle 返回后台单篇文章详情（Markdown 原文）
func (a *API) GetArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的文章ID")
		return
	}

	article, err := a.articles.Get(id)
	if err != nil {
		handleArticleError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"article": articleToPayload(*article, false)})
}

// ReadArticle 返回渲染后的文章正文，并记录一次阅读事件
func (a *API) ReadArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的文章ID")
		return
	}

	article, err := a.articles.GetPublished(id)
	if err != nil {
		handleArticleError(c, err)
		return
	}

	userID := currentUserID(c)
	if userID != 0 {
		counted, err := a.access.RecordAccess(userID, db.AccessKindArticle, article.ID, time.Now())
		if err != nil {
			c.Error(err)
		}
		if counted {
			a.recordActivity(c, userID)
		}
	}

	respondSuccess(c, http.StatusOK, gin.H{"article": articleToPayload(*article, true)})
}

// CreateArticle 创建文章
func (a *API) CreateArticle(c *gin.Context) {
	var payload articlePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	article, err := a.articles.Create(service.ArticleInput{
		Title:      payload.Title,
		Content:    payload.Content,
		Summary:    payload.Summary,
		CoverURL:   payload.CoverURL,
		CategoryID: payload.CategoryID,
		AuthorID:   currentUserID(c),
	})
	if err != nil {
		handleArticleError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"article": articleToPayload(*article, false)})
}

// UpdateArticle 更新文章
func (a *API) UpdateArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的文章ID")
		return
	}

	var payload articlePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	article, err := a.articles.Update(id, service.ArticleInput{
		Title:      payload.Title,
		Content:    payload.Content,
		Summary:    payload.Summary,
		CoverURL:   payload.CoverURL,
		CategoryID: payload.CategoryID,
	})
	if err != nil {
		handleArticleError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"article": articleToPayload(*article, false)})
}

// PublishArticle 切换文章发布状态
func (a *API) PublishArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的文章ID")
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	article, err := a.articles.SetStatus(id, payload.Status)
	if err != nil {
		handleArticleError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"article": articleToPayload(*article, false)})
}

// DeleteArticle 删除文章
func (a *API) DeleteArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的文章ID")
		return
	}

	if err := a.articles.Delete(id); err != nil {
		respondError(c, http.StatusInternalServerError, "删除文章失败")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

// renderMarkdown 将 Markdown 渲染为清洗后的 HTML
func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return ""
	}
	return sanitizer.Sanitize(buf.String())
}

func articleToPayload(article db.Article, rendered bool) gin.H {
	item := gin.H{
		"id":           article.ID,
		"title":        article.Title,
		"summary":      article.Summary,
		"cover_url":    article.CoverURL,
		"reading_time": article.ReadingTime,
		"status":       article.Status,
		"category_id":  article.CategoryID,
		"created_at":   article.CreatedAt.Format(time.RFC3339),
	}
	if article.Category.ID != 0 {
		item["category"] = article.Category.Name
	}
	if rendered {
		item["html"] = renderMarkdown(article.Content)
	} else {
		item["content"] = article.Content
	}
	return item
}

func parseUintQuery(c *gin.Context, key string) (uint, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, errors.New("missing query")
	}
	return parseUintValue(raw)
}

func handleArticleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrArticleNotFound):
		respondError(c, http.StatusNotFound, "文章不存在")
	case errors.Is(err, service.ErrArticleInvalidInput):
		respondError(c, http.StatusBadRequest, "文章内容不完整")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
