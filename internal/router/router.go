package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/mindhaven/internal/config"
	"github.com/mindhaven/internal/handler"
	"gorm.io/gorm"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(gdb *gorm.DB, cfg config.AppConfig) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("mindhaven_session", store))

	api := handler.NewAPI(gdb, cfg.UploadDir, cfg.UploadURLPath)

	// 静态文件服务（上传的封面与音频）
	r.Static(cfg.UploadURLPath, cfg.UploadDir)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// 认证入口
	auth := r.Group("/auth")
	{
		auth.POST("/register", api.Register)
		auth.POST("/login", api.Login)
		auth.POST("/logout", api.Logout)
		auth.GET("/me", api.Me)
	}

	// 学生端接口，需登录
	student := r.Group("/api")
	student.Use(handler.AuthRequired())
	{
		student.GET("/articles", api.ListPublishedArticles)
		student.GET("/articles/:id", api.ReadArticle)

		student.GET("/resources", api.ListPublishedResources)
		student.POST("/resources/:id/play", api.PlayResource)

		student.GET("/categories", api.ListCategories)

		student.POST("/journals", api.CreateJournal)
		student.GET("/journals", api.ListJournals)
		student.GET("/journals/:id", api.GetJournal)
		student.DELETE("/journals/:id", api.DeleteJournal)

		student.POST("/moods", api.CheckinMood)
		student.GET("/moods", api.ListMoodCheckins)
		student.POST("/moods/chat", api.MoodChat)

		student.GET("/badges/me", api.GetMyBadges)
		student.GET("/streak/me", api.GetMyStreak)
	}

	// 后台管理接口，需管理员角色
	admin := r.Group("/admin/api")
	admin.Use(handler.AdminRequired())
	{
		admin.GET("/dashboard", api.Dashboard)
		admin.GET("/students", api.ListStudents)
		admin.POST("/students/:id/streak/reset", api.ResetUserStreak)

		admin.GET("/articles", api.ListArticles)
		admin.GET("/articles/:id", api.GetArticle)
		admin.POST("/articles", api.CreateArticle)
		admin.PUT("/articles/:id", api.UpdateArticle)
		admin.PUT("/articles/:id/status", api.PublishArticle)
		admin.DELETE("/articles/:id", api.DeleteArticle)

		admin.GET("/resources", api.ListResources)
		admin.POST("/resources", api.CreateResource)
		admin.PUT("/resources/:id", api.UpdateResource)
		admin.DELETE("/resources/:id", api.DeleteResource)

		admin.GET("/categories", api.ListCategories)
		admin.POST("/categories", api.CreateCategory)
		admin.PUT("/categories/:id", api.RenameCategory)
		admin.DELETE("/categories/:id", api.DeleteCategory)

		admin.GET("/badges", api.ListBadges)
		admin.GET("/badges/:id", api.GetBadge)
		admin.POST("/badges", api.CreateBadge)
		admin.PUT("/badges/:id", api.UpdateBadge)
		admin.DELETE("/badges/:id", api.DeleteBadge)

		admin.GET("/settings", api.GetSettings)
		admin.PUT("/settings", api.UpdateSettings)

		admin.POST("/uploads", api.UploadFile)
	}

	return r
}
