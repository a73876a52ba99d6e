package handler

import (
	"github.com/mindhaven/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db         *gorm.DB
	articles   *service.ArticleService
	resources  *service.ResourceService
	categories *service.CategoryService
	journals   *service.JournalService
	moods      *service.MoodService
	streaks    *service.StreakService
	badges     *service.BadgeService
	activity   *service.ActivityService
	access     *service.AccessService
	system     *service.SystemSettingService
	moodChat   *service.MoodChatService
	uploadDir  string
	uploadURL  string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, uploadDir, uploadURL string) *API {
	systemService := service.NewSystemSettingService(db)
	streakService := service.NewStreakService(db)
	badgeService := service.NewBadgeService(db)
	moodService := service.NewMoodService(db)

	return &API{
		db:         db,
		articles:   service.NewArticleService(db),
		resources:  service.NewResourceService(db),
		categories: service.NewCategoryService(db),
		journals:   service.NewJournalService(db),
		moods:      moodService,
		streaks:    streakService,
		badges:     badgeService,
		activity:   service.NewActivityService(streakService, badgeService),
		access:     service.NewAccessService(db),
		system:     systemService,
		moodChat:   service.NewMoodChatService(systemService, moodService),
		uploadDir:  uploadDir,
		uploadURL:  uploadURL,
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}
