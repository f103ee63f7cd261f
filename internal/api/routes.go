package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/khabar/internal/auth"
	"github.com/bilgisen/khabar/internal/middleware"
)

// route is one protected admin endpoint and the operation it requires.
type route struct {
	method  string
	path    string
	op      auth.Operation
	handler fiber.Handler
}

// adminRoutes lists every protected endpoint under /api/admin. Static
// segments come before parameterised ones so they match first.
func (h *Handlers) adminRoutes() []route {
	return []route{
		{fiber.MethodGet, "/profile", auth.OpProfile, h.GetProfile},
		{fiber.MethodPut, "/profile", auth.OpProfile, h.UpdateProfile},

		{fiber.MethodGet, "/articles", auth.OpArticlesRead, h.ListArticles},
		{fiber.MethodPost, "/articles", auth.OpArticlesWrite, h.CreateArticle},
		{fiber.MethodGet, "/articles/:id", auth.OpArticlesRead, h.GetAdminArticle},
		{fiber.MethodPut, "/articles/:id", auth.OpArticlesWrite, h.UpdateArticle},
		{fiber.MethodDelete, "/articles/:id", auth.OpArticlesDelete, h.DeleteArticle},
		{fiber.MethodGet, "/articles/:id/versions", auth.OpArticlesRead, h.ListArticleVersions},
		{fiber.MethodPost, "/articles/:id/publish", auth.OpArticlesPublish, h.PublishArticle},
		{fiber.MethodPost, "/articles/:id/schedule", auth.OpArticlesPublish, h.ScheduleArticle},

		{fiber.MethodGet, "/categories", auth.OpCategoriesRead, h.ListAdminCategories},
		{fiber.MethodPost, "/categories", auth.OpCategoriesWrite, h.CreateCategory},
		{fiber.MethodGet, "/categories/:id", auth.OpCategoriesRead, h.GetCategory},
		{fiber.MethodPut, "/categories/:id", auth.OpCategoriesWrite, h.UpdateCategory},
		{fiber.MethodDelete, "/categories/:id", auth.OpCategoriesDelete, h.DeleteCategory},

		{fiber.MethodGet, "/breaking-news", auth.OpBreakingRead, h.ListAdminBreakingNews},
		{fiber.MethodPost, "/breaking-news", auth.OpBreakingWrite, h.CreateBreakingNews},
		{fiber.MethodGet, "/breaking-news/:id", auth.OpBreakingRead, h.GetBreakingNewsItem},
		{fiber.MethodPut, "/breaking-news/:id", auth.OpBreakingWrite, h.UpdateBreakingNews},
		{fiber.MethodDelete, "/breaking-news/:id", auth.OpBreakingDelete, h.DeleteBreakingNews},

		{fiber.MethodGet, "/videos", auth.OpVideosRead, h.ListAdminVideos},
		{fiber.MethodPost, "/videos", auth.OpVideosWrite, h.CreateVideo},
		{fiber.MethodGet, "/videos/:id", auth.OpVideosRead, h.GetVideo},
		{fiber.MethodPut, "/videos/:id", auth.OpVideosWrite, h.UpdateVideo},
		{fiber.MethodDelete, "/videos/:id", auth.OpVideosDelete, h.DeleteVideo},

		{fiber.MethodGet, "/live-streams", auth.OpStreamsRead, h.ListAdminLiveStreams},
		{fiber.MethodPost, "/live-streams", auth.OpStreamsWrite, h.CreateLiveStream},
		{fiber.MethodGet, "/live-streams/:id", auth.OpStreamsRead, h.GetLiveStream},
		{fiber.MethodPut, "/live-streams/:id", auth.OpStreamsWrite, h.UpdateLiveStream},
		{fiber.MethodDelete, "/live-streams/:id", auth.OpStreamsDelete, h.DeleteLiveStream},

		{fiber.MethodGet, "/advertisements", auth.OpAdsRead, h.ListAdminAdvertisements},
		{fiber.MethodPost, "/advertisements", auth.OpAdsWrite, h.CreateAdvertisement},
		{fiber.MethodGet, "/advertisements/:id", auth.OpAdsRead, h.GetAdvertisement},
		{fiber.MethodPut, "/advertisements/:id", auth.OpAdsWrite, h.UpdateAdvertisement},
		{fiber.MethodDelete, "/advertisements/:id", auth.OpAdsWrite, h.DeleteAdvertisement},

		{fiber.MethodGet, "/rss-sources", auth.OpRssRead, h.ListRssSources},
		{fiber.MethodPost, "/rss-sources", auth.OpRssWrite, h.CreateRssSource},
		{fiber.MethodPost, "/rss-sources/sync-all", auth.OpRssSync, h.SyncAllRssSources},
		{fiber.MethodGet, "/rss-sources/:id", auth.OpRssRead, h.GetRssSource},
		{fiber.MethodPut, "/rss-sources/:id", auth.OpRssWrite, h.UpdateRssSource},
		{fiber.MethodDelete, "/rss-sources/:id", auth.OpRssWrite, h.DeleteRssSource},
		{fiber.MethodPost, "/rss-sources/:id/sync", auth.OpRssSync, h.SyncRssSource},
		{fiber.MethodGet, "/rss-sources/:id/items", auth.OpRssRead, h.ListRssItems},
		{fiber.MethodPost, "/rss-items/:id/import", auth.OpRssImport, h.ImportRssItem},

		{fiber.MethodGet, "/users", auth.OpUsersManage, h.ListUsers},
		{fiber.MethodPost, "/users", auth.OpUsersManage, h.CreateUser},
		{fiber.MethodGet, "/users/:id", auth.OpUsersManage, h.GetUser},
		{fiber.MethodPut, "/users/:id", auth.OpUsersManage, h.UpdateUser},
		{fiber.MethodDelete, "/users/:id", auth.OpUsersManage, h.DeleteUser},

		{fiber.MethodPost, "/upload/image", auth.OpUpload, h.UploadImage},
		{fiber.MethodPost, "/upload/video", auth.OpUpload, h.UploadVideo},
	}
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, h *Handlers) {
	app.Get("/health", h.HealthCheck)

	api := app.Group("/api")

	// Public site
	api.Get("/categories", h.GetCategories)
	api.Get("/articles", h.GetArticles)
	api.Get("/articles/:id", h.GetArticle)
	api.Get("/trending-articles", h.GetTrendingArticles)
	api.Get("/breaking-news", h.GetBreakingNews)
	api.Get("/live-streams", h.GetLiveStreams)
	api.Get("/advertisements", h.GetAdvertisements)
	api.Get("/videos", h.GetVideos)

	// Admin CMS
	admin := api.Group("/admin")
	admin.Post("/login", h.Login)
	admin.Post("/logout", h.Logout)
	for _, r := range h.adminRoutes() {
		admin.Add(r.method, r.path, middleware.Require(h.auth, r.op), r.handler)
	}

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
