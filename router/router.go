package router

import (
	"github.com/gin-gonic/gin"

	"github.com/zasai/zas-translate/controllers"
	"github.com/zasai/zas-translate/middlewares"
	"github.com/zasai/zas-translate/models"
	"github.com/zasai/zas-translate/repository"
	"github.com/zasai/zas-translate/web"
)

type Options struct {
	// nil disables the assistant rate limit
	AssistantLimiter *middlewares.RateLimiter
	Swagger          bool
}

func SetupRouter(h *controllers.Handler, users repository.UserRepository, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.GinLogger(), middlewares.GinRecovery())
	r.SetHTMLTemplate(web.Templates())
	if opts.Swagger {
		mountSwagger(r)
	}

	// pages
	public := r.Group("/", middlewares.OptionalAuth(users))
	{
		public.GET("/", h.Page("index.html", "Translate"))
		public.GET("/features", h.Page("features.html", "Features"))
		public.GET("/auth", h.Page("auth.html", "Sign in"))
	}
	private := r.Group("/", middlewares.PageAuth(users))
	{
		private.GET("/profile", h.Page("profile.html", "Profile"))
		private.GET("/history", h.Page("history.html", "History"))
		private.GET("/stats", h.Page("stats.html", "Statistics"))
	}

	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.GET("/languages", h.Languages)
	api.POST("/translate", middlewares.OptionalAuth(users), h.Translate)

	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", middlewares.AuthMiddleWare(users), h.Me)
	}

	chat := []gin.HandlerFunc{middlewares.OptionalAuth(users)}
	if opts.AssistantLimiter != nil {
		chat = append(chat, middlewares.RateLimit(opts.AssistantLimiter))
	}
	assistant := api.Group("/assistant", middlewares.CORS())
	{
		assistant.OPTIONS("", h.AssistantPreflight)
		assistant.POST("", append(chat[:len(chat):len(chat)], h.AssistantChat)...)
		assistant.GET("/ws", append(chat[:len(chat):len(chat)], h.AssistantWS)...)
	}

	user := api.Group("", middlewares.AuthMiddleWare(users))
	{
		user.GET("/profile", h.GetProfile)
		user.PUT("/profile", h.UpdateProfile)

		user.GET("/history", h.ListHistory)
		user.DELETE("/history", h.ClearHistory)
		user.GET("/history/:id", h.GetHistory)
		user.DELETE("/history/:id", h.DeleteHistory)

		user.GET("/stats", h.GetStats)
	}

	admin := api.Group("/admin", middlewares.AuthMiddleWare(users), middlewares.RolePermission(models.RoleAdmin))
	{
		admin.GET("/overview", h.AdminOverview)
	}

	r.NoRoute(middlewares.OptionalAuth(users), h.NotFound)
	return r
}
