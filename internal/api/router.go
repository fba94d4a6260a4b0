package api

import (
	a "mediverse/internal/auth"
	"mediverse/internal/config"
	"mediverse/internal/contest"
	"mediverse/internal/hub"
	"mediverse/internal/profile"

	"mediverse/internal/ai"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Router struct {
	ah *AuthHandlers
	ph *PostHandlers
	th *ThreadHandlers
	rh *ReplyHandlers
	fh *ProfileHandlers
	mh *RoadmapHandlers
	sh *ResumeHandlers
	ch *ContestHandlers
	wh *WebSocketHandler
	am *a.AuthMiddleware

	allowedOrigin string
}

func NewRouter(db *gorm.DB, h *hub.Hub, cfg config.Config) *Router {
	aiClient := ai.NewClient(cfg.GeminiAPIKey)
	profiles := profile.NewProfileService(db, profile.NewCodeforcesClient())

	return &Router{
		ah:            NewAuthHandlers(db, profiles),
		ph:            NewPostHandlers(db, h, cfg.UploadDir),
		th:            NewThreadHandlers(db, h),
		rh:            NewReplyHandlers(db, h),
		fh:            NewProfileHandlers(db, profiles),
		mh:            NewRoadmapHandlers(db, aiClient),
		sh:            NewResumeHandlers(aiClient),
		ch:            NewContestHandlers(contest.NewContestService()),
		wh:            NewWebSocketHandler(h, cfg.AllowedOrigin),
		am:            a.NewAuthMiddleware(),
		allowedOrigin: cfg.AllowedOrigin,
	}
}

func (r *Router) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(r.allowedOrigin))

	router.GET("/hc", HealthCheckHandler)
	router.GET("/ws", r.wh.HandleWebSocket)

	{
		authGroup := router.Group("/api/auth")
		authGroup.POST("/register", r.ah.RegisterHandler)
		authGroup.POST("/login", r.ah.LoginHandler)
		authGroup.POST("/refresh_token", r.ah.RefreshTokenHandler)

		protected := authGroup.Group("")
		protected.Use(r.am.RequireAuth())
		protected.POST("/logout", r.ah.LogoutHandler)
		protected.GET("/me", r.ah.MeHandler)
	}

	{
		posts := router.Group("/api/posts")
		posts.GET("", r.ph.GetAllPostsHandler)
		posts.GET("/slug/:slug", r.ph.GetPostBySlugHandler)
		posts.GET("/:id/comments", r.ph.GetCommentsHandler)

		protected := posts.Group("")
		protected.Use(r.am.RequireAuth())
		protected.POST("", r.ph.CreatePostHandler)
		protected.PUT("/:id", r.ph.UpdatePostHandler)
		protected.DELETE("/:id", r.ph.DeletePostHandler)
		protected.POST("/:id/like", r.ph.ToggleLikeHandler)
		protected.POST("/:id/comments", r.ph.AddCommentHandler)
		protected.DELETE("/:id/comments/:commentId", r.ph.DeleteCommentHandler)
	}

	{
		threads := router.Group("/api/threads")
		threads.GET("", r.th.GetAllThreadsHandler)
		threads.GET("/:id", r.th.GetThreadHandler)
		threads.GET("/:id/replies", r.th.GetRepliesHandler)

		protected := threads.Group("")
		protected.Use(r.am.RequireAuth())
		protected.POST("", r.th.CreateThreadHandler)
		protected.DELETE("/:id", r.th.DeleteThreadHandler)
		protected.PATCH("/:id/upvote", r.th.ToggleUpvoteHandler)
		protected.POST("/:id/replies", r.th.CreateReplyHandler)
	}

	{
		replies := router.Group("/api/replies")
		replies.Use(r.am.RequireAuth())
		replies.DELETE("/:id", r.rh.DeleteReplyHandler)
		replies.PATCH("/:id/upvote", r.rh.ToggleReplyUpvoteHandler)
	}

	{
		profiles := router.Group("/api/profile")
		profiles.Use(r.am.RequireAuth())
		profiles.GET("/me", r.fh.GetMyProfileHandler)
		profiles.PUT("/me", r.fh.UpdateMyProfileHandler)
		profiles.DELETE("/me", r.fh.DeleteMyAccountHandler)
		profiles.POST("/me/stats/refresh", r.fh.RefreshStatsHandler)
		profiles.GET("/:userId", r.fh.GetProfileByIDHandler)
	}

	{
		roadmaps := router.Group("/api/roadmap")
		roadmaps.Use(r.am.RequireAuth())
		roadmaps.POST("/generate", r.mh.GenerateRoadmapHandler)
		roadmaps.POST("/save", r.mh.SaveRoadmapHandler)
		roadmaps.GET("/my", r.mh.GetMyRoadmapsHandler)
		roadmaps.GET("/:id", r.mh.GetRoadmapByIDHandler)
	}

	{
		resumes := router.Group("/api/resume")
		resumes.Use(r.am.RequireAuth())
		resumes.POST("/analyze", r.sh.AnalyzeResumeHandler)
	}

	router.GET("/api/contests", r.ch.ListContestsHandler)

	{
		ws := router.Group("/ws")
		ws.Use(r.am.RequireAuth())
		ws.GET("/info", r.wh.GetConnectionInfo)
	}
}

func HealthCheckHandler(c *gin.Context) {
	c.String(200, "Running")
}

// corsMiddleware admits the configured frontend origin with credentials, the
// same origin the websocket upgrader checks.
func corsMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == allowedOrigin {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
