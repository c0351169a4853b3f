package handlers

import (
	"github.com/curiohub/curiohub/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the API on api, normally the /api/v1 group.
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup) {
	requireAuth := middleware.RequireAuth(h.auth)
	optionalAuth := middleware.OptionalAuth(h.auth)
	requireAdmin := middleware.RequireAdmin()
	authLimit := h.authLimiter.Middleware()

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authLimit, h.Register)
		authGroup.POST("/login", authLimit, h.Login)
		authGroup.POST("/reset-password", authLimit, h.RequestPasswordReset)
		authGroup.POST("/reset-password/confirm", authLimit, h.ConfirmPasswordReset)
		authGroup.GET("/me", requireAuth, h.Me)
		authGroup.PATCH("/me", requireAuth, h.UpdateMe)
		authGroup.POST("/me/avatar", requireAuth, h.UploadAvatar)
	}

	submissions := api.Group("/submissions")
	{
		submissions.GET("", h.GetFeed)
		submissions.GET("/discover", h.GetDiscover)
		submissions.GET("/:id", h.GetSubmission)
		submissions.POST("", requireAuth, h.CreateSubmission)
		submissions.PATCH("/:id/upvotes", requireAuth, h.UpdateUpvotes)
		submissions.PATCH("/:id/status", requireAuth, requireAdmin, h.ModerateSubmission)
		submissions.POST("/:id/recount", requireAuth, requireAdmin, h.RecountUpvotes)
	}

	api.GET("/tags", h.ListTags)

	profiles := api.Group("/profiles/:username")
	{
		profiles.GET("", h.GetProfile)
		profiles.GET("/submissions", optionalAuth, h.GetProfileSubmissions)
		profiles.GET("/saved", h.GetProfileSaved)
	}

	api.POST("/votes", requireAuth, h.CreateVote)

	bookmarks := api.Group("/bookmarks", requireAuth)
	{
		bookmarks.POST("", h.CreateBookmark)
		bookmarks.GET("/:submission_id", h.GetBookmark)
		bookmarks.DELETE("/:submission_id", h.DeleteBookmark)
	}

	cards := api.Group("/cards/:id", optionalAuth)
	{
		cards.GET("", h.GetCard)
		cards.POST("/vote", h.VoteCard)
		cards.POST("/bookmark", h.BookmarkCard)
	}
}
