package handlers

import (
	"github.com/curiohub/curiohub/internal/auth"
	"github.com/curiohub/curiohub/internal/cache"
	"github.com/curiohub/curiohub/internal/email"
	"github.com/curiohub/curiohub/internal/middleware"
	"github.com/curiohub/curiohub/internal/repository"
	"github.com/curiohub/curiohub/internal/storage"
	"gorm.io/gorm"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	db          *gorm.DB
	auth        auth.AuthServiceInterface
	users       repository.UserRepository
	submissions repository.SubmissionRepository
	tags        repository.TagRepository
	mailer      email.Sender
	feedCache   *cache.FeedCache
	authLimiter *middleware.RateLimiter
	avatars     storage.AvatarUploader
}

// NewHandlers creates a new handlers instance
func NewHandlers(db *gorm.DB, authService auth.AuthServiceInterface, mailer email.Sender) *Handlers {
	return &Handlers{
		db:          db,
		auth:        authService,
		users:       repository.NewUserRepository(db),
		submissions: repository.NewSubmissionRepository(db),
		tags:        repository.NewTagRepository(db),
		mailer:      mailer,
		authLimiter: middleware.NewRateLimiter(middleware.AuthRateLimitConfig()),
	}
}

// AuthLimiter is the limiter guarding login and signup, exposed so the
// server can sweep it.
func (h *Handlers) AuthLimiter() *middleware.RateLimiter {
	return h.authLimiter
}

// SetFeedCache enables caching of the public listings. Without it every
// listing request hits the database.
func (h *Handlers) SetFeedCache(fc *cache.FeedCache) {
	h.feedCache = fc
}

// SetAvatarUploader enables POST /auth/me/avatar. Without one the endpoint
// answers 503.
func (h *Handlers) SetAvatarUploader(u storage.AvatarUploader) {
	h.avatars = u
}
