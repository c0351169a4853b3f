package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/curiohub/curiohub/internal/logger"
	"github.com/curiohub/curiohub/internal/models"
	"github.com/curiohub/curiohub/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUsernameExists     = errors.New("username already taken")
	ErrInvalidUsername    = errors.New("username must be 3-30 characters of a-z, 0-9 or _")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

const (
	tokenTTL      = 24 * time.Hour
	resetTokenTTL = time.Hour
)

// Service handles registration, login, tokens and password resets.
type Service struct {
	jwtSecret []byte
	db        *gorm.DB
	users     repository.UserRepository
	now       func() time.Time
}

// NewService creates a new authentication service
func NewService(jwtSecret []byte, db *gorm.DB) *Service {
	return &Service{
		jwtSecret: jwtSecret,
		db:        db,
		users:     repository.NewUserRepository(db),
		now:       time.Now,
	}
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// RegisterRequest is the signup form. Username is normalised before
// validation, so "Jane.Doe" becomes "janedoe".
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Username    string `json:"username" binding:"required,max=60"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"max=50"`
}

// LoginRequest represents native login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account and returns a signed token for it.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	username := models.NormalizeUsername(req.Username)
	if !models.ValidUsername(username) {
		return nil, ErrInvalidUsername
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = username
	}

	user := models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: string(hashed),
	}
	switch err := s.users.CreateUser(ctx, &user); {
	case errors.Is(err, repository.ErrUsernameTaken):
		return nil, ErrUsernameExists
	case errors.Is(err, repository.ErrEmailTaken):
		return nil, ErrUserExists
	case err != nil:
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Log.Info("User registered", logger.WithUserID(user.ID), zap.String("username", user.Username))
	return s.GenerateToken(&user)
}

// Login checks an email/password pair.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.GenerateToken(user)
}

// GenerateToken signs a 24 hour HS256 token for user.
func (s *Service) GenerateToken(user *models.User) (*AuthResponse, error) {
	issued := s.now()
	expiresAt := issued.Add(tokenTTL)

	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"is_admin": user.IsAdmin,
		"exp":      expiresAt.Unix(),
		"iat":      issued.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &AuthResponse{
		Token:     tokenString,
		User:      *user,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken validates a JWT and returns the current user record.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid user_id in token")
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return user, nil
}

// RequestPasswordReset stores a single-use reset token for the account
// with email. Unknown emails return (nil, nil) so callers cannot test
// which addresses are registered.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (*models.PasswordReset, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	reset := models.PasswordReset{
		UserID:    user.ID,
		Token:     strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", ""),
		ExpiresAt: s.now().UTC().Add(resetTokenTTL),
	}
	if err := s.db.WithContext(ctx).Create(&reset).Error; err != nil {
		return nil, fmt.Errorf("failed to create reset token: %w", err)
	}
	reset.User = *user
	return &reset, nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reset models.PasswordReset
		err := tx.Where("token = ? AND used = ? AND expires_at > ?", token, false, s.now().UTC()).First(&reset).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		if err != nil {
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Model(&reset).Update("used", true).Error; err != nil {
			return fmt.Errorf("failed to consume reset token: %w", err)
		}
		if err := repository.NewUserRepository(tx).UpdatePassword(ctx, reset.UserID, string(hashed)); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		return nil
	})
}
