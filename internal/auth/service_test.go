package auth

import (
	"context"
	"testing"
	"time"

	"github.com/curiohub/curiohub/internal/database"
	"github.com/curiohub/curiohub/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type AuthServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	db          *gorm.DB
	authService *Service
}

func (suite *AuthServiceTestSuite) SetupTest() {
	db, err := database.OpenSQLite(":memory:")
	suite.Require().NoError(err)
	suite.Require().NoError(database.Migrate(db))

	suite.ctx = context.Background()
	suite.db = db
	suite.authService = NewService([]byte("test-secret"), db)
}

func (suite *AuthServiceTestSuite) register(email, username string) *AuthResponse {
	resp, err := suite.authService.Register(suite.ctx, RegisterRequest{
		Email:    email,
		Username: username,
		Password: "correct horse",
	})
	suite.Require().NoError(err)
	return resp
}

func (suite *AuthServiceTestSuite) TestRegisterNormalizesUsername() {
	resp := suite.register("Jane@Example.com", "Jane.Doe!")

	suite.Equal("janedoe", resp.User.Username)
	suite.Equal("janedoe", resp.User.DisplayName)
	suite.Equal("jane@example.com", resp.User.Email)
	suite.NotEmpty(resp.Token)
	suite.NotEqual("correct horse", resp.User.PasswordHash)
}

func (suite *AuthServiceTestSuite) TestRegisterRejectsDuplicatesAndBadNames() {
	suite.register("a@example.com", "alice")

	_, err := suite.authService.Register(suite.ctx, RegisterRequest{Email: "b@example.com", Username: "ALICE", Password: "password1"})
	suite.ErrorIs(err, ErrUsernameExists)

	_, err = suite.authService.Register(suite.ctx, RegisterRequest{Email: "A@example.com", Username: "alice2", Password: "password1"})
	suite.ErrorIs(err, ErrUserExists)

	_, err = suite.authService.Register(suite.ctx, RegisterRequest{Email: "c@example.com", Username: "!!", Password: "password1"})
	suite.ErrorIs(err, ErrInvalidUsername)
}

func (suite *AuthServiceTestSuite) TestLogin() {
	suite.register("a@example.com", "alice")

	resp, err := suite.authService.Login(suite.ctx, LoginRequest{Email: "A@Example.com", Password: "correct horse"})
	suite.Require().NoError(err)
	suite.Equal("alice", resp.User.Username)

	_, err = suite.authService.Login(suite.ctx, LoginRequest{Email: "a@example.com", Password: "wrong"})
	suite.ErrorIs(err, ErrInvalidCredentials)

	_, err = suite.authService.Login(suite.ctx, LoginRequest{Email: "nobody@example.com", Password: "x"})
	suite.ErrorIs(err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestValidateToken() {
	resp := suite.register("a@example.com", "alice")

	user, err := suite.authService.ValidateToken(suite.ctx, resp.Token)
	suite.Require().NoError(err)
	suite.Equal(resp.User.ID, user.ID)

	_, err = NewService([]byte("other-secret"), suite.db).ValidateToken(suite.ctx, resp.Token)
	suite.Error(err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": user.ID})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	suite.Require().NoError(err)
	_, err = suite.authService.ValidateToken(suite.ctx, unsigned)
	suite.Error(err)
}

func (suite *AuthServiceTestSuite) TestExpiredToken() {
	resp := suite.register("a@example.com", "alice")
	suite.authService.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	old, err := suite.authService.GenerateToken(&resp.User)
	suite.Require().NoError(err)
	suite.authService.now = time.Now

	_, err = suite.authService.ValidateToken(suite.ctx, old.Token)
	suite.Error(err)
}

func (suite *AuthServiceTestSuite) TestPasswordReset() {
	suite.register("a@example.com", "alice")

	missing, err := suite.authService.RequestPasswordReset(suite.ctx, "ghost@example.com")
	suite.NoError(err)
	suite.Nil(missing)

	reset, err := suite.authService.RequestPasswordReset(suite.ctx, "a@example.com")
	suite.Require().NoError(err)
	suite.Require().NotNil(reset)
	suite.Len(reset.Token, 64)

	suite.Require().NoError(suite.authService.ResetPassword(suite.ctx, reset.Token, "brand new pass"))
	suite.ErrorIs(suite.authService.ResetPassword(suite.ctx, reset.Token, "again again"), ErrInvalidResetToken)

	_, err = suite.authService.Login(suite.ctx, LoginRequest{Email: "a@example.com", Password: "brand new pass"})
	suite.NoError(err)
	_, err = suite.authService.Login(suite.ctx, LoginRequest{Email: "a@example.com", Password: "correct horse"})
	suite.ErrorIs(err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestExpiredResetToken() {
	suite.register("a@example.com", "alice")
	reset, err := suite.authService.RequestPasswordReset(suite.ctx, "a@example.com")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.db.Model(&models.PasswordReset{}).
		Where("id = ?", reset.ID).
		Update("expires_at", time.Now().UTC().Add(-time.Minute)).Error)

	suite.ErrorIs(suite.authService.ResetPassword(suite.ctx, reset.Token, "brand new pass"), ErrInvalidResetToken)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
