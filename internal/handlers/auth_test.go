package handlers

import (
	"net/http"

	"github.com/curiohub/curiohub/internal/models"
)

func (s *HandlersTestSuite) TestRegisterNormalisesUsername() {
	w := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "carol@example.com", "username": "Carol.Doe", "password": "password123",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Username    string `json:"username"`
			DisplayName string `json:"display_name"`
			Email       string `json:"email"`
		} `json:"user"`
	}
	s.decode(w, &resp)
	s.NotEmpty(resp.Token)
	s.Equal("caroldoe", resp.User.Username)
	s.Equal("caroldoe", resp.User.DisplayName)
	s.Empty(resp.User.Email, "email must not be serialised")
}

func (s *HandlersTestSuite) TestRegisterConflicts() {
	w := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "new@example.com", "username": "ALICE", "password": "password123",
	})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("DUPLICATE", s.errorCode(w))

	w = s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "new@example.com", "username": "x!", "password": "password123",
	})
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "not-an-email", "username": "dave", "password": "password123",
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestLoginAndMe() {
	w := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "password123",
	})
	s.Require().Equal(http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	s.decode(w, &login)

	w = s.do(http.MethodGet, "/api/v1/auth/me", login.Token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"username":"alice"`)

	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/auth/me", "", nil).Code)
}

func (s *HandlersTestSuite) TestUpdateMeSanitises() {
	w := s.do(http.MethodPatch, "/api/v1/auth/me", s.aliceToken, map[string]string{
		"display_name": "<b>Alice</b>", "bio": "I like <script>alert(1)</script>links",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Body.String(), `"display_name":"Alice"`)
	s.NotContains(w.Body.String(), "script")

	w = s.do(http.MethodPatch, "/api/v1/auth/me", s.aliceToken, map[string]string{"bio": "Tom & Jerry"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var me struct {
		User models.User `json:"user"`
	}
	s.decode(w, &me)
	s.Equal("Tom & Jerry", me.User.Bio)

	w = s.do(http.MethodPatch, "/api/v1/auth/me", s.aliceToken, map[string]string{"avatar_url": "ftp://x"})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *HandlersTestSuite) TestPasswordResetFlow() {
	w := s.do(http.MethodPost, "/api/v1/auth/reset-password", "", map[string]string{"email": "nobody@example.com"})
	s.Equal(http.StatusOK, w.Code)
	s.Empty(s.mailer.tokens)

	w = s.do(http.MethodPost, "/api/v1/auth/reset-password", "", map[string]string{"email": "alice@example.com"})
	s.Require().Equal(http.StatusOK, w.Code)
	token := s.mailer.tokens["alice@example.com"]
	s.Require().NotEmpty(token)

	w = s.do(http.MethodPost, "/api/v1/auth/reset-password/confirm", "", map[string]string{
		"token": token, "password": "new-password-1",
	})
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/reset-password/confirm", "", map[string]string{
		"token": token, "password": "new-password-2",
	})
	s.Equal(http.StatusUnprocessableEntity, w.Code, "tokens are single use")

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "new-password-1",
	})
	s.Equal(http.StatusOK, w.Code)
}
