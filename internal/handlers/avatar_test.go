package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"

	"github.com/curiohub/curiohub/internal/models"
	"github.com/curiohub/curiohub/internal/repository"
	"github.com/curiohub/curiohub/internal/storage"
)

type fakeUploader struct {
	uploads map[string][]byte
	deleted []string
	n       int
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploads: map[string][]byte{}}
}

func (f *fakeUploader) UploadAvatar(_ context.Context, file multipart.File, header *multipart.FileHeader, userID string) (*storage.UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".png" && ext != ".jpg" {
		return nil, fmt.Errorf("%w: %q", storage.ErrUnsupportedImage, ext)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	f.n++
	key := fmt.Sprintf("avatars/%s/avatar%d%s", userID, f.n, ext)
	f.uploads[key] = data
	return &storage.UploadResult{Key: key, URL: "https://cdn.test/" + key, Size: header.Size}, nil
}

func (f *fakeUploader) DeleteFile(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.uploads, key)
	return nil
}

// failingProfiles refuses every profile update.
type failingProfiles struct {
	repository.UserRepository
}

func (failingProfiles) UpdateProfile(context.Context, string, repository.ProfileUpdate) (*models.User, error) {
	return nil, errors.New("database is read-only")
}

func (s *HandlersTestSuite) uploadAvatar(token, filename string, data []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("avatar", filename)
	s.Require().NoError(err)
	_, err = part.Write(data)
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/me/avatar", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlersTestSuite) TestUploadAvatarWithoutStorage() {
	w := s.uploadAvatar(s.aliceToken, "me.png", []byte("png"))
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *HandlersTestSuite) TestUploadAvatar() {
	uploader := newFakeUploader()
	s.handlers.SetAvatarUploader(uploader)
	first := "avatars/" + s.alice.ID + "/avatar1.png"

	w := s.uploadAvatar(s.aliceToken, "me.png", []byte("png-bytes"))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Body.String(), `"avatar_url":"https://cdn.test/`+first+`"`)
	s.Equal([]byte("png-bytes"), uploader.uploads[first])
	s.Empty(uploader.deleted)

	w = s.do(http.MethodGet, "/api/v1/auth/me", s.aliceToken, nil)
	s.Contains(w.Body.String(), "https://cdn.test/"+first)
}

func (s *HandlersTestSuite) TestReplacingAvatarDeletesPrevious() {
	uploader := newFakeUploader()
	s.handlers.SetAvatarUploader(uploader)

	s.Require().Equal(http.StatusOK, s.uploadAvatar(s.aliceToken, "one.png", []byte("1")).Code)
	s.Require().Equal(http.StatusOK, s.uploadAvatar(s.aliceToken, "two.jpg", []byte("2")).Code)

	s.Equal([]string{"avatars/" + s.alice.ID + "/avatar1.png"}, uploader.deleted)
	s.Len(uploader.uploads, 1)
	s.Contains(uploader.uploads, "avatars/"+s.alice.ID+"/avatar2.jpg")
}

func (s *HandlersTestSuite) TestReplacingExternalAvatarKeepsIt() {
	uploader := newFakeUploader()
	s.handlers.SetAvatarUploader(uploader)

	w := s.do(http.MethodPatch, "/api/v1/auth/me", s.aliceToken, map[string]string{
		"avatar_url": "https://cdn.test/avatars/" + s.bob.ID + "/theirs.png",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	s.Require().Equal(http.StatusOK, s.uploadAvatar(s.aliceToken, "me.png", []byte("x")).Code)
	s.Empty(uploader.deleted)
}

func (s *HandlersTestSuite) TestUploadAvatarCleansUpWhenProfileUpdateFails() {
	uploader := newFakeUploader()
	s.handlers.SetAvatarUploader(uploader)
	s.handlers.users = failingProfiles{UserRepository: s.handlers.users}

	w := s.uploadAvatar(s.aliceToken, "me.png", []byte("png"))
	s.Equal(http.StatusInternalServerError, w.Code)
	s.Equal([]string{"avatars/" + s.alice.ID + "/avatar1.png"}, uploader.deleted)
	s.Empty(uploader.uploads)
}

func (s *HandlersTestSuite) TestUploadAvatarRejects() {
	s.handlers.SetAvatarUploader(newFakeUploader())

	s.Equal(http.StatusUnauthorized, s.uploadAvatar("", "me.png", []byte("x")).Code)

	w := s.uploadAvatar(s.aliceToken, "me.exe", []byte("x"))
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("VALIDATION_ERROR", s.errorCode(w))

	w = s.do(http.MethodPost, "/api/v1/auth/me/avatar", s.aliceToken, nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}
