package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetContentTypeForImage(t *testing.T) {
	tests := []struct {
		extension string
		expected  string
	}{
		{".jpg", "image/jpeg"},
		{".JPG", "image/jpeg"},
		{".jpeg", "image/jpeg"},
		{".png", "image/png"},
		{".PNG", "image/png"},
		{".gif", "image/gif"},
		{".webp", "image/webp"},
		{".unknown", "application/octet-stream"},
		{"", "application/octet-stream"},
		{".bmp", "application/octet-stream"},
		{".svg", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.extension, func(t *testing.T) {
			assert.Equal(t, tt.expected, getContentTypeForImage(tt.extension))
		})
	}
}

func TestAvatarKey(t *testing.T) {
	key := AvatarKey("user123", ".png")
	assert.True(t, strings.HasPrefix(key, "avatars/user123/"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	assert.NotEqual(t, key, AvatarKey("user123", ".png"))
}

func TestAvatarKeyFromURL(t *testing.T) {
	tests := []struct {
		url    string
		userID string
		key    string
		ok     bool
	}{
		{"https://cdn.test.com/avatars/u1/abc.png", "u1", "avatars/u1/abc.png", true},
		{"https://b.s3.us-west-2.amazonaws.com/avatars/u1/abc.jpg", "u1", "avatars/u1/abc.jpg", true},
		{"https://cdn.test.com/avatars/u2/abc.png", "u1", "", false},
		{"https://api.dicebear.com/7.x/avataaars/png?seed=u1", "u1", "", false},
		{"https://cdn.test.com/avatars/u1/", "u1", "", false},
		{"https://cdn.test.com/avatars/u1/x/../../u2/a.png", "u1", "", false},
		{"", "u1", "", false},
		{"https://cdn.test.com/avatars//abc.png", "", "", false},
	}
	for _, tt := range tests {
		key, ok := AvatarKeyFromURL(tt.url, tt.userID)
		assert.Equal(t, tt.ok, ok, tt.url)
		assert.Equal(t, tt.key, key, tt.url)
	}
}

func TestPublicURL(t *testing.T) {
	u := &S3Uploader{bucket: "curio-media", region: "us-west-2", baseURL: "https://cdn.test.com/"}
	assert.Equal(t, "https://cdn.test.com/avatars/a/b.png", u.publicURL("avatars/a/b.png"))

	u.baseURL = ""
	assert.Equal(t, "https://curio-media.s3.us-west-2.amazonaws.com/avatars/a/b.png", u.publicURL("avatars/a/b.png"))
}
