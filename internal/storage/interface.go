package storage

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
)

// ErrUnsupportedImage is returned for uploads that are not a supported image.
var ErrUnsupportedImage = errors.New("unsupported image type")

// MaxAvatarSize bounds avatar uploads.
const MaxAvatarSize = 5 << 20

// AvatarUploader stores profile pictures and returns their public URL.
type AvatarUploader interface {
	UploadAvatar(ctx context.Context, file multipart.File, header *multipart.FileHeader, userID string) (*UploadResult, error)
	DeleteFile(ctx context.Context, key string) error
}

// AvatarKeyFromURL recovers the object key of an avatar uploaded for
// userID. URLs outside avatars/<userID>/ (external links, other users'
// objects) report false.
func AvatarKeyFromURL(url, userID string) (string, bool) {
	if userID == "" {
		return "", false
	}
	prefix := "avatars/" + userID + "/"
	i := strings.Index(url, "/"+prefix)
	if i < 0 {
		return "", false
	}
	key := url[i+1:]
	if key == prefix || strings.ContainsAny(key[len(prefix):], "/?#") {
		return "", false
	}
	return key, true
}

var _ AvatarUploader = (*S3Uploader)(nil)
