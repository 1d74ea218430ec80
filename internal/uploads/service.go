package uploads

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"nutrisnap-backend/internal/shared/storage/object"
	"nutrisnap-backend/internal/shared/util"
)

// ErrInvalidInput is returned when the user id or payload is unusable.
var ErrInvalidInput = errors.New("invalid upload input")

const defaultExt = "jpg"

// Upload describes a stored image.
type Upload struct {
	StorageKey string
	URL        string
	SizeBytes  int64
}

// Service stores meal images under per-user keys.
type Service struct {
	Store object.ObjectStore
	Now   func() time.Time
}

// Upload writes data to {userID}/{unixMillis}-{suffix}.{ext} and returns its public URL.
func (s *Service) Upload(ctx context.Context, userID, fileName, contentType string, data []byte) (Upload, error) {
	if s == nil || s.Store == nil {
		return Upload{}, errors.New("object store not configured")
	}
	if len(data) == 0 {
		return Upload{}, fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	key, err := BuildKey(userID, fileName, contentType, now(), randomSuffix())
	if err != nil {
		return Upload{}, err
	}

	size, err := s.Store.Put(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		return Upload{}, err
	}
	return Upload{StorageKey: key, URL: s.Store.PublicURL(key), SizeBytes: size}, nil
}

// BuildKey derives the collision-resistant storage key for one image.
func BuildKey(userID, fileName, contentType string, at time.Time, suffix string) (string, error) {
	userSeg, err := util.SanitizeKeySegment(userID)
	if err != nil {
		return "", fmt.Errorf("%w: user id", ErrInvalidInput)
	}
	name := fmt.Sprintf("%d-%s.%s", at.UnixMilli(), suffix, Extension(fileName, contentType))
	return path.Join(userSeg, name), nil
}

// Extension keeps the original file extension, falling back to one derived
// from the content type and finally to jpg.
func Extension(fileName, contentType string) string {
	if ext := strings.TrimPrefix(path.Ext(strings.TrimSpace(fileName)), "."); ext != "" {
		if seg, err := util.SanitizeKeySegment(ext); err == nil && !strings.Contains(seg, ".") {
			return seg
		}
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return defaultExt
	}
	switch mediaType {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/heic":
		return "heic"
	case "image/gif":
		return "gif"
	}
	if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
		return strings.TrimPrefix(exts[0], ".")
	}
	return defaultExt
}

func randomSuffix() string {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
