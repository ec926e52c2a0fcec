// Package filemgr stores uploaded profile pictures on local disk.
package filemgr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	AvatarSize    = 256
	MaxAvatarSize = 5 << 20
	maxDimension  = 5000
	avatarFolder  = "userpic"
)

var (
	AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	AllowedMIMEs      = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

	ErrInvalidExtension = errors.New("invalid file extension")
	ErrInvalidMIME      = errors.New("invalid MIME type")
	ErrFileTooLarge     = errors.New("file size exceeds limit")
	ErrInvalidImage     = errors.New("file is not a readable image")
)

// Store writes files under Dir and serves them from URLPrefix.
type Store struct {
	Dir       string
	URLPrefix string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir, URLPrefix: "/" + filepath.ToSlash(strings.Trim(dir, "/"))}
}

// SaveAvatar validates the upload, crops it to a square thumbnail and writes it
// as JPEG. It returns the public path of the stored file.
func (s *Store) SaveAvatar(r io.Reader, filename, userID string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(AllowedExtensions, ext) {
		return "", fmt.Errorf("%w: %s", ErrInvalidExtension, ext)
	}

	buf, err := io.ReadAll(io.LimitReader(r, MaxAvatarSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(buf) > MaxAvatarSize {
		return "", ErrFileTooLarge
	}
	if mimeType := http.DetectContentType(buf); !slices.Contains(AllowedMIMEs, mimeType) {
		return "", fmt.Errorf("%w: %s", ErrInvalidMIME, mimeType)
	}

	img, err := imaging.Decode(bytes.NewReader(buf), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if err := ValidateImageDimensions(img, maxDimension, maxDimension); err != nil {
		return "", err
	}

	dir := filepath.Join(s.Dir, avatarFolder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	name := userID + "-" + uuid.NewString()[:8] + ".jpg"
	thumb := imaging.Fill(img, AvatarSize, AvatarSize, imaging.Center, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(dir, name), imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("save avatar: %w", err)
	}
	log.Printf("saved avatar %s for user %s", name, userID)

	return s.URLPrefix + "/" + avatarFolder + "/" + name, nil
}

func ValidateImageDimensions(img image.Image, maxWidth, maxHeight int) error {
	b := img.Bounds()
	if b.Dx() > maxWidth || b.Dy() > maxHeight {
		return fmt.Errorf("image too large: %dx%d exceeds %dx%d", b.Dx(), b.Dy(), maxWidth, maxHeight)
	}
	return nil
}
