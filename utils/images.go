package utils

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxImageSize = 10 * 1024 * 1024

// ValidateImage checks that an uploaded file is a well-formed image
// (gif, jpeg or png) without reading the whole pixel data.
func ValidateImage(header *multipart.FileHeader) error {
	if header.Size > maxImageSize {
		return fmt.Errorf("image exceeds %d bytes", maxImageSize)
	}
	f, err := header.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	if _, _, err := image.DecodeConfig(f); err != nil {
		return fmt.Errorf("not a valid image: %w", err)
	}
	return nil
}

// SaveImage stores an uploaded image under a date-partitioned directory
// with a collision-free name and returns its public URL path.
func SaveImage(header *multipart.FileHeader, uploadsDir string) (string, error) {
	now := time.Now()
	subDir := filepath.Join(now.Format("2006"), now.Format("01"), now.Format("02"))
	baseDir := filepath.Join(uploadsDir, subDir)
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	name := uuid.NewString() + ext
	dstPath := filepath.Join(baseDir, name)

	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, maxImageSize)); err != nil {
		_ = os.Remove(dstPath)
		return "", err
	}

	return "/" + filepath.ToSlash(dstPath), nil
}
