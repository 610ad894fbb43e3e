package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"
)

var AllowedImageTypes = []string{"jpg", "jpeg", "png", "gif"}

func GetFileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

func IsImageFile(filename string) bool {
	ext := strings.TrimPrefix(GetFileExtension(filename), ".")
	for _, allowed := range AllowedImageTypes {
		if ext == allowed {
			return true
		}
	}
	return false
}

func GenerateUniqueFilename(originalFilename string) string {
	ext := GetFileExtension(originalFilename)
	timestamp := time.Now().Unix()
	randomStr := GenerateRandomString(8)

	return fmt.Sprintf("%d_%s%s", timestamp, randomStr, ext)
}

func GetFileSize(file multipart.File) (int64, error) {
	currentPos, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	size, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}

	_, err = file.Seek(currentPos, io.SeekStart)
	if err != nil {
		return 0, err
	}

	return size, nil
}

func ValidateImageUpload(file multipart.File, filename string) error {
	if !IsImageFile(filename) {
		return fmt.Errorf("unsupported image type: %s", GetFileExtension(filename))
	}

	size, err := GetFileSize(file)
	if err != nil {
		return err
	}
	if size > MaxImageSize {
		return fmt.Errorf("image exceeds maximum size of %d bytes", MaxImageSize)
	}

	return nil
}

func GetContentTypeFromExtension(filename string) string {
	switch GetFileExtension(filename) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
