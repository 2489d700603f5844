package services

import (
	"strings"
	"unicode/utf8"
)

// GetExtensionFromContentType возвращает расширение файла для поддерживаемых типов изображений.
func GetExtensionFromContentType(contentType string) (string, error) {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch mediaType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	case "image/svg+xml":
		return ".svg", nil
	default:
		return "", ErrUnsupportedImage
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func validName(name string, maxLen int) bool {
	return name != "" && utf8.RuneCountInString(name) <= maxLen
}
