package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	app_errors "github.com/lumiforge/mediavault-backend/internal/errors"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
)

// cleanText убирает управляющие символы, кроме переводов строк и табуляции
func cleanText(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == utf8.RuneError {
			return -1
		}
		return r
	}, s))
}

// SanitizeTitle проверяет и нормализует обязательный заголовок видео
func SanitizeTitle(title string) (string, error) {
	title = cleanText(strings.ReplaceAll(title, "\n", " "))
	if title == "" {
		return "", app_errors.NewValidationError("title", "is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", app_errors.NewValidationError("title", "must be at most 200 characters")
	}
	return title, nil
}

// SanitizeDescription нормализует необязательное описание
func SanitizeDescription(desc string) (string, error) {
	desc = cleanText(desc)
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return "", app_errors.NewValidationError("description", "must be at most 5000 characters")
	}
	return desc, nil
}
