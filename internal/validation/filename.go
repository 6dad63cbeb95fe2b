package validation

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	app_errors "github.com/lumiforge/mediavault-backend/internal/errors"
)

const maxFilenameBytes = 255

// SanitizeFilename очищает имя файла перед использованием в ключах хранилища
func SanitizeFilename(filename string) string {
	// Клиент может прислать полный путь (старые браузеры под Windows)
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	filename = strings.TrimSpace(filename)
	if filename == "." || filename == "/" {
		return ""
	}

	var b strings.Builder
	for _, r := range filename {
		switch {
		case unicode.IsControl(r), r == utf8.RuneError:
			continue
		case strings.ContainsRune(`<>:"|?*`, r), unicode.IsSpace(r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	filename = b.String()

	for strings.Contains(filename, "..") {
		filename = strings.ReplaceAll(filename, "..", "_")
	}
	filename = strings.Trim(filename, ".")

	// Обрезаем по границе руны
	for len(filename) > maxFilenameBytes {
		_, size := utf8.DecodeLastRuneInString(filename)
		filename = filename[:len(filename)-size]
	}

	return filename
}

// ValidateFileSize проверяет размер файла
func ValidateFileSize(size int64, maxSize int64, fieldName string) error {
	if size <= 0 {
		return app_errors.NewValidationError(fieldName, "is empty")
	}

	if maxSize > 0 && size > maxSize {
		return app_errors.NewValidationError(fieldName, "exceeds the maximum upload size of "+humanBytes(maxSize))
	}

	return nil
}

func humanBytes(n int64) string {
	const mb = 1024 * 1024
	if n >= mb && n%mb == 0 {
		return strconv.FormatInt(n/mb, 10) + " MB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}
