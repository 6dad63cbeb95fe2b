package validation

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"

	app_errors "github.com/lumiforge/mediavault-backend/internal/errors"
)

// VideoContentTypes содержит список поддерживаемых видеоформатов
var VideoContentTypes = map[string]bool{
	"video/mp4":        true,
	"video/webm":       true,
	"video/quicktime":  true,
	"video/x-matroska": true,
	"video/x-msvideo":  true,
	"video/mpeg":       true,
	"video/ogg":        true,
	"video/3gpp":       true,
	"video/mp2t":       true,
}

// ImageContentTypes содержит список поддерживаемых форматов изображений
var ImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/avif": true,
	"image/heic": true,
}

var extensionContentTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".ogv":  "video/ogg",
	".3gp":  "video/3gpp",
	".ts":   "video/mp2t",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".avif": "image/avif",
	".heic": "image/heic",
}

// NormalizeContentType lower-cases the media type and drops parameters.
func NormalizeContentType(contentType string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(contentType, ";"); i != -1 {
		contentType = contentType[:i]
	}
	return strings.ReplaceAll(contentType, " ", "")
}

// IsVideoContentType проверяет, является ли Content-Type поддерживаемым видео
func IsVideoContentType(contentType string) bool {
	return VideoContentTypes[NormalizeContentType(contentType)]
}

// IsImageContentType проверяет, является ли Content-Type поддерживаемым изображением
func IsImageContentType(contentType string) bool {
	return ImageContentTypes[NormalizeContentType(contentType)]
}

// ContentTypeFromExtension определяет Content-Type по расширению файла
func ContentTypeFromExtension(filename string) string {
	return extensionContentTypes[strings.ToLower(filepath.Ext(filename))]
}

// ftypBrands сопоставляет major brand контейнера ISO-BMFF с Content-Type
var ftypBrands = map[string]string{
	"isom": "video/mp4",
	"iso2": "video/mp4",
	"iso3": "video/mp4",
	"iso4": "video/mp4",
	"iso5": "video/mp4",
	"iso6": "video/mp4",
	"mp41": "video/mp4",
	"mp42": "video/mp4",
	"avc1": "video/mp4",
	"M4V ": "video/mp4",
	"dash": "video/mp4",
	"mmp4": "video/mp4",
	"qt  ": "video/quicktime",
	"3gp4": "video/3gpp",
	"3gp5": "video/3gpp",
	"3gp6": "video/3gpp",
	"avif": "image/avif",
	"heic": "image/heic",
	"heix": "image/heic",
	"mif1": "image/heic",
}

// SniffContentType определяет тип по magic bytes. Пустая строка, если формат не распознан.
func SniffContentType(header []byte) string {
	switch {
	case len(header) >= 12 && bytes.Equal(header[4:8], []byte("ftyp")):
		// Аудио бренды (M4A, M4B, M4P) и неизвестные бренды не считаются видео
		return ftypBrands[string(header[8:12])]
	case bytes.HasPrefix(header, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		// EBML: webm и matroska различаются только DocType
		if bytes.Contains(header, []byte("webm")) {
			return "video/webm"
		}
		return "video/x-matroska"
	case len(header) >= 12 && bytes.HasPrefix(header, []byte("RIFF")) && bytes.Equal(header[8:12], []byte("AVI ")):
		return "video/x-msvideo"
	case bytes.HasPrefix(header, []byte{0x00, 0x00, 0x01, 0xBA}), bytes.HasPrefix(header, []byte{0x00, 0x00, 0x01, 0xB3}):
		return "video/mpeg"
	case len(header) >= 189 && header[0] == 0x47 && header[188] == 0x47:
		return "video/mp2t"
	}

	detected := NormalizeContentType(http.DetectContentType(header))
	if VideoContentTypes[detected] || ImageContentTypes[detected] {
		return detected
	}
	return ""
}

// ResolveContentType выбирает тип файла: magic bytes, затем заявленный клиентом тип, затем расширение.
func ResolveContentType(header []byte, declared, filename string) string {
	if sniffed := SniffContentType(header); sniffed != "" {
		return sniffed
	}
	if declared = NormalizeContentType(declared); declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return ContentTypeFromExtension(filename)
}

// ValidateVideoContentType возвращает ValidationError для неподдерживаемого видеоформата
func ValidateVideoContentType(contentType, fieldName string) error {
	if !IsVideoContentType(contentType) {
		return app_errors.NewValidationError(fieldName, "must be a supported video file")
	}
	return nil
}

// ValidateImageContentType возвращает ValidationError для неподдерживаемого формата изображения
func ValidateImageContentType(contentType, fieldName string) error {
	if !IsImageContentType(contentType) {
		return app_errors.NewValidationError(fieldName, "must be a supported image file")
	}
	return nil
}
