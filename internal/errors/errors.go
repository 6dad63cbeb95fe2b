package errors

import (
	"errors"
	"fmt"
)

// Конфигурация и инициализация
var (
	ErrJWTSecretKeyNotConfigured = errors.New("JWT secret key is not configured")
	ErrFailedToConnectCatalog    = errors.New("failed to connect to catalog store")
	ErrUnknownCatalogDriver      = errors.New("unknown catalog driver")
	ErrUnknownMediaProvider      = errors.New("unknown media provider")
	ErrMediaServiceNotConfigured = errors.New("media service credentials are not configured")
	ErrFailedToInitMediaClient   = errors.New("failed to initialize media client")
)

// Токены и авторизация
var (
	ErrUnauthorized            = errors.New("unauthorized")
	ErrAuthHeaderEmpty         = errors.New("authorization header is empty")
	ErrAuthHeaderWrongFormat   = errors.New("authorization header format must be Bearer {token}")
	ErrUnexpectedSigningMethod = errors.New("unexpected signing method")
	ErrFailedToParseToken      = errors.New("failed to parse token")
	ErrInvalidToken            = errors.New("invalid token")
	ErrTokenMissingSubject     = errors.New("token has no subject")
	ErrFailedToGenerateToken   = errors.New("failed to generate token")
)

// Каталог
var (
	ErrInvalidCursor = errors.New("invalid cursor")
)

// ValidationError describes bad or missing input. Nothing has been sent anywhere when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + " " + e.Message
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Media upload failure reasons.
const (
	ReasonNotConfigured     = "not_configured"
	ReasonNetwork           = "network"
	ReasonRejected          = "rejected"
	ReasonMalformedResponse = "malformed_response"
	ReasonUnsupportedType   = "unsupported_type"
	ReasonEmptyPayload      = "empty_payload"
)

// MediaUploadError is returned by every media backend. Reason is machine readable.
type MediaUploadError struct {
	Reason string
	Err    error
}

func (e *MediaUploadError) Error() string {
	if e.Err == nil {
		return "media upload failed: " + e.Reason
	}
	return fmt.Sprintf("media upload failed (%s): %v", e.Reason, e.Err)
}

func (e *MediaUploadError) Unwrap() error { return e.Err }

// NewMediaUploadError wraps err with reason.
func NewMediaUploadError(reason string, err error) *MediaUploadError {
	return &MediaUploadError{Reason: reason, Err: err}
}

// PersistenceError covers connectivity and constraint failures of the catalog store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("catalog %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NewPersistenceError wraps err for store operation op.
func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// NotFoundError is reserved for read-by-id lookups.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsMediaUpload reports whether err carries a MediaUploadError and returns it.
func IsMediaUpload(err error) (*MediaUploadError, bool) {
	var m *MediaUploadError
	ok := errors.As(err, &m)
	return m, ok
}

// IsPersistence reports whether err carries a PersistenceError.
func IsPersistence(err error) bool {
	var p *PersistenceError
	return errors.As(err, &p)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}
