package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInsufficientStock Kind = "insufficient_stock"
	KindValidation        Kind = "validation_failed"
	KindUnauthorized      Kind = "unauthorized"
	KindForbidden         Kind = "forbidden"
	KindConflict          Kind = "conflict"
	KindStorage           Kind = "storage_failure"
)

// Error: servis katmanının döndürdüğü tipli hata.
// Message kullanıcıya gösterilir, Err sadece loglanır.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is: errors.Is(err, apperror.ErrNotFound) gibi kind karşılaştırması
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrStorage           = &Error{Kind: KindStorage}
)

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func InsufficientStock(name string, available, requested int) *Error {
	return &Error{
		Kind:    KindInsufficientStock,
		Message: fmt.Sprintf("Insufficient stock for %s. Available: %d, Requested: %d", name, available, requested),
	}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func Conflict(msg string, err error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: err}
}

func Storage(msg string, err error) *Error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// Postgres SQLSTATE kodları
const (
	pgCheckViolation      = "23514"
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgSerialization       = "40001"
)

// FromDB: GORM/pgx hatasını taksonomiye çevirir. msg kullanıcıya gidecek mesajdır.
func FromDB(err error, msg string) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Kind: KindNotFound, Message: msg, Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCheckViolation:
			return &Error{Kind: KindInsufficientStock, Message: "Stock constraint violated", Err: err}
		case pgForeignKeyViolation:
			return &Error{Kind: KindConflict, Message: "Record is referenced by other records", Err: err}
		case pgUniqueViolation:
			return &Error{Kind: KindConflict, Message: "Record already exists", Err: err}
		case pgSerialization:
			return &Error{Kind: KindConflict, Message: "Concurrent update, please retry", Err: err}
		}
	}
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// Status: HTTP durum kodu
func Status(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return fe.Code
		}
		return fiber.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindInsufficientStock, KindValidation:
		return fiber.StatusBadRequest
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// PublicMessage: response body'ye yazılabilecek mesaj. İç detaylar (Err) dışarı sızmaz.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		if appErr.Message != "" {
			return appErr.Message
		}
		return string(appErr.Kind)
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return "Internal server error"
}
