package services

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindAuthorization
	KindInvalidTransition
	KindTimeout
	KindUpstream
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFoundError"
	case KindConflict:
		return "ConflictError"
	case KindAuthorization:
		return "AuthorizationError"
	case KindInvalidTransition:
		return "InvalidTransitionError"
	case KindTimeout:
		return "TimeoutError"
	case KindUpstream:
		return "UpstreamError"
	case KindPersistence:
		return "PersistenceError"
	}
	return "Error"
}

// Error codes carried next to the kind, e.g. "ConflictError: duplicate-application".
const (
	CodeMissingFields        = "missing-fields"
	CodeEmployerMismatch     = "employer-mismatch"
	CodeFileTooLarge         = "file-too-large"
	CodeUnsupportedFileType  = "unsupported-file-type"
	CodeNoResumeOnFile       = "no-resume-on-file"
	CodeInvalidStatus        = "invalid-status"
	CodeInvalidSort          = "invalid-sort"
	CodeDuplicateApplication = "duplicate-application"
	CodeStaleStatus          = "stale-status"
	CodeJob                  = "job"
	CodeApplication          = "application"
	CodeCandidate            = "candidate"
	CodeNotOwner             = "not-owner"
	CodeCVParse              = "cv-parse"
)

type Error struct {
	Kind Kind
	Code string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String() + ": " + e.Code
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind and code, so callers can write
// errors.Is(err, services.ErrDuplicateApplication).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Code == "" || e.Code == t.Code)
}

var (
	ErrDuplicateApplication = &Error{Kind: KindConflict, Code: CodeDuplicateApplication}
	ErrStaleStatus          = &Error{Kind: KindConflict, Code: CodeStaleStatus}
	ErrInvalidTransition    = &Error{Kind: KindInvalidTransition}
	ErrNotOwner             = &Error{Kind: KindAuthorization, Code: CodeNotOwner}
	ErrParseTimeout         = &Error{Kind: KindTimeout, Code: CodeCVParse}
)

func newError(kind Kind, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

func validationError(code string) *Error { return newError(KindValidation, code, nil) }

func notFound(code string) *Error { return newError(KindNotFound, code, nil) }

func persistenceError(op string, err error) *Error {
	return newError(KindPersistence, op, err)
}

// KindOf returns the kind of the first *Error in err's chain, or zero.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// isUniqueViolation recognises a unique-index failure from either dialect,
// with or without gorm's error translation switched on.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
