package diag

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is against any error produced by the
// generator packages.
var (
	ErrMalformedJSON       = errors.New("malformed json")
	ErrMissingField        = errors.New("missing required field")
	ErrInvalidFieldType    = errors.New("invalid field type")
	ErrInvalidRecipeFormat = errors.New("invalid recipe format")
	ErrUnknownRecipeType   = errors.New("unknown recipe type")
	ErrStructuralTrade     = errors.New("structural trade error")
	ErrUnresolvedDirective = errors.New("unresolved template directive")
	ErrIO                  = errors.New("io error")
)

// Error codes, one per kind. E00x codes are reserved for CLI command errors.
const (
	CodeGeneric             = "E100"
	CodeMalformedJSON       = "E101"
	CodeMissingField        = "E102"
	CodeInvalidFieldType    = "E103"
	CodeInvalidRecipeFormat = "E104"
	CodeUnknownRecipeType   = "E105"
	CodeStructuralTrade     = "E106"
	CodeUnresolvedDirective = "E107"
	CodeIO                  = "E108"
)

// Error is a file-scoped failure. Kind is one of the Err* sentinels above.
type Error struct {
	Kind    error
	Path    string // file the error belongs to (may be empty)
	Message string
	Err     error // underlying cause (optional)
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is reports whether target is the error's kind.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the stable code for the error's kind.
func (e *Error) Code() string {
	return CodeFor(e.Kind)
}

// New creates an Error of the given kind.
func New(kind error, path, format string, args ...any) *Error {
	return &Error{Kind: kind, Path: path, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind around a cause.
func Wrap(kind error, path, message string, err error) *Error {
	return &Error{Kind: kind, Path: path, Message: message, Err: err}
}

// CodeFor maps a kind (or any error wrapping one) to its code.
func CodeFor(err error) string {
	switch {
	case err == nil:
		return CodeGeneric
	case errors.Is(err, ErrMalformedJSON):
		return CodeMalformedJSON
	case errors.Is(err, ErrMissingField):
		return CodeMissingField
	case errors.Is(err, ErrInvalidFieldType):
		return CodeInvalidFieldType
	case errors.Is(err, ErrInvalidRecipeFormat):
		return CodeInvalidRecipeFormat
	case errors.Is(err, ErrUnknownRecipeType):
		return CodeUnknownRecipeType
	case errors.Is(err, ErrStructuralTrade):
		return CodeStructuralTrade
	case errors.Is(err, ErrUnresolvedDirective):
		return CodeUnresolvedDirective
	case errors.Is(err, ErrIO):
		return CodeIO
	default:
		return CodeGeneric
	}
}
