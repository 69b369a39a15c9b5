package storage

import (
	"errors"
	"strings"
)

// Error kinds. Every error returned by this package and by conforming
// providers matches exactly one of them with errors.Is.
var (
	// ErrAccess: the target cannot be found, created, enumerated, opened or
	// deleted. A missing entry and a broken backend share this kind; the
	// underlying cause (for example fs.ErrNotExist) stays reachable through
	// errors.Is.
	ErrAccess = errors.New("storage access failed")
	// ErrPermission: the handle's open mode does not allow the operation.
	ErrPermission = errors.New("storage permission denied")
	// ErrConflict: the target already exists and the collision option
	// offers no way around it.
	ErrConflict = errors.New("storage conflict")
)

// Error describes a failed storage operation.
type Error struct {
	Kind error  // ErrAccess, ErrPermission or ErrConflict
	Op   string // operation, e.g. "create file"
	Path string // path or name the operation targeted
	Msg  string // optional detail
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("storage: ")
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// AccessError builds an ErrAccess error.
func AccessError(op, path, msg string, cause error) error {
	return &Error{Kind: ErrAccess, Op: op, Path: path, Msg: msg, Err: cause}
}

// PermissionError builds an ErrPermission error.
func PermissionError(op, path, msg string) error {
	return &Error{Kind: ErrPermission, Op: op, Path: path, Msg: msg}
}

// ConflictError builds an ErrConflict error.
func ConflictError(op, path, msg string) error {
	return &Error{Kind: ErrConflict, Op: op, Path: path, Msg: msg}
}

// KindOf returns the kind of err, or nil when err is not a storage error.
func KindOf(err error) error {
	switch {
	case errors.Is(err, ErrConflict):
		return ErrConflict
	case errors.Is(err, ErrPermission):
		return ErrPermission
	case errors.Is(err, ErrAccess):
		return ErrAccess
	}
	return nil
}
