package model

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes repograph errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a path or database file does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeNotADirectory indicates a directory argument names a file.
	ErrCodeNotADirectory ErrorCode = "NOT_A_DIRECTORY"

	// ErrCodeIsADirectory indicates a file argument names a directory.
	ErrCodeIsADirectory ErrorCode = "IS_A_DIRECTORY"

	// ErrCodeIdentityConflict indicates several URLs are stored for one name.
	// Recoverable: reported as a warning.
	ErrCodeIdentityConflict ErrorCode = "IDENTITY_CONFLICT"

	// ErrCodeIdentityCorruption indicates several rows are stored for one name.
	ErrCodeIdentityCorruption ErrorCode = "IDENTITY_CORRUPTION"

	// ErrCodeMalformedDeclaration indicates an incomplete submodule entry.
	// Recoverable: reported as a warning.
	ErrCodeMalformedDeclaration ErrorCode = "MALFORMED_DECLARATION"

	// ErrCodeInvalidDocument indicates a build job description lacks a
	// required field or has it more than once.
	ErrCodeInvalidDocument ErrorCode = "INVALID_DOCUMENT"
)

// Error is a categorized repograph error.
type Error struct {
	Code    ErrorCode
	Message string

	// Path is the filesystem path involved, if any.
	Path string

	// Name is the project or build job name involved, if any.
	Name string
}

func (e *Error) Error() string {
	switch {
	case e.Path != "":
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.Path)
	case e.Name != "":
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NotFound creates an error for a missing path.
func NotFound(path string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: "not found in file system", Path: path}
}

// NotADirectory creates an error for a path that should be a directory.
func NotADirectory(path string) *Error {
	return &Error{Code: ErrCodeNotADirectory, Message: "the argument is not a directory", Path: path}
}

// IsADirectory creates an error for a path that should be a regular file.
func IsADirectory(path string) *Error {
	return &Error{Code: ErrCodeIsADirectory, Message: "the argument is a directory", Path: path}
}

// IdentityCorruption creates an error for a name stored more than once.
func IdentityCorruption(table, name string, rows int) *Error {
	return &Error{
		Code:    ErrCodeIdentityCorruption,
		Message: fmt.Sprintf("%d %s rows stored for one name", rows, table),
		Name:    name,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// IsCorruption reports whether err is an IDENTITY_CORRUPTION error.
func IsCorruption(err error) bool {
	return CodeOf(err) == ErrCodeIdentityCorruption
}

// IsArgumentError reports whether err is one of the argument shape errors
// (NOT_FOUND, NOT_A_DIRECTORY, IS_A_DIRECTORY).
func IsArgumentError(err error) bool {
	switch CodeOf(err) {
	case ErrCodeNotFound, ErrCodeNotADirectory, ErrCodeIsADirectory:
		return true
	}
	return false
}
