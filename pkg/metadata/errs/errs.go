package errs

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyContent      = errors.New("content is empty")
	ErrMissingCredential = errors.New("credential is missing")
)

// ValidationError reports missing or malformed input. It is raised before any
// network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// UploadError wraps a failure to store content on IPFS.
type UploadError struct {
	Filename string
	Err      error
}

func NewUploadError(filename string, err error) *UploadError {
	return &UploadError{Filename: filename, Err: err}
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to upload %q: %v", e.Filename, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Bind stages, in the order the binder walks through them.
const (
	StageMint       = "mint"
	StageCredential = "credential"
	StageRead       = "read"
	StageAuthority  = "authority"
	StageBlockhash  = "blockhash"
	StageSign       = "sign"
	StageSubmit     = "submit"
	StageConfirm    = "confirm"
	StageVerify     = "verify"
)

// BindError wraps a failure to update the on-chain metadata of a mint.
type BindError struct {
	Mint  string
	Stage string
	Err   error
}

func NewBindError(mint, stage string, err error) *BindError {
	return &BindError{Mint: mint, Stage: stage, Err: err}
}

func (e *BindError) Error() string {
	return fmt.Sprintf("failed to bind metadata to mint %s (%s): %v", e.Mint, e.Stage, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsUpload(err error) bool {
	var target *UploadError
	return errors.As(err, &target)
}

func IsBind(err error) bool {
	var target *BindError
	return errors.As(err, &target)
}
