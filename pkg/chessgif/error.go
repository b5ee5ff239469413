package chessgif

import (
	"errors"

	"github.com/Mego/chess-gif/internal/gifenc"
	"github.com/Mego/chess-gif/internal/theme"
	"github.com/Mego/chess-gif/pkg/board"
)

// Error codes carried by RenderError.
const (
	CodeInvalidInput     = "invalid_input"
	CodeAssetMissing     = "asset_missing"
	CodeEncodingOverflow = "encoding_overflow"
)

// RenderError is the coded failure surfaced to callers. No error is retried
// internally and no partial output accompanies one.
type RenderError struct {
	Code    string
	Message string
	cause   error
}

func (e *RenderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "chessgif: render error"
}

func (e *RenderError) Unwrap() error { return e.cause }

// wrapErr classifies pipeline errors into the public codes. Anything not
// attributable to assets or format limits is treated as bad input.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	code := CodeInvalidInput
	switch {
	case errors.Is(err, theme.ErrAssetMissing):
		code = CodeAssetMissing
	case errors.Is(err, gifenc.ErrOverflow):
		code = CodeEncodingOverflow
	case errors.Is(err, board.ErrInvalid):
		code = CodeInvalidInput
	}
	return &RenderError{Code: code, Message: err.Error(), cause: err}
}
