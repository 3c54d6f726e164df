// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrDecode matches every *DecodeError via errors.Is.
	ErrDecode = errors.New("audio decode failed")

	// ErrSilentInput is returned by Normalize when every sample is zero.
	ErrSilentInput = errors.New("input is silent, nothing to normalize")

	// ErrUnsupportedFormat means no registered decoder matches the upload.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrNonFiniteSample means a decoder produced NaN or Inf.
	ErrNonFiniteSample = errors.New("non-finite sample value")
)

// DecodeError reports a container or codec that could not be parsed.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("decode: %v", e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
