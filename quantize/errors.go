// SPDX-License-Identifier: EPL-2.0

package quantize

import (
	"errors"
	"fmt"
)

// ErrInvalidBitDepth matches every *InvalidBitDepthError via errors.Is.
var ErrInvalidBitDepth = errors.New("invalid bit depth")

type InvalidBitDepthError struct {
	BitDepth int
}

func (e *InvalidBitDepthError) Error() string {
	return fmt.Sprintf("invalid bit depth %d: must be between %d and %d", e.BitDepth, MinBits, MaxBits)
}

func (e *InvalidBitDepthError) Is(target error) bool { return target == ErrInvalidBitDepth }
