// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	// ErrNotAiffFile indicates the data does not start with a FORM/AIFF header
	ErrNotAiffFile = errors.New("not an AIFF file")

	// ErrUnsupportedBitDepth covers depths other than 8, 16, 24 and 32
	ErrUnsupportedBitDepth = errors.New("unsupported AIFF bit depth")

	// ErrUnsupportedAiffLayout indicates a missing or malformed COMM chunk
	ErrUnsupportedAiffLayout = errors.New("unsupported AIFF layout")
)
