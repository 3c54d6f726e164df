// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile = errors.New("not a WAV file")

	// ErrUnsupportedEncoding is returned for compressed or floating point
	// WAV data; only integer PCM is decoded.
	ErrUnsupportedEncoding = errors.New("unsupported WAV encoding, integer PCM only")

	// ErrUnsupportedBitDepth covers depths other than 8, 16, 24 and 32.
	ErrUnsupportedBitDepth = errors.New("unsupported WAV bit depth")

	ErrUnsupportedWavLayout = errors.New("unsupported WAV layout")
)
