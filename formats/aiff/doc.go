// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF and AIFF-C (uncompressed) files using
// github.com/go-audio/aiff.
//
// Integer PCM at 8, 16, 24 and 32 bits is supported. Samples are
// big-endian and signed at every depth in the container; the decoder emits
// them as interleaved float32 in [-1.0, 1.0).
//
//	src, err := aiff.Decoder{}.Decode(f)
//	if errors.Is(err, aiff.ErrNotAiffFile) {
//	    // try another format
//	}
package aiff
