// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with github.com/jfreymuth/oggvorbis.
//
// The decoder already produces float32 in [-1.0, 1.0], so samples pass
// through unchanged. Reads are trimmed to whole frames; a destination
// shorter than one frame yields audio.ErrInvalidDstSize.
package vorbis
