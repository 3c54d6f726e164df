// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC streams with github.com/mewkiz/flac.
//
// Frames are parsed lazily as samples are read. Any bit depth FLAC allows
// (4 to 32) is scaled onto [-1.0, 1.0) using 2^(bits-1).
package flac
