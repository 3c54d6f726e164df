// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III audio with
// github.com/hajimehoshi/go-mp3.
//
// go-mp3 always produces 16-bit little-endian stereo, so the Source reports
// two channels even for mono files; the downmix in audio.Decode folds them
// back together. Reads of odd byte counts from the decoder are carried over
// to the next call so no sample is split.
package mp3
