// SPDX-License-Identifier: EPL-2.0

// Package audio holds the signal types shared by the degradation lab.
//
// Decoders produce a streaming Source of interleaved float32 samples.
// Decode drains a Source through a MonoMixer into a Buffer, the immutable
// mono float64 representation every later stage works on:
//
//	reg := audio.NewRegistry()
//	reg.Register(audio.FormatWAV, wav.Decoder{})
//	format, dec, err := reg.Lookup("take1.wav", header)
//	buf, info, err := audio.Decode(format, dec, r)
//	norm, err := audio.Normalize(buf)
//
// Samples are nominally in [-1.0, 1.0]. Normalize scales a buffer so its
// peak absolute value is exactly 1.0 and refuses all-zero input with
// ErrSilentInput.
//
// # Streaming processors
//
// MonoMixer averages channels frame by frame. Resampler converts the rate
// of a Source with Catmull-Rom interpolation and is used by the resample
// package as its fallback path:
//
//	src := audio.NewBufferSource(buf)
//	out := audio.NewResampler(src, 8000)
//
// Both return io.EOF once the upstream source is exhausted, possibly
// together with the last samples.
package audio
