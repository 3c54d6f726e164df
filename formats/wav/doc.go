// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF/WAVE files through github.com/go-audio/wav.
//
// The Decoder accepts integer PCM at 8, 16, 24 and 32 bits with any channel
// count and sample rate. Samples come out as interleaved float32 in
// [-1.0, 1.0):
//
//	src, err := wav.Decoder{}.Decode(f)
//	buf := make([]float32, 4096)
//	n, err := src.ReadSamples(buf)
//
// Floating point and compressed WAV data is rejected with
// ErrUnsupportedEncoding.
//
// Encode writes mono integer PCM. go-audio needs an io.WriteSeeker to patch
// the chunk sizes after the data is written, so callers typically encode to
// a temporary file:
//
//	f, _ := os.CreateTemp("", "out-*.wav")
//	err := wav.Encode(f, 8000, 16, samples)
package wav
