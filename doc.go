// SPDX-License-Identifier: EPL-2.0

// Package audlab demonstrates what sampling rate and bit depth do to a
// recording.
//
// An upload is decoded, averaged down to one channel and normalized to a
// peak of 1. It is then resampled to a target rate and quantized to a target
// bit depth. The result comes back with a storage estimate, a playable WAV
// and comparison figures. Every parameter change recomputes everything from
// the normalized original.
//
// # Supported Formats
//
//   - WAV, PCM 8/16/24/32-bit, via formats/wav
//   - AIFF, PCM 8/16/24/32-bit, via formats/aiff
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - FLAC via formats/flac
//
// # Quick Start
//
// Degrade runs the whole chain with the default configuration:
//
//	f, _ := os.Open("clip.mp3")
//	defer f.Close()
//
//	res, err := audlab.Degrade("clip.mp3", f, 8000, 8)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Estimate)              // 8000 Hz, 8-bit, 1 ch ...
//	os.WriteFile("out.wav", res.Playback.WAV, 0o644)
//
// # Building Blocks
//
// Each stage lives in its own package and can be used alone:
//
//	buf, info, _ := audio.Decode("wav", wav.Decoder{}, r)
//	norm, _ := audio.Normalize(buf)
//	low, _ := resample.Resample(norm, 8000, resample.DefaultOptions())
//	q, _ := quantize.Quantize(low, 8)
//	size := estimate.ForBuffer(q, 8)
//	pb, _ := encode.New("").Encode(q, 8)
//	figs := visualize.Build(norm, q, visualize.DefaultOptions())
//
// pipeline.Pipeline ties them together with configuration and logging, and
// is what the audlab and audlab-server commands use.
//
// # Silence
//
// A silent upload is rejected by Normalize with audio.ErrSilentInput. A
// signal that only becomes silent after quantization is not an error: the
// Playback is marked Silent, carries a warning and holds no WAV, while the
// figures still render.
package audlab
