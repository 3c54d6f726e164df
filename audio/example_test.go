// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ik5/audlab/audio"
	"github.com/ik5/audlab/internal/audiotest"
)

type stereoDecoder struct{}

func (stereoDecoder) Decode(io.Reader) (audio.Source, error) {
	return audiotest.NewFrameSource(8000, [][]float32{
		{0.25, 0.75},
		{-0.5, -0.5},
		{0.1, -0.1},
	}), nil
}

func ExampleDecode() {
	buf, info, err := audio.Decode("test", stereoDecoder{}, bytes.NewReader(nil))
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("source: %d Hz, %d channels\n", info.SampleRate, info.Channels)
	fmt.Printf("buffer: %d samples, %d channel\n", buf.Len(), buf.Channels())
	fmt.Printf("%.2f\n", buf.Samples())
	// Output:
	// source: 8000 Hz, 2 channels
	// buffer: 3 samples, 1 channel
	// [0.50 -0.50 0.00]
}

func ExampleNormalize() {
	buf := audio.NewBuffer([]float64{2.0, -1.0, 0.5}, 44100)

	norm, err := audio.Normalize(buf)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(norm.Samples(), norm.Peak())

	_, err = audio.Normalize(audio.NewBuffer([]float64{0, 0}, 44100))
	fmt.Println(err)
	// Output:
	// [1 -0.5 0.25] 1
	// input is silent, nothing to normalize
}

func ExampleRegistry_Lookup() {
	reg := audio.NewRegistry()
	reg.Register(audio.FormatWAV, stereoDecoder{})

	format, _, err := reg.Lookup("take1.WAVE", nil)
	fmt.Println(format, err)

	format, _, err = reg.Lookup("upload.bin", []byte("RIFF\x24\x00\x00\x00WAVE"))
	fmt.Println(format, err)
	// Output:
	// wav <nil>
	// wav <nil>
}
