// SPDX-License-Identifier: EPL-2.0

// Package player plays an encoded Playback on the local audio device.
package player

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/ik5/audlab/audio"
	"github.com/ik5/audlab/encode"
	"github.com/ik5/audlab/formats/wav"
	"github.com/ik5/audlab/utils"
)

// DefaultDeviceRate is used when New is given a non-positive rate.
const DefaultDeviceRate = 48000

var ErrNothingToPlay = errors.New("nothing to play")

// ToDevice reads the WAV inside pb back and converts it to mono 16-bit
// samples at deviceRate.
func ToDevice(pb encode.Playback, deviceRate int) ([]int16, error) {
	if pb.Silent || len(pb.WAV) == 0 {
		return nil, ErrNothingToPlay
	}

	src, err := wav.Decoder{}.Decode(bytes.NewReader(pb.WAV))
	if err != nil {
		return nil, fmt.Errorf("reading playback: %w", err)
	}
	defer src.Close()

	return Mono16(src, deviceRate, src.BufSize())
}

// Mono16 streams src through a mono mixer and the cubic resampler and
// collects the result as 16-bit PCM at targetRate.
func Mono16(src audio.Source, targetRate, bufSize int) ([]int16, error) {
	var stream audio.Source = audio.NewMonoMixer(src)
	if src.SampleRate() != targetRate {
		stream = audio.NewResampler(stream, targetRate)
	}
	if bufSize <= 0 {
		bufSize = 4096
	}

	pcm := make([]int16, 0, bufSize)
	buf := make([]float32, bufSize)
	for {
		n, err := stream.ReadSamples(buf)
		for _, v := range buf[:n] {
			pcm = append(pcm, utils.Float32ToInt16(v))
		}
		if errors.Is(err, io.EOF) {
			return pcm, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// LittleEndian lays pcm out the way the device expects it.
func LittleEndian(pcm []int16) []byte {
	out := make([]byte, len(pcm)*2)
	for i, s := range pcm {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// Player owns the process wide audio context. Create at most one.
type Player struct {
	otoCtx *oto.Context
	rate   int
	log    *slog.Logger
}

func New(deviceRate int, log *slog.Logger) (*Player, error) {
	if deviceRate <= 0 {
		deviceRate = DefaultDeviceRate
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   deviceRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	log.Debug("audio device ready", "rate", deviceRate)
	return &Player{otoCtx: ctx, rate: deviceRate, log: log}, nil
}

func (p *Player) DeviceRate() int { return p.rate }

// Play blocks until pb has been played or ctx is done.
func (p *Player) Play(ctx context.Context, pb encode.Playback) error {
	pcm, err := ToDevice(pb, p.rate)
	if err != nil {
		return err
	}

	pl := p.otoCtx.NewPlayer(bytes.NewReader(LittleEndian(pcm)))
	defer pl.Close()

	p.log.Info("playing",
		"rate", pb.SampleRate,
		"bits", pb.BitDepth,
		"subtype", pb.Subtype,
		"device_rate", p.rate)

	pl.Play()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for pl.IsPlaying() {
		select {
		case <-ctx.Done():
			pl.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return pl.Err()
}
