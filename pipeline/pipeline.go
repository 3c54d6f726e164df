// SPDX-License-Identifier: EPL-2.0

// Package pipeline runs the whole degradation chain for one upload:
// decode, normalize, resample, quantize, size estimate, WAV encode and
// figures. Every parameter change recomputes everything from the
// normalized original; nothing is cached between calls.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ik5/audlab/audio"
	"github.com/ik5/audlab/encode"
	"github.com/ik5/audlab/estimate"
	"github.com/ik5/audlab/formats/aiff"
	"github.com/ik5/audlab/formats/flac"
	"github.com/ik5/audlab/formats/mp3"
	"github.com/ik5/audlab/formats/vorbis"
	"github.com/ik5/audlab/formats/wav"
	"github.com/ik5/audlab/internal/config"
	"github.com/ik5/audlab/quantize"
	"github.com/ik5/audlab/resample"
	"github.com/ik5/audlab/visualize"
)

// sniffLen is how many leading bytes are handed to format detection.
const sniffLen = 16

var ErrTooLarge = errors.New("upload exceeds size limit")

// DefaultRegistry knows every bundled container.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register(audio.FormatWAV, wav.Decoder{})
	reg.Register(audio.FormatAIFF, aiff.Decoder{})
	reg.Register(audio.FormatMP3, mp3.Decoder{})
	reg.Register(audio.FormatVorbis, vorbis.Decoder{})
	reg.Register(audio.FormatFLAC, flac.Decoder{})
	return reg
}

type Option func(*Pipeline)

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

func WithRegistry(r *audio.Registry) Option {
	return func(p *Pipeline) { p.reg = r }
}

type Pipeline struct {
	cfg    config.Config
	log    *slog.Logger
	reg    *audio.Registry
	bridge *encode.Bridge
}

// New expects a validated cfg.
func New(cfg config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg: cfg,
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.reg == nil {
		p.reg = DefaultRegistry()
	}
	p.bridge = encode.New(cfg.TempDir)
	return p
}

func (p *Pipeline) Config() config.Config { return p.cfg }

// Track is a decoded, normalized upload.
type Track struct {
	Name     string
	Info     audio.StreamInfo
	Original audio.Buffer
}

// Load decodes the upload called name from r and normalizes it. The format
// comes from the name's extension or, failing that, the leading bytes.
func (p *Pipeline) Load(name string, r io.Reader) (*Track, error) {
	limit := p.cfg.MaxUploadBytes()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}

	format, dec, err := p.reg.Lookup(name, data[:min(len(data), sniffLen)])
	if err != nil {
		p.log.Warn("no decoder", "name", name, "error", err)
		return nil, &audio.DecodeError{Format: format, Err: err}
	}

	buf, info, err := audio.Decode(format, dec, bytes.NewReader(data))
	if err != nil {
		p.log.Warn("decode failed", "name", name, "format", format, "error", err)
		return nil, err
	}

	norm, err := audio.Normalize(buf)
	if err != nil {
		p.log.Warn("normalize failed", "name", name, "error", err)
		return nil, err
	}

	p.log.Info("track loaded",
		"name", name,
		"format", format,
		"rate", info.SampleRate,
		"channels", info.Channels,
		"samples", norm.Len(),
		"duration", norm.Duration())

	return &Track{Name: name, Info: info, Original: norm}, nil
}

// Process degrades t to params and returns every derived artifact.
func (p *Pipeline) Process(ctx context.Context, t *Track, params Params) (*Result, error) {
	if t == nil {
		return nil, errors.New("no track loaded")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Params: params, Original: t.Original}

	resampled, method, err := resample.ResampleMethod(t.Original, params.TargetRate, p.cfg.ResampleOptions())
	if err != nil {
		return nil, err
	}
	res.Resampled, res.Method = resampled, method
	if method != p.cfg.ResampleOptions().Method {
		res.warn("%s resampling unavailable for %d Hz -> %d Hz, used %s",
			p.cfg.ResampleOptions().Method, t.Original.SampleRate(), params.TargetRate, method)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	quantized, err := quantize.Quantize(resampled, params.BitDepth)
	if err != nil {
		return nil, err
	}
	res.Quantized = quantized
	res.MaxError = quantize.MaxError(resampled, quantized)

	res.Estimate = estimate.ForBuffer(quantized, params.BitDepth)
	if n := p.cfg.CompareChannels; n > 1 {
		what := estimate.WhatIf(quantized, params.BitDepth, n)
		res.Illustrative = &what
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Playback, err = p.bridge.Encode(quantized, params.BitDepth)
	if err != nil {
		return nil, err
	}
	if res.Playback.Silent {
		res.warn("%s", res.Playback.Warning)
	} else if res.Playback.Fallback {
		res.warn("%d-bit samples stored in a %d-bit %s container",
			params.BitDepth, res.Playback.ContainerBits, res.Playback.Subtype)
	}

	res.Figures = visualize.Build(t.Original, quantized, visualize.Options{
		ZoomDuration: p.cfg.ZoomDuration(),
		MaxPoints:    p.cfg.MaxPlotPoints,
	})
	if res.Figures.Zoom.Empty {
		res.warn("zoom window of %s holds no samples at %d Hz", p.cfg.ZoomDuration(), params.TargetRate)
	}

	p.log.Debug("processed",
		"track", t.Name,
		"rate", params.TargetRate,
		"bits", params.BitDepth,
		"method", method.String(),
		"bytes", res.Estimate.Bytes,
		"silent", res.Playback.Silent,
		"max_error", res.MaxError)

	return res, nil
}
