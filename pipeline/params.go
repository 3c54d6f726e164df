// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"fmt"

	"github.com/ik5/audlab/audio"
	"github.com/ik5/audlab/encode"
	"github.com/ik5/audlab/estimate"
	"github.com/ik5/audlab/internal/config"
	"github.com/ik5/audlab/resample"
	"github.com/ik5/audlab/visualize"
)

type Params struct {
	TargetRate int `json:"rate"`
	BitDepth   int `json:"bits"`
}

// Bound snaps p into the range the user interface offers: the rate is
// clamped to [MinRate, MaxRate] and rounded to the nearest RateStep above
// MinRate, the depth is clamped to [MinBitDepth, MaxBitDepth]. MaxRate
// itself is always reachable even when it is off the step grid.
func (p Params) Bound(cfg config.Config) Params {
	rate := min(max(p.TargetRate, cfg.MinRate), cfg.MaxRate)
	if cfg.RateStep > 0 && rate < cfg.MaxRate {
		steps := (rate - cfg.MinRate + cfg.RateStep/2) / cfg.RateStep
		rate = min(cfg.MinRate+steps*cfg.RateStep, cfg.MaxRate)
	}
	return Params{
		TargetRate: rate,
		BitDepth:   min(max(p.BitDepth, cfg.MinBitDepth), cfg.MaxBitDepth),
	}
}

// Bounds describes the parameter range for clients.
type Bounds struct {
	MinRate     int `json:"min_rate"`
	MaxRate     int `json:"max_rate"`
	RateStep    int `json:"rate_step"`
	MinBitDepth int `json:"min_bits"`
	MaxBitDepth int `json:"max_bits"`
}

func BoundsOf(cfg config.Config) Bounds {
	return Bounds{
		MinRate:     cfg.MinRate,
		MaxRate:     cfg.MaxRate,
		RateStep:    cfg.RateStep,
		MinBitDepth: cfg.MinBitDepth,
		MaxBitDepth: cfg.MaxBitDepth,
	}
}

type Result struct {
	Params Params

	Original  audio.Buffer
	Resampled audio.Buffer
	Quantized audio.Buffer
	Method    resample.Method
	MaxError  float64

	Estimate estimate.DataSize
	// Illustrative is set when the config asks for a multi-channel
	// comparison. It does not describe the encoded file.
	Illustrative *estimate.DataSize

	Playback encode.Playback
	Figures  visualize.Figures
	Warnings []string
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}
