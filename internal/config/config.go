// SPDX-License-Identifier: EPL-2.0

// Package config holds the runtime settings shared by the CLI and the server.
//
// Settings come from Default, then an optional JSON file, then AUDLAB_*
// environment variables, in that order of precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ik5/audlab/quantize"
	"github.com/ik5/audlab/resample"
)

// Defaults.
const (
	DefaultAddr            = ":8080"
	DefaultMinRate         = 4000
	DefaultMaxRate         = 48000
	DefaultRateStep        = 1000
	DefaultMinBitDepth     = 3
	DefaultMaxBitDepth     = 24
	DefaultZoomMillis      = 1.0
	DefaultMaxPlotPoints   = 4000
	DefaultMaxUploadMB     = 50
	DefaultSessionTTLSecs  = 1800
	DefaultResampleMethod  = "polyphase"
	DefaultResampleQuality = "high"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

const envPrefix = "AUDLAB_"

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Addr string `json:"addr"`

	// Bounds offered to the user for the target rate and bit depth.
	MinRate     int `json:"min_rate"`
	MaxRate     int `json:"max_rate"`
	RateStep    int `json:"rate_step"`
	MinBitDepth int `json:"min_bit_depth"`
	MaxBitDepth int `json:"max_bit_depth"`

	ResampleMethod  string `json:"resample_method"`
	ResampleQuality string `json:"resample_quality"`

	ZoomMillis    float64 `json:"zoom_ms"`
	MaxPlotPoints int     `json:"max_plot_points"`

	// CompareChannels, when above 1, adds an illustrative size estimate for
	// that many channels next to the real mono one.
	CompareChannels int `json:"compare_channels,omitempty"`

	TempDir        string `json:"temp_dir,omitempty"`
	MaxUploadMB    int    `json:"max_upload_mb"`
	SessionTTLSecs int    `json:"session_ttl_seconds"`

	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
}

func Default() Config {
	return Config{
		Addr:            DefaultAddr,
		MinRate:         DefaultMinRate,
		MaxRate:         DefaultMaxRate,
		RateStep:        DefaultRateStep,
		MinBitDepth:     DefaultMinBitDepth,
		MaxBitDepth:     DefaultMaxBitDepth,
		ResampleMethod:  DefaultResampleMethod,
		ResampleQuality: DefaultResampleQuality,
		ZoomMillis:      DefaultZoomMillis,
		MaxPlotPoints:   DefaultMaxPlotPoints,
		MaxUploadMB:     DefaultMaxUploadMB,
		SessionTTLSecs:  DefaultSessionTTLSecs,
		LogLevel:        DefaultLogLevel,
		LogFormat:       DefaultLogFormat,
	}
}

// Load builds a validated Config. path may be empty to skip the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		v, ok := os.LookupEnv(envPrefix + key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
			return
		}
		*dst = n
	}
	float := func(key string, dst *float64) {
		v, ok := os.LookupEnv(envPrefix + key)
		if !ok || v == "" {
			return
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
			return
		}
		*dst = f
	}

	str("ADDR", &c.Addr)
	num("MIN_RATE", &c.MinRate)
	num("MAX_RATE", &c.MaxRate)
	num("RATE_STEP", &c.RateStep)
	num("MIN_BIT_DEPTH", &c.MinBitDepth)
	num("MAX_BIT_DEPTH", &c.MaxBitDepth)
	str("RESAMPLE_METHOD", &c.ResampleMethod)
	str("RESAMPLE_QUALITY", &c.ResampleQuality)
	float("ZOOM_MS", &c.ZoomMillis)
	num("MAX_PLOT_POINTS", &c.MaxPlotPoints)
	num("COMPARE_CHANNELS", &c.CompareChannels)
	str("TEMP_DIR", &c.TempDir)
	num("MAX_UPLOAD_MB", &c.MaxUploadMB)
	num("SESSION_TTL_SECONDS", &c.SessionTTLSecs)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)

	return errors.Join(errs...)
}

// Validate reports every problem at once, each wrapping ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.MinRate <= 0 {
		add("min_rate %d must be positive", c.MinRate)
	}
	if c.MaxRate < c.MinRate {
		add("max_rate %d below min_rate %d", c.MaxRate, c.MinRate)
	}
	if c.RateStep <= 0 {
		add("rate_step %d must be positive", c.RateStep)
	}
	if c.MinBitDepth < quantize.MinBits || c.MaxBitDepth > quantize.MaxBits || c.MinBitDepth > c.MaxBitDepth {
		add("bit depth range %d..%d outside %d..%d", c.MinBitDepth, c.MaxBitDepth, quantize.MinBits, quantize.MaxBits)
	}
	if _, err := resample.ParseMethod(c.ResampleMethod); err != nil {
		add("%v", err)
	}
	if _, err := resample.ParseQuality(c.ResampleQuality); err != nil {
		add("%v", err)
	}
	if c.ZoomMillis <= 0 {
		add("zoom_ms %v must be positive", c.ZoomMillis)
	}
	if c.MaxPlotPoints < 0 {
		add("max_plot_points %d must not be negative", c.MaxPlotPoints)
	}
	if c.CompareChannels < 0 {
		add("compare_channels %d must not be negative", c.CompareChannels)
	}
	if c.MaxUploadMB <= 0 {
		add("max_upload_mb %d must be positive", c.MaxUploadMB)
	}
	if c.SessionTTLSecs <= 0 {
		add("session_ttl_seconds %d must be positive", c.SessionTTLSecs)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		add("%v", err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		add("log_format %q must be text or json", c.LogFormat)
	}

	return errors.Join(errs...)
}

// ResampleOptions converts the resampler settings. Call after Validate.
func (c Config) ResampleOptions() resample.Options {
	m, _ := resample.ParseMethod(c.ResampleMethod)
	q, _ := resample.ParseQuality(c.ResampleQuality)
	return resample.Options{Method: m, Quality: q}
}

func (c Config) ZoomDuration() time.Duration {
	return time.Duration(c.ZoomMillis * float64(time.Millisecond))
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSecs) * time.Second
}

func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func (c Config) SlogLevel() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

// NewLogger returns a slog.Logger writing to w in the configured format and
// level.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
