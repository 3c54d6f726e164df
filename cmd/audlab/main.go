// SPDX-License-Identifier: EPL-2.0

// Command audlab degrades one audio file from the terminal.
//
// Usage:
//
//	audlab -in clip.mp3 [-rate 8000] [-bits 8] [-out out.wav] [-plots dir]
//	       [-format svg|png] [-play] [-tui] [-config config.json]
//
// Without -tui it runs once and prints the report. -rate 0 keeps the
// source rate.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ik5/audlab/internal/config"
	"github.com/ik5/audlab/internal/player"
	"github.com/ik5/audlab/internal/tui"
	"github.com/ik5/audlab/pipeline"
	"github.com/ik5/audlab/visualize"
)

type options struct {
	in         string
	rate       int
	bits       int
	out        string
	plots      string
	format     string
	play       bool
	tui        bool
	configPath string
}

func main() {
	var opts options
	flag.StringVar(&opts.in, "in", "", "input audio file (wav, aiff, mp3, ogg, flac)")
	flag.IntVar(&opts.rate, "rate", 8000, "target sampling rate in Hz, 0 keeps the source rate")
	flag.IntVar(&opts.bits, "bits", 8, "target bit depth (2-32)")
	flag.StringVar(&opts.out, "out", "", "write the degraded WAV here")
	flag.StringVar(&opts.plots, "plots", "", "write overview, markers and zoom figures into this directory")
	flag.StringVar(&opts.format, "format", visualize.SVG, "figure format: svg or png")
	flag.BoolVar(&opts.play, "play", false, "play the result on the local audio device")
	flag.BoolVar(&opts.tui, "tui", false, "interactive terminal mode")
	flag.StringVar(&opts.configPath, "config", "", "path to a JSON config file")
	flag.Parse()

	if opts.in == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "audlab:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	log := cfg.NewLogger(stderr)
	if opts.tui {
		// the terminal belongs to the UI
		log = slog.New(slog.DiscardHandler)
	}

	p := pipeline.New(cfg, pipeline.WithLogger(log))

	f, err := os.Open(opts.in)
	if err != nil {
		return err
	}
	track, err := p.Load(filepath.Base(opts.in), f)
	f.Close()
	if err != nil {
		return err
	}

	params := pipeline.Params{TargetRate: opts.rate, BitDepth: opts.bits}
	if params.TargetRate == 0 {
		params.TargetRate = track.Info.SampleRate
	}

	var pl *player.Player
	if opts.play {
		if pl, err = player.New(player.DefaultDeviceRate, log); err != nil {
			return err
		}
	}

	if opts.tui {
		if pl == nil {
			return tui.Run(p, track, params, nil)
		}
		return tui.Run(p, track, params, pl)
	}

	res, err := p.Process(ctx, track, params)
	if err != nil {
		return err
	}
	report(stdout, track, res)

	if opts.out != "" {
		if res.Playback.Silent {
			fmt.Fprintf(stdout, "skipped %s: nothing to write\n", opts.out)
		} else {
			if err := os.WriteFile(opts.out, res.Playback.WAV, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "wrote %s\n", opts.out)
		}
	}

	if opts.plots != "" {
		paths, err := writeFigures(opts.plots, opts.format, res.Figures)
		if err != nil {
			return err
		}
		for _, path := range paths {
			fmt.Fprintf(stdout, "wrote %s\n", path)
		}
	}

	if pl != nil && !res.Playback.Silent {
		if err := pl.Play(ctx, res.Playback); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return nil
}

func report(w io.Writer, track *pipeline.Track, res *pipeline.Result) {
	info := track.Info
	fmt.Fprintf(w, "source:    %s, %s, %d Hz, %d ch, %.3fs\n",
		track.Name, info.Format, info.SampleRate, info.Channels, track.Original.Duration())
	fmt.Fprintf(w, "target:    %d Hz, %d-bit (%s resampler)\n",
		res.Params.TargetRate, res.Params.BitDepth, res.Method)
	fmt.Fprintf(w, "size:      %s\n", res.Estimate)
	if res.Illustrative != nil {
		fmt.Fprintf(w, "what if:   %s\n", res.Illustrative)
	}
	fmt.Fprintf(w, "max error: %.6f\n", res.MaxError)
	if !res.Playback.Silent {
		fmt.Fprintf(w, "playback:  %s container\n", res.Playback.Subtype)
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "warning:   %s\n", warning)
	}
}

func writeFigures(dir, format string, figs visualize.Figures) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	named := []struct {
		name string
		fig  visualize.Figure
	}{
		{"overview", figs.Overview},
		{"markers", figs.Markers},
		{"zoom", figs.Zoom},
	}

	paths := make([]string, 0, len(named))
	for _, n := range named {
		path := filepath.Join(dir, n.name+"."+format)
		f, err := os.Create(path)
		if err != nil {
			return paths, err
		}
		err = visualize.Render(n.fig, f, format)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
