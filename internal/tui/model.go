// SPDX-License-Identifier: EPL-2.0

// Package tui is the interactive terminal front end: arrow keys move the
// target rate and bit depth and every change recomputes the report.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ik5/audlab/encode"
	"github.com/ik5/audlab/pipeline"
)

// Player is anything that can play a Playback, normally *player.Player.
type Player interface {
	Play(ctx context.Context, pb encode.Playback) error
}

// ResultMsg carries a finished recomputation.
type ResultMsg struct {
	Params pipeline.Params
	Result *pipeline.Result
	Err    error
}

// PlayedMsg reports the end of playback.
type PlayedMsg struct {
	Err error
}

const barWidth = 24

type Model struct {
	pipe   *pipeline.Pipeline
	track  *pipeline.Track
	player Player
	bounds pipeline.Bounds

	params pipeline.Params
	result *pipeline.Result
	err    error

	// busy is set while a recomputation runs; dirty means params changed
	// since it started.
	busy    bool
	dirty   bool
	playing bool
	status  string

	width int
}

// NewModel starts with params snapped into the configured bounds. player
// may be nil.
func NewModel(p *pipeline.Pipeline, track *pipeline.Track, params pipeline.Params, player Player) Model {
	cfg := p.Config()
	return Model{
		pipe:   p,
		track:  track,
		player: player,
		bounds: pipeline.BoundsOf(cfg),
		params: params.Bound(cfg),
		busy:   true,
	}
}

func (m Model) Params() pipeline.Params  { return m.params }
func (m Model) Result() *pipeline.Result { return m.result }
func (m Model) Err() error               { return m.err }

func (m Model) Init() tea.Cmd {
	return m.process()
}

func (m Model) process() tea.Cmd {
	p, track, params := m.pipe, m.track, m.params
	return func() tea.Msg {
		res, err := p.Process(context.Background(), track, params)
		return ResultMsg{Params: params, Result: res, Err: err}
	}
}

func (m Model) play() tea.Cmd {
	pl, pb := m.player, m.result.Playback
	return func() tea.Msg {
		return PlayedMsg{Err: pl.Play(context.Background(), pb)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case ResultMsg:
		m.busy = false
		if msg.Err != nil {
			m.err = msg.Err
		} else {
			m.err = nil
			m.result = msg.Result
		}
		if m.dirty || msg.Params != m.params {
			m.dirty = false
			m.busy = true
			return m, m.process()
		}
	case PlayedMsg:
		m.playing = false
		m.status = ""
		if msg.Err != nil {
			m.status = "playback: " + msg.Err.Error()
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	next := m.params
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "right", "l":
		next.TargetRate += m.bounds.RateStep
	case "left", "h":
		next.TargetRate -= m.bounds.RateStep
	case "shift+right", "L":
		next.TargetRate += 10 * m.bounds.RateStep
	case "shift+left", "H":
		next.TargetRate -= 10 * m.bounds.RateStep
	case "up", "k":
		next.BitDepth++
	case "down", "j":
		next.BitDepth--
	case "p", " ":
		return m.handlePlay()
	default:
		return m, nil
	}

	next = next.Bound(m.pipe.Config())
	if next == m.params {
		return m, nil
	}
	m.params = next
	if m.busy {
		m.dirty = true
		return m, nil
	}
	m.busy = true
	return m, m.process()
}

func (m Model) handlePlay() (tea.Model, tea.Cmd) {
	switch {
	case m.player == nil:
		m.status = "playback disabled, start with -play"
		return m, nil
	case m.playing:
		return m, nil
	case m.result == nil:
		return m, nil
	case m.result.Playback.Silent:
		m.status = m.result.Playback.Warning
		return m, nil
	}
	m.playing = true
	m.status = fmt.Sprintf("playing %d Hz / %d-bit", m.result.Params.TargetRate, m.result.Params.BitDepth)
	return m, m.play()
}

func (m Model) View() string {
	var b strings.Builder

	info := m.track.Info
	fmt.Fprintf(&b, "audlab: %s (%s, %d Hz, %d ch, %.2fs)\n\n",
		m.track.Name, info.Format, info.SampleRate, info.Channels, m.track.Original.Duration())

	fmt.Fprintf(&b, "  rate  %s %6d Hz\n",
		bar(m.params.TargetRate-m.bounds.MinRate, m.bounds.MaxRate-m.bounds.MinRate, barWidth), m.params.TargetRate)
	fmt.Fprintf(&b, "  bits  %s %6d\n\n",
		bar(m.params.BitDepth-m.bounds.MinBitDepth, m.bounds.MaxBitDepth-m.bounds.MinBitDepth, barWidth), m.params.BitDepth)

	switch {
	case m.err != nil:
		fmt.Fprintf(&b, "  error: %v\n", m.err)
	case m.result == nil:
		b.WriteString("  computing...\n")
	default:
		m.renderResult(&b)
	}

	if m.busy {
		b.WriteString("\n  (recomputing)\n")
	}
	if m.status != "" {
		fmt.Fprintf(&b, "\n  %s\n", m.status)
	}

	b.WriteString("\n  ←/→ rate  shift+←/→ rate x10  ↑/↓ bits  p play  q quit\n")
	return b.String()
}

func (m Model) renderResult(b *strings.Builder) {
	res := m.result
	fmt.Fprintf(b, "  size      %s\n", res.Estimate)
	if res.Illustrative != nil {
		fmt.Fprintf(b, "  what if   %s\n", res.Illustrative)
	}
	fmt.Fprintf(b, "  resampler %s\n", res.Method)
	fmt.Fprintf(b, "  max error %.6f\n", res.MaxError)
	if !res.Playback.Silent {
		fmt.Fprintf(b, "  wav       %s, %d bytes\n", res.Playback.Subtype, len(res.Playback.WAV))
	}

	zoom := res.Figures.Zoom
	if zoom.Empty {
		fmt.Fprintf(b, "  zoom      %s\n", zoom.Note)
	} else {
		fmt.Fprintf(b, "  zoom      %d samples\n", len(zoom.Series[1].X))
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(b, "  ! %s\n", w)
	}
}

func bar(value, span, width int) string {
	filled := width
	if span > 0 {
		filled = min(max(value*width/span, 0), width)
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// Run blocks until the user quits.
func Run(p *pipeline.Pipeline, track *pipeline.Track, params pipeline.Params, player Player) error {
	_, err := tea.NewProgram(NewModel(p, track, params, player), tea.WithAltScreen()).Run()
	return err
}
