// SPDX-License-Identifier: EPL-2.0

package server

import (
	"encoding/base64"
	"fmt"

	"github.com/ik5/audlab/audio"
	"github.com/ik5/audlab/encode"
	"github.com/ik5/audlab/estimate"
	"github.com/ik5/audlab/pipeline"
	"github.com/ik5/audlab/visualize"
)

// Message types sent over the websocket.
const (
	TypeReady  = "ready"
	TypeResult = "result"
	TypeError  = "error"
)

type UploadResponse struct {
	Session  string           `json:"session"`
	Name     string           `json:"name"`
	Info     audio.StreamInfo `json:"info"`
	Duration float64          `json:"duration"`
	Bounds   pipeline.Bounds  `json:"bounds"`
	Initial  pipeline.Params  `json:"initial"`
}

type ErrorResponse struct {
	Type  string `json:"type,omitempty"`
	Error string `json:"error"`
}

type ReadyMessage struct {
	Type   string           `json:"type"`
	Name   string           `json:"name"`
	Info   audio.StreamInfo `json:"info"`
	Bounds pipeline.Bounds  `json:"bounds"`
}

type FigureSVGs struct {
	Overview string `json:"overview"`
	Markers  string `json:"markers"`
	Zoom     string `json:"zoom"`
}

type ResultMessage struct {
	Type         string             `json:"type"`
	Params       pipeline.Params    `json:"params"`
	Method       string             `json:"method"`
	MaxError     float64            `json:"max_error"`
	Estimate     estimate.DataSize  `json:"estimate"`
	Summary      string             `json:"summary"`
	Illustrative *estimate.DataSize `json:"illustrative,omitempty"`
	Playback     encode.Playback    `json:"playback"`

	// WAV is the base64 encoded playback file, empty when Playback.Silent.
	WAV      string     `json:"wav,omitempty"`
	Figures  FigureSVGs `json:"figures"`
	Warnings []string   `json:"warnings,omitempty"`
}

func newResultMessage(res *pipeline.Result) (ResultMessage, error) {
	msg := ResultMessage{
		Type:         TypeResult,
		Params:       res.Params,
		Method:       res.Method.String(),
		MaxError:     res.MaxError,
		Estimate:     res.Estimate,
		Summary:      res.Estimate.String(),
		Illustrative: res.Illustrative,
		Playback:     res.Playback,
		Warnings:     res.Warnings,
	}
	if !res.Playback.Silent {
		msg.WAV = base64.StdEncoding.EncodeToString(res.Playback.WAV)
	}

	figs := []struct {
		dst *string
		fig visualize.Figure
	}{
		{&msg.Figures.Overview, res.Figures.Overview},
		{&msg.Figures.Markers, res.Figures.Markers},
		{&msg.Figures.Zoom, res.Figures.Zoom},
	}
	for _, f := range figs {
		svg, err := visualize.RenderString(f.fig)
		if err != nil {
			return ResultMessage{}, fmt.Errorf("rendering %q: %w", f.fig.Title, err)
		}
		*f.dst = svg
	}
	return msg, nil
}
