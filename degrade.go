// SPDX-License-Identifier: EPL-2.0

package audlab

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ik5/audlab/internal/config"
	"github.com/ik5/audlab/pipeline"
)

// Degrade decodes the file called name from r and degrades it to rate and
// bitDepth using the default configuration. name only picks the decoder;
// when its extension is unknown the stream header is sniffed.
//
// rate and bitDepth are used as given, not snapped to the configured
// bounds. Any positive rate and depths from 2 to 32 are accepted.
func Degrade(name string, r io.Reader, rate, bitDepth int) (*pipeline.Result, error) {
	return DegradeContext(context.Background(), name, r, rate, bitDepth)
}

// DegradeContext is Degrade with cancellation between stages.
func DegradeContext(ctx context.Context, name string, r io.Reader, rate, bitDepth int) (*pipeline.Result, error) {
	p := pipeline.New(config.Default())

	track, err := p.Load(name, r)
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, track, pipeline.Params{TargetRate: rate, BitDepth: bitDepth})
}

// DegradeFile is Degrade for a file on disk.
func DegradeFile(path string, rate, bitDepth int) (*pipeline.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	return Degrade(filepath.Base(path), f, rate, bitDepth)
}
