// Package formatting pads peak and proof lists to the fixed lengths expected
// by consumers that can't handle variable length input, such as on chain
// verifiers.
package formatting

import (
	"errors"
	"fmt"
)

var ErrOutputSizeExceeded = errors.New("formatting: expected output size is smaller than the actual size")

type Options struct {
	OutputSize int
	NullValue  string
}

type (
	PeaksOptions = Options
	ProofOptions = Options
)

// FormatPeaks right pads peaks with NullValue to OutputSize. The input is
// never truncated or modified.
func FormatPeaks(peaks []string, opts PeaksOptions) ([]string, error) {
	return pad("peaks", peaks, opts)
}

// FormatProof right pads the sibling hashes with NullValue to OutputSize.
func FormatProof(siblings []string, opts ProofOptions) ([]string, error) {
	return pad("proof", siblings, opts)
}

func pad(what string, values []string, opts Options) ([]string, error) {
	if len(values) > opts.OutputSize {
		return nil, fmt.Errorf("%w: %s has %d values, output size is %d", ErrOutputSizeExceeded, what, len(values), opts.OutputSize)
	}
	out := make([]string, opts.OutputSize)
	n := copy(out, values)
	for i := n; i < len(out); i++ {
		out[i] = opts.NullValue
	}
	return out, nil
}
