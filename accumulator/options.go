package accumulator

import (
	"github.com/datatrails/go-datatrails-common/logger"
)

type Options struct {
	// ID namespaces every key, so independent accumulators can share a store.
	// When empty a random uuid is used.
	ID  string
	Log logger.Logger
}

type Option func(*Options)

func WithID(id string) Option {
	return func(o *Options) { o.ID = id }
}

func WithLogger(log logger.Logger) Option {
	return func(o *Options) { o.Log = log }
}

type proofOptions struct {
	elementsCount uint64
	// set distinguishes an explicit size of 0, the empty mmr, from the default
	set bool
}

// ProofOption adjusts proof and peak retrieval
type ProofOption func(*proofOptions)

// WithElementsCount selects a historical size of the mmr. Nodes are never
// rewritten, so proofs against any earlier valid size can be produced from
// the current store.
func WithElementsCount(elementsCount uint64) ProofOption {
	return func(o *proofOptions) {
		o.elementsCount = elementsCount
		o.set = true
	}
}
