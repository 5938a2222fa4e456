package accumulator

import (
	"errors"

	"github.com/forestrie/go-mmrkv/mmr"
)

var (
	ErrInvalidIndex = mmr.ErrInvalidElementIndex
	ErrInvalidCount = mmr.ErrInvalidElementsCount
)

var (
	ErrNotLeaf        = errors.New("mmr node not a leaf")
	ErrBackendFailure = errors.New("store or hasher failure")
	ErrMissingNode    = errors.New("node hash referenced by the mmr is missing from the store")
	ErrVerifyFailed   = errors.New("proof verification failed")
	ErrNilStore       = errors.New("a store is required")
	ErrNilHasher      = errors.New("a hasher is required")
	ErrProofDecode    = errors.New("proof could not be decoded")
)
