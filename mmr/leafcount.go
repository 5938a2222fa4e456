package mmr

import (
	"fmt"
	"math/bits"
)

// ElementsCountToLeafCount returns the number of leaves in an MMR with
// elementsCount nodes. The count is decomposed into mountains exactly as
// FindPeaks does, summing the leaves of each mountain rather than recording
// its peak.
//
// ErrInvalidElementsCount is returned if the decomposition leaves a
// remainder.
func ElementsCountToLeafCount(elementsCount uint64) (uint64, error) {
	remaining := elementsCount
	leafCount := uint64(0)

	for mountainSize := maxMountainSize(elementsCount); mountainSize > 0; mountainSize >>= 1 {
		if mountainSize > remaining {
			continue
		}
		// a mountain of size 2^h - 1 has 2^(h-1) leaves
		leafCount += mountainSize>>1 + 1
		remaining -= mountainSize
	}

	if remaining > 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidElementsCount, elementsCount)
	}
	return leafCount, nil
}

// ElementIndexToLeafIndex returns the number of leaves strictly before
// elementIndex. When elementIndex is itself a leaf this is its zero based
// leaf index.
func ElementIndexToLeafIndex(elementIndex uint64) (uint64, error) {
	if elementIndex == 0 {
		return 0, ErrInvalidElementIndex
	}
	leafIndex, err := ElementsCountToLeafCount(elementIndex - 1)
	if err != nil {
		return 0, fmt.Errorf("%w: %d", ErrInvalidElementIndex, elementIndex)
	}
	return leafIndex, nil
}

// LeafCountToAppendNoMerges returns the number of merges the next append will
// trigger. Adding a leaf behaves like incrementing a binary counter: each
// trailing one bit of the leaf count is a pair of equal height mountains
// that collapses into the next height up.
//
//	0b0111 -> 3
//	0b0110 -> 0
//	0      -> 0
func LeafCountToAppendNoMerges(leafCount uint64) uint64 {
	return TrailingOnes(leafCount)
}

// LeafCountToElementsCount returns the MMR size for the given number of
// leaves. There are leafCount leaves, and each peak in PeaksBitmap "saves" one
// interior node relative to a perfect binary tree.
func LeafCountToElementsCount(leafCount uint64) uint64 {
	return 2*leafCount - uint64(bits.OnesCount64(leafCount))
}

// FirstMMRSize returns the first valid elements count that includes pos.
//
// The outputs of this function for the positions 1 through 11 are
//
//	[1, 3, 3, 4, 7, 7, 7, 8, 10, 10, 11]
func FirstMMRSize(pos uint64) uint64 {
	h0 := PosHeight(pos)
	h1 := PosHeight(pos + 1)
	for h0 < h1 {
		pos++
		h0 = h1
		h1 = PosHeight(pos + 1)
	}
	return pos
}
