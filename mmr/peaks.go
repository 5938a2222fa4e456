package mmr

import (
	"math"
	"math/bits"
)

// FindPeaks returns the one based positions of the mountain peaks of an MMR
// with elementsCount nodes. The peaks are listed left to right, which is also
// highest to lowest.
//
// The count is decomposed greedily into perfect mountains, largest first. If
// the decomposition leaves a remainder the count is not a valid MMR size and
// nil is returned. Callers must treat nil for a non zero count as
// ErrInvalidElementsCount rather than as "no peaks".
//
// So given the example below, which has an elementsCount of 18, the peaks are [15, 18]
//
//	3            15
//	           /    \
//	          /      \
//	         /        \
//	2       7          14
//	      /   \       /   \
//	1    3     6    10     13      18
//	    / \  /  \   / \   /  \    /  \
//	0  1   2 4   5 8   9 11   12 16   17
func FindPeaks(elementsCount uint64) []uint64 {
	mountainSize := maxMountainSize(elementsCount)
	shift := uint64(0)

	var peaks []uint64
	for ; mountainSize > 0; mountainSize >>= 1 {
		if mountainSize > elementsCount {
			continue
		}
		shift += mountainSize
		peaks = append(peaks, shift)
		elementsCount -= mountainSize
	}
	if elementsCount > 0 {
		return nil
	}
	return peaks
}

// maxMountainSize returns 2^BitLength(n) - 1, the size of the smallest
// perfect mountain not smaller than n. It is 0 for n == 0 and does not wrap
// when the top bit of n is set.
func maxMountainSize(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	return ^uint64(0) >> (64 - BitLength(n))
}

// PeakHeights returns the zero based height of each peak listed by FindPeaks.
func PeakHeights(elementsCount uint64) []uint64 {
	peaks := FindPeaks(elementsCount)
	if peaks == nil {
		return nil
	}
	heights := make([]uint64, 0, len(peaks))
	for _, p := range peaks {
		heights = append(heights, PosHeight(p))
	}
	return heights
}

// PeaksBitmap returns a bit mask where a 1 corresponds to a peak and the position
// of the bit is the height of that peak. The resulting value is also the count
// of leaves. This is due to the binary nature of the tree.
//
// For example, with an mmr with 19 elements, there are 11 leaves
//
//	         15
//	      /       \
//	    7          14
//	  /   \       /   \
//	 3     6     10    13     18
//	/ \   /  \  / \   /  \   /  \
//	1  2 4   5 8   9 11  12 16  17 19
//
// PeaksBitmap(19) returns 0b1011 which shows, reading from the right (low bit),
// that the lowest peak is at height 0, the second lowest at height 1, then the
// next and last peak is at height 3.
//
// If the provided count is invalid, the returned map is for the largest valid
// count < the provided invalid count.
func PeaksBitmap(elementsCount uint64) uint64 {
	if elementsCount == 0 {
		return 0
	}
	pos := elementsCount
	peakSize := uint64(math.MaxUint64) >> bits.LeadingZeros64(elementsCount)
	peakMap := uint64(0)
	for peakSize > 0 {
		peakMap <<= 1
		if pos >= peakSize {
			pos -= peakSize
			peakMap |= 1
		}
		peakSize >>= 1
	}
	return peakMap
}

// GetPeakInfo locates the mountain containing elementIndex. It returns the
// zero based rank of that mountain among the peaks, counting from the left,
// and the zero based height of the mountain.
//
// For the tree pictured on FindPeaks, element 12 is in mountain 0 with height
// 3, and element 17 is in mountain 1 with height 1.
func GetPeakInfo(elementsCount, elementIndex uint64) (int, uint64, error) {
	if elementIndex == 0 || elementIndex > elementsCount {
		return 0, 0, ErrInvalidElementIndex
	}
	if FindPeaks(elementsCount) == nil {
		return 0, 0, ErrInvalidElementsCount
	}

	height := uint64(BitLength(elementsCount))
	mountainSize := uint64(1)<<height - 1
	peakIndex := 0

	for ; mountainSize > 0; mountainSize, height = mountainSize>>1, height-1 {
		if mountainSize > elementsCount {
			continue
		}
		if elementIndex <= mountainSize {
			return peakIndex, height - 1, nil
		}
		elementsCount -= mountainSize
		elementIndex -= mountainSize
		peakIndex++
	}

	// unreachable for a valid count, the last mountain always covers the
	// remaining indices.
	return 0, 0, ErrInvalidElementsCount
}
