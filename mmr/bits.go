package mmr

import "math/bits"

// BitLength returns the position of the highest set bit of num, plus one. It
// is 0 for num == 0.
func BitLength(num uint64) int {
	return bits.Len64(num)
}

func BitLength64(num uint64) uint64 { return uint64(BitLength(num)) }

// Log2Uint64 efficiently computes log base 2 of num
func Log2Uint64(num uint64) uint64 {
	return uint64(bits.Len64(num) - 1)
}

// AllOnes is true when every bit below the most significant set bit is also
// set. One based positions with this property are the peaks of perfect trees.
func AllOnes(num uint64) bool {
	return (1<<bits.OnesCount64(num) - 1) == num
}

// TrailingOnes counts the consecutive least significant one bits of num.
func TrailingOnes(num uint64) uint64 {
	return uint64(bits.TrailingZeros64(^num))
}
