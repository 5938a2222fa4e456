package mmr

// References:
// * https://github.com/proofchains/python-proofmarshal/blob/master/proofmarshal/mmr.py#L18
// * https://github.com/mimblewimble/grin/blob/0ff6763ee64e5a14e70ddd4642b99789a1648a32/core/src/core/pmmr.rs#L606

// Everything in this package works with *one based* positions. Position 0 is
// never a node.

// JumpLeftPerfect is used to iteratively discover the left most node at the same
// height as the node identified by pos. This is how we discover the height in
// the tree of an arbitrary position so as to avoid ever having to materialize
// the whole tree. It 'jumps left' by the size of the largest perfect tree which would
// precede pos.
//
// So given,
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
//
// JumpLeftPerfect(13) returns 6 because the size of the largest perfect tree
// preceding 13 is 7. The next jump, JumpLeftPerfect(6) returns 3, because the
// perfect tree preceding 6 is size 3, and the 'all ones' node is found.
func JumpLeftPerfect(pos uint64) uint64 {
	mostSignificantBit := uint64(1) << (BitLength64(pos) - 1)
	return pos - (mostSignificantBit - 1)
}

// PosHeight returns the zero based height of the node at pos. See the
// extended remarks in doc.go for why jumping left until the position is all
// ones works.
func PosHeight(pos uint64) uint64 {
	for !AllOnes(pos) {
		pos = JumpLeftPerfect(pos)
	}
	return BitLength64(pos) - 1
}

// IsLeaf is true if pos is a node at height 0
func IsLeaf(pos uint64) bool {
	return pos != 0 && PosHeight(pos) == 0
}

// SiblingOffset returns the distance between a node at the given height and
// its sibling. A left child finds its sibling this far ahead, a right child
// this far behind.
func SiblingOffset(height uint64) uint64 {
	// for a 1 based height we would use (1 << height) - 1. as our height is
	// naturaly 0 based we start at 2 to recover this.
	return (2 << height) - 1
}

// ParentOffset is the distance from a left child to its parent. The parent of
// a right child is always at pos + 1.
func ParentOffset(height uint64) uint64 {
	return 2 << height
}

// MountainSize returns the node count of a perfect mountain with the zero
// based height.
func MountainSize(height uint64) uint64 {
	return (2 << height) - 1
}

// MountainLeafCount returns the number of leaves under a perfect mountain with
// the zero based height.
func MountainLeafCount(height uint64) uint64 {
	return 1 << height
}
