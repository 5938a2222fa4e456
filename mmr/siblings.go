package mmr

// FindSiblings returns the one based positions of the authentication path for
// the leaf at elementIndex, ordered from the leaf upwards. The path stops just
// below the peak of the mountain containing the leaf, so a leaf which is
// itself a peak has an empty path.
//
// At each level the parity of the remaining leaf index says whether the
// current node is a left or a right child. A right child's sibling is
// SiblingOffset(height) behind it and its parent immediately follows it. A
// left child's sibling is SiblingOffset(height) ahead of it and its parent
// follows that sibling.
//
// For the tree below, with elementsCount 26, FindSiblings(16, 26) returns
// [17, 21] because the peak committing 16 is 22.
//
//	3              15
//	             /    \
//	            /      \
//	           /        \
//	          /          \
//	2        7            14           22
//	       /   \        /    \
//	1     3     6      10     13     18     21     25
//	     / \   / \    / \   /  \   /  \   /  \   /  \
//	0   1   2 4   5  8   9 11  12 16  17 19  20 23  24 26
//
// The caller is responsible for checking elementIndex is a leaf and that
// elementsCount is valid. ErrInvalidElementIndex is returned for position 0.
func FindSiblings(elementIndex uint64, elementsCount uint64) ([]uint64, error) {
	leafIndex, err := ElementIndexToLeafIndex(elementIndex)
	if err != nil {
		return nil, err
	}

	var siblings []uint64
	height := uint64(0)
	pos := elementIndex

	for pos <= elementsCount {
		offset := SiblingOffset(height)
		if leafIndex%2 == 1 {
			// right child
			siblings = append(siblings, pos-offset)
			pos++
		} else {
			// left child
			siblings = append(siblings, pos+offset)
			pos += offset + 1
		}
		leafIndex /= 2
		height++
	}

	// the last entry is the non existent sibling of the peak
	if len(siblings) > 0 {
		siblings = siblings[:len(siblings)-1]
	}
	return siblings, nil
}

// NodeSiblings returns the authentication path for any node, leaf or
// interior, at pos in an MMR of elementsCount nodes. For leaves the result is
// the same as FindSiblings.
//
// Interior nodes can't use the leaf index parity, so the direction is
// recovered from the heights instead: if the node after pos is higher, pos is
// a right child. This is what makes proofs for old peaks, and hence
// consistency proofs, possible.
func NodeSiblings(pos uint64, elementsCount uint64) ([]uint64, error) {
	if pos == 0 || pos > elementsCount {
		return nil, ErrInvalidElementIndex
	}
	if FindPeaks(elementsCount) == nil {
		return nil, ErrInvalidElementsCount
	}

	var siblings []uint64
	height := PosHeight(pos)

	for {
		var sibling uint64
		if PosHeight(pos+1) > height {
			// right child, the parent is stored immediately after
			sibling = pos - SiblingOffset(height)
			pos++
		} else {
			// left child, the parent is stored immediately after its right sibling
			sibling = pos + SiblingOffset(height)
			pos += ParentOffset(height)
		}

		// When the computed sibling is beyond the end of the mmr, the current
		// node was a peak and the path is complete.
		if sibling > elementsCount {
			return siblings, nil
		}
		siblings = append(siblings, sibling)
		height++
	}
}

// IsRightChild reports whether the node at pos, having the given height, is
// the right child of its parent.
func IsRightChild(pos uint64, height uint64) bool {
	return PosHeight(pos+1) > height
}

// Parent returns the position of the parent of the node at pos, given its
// height.
func Parent(pos uint64, height uint64) uint64 {
	if IsRightChild(pos, height) {
		return pos + 1
	}
	return pos + ParentOffset(height)
}
