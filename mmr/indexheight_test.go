package mmr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJumpLeftPerfect(t *testing.T) {
	type args struct {
		pos uint64
	}
	tests := []struct {
		name string
		args args
		want uint64
	}{
		//  3            15
		//             /    \
		//            /      \
		//           /        \
		//  2       7          14
		//        /   \       /   \
		//  1    3     6    10     13      18
		//      / \  /  \   / \   /  \    /  \
		//  0  1   2 4   5 8   9 11   12 16   17

		// this is the case used in the example at
		// https://github.com/mimblewimble/grin/blob/0ff6763ee64e5a14e70ddd4642b99789a1648a32/core/src/core/pmmr.rs#L606
		{"13", args{13}, 6},
		// 10 jumps to the equivalent node in the perfect tree to the left
		{"10", args{10}, 3},
		{"6", args{6}, 3},
		// the perfect tree containing 18 is a sibling of the tree rooted at
		// 15, so 18's partner node on this level is 3 directly
		{"18", args{18}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JumpLeftPerfect(tt.args.pos); got != tt.want {
				t.Errorf("JumpLeftPerfect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPosHeight(t *testing.T) {
	// heights of positions 1 through 26
	want := []uint64{
		0, 0, 1, 0, 0, 1, 2, 0, 0, 1, 0, 0, 1, 2, 3,
		0, 0, 1, 0, 0, 1, 2, 0, 0, 1, 0,
	}
	for i, h := range want {
		pos := uint64(i + 1)
		assert.Equal(t, h, PosHeight(pos), "pos %d", pos)
		assert.Equal(t, h == 0, IsLeaf(pos), "pos %d", pos)
	}
	assert.False(t, IsLeaf(0))
}

func TestSiblingAndParentOffsets(t *testing.T) {
	tests := []struct {
		height  uint64
		sibling uint64
		parent  uint64
		size    uint64
		leaves  uint64
	}{
		{0, 1, 2, 1, 1},
		{1, 3, 4, 3, 2},
		{2, 7, 8, 7, 4},
		{3, 15, 16, 15, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.sibling, SiblingOffset(tt.height))
		assert.Equal(t, tt.parent, ParentOffset(tt.height))
		assert.Equal(t, tt.size, MountainSize(tt.height))
		assert.Equal(t, tt.leaves, MountainLeafCount(tt.height))
	}
}

func TestParent(t *testing.T) {
	//	2       7
	//	      /   \
	//	1    3     6    10
	//	    / \  /  \   / \
	//	0  1   2 4   5 8   9
	tests := []struct {
		pos    uint64
		right  bool
		parent uint64
	}{
		{1, false, 3},
		{2, true, 3},
		{3, false, 7},
		{4, false, 6},
		{5, true, 6},
		{6, true, 7},
		{8, false, 10},
		{9, true, 10},
	}
	for _, tt := range tests {
		h := PosHeight(tt.pos)
		assert.Equal(t, tt.right, IsRightChild(tt.pos, h), "pos %d", tt.pos)
		assert.Equal(t, tt.parent, Parent(tt.pos, h), "pos %d", tt.pos)
	}
}
