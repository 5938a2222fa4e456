package leafgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHexIsDeterministic(t *testing.T) {
	a := New(42).Hex(5)
	b := New(42).Hex(5)
	assert.Equal(t, a, b)
	for _, v := range a {
		assert.Len(t, v, 2+62)
	}
	assert.NotEqual(t, a, New(43).Hex(5))
}

func TestNumbered(t *testing.T) {
	assert.Equal(t, []string{"7", "8", "9"}, Numbered(7, 3))
	assert.Empty(t, Numbered(0, 0))
}

func TestShuffleCopies(t *testing.T) {
	in := []uint64{1, 2, 4, 5, 8}
	out := New(1).Shuffle(in)
	assert.ElementsMatch(t, in, out)
	assert.Equal(t, []uint64{1, 2, 4, 5, 8}, in)
}
