// Package leafgen produces reproducible leaf values for benchmarks and tests.
package leafgen

import (
	"fmt"
	"math/rand"
	"strconv"
)

type Generator struct {
	rng *rand.Rand
}

func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Numbered returns the decimal strings base, base+1, ... These are valid
// inputs for both string and field element hashers.
func Numbered(base uint64, count int) []string {
	values := make([]string, count)
	for i := range values {
		values[i] = strconv.FormatUint(base+uint64(i), 10)
	}
	return values
}

// Hex returns count random 0x prefixed 248 bit values. They are below every
// supported field modulus.
func (g *Generator) Hex(count int) []string {
	values := make([]string, count)
	for i := range values {
		b := make([]byte, 31)
		g.rng.Read(b)
		values[i] = fmt.Sprintf("0x%x", b)
	}
	return values
}

// Shuffle returns a permutation of values
func (g *Generator) Shuffle(values []uint64) []uint64 {
	out := append([]uint64{}, values...)
	g.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
