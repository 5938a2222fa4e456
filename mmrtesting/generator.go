package mmrtesting

import "github.com/forestrie/go-mmrkv/internal/leafgen"

// TestGenerator produces reproducible leaf values
type TestGenerator struct {
	*leafgen.Generator
}

func NewTestGenerator(seed int64) *TestGenerator {
	return &TestGenerator{Generator: leafgen.New(seed)}
}

// NumberedLeaves returns the decimal strings base, base+1, ...
func NumberedLeaves(base uint64, count int) []string {
	return leafgen.Numbered(base, count)
}

// HexLeaves returns count random 0x prefixed 248 bit values
func (g *TestGenerator) HexLeaves(count int) []string {
	return g.Hex(count)
}
