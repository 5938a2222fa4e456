package mmr

import (
	"testing"
)

func TestBitLength(t *testing.T) {
	type args struct {
		num uint64
	}
	tests := []struct {
		name string
		args args
		want int
	}{
		{"0 -> 0", args{0}, 0},
		{"1 -> 1", args{1}, 1},
		{"2 -> 2", args{2}, 2},
		{"3 -> 2", args{3}, 2},
		{"4 -> 3", args{4}, 3},
		{"7 -> 3", args{7}, 3},
		{"8 -> 4", args{8}, 4},
		{"255 -> 8", args{255}, 8},
		{"max -> 64", args{^uint64(0)}, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BitLength(tt.args.num); got != tt.want {
				t.Errorf("BitLength() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLog2Uint64(t *testing.T) {
	type args struct {
		num uint64
	}
	tests := []struct {
		name string
		args args
		want uint64
	}{
		{"1 -> 0", args{1}, 0},
		{"2 -> 1", args{2}, 1},
		{"3 -> 1", args{3}, 1},
		{"4 -> 2", args{4}, 2},
		{"8 -> 3", args{8}, 3},
		{"17 -> 4", args{17}, 4},
		{"32 -> 5", args{32}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Log2Uint64(tt.args.num); got != tt.want {
				t.Errorf("Log2Uint64() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrailingOnes(t *testing.T) {
	tests := []struct {
		num  uint64
		want uint64
	}{
		{0, 0},
		{0b1, 1},
		{0b10, 0},
		{0b0110, 0},
		{0b0111, 3},
		{0b1011, 2},
		{^uint64(0), 64},
	}
	for _, tt := range tests {
		if got := TrailingOnes(tt.num); got != tt.want {
			t.Errorf("TrailingOnes(%b) = %v, want %v", tt.num, got, tt.want)
		}
	}
}

func TestAllOnes(t *testing.T) {
	for _, n := range []uint64{1, 3, 7, 15, 31} {
		if !AllOnes(n) {
			t.Errorf("AllOnes(%b) = false, want true", n)
		}
	}
	for _, n := range []uint64{2, 4, 5, 6, 14} {
		if AllOnes(n) {
			t.Errorf("AllOnes(%b) = true, want false", n)
		}
	}
}
