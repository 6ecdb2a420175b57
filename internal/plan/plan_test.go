package plan

import (
	"errors"
	"testing"

	"github.com/samcharles93/tcbf/internal/ccg"
)

var testTile = ccg.Tile{M: 16, N: 8, K: 256}

func TestPaddedDimensionsAreSmallestTileMultiples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want Shape
	}{
		{Shape{1, 1, 1}, Shape{16, 8, 256}},
		{Shape{16, 8, 256}, Shape{16, 8, 256}},
		{Shape{17, 9, 257}, Shape{32, 16, 512}},
		{Shape{100, 3, 1000}, Shape{112, 8, 1024}},
	}
	for _, tc := range tests {
		p, err := New(tc.in, testTile)
		if err != nil {
			t.Fatalf("New(%s): %v", tc.in, err)
		}
		if p.Padded != tc.want {
			t.Fatalf("New(%s): padded got %s want %s", tc.in, p.Padded, tc.want)
		}
	}
}

func TestPaddedDimensionsExhaustive(t *testing.T) {
	t.Parallel()

	tile := ccg.Tile{M: 4, N: 3, K: 32}
	for v := 1; v <= 100; v++ {
		p, err := New(Shape{v, v, v}, tile)
		if err != nil {
			t.Fatalf("New(%d): %v", v, err)
		}
		check := func(name string, logical, padded, m int) {
			if padded < logical || padded%m != 0 || padded-logical >= m {
				t.Fatalf("%s=%d: padded %d is not the smallest multiple of %d", name, logical, padded, m)
			}
		}
		check("pixels", v, p.Padded.Pixels, tile.M)
		check("frames", v, p.Padded.Frames, tile.N)
		check("samples", v, p.Padded.Samples, tile.K)

		again, err := New(p.Padded, tile)
		if err != nil {
			t.Fatalf("New(padded %s): %v", p.Padded, err)
		}
		if again.Padded != p.Padded {
			t.Fatalf("padding not idempotent: %s -> %s", p.Padded, again.Padded)
		}
	}
}

func TestByteSizes(t *testing.T) {
	t.Parallel()

	p, err := New(Shape{Pixels: 3, Frames: 5, Samples: 7}, testTile)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Padded: 16 x 8 x 256.
	tests := []struct {
		name string
		got  int64
		want int64
	}{
		{"rf", p.BytesRF, 5 * 7 * 2 * 2},
		{"bf", p.BytesBF, 2 * 3 * 5 * 4},
		{"rf device", p.BytesRFDevice, 8 * 256 * 2 * 2},
		{"rf complex first", p.BytesRFComplexFirst, 2 * 8 * 256 * 2},
		{"rf packed", p.BytesRFPacked, 2 * 8 * 256 / 8},
		{"rf transposed", p.BytesRFTransposed, 2 * 8 * 256 / 8},
		{"a packed", p.BytesAPacked, 2 * 16 * 256 / 8},
		{"bf device", p.BytesBFDevice, 2 * 16 * 8 * 4},
	}
	for _, tc := range tests {
		if tc.got != tc.want {
			t.Errorf("%s: got %d want %d", tc.name, tc.got, tc.want)
		}
	}
	if p.RFElements()*2 != int(p.BytesRF) {
		t.Errorf("RFElements inconsistent with BytesRF")
	}
	if p.BFElements()*4 != int(p.BytesBF) {
		t.Errorf("BFElements inconsistent with BytesBF")
	}
}

func TestInvalidShapes(t *testing.T) {
	t.Parallel()

	for _, s := range []Shape{
		{0, 1, 1},
		{1, 0, 1},
		{1, 1, 0},
		{-4, 1, 1},
		{1, MaxDim + 1, 1},
	} {
		if _, err := New(s, testTile); !errors.Is(err, ErrInvalidShape) {
			t.Errorf("New(%s): expected ErrInvalidShape, got %v", s, err)
		}
	}
}

func TestInvalidTile(t *testing.T) {
	t.Parallel()

	if _, err := New(Shape{1, 1, 1}, ccg.Tile{M: 16, N: 8, K: 100}); err == nil {
		t.Fatalf("expected error for K not a multiple of 32")
	}
}

func TestRoundUp(t *testing.T) {
	t.Parallel()

	tests := []struct{ v, m, want int }{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 8, 16},
		{5, 0, 5},
	}
	for _, tc := range tests {
		if got := RoundUp(tc.v, tc.m); got != tc.want {
			t.Errorf("RoundUp(%d, %d): got %d want %d", tc.v, tc.m, got, tc.want)
		}
	}
}
