package ccg

import (
	"errors"
	"testing"
)

func TestDimensionsKnownVariants(t *testing.T) {
	t.Parallel()

	for _, v := range []Variant{Basic, Opt} {
		tile, err := Dimensions(Int1, v)
		if err != nil {
			t.Fatalf("Dimensions(int1, %s): %v", v, err)
		}
		if err := tile.Validate(); err != nil {
			t.Fatalf("tile %s for %s is invalid: %v", tile, v, err)
		}
	}
}

func TestDimensionsUnsupported(t *testing.T) {
	t.Parallel()

	if _, err := Dimensions(Precision(42), Opt); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if _, err := Dimensions(Int1, Variant(9)); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestTileValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tile Tile
		ok   bool
	}{
		{Tile{M: 8, N: 8, K: 32}, true},
		{Tile{M: 0, N: 8, K: 32}, false},
		{Tile{M: 8, N: 8, K: 48}, false},
		{Tile{M: 8, N: -1, K: 64}, false},
	}
	for _, tc := range tests {
		err := tc.tile.Validate()
		if (err == nil) != tc.ok {
			t.Errorf("Validate(%s): got err=%v want ok=%v", tc.tile, err, tc.ok)
		}
	}
}

func TestParseVariant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Variant
		ok   bool
	}{
		{"", Opt, true},
		{"opt", Opt, true},
		{" Basic ", Basic, true},
		{"fast", 0, false},
	}
	for _, tc := range tests {
		got, err := ParseVariant(tc.in)
		if (err == nil) != tc.ok {
			t.Fatalf("ParseVariant(%q): unexpected err %v", tc.in, err)
		}
		if tc.ok && got != tc.want {
			t.Errorf("ParseVariant(%q): got %s want %s", tc.in, got, tc.want)
		}
	}
}

func TestTiledIndexIsPermutation(t *testing.T) {
	t.Parallel()

	const (
		rows     = 32
		cols     = 512
		tileRows = 16
		tileK    = 256
	)
	words := cols / WordBits
	seen := make([]bool, 2*rows*words)
	for plane := 0; plane < 2; plane++ {
		for r := 0; r < rows; r++ {
			for w := 0; w < words; w++ {
				idx := TiledIndex(plane, r, w, cols, tileRows, tileK)
				if idx < 0 || idx >= len(seen) {
					t.Fatalf("index out of range: plane=%d row=%d word=%d idx=%d", plane, r, w, idx)
				}
				if seen[idx] {
					t.Fatalf("index %d produced twice", idx)
				}
				seen[idx] = true
			}
		}
	}
}

func TestPackedWords(t *testing.T) {
	t.Parallel()

	for n, want := range map[int]int{1: 1, 32: 1, 33: 2, 256: 8} {
		if got := PackedWords(n); got != want {
			t.Errorf("PackedWords(%d): got %d want %d", n, got, want)
		}
	}
}
