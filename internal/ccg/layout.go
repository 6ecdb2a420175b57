package ccg

// Operand layouts shared by every backend.
//
// Packed rows store component k of a row in bit k%32 of word k/32; a set bit
// encodes -1 and a clear bit +1. Planes are ordered real, imaginary.
//
// Tiled operands ("transposed" form) are laid out as
//
//	[rows/tileRows][cols/tileK][2][tileRows][tileK/32] uint32
//
// so that each engine tile reads one contiguous block per complex plane.

// PackedWords returns the number of words for one packed row of n components.
func PackedWords(n int) int {
	return (n + WordBits - 1) / WordBits
}

// TiledIndex returns the word offset of (plane, row, word) inside a tiled
// operand with the given padded column count.
func TiledIndex(plane, row, word, cols, tileRows, tileK int) int {
	wordsPerTileRow := tileK / WordBits
	tilesK := cols / tileK
	rowTile := row / tileRows
	r := row % tileRows
	kTile := word / wordsPerTileRow
	w := word % wordsPerTileRow
	block := (rowTile*tilesK + kTile) * 2 * tileRows * wordsPerTileRow
	return block + (plane*tileRows+r)*wordsPerTileRow + w
}
