package position

// Perft counts the leaf nodes of the legal move tree to the given depth.
func Perft(b *Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := b.LegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		undo := b.Apply(m)
		nodes += Perft(b, depth-1)
		undo()
	}
	return nodes
}

// PerftDivide reports the perft count below each root move.
func PerftDivide(b *Board, depth int) map[Move]uint64 {
	result := make(map[Move]uint64)
	if depth <= 0 {
		return result
	}
	for _, m := range b.LegalMoves() {
		undo := b.Apply(m)
		result[m] = Perft(b, depth-1)
		undo()
	}
	return result
}
