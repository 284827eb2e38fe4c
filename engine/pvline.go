package engine

import (
	"strings"

	"chess-bot/position"
)

// PVLine is a principal variation, root move first.
type PVLine []position.Move

// Update returns move followed by the child's line.
func (pv PVLine) Update(move position.Move, child PVLine) PVLine {
	line := make(PVLine, 0, len(child)+1)
	line = append(line, move)
	return append(line, child...)
}

// GetPVMove returns the first move of the line, or the null move when empty.
func (pv PVLine) GetPVMove() position.Move {
	if len(pv) == 0 {
		return position.NullMove
	}
	return pv[0]
}

// String joins the moves in UCI notation.
func (pv PVLine) String() string {
	parts := make([]string, len(pv))
	for i, m := range pv {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}
