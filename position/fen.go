package position

import (
	"fmt"
	"strings"
)

// Mirror returns the color-reversed position: ranks flipped, piece colors swapped and
// castling letters exchanged. The side to move is kept, so an evaluation of the mirror
// is the negation of the original's. The en passant square is dropped.
func Mirror(fen string) (string, error) {
	fields := strings.Fields(strings.TrimSpace(fen))
	if len(fields) < 4 {
		return "", fmt.Errorf("%w: expected at least 4 fields, got %d", ErrInvalidFEN, len(fields))
	}
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return "", fmt.Errorf("%w: expected 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	placement := swapCase(strings.Join(ranks, "/"))

	castling := "-"
	if fields[2] != "-" {
		cr, err := parseCastling(fields[2])
		if err != nil {
			return "", err
		}
		var mirrored CastlingRights
		if cr&CastlingWhiteK != 0 {
			mirrored |= CastlingBlackK
		}
		if cr&CastlingWhiteQ != 0 {
			mirrored |= CastlingBlackQ
		}
		if cr&CastlingBlackK != 0 {
			mirrored |= CastlingWhiteK
		}
		if cr&CastlingBlackQ != 0 {
			mirrored |= CastlingWhiteQ
		}
		castling = mirrored.String()
	}

	out := []string{placement, fields[1], castling, "-"}
	if len(fields) >= 6 {
		out = append(out, fields[4], fields[5])
	} else {
		out = append(out, "0", "1")
	}
	return strings.Join(out, " "), nil
}

func swapCase(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z':
			return r - 'A' + 'a'
		}
		return r
	}, s)
}
