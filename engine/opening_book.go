package engine

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"chess-bot/position"
)

//go:embed opening_book.csv
var defaultBookCSV []byte

// Book maps position hashes to a reply in UCI notation.
type Book struct {
	moves map[uint64]string
}

// LoadBook reads rows of "moves,reply": a space separated UCI move sequence played from
// the initial position and the reply to choose there. Lines starting with # are ignored.
func LoadBook(r io.Reader) (*Book, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = 2

	book := &Book{moves: make(map[uint64]string)}
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("opening book: %w", err)
		}
		if line == 1 && record[0] == "moves" {
			continue
		}

		b := position.StartPosition()
		if err := b.ApplyUCIMoves(strings.Fields(record[0])); err != nil {
			return nil, fmt.Errorf("opening book line %d: %w", line, err)
		}
		reply, err := position.ParseUCIMove(b, strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("opening book line %d: %w", line, err)
		}
		book.moves[b.Hash()] = reply.String()
	}
	return book, nil
}

var (
	defaultBook     *Book
	defaultBookOnce sync.Once
)

// DefaultBook returns the embedded book.
func DefaultBook() *Book {
	defaultBookOnce.Do(func() {
		b, err := LoadBook(bytes.NewReader(defaultBookCSV))
		if err != nil {
			panic(err)
		}
		defaultBook = b
	})
	return defaultBook
}

// Lookup returns the book reply for the current position if it is legal there.
func (bk *Book) Lookup(b Position) (position.Move, bool) {
	if bk == nil {
		return position.NullMove, false
	}
	uci, ok := bk.moves[b.Hash()]
	if !ok {
		return position.NullMove, false
	}
	for _, m := range b.LegalMoves() {
		if m.String() == uci {
			return m, true
		}
	}
	return position.NullMove, false
}

func (bk *Book) Len() int { return len(bk.moves) }

// Hashes lists the book's keys in ascending order.
func (bk *Book) Hashes() []uint64 {
	keys := maps.Keys(bk.moves)
	slices.Sort(keys)
	return keys
}
