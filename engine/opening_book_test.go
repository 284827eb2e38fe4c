package engine_test

import (
	"errors"
	"strings"
	"testing"

	"chess-bot/engine"
	"chess-bot/position"
)

func TestDefaultBookLoads(t *testing.T) {
	book := engine.DefaultBook()
	if book.Len() == 0 || len(book.Hashes()) != book.Len() {
		t.Fatalf("got %d entries", book.Len())
	}
}

func TestBookLookupFollowsTransposition(t *testing.T) {
	book, err := engine.LoadBook(strings.NewReader("moves,reply\ng1f3 g8f6 b1c3,d7d5\n"))
	if err != nil {
		t.Fatal(err)
	}
	b := position.StartPosition()
	if err := b.ApplyUCIMoves([]string{"b1c3", "g8f6", "g1f3"}); err != nil {
		t.Fatal(err)
	}
	m, ok := book.Lookup(b)
	if !ok || m.String() != "d7d5" {
		t.Fatalf("got %s, %v want d7d5", m, ok)
	}

	if _, ok := book.Lookup(position.StartPosition()); ok {
		t.Fatal("unexpected book hit for the initial position")
	}
}

func TestLoadBookRejectsIllegalLines(t *testing.T) {
	_, err := engine.LoadBook(strings.NewReader("e2e5,e7e5\n"))
	if !errors.Is(err, position.ErrIllegalMove) {
		t.Fatalf("got %v want %v", err, position.ErrIllegalMove)
	}
}
