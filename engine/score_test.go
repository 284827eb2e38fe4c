package engine_test

import (
	"testing"

	"chess-bot/engine"
)

func TestFormatScore(t *testing.T) {
	tests := []struct {
		score engine.Score
		want  string
	}{
		{35, "cp 35"},
		{-120, "cp -120"},
		{engine.MateValue - 1, "mate 1"},
		{engine.MateValue - 3, "mate 2"},
		{engine.MateValue - 4, "mate 2"},
		{-(engine.MateValue - 2), "mate -1"},
		{engine.MateValue - engine.MaxPly, "cp 99904"},
	}
	for _, tc := range tests {
		if got := engine.FormatScore(tc.score); got != tc.want {
			t.Fatalf("FormatScore(%d): got %q want %q", tc.score, got, tc.want)
		}
	}
}

func TestMateDistance(t *testing.T) {
	if got := engine.MateDistance(-(engine.MateValue - 7)); got != 7 {
		t.Fatalf("got %d want 7", got)
	}
	if engine.IsMateScore(engine.DrawScore) || !engine.IsMateScore(engine.MateValue) {
		t.Fatal("IsMateScore misclassified")
	}
}
