package recs_test

import (
	"testing"

	"github.com/eventally/eventally/internal/domain/event"
	"github.com/eventally/eventally/internal/recs"
)

func candidate(id string, score int) recs.ScoredCandidate {
	return recs.ScoredCandidate{
		Event: event.Event{ID: id},
		Score: score,
	}
}

func TestRank_SortsDescendingAndKeepsTies(t *testing.T) {
	in := []recs.ScoredCandidate{
		candidate("a", 10),
		candidate("b", 40),
		candidate("c", 10),
		candidate("d", 25),
		candidate("e", 40),
	}

	got := recs.Rank(in, 10)

	wantOrder := []string{"b", "e", "d", "a", "c"}

	if len(got) != len(wantOrder) {
		t.Fatalf("got %d results, want %d", len(got), len(wantOrder))
	}

	for i, id := range wantOrder {
		if got[i].Event.ID != id {
			t.Fatalf("position %d: got %s, want %s", i, got[i].Event.ID, id)
		}
	}

	// input must not be reordered in place
	if in[0].Event.ID != "a" || in[4].Event.ID != "e" {
		t.Fatalf("input slice was mutated: %+v", in)
	}
}

func TestRank_RespectsLimit(t *testing.T) {
	tests := []struct {
		name  string
		in    int
		limit int
		want  int
	}{
		{name: "fewer_than_limit", in: 3, limit: 6, want: 3},
		{name: "exactly_limit", in: 6, limit: 6, want: 6},
		{name: "more_than_limit", in: 10, limit: 6, want: 6},
		{name: "zero_limit_uses_default", in: 10, limit: 0, want: recs.DefaultLimit},
		{name: "empty_input", in: 0, limit: 6, want: 0},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			in := make([]recs.ScoredCandidate, 0, tt.in)
			for i := 0; i < tt.in; i++ {
				in = append(in, candidate(string(rune('a'+i)), i))
			}

			got := recs.Rank(in, tt.limit)

			if len(got) != tt.want {
				t.Fatalf("got %d results, want %d", len(got), tt.want)
			}
		})
	}
}
