package main

import "testing"

func countKey(t ReactionTally) float64 { return float64(t.Count) }

func TestRankTop_ExactLength(t *testing.T) {
	tests := []struct {
		name       string
		candidates []ReactionTally
		n          int
		wantFilled int
	}{
		{name: "no candidates", candidates: nil, n: 5, wantFilled: 0},
		{
			name: "fewer than n",
			candidates: []ReactionTally{
				{Name: "wave", Count: 2},
				{Name: "fire", Count: 9},
			},
			n: 5, wantFilled: 2,
		},
		{
			name: "exactly n",
			candidates: []ReactionTally{
				{Name: "a", Count: 1}, {Name: "b", Count: 2}, {Name: "c", Count: 3},
			},
			n: 3, wantFilled: 3,
		},
		{
			name: "more than n",
			candidates: []ReactionTally{
				{Name: "a", Count: 1}, {Name: "b", Count: 2}, {Name: "c", Count: 3},
				{Name: "d", Count: 4}, {Name: "e", Count: 5}, {Name: "f", Count: 6},
			},
			n: 5, wantFilled: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := RankTop(tt.candidates, tt.n, countKey)
			if len(slots) != tt.n {
				t.Fatalf("RankTop() returned %d slots, want exactly %d", len(slots), tt.n)
			}
			if got := filledCount(slots); got != tt.wantFilled {
				t.Errorf("filled slots = %d, want %d", got, tt.wantFilled)
			}
			// Empty slots must trail the filled ones.
			for i := tt.wantFilled; i < tt.n; i++ {
				if slots[i].Filled {
					t.Errorf("slot %d is filled, want empty", i)
				}
			}
		})
	}
}

func TestRankTop_DescendingOrder(t *testing.T) {
	candidates := []ReactionTally{
		{Name: "a", Count: 3},
		{Name: "b", Count: 9},
		{Name: "c", Count: 1},
		{Name: "d", Count: 7},
	}

	slots := RankTop(candidates, 4, countKey)
	for i := 1; i < len(slots); i++ {
		if slots[i].Entry.Count > slots[i-1].Entry.Count {
			t.Errorf("slot %d count %d exceeds slot %d count %d",
				i, slots[i].Entry.Count, i-1, slots[i-1].Entry.Count)
		}
	}
	if slots[0].Entry.Name != "b" {
		t.Errorf("top slot = %q, want b", slots[0].Entry.Name)
	}
}

func TestRankTop_PadsShortResult(t *testing.T) {
	candidates := []ReactionTally{
		{Name: "wave", Count: 2},
		{Name: "fire", Count: 9},
	}

	slots := RankTop(candidates, 5, countKey)
	if len(slots) != 5 {
		t.Fatalf("RankTop() returned %d slots, want 5", len(slots))
	}
	if !slots[0].Filled || slots[0].Entry.Name != "fire" {
		t.Errorf("slot 0 = %+v, want filled fire", slots[0])
	}
	if !slots[1].Filled || slots[1].Entry.Name != "wave" {
		t.Errorf("slot 1 = %+v, want filled wave", slots[1])
	}
	for i := 2; i < 5; i++ {
		if slots[i].Filled {
			t.Errorf("slot %d is filled, want empty padding", i)
		}
	}
}

func TestRankTop_StableOnTies(t *testing.T) {
	candidates := []ReactionTally{
		{Name: "first", Count: 4},
		{Name: "second", Count: 4},
		{Name: "third", Count: 4},
	}

	slots := RankTop(candidates, 3, countKey)
	for i, want := range []string{"first", "second", "third"} {
		if slots[i].Entry.Name != want {
			t.Errorf("slot %d = %q, want %q (input order preserved on ties)", i, slots[i].Entry.Name, want)
		}
	}
}

func TestRankTop_NonPositiveN(t *testing.T) {
	if slots := RankTop([]ReactionTally{{Name: "a", Count: 1}}, 0, countKey); len(slots) != 0 {
		t.Errorf("RankTop(n=0) returned %d slots, want 0", len(slots))
	}
}
