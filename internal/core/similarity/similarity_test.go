package similarity

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "equal", a: "career high", b: "career high", want: 1},
		{name: "both empty", a: "", b: "", want: 1},
		{name: "one empty", a: "points", b: "", want: 0},
		{name: "single deletion", a: "points", b: "pints", want: 1 - 1.0/6},
		{name: "disjoint", a: "abc", b: "xyz", want: 0},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Ratio(tc.a, tc.b)
			if !almostEqual(got, tc.want) {
				t.Fatalf("Ratio(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestTokenSortRatio_OrderInsensitive(t *testing.T) {
	a := "career high 30 points"
	b := "30 points career high"
	if got := TokenSortRatio(a, b); !almostEqual(got, 1) {
		t.Fatalf("TokenSortRatio(%q, %q) = %v, want 1", a, b, got)
	}
}

func TestTokenSetRatio_SubsetScoresHigh(t *testing.T) {
	a := "career high 30 points"
	b := "career high 30 points against the sky tonight"
	if got := TokenSetRatio(a, b); !almostEqual(got, 1) {
		t.Fatalf("TokenSetRatio(%q, %q) = %v, want 1", a, b, got)
	}
	// token sort alone would be dragged down by the extra words
	if sort := TokenSortRatio(a, b); sort >= 1 {
		t.Fatalf("TokenSortRatio(%q, %q) = %v, expected < 1", a, b, sort)
	}
}

func TestBest_TakesMax(t *testing.T) {
	a := "rookie record triple double"
	b := "triple double rookie record in a loss"
	sort := TokenSortRatio(a, b)
	set := TokenSetRatio(a, b)
	want := sort
	if set > want {
		want = set
	}
	if got := Best(a, b); !almostEqual(got, want) {
		t.Fatalf("Best = %v, want max(%v, %v)", got, sort, set)
	}
}

func TestBest_DistinctTitlesStayBelowThreshold(t *testing.T) {
	a := "most three pointers in a game"
	b := "signature shoe release date announced"
	if got := Best(a, b); got > 0.85 {
		t.Fatalf("Best(%q, %q) = %v, expected <= 0.85", a, b, got)
	}
}

func TestBest_Symmetric(t *testing.T) {
	a := "double-double with 12 rebounds"
	b := "12 rebounds and 13 points double-double"
	if x, y := Best(a, b), Best(b, a); !almostEqual(x, y) {
		t.Fatalf("Best not symmetric: %v vs %v", x, y)
	}
}
