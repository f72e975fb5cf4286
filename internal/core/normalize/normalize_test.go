package normalize

import (
	"testing"
)

// Test table covers each stage and combined pipelines.
func TestNormalize_Table(t *testing.T) {
	n := New()

	tests := []struct {
		name string
		in   string
		out  string
	}{
		{
			name: "identity ascii",
			in:   "career high 30 points",
			out:  "career high 30 points",
		},
		{
			name: "utf8 repair drops invalid bytes",
			in:   string([]byte{0xff, 'f', 'o', 'o', 0x80, ' ', 'b', 'a', 'r'}),
			out:  "foo bar",
		},
		{
			name: "case fold",
			in:   "Triple-Double",
			out:  "triple-double",
		},
		{
			name: "remove zero-widths",
			in:   "ro​ok‍ie", // ZERO WIDTH SPACE + ZERO WIDTH JOINER
			out:  "rookie",
		},
		{
			name: "remove combining marks",
			in:   "café", // "café" using combining acute accent
			out:  "cafe",
		},
		{
			name: "width fold fullwidth",
			in:   "ＷＮＢＡ record", // fullwidth letters
			out:  "wnba record",
		},
		{
			name: "punctuation stripped",
			in:   "Wow! \"Rookie\" record: 30",
			out:  "wow rookie record 30",
		},
		{
			name: "stat abbreviations expanded",
			in:   "35 PTS and 8 AST tonight",
			out:  "35 points and 8 assists tonight",
		},
		{
			name: "per game abbreviations",
			in:   "averaging 21.8 ppg this season",
			out:  "averaging 21.8 points per game this season",
		},
		{
			name: "collapse whitespace",
			in:   "a\t\tb\nc   d",
			out:  "a b c d",
		},
		{
			name: "combined normalization",
			in:   "  ３５​ PTS\uFEFF career-high!!  \t\n",
			out:  "35 points career-high",
		},
		{
			name: "idempotent",
			in:   n.Normalize("Ｄｏｕｂｌｅ‍-Double  w/ 12 REB "),
			out:  "double-double w 12 rebounds",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := n.Normalize(tc.in)
			if got != tc.out {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.out)
			}
			// Idempotence check: normalize again should be identical
			got2 := n.Normalize(got)
			if got2 != got {
				t.Fatalf("Normalize not idempotent: %q -> %q", got, got2)
			}
		})
	}
}

// Spot-check internal helpers in isolation.
func TestExpandStats(t *testing.T) {
	in := "30 pts 10 reb 5 stl"
	want := "30 points 10 rebounds 5 steals"
	got := expandStats(in)
	if got != want {
		t.Fatalf("expandStats(%q) = %q, want %q", in, got, want)
	}
}

func TestCollapseSpaces(t *testing.T) {
	in := " \t a \n b   c \r\n "
	want := "a b c"
	got := collapseSpaces(in)
	if got != want {
		t.Fatalf("collapseSpaces(%q) = %q, want %q", in, got, want)
	}
}
