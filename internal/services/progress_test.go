package services

import "testing"

func TestRoundAccuracy(t *testing.T) {
	cases := []struct {
		correct, attempted int
		want               float64
	}{
		{0, 0, 0},
		{0, 5, 0},
		{5, 5, 100},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{1, 8, 12.5},
	}
	for _, tc := range cases {
		if got := roundAccuracy(tc.correct, tc.attempted); got != tc.want {
			t.Fatalf("roundAccuracy(%d, %d) = %v, want %v", tc.correct, tc.attempted, got, tc.want)
		}
	}
}
