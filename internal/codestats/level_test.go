package codestats

import "testing"

func TestLevel(t *testing.T) {
	cases := []struct {
		xp   int64
		want int
	}{
		{0, 0},
		{-5, 0},
		{1599, 0},
		{1600, 1},  // sqrt(1600)*0.025 = 1
		{6400, 2},  // sqrt(6400)*0.025 = 2
		{14400, 3}, // sqrt(14400)*0.025 = 3
	}
	for _, tc := range cases {
		if got := Level(tc.xp); got != tc.want {
			t.Errorf("Level(%d) = %d, want %d", tc.xp, got, tc.want)
		}
	}
}

func TestNextLevelXP(t *testing.T) {
	if got := NextLevelXP(0); got != 1600 {
		t.Errorf("NextLevelXP(0) = %d, want 1600", got)
	}
	if got := NextLevelXP(1); got != 6400 {
		t.Errorf("NextLevelXP(1) = %d, want 6400", got)
	}
	if got := NextLevelXP(-1); got != 0 {
		t.Errorf("NextLevelXP(-1) = %d, want 0", got)
	}
}

func TestLevelProgress(t *testing.T) {
	// Level 0 spans 0..1600, so 400 XP is a quarter of the way.
	if got := LevelProgress(400); got != 25 {
		t.Errorf("LevelProgress(400) = %d, want 25", got)
	}
	// 4000 XP is level 1 (span 1600..6400), 2400 into a 4800 span.
	if got := LevelProgress(4000); got != 50 {
		t.Errorf("LevelProgress(4000) = %d, want 50", got)
	}
	if got := LevelProgress(0); got != 0 {
		t.Errorf("LevelProgress(0) = %d, want 0", got)
	}
}
