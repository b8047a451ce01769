package engine

import "testing"

func TestLevelThresholds(t *testing.T) {
	cases := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{299, 2},
		{300, 3},
		{599, 3},
		{600, 4},
	}
	for _, c := range cases {
		if got := LevelForXP(c.xp); got != c.want {
			t.Errorf("LevelForXP(%d)=%d, want %d", c.xp, got, c.want)
		}
	}
}

func TestLevelMonotonic(t *testing.T) {
	prev := LevelForXP(0)
	if prev != 1 {
		t.Fatalf("LevelForXP(0)=%d, want 1", prev)
	}
	for xp := 1; xp <= 10_000; xp++ {
		l := LevelForXP(xp)
		if l < prev {
			t.Fatalf("level decreased at xp=%d: %d -> %d", xp, prev, l)
		}
		prev = l
	}
}

func TestXPRequiredMatchesLevelForXP(t *testing.T) {
	for level := 2; level <= 20; level++ {
		threshold := XPRequiredForLevel(level)
		if got := LevelForXP(threshold); got != level {
			t.Errorf("LevelForXP(%d)=%d, want %d", threshold, got, level)
		}
		if got := LevelForXP(threshold - 1); got != level-1 {
			t.Errorf("LevelForXP(%d)=%d, want %d", threshold-1, got, level-1)
		}
	}
}

func TestXPToNextLevel(t *testing.T) {
	if got := XPToNextLevel(95); got != 5 {
		t.Fatalf("XPToNextLevel(95)=%d, want 5", got)
	}
	if got := XPToNextLevel(100); got != 200 {
		t.Fatalf("XPToNextLevel(100)=%d, want 200", got)
	}
}

func TestDifficultyRewards(t *testing.T) {
	if got := XPRewardForDifficulty(DifficultyEasy); got != 10 {
		t.Fatalf("easy reward=%d, want 10", got)
	}
	if got := XPRewardForDifficulty(DifficultyMedium); got != 25 {
		t.Fatalf("medium reward=%d, want 25", got)
	}
	if got := XPRewardForDifficulty(DifficultyHard); got != 50 {
		t.Fatalf("hard reward=%d, want 50", got)
	}
}

func TestStreakMultiplier(t *testing.T) {
	cases := []struct {
		streak int
		want   float64
	}{
		{0, 1.0},
		{1, 1.0},
		{2, 1.0},
		{3, 1.5},
		{6, 1.5},
		{7, 2.0},
		{30, 2.0},
	}
	for _, c := range cases {
		if got := StreakMultiplier(c.streak); got != c.want {
			t.Errorf("StreakMultiplier(%d)=%v, want %v", c.streak, got, c.want)
		}
	}

	// Hard task at the multiplier boundaries.
	if got := FinalXP(50, 7); got != 100 {
		t.Errorf("FinalXP(50, streak 7)=%d, want 100", got)
	}
	if got := FinalXP(50, 3); got != 75 {
		t.Errorf("FinalXP(50, streak 3)=%d, want 75", got)
	}
}
