package engine

import "time"

// dayBounds returns [start of t's calendar day, start of the next day) in
// loc. This is the single day-boundary definition shared by the streak
// tracker and the maintain_streak daily quest, so the two can never disagree
// on what "today" means.
func dayBounds(t time.Time, loc *time.Location) (start, end time.Time) {
	t = t.In(loc)
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// nextMidnight returns the upcoming day boundary after t; daily quests
// expire there.
func nextMidnight(t time.Time, loc *time.Location) time.Time {
	_, end := dayBounds(t, loc)
	return end
}

// nextStreak computes the streak value to apply for a completion happening
// now. Only the first completion of a day can move the streak: further
// completions leave it untouched. A completion on a day following an active
// day extends the streak; otherwise it restarts at 1.
func nextStreak(stored, completedToday, completedYesterday int) int {
	if completedToday > 0 {
		return stored
	}
	if completedYesterday > 0 {
		return stored + 1
	}
	return 1
}
