package gamification

// levelThresholds holds the lifetime credits needed to reach each level;
// index 0 is level 1. The curve widens so later levels take real effort.
var levelThresholds = []int64{0, 50, 150, 300, 500, 750, 1100, 1500, 2000, 2600}

// LevelForCredits maps lifetime credits to a level. Negative balances stay
// at level 1.
func LevelForCredits(credits int64) int {
	if credits < 0 {
		credits = 0
	}
	level := 1
	for i, threshold := range levelThresholds {
		if credits >= threshold {
			level = i + 1
		}
	}
	return level
}

// MaxLevel is the top of the threshold table.
func MaxLevel() int {
	return len(levelThresholds)
}

// Achievement is one closed catalog record. Conditions are evaluated after
// every entry; an unlock is recorded at most once per device.
type Achievement struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Condition inputs gathered once per evaluation.
type progress struct {
	FirstEntry         bool
	LifetimeCredits    int64
	CurrentStreak      int
	DistinctCategories int64
}

var achievementCatalog = []struct {
	Achievement
	unlocked func(p progress) bool
}{
	{
		Achievement{ID: "first_entry", Title: "First step 🌱", Message: "You logged your first waste entry. Welcome aboard!"},
		func(p progress) bool { return p.FirstEntry },
	},
	{
		Achievement{ID: "streak_7", Title: "One week strong 🔥", Message: "Seven days of tracking in a row."},
		func(p progress) bool { return p.CurrentStreak >= 7 },
	},
	{
		Achievement{ID: "streak_30", Title: "Habit formed 🏅", Message: "Thirty consecutive days. This is who you are now."},
		func(p progress) bool { return p.CurrentStreak >= 30 },
	},
	{
		Achievement{ID: "credits_100", Title: "Century club", Message: "100 lifetime carbon credits earned."},
		func(p progress) bool { return p.LifetimeCredits >= 100 },
	},
	{
		Achievement{ID: "credits_500", Title: "Serious saver", Message: "500 lifetime carbon credits earned."},
		func(p progress) bool { return p.LifetimeCredits >= 500 },
	},
	{
		Achievement{ID: "credits_1000", Title: "Carbon champion 🏆", Message: "1,000 lifetime carbon credits earned."},
		func(p progress) bool { return p.LifetimeCredits >= 1000 },
	},
	{
		Achievement{ID: "variety_5", Title: "Sorting specialist", Message: "Five different waste categories logged."},
		func(p progress) bool { return p.DistinctCategories >= 5 },
	},
}

// CatalogAchievements returns the full closed catalog.
func CatalogAchievements() []Achievement {
	out := make([]Achievement, 0, len(achievementCatalog))
	for _, entry := range achievementCatalog {
		out = append(out, entry.Achievement)
	}
	return out
}
