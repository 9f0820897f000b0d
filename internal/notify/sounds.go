package notify

// Sound effect names carried on notifications. The client resolves them to
// bundled assets; an unknown name is a silent no-op there, so resolution
// failures must never fail a dispatch.
const (
	SoundReminder    = "gentle-chime"
	SoundAchievement = "achievement-fanfare"
	SoundStreak      = "streak-spark"
	SoundLevelUp     = "level-up"
)

var soundAssets = map[string]string{
	SoundReminder:    "/sounds/gentle-chime.mp3",
	SoundAchievement: "/sounds/achievement-fanfare.mp3",
	SoundStreak:      "/sounds/streak-spark.mp3",
	SoundLevelUp:     "/sounds/level-up.mp3",
}

// ResolveSound maps a sound name to its asset path. The boolean is false for
// unknown names; callers log and move on.
func ResolveSound(name string) (string, bool) {
	path, ok := soundAssets[name]
	return path, ok
}
