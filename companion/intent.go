package companion

// Intent is a response category.
type Intent string

const (
	IntentAnxiety    Intent = "anxiety"
	IntentSleep      Intent = "sleep"
	IntentOverwhelm  Intent = "overwhelm"
	IntentStress     Intent = "stress"
	IntentLowMood    Intent = "low_mood"
	IntentLoneliness Intent = "loneliness"
	IntentMotivation Intent = "motivation"
	IntentGratitude  Intent = "gratitude"
	IntentGreeting   Intent = "greeting"
	IntentThanks     Intent = "thanks"
	IntentFeatures   Intent = "features"
	IntentDefault    Intent = "default"
)

var intents = []Intent{
	IntentAnxiety,
	IntentSleep,
	IntentOverwhelm,
	IntentStress,
	IntentLowMood,
	IntentLoneliness,
	IntentMotivation,
	IntentGratitude,
	IntentGreeting,
	IntentThanks,
	IntentFeatures,
	IntentDefault,
}

// Intents returns the closed category set.
func Intents() []Intent {
	return append([]Intent(nil), intents...)
}

// Valid reports whether i belongs to the category set.
func (i Intent) Valid() bool {
	for _, known := range intents {
		if i == known {
			return true
		}
	}
	return false
}
