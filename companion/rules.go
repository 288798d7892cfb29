package companion

// DefaultRules is the shipped rule table. Specific intents come before the
// broader ones that would also match: overwhelm before stress, loneliness
// before low mood, and the emotional intents before greetings and thanks.
func DefaultRules() []Rule {
	return []Rule{
		{Keywords{"anxious", "anxiety", "panic", "nervous", "worried", "scared", "afraid"}, IntentAnxiety},
		{Keywords{"sleep", "insomnia", "tired", "exhausted", "nightmare"}, IntentSleep},
		{Keywords{"overwhelm", "too much", "can't cope", "cannot cope", "drowning", "swamped"}, IntentOverwhelm},
		{Keywords{"stress", "pressure", "work", "deadline", "burnout", "burned out", "burnt out"}, IntentStress},
		{Keywords{"lonely", "alone", "isolated", "no friends", "nobody"}, IntentLoneliness},
		{Pattern(`\b(sad|depressed|down|unhappy|hopeless|miserable|crying|empty)\b`), IntentLowMood},
		{Keywords{"motivat", "lazy", "energy", "procrastinat", "stuck"}, IntentMotivation},
		{Pattern(`\b(grateful|gratitude|thankful|blessed|appreciate)\b`), IntentGratitude},
		{Pattern(`\b(thanks|thank you|thx|ty)\b`), IntentThanks},
		{Pattern(`\b(hi|hello|hey|hiya|howdy|good (morning|afternoon|evening))\b`), IntentGreeting},
		{Pattern(`\b(what can you do|help|features?|how does this work)\b`), IntentFeatures},
		{CatchAll{}, IntentDefault},
	}
}
