package companion

// Welcome opens every new conversation.
const Welcome = "Hi there! 👋 I'm your wellness companion. I'm here to listen, support, and guide you. How are you feeling today?"

// QuickPrompts are suggested openers.
var QuickPrompts = []string{
	"I'm feeling anxious",
	"Can't sleep tonight",
	"Feeling stressed at work",
	"Need motivation",
	"Feeling lonely",
}

var responses = map[Intent]string{
	IntentAnxiety:    "I hear you. Anxiety can be overwhelming. Try the 5-4-3-2-1 grounding technique: Name 5 things you see, 4 you can touch, 3 you hear, 2 you smell, and 1 you taste. Would you like to try our SOS Quick Relief exercises?",
	IntentSleep:      "Sleep troubles are challenging. Consider creating a bedtime routine: dim lights 30 minutes before bed, try our Sleep Sounds, avoid screens, and practice gentle breathing. Have you tried our guided sleep meditation?",
	IntentOverwhelm:  "It sounds like a lot is landing on you at once. Let's make it smaller: write down everything on your mind, then pick just one thing to do next. A slow breath in for 4 and out for 6 can help before you start. Want to try a short breathing exercise together?",
	IntentStress:     "Work stress is common. Remember to take breaks every hour, practice deep breathing, and set boundaries. Our meditation timer can help you recharge. Would you like a 5-minute stress relief session?",
	IntentLowMood:    "I'm sorry you're feeling low. Your feelings are valid, and you don't have to carry them alone. Logging your mood can help you notice patterns, and a short walk or some daylight can lift things a little. Would you like to talk about what's been weighing on you?",
	IntentLoneliness: "Feeling lonely is valid. Connection matters. Consider journaling your thoughts, joining our community challenges, or reaching out to someone. I'm here to listen. What's on your mind?",
	IntentMotivation: "You're doing great by being here! Small steps matter. Set one tiny goal for today. Check out your Rewards page to see your progress - you've come so far! 🌟",
	IntentGratitude:  "That's wonderful to hear! Noticing the good moments builds resilience. Why not add this to your gratitude journal so you can come back to it later?",
	IntentGreeting:   "Hello! It's good to see you. How are you feeling right now?",
	IntentThanks:     "You're very welcome. I'm always here when you need someone to listen. 💙",
	IntentFeatures:   "I can listen, suggest breathing and grounding exercises, recommend meditations and sleep sounds, and point you to SOS Quick Relief when things feel heavy. What would help most right now?",
	IntentDefault:    "I'm here to support you. Could you tell me more about how you're feeling? I can suggest mindfulness exercises, breathing techniques, or simply listen.",
}

// Response returns the canned reply for intent, falling back to the
// default reply.
func Response(intent Intent) string {
	if r, ok := responses[intent]; ok {
		return r
	}
	return responses[IntentDefault]
}
