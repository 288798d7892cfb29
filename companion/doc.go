// Package companion is the rule-based wellness companion.
//
// A Classifier maps free text to one Intent from a closed set by walking an
// ordered rule table; the first matching rule wins and the table always
// ends with a CatchAll, so Classify never fails. Response maps each intent
// to a canned reply. Companion adds per-user conversation history on top,
// stored under "ai_chat:<user>" in a provider.ContextStore.
package companion
