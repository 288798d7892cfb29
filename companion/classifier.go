package companion

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Matcher tests lower-cased text.
type Matcher interface {
	Match(text string) bool
}

// Keywords matches when any keyword is a substring of the text. Keywords
// must be lower case.
type Keywords []string

func (k Keywords) Match(text string) bool {
	for _, kw := range k {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

type pattern struct{ re *regexp.Regexp }

func (p pattern) Match(text string) bool { return p.re.MatchString(text) }

func (p pattern) String() string { return p.re.String() }

// Pattern matches a regular expression. It panics on an invalid
// expression, like regexp.MustCompile.
func Pattern(expr string) Matcher {
	return pattern{re: regexp.MustCompile(expr)}
}

// CatchAll matches everything. A rule table must end with it.
type CatchAll struct{}

func (CatchAll) Match(string) bool { return true }

// Rule maps a matcher to an intent.
type Rule struct {
	Matcher Matcher
	Intent  Intent
}

// Classifier evaluates rules in order; the first match wins.
type Classifier struct {
	rules []Rule
}

// NewClassifier validates rules and builds a Classifier. The table must be
// non-empty, use known intents, and end with a CatchAll rule so that
// Classify is total.
func NewClassifier(rules []Rule) (*Classifier, error) {
	if len(rules) == 0 {
		return nil, errors.New("companion: empty rule table")
	}
	for i, r := range rules {
		if r.Matcher == nil {
			return nil, fmt.Errorf("companion: rule %d has no matcher", i)
		}
		if !r.Intent.Valid() {
			return nil, fmt.Errorf("companion: rule %d has unknown intent %q", i, r.Intent)
		}
	}
	if _, ok := rules[len(rules)-1].Matcher.(CatchAll); !ok {
		return nil, errors.New("companion: rule table must end with a catch-all rule")
	}
	return &Classifier{rules: append([]Rule(nil), rules...)}, nil
}

// DefaultClassifier uses DefaultRules.
func DefaultClassifier() *Classifier {
	c, err := NewClassifier(DefaultRules())
	if err != nil {
		panic(err)
	}
	return c
}

// Classify lower-cases text and returns the intent of the first matching
// rule.
func (c *Classifier) Classify(text string) Intent {
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		if r.Matcher.Match(lower) {
			return r.Intent
		}
	}
	// Unreachable: NewClassifier guarantees a trailing catch-all.
	return IntentDefault
}

// Rules returns a copy of the rule table.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}
