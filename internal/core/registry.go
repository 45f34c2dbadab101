package core

import (
	"fmt"
	"sync"
)

var (
	rules   []Rule
	rulesMu sync.RWMutex
)

// RegisterRule adds a cross-field rule. Rules run in registration order.
// Panics if a rule with the same key is already registered.
func RegisterRule(r Rule) {
	rulesMu.Lock()
	defer rulesMu.Unlock()

	if r.Check == nil {
		panic(fmt.Sprintf("rule has no check: %s", r.Key))
	}
	for _, existing := range rules {
		if existing.Key == r.Key {
			panic(fmt.Sprintf("rule already registered: %s", r.Key))
		}
	}
	rules = append(rules, r)
}

// Rules returns a copy of the registered rules in registration order.
func Rules() []Rule {
	rulesMu.RLock()
	defer rulesMu.RUnlock()

	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// RuleByKey returns a registered rule.
// Returns false if not found.
func RuleByKey(key string) (Rule, bool) {
	rulesMu.RLock()
	defer rulesMu.RUnlock()

	for _, r := range rules {
		if r.Key == key {
			return r, true
		}
	}
	return Rule{}, false
}

// RuleCount returns the number of registered rules.
func RuleCount() int {
	rulesMu.RLock()
	defer rulesMu.RUnlock()
	return len(rules)
}

// ClearRules removes all registered rules.
// Primarily useful for testing.
func ClearRules() {
	rulesMu.Lock()
	defer rulesMu.Unlock()
	rules = nil
}
