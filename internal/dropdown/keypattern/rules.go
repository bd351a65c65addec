// Package keypattern extracts the logical field name (and, for options, the
// option value) from historical content keys.
//
// Keys arrive in several incompatible shapes. Each shape is described by a Rule;
// rules are evaluated in a fixed order and the first rule whose pattern matches
// the key decides the outcome. There is no backtracking into later rules.
package keypattern

import (
	"regexp"
	"slices"
	"strings"

	"github.com/heartmarshall/calc-content-backend/internal/domain"
)

// RuleKind names a key shape.
type RuleKind string

const (
	// KindDottedField matches "{screen}.field.{body}".
	KindDottedField RuleKind = "dotted-field"
	// KindDottedDropdown matches "app.{area}.step{N}.dropdown.{body}".
	KindDottedDropdown RuleKind = "dotted-dropdown"
	// KindFlatScreen matches "{screen}_{body}" for the screen being resolved.
	KindFlatScreen RuleKind = "flat-screen"
	// KindFlatLegacy matches "[app.mortgage.form.]calculate_mortgage_{body}".
	KindFlatLegacy RuleKind = "flat-legacy"
	// KindOptionIndex matches any key ending in "_option_{n}".
	KindOptionIndex RuleKind = "option-index"
)

func (k RuleKind) String() string { return string(k) }

// Rule recognizes one key shape and extracts its body: the part of the key
// that still contains the field name and, for options, the option token.
type Rule struct {
	Kind RuleKind
	// Pattern is the human-readable form of the match, used in diagnostics.
	Pattern string
	// Roles restricts the rule to the given roles. Empty means every role.
	Roles []domain.ComponentRole
	// Match returns the key body when the key has this rule's shape.
	Match func(screen, key string) (body string, ok bool)
}

func (r Rule) appliesTo(role domain.ComponentRole) bool {
	return len(r.Roles) == 0 || slices.Contains(r.Roles, role)
}

// DefaultRules returns the rule list in priority order.
func DefaultRules() []Rule {
	return []Rule{
		regexRule(KindDottedField, `^[^.]+\.field\.([^.]+)$`),
		regexRule(KindDottedDropdown, `^app\.[^.]+\.step\d+\.dropdown\.([^.]+)$`),
		{
			Kind:    KindFlatScreen,
			Pattern: `^{screen}_(.+)$`,
			Match:   matchFlatScreen,
		},
		regexRule(KindFlatLegacy, `^(?:app\.[a-z0-9_.]+\.)?calculate_mortgage_([A-Za-z0-9_]+)$`),
		withRoles(
			regexRule(KindOptionIndex, `(?:^|\.)([^.]+_options?_\d+)$`),
			domain.RoleOption,
		),
	}
}

func regexRule(kind RuleKind, expr string) Rule {
	re := regexp.MustCompile(expr)
	return Rule{
		Kind:    kind,
		Pattern: expr,
		Match: func(_, key string) (string, bool) {
			m := re.FindStringSubmatch(key)
			if m == nil || m[1] == "" {
				return "", false
			}
			return m[1], true
		},
	}
}

func withRoles(r Rule, roles ...domain.ComponentRole) Rule {
	r.Roles = roles
	return r
}

func matchFlatScreen(screen, key string) (string, bool) {
	if screen == "" {
		return "", false
	}
	body, ok := strings.CutPrefix(key, screen+"_")
	if !ok || body == "" || strings.Contains(body, ".") {
		return "", false
	}
	return body, true
}
