package keypattern

import (
	"regexp"
	"strings"

	"github.com/heartmarshall/calc-content-backend/internal/domain"
)

// Input is one content row as seen by the resolver.
type Input struct {
	Screen string
	Key    string
	Role   domain.ComponentRole
	// KnownFields are field names already resolved from non-option rows of the
	// same screen. They take precedence over vocabulary guessing for options.
	KnownFields map[string]struct{}
}

// Resolution is the outcome of a successful match.
type Resolution struct {
	FieldName string
	// OptionValue is set for option rows only.
	OptionValue string
	// SortKey is the literal content key. Options are ordered by it.
	SortKey string
	Rule    RuleKind
}

// Resolver applies an ordered rule list to content keys. It holds no mutable
// state and is safe for concurrent use.
type Resolver struct {
	rules []Rule
	vocab Vocabulary
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRules replaces the default rule list.
func WithRules(rules ...Rule) Option {
	return func(r *Resolver) { r.rules = rules }
}

// WithVocabulary replaces the default option vocabulary.
func WithVocabulary(v Vocabulary) Option {
	return func(r *Resolver) { r.vocab = v }
}

// New creates a Resolver with DefaultRules and DefaultVocabulary.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		rules: DefaultRules(),
		vocab: DefaultVocabulary(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rules returns a copy of the rule list in evaluation order.
func (r *Resolver) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Resolve extracts the field name, and the option value for option rows.
// It returns false when the row must be excluded from assembly.
func (r *Resolver) Resolve(in Input) (Resolution, bool) {
	key := strings.TrimSpace(in.Key)
	if key == "" || !in.Role.IsValid() {
		return Resolution{}, false
	}

	for _, rule := range r.rules {
		if !rule.appliesTo(in.Role) {
			continue
		}
		body, ok := rule.Match(in.Screen, key)
		if !ok {
			continue
		}

		// First matching rule decides, even when the body turns out unusable.
		res, ok := r.fromBody(body, in)
		if !ok {
			return Resolution{}, false
		}
		res.SortKey = key
		res.Rule = rule.Kind
		return res, true
	}

	return Resolution{}, false
}

func (r *Resolver) fromBody(body string, in Input) (Resolution, bool) {
	if in.Role != domain.RoleOption {
		field := stripRoleSuffix(body, in.Role)
		if !validField(field) {
			return Resolution{}, false
		}
		return Resolution{FieldName: field}, true
	}

	field, value, ok := r.splitOption(body, in.KnownFields)
	if !ok || !validField(field) || value == "" {
		return Resolution{}, false
	}
	return Resolution{FieldName: field, OptionValue: value}, true
}

var (
	reOptionIndex   = regexp.MustCompile(`^(.+?)_options?_(\d+)$`)
	reSynthetic     = regexp.MustCompile(`(?i)^(.+?)_(\d)_([a-z][a-z0-9_]*)$`)
	reTrailingIndex = regexp.MustCompile(`^(.+)_(\d+)$`)
	reOrderPrefix   = regexp.MustCompile(`^\d_(.+)$`)
	reField         = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)
)

// splitOption separates "{field}_{token}" into its parts.
func (r *Resolver) splitOption(body string, known map[string]struct{}) (field, value string, ok bool) {
	// Explicit positional index.
	if m := reOptionIndex.FindStringSubmatch(body); m != nil {
		return m[1], m[2], true
	}

	// Longest field already declared by a container, label or placeholder.
	if f, ok := longestKnownPrefix(body, known); ok {
		return f, stripOrderPrefix(body[len(f)+1:]), true
	}

	// Leftmost split whose remainder is a vocabulary token.
	for i := 1; i < len(body); i++ {
		if body[i] != '_' {
			continue
		}
		token := stripOrderPrefix(body[i+1:])
		if token != "" && r.vocab.Matches(token) {
			return body[:i], token, true
		}
	}

	// "{field}_{digit}_{token}": the digit only forces display order.
	if m := reSynthetic.FindStringSubmatch(body); m != nil && !isRange(m[3]) {
		return m[1], m[3], true
	}

	if m := reTrailingIndex.FindStringSubmatch(body); m != nil {
		return m[1], m[2], true
	}

	i := strings.LastIndexByte(body, '_')
	if i <= 0 || i == len(body)-1 {
		return "", "", false
	}
	return body[:i], body[i+1:], true
}

func longestKnownPrefix(body string, known map[string]struct{}) (string, bool) {
	best := ""
	for f := range known {
		if len(f) <= len(best) || len(body) <= len(f)+1 {
			continue
		}
		if strings.HasPrefix(body, f) && body[len(f)] == '_' {
			best = f
		}
	}
	return best, best != ""
}

// stripOrderPrefix removes a leading "{digit}_" used purely to force ordering.
// Ranges such as "3_to_6_months" are values, not order prefixes.
func stripOrderPrefix(v string) string {
	m := reOrderPrefix.FindStringSubmatch(v)
	if m == nil || isRange(m[1]) {
		return v
	}
	return m[1]
}

func isRange(s string) bool {
	return strings.HasPrefix(s, "to_")
}

func stripRoleSuffix(body string, role domain.ComponentRole) string {
	var suffixes []string
	switch role {
	case domain.RolePlaceholder:
		suffixes = []string{"_options_ph", "_ph", "_placeholder"}
	case domain.RoleLabel, domain.RoleContainer:
		suffixes = []string{"_label"}
	}
	for _, s := range suffixes {
		if len(body) > len(s) && strings.HasSuffix(body, s) {
			return strings.TrimSuffix(body, s)
		}
	}
	return body
}

func validField(f string) bool {
	return reField.MatchString(f)
}
