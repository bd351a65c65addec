package keypattern

import "strings"

// Vocabulary is the set of option tokens that mark where a field name ends
// inside an option key.
type Vocabulary struct {
	// Prefixes match any token that starts with them ("no_property").
	Prefixes []string
	// Tokens match whole option tokens only.
	Tokens map[string]struct{}
}

// NewVocabulary builds a Vocabulary from prefix and whole-token lists.
func NewVocabulary(prefixes, tokens []string) Vocabulary {
	v := Vocabulary{
		Prefixes: append([]string(nil), prefixes...),
		Tokens:   make(map[string]struct{}, len(tokens)),
	}
	for _, t := range tokens {
		v.Tokens[strings.ToLower(t)] = struct{}{}
	}
	return v
}

// Matches reports whether s is a recognized option token.
func (v Vocabulary) Matches(s string) bool {
	s = strings.ToLower(s)
	if _, ok := v.Tokens[s]; ok {
		return true
	}
	for _, p := range v.Prefixes {
		if len(s) > len(p) && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// DefaultVocabulary holds the tokens found across the calculator screens.
func DefaultVocabulary() Vocabulary {
	return NewVocabulary(defaultPrefixes, defaultTokens)
}

var defaultPrefixes = []string{
	"no_", "has_", "selling_", "within_", "over_",
	"im_", "i_no_", "i_own_", "yes_",
}

var defaultTokens = []string{
	// property
	"apartment", "garden_apartment", "penthouse", "private_house", "commercial", "land",
	"investment", "other",
	// timing
	"3_to_6_months", "6_to_12_months",
	// rates
	"fixed_rate", "variable_rate", "mixed_rate", "not_sure",
	"fixed_interest", "variable_interest", "prime_interest", "mixed_interest",
	// refinance goals
	"lower_interest_rate", "reduce_monthly_payment", "shorten_mortgage_term",
	"cash_out_refinance", "consolidate_debts",
	// family status
	"single", "married", "divorced", "widowed", "partner", "commonlaw_partner",
	// education
	"partial_high_school_diploma", "full_high_school_diploma", "postsecondary_education",
	"post_secondary", "bachelors", "masters", "doctorate",
	"full_certificate", "partial_certificate",
	"full_high_school_certificate", "partial_high_school_certificate",
	// income
	"employee", "selfemployed", "pension", "student", "unemployed", "unpaid_leave",
	"additional_salary", "additional_work", "property_rental_income",
	// obligations
	"bank_loan", "consumer_credit", "credit_card",
	// banks
	"hapoalim", "leumi", "discount", "massad", "mizrahi",
	// field of activity
	"agriculture", "technology", "healthcare", "education", "finance", "real_estate",
	"construction", "retail", "manufacturing", "government", "transport", "consulting",
	"entertainment",
}
