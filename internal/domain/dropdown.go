package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DropdownSource tells where an assembled dropdown set came from.
type DropdownSource string

const (
	DropdownSourceContent     DropdownSource = "content"
	DropdownSourcePrecomputed DropdownSource = "precomputed"
)

func (s DropdownSource) String() string { return string(s) }

// DropdownOption is a single selectable value. Unique by Value within a dropdown.
type DropdownOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// AssembledDropdown is the resolved form field for one screen and language.
type AssembledDropdown struct {
	Key         string           `json:"key"`
	FieldName   string           `json:"field_name"`
	Label       string           `json:"label"`
	Placeholder *string          `json:"placeholder"`
	Options     []DropdownOption `json:"options"`
}

// DropdownKey builds the public join key "{screen}_{fieldName}".
func DropdownKey(screen, fieldName string) string {
	return screen + "_" + fieldName
}

// Clone returns a deep copy.
func (d AssembledDropdown) Clone() AssembledDropdown {
	out := d
	if d.Placeholder != nil {
		ph := *d.Placeholder
		out.Placeholder = &ph
	}
	out.Options = make([]DropdownOption, len(d.Options))
	copy(out.Options, d.Options)
	return out
}

// DropdownSet is every dropdown of one screen in one language.
type DropdownSet struct {
	Screen    string
	Language  string
	Source    DropdownSource
	Dropdowns []AssembledDropdown
}

// Clone returns a deep copy so callers never share cached slices.
func (s DropdownSet) Clone() DropdownSet {
	out := s
	out.Dropdowns = make([]AssembledDropdown, len(s.Dropdowns))
	for i, d := range s.Dropdowns {
		out.Dropdowns[i] = d.Clone()
	}
	return out
}

// DropdownConfig is a precomputed dropdown row from dropdown_configs.
type DropdownConfig struct {
	ScreenLocation string
	FieldName      string
	Data           DropdownData
	IsActive       bool
}

// DropdownData is the JSON stored in dropdown_configs.dropdown_data.
// Text fields hold either a plain string or a map of language code to string.
type DropdownData struct {
	Key         string                 `json:"key,omitempty"`
	Label       LocalizedText          `json:"label"`
	Placeholder LocalizedText          `json:"placeholder"`
	Options     []PrecomputedOption    `json:"options"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// PrecomputedOption is one option inside DropdownData. Older rows store the
// display text under "text", newer ones under "label".
type PrecomputedOption struct {
	Value string        `json:"value"`
	Label LocalizedText `json:"label"`
	Text  LocalizedText `json:"text"`
}

// Localize turns a stored config into the dropdown shape for one language.
// fallbackLang is consulted when a localized map has no entry for lang.
func (c DropdownConfig) Localize(screen, lang, fallbackLang string) AssembledDropdown {
	key := c.Data.Key
	if key == "" {
		key = DropdownKey(screen, c.FieldName)
	}

	label, ok := c.Data.Label.Lookup(lang, fallbackLang)
	if !ok {
		label = c.FieldName
	}

	d := AssembledDropdown{
		Key:       key,
		FieldName: c.FieldName,
		Label:     label,
		Options:   make([]DropdownOption, 0, len(c.Data.Options)),
	}

	if ph, ok := c.Data.Placeholder.Lookup(lang, fallbackLang); ok {
		d.Placeholder = &ph
	}

	seen := make(map[string]struct{}, len(c.Data.Options))
	for _, opt := range c.Data.Options {
		if _, dup := seen[opt.Value]; dup {
			continue
		}
		seen[opt.Value] = struct{}{}

		text, ok := opt.Label.Lookup(lang, fallbackLang)
		if !ok {
			text = opt.Text.Resolve(lang, fallbackLang)
		}
		d.Options = append(d.Options, DropdownOption{Value: opt.Value, Label: text})
	}

	return d
}

// LocalizedText is either a single string or a per-language map.
type LocalizedText struct {
	Plain   string
	ByLang  map[string]string
	isPlain bool
}

// PlainText wraps a language-independent string.
func PlainText(s string) LocalizedText {
	return LocalizedText{Plain: s, isPlain: true}
}

// Translations wraps a per-language map.
func Translations(m map[string]string) LocalizedText {
	return LocalizedText{ByLang: m}
}

// Resolve returns the text for lang, then fallbackLang, else "".
func (t LocalizedText) Resolve(lang, fallbackLang string) string {
	v, _ := t.Lookup(lang, fallbackLang)
	return v
}

// Lookup is Resolve that also reports whether a value was stored. A plain
// string, empty or not, is always found; a map is found only when lang or
// fallbackLang has a non-empty entry.
func (t LocalizedText) Lookup(lang, fallbackLang string) (string, bool) {
	if t.isPlain {
		return t.Plain, true
	}
	if v := t.ByLang[lang]; v != "" {
		return v, true
	}
	if fallbackLang != "" {
		if v := t.ByLang[fallbackLang]; v != "" {
			return v, true
		}
	}
	return "", false
}

func (t LocalizedText) MarshalJSON() ([]byte, error) {
	if t.isPlain {
		return json.Marshal(t.Plain)
	}
	if t.ByLang == nil {
		return []byte("null"), nil
	}
	return json.Marshal(t.ByLang)
}

func (t *LocalizedText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = LocalizedText{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = PlainText(s)
		return nil
	case '{':
		var m map[string]string
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*t = Translations(m)
		return nil
	}

	return fmt.Errorf("localized text: unsupported JSON value %s", data)
}

// DropdownConfigSet is a decoded batch of precomputed configs.
type DropdownConfigSet struct {
	Configs  []DropdownConfig
	Rejected []RejectedRow
}
