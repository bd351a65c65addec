// Package assembler groups resolved content rows into dropdown definitions.
package assembler

import (
	"sort"

	"github.com/heartmarshall/calc-content-backend/internal/domain"
	"github.com/heartmarshall/calc-content-backend/internal/dropdown/keypattern"
)

// Result is the outcome of assembling one screen.
type Result struct {
	Dropdowns []domain.AssembledDropdown
	// Dropped holds the content keys the resolver could not place.
	Dropped []string
}

// Assembler turns validated content rows into dropdowns.
type Assembler struct {
	resolver *keypattern.Resolver
}

// New creates an Assembler. A nil resolver means keypattern.New().
func New(resolver *keypattern.Resolver) *Assembler {
	if resolver == nil {
		resolver = keypattern.New()
	}
	return &Assembler{resolver: resolver}
}

type fieldGroup struct {
	label       *string
	container   *string
	placeholder *string
	options     []resolvedOption
}

type resolvedOption struct {
	sortKey string
	value   string
	label   string
}

// Assemble builds one dropdown per field found in rows. Rows are expected to be
// scoped to a single screen and language already.
func (a *Assembler) Assemble(screen string, rows []domain.ContentRow) Result {
	res := Result{Dropdowns: []domain.AssembledDropdown{}}
	if len(rows) == 0 {
		return res
	}

	groups := make(map[string]*fieldGroup)
	group := func(field string) *fieldGroup {
		g, ok := groups[field]
		if !ok {
			g = &fieldGroup{}
			groups[field] = g
		}
		return g
	}

	// Non-option rows first: the fields they declare guide option splitting.
	known := make(map[string]struct{})
	var optionRows []domain.ContentRow

	for _, row := range sortedByKey(rows) {
		if row.Role == domain.RoleOption {
			optionRows = append(optionRows, row)
			continue
		}

		r, ok := a.resolver.Resolve(keypattern.Input{Screen: screen, Key: row.Key, Role: row.Role})
		if !ok {
			res.Dropped = append(res.Dropped, row.Key)
			continue
		}
		known[r.FieldName] = struct{}{}

		g := group(r.FieldName)
		value := row.Value
		switch row.Role {
		case domain.RoleLabel:
			if g.label == nil {
				g.label = &value
			}
		case domain.RoleContainer:
			if g.container == nil {
				g.container = &value
			}
		case domain.RolePlaceholder:
			if g.placeholder == nil {
				g.placeholder = &value
			}
		}
	}

	for _, row := range optionRows {
		r, ok := a.resolver.Resolve(keypattern.Input{
			Screen:      screen,
			Key:         row.Key,
			Role:        row.Role,
			KnownFields: known,
		})
		if !ok {
			res.Dropped = append(res.Dropped, row.Key)
			continue
		}
		g := group(r.FieldName)
		g.options = append(g.options, resolvedOption{
			sortKey: r.SortKey,
			value:   r.OptionValue,
			label:   row.Value,
		})
	}

	for field, g := range groups {
		res.Dropdowns = append(res.Dropdowns, g.build(screen, field))
	}
	sort.Slice(res.Dropdowns, func(i, j int) bool {
		return res.Dropdowns[i].Key < res.Dropdowns[j].Key
	})

	return res
}

func (g *fieldGroup) build(screen, field string) domain.AssembledDropdown {
	label := field
	switch {
	case g.label != nil:
		label = *g.label
	case g.container != nil:
		label = *g.container
	}

	d := domain.AssembledDropdown{
		Key:       domain.DropdownKey(screen, field),
		FieldName: field,
		Label:     label,
		Options:   make([]domain.DropdownOption, 0, len(g.options)),
	}
	if g.placeholder != nil {
		ph := *g.placeholder
		d.Placeholder = &ph
	}

	sort.SliceStable(g.options, func(i, j int) bool {
		return g.options[i].sortKey < g.options[j].sortKey
	})
	seen := make(map[string]struct{}, len(g.options))
	for _, o := range g.options {
		if _, dup := seen[o.value]; dup {
			continue
		}
		seen[o.value] = struct{}{}
		d.Options = append(d.Options, domain.DropdownOption{Value: o.value, Label: o.label})
	}

	return d
}

// sortedByKey returns a copy of rows ordered by content key, so "first row wins"
// choices do not depend on store ordering.
func sortedByKey(rows []domain.ContentRow) []domain.ContentRow {
	out := make([]domain.ContentRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}
