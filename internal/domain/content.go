package domain

import "strings"

// ComponentType is the UI role a content item plays on its screen.
type ComponentType string

const (
	ComponentTypeDropdownContainer ComponentType = "dropdown_container"
	ComponentTypeDropdownOption    ComponentType = "dropdown_option"
	ComponentTypeOption            ComponentType = "option"
	ComponentTypePlaceholder       ComponentType = "placeholder"
	ComponentTypeLabel             ComponentType = "label"
)

func (c ComponentType) String() string { return string(c) }

// Role maps a stored component type onto the role the dropdown engine
// understands. Types outside the dropdown vocabulary return RoleUnknown.
func (c ComponentType) Role() ComponentRole {
	switch ComponentType(strings.ToLower(strings.TrimSpace(string(c)))) {
	case ComponentTypeDropdownContainer:
		return RoleContainer
	case ComponentTypeDropdownOption, ComponentTypeOption:
		return RoleOption
	case ComponentTypePlaceholder:
		return RolePlaceholder
	case ComponentTypeLabel:
		return RoleLabel
	}
	return RoleUnknown
}

// DropdownComponentTypes lists the component types queried for dropdown assembly.
func DropdownComponentTypes() []ComponentType {
	return []ComponentType{
		ComponentTypeDropdownContainer,
		ComponentTypeDropdownOption,
		ComponentTypeOption,
		ComponentTypePlaceholder,
		ComponentTypeLabel,
	}
}

// ComponentRole is the normalized role of a content row inside a dropdown.
type ComponentRole string

const (
	RoleUnknown     ComponentRole = ""
	RoleContainer   ComponentRole = "container"
	RoleOption      ComponentRole = "option"
	RoleLabel       ComponentRole = "label"
	RolePlaceholder ComponentRole = "placeholder"
)

func (r ComponentRole) String() string { return string(r) }

func (r ComponentRole) IsValid() bool {
	switch r {
	case RoleContainer, RoleOption, RoleLabel, RolePlaceholder:
		return true
	}
	return false
}

// ParseComponentRole accepts either a role name or a stored component type.
func ParseComponentRole(s string) ComponentRole {
	r := ComponentRole(strings.ToLower(strings.TrimSpace(s)))
	if r.IsValid() {
		return r
	}
	return ComponentType(s).Role()
}

// TranslationStatus is the editorial state of a translation.
type TranslationStatus string

const (
	TranslationStatusDraft    TranslationStatus = "draft"
	TranslationStatusApproved TranslationStatus = "approved"
)

func (s TranslationStatus) String() string { return string(s) }

func (s TranslationStatus) IsValid() bool {
	switch s {
	case TranslationStatusDraft, TranslationStatusApproved:
		return true
	}
	return false
}

// ContentItem is one logical content key on one screen.
// The same ContentKey may exist on several screens; the pair is the identity.
type ContentItem struct {
	ID             int64
	ContentKey     string
	ScreenLocation string
	ComponentType  ComponentType
	IsActive       bool
}

// ContentTranslation is the localized value of a content item.
type ContentTranslation struct {
	ID            int64
	ContentItemID int64
	LanguageCode  string
	ContentValue  string
	Status        TranslationStatus
}

// ContentRow is the validated join of a ContentItem with one of its translations.
// Rows are built only through NewContentRow so the engine never sees loose data.
type ContentRow struct {
	Key      string
	Screen   string
	Role     ComponentRole
	Language string
	Value    string
	Active   bool
	Status   TranslationStatus
}

// NewContentRow validates a joined item/translation pair.
// Only active items with approved translations and a dropdown role are accepted.
func NewContentRow(item ContentItem, tr ContentTranslation) (ContentRow, error) {
	var errs []FieldError

	key := strings.TrimSpace(item.ContentKey)
	if key == "" {
		errs = append(errs, FieldError{Field: "content_key", Message: "required"})
	}
	if strings.TrimSpace(item.ScreenLocation) == "" {
		errs = append(errs, FieldError{Field: "screen_location", Message: "required"})
	}
	role := item.ComponentType.Role()
	if role == RoleUnknown {
		errs = append(errs, FieldError{Field: "component_type", Message: "unsupported: " + item.ComponentType.String()})
	}
	if !item.IsActive {
		errs = append(errs, FieldError{Field: "is_active", Message: "item is inactive"})
	}
	if tr.Status != TranslationStatusApproved {
		errs = append(errs, FieldError{Field: "status", Message: "translation is not approved"})
	}
	if strings.TrimSpace(tr.LanguageCode) == "" {
		errs = append(errs, FieldError{Field: "language_code", Message: "required"})
	}

	if len(errs) > 0 {
		return ContentRow{}, NewValidationErrors(errs)
	}

	return ContentRow{
		Key:      key,
		Screen:   item.ScreenLocation,
		Role:     role,
		Language: tr.LanguageCode,
		Value:    tr.ContentValue,
		Active:   item.IsActive,
		Status:   tr.Status,
	}, nil
}

// RejectedRow records a stored row that failed boundary validation.
type RejectedRow struct {
	Key    string
	Screen string
	Reason string
}

// DropdownRowsFilter selects the content rows of one screen in one language.
type DropdownRowsFilter struct {
	Screen   string
	Language string
	Types    []ComponentType
}

// ContentRowSet is a validated batch of rows read from the store.
type ContentRowSet struct {
	Rows     []ContentRow
	Rejected []RejectedRow
}
