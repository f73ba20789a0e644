package format

import (
	"encoding/json"
	"fmt"
)

// TemplateKind selects the item-field vocabulary of a template.
type TemplateKind string

const (
	KindLab        TemplateKind = "lab"
	KindMedication TemplateKind = "medication"
)

// LayoutMode controls how a rendered group is laid out.
type LayoutMode string

const (
	ModeVertical   LayoutMode = "vertical"
	ModeHorizontal LayoutMode = "horizontal"
)

// Template is the entire serializable state of the copy formatter. It
// is authored by the user and mutated only through the explicit ops
// below; rendering never changes it.
type Template struct {
	HeaderTokens  []Token    `json:"header_tokens"`
	ItemTokens    []Token    `json:"item_tokens"`
	Mode          LayoutMode `json:"mode"`
	ItemSeparator string     `json:"item_separator"`
}

// Validate checks every token against its list and the kind's field
// vocabulary, plus the layout mode.
func (t *Template) Validate(kind TemplateKind) error {
	if t.Mode != ModeVertical && t.Mode != ModeHorizontal {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeVertical, ModeHorizontal, t.Mode)
	}
	seen := map[string]bool{}
	for _, tok := range t.HeaderTokens {
		if err := tok.Validate(SectionHeader, kind); err != nil {
			return err
		}
		if seen[tok.ID] {
			return fmt.Errorf("duplicate token id %q in header list", tok.ID)
		}
		seen[tok.ID] = true
	}
	seen = map[string]bool{}
	for _, tok := range t.ItemTokens {
		if err := tok.Validate(SectionItem, kind); err != nil {
			return err
		}
		if seen[tok.ID] {
			return fmt.Errorf("duplicate token id %q in item list", tok.ID)
		}
		seen[tok.ID] = true
	}
	return nil
}

// tokens returns the list for a section. Header edits and item edits
// are independent; ops never cross-mutate.
func (t *Template) tokens(section Section) *[]Token {
	if section == SectionHeader {
		return &t.HeaderTokens
	}
	return &t.ItemTokens
}

// AddToken appends a token to its section's list. The token's section
// tag must match.
func (t *Template) AddToken(section Section, tok Token) error {
	if tok.Section != section {
		return fmt.Errorf("token %s is tagged %q, cannot add to %q list", tok.ID, tok.Section, section)
	}
	list := t.tokens(section)
	if tokenIndex(*list, tok.ID) >= 0 {
		return fmt.Errorf("token id %q already exists in %s list", tok.ID, section)
	}
	*list = append(*list, tok)
	return nil
}

// RemoveToken deletes the token with the given id from its section.
func (t *Template) RemoveToken(section Section, id string) error {
	list := t.tokens(section)
	idx := tokenIndex(*list, id)
	if idx < 0 {
		return fmt.Errorf("token %q not found in %s list", id, section)
	}
	*list = append((*list)[:idx], (*list)[idx+1:]...)
	return nil
}

// MoveToken reorders the token with the given id to position newIndex.
func (t *Template) MoveToken(section Section, id string, newIndex int) error {
	list := t.tokens(section)
	idx := tokenIndex(*list, id)
	if idx < 0 {
		return fmt.Errorf("token %q not found in %s list", id, section)
	}
	if newIndex < 0 || newIndex >= len(*list) {
		return fmt.Errorf("index %d out of range for %s list of %d tokens", newIndex, section, len(*list))
	}
	tok := (*list)[idx]
	rest := append((*list)[:idx], (*list)[idx+1:]...)
	rest = append(rest, Token{})
	copy(rest[newIndex+1:], rest[newIndex:])
	rest[newIndex] = tok
	*list = rest
	return nil
}

// Clone deep-copies the template so sessions can edit without aliasing
// the stored state.
func (t *Template) Clone() Template {
	cp := *t
	cp.HeaderTokens = append([]Token(nil), t.HeaderTokens...)
	cp.ItemTokens = append([]Token(nil), t.ItemTokens...)
	return cp
}

// MarshalJSON/UnmarshalJSON keep the wire shape stable even when the
// token lists are nil, so persisted templates always round-trip as
// arrays.
func (t Template) MarshalJSON() ([]byte, error) {
	type alias Template
	a := alias(t)
	if a.HeaderTokens == nil {
		a.HeaderTokens = []Token{}
	}
	if a.ItemTokens == nil {
		a.ItemTokens = []Token{}
	}
	return json.Marshal(a)
}

// DefaultLabTemplate is the template shipped before a user authors one.
func DefaultLabTemplate() Template {
	return Template{
		Mode:          ModeVertical,
		ItemSeparator: ", ",
		HeaderTokens: []Token{
			FieldToken("t1", SectionHeader, FieldDate),
			LiteralToken("t2", SectionHeader, " "),
			FieldToken("t3", SectionHeader, FieldFacility),
		},
		ItemTokens: []Token{
			FieldToken("t1", SectionItem, FieldItemName),
			LiteralToken("t2", SectionItem, ": "),
			FieldToken("t3", SectionItem, FieldValue),
			LiteralToken("t4", SectionItem, " "),
			FieldToken("t5", SectionItem, FieldUnit),
		},
	}
}

// DefaultMedicationTemplate mirrors the lab default for the medication
// vocabulary.
func DefaultMedicationTemplate() Template {
	return Template{
		Mode:          ModeVertical,
		ItemSeparator: ", ",
		HeaderTokens: []Token{
			FieldToken("t1", SectionHeader, FieldDate),
			LiteralToken("t2", SectionHeader, " "),
			FieldToken("t3", SectionHeader, FieldFacility),
		},
		ItemTokens: []Token{
			FieldToken("t1", SectionItem, FieldDrugName),
			LiteralToken("t2", SectionItem, " "),
			FieldToken("t3", SectionItem, FieldDose),
			FieldToken("t4", SectionItem, FieldUnit),
			LiteralToken("t5", SectionItem, " "),
			FieldToken("t6", SectionItem, FieldFrequency),
		},
	}
}

// DefaultTemplate returns the shipped template for a kind.
func DefaultTemplate(kind TemplateKind) (Template, error) {
	switch kind {
	case KindLab:
		return DefaultLabTemplate(), nil
	case KindMedication:
		return DefaultMedicationTemplate(), nil
	}
	return Template{}, fmt.Errorf("unknown template kind %q", kind)
}
