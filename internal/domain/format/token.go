package format

import (
	"fmt"
	"strconv"
	"strings"
)

// Section says which token list a token belongs to.
type Section string

const (
	SectionHeader Section = "header"
	SectionItem   Section = "item"
)

// TokenKind is the behavior of a token during rendering.
type TokenKind string

const (
	KindField     TokenKind = "field"
	KindLiteral   TokenKind = "literal"
	KindSeparator TokenKind = "separator"
	KindNewline   TokenKind = "newline"
)

// FieldName is a renderable attribute bound to a field token.
type FieldName string

const (
	// Header fields, bound to group attributes.
	FieldDate          FieldName = "date"
	FieldFacility      FieldName = "facility"
	FieldDiagnosisCode FieldName = "diagnosis_code"
	FieldDiagnosisName FieldName = "diagnosis_name"

	// Lab item fields.
	FieldItemName  FieldName = "item_name"
	FieldOrderCode FieldName = "order_code"
	FieldValue     FieldName = "value"
	FieldUnit      FieldName = "unit"
	FieldReference FieldName = "reference"

	// Medication item fields.
	FieldDrugName  FieldName = "drug_name"
	FieldDose      FieldName = "dose"
	FieldFrequency FieldName = "frequency"
	FieldDays      FieldName = "days"
)

var headerFields = map[FieldName]bool{
	FieldDate: true, FieldFacility: true,
	FieldDiagnosisCode: true, FieldDiagnosisName: true,
}

var labItemFields = map[FieldName]bool{
	FieldItemName: true, FieldOrderCode: true,
	FieldValue: true, FieldUnit: true, FieldReference: true,
}

var medItemFields = map[FieldName]bool{
	FieldDrugName: true, FieldDose: true, FieldUnit: true,
	FieldFrequency: true, FieldDays: true,
}

// Token is one atom of a copy template. ID is unique within its list;
// Section must match the list the token lives in.
type Token struct {
	ID           string    `json:"id"`
	Section      Section   `json:"section"`
	Kind         TokenKind `json:"kind"`
	FieldName    FieldName `json:"field_name,omitempty"`
	LiteralValue string    `json:"literal_value,omitempty"`
}

// Validate checks the token's internal consistency against the list it
// lives in and the template kind's field vocabulary.
func (t Token) Validate(section Section, kind TemplateKind) error {
	if t.ID == "" {
		return fmt.Errorf("token id is required")
	}
	if t.Section != section {
		return fmt.Errorf("token %s: section %q does not match its list %q", t.ID, t.Section, section)
	}
	switch t.Kind {
	case KindField:
		if !validField(section, kind, t.FieldName) {
			return fmt.Errorf("token %s: field %q not valid in %s section of %s template", t.ID, t.FieldName, section, kind)
		}
	case KindLiteral, KindSeparator:
		// Literal text may be empty while being edited; nothing to check.
	case KindNewline:
		if section != SectionItem {
			return fmt.Errorf("token %s: newline tokens are only valid in the item list", t.ID)
		}
	default:
		return fmt.Errorf("token %s: unknown kind %q", t.ID, t.Kind)
	}
	return nil
}

func validField(section Section, kind TemplateKind, f FieldName) bool {
	if section == SectionHeader {
		return headerFields[f]
	}
	if kind == KindMedication {
		return medItemFields[f]
	}
	return labItemFields[f]
}

// NextTokenID mints a fresh id from the max numeric suffix already in
// the list. Pure by design: no package-level counter, so concurrent
// editing sessions never share state.
func NextTokenID(tokens []Token) string {
	max := 0
	for _, t := range tokens {
		if n, ok := numericSuffix(t.ID); ok && n > max {
			max = n
		}
	}
	return "t" + strconv.Itoa(max+1)
}

func numericSuffix(id string) (int, bool) {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	if i == len(id) {
		return 0, false
	}
	n, err := strconv.Atoi(id[i:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// FieldToken and LiteralToken are constructors for the common cases.
func FieldToken(id string, section Section, field FieldName) Token {
	return Token{ID: id, Section: section, Kind: KindField, FieldName: field}
}

func LiteralToken(id string, section Section, text string) Token {
	return Token{ID: id, Section: section, Kind: KindLiteral, LiteralValue: text}
}

func NewlineToken(id string) Token {
	return Token{ID: id, Section: SectionItem, Kind: KindNewline}
}

func tokenIndex(tokens []Token, id string) int {
	for i, t := range tokens {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func describeTokens(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		parts = append(parts, string(t.Kind))
	}
	return strings.Join(parts, ",")
}
