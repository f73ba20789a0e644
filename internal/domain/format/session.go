package format

import "fmt"

// sessionState is the editing state machine:
//
//	viewing -> editing_literal  -> viewing
//	viewing -> editing_separator -> viewing
//
// No other transitions exist.
type sessionState string

const (
	stateViewing          sessionState = "viewing"
	stateEditingLiteral   sessionState = "editing_literal"
	stateEditingSeparator sessionState = "editing_separator"
)

// EditSession wraps one in-progress edit of a template. Each session
// owns its own copy and state; sessions never share anything, so two
// concurrent editors cannot corrupt each other.
type EditSession struct {
	kind    TemplateKind
	tpl     Template
	state   sessionState
	section Section
	tokenID string
}

func NewEditSession(kind TemplateKind, tpl Template) *EditSession {
	return &EditSession{kind: kind, tpl: tpl.Clone(), state: stateViewing}
}

// Template returns a copy of the session's current template.
func (s *EditSession) Template() Template { return s.tpl.Clone() }

// Editing reports whether a text edit is in progress.
func (s *EditSession) Editing() bool { return s.state != stateViewing }

// AddFieldToken appends a field token, minting its id from the list.
func (s *EditSession) AddFieldToken(section Section, field FieldName) (Token, error) {
	if err := s.mustBeViewing("add token"); err != nil {
		return Token{}, err
	}
	tok := FieldToken(NextTokenID(*s.tpl.tokens(section)), section, field)
	if err := tok.Validate(section, s.kind); err != nil {
		return Token{}, err
	}
	return tok, s.tpl.AddToken(section, tok)
}

// AddLiteralToken appends an empty literal token and enters the
// literal-editing state for it.
func (s *EditSession) AddLiteralToken(section Section) (Token, error) {
	if err := s.mustBeViewing("add token"); err != nil {
		return Token{}, err
	}
	tok := LiteralToken(NextTokenID(*s.tpl.tokens(section)), section, "")
	if err := s.tpl.AddToken(section, tok); err != nil {
		return Token{}, err
	}
	s.state = stateEditingLiteral
	s.section = section
	s.tokenID = tok.ID
	return tok, nil
}

// AddNewlineToken appends a newline token to the item list.
func (s *EditSession) AddNewlineToken() (Token, error) {
	if err := s.mustBeViewing("add token"); err != nil {
		return Token{}, err
	}
	tok := NewlineToken(NextTokenID(s.tpl.ItemTokens))
	return tok, s.tpl.AddToken(SectionItem, tok)
}

// RemoveToken deletes a token; only valid while viewing.
func (s *EditSession) RemoveToken(section Section, id string) error {
	if err := s.mustBeViewing("remove token"); err != nil {
		return err
	}
	return s.tpl.RemoveToken(section, id)
}

// MoveToken reorders a token; only valid while viewing.
func (s *EditSession) MoveToken(section Section, id string, newIndex int) error {
	if err := s.mustBeViewing("move token"); err != nil {
		return err
	}
	return s.tpl.MoveToken(section, id, newIndex)
}

// BeginLiteralEdit enters text editing for an existing literal token.
func (s *EditSession) BeginLiteralEdit(section Section, id string) error {
	if err := s.mustBeViewing("edit literal"); err != nil {
		return err
	}
	list := *s.tpl.tokens(section)
	idx := tokenIndex(list, id)
	if idx < 0 {
		return fmt.Errorf("token %q not found in %s list", id, section)
	}
	if list[idx].Kind != KindLiteral {
		return fmt.Errorf("token %q is %s, not a literal", id, list[idx].Kind)
	}
	s.state = stateEditingLiteral
	s.section = section
	s.tokenID = id
	return nil
}

// CommitLiteralEdit stores the text and returns to viewing.
func (s *EditSession) CommitLiteralEdit(text string) error {
	if s.state != stateEditingLiteral {
		return fmt.Errorf("no literal edit in progress")
	}
	list := s.tpl.tokens(s.section)
	idx := tokenIndex(*list, s.tokenID)
	if idx < 0 {
		return fmt.Errorf("token %q vanished during edit", s.tokenID)
	}
	(*list)[idx].LiteralValue = text
	s.reset()
	return nil
}

// BeginSeparatorEdit enters separator editing.
func (s *EditSession) BeginSeparatorEdit() error {
	if err := s.mustBeViewing("edit separator"); err != nil {
		return err
	}
	s.state = stateEditingSeparator
	return nil
}

// CommitSeparatorEdit stores the separator and returns to viewing.
func (s *EditSession) CommitSeparatorEdit(sep string) error {
	if s.state != stateEditingSeparator {
		return fmt.Errorf("no separator edit in progress")
	}
	s.tpl.ItemSeparator = sep
	s.reset()
	return nil
}

// CancelEdit abandons any in-progress edit and returns to viewing. The
// template keeps whatever was last committed.
func (s *EditSession) CancelEdit() { s.reset() }

// SetMode switches the layout mode; only valid while viewing.
func (s *EditSession) SetMode(mode LayoutMode) error {
	if err := s.mustBeViewing("set mode"); err != nil {
		return err
	}
	if mode != ModeVertical && mode != ModeHorizontal {
		return fmt.Errorf("unknown layout mode %q", mode)
	}
	s.tpl.Mode = mode
	return nil
}

func (s *EditSession) mustBeViewing(op string) error {
	if s.state != stateViewing {
		return fmt.Errorf("cannot %s while in %s state", op, s.state)
	}
	return nil
}

func (s *EditSession) reset() {
	s.state = stateViewing
	s.section = ""
	s.tokenID = ""
}
