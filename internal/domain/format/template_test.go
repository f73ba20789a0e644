package format

import (
	"encoding/json"
	"strings"
	"testing"
)

func itemIDs(tpl Template) []string {
	ids := make([]string, 0, len(tpl.ItemTokens))
	for _, tok := range tpl.ItemTokens {
		ids = append(ids, tok.ID)
	}
	return ids
}

func TestDefaultTemplatesValidate(t *testing.T) {
	for _, kind := range []TemplateKind{KindLab, KindMedication} {
		tpl, err := DefaultTemplate(kind)
		if err != nil {
			t.Fatalf("DefaultTemplate(%s): %v", kind, err)
		}
		if err := tpl.Validate(kind); err != nil {
			t.Errorf("default %s template invalid: %v", kind, err)
		}
	}
	if _, err := DefaultTemplate("imaging"); err == nil {
		t.Error("unknown kind accepted")
	}
}

func TestTemplateValidateRejectsDuplicateIDs(t *testing.T) {
	tpl := DefaultLabTemplate()
	tpl.ItemTokens = append(tpl.ItemTokens, LiteralToken("t1", SectionItem, "!"))
	if err := tpl.Validate(KindLab); err == nil {
		t.Error("duplicate item token id accepted")
	}

	// The header and item lists have independent id spaces: the defaults
	// already reuse t1 across sections and must stay valid.
	fresh := DefaultLabTemplate()
	if err := fresh.Validate(KindLab); err != nil {
		t.Errorf("cross-section id reuse rejected: %v", err)
	}
}

func TestTemplateValidateRejectsBadMode(t *testing.T) {
	tpl := DefaultLabTemplate()
	tpl.Mode = "diagonal"
	if err := tpl.Validate(KindLab); err == nil {
		t.Error("bad layout mode accepted")
	}
}

func TestTemplateAddToken(t *testing.T) {
	tpl := DefaultLabTemplate()
	id := NextTokenID(tpl.ItemTokens)
	if err := tpl.AddToken(SectionItem, FieldToken(id, SectionItem, FieldReference)); err != nil {
		t.Fatalf("AddToken: %v", err)
	}
	if got := tpl.ItemTokens[len(tpl.ItemTokens)-1].FieldName; got != FieldReference {
		t.Errorf("appended token field = %q", got)
	}

	// Duplicate id and section mismatch are both rejected.
	if err := tpl.AddToken(SectionItem, LiteralToken(id, SectionItem, "x")); err == nil {
		t.Error("duplicate id accepted")
	}
	if err := tpl.AddToken(SectionHeader, LiteralToken("h9", SectionItem, "x")); err == nil {
		t.Error("section mismatch accepted")
	}
}

func TestTemplateRemoveToken(t *testing.T) {
	tpl := DefaultLabTemplate()
	if err := tpl.RemoveToken(SectionItem, "t2"); err != nil {
		t.Fatalf("RemoveToken: %v", err)
	}
	want := []string{"t1", "t3", "t4", "t5"}
	got := itemIDs(tpl)
	if len(got) != len(want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids = %v, want %v", got, want)
		}
	}
	if err := tpl.RemoveToken(SectionItem, "t2"); err == nil {
		t.Error("removing a missing token succeeded")
	}
}

func TestTemplateMoveToken(t *testing.T) {
	tpl := DefaultLabTemplate()
	if err := tpl.MoveToken(SectionItem, "t5", 0); err != nil {
		t.Fatalf("MoveToken: %v", err)
	}
	want := []string{"t5", "t1", "t2", "t3", "t4"}
	got := itemIDs(tpl)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids after move = %v, want %v", got, want)
		}
	}

	if err := tpl.MoveToken(SectionItem, "t1", 9); err == nil {
		t.Error("out-of-range index accepted")
	}
	if err := tpl.MoveToken(SectionItem, "nope", 0); err == nil {
		t.Error("moving a missing token succeeded")
	}
}

func TestTemplateCloneDoesNotAlias(t *testing.T) {
	tpl := DefaultLabTemplate()
	cp := tpl.Clone()
	cp.ItemTokens[0].FieldName = FieldOrderCode
	if tpl.ItemTokens[0].FieldName != FieldItemName {
		t.Error("clone shares backing array with the original")
	}
}

func TestTemplateMarshalEmptyListsAsArrays(t *testing.T) {
	raw, err := json.Marshal(Template{Mode: ModeVertical})
	if err != nil {
		t.Fatal(err)
	}
	s := string(raw)
	if strings.Contains(s, "null") {
		t.Errorf("marshaled template contains null lists: %s", s)
	}
	if !strings.Contains(s, `"header_tokens":[]`) || !strings.Contains(s, `"item_tokens":[]`) {
		t.Errorf("marshaled template = %s, want empty arrays", s)
	}
}
