package format

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/labcopy/labcopy/internal/domain/labs"
)

type mockTemplateRepo struct {
	stored  map[TemplateKind]*StoredTemplate
	failGet bool
	deleted []TemplateKind
}

func newMockTemplateRepo() *mockTemplateRepo {
	return &mockTemplateRepo{stored: map[TemplateKind]*StoredTemplate{}}
}

func (m *mockTemplateRepo) GetByKind(ctx context.Context, kind TemplateKind) (*StoredTemplate, error) {
	if m.failGet {
		return nil, fmt.Errorf("db down")
	}
	st, ok := m.stored[kind]
	if !ok {
		return nil, ErrNotFound
	}
	return st, nil
}

func (m *mockTemplateRepo) List(ctx context.Context) ([]*StoredTemplate, error) {
	out := make([]*StoredTemplate, 0, len(m.stored))
	for _, st := range m.stored {
		out = append(out, st)
	}
	return out, nil
}

func (m *mockTemplateRepo) Save(ctx context.Context, st *StoredTemplate) error {
	m.stored[st.Kind] = st
	return nil
}

func (m *mockTemplateRepo) Delete(ctx context.Context, kind TemplateKind) error {
	m.deleted = append(m.deleted, kind)
	delete(m.stored, kind)
	return nil
}

func TestServiceGetTemplateDefault(t *testing.T) {
	svc := NewService(newMockTemplateRepo(), zerolog.Nop())
	tpl, err := svc.GetTemplate(context.Background(), KindLab)
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}
	if len(tpl.ItemTokens) != len(DefaultLabTemplate().ItemTokens) {
		t.Errorf("got %+v, want the shipped default", tpl)
	}
	if _, err := svc.GetTemplate(context.Background(), "imaging"); err == nil {
		t.Error("unknown kind accepted")
	}
}

func TestServiceGetTemplateStored(t *testing.T) {
	repo := newMockTemplateRepo()
	custom := DefaultLabTemplate()
	custom.ItemSeparator = " | "
	repo.stored[KindLab] = &StoredTemplate{ID: uuid.New(), Kind: KindLab, Template: custom}

	svc := NewService(repo, zerolog.Nop())
	tpl, err := svc.GetTemplate(context.Background(), KindLab)
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}
	if tpl.ItemSeparator != " | " {
		t.Errorf("separator = %q, want the stored template", tpl.ItemSeparator)
	}
}

func TestServiceSaveTemplate(t *testing.T) {
	repo := newMockTemplateRepo()
	svc := NewService(repo, zerolog.Nop())

	tpl := DefaultLabTemplate()
	tpl.Mode = ModeHorizontal
	if err := svc.SaveTemplate(context.Background(), KindLab, tpl); err != nil {
		t.Fatalf("SaveTemplate: %v", err)
	}
	if repo.stored[KindLab] == nil || repo.stored[KindLab].Template.Mode != ModeHorizontal {
		t.Errorf("stored = %+v", repo.stored[KindLab])
	}

	// Saving again keeps the existing row id.
	id := uuid.New()
	repo.stored[KindLab].ID = id
	if err := svc.SaveTemplate(context.Background(), KindLab, tpl); err != nil {
		t.Fatalf("SaveTemplate: %v", err)
	}
	if repo.stored[KindLab].ID != id {
		t.Error("resave replaced the row id")
	}
}

func TestServiceSaveTemplateRejectsInvalid(t *testing.T) {
	svc := NewService(newMockTemplateRepo(), zerolog.Nop())
	bad := DefaultLabTemplate()
	bad.ItemTokens = append(bad.ItemTokens, FieldToken("t9", SectionItem, FieldDrugName))
	if err := svc.SaveTemplate(context.Background(), KindLab, bad); err == nil {
		t.Error("invalid template saved")
	}
	if err := svc.SaveTemplate(context.Background(), "imaging", DefaultLabTemplate()); err == nil {
		t.Error("unknown kind saved")
	}
}

func TestServiceResetTemplate(t *testing.T) {
	repo := newMockTemplateRepo()
	repo.stored[KindLab] = &StoredTemplate{Kind: KindLab, Template: DefaultLabTemplate()}
	svc := NewService(repo, zerolog.Nop())

	if err := svc.ResetTemplate(context.Background(), KindLab); err != nil {
		t.Fatalf("ResetTemplate: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != KindLab {
		t.Errorf("deleted = %v", repo.deleted)
	}
	// Next read falls back to the default.
	tpl, err := svc.GetTemplate(context.Background(), KindLab)
	if err != nil || tpl.ItemSeparator != ", " {
		t.Errorf("got %+v, %v", tpl, err)
	}
}

func TestServiceRenderLabsUsesStoredTemplate(t *testing.T) {
	repo := newMockTemplateRepo()
	custom := DefaultLabTemplate()
	custom.Mode = ModeHorizontal
	custom.ItemSeparator = "; "
	repo.stored[KindLab] = &StoredTemplate{Kind: KindLab, Template: custom}
	svc := NewService(repo, zerolog.Nop())

	groups := []labs.LabGroup{{
		Date: "2024/01/10", Facility: "Hosp A",
		Items: []labs.NormalizedLabItem{{ItemName: "Cholesterol", Value: "211", Unit: "mg/dL"}},
	}}
	text, err := svc.RenderLabs(context.Background(), groups, nil)
	if err != nil {
		t.Fatalf("RenderLabs: %v", err)
	}
	if text != "2024/01/10 Hosp A Cholesterol: 211 mg/dL" {
		t.Errorf("text = %q", text)
	}
}

func TestServiceRenderLabsInlineTemplateWins(t *testing.T) {
	repo := newMockTemplateRepo()
	repo.failGet = true // storage must not even be consulted
	svc := NewService(repo, zerolog.Nop())

	inline := DefaultLabTemplate()
	inline.Mode = ModeHorizontal
	inline.ItemSeparator = "; "
	groups := []labs.LabGroup{{
		Date: "2024/01/10", Facility: "Hosp A",
		Items: []labs.NormalizedLabItem{{ItemName: "Cr", Value: "0.9", Unit: "mg/dL"}},
	}}
	text, err := svc.RenderLabs(context.Background(), groups, &inline)
	if err != nil {
		t.Fatalf("RenderLabs: %v", err)
	}
	if text != "2024/01/10 Hosp A Cr: 0.9 mg/dL" {
		t.Errorf("text = %q", text)
	}
}
