package format

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/labcopy/labcopy/internal/domain/labs"
	"github.com/labcopy/labcopy/internal/domain/meds"
)

// Service layers template persistence and defaults over the pure
// rendering engine.
type Service struct {
	templates TemplateRepository
	renderer  *Renderer
	logger    zerolog.Logger
}

func NewService(templates TemplateRepository, logger zerolog.Logger) *Service {
	return &Service{
		templates: templates,
		renderer:  NewRenderer(logger),
		logger:    logger,
	}
}

// GetTemplate returns the stored template for a kind, or the shipped
// default when the user has not authored one yet.
func (s *Service) GetTemplate(ctx context.Context, kind TemplateKind) (Template, error) {
	def, err := DefaultTemplate(kind)
	if err != nil {
		return Template{}, err
	}
	st, err := s.templates.GetByKind(ctx, kind)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return Template{}, fmt.Errorf("load %s template: %w", kind, err)
	}
	return st.Template, nil
}

// SaveTemplate validates and upserts the user's template for a kind.
func (s *Service) SaveTemplate(ctx context.Context, kind TemplateKind, tpl Template) error {
	if _, err := DefaultTemplate(kind); err != nil {
		return err
	}
	if err := tpl.Validate(kind); err != nil {
		return err
	}
	st := &StoredTemplate{Kind: kind, Template: tpl}
	if existing, err := s.templates.GetByKind(ctx, kind); err == nil {
		st.ID = existing.ID
	}
	if err := s.templates.Save(ctx, st); err != nil {
		return fmt.Errorf("save %s template: %w", kind, err)
	}
	s.logger.Info().Str("kind", string(kind)).Msg("template saved")
	return nil
}

// ResetTemplate drops the stored template so the default applies again.
func (s *Service) ResetTemplate(ctx context.Context, kind TemplateKind) error {
	if _, err := DefaultTemplate(kind); err != nil {
		return err
	}
	return s.templates.Delete(ctx, kind)
}

func (s *Service) ListTemplates(ctx context.Context) ([]*StoredTemplate, error) {
	return s.templates.List(ctx)
}

// RenderLabs renders with an inline template when one is supplied,
// otherwise with the stored (or default) lab template.
func (s *Service) RenderLabs(ctx context.Context, groups []labs.LabGroup, inline *Template) (string, error) {
	tpl, err := s.effectiveTemplate(ctx, KindLab, inline)
	if err != nil {
		return "", err
	}
	return s.renderer.RenderLabs(groups, tpl), nil
}

// RenderMedications is the medication-template counterpart.
func (s *Service) RenderMedications(ctx context.Context, groups []meds.MedGroup, inline *Template) (string, error) {
	tpl, err := s.effectiveTemplate(ctx, KindMedication, inline)
	if err != nil {
		return "", err
	}
	return s.renderer.RenderMedications(groups, tpl), nil
}

func (s *Service) effectiveTemplate(ctx context.Context, kind TemplateKind, inline *Template) (Template, error) {
	if inline != nil {
		return *inline, nil
	}
	return s.GetTemplate(ctx, kind)
}
