package format

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no template is stored for a kind; the
// service substitutes the shipped default.
var ErrNotFound = errors.New("template not found")

// StoredTemplate is a persisted user-authored template. One row per
// kind; the engine itself never touches storage.
type StoredTemplate struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	Kind      TemplateKind `db:"kind" json:"kind"`
	Template  Template     `db:"template" json:"template"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// TemplateRepository persists copy templates keyed by kind.
type TemplateRepository interface {
	GetByKind(ctx context.Context, kind TemplateKind) (*StoredTemplate, error)
	List(ctx context.Context) ([]*StoredTemplate, error)
	Save(ctx context.Context, st *StoredTemplate) error
	Delete(ctx context.Context, kind TemplateKind) error
}
