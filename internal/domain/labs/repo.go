package labs

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RangeOverride is a user-authored custom reference range for one
// (order code, facility) pair. It wins unconditionally over string
// parsing when the pipeline resolves that test's range.
type RangeOverride struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OrderCode string    `db:"order_code" json:"order_code"`
	Facility  string    `db:"facility" json:"facility"`
	Min       *float64  `db:"min_value" json:"min"`
	Max       *float64  `db:"max_value" json:"max"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RangeOverrideRepository persists custom ranges. List returns every
// override (the resolver needs them all); ListPage serves the API.
type RangeOverrideRepository interface {
	List(ctx context.Context) ([]*RangeOverride, error)
	ListPage(ctx context.Context, limit, offset int) ([]*RangeOverride, int, error)
	Get(ctx context.Context, orderCode, facility string) (*RangeOverride, error)
	Upsert(ctx context.Context, ov *RangeOverride) error
	Delete(ctx context.Context, orderCode, facility string) error
}

// OverrideMap converts stored overrides into the resolver's lookup
// shape.
func OverrideMap(ovs []*RangeOverride) map[OverrideKey]Range {
	m := make(map[OverrideKey]Range, len(ovs))
	for _, ov := range ovs {
		m[OverrideKey{OrderCode: ov.OrderCode, Facility: ov.Facility}] = Range{Min: ov.Min, Max: ov.Max}
	}
	return m
}
