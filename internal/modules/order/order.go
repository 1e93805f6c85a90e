package order

import (
	"errors"
	"fmt"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

var ErrNegativeLength = errors.New("target length must not be negative")

type Patch struct {
	Current      domain.OptionalString `json:"of_en_cours"`
	TargetLength domain.OptionalInt    `json:"target_length"`
	Cutting      domain.OptionalString `json:"of_decoupe"`
}

// Change tells which fan-out a patch needs.
type Change struct {
	Order  bool
	Target bool
}

func (c Change) Any() bool { return c.Order || c.Target }

// Order is the production order block: order in progress, target roll length
// and cutting order. Not safe for concurrent use.
type Order struct {
	f domain.OrderFields
}

func New(fields domain.OrderFields) *Order {
	if fields.TargetLength < 0 {
		fields.TargetLength = 0
	}
	return &Order{f: fields}
}

func (o *Order) Fields() domain.OrderFields { return o.f }

func (o *Order) Apply(p Patch) (Change, error) {
	next := o.f
	if p.Current.Set {
		next.Current = p.Current.Or("")
	}
	if p.Cutting.Set {
		next.Cutting = p.Cutting.Or("")
	}
	if p.TargetLength.Set {
		n := 0
		if p.TargetLength.Value != nil {
			n = *p.TargetLength.Value
		}
		if n < 0 {
			return Change{}, fmt.Errorf("%w: %d", ErrNegativeLength, n)
		}
		next.TargetLength = n
	}
	ch := Change{
		Order:  next.Current != o.f.Current || next.Cutting != o.f.Cutting,
		Target: next.TargetLength != o.f.TargetLength,
	}
	o.f = next
	return ch, nil
}
