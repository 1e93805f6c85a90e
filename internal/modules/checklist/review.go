package checklist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

// MaxSignAll bounds how many checklists one "sign all" submits.
const MaxSignAll = 5

var ErrBadVisa = errors.New("visa must be at least 2 characters")

// Signer posts a management visa for a pending checklist.
type Signer interface {
	SignChecklist(ctx context.Context, id int, visa string) error
}

// NormalizeVisa upper-cases the initials and checks their length.
func NormalizeVisa(visa string) (string, error) {
	v := strings.ToUpper(strings.TrimSpace(visa))
	if len([]rune(v)) < 2 {
		return "", ErrBadVisa
	}
	return v, nil
}

// SignResult is the outcome of one visa submission.
type SignResult struct {
	ID    int    `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// VisaRequest pairs a pending checklist with the visa typed for it.
type VisaRequest struct {
	ID   int    `json:"id"`
	Visa string `json:"visa"`
}

// Review is the manager side of the checklists.
type Review struct {
	signer Signer
}

func NewReview(signer Signer) *Review {
	return &Review{signer: signer}
}

func (r *Review) Sign(ctx context.Context, id int, visa string) error {
	v, err := NormalizeVisa(visa)
	if err != nil {
		return err
	}
	if err := r.signer.SignChecklist(ctx, id, v); err != nil {
		return fmt.Errorf("sign checklist %d: %w", id, err)
	}
	return nil
}

// SignAll submits, one after the other, those of the first MaxSignAll requests
// that carry a valid visa. A failed signature does not stop the following ones.
func (r *Review) SignAll(ctx context.Context, reqs []VisaRequest) []SignResult {
	if len(reqs) > MaxSignAll {
		reqs = reqs[:MaxSignAll]
	}
	var out []SignResult
	for _, req := range reqs {
		v, err := NormalizeVisa(req.Visa)
		if err != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			out = append(out, SignResult{ID: req.ID, Error: err.Error()})
			continue
		}
		res := SignResult{ID: req.ID, OK: true}
		if err := r.signer.SignChecklist(ctx, req.ID, v); err != nil {
			res = SignResult{ID: req.ID, Error: err.Error()}
		}
		out = append(out, res)
	}
	return out
}

// Remaining drops the signed checklists from a pending list.
func Remaining(pending []domain.PendingChecklist, results []SignResult) []domain.PendingChecklist {
	signed := map[int]bool{}
	for _, r := range results {
		if r.OK {
			signed[r.ID] = true
		}
	}
	out := make([]domain.PendingChecklist, 0, len(pending))
	for _, p := range pending {
		if !signed[p.ID] {
			out = append(out, p)
		}
	}
	return out
}
