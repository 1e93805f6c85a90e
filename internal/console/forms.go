package console

import (
	"context"
	"fmt"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
	"github.com/tissage-sgq/shiftconsole/internal/modules/order"
	"github.com/tissage-sgq/shiftconsole/internal/modules/quality"
	"github.com/tissage-sgq/shiftconsole/internal/modules/shift"
)

// PatchQuality applies a partial update of the QC panel.
func (c *Console) PatchQuality(p quality.Patch) (domain.QualityControl, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.QualityControl{}, ErrClosed
	}
	if c.qc.Apply(p) {
		c.commitQuality()
	}
	return c.qc.Data(), nil
}

// PatchShift applies a partial update of the shift form.
func (c *Console) PatchShift(p shift.Patch) (domain.ShiftFields, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ShiftFields{}, ErrClosed
	}
	changed, err := c.form.Apply(p)
	if err != nil {
		return c.form.Fields(), err
	}
	if changed {
		c.commitShift(true)
	}
	return c.form.Fields(), nil
}

// ShiftSaveAction is the state of the shift save button. Saved shifts are
// listed to detect a duplicate id; a failed listing assumes none.
func (c *Console) ShiftSaveAction(ctx context.Context) domain.ActionState {
	c.mu.Lock()
	id := c.form.ShiftID()
	c.mu.Unlock()

	duplicate := false
	if id != "" {
		saved, err := c.api.ListShifts(ctx)
		if err != nil {
			c.log.Warn("shift list unavailable, duplicate check skipped", "error", err)
		} else {
			duplicate = shift.IsDuplicate(id, saved)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.SaveAction(c.qc.Status(), duplicate)
}

// PatchOrder applies a partial update of the production order. A new target
// length reshapes the grid before the order itself is announced.
func (c *Console) PatchOrder(ctx context.Context, p order.Patch) (domain.OrderFields, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.OrderFields{}, ErrClosed
	}
	ch, err := c.ord.Apply(p)
	if err != nil {
		f := c.ord.Fields()
		c.mu.Unlock()
		return f, err
	}
	if ch.Any() {
		c.commitOrder(ch)
	}
	f := c.ord.Fields()
	c.mu.Unlock()

	if ch.Order {
		c.CheckRollID(ctx)
	}
	return f, nil
}

// SelectProfile loads a profile from the server and makes it the active one.
// id 0 clears the selection.
func (c *Console) SelectProfile(ctx context.Context, id int) (*domain.Profile, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if id <= 0 {
		c.prof.Select(nil)
		c.commitProfile(true)
		c.mu.Unlock()
		return nil, nil
	}
	if err := c.prof.CheckID(id); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.mu.Unlock()

	p, err := c.api.GetProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load profile %d: %w", id, err)
	}
	if err := c.api.ActivateProfile(ctx, id); err != nil {
		c.log.Warn("profile activation failed", "profile_id", id, "error", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	c.prof.Select(p)
	c.commitProfile(true)
	return p, nil
}

// ToggleMode flips a machine mode on the server and follows its answer.
func (c *Console) ToggleMode(ctx context.Context, id int) (domain.Mode, error) {
	m, err := c.api.ToggleMode(ctx, id)
	if err != nil {
		return domain.Mode{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return m, ErrClosed
	}
	if m.ID == 0 {
		m.ID = id
	}
	if err := c.prof.ModeToggled(m.ID, m.IsEnabled); err != nil {
		return m, err
	}
	c.commitProfile(true)
	return m, nil
}
