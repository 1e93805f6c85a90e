package console

import (
	"context"
	"fmt"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
	"github.com/tissage-sgq/shiftconsole/internal/modules/summary"
	"github.com/tissage-sgq/shiftconsole/internal/realtime/bus"
	"github.com/tissage-sgq/shiftconsole/internal/session"
)

// PatchSummary applies a partial update of the sticky bar. A new roll id is
// checked against the server.
func (c *Console) PatchSummary(ctx context.Context, p summary.Patch) (domain.SummaryFields, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.SummaryFields{}, ErrClosed
	}
	idChanged := c.bar.Apply(p)
	c.commitSummary()
	f := c.bar.Fields()
	c.mu.Unlock()

	if idChanged {
		c.CheckRollID(ctx)
	}
	return f, nil
}

// CheckRollID asks the server whether the current roll id is taken. The answer
// is dropped if the id moved meanwhile; a failed check leaves the status as is.
func (c *Console) CheckRollID(ctx context.Context) summary.IDStatus {
	c.mu.Lock()
	id := c.bar.RollID()
	if id == "" {
		c.bar.SetIDExists(false)
		st := c.bar.IDStatus()
		c.mu.Unlock()
		return st
	}
	c.mu.Unlock()

	exists, err := c.api.RollIDExists(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.log.Warn("roll id check failed", "roll_id", id, "error", err)
		return c.bar.IDStatus()
	}
	if c.bar.RollID() == id {
		c.bar.SetIDExists(exists)
	}
	return c.bar.IDStatus()
}

func (c *Console) RollPreview() summary.Preview {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bar.Preview()
}

// SaveRoll sends the roll in progress to the server. On success production
// counters move, the grid is cleared for the next roll and RollSaved is
// published. Edits made while the request is in flight are discarded with the
// grid.
func (c *Console) SaveRoll(ctx context.Context, comment string) (domain.RollRecord, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.RollRecord{}, ErrClosed
	}
	if c.saving {
		c.mu.Unlock()
		return domain.RollRecord{}, ErrSaveInProgress
	}
	req, err := c.bar.BuildRoll(c.form.ShiftID(), c.grid.Data(), comment)
	if err != nil {
		c.mu.Unlock()
		return domain.RollRecord{}, err
	}
	c.saving = true
	c.mu.Unlock()

	rec, err := c.api.CreateRoll(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.saving = false
	if err != nil {
		return domain.RollRecord{}, fmt.Errorf("save roll %s: %w", req.RollID, err)
	}
	if c.closed {
		return rec, ErrClosed
	}

	nonConform := req.Status == domain.RollNonConforme
	c.bar.Record(rec, nonConform)
	c.grid.Reset()
	c.commitRoll()
	c.commitSummary()
	c.store.Production().Set(c.bar.Production())
	c.schedule(session.AreaProduction)
	bus.Publish(c.bus, bus.TopicRollSaved, bus.RollSaved{Record: rec, NonConform: nonConform})
	return rec, nil
}
