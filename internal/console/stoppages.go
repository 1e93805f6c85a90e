package console

import (
	"context"
	"fmt"

	"github.com/tissage-sgq/shiftconsole/internal/clients/shiftapi"
	"github.com/tissage-sgq/shiftconsole/internal/domain"
	"github.com/tissage-sgq/shiftconsole/internal/modules/stoppage"
)

// DeclareStoppage records a stoppage at once under a temporary id, then
// creates it on the server when its reason is in the catalog. The entry keeps
// the temporary id if the server refuses it; the session still carries it.
func (c *Console) DeclareStoppage(ctx context.Context, d stoppage.Declaration) (domain.LostTimeEntry, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.LostTimeEntry{}, ErrClosed
	}
	e, err := c.stops.Declare(d)
	if err != nil {
		c.mu.Unlock()
		return domain.LostTimeEntry{}, err
	}
	c.commitStops()
	reasonID := c.reasonIDs[e.Reason]
	shiftID := c.form.ShiftID()
	c.mu.Unlock()

	if reasonID <= 0 {
		return e, nil
	}
	created, err := c.api.CreateLostTimeEntry(ctx, shiftapi.LostTimeEntryCreate{
		ShiftID:  shiftID,
		ReasonID: reasonID,
		Comment:  e.Comment,
		Duration: e.Duration,
	})
	if err != nil {
		c.log.Warn("stoppage kept locally", "reason", e.Reason, "error", err)
		return e, nil
	}
	if created.ID == "" {
		return e, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return e, nil
	}
	c.stops.Confirm(e.ID, created.ID)
	c.commitStops()
	e.ID = created.ID
	return e, nil
}

// RemoveStoppage deletes an entry. Entries known to the server are deleted
// there first and stay in the log when that fails.
func (c *Console) RemoveStoppage(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	found := false
	for _, e := range c.stops.Entries() {
		if e.ID == id {
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return fmt.Errorf("%w: %s", stoppage.ErrNotFound, id)
	}

	if !stoppage.IsTemporary(id) {
		if err := c.api.DeleteLostTimeEntry(ctx, id); err != nil {
			return fmt.Errorf("delete stoppage %s: %w", id, err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if _, err := c.stops.Remove(id); err != nil {
		return err
	}
	c.commitStops()
	return nil
}
