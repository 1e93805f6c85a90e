package console

import (
	"context"
	"fmt"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

// AnswerChecklist records an answer; giving the same answer again clears it.
func (c *Console) AnswerChecklist(itemID int, value string) (domain.ChecklistFields, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ChecklistFields{}, ErrClosed
	}
	if _, err := c.list.Answer(itemID, value); err != nil {
		return c.list.Fields(), err
	}
	c.commitChecklist()
	return c.list.Fields(), nil
}

// SignChecklist signs the checklist. A complete checklist of an identified
// shift is then submitted to the server.
func (c *Console) SignChecklist(ctx context.Context, signature string) (domain.ChecklistFields, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ChecklistFields{}, ErrClosed
	}
	if err := c.list.Sign(signature); err != nil {
		f := c.list.Fields()
		c.mu.Unlock()
		return f, err
	}
	c.commitChecklist()
	f := c.list.Fields()
	submit := c.list.Complete() && f.Signature != ""
	shiftID := c.form.ShiftID()
	sub := c.list.Submission(shiftID)
	c.mu.Unlock()

	if !submit {
		return f, nil
	}
	if shiftID == "" {
		return f, ErrNoShift
	}
	if _, err := c.api.SubmitChecklist(ctx, sub); err != nil {
		return f, fmt.Errorf("submit checklist: %w", err)
	}
	return f, nil
}
