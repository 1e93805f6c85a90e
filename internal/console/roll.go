package console

import (
	"github.com/tissage-sgq/shiftconsole/internal/domain"
	"github.com/tissage-sgq/shiftconsole/internal/modules/roll"
)

// InputThickness handles one thickness input event on the grid.
func (c *Console) InputThickness(row int, col domain.Column, raw string) (roll.InputResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return roll.InputResult{}, ErrClosed
	}
	res, err := c.grid.HandleThicknessInput(row, col, raw)
	if err != nil {
		return res, err
	}
	if res.Changed {
		c.commitRoll()
	}
	return res, nil
}

func (c *Console) RemoveThickness(row int, col domain.Column) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, ErrClosed
	}
	removed := c.grid.RemoveThickness(row, col)
	if removed {
		c.commitRoll()
	}
	return removed, nil
}

// RemoveNokBadge drops the reject badge of a cell whose input is empty.
func (c *Console) RemoveNokBadge(row int, col domain.Column) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, ErrClosed
	}
	removed, err := c.grid.RemoveNokBadge(row, col)
	if err != nil {
		return false, err
	}
	if removed {
		c.commitRoll()
	}
	return removed, nil
}

func (c *Console) AddDefect(row int, col domain.Column, typeID int) (domain.Defect, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.Defect{}, ErrClosed
	}
	d, err := c.grid.AddDefect(row, col, typeID)
	if err != nil {
		return domain.Defect{}, err
	}
	c.commitRoll()
	return d, nil
}

func (c *Console) RemoveDefect(row int, col domain.Column) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, ErrClosed
	}
	removed := c.grid.RemoveDefect(row, col)
	if removed {
		c.commitRoll()
	}
	return removed, nil
}

// NextCell is the thickness cell after (row, col) in entry order, or before it
// when reverse is set.
func (c *Console) NextCell(row int, col domain.Column, reverse bool) (domain.Cell, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grid.NextCell(row, col, reverse)
}
