package console

import "errors"

var (
	ErrClosed         = errors.New("console is closed")
	ErrSaveInProgress = errors.New("a roll save is already in progress")
	ErrNoShift        = errors.New("shift is not identified")
)
