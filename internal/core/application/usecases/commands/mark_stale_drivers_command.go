package commands

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrMarkStaleDriversCommandIsNotConstructed = errors.New(
	"MarkStaleDriversCommand must be created via NewMarkStaleDriversCommand constructor",
)

// MarkStaleDriversCommand triggers the periodic sweep that flips drivers
// whose position reports stopped beyond the staleness window to OFFLINE.
// This is a parameterless command; the window is handler configuration.
type MarkStaleDriversCommand struct {
	guard guard.ConstructorGuard
}

// NewMarkStaleDriversCommand creates a new command to trigger the sweep.
func NewMarkStaleDriversCommand() MarkStaleDriversCommand {
	return MarkStaleDriversCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c *MarkStaleDriversCommand) Validate() error {
	return c.guard.Validate(
		ErrMarkStaleDriversCommandIsNotConstructed,
	)
}
