package port

import (
	"context"
	"yamble/internal/core/domain"
)

type Command interface {
	// GetCommand returns the unique name the command is invoked by.
	GetCommand() string
	// Description returns the human readable summary published with the command.
	Description() string
	// Params returns the ordered parameter declarations of the command.
	Params() []domain.Param
	// Parse validates raw options and returns a request ready to be executed once.
	Parse(options []domain.Option) (Request, error)
}

// Request is a parsed, validated invocation of one command.
type Request interface {
	Execute(ctx context.Context, inv *domain.Invocation, reply Replier) error
}

type CommandRegistry interface {
	// Register adds a new command to the command registry.
	Register(command Command)
	// Get retrieves a registered Command based on its name or returns an error if not found.
	Get(name string) (Command, error)
	// ListCommands returns all registered commands in registration order.
	ListCommands() []Command
}
