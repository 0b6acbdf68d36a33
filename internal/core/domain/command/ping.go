package command

import (
	"context"
	"yamble/internal/core/domain"
	"yamble/internal/core/port"
)

type Ping struct {
	command string
}

func NewPing(command string) *Ping {
	return &Ping{command: command}
}

func (p *Ping) GetCommand() string {
	return p.command
}

func (p *Ping) Description() string {
	return "Ping!"
}

func (p *Ping) Params() []domain.Param {
	return nil
}

func (p *Ping) Parse(_ []domain.Option) (port.Request, error) {
	return pingRequest{}, nil
}

type pingRequest struct{}

func (pingRequest) Execute(ctx context.Context, _ *domain.Invocation, reply port.Replier) error {
	return reply.Reply(ctx, "Pong!")
}
