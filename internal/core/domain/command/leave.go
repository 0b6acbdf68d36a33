package command

import (
	"context"
	"fmt"
	"yamble/internal/core/domain"
	"yamble/internal/core/port"
	"yamble/internal/core/service"
)

type Leave struct {
	sessions *service.SessionStore
	command  string
}

func NewLeave(sessions *service.SessionStore, command string) *Leave {
	return &Leave{sessions: sessions, command: command}
}

func (l *Leave) GetCommand() string {
	return l.command
}

func (l *Leave) Description() string {
	return "Make Yamble leave voice."
}

func (l *Leave) Params() []domain.Param {
	return nil
}

func (l *Leave) Parse(_ []domain.Option) (port.Request, error) {
	return &leaveRequest{cmd: l}, nil
}

type leaveRequest struct {
	cmd *Leave
}

func (r *leaveRequest) Execute(ctx context.Context, inv *domain.Invocation, reply port.Replier) error {
	guildID, err := requireGuild(inv)
	if err != nil {
		return err
	}

	left, ok, err := r.cmd.sessions.Leave(ctx, guildID)
	if err != nil {
		return err
	}

	if !ok {
		return reply.Reply(ctx, "Nothing to leave! I'm not in a voice channel.")
	}

	return reply.Reply(ctx, fmt.Sprintf("Left %s.", left.Mention()))
}
