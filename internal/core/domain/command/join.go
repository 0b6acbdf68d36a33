package command

import (
	"context"
	"fmt"
	"yamble/internal/core/domain"
	"yamble/internal/core/port"
	"yamble/internal/core/service"

	"github.com/rs/zerolog/log"
)

type Join struct {
	sessions  *service.SessionStore
	directory port.GuildDirectory
	command   string
}

func NewJoin(sessions *service.SessionStore, directory port.GuildDirectory, command string) *Join {
	return &Join{sessions: sessions, directory: directory, command: command}
}

func (j *Join) GetCommand() string {
	return j.command
}

func (j *Join) Description() string {
	return "Ask Yamble to join a voice channel. (Or the one you're in!)"
}

func (j *Join) Params() []domain.Param {
	return []domain.Param{targetParamDecl()}
}

func (j *Join) Parse(options []domain.Option) (port.Request, error) {
	args, err := ScanOptions(j.Params(), options)
	if err != nil {
		return nil, err
	}

	target, _ := args.Channel(targetParam)

	return &joinRequest{cmd: j, target: target}, nil
}

type joinRequest struct {
	cmd    *Join
	target string
}

func (r *joinRequest) Execute(ctx context.Context, inv *domain.Invocation, reply port.Replier) error {
	guildID, err := requireGuild(inv)
	if err != nil {
		return err
	}

	target, err := resolveTarget(ctx, r.cmd.directory, inv, r.target)
	if err != nil {
		return err
	}

	result, err := r.cmd.sessions.Join(ctx, guildID, target, nil)
	if err != nil {
		return err
	}

	log.Debug().Str("guildId", guildID).Str("channel", target.ID).Int("outcome", int(result.Outcome)).
		Msg("join handled")

	return reply.Reply(ctx, joinMessage(result))
}

func joinMessage(result service.JoinResult) string {
	switch result.Outcome {
	case service.AlreadyIn:
		return fmt.Sprintf("Already in %s!", result.Channel.Mention())
	case service.Switched:
		return fmt.Sprintf("Switched to %s from %s!", result.Channel.Mention(), result.Previous.Mention())
	default:
		return fmt.Sprintf("Joined channel %s!", result.Channel.Mention())
	}
}
