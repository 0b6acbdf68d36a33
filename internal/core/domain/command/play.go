package command

import (
	"context"
	"fmt"
	"strings"
	"yamble/internal/core/domain"
	"yamble/internal/core/port"
	"yamble/internal/core/service"

	"github.com/rs/zerolog/log"
)

const musicParam = "music"

type Play struct {
	sessions  *service.SessionStore
	directory port.GuildDirectory
	resolver  port.AudioResolver
	command   string
}

type PlayParams struct {
	Sessions  *service.SessionStore
	Directory port.GuildDirectory
	Resolver  port.AudioResolver
	Command   string
}

func NewPlay(p PlayParams) *Play {
	return &Play{
		sessions:  p.Sessions,
		directory: p.Directory,
		resolver:  p.Resolver,
		command:   p.Command,
	}
}

func (p *Play) GetCommand() string {
	return p.command
}

func (p *Play) Description() string {
	return "Ask Yamble to play something."
}

func (p *Play) Params() []domain.Param {
	return []domain.Param{
		{
			Name:        musicParam,
			Description: "Music to play",
			Type:        domain.OptionString,
			Required:    true,
		},
		targetParamDecl(),
	}
}

func (p *Play) Parse(options []domain.Option) (port.Request, error) {
	args, err := ScanOptions(p.Params(), options)
	if err != nil {
		return nil, err
	}

	music, _ := args.String(musicParam)
	music = strings.TrimSpace(music)
	if music == "" {
		return nil, domain.NewUserError("missing `%s` required parameter", musicParam)
	}

	target, _ := args.Channel(targetParam)

	return &playRequest{cmd: p, music: music, target: target}, nil
}

type playRequest struct {
	cmd    *Play
	music  string
	target string
}

func (r *playRequest) Execute(ctx context.Context, inv *domain.Invocation, reply port.Replier) error {
	l := log.With().
		Str("guildId", inv.GuildID).
		Str("music", r.music).
		Str("func", "Execute").
		Logger()

	guildID, err := requireGuild(inv)
	if err != nil {
		return err
	}

	target, err := resolveTarget(ctx, r.cmd.directory, inv, r.target)
	if err != nil {
		return err
	}

	if r.cmd.resolver.IsRemote(r.music) {
		// remote media takes a while, the reply will arrive as a followup
		if err := reply.Defer(ctx); err != nil {
			return err
		}
	}

	audio, err := r.cmd.resolver.Resolve(ctx, r.music)
	if err != nil {
		return err
	}

	l.Debug().Int("bytes", len(audio)).Msg("resolved audio")

	track := domain.Track{Reference: r.music, Audio: audio}
	result, err := r.cmd.sessions.Join(ctx, guildID, target, func(conn port.Connection) error {
		conn.Enqueue(track)
		return nil
	})
	if err != nil {
		return err
	}

	return reply.Reply(ctx, playMessage(result, r.music))
}

func playMessage(result service.JoinResult, music string) string {
	switch result.Outcome {
	case service.Switched:
		return fmt.Sprintf("Switched to %s from %s!\nPlaying %s",
			result.Channel.Mention(), result.Previous.Mention(), music)
	case service.Joined:
		return fmt.Sprintf("Joined channel %s!\nPlaying %s", result.Channel.Mention(), music)
	default:
		return fmt.Sprintf("Playing %s in %s!", music, result.Channel.Mention())
	}
}
