package command

import (
	"context"
	"errors"
	"yamble/internal/core/domain"
	"yamble/internal/core/port"
	"yamble/internal/core/service"
)

// Playback is a queue control command. All of them require an existing connection.
type Playback struct {
	sessions    *service.SessionStore
	command     string
	description string
	verb        string
	act         func(conn port.Connection) (string, error)
}

func (p *Playback) GetCommand() string {
	return p.command
}

func (p *Playback) Description() string {
	return p.description
}

func (p *Playback) Params() []domain.Param {
	return nil
}

func (p *Playback) Parse(_ []domain.Option) (port.Request, error) {
	return &playbackRequest{cmd: p}, nil
}

type playbackRequest struct {
	cmd *Playback
}

func (r *playbackRequest) Execute(ctx context.Context, inv *domain.Invocation, reply port.Replier) error {
	guildID, err := requireGuild(inv)
	if err != nil {
		return err
	}

	var text string
	err = r.cmd.sessions.WithConnection(guildID, func(conn port.Connection) error {
		var actErr error
		text, actErr = r.cmd.act(conn)
		return actErr
	})
	if errors.Is(err, domain.ErrNotConnected) {
		return reply.ReplyRestricted(ctx, "Not currently playing, nothing to "+r.cmd.verb+".")
	}
	if err != nil {
		return err
	}

	return reply.ReplyRestricted(ctx, text)
}

func NewPause(sessions *service.SessionStore, command string) *Playback {
	return &Playback{
		sessions:    sessions,
		command:     command,
		description: "Pause the current track.",
		verb:        "pause",
		act: func(conn port.Connection) (string, error) {
			if err := conn.Pause(); errors.Is(err, domain.ErrNotPlaying) {
				return "Nothing is playing right now.", nil
			} else if err != nil {
				return "", err
			}
			return "Paused playback.", nil
		},
	}
}

func NewResume(sessions *service.SessionStore, command string) *Playback {
	return &Playback{
		sessions:    sessions,
		command:     command,
		description: "Resume a paused track.",
		verb:        "resume",
		act: func(conn port.Connection) (string, error) {
			if err := conn.Resume(); errors.Is(err, domain.ErrNotPlaying) {
				return "Nothing is playing right now.", nil
			} else if err != nil {
				return "", err
			}
			return "Resumed playback.", nil
		},
	}
}

func NewStop(sessions *service.SessionStore, command string) *Playback {
	return &Playback{
		sessions:    sessions,
		command:     command,
		description: "Stop playback and clear the queue.",
		verb:        "stop",
		act: func(conn port.Connection) (string, error) {
			conn.Stop()
			return "Stopped playback.", nil
		},
	}
}

func NewNext(sessions *service.SessionStore, command string) *Playback {
	return &Playback{
		sessions:    sessions,
		command:     command,
		description: "Skip to the next track.",
		verb:        "adjust",
		act: func(conn port.Connection) (string, error) {
			err := conn.Skip()
			if errors.Is(err, domain.ErrQueueExhausted) {
				conn.Stop()
				return "No next track. Playback stopped.", nil
			}
			if err != nil {
				return "", err
			}
			return "Skipped to next track.", nil
		},
	}
}

func NewPrev(sessions *service.SessionStore, command string) *Playback {
	return &Playback{
		sessions:    sessions,
		command:     command,
		description: "Go back to the previous track.",
		verb:        "adjust",
		act: func(conn port.Connection) (string, error) {
			err := conn.Previous()
			if errors.Is(err, domain.ErrQueueExhausted) {
				return "No previous track.", nil
			}
			if err != nil {
				return "", err
			}
			return "Back to previous track.", nil
		},
	}
}
