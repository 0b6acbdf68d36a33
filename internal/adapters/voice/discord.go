package voice

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
)

// SendTimeout bounds how long a packet may wait for the voice gateway.
const SendTimeout = 5 * time.Second

var ErrSendTimeout = errors.New("voice send timed out")

type DiscordDialer struct {
	session *discordgo.Session
}

func NewDiscordDialer(session *discordgo.Session) *DiscordDialer {
	return &DiscordDialer{session: session}
}

// Dial joins channelID. An existing connection of the guild is moved.
func (d *DiscordDialer) Dial(ctx context.Context, guildID, channelID string) (Sink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vc, err := d.session.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, err
	}

	return &discordSink{vc: vc}, nil
}

type discordSink struct {
	vc *discordgo.VoiceConnection
}

func (s *discordSink) Speaking(speaking bool) error {
	return s.vc.Speaking(speaking)
}

func (s *discordSink) Send(ctx context.Context, packet []byte) error {
	timer := time.NewTimer(SendTimeout)
	defer timer.Stop()

	select {
	case s.vc.OpusSend <- packet:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrSendTimeout
	}
}

func (s *discordSink) Disconnect() error {
	return s.vc.Disconnect()
}
