package guild

import (
	"context"
	"errors"
	"fmt"
	"yamble/internal/core/domain"

	"github.com/bwmarrin/discordgo"
)

// StateReader is the subset of *discordgo.State the directory reads.
type StateReader interface {
	Channel(channelID string) (*discordgo.Channel, error)
	VoiceState(guildID, userID string) (*discordgo.VoiceState, error)
}

// ChannelFetcher loads a channel over REST when the state cache misses.
type ChannelFetcher func(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)

type Directory struct {
	state StateReader
	fetch ChannelFetcher
}

func NewDirectory(state StateReader, fetch ChannelFetcher) *Directory {
	return &Directory{state: state, fetch: fetch}
}

// NewDiscordDirectory reads from the session's state cache, falling back to REST.
func NewDiscordDirectory(s *discordgo.Session) *Directory {
	return NewDirectory(s.State, s.Channel)
}

func (d *Directory) VoiceChannel(ctx context.Context, guildID, channelID string) (domain.ChannelRef, error) {
	ch, err := d.channel(ctx, channelID)
	if err != nil {
		return domain.ChannelRef{}, err
	}

	if ch.GuildID != guildID || !isVoice(ch.Type) {
		return domain.ChannelRef{}, fmt.Errorf("voice channel %s: %w", channelID, domain.ErrNotFound)
	}

	return domain.ChannelRef{ID: ch.ID, Name: ch.Name}, nil
}

func (d *Directory) UserVoiceChannel(ctx context.Context, guildID, userID string) (domain.ChannelRef, error) {
	vs, err := d.state.VoiceState(guildID, userID)
	if errors.Is(err, discordgo.ErrStateNotFound) || (err == nil && (vs == nil || vs.ChannelID == "")) {
		return domain.ChannelRef{}, fmt.Errorf("voice state of %s: %w", userID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.ChannelRef{}, err
	}

	return d.VoiceChannel(ctx, guildID, vs.ChannelID)
}

func (d *Directory) channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	ch, err := d.state.Channel(channelID)
	if err == nil {
		return ch, nil
	}
	if !errors.Is(err, discordgo.ErrStateNotFound) || d.fetch == nil {
		return nil, fmt.Errorf("channel %s: %w", channelID, domain.ErrNotFound)
	}

	ch, err = d.fetch(channelID, discordgo.WithContext(ctx))
	if err != nil {
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == 404 {
			return nil, fmt.Errorf("channel %s: %w", channelID, domain.ErrNotFound)
		}
		return nil, err
	}

	return ch, nil
}

func isVoice(t discordgo.ChannelType) bool {
	return t == discordgo.ChannelTypeGuildVoice || t == discordgo.ChannelTypeGuildStageVoice
}
