package port

import (
	"context"
	"yamble/internal/core/domain"
)

// VoiceDriver owns the streaming connections of all guilds.
type VoiceDriver interface {
	// Join connects to channelID, moving an existing connection of the guild if there is one.
	Join(ctx context.Context, guildID, channelID string) (Connection, error)
	Leave(ctx context.Context, guildID string) error
	// CurrentChannel reports the channel the driver is connected to in the guild.
	CurrentChannel(guildID string) (string, bool)
}

// Connection is the playback queue of one guild.
type Connection interface {
	Enqueue(track domain.Track)
	Skip() error
	Previous() error
	Pause() error
	Resume() error
	Stop()
}

// GuildDirectory resolves voice channels within a guild.
type GuildDirectory interface {
	// VoiceChannel returns channelID if it is a voice channel of the guild.
	VoiceChannel(ctx context.Context, guildID, channelID string) (domain.ChannelRef, error)
	// UserVoiceChannel returns the voice channel the user is currently connected to.
	UserVoiceChannel(ctx context.Context, guildID, userID string) (domain.ChannelRef, error)
}
