package command

import (
	"context"
	"errors"
	"fmt"
	"yamble/internal/core/domain"
	"yamble/internal/core/port"
)

const targetParam = "target"

func requireGuild(inv *domain.Invocation) (string, error) {
	if inv.GuildID == "" {
		return "", domain.NewUserError("command only available in a server")
	}
	return inv.GuildID, nil
}

// resolveTarget picks the explicitly requested channel, or the voice channel
// the invoking user is connected to.
func resolveTarget(ctx context.Context, directory port.GuildDirectory, inv *domain.Invocation,
	explicit string) (domain.ChannelRef, error) {
	if explicit != "" {
		ch, err := directory.VoiceChannel(ctx, inv.GuildID, explicit)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ChannelRef{}, domain.NewUserError("channel not in guild")
		}
		if err != nil {
			return domain.ChannelRef{}, fmt.Errorf("channel failed to load: %w", err)
		}
		return ch, nil
	}

	ch, err := directory.UserVoiceChannel(ctx, inv.GuildID, inv.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ChannelRef{}, domain.NewUserError("if no provided channel, caller must be in a voice channel")
	}
	if err != nil {
		return domain.ChannelRef{}, fmt.Errorf("voice state failed to load: %w", err)
	}

	return ch, nil
}

func targetParamDecl() domain.Param {
	return domain.Param{
		Name:        targetParam,
		Description: "Channel to join",
		Type:        domain.OptionChannel,
		Required:    false,
	}
}
