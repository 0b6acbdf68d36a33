package service

import (
	"context"
	"errors"
	"slices"
	"yamble/internal/core/domain"
	"yamble/internal/core/port"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Authorizer interface {
	IsAuthorized(ctx context.Context, inv *domain.Invocation, reply port.Replier) bool
}

type GuildAuthorizer struct {
	allowlist []string
}

func NewAuthorizer() (*GuildAuthorizer, error) {
	var list []string

	err := viper.UnmarshalKey("discord.allowed_guild_ids", &list)
	if err != nil {
		return nil, errors.New("failed to load allowed guild IDs")
	}

	return &GuildAuthorizer{allowlist: list}, nil
}

const forbidden = "Yamble is not enabled for this server."

// IsAuthorized allows every guild when the allowlist is empty. Invocations outside
// of a guild are left to the commands themselves.
func (a *GuildAuthorizer) IsAuthorized(ctx context.Context, inv *domain.Invocation, reply port.Replier) bool {
	if len(a.allowlist) == 0 || inv.GuildID == "" {
		return true
	}

	if slices.Contains(a.allowlist, inv.GuildID) {
		return true
	}

	if err := reply.ReplyRestricted(ctx, forbidden); err != nil {
		log.Err(err).Str("guildId", inv.GuildID).Msg("failed to send unauthorized warning")
	}

	return false
}
