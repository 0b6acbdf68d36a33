package handler

import (
	"context"
	"fmt"
	"yamble/internal/core/domain"
	"yamble/internal/core/port"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// CommandPublisher is the subset of *discordgo.Session used to publish commands.
type CommandPublisher interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

var voiceChannelTypes = []discordgo.ChannelType{
	discordgo.ChannelTypeGuildVoice,
	discordgo.ChannelTypeGuildStageVoice,
}

// ApplicationCommands converts the registered commands into their discord
// declarations, preserving order.
func ApplicationCommands(cmds []port.Command) []*discordgo.ApplicationCommand {
	out := make([]*discordgo.ApplicationCommand, 0, len(cmds))

	for _, cmd := range cmds {
		ac := &discordgo.ApplicationCommand{
			Name:        cmd.GetCommand(),
			Description: cmd.Description(),
		}

		for _, p := range cmd.Params() {
			opt := &discordgo.ApplicationCommandOption{
				Name:        p.Name,
				Description: p.Description,
				Type:        optionType(p.Type),
				Required:    p.Required,
			}
			if p.Type == domain.OptionChannel {
				opt.ChannelTypes = voiceChannelTypes
			}
			ac.Options = append(ac.Options, opt)
		}

		out = append(out, ac)
	}

	return out
}

func optionType(t domain.OptionType) discordgo.ApplicationCommandOptionType {
	switch t {
	case domain.OptionBool:
		return discordgo.ApplicationCommandOptionBoolean
	case domain.OptionChannel:
		return discordgo.ApplicationCommandOptionChannel
	case domain.OptionAttachment:
		return discordgo.ApplicationCommandOptionAttachment
	default:
		return discordgo.ApplicationCommandOptionString
	}
}

// Publish replaces the application's command set with cmds. An empty guildID
// publishes globally.
func Publish(ctx context.Context, publisher CommandPublisher, appID, guildID string, cmds []port.Command) error {
	published, err := publisher.ApplicationCommandBulkOverwrite(appID, guildID, ApplicationCommands(cmds), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("could not publish commands: %w", err)
	}

	log.Info().Int("count", len(published)).Str("guildId", guildID).Msg("published commands")

	return nil
}
