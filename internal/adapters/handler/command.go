package handler

import (
	"context"
	"yamble/internal/core/domain"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, inv *domain.Invocation) error
}

type Command struct {
	dispatcher Dispatcher
}

func NewCommand(dispatcher Dispatcher) *Command {
	return &Command{dispatcher: dispatcher}
}

// Handle is registered with the discord session. Each application command is
// dispatched on its own goroutine so the gateway loop is never blocked.
func (c *Command) Handle(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i == nil || i.Interaction == nil {
		return
	}

	inv, ok := ToInvocation(i.Interaction)
	if !ok {
		log.Debug().Int("type", int(i.Type)).Msg("ignoring interaction")
		return
	}

	log.Debug().Str("command", inv.Command).Str("userId", inv.UserID).Msg("received command")

	go func() {
		if err := c.dispatcher.Dispatch(context.Background(), inv); err != nil {
			log.Err(err).Str("command", inv.Command).Msg("failed to respond to command")
		}
	}()
}

// ToInvocation converts an application command interaction into an invocation.
// Options of unsupported types are dropped.
func ToInvocation(i *discordgo.Interaction) (*domain.Invocation, bool) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil, false
	}

	data := i.ApplicationCommandData()

	inv := &domain.Invocation{
		ID:      i.ID,
		Command: data.Name,
		GuildID: i.GuildID,
		UserID:  userID(i),
		Handle:  i,
	}

	for _, opt := range data.Options {
		if o, ok := toOption(opt, data.Resolved); ok {
			inv.Options = append(inv.Options, o)
		}
	}

	return inv, true
}

func toOption(opt *discordgo.ApplicationCommandInteractionDataOption, resolved *discordgo.ApplicationCommandInteractionDataResolved) (domain.Option, bool) {
	o := domain.Option{Name: opt.Name}

	switch opt.Type {
	case discordgo.ApplicationCommandOptionString:
		o.Type = domain.OptionString
		o.String = opt.StringValue()
	case discordgo.ApplicationCommandOptionBoolean:
		o.Type = domain.OptionBool
		o.Bool = opt.BoolValue()
	case discordgo.ApplicationCommandOptionChannel:
		id, ok := opt.Value.(string)
		if !ok {
			return o, false
		}
		o.Type = domain.OptionChannel
		o.ChannelID = id
	case discordgo.ApplicationCommandOptionAttachment:
		id, ok := opt.Value.(string)
		if !ok || resolved == nil {
			return o, false
		}
		a, ok := resolved.Attachments[id]
		if !ok || a == nil {
			return o, false
		}
		o.Type = domain.OptionAttachment
		o.Attachment = &domain.Attachment{
			ID:          a.ID,
			Filename:    a.Filename,
			URL:         a.URL,
			ContentType: a.ContentType,
			Size:        a.Size,
		}
	default:
		return o, false
	}

	return o, true
}

func userID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
