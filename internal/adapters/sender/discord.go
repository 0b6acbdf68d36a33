package sender

import (
	"context"
	"errors"
	"yamble/internal/core/domain"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// DiscordMessageLimit is the maximum content length of one message.
const DiscordMessageLimit = 2000

var ErrMissingInteraction = errors.New("invocation carries no interaction")

// InteractionClient is the subset of *discordgo.Session used to answer interactions.
type InteractionClient interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DiscordSender struct {
	client InteractionClient
}

func NewDiscordSender(client InteractionClient) *DiscordSender {
	return &DiscordSender{client: client}
}

func (s *DiscordSender) SendInitial(ctx context.Context, inv *domain.Invocation, reply domain.Reply) error {
	interaction, err := interactionOf(inv)
	if err != nil {
		return err
	}

	chunks := splitMessage(reply.Text, DiscordMessageLimit)

	err = s.client.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         chunks[0],
			AllowedMentions: allowedMentions(reply),
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		log.Error().Err(err).Str("interactionId", inv.ID).Msg("failed to send initial response")
		return err
	}

	return s.followups(ctx, interaction, inv, reply, chunks[1:])
}

func (s *DiscordSender) SendFollowup(ctx context.Context, inv *domain.Invocation, reply domain.Reply) error {
	interaction, err := interactionOf(inv)
	if err != nil {
		return err
	}

	return s.followups(ctx, interaction, inv, reply, splitMessage(reply.Text, DiscordMessageLimit))
}

func (s *DiscordSender) AcknowledgeDeferred(ctx context.Context, inv *domain.Invocation) error {
	interaction, err := interactionOf(inv)
	if err != nil {
		return err
	}

	err = s.client.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}, discordgo.WithContext(ctx))
	if err != nil {
		log.Error().Err(err).Str("interactionId", inv.ID).Msg("failed to defer response")
		return err
	}

	return nil
}

func (s *DiscordSender) followups(ctx context.Context, interaction *discordgo.Interaction, inv *domain.Invocation, reply domain.Reply, chunks []string) error {
	for _, chunk := range chunks {
		_, err := s.client.FollowupMessageCreate(interaction, true, &discordgo.WebhookParams{
			Content:         chunk,
			AllowedMentions: allowedMentions(reply),
		}, discordgo.WithContext(ctx))
		if err != nil {
			log.Error().Err(err).Str("interactionId", inv.ID).Msg("failed to send followup")
			return err
		}
	}

	return nil
}

func interactionOf(inv *domain.Invocation) (*discordgo.Interaction, error) {
	interaction, ok := inv.Handle.(*discordgo.Interaction)
	if !ok || interaction == nil {
		return nil, ErrMissingInteraction
	}
	return interaction, nil
}

// allowedMentions limits notifications to the target user of a restricted reply.
func allowedMentions(reply domain.Reply) *discordgo.MessageAllowedMentions {
	if reply.RestrictTo == "" {
		return nil
	}
	return &discordgo.MessageAllowedMentions{Users: []string{reply.RestrictTo}}
}

// splitMessage cuts text into chunks of at most limit runes. It always returns
// at least one chunk.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > 0 {
		n := min(limit, len(runes))
		chunks = append(chunks, string(runes[:n]))
		runes = runes[n:]
	}

	return chunks
}
