package voice

import (
	"context"
	"fmt"
	"sync"
	"yamble/internal/core/domain"
	"yamble/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Dialer opens or moves the voice connection of a guild.
type Dialer interface {
	Dial(ctx context.Context, guildID, channelID string) (Sink, error)
}

type guildConn struct {
	channelID string
	player    *Player
}

// Driver keeps one voice connection and player per guild. Callers serialize
// operations on the same guild.
type Driver struct {
	mu      sync.Mutex
	guilds  map[string]*guildConn
	dialer  Dialer
	encoder Encoder
}

func NewDriver(dialer Dialer, encoder Encoder) *Driver {
	return &Driver{
		guilds:  make(map[string]*guildConn),
		dialer:  dialer,
		encoder: encoder,
	}
}

func (d *Driver) Join(ctx context.Context, guildID, channelID string) (port.Connection, error) {
	sink, err := d.dialer.Dial(ctx, guildID, channelID)
	if err != nil {
		return nil, fmt.Errorf("could not join voice channel: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	g, ok := d.guilds[guildID]
	if ok {
		g.player.SetSink(sink)
		g.channelID = channelID
		log.Info().Str("guildId", guildID).Str("channelId", channelID).Msg("voice moved")
		return g.player, nil
	}

	g = &guildConn{channelID: channelID, player: NewPlayer(guildID, sink, d.encoder)}
	d.guilds[guildID] = g

	log.Info().Str("guildId", guildID).Str("channelId", channelID).Msg("voice joined")

	return g.player, nil
}

func (d *Driver) Leave(_ context.Context, guildID string) error {
	d.mu.Lock()
	g, ok := d.guilds[guildID]
	delete(d.guilds, guildID)
	d.mu.Unlock()

	if !ok {
		return domain.ErrNotConnected
	}

	g.player.Close()

	if err := g.player.Sink().Disconnect(); err != nil {
		return fmt.Errorf("could not disconnect: %w", err)
	}

	log.Info().Str("guildId", guildID).Msg("voice left")

	return nil
}

func (d *Driver) CurrentChannel(guildID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	g, ok := d.guilds[guildID]
	if !ok {
		return "", false
	}
	return g.channelID, true
}

// Shutdown disconnects from every guild.
func (d *Driver) Shutdown(ctx context.Context) {
	d.mu.Lock()
	ids := make([]string, 0, len(d.guilds))
	for id := range d.guilds {
		ids = append(ids, id)
	}
	d.mu.Unlock()

	for _, id := range ids {
		if err := d.Leave(ctx, id); err != nil {
			log.Warn().Err(err).Str("guildId", id).Msg("failed to leave on shutdown")
		}
	}
}
