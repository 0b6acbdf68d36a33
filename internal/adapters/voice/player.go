package voice

import (
	"context"
	"sync"
	"yamble/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Sink receives opus packets for one voice connection.
type Sink interface {
	Speaking(speaking bool) error
	Send(ctx context.Context, packet []byte) error
	Disconnect() error
}

// Encoder turns raw audio into opus packets.
type Encoder interface {
	Encode(ctx context.Context, audio []byte, emit func(packet []byte) error) error
}

// Player is the playback queue of one guild. Tracks are kept after they
// finished so the queue can be walked backwards.
type Player struct {
	mu   sync.Mutex
	cond *sync.Cond

	sink    Sink
	encoder Encoder
	log     zerolog.Logger

	tracks  []domain.Track
	cursor  int
	pending bool
	playing bool
	paused  bool
	closed  bool
	cancel  context.CancelFunc

	done chan struct{}
}

func NewPlayer(guildID string, sink Sink, encoder Encoder) *Player {
	p := &Player{
		sink:    sink,
		encoder: encoder,
		log:     log.With().Str("guildId", guildID).Logger(),
		cursor:  -1,
		done:    make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)

	go p.run()

	return p
}

// SetSink moves playback to a new connection, used when switching channels.
func (p *Player) SetSink(sink Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sink = sink
}

func (p *Player) Sink() Sink {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.sink
}

// Enqueue appends a track and starts it when nothing is playing.
func (p *Player) Enqueue(track domain.Track) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tracks = append(p.tracks, track)

	if p.cursor < 0 || (!p.playing && !p.pending) {
		p.cursor = len(p.tracks) - 1
		p.pending = true
		p.cond.Broadcast()
	}

	p.log.Debug().Str("reference", track.Reference).Int("queued", len(p.tracks)).Msg("track enqueued")
}

func (p *Player) Skip() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cursor < 0 || p.cursor+1 >= len(p.tracks) {
		return domain.ErrQueueExhausted
	}

	p.jump(p.cursor + 1)

	return nil
}

func (p *Player) Previous() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cursor <= 0 {
		return domain.ErrQueueExhausted
	}

	p.jump(p.cursor - 1)

	return nil
}

func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active() {
		return domain.ErrNotPlaying
	}

	p.paused = true

	return nil
}

func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active() {
		return domain.ErrNotPlaying
	}

	p.paused = false
	p.cond.Broadcast()

	return nil
}

// Stop clears the queue and halts the current track.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tracks = nil
	p.cursor = -1
	p.pending = false
	p.paused = false
	p.interrupt()

	p.log.Debug().Msg("playback stopped")
}

// Close stops playback and waits for the player loop to exit.
func (p *Player) Close() {
	p.mu.Lock()
	p.closed = true
	p.tracks = nil
	p.cursor = -1
	p.pending = false
	p.interrupt()
	p.mu.Unlock()

	<-p.done
}

func (p *Player) active() bool {
	return p.cursor >= 0 && (p.playing || p.pending)
}

// jump must be called with mu held.
func (p *Player) jump(cursor int) {
	p.cursor = cursor
	p.pending = true
	p.paused = false
	p.interrupt()
}

// interrupt must be called with mu held.
func (p *Player) interrupt() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.cond.Broadcast()
}

func (p *Player) run() {
	defer close(p.done)

	for {
		track, ctx, ok := p.next()
		if !ok {
			return
		}

		p.log.Info().Str("reference", track.Reference).Msg("track start")

		err := p.play(ctx, track)

		p.finish(ctx, err)
	}
}

func (p *Player) next() (domain.Track, context.Context, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for !p.closed && !p.pending {
		p.cond.Wait()
	}

	if p.closed {
		return domain.Track{}, nil, false
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.pending = false
	p.playing = true

	return p.tracks[p.cursor], ctx, true
}

func (p *Player) finish(ctx context.Context, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.playing = false

	if ctx.Err() != nil {
		// interrupted, whoever cancelled already moved the cursor
		return
	}

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}

	if err != nil {
		p.log.Error().Err(err).Msg("track playback failed")
	} else {
		p.log.Info().Msg("track end")
	}

	if p.cursor >= 0 && p.cursor+1 < len(p.tracks) {
		p.cursor++
		p.pending = true
	}
}

func (p *Player) play(ctx context.Context, track domain.Track) error {
	sink := p.Sink()
	if err := sink.Speaking(true); err != nil {
		p.log.Warn().Err(err).Msg("could not set speaking")
	}

	defer func() {
		if err := p.Sink().Speaking(false); err != nil {
			p.log.Warn().Err(err).Msg("could not clear speaking")
		}
	}()

	return p.encoder.Encode(ctx, track.Audio, func(packet []byte) error {
		sink, err := p.gate(ctx)
		if err != nil {
			return err
		}
		return sink.Send(ctx, packet)
	})
}

// gate blocks while playback is paused and returns the sink to send to.
func (p *Player) gate(ctx context.Context) (Sink, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.paused && ctx.Err() == nil {
		p.cond.Wait()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return p.sink, nil
}
