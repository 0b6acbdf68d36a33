package voice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"yamble/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = time.Second

// byteEncoder emits every byte of the audio as its own packet.
type byteEncoder struct{}

func (byteEncoder) Encode(ctx context.Context, audio []byte, emit func([]byte) error) error {
	for _, b := range audio {
		if err := emit([]byte{b}); err != nil {
			return err
		}
	}
	return nil
}

type failingEncoder struct{}

func (failingEncoder) Encode(context.Context, []byte, func([]byte) error) error {
	return errors.New("corrupt input")
}

type chanSink struct {
	sent chan []byte

	mu           sync.Mutex
	disconnected bool
}

func newChanSink() *chanSink {
	return &chanSink{sent: make(chan []byte)}
}

func (s *chanSink) Speaking(bool) error { return nil }

func (s *chanSink) Send(ctx context.Context, packet []byte) error {
	select {
	case s.sent <- packet:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *chanSink) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnected = true
	return nil
}

func (s *chanSink) isDisconnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disconnected
}

func receive(t *testing.T, s *chanSink) string {
	t.Helper()

	select {
	case p := <-s.sent:
		return string(p)
	case <-time.After(waitFor):
		t.Fatal("no packet received")
		return ""
	}
}

func receiveUntil(t *testing.T, s *chanSink, want string) {
	t.Helper()

	deadline := time.After(waitFor)
	for {
		select {
		case p := <-s.sent:
			if string(p) == want {
				return
			}
		case <-deadline:
			t.Fatalf("packet %q never received", want)
		}
	}
}

func assertSilent(t *testing.T, s *chanSink, d time.Duration) {
	t.Helper()

	select {
	case p := <-s.sent:
		t.Fatalf("unexpected packet %q", p)
	case <-time.After(d):
	}
}

func track(ref, audio string) domain.Track {
	return domain.Track{Reference: ref, Audio: []byte(audio)}
}

func TestPlayer_PlaysQueueInOrder(t *testing.T) {
	sink := newChanSink()
	p := NewPlayer("g", sink, byteEncoder{})
	defer p.Close()

	p.Enqueue(track("a", "ab"))
	p.Enqueue(track("b", "cd"))

	var got []string
	for range 4 {
		got = append(got, receive(t, sink))
	}

	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
	assertSilent(t, sink, 50*time.Millisecond)
}

func TestPlayer_EnqueueAfterQueueEndedStartsNewTrack(t *testing.T) {
	sink := newChanSink()
	p := NewPlayer("g", sink, byteEncoder{})
	defer p.Close()

	p.Enqueue(track("a", "a"))
	assert.Equal(t, "a", receive(t, sink))

	assert.Eventually(t, func() bool {
		return errors.Is(p.Pause(), domain.ErrNotPlaying)
	}, waitFor, 5*time.Millisecond)

	p.Enqueue(track("b", "b"))
	assert.Equal(t, "b", receive(t, sink))
}

func TestPlayer_Skip(t *testing.T) {
	sink := newChanSink()
	p := NewPlayer("g", sink, byteEncoder{})
	defer p.Close()

	p.Enqueue(track("a", "aaaaaaaaaaaaaaaaaaaa"))
	p.Enqueue(track("b", "b"))

	assert.Equal(t, "a", receive(t, sink))
	require.NoError(t, p.Skip())
	receiveUntil(t, sink, "b")

	assert.ErrorIs(t, p.Skip(), domain.ErrQueueExhausted)
}

func TestPlayer_SkipOnEmptyQueue(t *testing.T) {
	p := NewPlayer("g", newChanSink(), byteEncoder{})
	defer p.Close()

	assert.ErrorIs(t, p.Skip(), domain.ErrQueueExhausted)
	assert.ErrorIs(t, p.Previous(), domain.ErrQueueExhausted)
}

func TestPlayer_Previous(t *testing.T) {
	sink := newChanSink()
	p := NewPlayer("g", sink, byteEncoder{})
	defer p.Close()

	p.Enqueue(track("a", "a"))
	p.Enqueue(track("b", "bbbbbbbbbbbbbbbbbbbb"))

	assert.Equal(t, "a", receive(t, sink))
	assert.Equal(t, "b", receive(t, sink))

	require.NoError(t, p.Previous())
	receiveUntil(t, sink, "a")

	assert.ErrorIs(t, p.Previous(), domain.ErrQueueExhausted)
}

func TestPlayer_PauseResume(t *testing.T) {
	sink := newChanSink()
	p := NewPlayer("g", sink, byteEncoder{})
	defer p.Close()

	assert.ErrorIs(t, p.Pause(), domain.ErrNotPlaying)
	assert.ErrorIs(t, p.Resume(), domain.ErrNotPlaying)

	p.Enqueue(track("a", "abcdefgh"))
	assert.Equal(t, "a", receive(t, sink))

	require.NoError(t, p.Pause())

	// at most the packet already handed to the sink gets through
	select {
	case <-sink.sent:
	case <-time.After(50 * time.Millisecond):
	}
	assertSilent(t, sink, 100*time.Millisecond)

	require.NoError(t, p.Resume())
	receive(t, sink)
}

func TestPlayer_Stop(t *testing.T) {
	sink := newChanSink()
	p := NewPlayer("g", sink, byteEncoder{})
	defer p.Close()

	p.Enqueue(track("a", "aaaaaaaaaaaaaaaaaaaa"))
	p.Enqueue(track("b", "b"))
	assert.Equal(t, "a", receive(t, sink))

	p.Stop()
	p.Stop()

	select {
	case <-sink.sent:
	case <-time.After(50 * time.Millisecond):
	}
	assertSilent(t, sink, 100*time.Millisecond)

	assert.ErrorIs(t, p.Skip(), domain.ErrQueueExhausted)
	assert.ErrorIs(t, p.Pause(), domain.ErrNotPlaying)

	p.Enqueue(track("c", "c"))
	receiveUntil(t, sink, "c")
}

func TestPlayer_FailedTrackAdvances(t *testing.T) {
	sink := newChanSink()
	p := NewPlayer("g", sink, failingEncoder{})

	p.Enqueue(track("a", "a"))
	p.Enqueue(track("b", "b"))

	assert.Eventually(t, func() bool {
		return errors.Is(p.Pause(), domain.ErrNotPlaying)
	}, waitFor, 5*time.Millisecond)

	p.Close()
}

func TestPlayer_SetSink(t *testing.T) {
	first, second := newChanSink(), newChanSink()
	p := NewPlayer("g", first, byteEncoder{})
	defer p.Close()

	p.Enqueue(track("a", "abc"))
	assert.Equal(t, "a", receive(t, first))

	p.SetSink(second)

	// the packet in flight may still land on the old sink
	select {
	case <-first.sent:
	case <-time.After(50 * time.Millisecond):
	}
	receiveUntil(t, second, "c")
}
