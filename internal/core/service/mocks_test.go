package service

import (
	"context"
	"sync"
	"yamble/internal/core/domain"
	"yamble/internal/core/port"

	"github.com/stretchr/testify/mock"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) SendInitial(ctx context.Context, inv *domain.Invocation, reply domain.Reply) error {
	args := m.Called(ctx, inv, reply)
	return args.Error(0)
}

func (m *MockTransport) SendFollowup(ctx context.Context, inv *domain.Invocation, reply domain.Reply) error {
	args := m.Called(ctx, inv, reply)
	return args.Error(0)
}

func (m *MockTransport) AcknowledgeDeferred(ctx context.Context, inv *domain.Invocation) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

// fakeDriver records driver calls and tracks connected channels per guild.
type fakeDriver struct {
	mu       sync.Mutex
	channels map[string]string
	joins    []string
	leaves   []string
	joinErr  error
	leaveErr error
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{channels: make(map[string]string)}
}

func (d *fakeDriver) Join(_ context.Context, guildID, channelID string) (port.Connection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.joins = append(d.joins, guildID+"/"+channelID)
	if d.joinErr != nil {
		return nil, d.joinErr
	}
	d.channels[guildID] = channelID

	return &fakeConn{}, nil
}

func (d *fakeDriver) Leave(_ context.Context, guildID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.leaves = append(d.leaves, guildID)
	if d.leaveErr != nil {
		return d.leaveErr
	}
	delete(d.channels, guildID)

	return nil
}

func (d *fakeDriver) CurrentChannel(guildID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.channels[guildID]
	return ch, ok
}

func (d *fakeDriver) joinCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.joins)
}

type fakeConn struct {
	mu     sync.Mutex
	tracks []domain.Track
}

func (c *fakeConn) Enqueue(track domain.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracks = append(c.tracks, track)
}

func (c *fakeConn) Skip() error     { return nil }
func (c *fakeConn) Previous() error { return nil }
func (c *fakeConn) Pause() error    { return nil }
func (c *fakeConn) Resume() error   { return nil }
func (c *fakeConn) Stop()           {}

type MockReplier struct {
	mock.Mock
}

func (m *MockReplier) Defer(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockReplier) Reply(ctx context.Context, text string) error {
	args := m.Called(ctx, text)
	return args.Error(0)
}

func (m *MockReplier) ReplyRestricted(ctx context.Context, text string) error {
	args := m.Called(ctx, text)
	return args.Error(0)
}
