package command

import (
	"context"
	"sync"
	"yamble/internal/core/domain"
	"yamble/internal/core/port"

	"github.com/stretchr/testify/mock"
)

// recordingReplier keeps every reply in order, restricted ones prefixed with "!".
type recordingReplier struct {
	mu       sync.Mutex
	deferred bool
	replies  []string
	err      error
}

func (r *recordingReplier) Defer(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deferred = true
	return r.err
}

func (r *recordingReplier) Reply(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, text)
	return r.err
}

func (r *recordingReplier) ReplyRestricted(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, "!"+text)
	return r.err
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) VoiceChannel(ctx context.Context, guildID, channelID string) (domain.ChannelRef, error) {
	args := m.Called(ctx, guildID, channelID)
	return args.Get(0).(domain.ChannelRef), args.Error(1)
}

func (m *MockDirectory) UserVoiceChannel(ctx context.Context, guildID, userID string) (domain.ChannelRef, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Get(0).(domain.ChannelRef), args.Error(1)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) IsRemote(ref string) bool {
	args := m.Called(ref)
	return args.Bool(0)
}

func (m *MockResolver) Resolve(ctx context.Context, ref string) ([]byte, error) {
	args := m.Called(ctx, ref)
	audio, _ := args.Get(0).([]byte)
	return audio, args.Error(1)
}

type MockDownloader struct {
	mock.Mock
}

func (m *MockDownloader) Download(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Save(ctx context.Context, filename string, data []byte) (string, error) {
	args := m.Called(ctx, filename, data)
	return args.String(0), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Append(ctx context.Context, entry domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedger) Latest(ctx context.Context, reference string) (domain.LedgerEntry, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(domain.LedgerEntry), args.Error(1)
}

type stubQuota struct {
	allow   bool
	limit   int
	taken   int
	refunds int
}

func (s *stubQuota) Take(string) bool {
	if s.allow {
		s.taken++
	}
	return s.allow
}

func (s *stubQuota) Refund(string) { s.refunds++ }
func (s *stubQuota) Limit() int    { return s.limit }

// fakeDriver counts driver calls. It hands out one fakeConn per guild.
type fakeDriver struct {
	mu       sync.Mutex
	channels map[string]string
	conns    map[string]*fakeConn
	joins    []string
	leaves   []string
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{channels: map[string]string{}, conns: map[string]*fakeConn{}}
}

func (d *fakeDriver) Join(_ context.Context, guildID, channelID string) (port.Connection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.joins = append(d.joins, channelID)
	d.channels[guildID] = channelID

	conn, ok := d.conns[guildID]
	if !ok {
		conn = &fakeConn{}
		d.conns[guildID] = conn
	}

	return conn, nil
}

func (d *fakeDriver) Leave(_ context.Context, guildID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.leaves = append(d.leaves, guildID)
	delete(d.channels, guildID)

	return nil
}

func (d *fakeDriver) CurrentChannel(guildID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.channels[guildID]
	return ch, ok
}

// fakeConn returns the configured errors and records calls.
type fakeConn struct {
	mu        sync.Mutex
	tracks    []domain.Track
	calls     []string
	skipErr   error
	prevErr   error
	pauseErr  error
	resumeErr error
}

func (c *fakeConn) record(call string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
}

func (c *fakeConn) Enqueue(track domain.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracks = append(c.tracks, track)
}

func (c *fakeConn) Skip() error     { c.record("skip"); return c.skipErr }
func (c *fakeConn) Previous() error { c.record("prev"); return c.prevErr }
func (c *fakeConn) Pause() error    { c.record("pause"); return c.pauseErr }
func (c *fakeConn) Resume() error   { c.record("resume"); return c.resumeErr }
func (c *fakeConn) Stop()           { c.record("stop") }
