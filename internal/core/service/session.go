package service

import (
	"context"
	"fmt"
	"sync"
	"yamble/internal/core/domain"
	"yamble/internal/core/port"

	"github.com/rs/zerolog/log"
)

type JoinOutcome int

const (
	Joined JoinOutcome = iota + 1
	AlreadyIn
	Switched
)

type JoinResult struct {
	Outcome  JoinOutcome
	Channel  domain.ChannelRef
	Previous domain.ChannelRef
}

// SessionStore tracks the voice connection of every guild. Operations on one
// guild are serialized by that guild's lock, guilds never contend with each other.
type SessionStore struct {
	driver   port.VoiceDriver
	sessions sync.Map
}

type session struct {
	mu      sync.Mutex
	channel domain.ChannelRef
	conn    port.Connection
}

func NewSessionStore(driver port.VoiceDriver) *SessionStore {
	return &SessionStore{driver: driver}
}

func (s *SessionStore) get(guildID string) *session {
	v, _ := s.sessions.LoadOrStore(guildID, &session{})
	return v.(*session)
}

// sync reconciles the stored state with the driver. Must be called with the session lock held.
func (s *SessionStore) sync(guildID string, sess *session) {
	if sess.conn == nil {
		return
	}

	channelID, ok := s.driver.CurrentChannel(guildID)
	if !ok {
		log.Debug().Str("guildId", guildID).Msg("driver lost connection, clearing session")
		sess.conn = nil
		sess.channel = domain.ChannelRef{}
		return
	}

	if channelID != sess.channel.ID {
		sess.channel = domain.ChannelRef{ID: channelID}
	}
}

// CurrentChannel returns the channel the guild is connected to.
func (s *SessionStore) CurrentChannel(guildID string) (domain.ChannelRef, bool) {
	sess := s.get(guildID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.sync(guildID, sess)
	return sess.channel, sess.conn != nil
}

func (s *SessionStore) IsConnected(guildID string) bool {
	_, ok := s.CurrentChannel(guildID)
	return ok
}

// Join connects the guild to target, switching away from the current channel
// if needed. The read of the current channel, the decision and the driver call
// happen under the guild lock. then, when set, runs under the same lock with the
// resulting connection.
func (s *SessionStore) Join(ctx context.Context, guildID string, target domain.ChannelRef,
	then func(conn port.Connection) error) (JoinResult, error) {
	l := log.With().
		Str("guildId", guildID).
		Str("target", target.ID).
		Str("func", "Join").
		Logger()

	sess := s.get(guildID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.sync(guildID, sess)

	result := JoinResult{Channel: target}

	switch {
	case sess.conn == nil:
		result.Outcome = Joined
	case sess.channel.ID == target.ID:
		result.Outcome = AlreadyIn
	default:
		result.Outcome = Switched
		result.Previous = sess.channel
	}

	if result.Outcome != AlreadyIn {
		l.Debug().Int("outcome", int(result.Outcome)).Msg("joining voice channel")

		conn, err := s.driver.Join(ctx, guildID, target.ID)
		if err != nil {
			return JoinResult{}, fmt.Errorf("voice channel join failed: %w", err)
		}

		sess.conn = conn
		sess.channel = target
	} else if target.Name != "" {
		sess.channel = target
	}

	if then != nil {
		if err := then(sess.conn); err != nil {
			return result, err
		}
	}

	return result, nil
}

// Leave disconnects the guild. It returns false without touching the driver when
// there is nothing to leave.
func (s *SessionStore) Leave(ctx context.Context, guildID string) (domain.ChannelRef, bool, error) {
	sess := s.get(guildID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.sync(guildID, sess)

	if sess.conn == nil {
		return domain.ChannelRef{}, false, nil
	}

	left := sess.channel
	if err := s.driver.Leave(ctx, guildID); err != nil {
		return domain.ChannelRef{}, false, fmt.Errorf("voice channel leave failed: %w", err)
	}

	sess.conn = nil
	sess.channel = domain.ChannelRef{}

	return left, true, nil
}

// WithConnection runs fn with the guild's connection under the guild lock. It
// returns domain.ErrNotConnected when the guild has no connection.
func (s *SessionStore) WithConnection(guildID string, fn func(conn port.Connection) error) error {
	sess := s.get(guildID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.sync(guildID, sess)

	if sess.conn == nil {
		return domain.ErrNotConnected
	}

	return fn(sess.conn)
}
