package command

import (
	"context"
	"errors"
	"testing"
	"yamble/internal/core/domain"
	"yamble/internal/core/port"
	"yamble/internal/core/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	voiceA = domain.ChannelRef{ID: "100", Name: "General"}
	voiceB = domain.ChannelRef{ID: "200", Name: "Music"}
)

func invocation(command string, options ...domain.Option) *domain.Invocation {
	return &domain.Invocation{ID: "1", Command: command, GuildID: "g", UserID: "u", Options: options}
}

func channelOption(id string) domain.Option {
	return domain.Option{Name: targetParam, Type: domain.OptionChannel, ChannelID: id}
}

func execute(t *testing.T, cmd port.Command, inv *domain.Invocation) (*recordingReplier, error) {
	t.Helper()

	reply := &recordingReplier{}
	req, err := cmd.Parse(inv.Options)
	if err != nil {
		return reply, err
	}

	return reply, req.Execute(context.Background(), inv, reply)
}

func userMessage(t *testing.T, err error) string {
	t.Helper()

	var ue *domain.UserError
	require.ErrorAs(t, err, &ue)
	return ue.Message
}

func TestJoin_CallerChannelThenAlreadyIn(t *testing.T) {
	driver := newFakeDriver()
	dir := new(MockDirectory)
	dir.On("UserVoiceChannel", mock.Anything, "g", "u").Return(voiceA, nil).Once()
	dir.On("VoiceChannel", mock.Anything, "g", "100").Return(voiceA, nil).Once()

	join := NewJoin(service.NewSessionStore(driver), dir, "join")

	reply, err := execute(t, join, invocation("join"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Joined channel <#100>!"}, reply.replies)
	assert.Equal(t, []string{"100"}, driver.joins)

	reply, err = execute(t, join, invocation("join", channelOption("100")))
	require.NoError(t, err)
	assert.Equal(t, []string{"Already in <#100>!"}, reply.replies)
	assert.Len(t, driver.joins, 1)

	dir.AssertExpectations(t)
}

func TestJoin_Switch(t *testing.T) {
	driver := newFakeDriver()
	dir := new(MockDirectory)
	dir.On("VoiceChannel", mock.Anything, "g", "100").Return(voiceA, nil)
	dir.On("VoiceChannel", mock.Anything, "g", "200").Return(voiceB, nil)

	join := NewJoin(service.NewSessionStore(driver), dir, "join")

	_, err := execute(t, join, invocation("join", channelOption("100")))
	require.NoError(t, err)

	reply, err := execute(t, join, invocation("join", channelOption("200")))
	require.NoError(t, err)
	assert.Equal(t, []string{"Switched to <#200> from <#100>!"}, reply.replies)
	assert.Equal(t, []string{"100", "200"}, driver.joins)
}

func TestJoin_Errors(t *testing.T) {
	tests := []struct {
		name    string
		inv     *domain.Invocation
		setup   func(d *MockDirectory)
		wantMsg string
		wantErr bool
	}{
		{
			name:    "outside of a guild",
			inv:     &domain.Invocation{Command: "join", UserID: "u"},
			setup:   func(*MockDirectory) {},
			wantMsg: "command only available in a server",
		},
		{
			name: "caller not in voice",
			inv:  invocation("join"),
			setup: func(d *MockDirectory) {
				d.On("UserVoiceChannel", mock.Anything, "g", "u").Return(domain.ChannelRef{}, domain.ErrNotFound)
			},
			wantMsg: "if no provided channel, caller must be in a voice channel",
		},
		{
			name: "channel of another guild",
			inv:  invocation("join", channelOption("999")),
			setup: func(d *MockDirectory) {
				d.On("VoiceChannel", mock.Anything, "g", "999").Return(domain.ChannelRef{}, domain.ErrNotFound)
			},
			wantMsg: "channel not in guild",
		},
		{
			name: "directory failure is internal",
			inv:  invocation("join"),
			setup: func(d *MockDirectory) {
				d.On("UserVoiceChannel", mock.Anything, "g", "u").Return(domain.ChannelRef{}, errors.New("rate limited"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver := newFakeDriver()
			dir := new(MockDirectory)
			tt.setup(dir)

			reply, err := execute(t, NewJoin(service.NewSessionStore(driver), dir, "join"), tt.inv)

			if tt.wantErr {
				require.Error(t, err)
				var ue *domain.UserError
				assert.False(t, errors.As(err, &ue))
			} else {
				assert.Equal(t, tt.wantMsg, userMessage(t, err))
			}
			assert.Empty(t, reply.replies)
			assert.Empty(t, driver.joins)
		})
	}
}

func TestLeave(t *testing.T) {
	driver := newFakeDriver()
	sessions := service.NewSessionStore(driver)
	leave := NewLeave(sessions, "leave")

	reply, err := execute(t, leave, invocation("leave"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Nothing to leave! I'm not in a voice channel."}, reply.replies)
	assert.Empty(t, driver.leaves)

	_, err = sessions.Join(context.Background(), "g", voiceA, nil)
	require.NoError(t, err)

	reply, err = execute(t, leave, invocation("leave"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Left <#100>."}, reply.replies)
	assert.Equal(t, []string{"g"}, driver.leaves)
}

func TestPing(t *testing.T) {
	reply, err := execute(t, NewPing("ping"), invocation("ping"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Pong!"}, reply.replies)
}
