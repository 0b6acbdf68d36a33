package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"yamble/internal/core/domain"
	"yamble/internal/core/port"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// FailureReplyTimeout bounds the reply that reports a failed invocation. It is
// detached from the invocation context, which may already be expired.
const FailureReplyTimeout = 10 * time.Second

// Dispatcher resolves an invocation through the command registry, parses its
// options and executes the resulting request against a fresh Responder.
type Dispatcher struct {
	registry  port.CommandRegistry
	transport port.ReplyTransport
	auth      Authorizer
	timeout   time.Duration
}

func NewDispatcher(registry port.CommandRegistry, transport port.ReplyTransport, auth Authorizer,
	timeout time.Duration) *Dispatcher {
	return &Dispatcher{registry: registry, transport: transport, auth: auth, timeout: timeout}
}

// Dispatch handles one invocation to completion. User errors are replied to and
// swallowed, internal errors are replied to generically and returned.
func (d *Dispatcher) Dispatch(ctx context.Context, inv *domain.Invocation) error {
	l := log.With().
		Str("invocation", inv.ID).
		Str("command", inv.Command).
		Str("guildId", inv.GuildID).
		Str("userId", inv.UserID).
		Logger()

	l.Info().Msg("handling request")

	responder := NewResponder(d.transport, inv)

	cmd, err := d.registry.Get(inv.Command)
	if err != nil {
		return d.fail(ctx, l, responder, fmt.Errorf("%w %q: %w", domain.ErrUnknownCommand, inv.Command, err))
	}

	if d.auth != nil && !d.auth.IsAuthorized(ctx, inv, responder) {
		l.Debug().Msg("not authorized")
		return nil
	}

	req, err := cmd.Parse(inv.Options)
	if err != nil {
		return d.fail(ctx, l, responder, err)
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	if err := req.Execute(ctx, inv, responder); err != nil {
		return d.fail(ctx, l, responder, err)
	}

	l.Debug().Msg("request handled")

	return nil
}

func (d *Dispatcher) fail(ctx context.Context, l zerolog.Logger, responder *Responder, err error) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), FailureReplyTimeout)
	defer cancel()

	text, user := domain.PublicMessage(err)
	if user {
		l.Info().Str("reason", text).Msg("rejected request")
		if sendErr := responder.ReplyRestricted(ctx, text); sendErr != nil {
			return sendErr
		}
		return nil
	}

	l.Error().Err(err).Msg("failed to handle request")

	if errors.Is(err, domain.ErrSendingReplyFailed) {
		return err
	}

	if sendErr := responder.ReplyRestricted(ctx, text); sendErr != nil {
		l.Warn().Err(sendErr).Msg("failed to report failure to user")
	}

	return err
}
