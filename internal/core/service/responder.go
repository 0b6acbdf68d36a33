package service

import (
	"context"
	"fmt"
	"sync"
	"yamble/internal/core/domain"
	"yamble/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Responder serializes all replies of one invocation. The first reply or Defer
// becomes the initial response, everything after it is sent as a followup.
type Responder struct {
	transport port.ReplyTransport
	inv       *domain.Invocation

	mu   sync.Mutex
	sent bool
}

func NewResponder(transport port.ReplyTransport, inv *domain.Invocation) *Responder {
	return &Responder{transport: transport, inv: inv}
}

func (r *Responder) Defer(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sent {
		return nil
	}
	r.sent = true

	if err := r.transport.AcknowledgeDeferred(ctx, r.inv); err != nil {
		log.Error().Err(err).Str("invocation", r.inv.ID).Msg("failed to defer response")
		return fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, err)
	}

	return nil
}

func (r *Responder) Reply(ctx context.Context, text string) error {
	return r.send(ctx, domain.Reply{Text: text})
}

func (r *Responder) ReplyRestricted(ctx context.Context, text string) error {
	return r.send(ctx, domain.Reply{Text: text, RestrictTo: r.inv.UserID})
}

// Sent reports whether an initial response went out.
func (r *Responder) Sent() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent
}

func (r *Responder) send(ctx context.Context, reply domain.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// flip before sending so no second caller believes it owns the initial response
	initial := !r.sent
	r.sent = true

	var err error
	if initial {
		err = r.transport.SendInitial(ctx, r.inv, reply)
	} else {
		err = r.transport.SendFollowup(ctx, r.inv, reply)
	}
	if err != nil {
		log.Error().Err(err).
			Str("invocation", r.inv.ID).
			Bool("initial", initial).
			Msg("failed to send reply")
		return fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, err)
	}

	return nil
}
