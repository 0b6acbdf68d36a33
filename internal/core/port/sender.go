package port

import (
	"context"
	"yamble/internal/core/domain"
)

// ReplyTransport sends raw replies for one invocation to the chat platform.
type ReplyTransport interface {
	SendInitial(ctx context.Context, inv *domain.Invocation, reply domain.Reply) error
	SendFollowup(ctx context.Context, inv *domain.Invocation, reply domain.Reply) error
	AcknowledgeDeferred(ctx context.Context, inv *domain.Invocation) error
}

// Replier is the per-invocation response channel handed to command requests.
type Replier interface {
	// Defer acknowledges the invocation without content so a later reply arrives as a followup.
	Defer(ctx context.Context) error
	// Reply sends text as the initial response, or as a followup once one was sent.
	Reply(ctx context.Context, text string) error
	// ReplyRestricted is Reply, notifying only the invoking user.
	ReplyRestricted(ctx context.Context, text string) error
}
