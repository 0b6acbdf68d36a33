package domain

import "errors"

var (
	ErrSendingReplyFailed = errors.New("failed to send reply")
	ErrUnknownCommand     = errors.New("unknown command")
	ErrNotConnected       = errors.New("not connected to a voice channel")
	ErrQueueExhausted     = errors.New("no further track in queue")
	ErrNotPlaying         = errors.New("nothing is playing")
	ErrNotFound           = errors.New("not found")
)

// GenericFailure is shown to the user whenever an internal error ends an invocation.
const GenericFailure = "Something went wrong while handling that command."
