package port

import (
	"context"
	"yamble/internal/core/domain"
)

type AudioResolver interface {
	// IsRemote reports whether ref points at remote media, which is slow to resolve.
	IsRemote(ref string) bool
	// Resolve turns a user supplied reference into playable audio bytes.
	Resolve(ctx context.Context, ref string) ([]byte, error)
}

type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

type SoundStorage interface {
	// Save stores data under a freshly claimed path and returns that path.
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

type LedgerRecorder interface {
	Append(ctx context.Context, entry domain.LedgerEntry) error
	// Latest returns the newest entry recorded for reference.
	Latest(ctx context.Context, reference string) (domain.LedgerEntry, error)
}
