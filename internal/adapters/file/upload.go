package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

const DefaultMaxAttempts = 8

var ErrNoFreePath = errors.New("could not claim a free upload path")

// UploadStore keeps uploaded sounds under <root>/<uuid>/<filename>.
type UploadStore struct {
	root        string
	maxAttempts int
	newID       func() (uuid.UUID, error)
}

func NewUploadStore(root string, maxAttempts int) *UploadStore {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	return &UploadStore{root: root, maxAttempts: maxAttempts, newID: uuid.NewV4}
}

// Save claims a fresh directory and writes data into it. Claiming retries with a
// new id on collision, up to maxAttempts times.
func (u *UploadStore) Save(ctx context.Context, filename string, data []byte) (string, error) {
	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." {
		name = "sound"
	}

	if err := os.MkdirAll(u.root, 0o755); err != nil {
		return "", fmt.Errorf("error creating upload root %w", err)
	}

	for attempt := range u.maxAttempts {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		id, err := u.newID()
		if err != nil {
			return "", err
		}

		dir := filepath.Join(u.root, id.String())
		if err := os.Mkdir(dir, 0o755); err != nil {
			if errors.Is(err, os.ErrExist) {
				log.Warn().Int("attempt", attempt).Str("dir", dir).Msg("upload path taken, retrying")
				continue
			}
			return "", fmt.Errorf("error claiming upload path %w", err)
		}

		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			return "", fmt.Errorf("error creating upload file %w", err)
		}

		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("error writing upload file %w", err)
		}

		if err := f.Close(); err != nil {
			return "", fmt.Errorf("error closing upload file %w", err)
		}

		log.Debug().Str("path", path).Int("bytes", len(data)).Msg("saved upload")

		return path, nil
	}

	return "", fmt.Errorf("%w after %d attempts", ErrNoFreePath, u.maxAttempts)
}
