package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"yamble/internal/adapters/file"
	"yamble/internal/core/domain"
	"yamble/internal/core/port"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"
)

const (
	// StoredSoundFile is the payload name inside a stored sound directory.
	StoredSoundFile = "data.mp3"
	toolFile        = "yt-dlp"
	claimPrefix     = ".claim-"
)

var DefaultRemotePrefixes = []string{
	"https://www.youtube.com/watch",
	"https://youtube.com/watch",
	"https://music.youtube.com/watch",
	"https://youtu.be/",
}

type Config struct {
	ToolDir        string
	ToolURL        string
	CacheDir       string
	SoundsDir      string
	RemotePrefixes []string
	SocketTimeout  int
	MaxFilesize    string
}

// Resolver turns user references into audio bytes. Remote media is fetched with
// yt-dlp into a cache keyed by content id, stored sounds are read from disk.
type Resolver struct {
	cfg        Config
	runner     Runner
	downloader port.Downloader
	ledger     port.LedgerRecorder

	group singleflight.Group
}

type ResolverParams struct {
	Config     Config
	Runner     Runner
	Downloader port.Downloader
	Ledger     port.LedgerRecorder
}

func NewResolver(p ResolverParams) *Resolver {
	cfg := p.Config
	if len(cfg.RemotePrefixes) == 0 {
		cfg.RemotePrefixes = DefaultRemotePrefixes
	}
	if cfg.SocketTimeout <= 0 {
		cfg.SocketTimeout = 15
	}

	runner := p.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	return &Resolver{cfg: cfg, runner: runner, downloader: p.Downloader, ledger: p.Ledger}
}

func (r *Resolver) IsRemote(ref string) bool {
	for _, prefix := range r.cfg.RemotePrefixes {
		if strings.HasPrefix(ref, prefix) {
			return true
		}
	}
	return false
}

func (r *Resolver) Resolve(ctx context.Context, ref string) ([]byte, error) {
	if r.IsRemote(ref) {
		return r.resolveRemote(ctx, ref)
	}
	return r.resolveStored(ctx, ref)
}

func (r *Resolver) resolveRemote(ctx context.Context, ref string) ([]byte, error) {
	l := log.With().Str("ref", ref).Str("func", "resolveRemote").Logger()

	tool, err := r.ensureTool(ctx)
	if err != nil {
		return nil, err
	}

	l.Info().Msg("metadata load start")
	id, err := r.contentID(ctx, tool, ref)
	if err != nil {
		return nil, err
	}
	l.Info().Str("contentId", id).Msg("metadata load end")

	dir, err := r.fetch(ctx, tool, ref, id)
	if err != nil {
		return nil, err
	}

	path, err := file.SingleFile(dir)
	if err != nil {
		return nil, fmt.Errorf("downloaded media missing: %w", err)
	}

	l.Info().Str("path", path).Msg("play file load")

	audio, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading media %w", err)
	}

	return audio, nil
}

// ensureTool returns the cached yt-dlp binary, downloading it once when the
// tool directory is empty. Presence alone is trusted.
func (r *Resolver) ensureTool(ctx context.Context) (string, error) {
	v, err := r.shared(ctx, "tool", func(ctx context.Context) (any, error) {
		if err := os.MkdirAll(r.cfg.ToolDir, 0o755); err != nil {
			return "", fmt.Errorf("ytdlp check dir failed: %w", err)
		}

		entries, err := os.ReadDir(r.cfg.ToolDir)
		if err != nil {
			return "", fmt.Errorf("ytdlp check failed: %w", err)
		}

		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			log.Debug().Str("tool", entry.Name()).Msg("ytdlp load skip")
			return filepath.Join(r.cfg.ToolDir, entry.Name()), nil
		}

		log.Info().Str("url", r.cfg.ToolURL).Msg("ytdlp load start")

		bin, err := r.downloader.Download(ctx, r.cfg.ToolURL)
		if err != nil {
			return "", fmt.Errorf("ytdlp download failed: %w", err)
		}

		path := filepath.Join(r.cfg.ToolDir, toolFile)
		if err := file.WriteAtomic(path, bin, 0o755); err != nil {
			return "", fmt.Errorf("ytdlp install failed: %w", err)
		}

		log.Info().Str("path", path).Msg("ytdlp load end")

		return path, nil
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

func (r *Resolver) contentID(ctx context.Context, tool, ref string) (string, error) {
	out, err := r.runner.Run(ctx, tool,
		"--skip-download",
		"--dump-single-json",
		"--no-playlist",
		"--socket-timeout", strconv.Itoa(r.cfg.SocketTimeout),
		ref)
	if err != nil {
		return "", fmt.Errorf("ytdlp metadata failed: %w", err)
	}

	id := gjson.GetBytes(out, "id").String()
	if !domain.IsSafeName(id) {
		return "", domain.NewUserError("bad input -- could not find video")
	}

	return id, nil
}

// fetch returns the cache directory of id, downloading into it on a miss. Only
// one download per id runs at a time; it lands in a claim directory that is
// renamed into place, so a cache directory is never observed half written.
func (r *Resolver) fetch(ctx context.Context, tool, ref, id string) (string, error) {
	dir := filepath.Join(r.cfg.CacheDir, id)

	_, err := r.shared(ctx, "media:"+id, func(ctx context.Context) (any, error) {
		hit, err := file.HasEntries(dir)
		if err != nil {
			return nil, fmt.Errorf("vid dl check failure: %w", err)
		}
		if hit {
			log.Info().Str("contentId", id).Msg("video download skip")
			return nil, nil
		}

		if err := os.MkdirAll(r.cfg.CacheDir, 0o755); err != nil {
			return nil, fmt.Errorf("error creating cache dir %w", err)
		}

		claim, err := os.MkdirTemp(r.cfg.CacheDir, claimPrefix+id+"-")
		if err != nil {
			return nil, fmt.Errorf("error claiming download dir %w", err)
		}
		defer os.RemoveAll(claim)

		log.Info().Str("contentId", id).Msg("video download start")

		args := []string{
			"--no-playlist",
			"--socket-timeout", strconv.Itoa(r.cfg.SocketTimeout),
			"-f", "ba",
			"-o", filepath.Join(claim, "%(id)s.%(ext)s"),
		}
		if r.cfg.MaxFilesize != "" {
			args = append(args, "--max-filesize", r.cfg.MaxFilesize)
		}
		args = append(args, ref)

		if _, err := r.runner.Run(ctx, tool, args...); err != nil {
			return nil, fmt.Errorf("ytdlp download failed: %w", err)
		}

		if _, err := file.SingleFile(claim); err != nil {
			return nil, fmt.Errorf("dl failed: %w", err)
		}

		if err := os.Rename(claim, dir); err != nil {
			// another process published first, its payload wins
			if hit, _ := file.HasEntries(dir); hit {
				log.Warn().Str("contentId", id).Msg("cache published concurrently")
				return nil, nil
			}
			return nil, fmt.Errorf("error publishing download %w", err)
		}

		log.Info().Str("contentId", id).Msg("video download end")

		return nil, nil
	})
	if err != nil {
		return "", err
	}

	return dir, nil
}

// shared runs fn once per key across concurrent callers. fn runs detached from
// the caller's cancellation so a started download runs to completion; a caller
// whose ctx ends stops waiting without failing the others.
func (r *Resolver) shared(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)

	ch := r.group.DoChan(key, func() (any, error) {
		return fn(detached)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// resolveStored reads a stored sound by name, falling back to the newest upload
// recorded under that name.
func (r *Resolver) resolveStored(ctx context.Context, ref string) ([]byte, error) {
	key := domain.SanitizeName(ref)
	if !domain.IsSafeName(key) {
		return nil, domain.NewUserError("Could not find a sound named %q.", ref)
	}

	path := filepath.Join(r.cfg.SoundsDir, key, StoredSoundFile)

	audio, err := os.ReadFile(path)
	if err == nil {
		log.Debug().Str("path", path).Msg("play file load")
		return audio, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading stored sound %w", err)
	}

	if r.ledger != nil {
		entry, err := r.ledger.Latest(ctx, ref)
		switch {
		case err == nil:
			audio, err := os.ReadFile(entry.FilePath)
			if err == nil {
				log.Debug().Str("path", entry.FilePath).Msg("play uploaded file load")
				return audio, nil
			}
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("error reading uploaded sound %w", err)
			}
			log.Warn().Str("path", entry.FilePath).Msg("ledger entry without payload")
		case !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("ledger lookup failed: %w", err)
		}
	}

	return nil, domain.NewUserError("Could not find a sound named %q.", ref)
}
