package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	SampleRate = 48000
	Channels   = 2
	Bitrate    = "96k"
	// FrameDuration is the opus frame length in milliseconds the voice gateway expects.
	FrameDuration = 20
)

var ErrBinaryNotFound = errors.New("ffmpeg binary not available")

type FFmpegConverter struct {
	binary string
}

// NewFFmpegConverter probes the configured binary, falling back to ffmpeg on PATH.
func NewFFmpegConverter(binary string) (*FFmpegConverter, error) {
	candidates := []string{"ffmpeg"}
	if binary != "" && binary != "ffmpeg" {
		candidates = append([]string{binary}, candidates...)
	}

	for _, candidate := range candidates {
		if _, err := exec.Command(candidate, "-version").Output(); err != nil {
			log.Debug().Str("binary", candidate).Msg("binary not found")
			continue
		}

		log.Debug().Str("binary", candidate).Msg("binary found")
		return &FFmpegConverter{binary: candidate}, nil
	}

	return nil, ErrBinaryNotFound
}

func (f *FFmpegConverter) args() []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-map", "0:a",
		"-c:a", "libopus",
		"-ar", fmt.Sprint(SampleRate),
		"-ac", fmt.Sprint(Channels),
		"-b:a", Bitrate,
		"-frame_duration", fmt.Sprint(FrameDuration),
		"-application", "audio",
		"-f", "ogg",
		"pipe:1",
	}
}

// Encode transcodes audio into opus and hands every packet to emit in order.
// Returning an error from emit aborts the transcode.
func (f *FFmpegConverter) Encode(ctx context.Context, audio []byte, emit func(packet []byte) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, f.binary, f.args()...)
	cmd.Stdin = bytes.NewReader(audio)
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg pipe failed: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start failed: %w", err)
	}

	log.Debug().Int("bytes", len(audio)).Msg("ffmpeg started")

	streamErr := StreamOpus(stdout, emit)
	if streamErr != nil {
		cancel()
		_, _ = io.Copy(io.Discard, stdout)
	}

	waitErr := cmd.Wait()

	switch {
	case streamErr != nil:
		return streamErr
	case ctx.Err() != nil:
		return ctx.Err()
	case waitErr != nil:
		log.Error().Str("ffmpegStderr", strings.TrimSpace(stderr.String())).Msg("ffmpeg failed")
		return fmt.Errorf("ffmpeg failed: %w", waitErr)
	}

	log.Debug().Msg("ffmpeg finished")

	return nil
}
