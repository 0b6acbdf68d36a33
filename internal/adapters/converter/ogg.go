package converter

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/jonas747/ogg"
)

var (
	opusHead = []byte("OpusHead")
	opusTags = []byte("OpusTags")

	ErrBadPage = errors.New("malformed ogg page")
)

// StreamOpus demuxes an Ogg/Opus stream from r and calls emit for every audio
// packet. The OpusHead and OpusTags header packets are skipped.
func StreamOpus(r io.Reader, emit func(packet []byte) error) error {
	decoder := ogg.NewPacketDecoder(ogg.NewDecoder(r))

	for {
		packet, _, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBadPage, err)
		}

		if len(packet) == 0 || isOpusHeader(packet) {
			continue
		}

		// the decoder reuses its page buffer
		out := make([]byte, len(packet))
		copy(out, packet)
		if err := emit(out); err != nil {
			return err
		}
	}
}

func isOpusHeader(packet []byte) bool {
	return bytes.HasPrefix(packet, opusHead) || bytes.HasPrefix(packet, opusTags)
}
