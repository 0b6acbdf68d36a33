package command

import (
	"context"
	"fmt"
	"strings"
	"yamble/internal/core/domain"
	"yamble/internal/core/port"
	"yamble/internal/core/service"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

const (
	nameParam  = "name"
	soundParam = "sound"

	uploadFailed = "Upload failed."
)

type Upload struct {
	downloader port.Downloader
	storage    port.SoundStorage
	ledger     port.LedgerRecorder
	quota      service.Quota
	maxBytes   int
	command    string
}

type UploadParams struct {
	Downloader port.Downloader
	Storage    port.SoundStorage
	Ledger     port.LedgerRecorder
	Quota      service.Quota
	MaxBytes   int
	Command    string
}

func NewUpload(p UploadParams) *Upload {
	return &Upload{
		downloader: p.Downloader,
		storage:    p.Storage,
		ledger:     p.Ledger,
		quota:      p.Quota,
		maxBytes:   p.MaxBytes,
		command:    p.Command,
	}
}

func (u *Upload) GetCommand() string {
	return u.command
}

func (u *Upload) Description() string {
	return "Upload an audio snippet that Yamble can play"
}

func (u *Upload) Params() []domain.Param {
	return []domain.Param{
		{
			Name:        nameParam,
			Description: "Name to save file as",
			Type:        domain.OptionString,
			Required:    true,
		},
		{
			Name:        soundParam,
			Description: "sound to upload",
			Type:        domain.OptionAttachment,
			Required:    true,
		},
	}
}

func (u *Upload) Parse(options []domain.Option) (port.Request, error) {
	args, err := ScanOptions(u.Params(), options)
	if err != nil {
		return nil, err
	}

	name, _ := args.String(nameParam)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewUserError("missing `%s` required parameter", nameParam)
	}

	// names are stored under their sanitized form, refuse anything that would collide
	if !domain.IsSafeName(name) {
		return nil, domain.NewUserError("sound names may only use ASCII characters and no slashes, and cannot be `.` or `..`")
	}

	sound, _ := args.Attachment(soundParam)
	if u.maxBytes > 0 && sound.Size > u.maxBytes {
		return nil, domain.NewUserError("%s is too large, uploads are limited to %s.",
			sound.Filename, humanize.IBytes(uint64(u.maxBytes)))
	}

	return &uploadRequest{cmd: u, name: name, sound: sound}, nil
}

type uploadRequest struct {
	cmd   *Upload
	name  string
	sound *domain.Attachment
}

func (r *uploadRequest) Execute(ctx context.Context, inv *domain.Invocation, reply port.Replier) error {
	l := log.With().
		Str("name", r.name).
		Str("filename", r.sound.Filename).
		Str("userId", inv.UserID).
		Str("func", "Execute").
		Logger()

	recorded := false
	if r.cmd.quota != nil {
		if !r.cmd.quota.Take(inv.UserID) {
			return domain.NewUserError("You have reached your daily limit of %d uploads. Limit will reset in %s.",
				r.cmd.quota.Limit(), service.TimeUntilReset())
		}
		defer func() {
			if !recorded {
				r.cmd.quota.Refund(inv.UserID)
			}
		}()
	}

	if err := reply.Defer(ctx); err != nil {
		return err
	}

	data, err := r.cmd.downloader.Download(ctx, r.sound.URL)
	if err != nil {
		return domain.NewInternalError(uploadFailed, fmt.Errorf("could not download attachment: %w", err))
	}

	path, err := r.cmd.storage.Save(ctx, r.sound.Filename, data)
	if err != nil {
		return domain.NewInternalError(uploadFailed, fmt.Errorf("could not store upload: %w", err))
	}

	l.Debug().Str("path", path).Int("bytes", len(data)).Msg("stored upload")

	entry := domain.LedgerEntry{
		Reference:  r.name,
		UploaderID: inv.UserID,
		FilePath:   path,
		Downloaded: true,
	}
	if err := r.cmd.ledger.Append(ctx, entry); err != nil {
		return domain.NewInternalError(uploadFailed, fmt.Errorf("could not record upload: %w", err))
	}

	recorded = true
	l.Info().Msg("upload recorded")

	return reply.Reply(ctx, fmt.Sprintf("Uploaded %s! Play it with `/play music:%s`.", r.name, r.name))
}
