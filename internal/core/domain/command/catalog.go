package command

import (
	"yamble/internal/core/port"
	"yamble/internal/core/service"
)

type Dependencies struct {
	Sessions       *service.SessionStore
	Directory      port.GuildDirectory
	Resolver       port.AudioResolver
	Downloader     port.Downloader
	Storage        port.SoundStorage
	Ledger         port.LedgerRecorder
	Quota          service.Quota
	// MaxUploadBytes caps the attachment size of an upload, zero disables the cap.
	MaxUploadBytes int
}

// Catalog declares every supported command. The registry built from it serves
// both the published command list and dispatch.
func Catalog(d Dependencies) []port.Command {
	return []port.Command{
		NewPing("ping"),
		NewJoin(d.Sessions, d.Directory, "join"),
		NewLeave(d.Sessions, "leave"),
		NewPlay(PlayParams{
			Sessions:  d.Sessions,
			Directory: d.Directory,
			Resolver:  d.Resolver,
			Command:   "play",
		}),
		NewPause(d.Sessions, "pause"),
		NewResume(d.Sessions, "resume"),
		NewStop(d.Sessions, "stop"),
		NewNext(d.Sessions, "next"),
		NewPrev(d.Sessions, "prev"),
		NewUpload(UploadParams{
			Downloader: d.Downloader,
			Storage:    d.Storage,
			Ledger:     d.Ledger,
			Quota:      d.Quota,
			MaxBytes:   d.MaxUploadBytes,
			Command:    "upload",
		}),
	}
}
