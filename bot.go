package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"yamble/internal/adapters/converter"
	"yamble/internal/adapters/file"
	"yamble/internal/adapters/guild"
	"yamble/internal/adapters/handler"
	"yamble/internal/adapters/ledger"
	"yamble/internal/adapters/media"
	"yamble/internal/adapters/sender"
	"yamble/internal/adapters/voice"
	"yamble/internal/core/domain/command"
	"yamble/internal/core/port"
	"yamble/internal/core/service"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func newSession() (*discordgo.Session, error) {
	token := viper.GetString("discord.token")
	if token == "" {
		return nil, errors.New("discord.token is not configured")
	}

	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed initializing discord session: %w", err)
	}

	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates

	return s, nil
}

func runBot(ctx context.Context) error {
	log.Info().Msg("starting yamble...")

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	handlerTimeout, err := time.ParseDuration(viper.GetString("handler.timeout"))
	if err != nil {
		return fmt.Errorf("invalid timeout for handler in config: %w", err)
	}

	s, err := newSession()
	if err != nil {
		return err
	}

	store, err := ledger.Open(ctx, viper.GetString("database.path"))
	if err != nil {
		return fmt.Errorf("failed opening ledger: %w", err)
	}
	defer store.Close()

	ffmpeg, err := converter.NewFFmpegConverter(viper.GetString("ffmpeg.binary"))
	if err != nil {
		return fmt.Errorf("failed initializing ffmpeg converter: %w", err)
	}

	downloader := file.NewDownloader(handlerTimeout)
	driver := voice.NewDriver(voice.NewDiscordDialer(s), ffmpeg)

	resolver := media.NewResolver(media.ResolverParams{
		Config: media.Config{
			ToolDir:        viper.GetString("media.tool_dir"),
			ToolURL:        viper.GetString("media.tool_url"),
			CacheDir:       viper.GetString("media.cache_dir"),
			SoundsDir:      viper.GetString("media.sounds_dir"),
			RemotePrefixes: viper.GetStringSlice("media.remote_prefixes"),
			SocketTimeout:  viper.GetInt("media.socket_timeout"),
			MaxFilesize:    viper.GetString("media.max_filesize"),
		},
		Downloader: downloader,
		Ledger:     store,
	})

	registry := command.NewRegistry(command.Catalog(command.Dependencies{
		Sessions:       service.NewSessionStore(driver),
		Directory:      guild.NewDiscordDirectory(s),
		Resolver:       resolver,
		Downloader:     downloader,
		Storage:        file.NewUploadStore(viper.GetString("upload.dir"), viper.GetInt("upload.max_attempts")),
		Ledger:         store,
		Quota:          service.NewUploadQuota(ctx),
		MaxUploadBytes: viper.GetInt("upload.max_bytes"),
	})...)

	auth, err := service.NewAuthorizer()
	if err != nil {
		return err
	}

	dispatcher := service.NewDispatcher(registry, sender.NewDiscordSender(s), auth, handlerTimeout)
	s.AddHandler(handler.NewCommand(dispatcher).Handle)

	if err := s.Open(); err != nil {
		return fmt.Errorf("failed opening discord gateway: %w", err)
	}
	defer s.Close()

	if err := handler.Publish(ctx, s, s.State.User.ID, viper.GetString("discord.guild_id"), registry.ListCommands()); err != nil {
		return err
	}

	log.Info().Msg("bot listening")
	<-ctx.Done()

	log.Info().Msg("shutting down")
	driver.Shutdown(context.Background())

	return nil
}

func publishCatalog(ctx context.Context) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	app, err := s.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed resolving application: %w", err)
	}

	return handler.Publish(ctx, s, app.ID, viper.GetString("discord.guild_id"), catalog())
}

// catalog returns the command declarations without live dependencies, enough to
// describe or publish them.
func catalog() []port.Command {
	return command.NewRegistry(command.Catalog(command.Dependencies{})...).ListCommands()
}

func printCatalog(w io.Writer) error {
	for _, cmd := range catalog() {
		if _, err := fmt.Fprintf(w, "/%s - %s\n", cmd.GetCommand(), cmd.Description()); err != nil {
			return err
		}

		for _, p := range cmd.Params() {
			required := "optional"
			if p.Required {
				required = "required"
			}
			if _, err := fmt.Fprintf(w, "    %s (%s, %s) %s\n", p.Name, p.Type, required, strings.TrimSpace(p.Description)); err != nil {
				return err
			}
		}
	}

	return nil
}
