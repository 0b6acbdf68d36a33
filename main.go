package main

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

var configFile string

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("yamble exited")
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "yamble",
		Short:         "Discord voice bot playing remote media and uploaded sounds",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := loadConfig(configFile); err != nil {
				return err
			}
			setupLogging()
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBot(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./config.toml)")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Connect to Discord and serve commands",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runBot(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "commands",
			Short: "Print the command catalogue",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return printCatalog(cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "publish",
			Short: "Publish the command catalogue to Discord and exit",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return publishCatalog(cmd.Context())
			},
		},
	)

	return root
}

func setDefaults() {
	viper.SetDefault("bot.log_level", "info")
	viper.SetDefault("bot.log_file", "")
	viper.SetDefault("discord.guild_id", "")
	viper.SetDefault("discord.allowed_guild_ids", []string{})
	viper.SetDefault("handler.timeout", "5m")
	viper.SetDefault("media.tool_dir", "data/ytdlp")
	viper.SetDefault("media.tool_url", "https://github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp_linux")
	viper.SetDefault("media.cache_dir", "data/media")
	viper.SetDefault("media.sounds_dir", "data/sounds")
	viper.SetDefault("media.remote_prefixes", []string{})
	viper.SetDefault("media.socket_timeout", 15)
	viper.SetDefault("media.max_filesize", "50M")
	viper.SetDefault("upload.dir", "data/uploaded")
	viper.SetDefault("upload.max_attempts", 8)
	viper.SetDefault("upload.daily_limit", 0)
	viper.SetDefault("upload.max_bytes", 25<<20)
	viper.SetDefault("database.path", "data/yamble.db")
	viper.SetDefault("ffmpeg.binary", "ffmpeg")
}

func loadConfig(path string) error {
	setDefaults()

	viper.SetEnvPrefix("YAMBLE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	log.Info().Msg("reading config file...")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return err
		}
		log.Warn().Msg("no config file found, using defaults and environment")
	}

	return nil
}

func setupLogging() {
	var logLevel zerolog.Level

	switch viper.GetString("bot.log_level") {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "info":
		logLevel = zerolog.InfoLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)
	zerolog.TimeFieldFormat = time.RFC3339

	logFile := viper.GetString("bot.log_file")
	if logFile == "" {
		return
	}

	rotating := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(os.Stderr, rotating)).With().Timestamp().Logger()
}
