// Package cli holds the cobra command that runs the bot.
package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"postbot/internal/app"
	"postbot/internal/bot"
	"postbot/internal/bus"
	"postbot/internal/config"
)

// NewRootCommand creates the root command for the postbot service.
func NewRootCommand() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:           "postbot",
		Short:         "Daily post scheduler bot for Telegram",
		Long:          "A long-running bot that publishes registered posts to a Telegram channel once per day at their configured UTC times.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
			return run(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (default ~/.postbot/config.json)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	return cmd
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	channel, err := bot.NewChannel(cfg.Telegram.Token, a.Bus())
	if err != nil {
		return err
	}
	a.Bus().Subscribe(func(msg bus.OutboundMessage) {
		if err := channel.Send(msg); err != nil {
			slog.Error("failed to send message", "chatID", msg.ChatID, "error", err)
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}
	if err := channel.Start(ctx); err != nil {
		return err
	}
	defer channel.Stop()

	slog.Info("bot started", "bot", channel.BotName())

	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("shutting down")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}
