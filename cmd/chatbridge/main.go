package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Config  kong.ConfigFlag `help:"A YAML file of flag values, e.g. listen-addr: localhost:9020."`
	Serve   ServeCommand    `cmd:"serve" help:"Start the chat bridge server."`
	Chat    ChatCommand     `cmd:"chat" help:"Chat with the chat bridge server."`
	Ask     AskCommand      `cmd:"ask" help:"Send a single message to the chat bridge server."`
	Version VersionCommand  `cmd:"version" help:"Print the version of the chat bridge."`
}

func main() {
	var cli CLI
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	kctx := kong.Parse(&cli,
		kong.UsageOnError(),
		kong.Configuration(YAML),
		kong.BindTo(ctx, (*context.Context)(nil)))
	if err := kctx.Run(); err != nil {
		log := getLogger("error")
		log.Error("error", slog.Any("error", err))
		stop()
		os.Exit(1)
	}
}

func getLogger(level string) *slog.Logger {
	ll := slog.LevelInfo
	switch level {
	case "debug":
		ll = slog.LevelDebug
	case "info":
		ll = slog.LevelInfo
	case "warn":
		ll = slog.LevelWarn
	case "error":
		ll = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: ll,
	}))
}
