package main

import (
	"context"
	"fmt"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"github.com/Tyrowin/nexus-chat-server/internal/chat"
	"github.com/Tyrowin/nexus-chat-server/internal/logging"
	"github.com/Tyrowin/nexus-chat-server/internal/server"
)

func main() {
	cfg := server.LoadConfig()

	logger, err := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}

	coord := chat.NewCoordinator(chat.NewRegistry(), chat.NewDirectory(), chat.NewHistory())

	if cfg.RoomsFile != "" {
		if _, err := server.LoadRoomsFromYAML(cfg.RoomsFile, coord, logger); err != nil {
			logger.Fatal().Err(err).Str("path", cfg.RoomsFile).Msg("failed to seed rooms")
		}
	}

	srv := server.New(*cfg, coord, logger)

	go func() {
		if err := srv.Start(context.Background()); err != nil {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"server": func(ctx context.Context) error {
				logger.Info().Msg("graceful shutdown initiated")
				return srv.Shutdown(ctx)
			},
		},
	)

	exitCode := <-wait
	logger.Info().Int("exit_code", exitCode).Msg("server stopped")
	os.Exit(exitCode)
}
