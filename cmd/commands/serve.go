package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskchat/internal/events"
	"github.com/dohr-michael/taskchat/internal/gateway"
	"github.com/dohr-michael/taskchat/internal/reminder"
)

// NewServeCommand returns the serve subcommand.
func NewServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the taskchat gateway server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to listen on",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
		},
		Action: runServe,
	}
}

func runServe(_ context.Context, cmd *cli.Command) error {
	setupLogging(cmd)
	cfg := loadConfig(cmd)

	// CLI flags override config
	if cmd.IsSet("host") {
		cfg.Gateway.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Gateway.Port = cmd.Int("port")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bus := events.NewBus(cfg.Events.BufferSize)
	defer bus.Close()

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open task store: %w", err)
	}
	defer store.Close()

	registry, err := buildChatRegistry(ctx, cfg, store, bus)
	if err != nil {
		return err
	}

	if cfg.Reminder.Enabled {
		svc, err := reminder.New(reminder.Config{
			Store:    store,
			Bus:      bus,
			Schedule: cfg.Reminder.Schedule,
			Horizon:  cfg.Reminder.Horizon.Duration(),
		})
		if err != nil {
			return fmt.Errorf("init reminder service: %w", err)
		}
		svc.Start(ctx)
		defer svc.Stop()
	}

	server := gateway.NewServer(gateway.Config{
		Registry: registry,
		Store:    store,
		Bus:      bus,
		Host:     cfg.Gateway.Host,
		Port:     cfg.Gateway.Port,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
