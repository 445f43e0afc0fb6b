package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskchat/internal/agent"
	"github.com/dohr-michael/taskchat/internal/callbacks"
	"github.com/dohr-michael/taskchat/internal/chat"
	"github.com/dohr-michael/taskchat/internal/config"
	"github.com/dohr-michael/taskchat/internal/events"
	"github.com/dohr-michael/taskchat/internal/models"
	"github.com/dohr-michael/taskchat/internal/tasks"
	"github.com/dohr-michael/taskchat/internal/tools"
)

// setupLogging configures slog from the --debug flag.
func setupLogging(cmd *cli.Command) {
	if cmd.Bool("debug") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
}

// loadConfig reads the config file named by --config, falling back to
// defaults when it does not exist.
func loadConfig(cmd *cli.Command) *config.Config {
	configPath := cmd.String("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Warn("config not found, using defaults", "path", configPath, "error", err)
		cfg = config.Default()
	}
	return cfg
}

// openStore opens the SQLite task store, creating its directory.
func openStore(cfg *config.Config) (tasks.Store, error) {
	if cfg.Store.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	return tasks.NewSQLStore(cfg.Store.Path)
}

// buildChatRegistry assembles the session registry. Each session gets
// its own conversation context, resolver, dispatcher and tool bindings
// so anaphora and tie-break state never leak between sessions.
func buildChatRegistry(ctx context.Context, cfg *config.Config, store tasks.Store, bus *events.Bus) (*chat.Registry, error) {
	modelRegistry := models.NewRegistry(cfg.Models)
	chatModel, err := modelRegistry.Default(ctx)
	if err != nil {
		return nil, fmt.Errorf("init default model: %w", err)
	}
	slog.Info("chat model ready", "provider", modelRegistry.DefaultName())

	// Model and tool telemetry flows to the bus via eino callbacks.
	einocb.AppendGlobalHandlers(callbacks.NewEventBusHandler(bus, events.SourceChat))

	factory := agent.NewFactory(chatModel, cfg.Chat.SystemPrompt)
	tieBreak := tools.TieBreak(cfg.Chat.TieBreak)

	build := func(sessionID string) *chat.Orchestrator {
		conversation := chat.NewConversationContext(cfg.Chat.MaxHistory)

		resolver := tools.NewResolver(store, tieBreak, cfg.Chat.MaxListLimit, conversation)
		dispatcher := tools.NewDispatcher(store, tools.DispatcherOptions{
			Resolver:     resolver,
			Bulk:         tools.NewBulkExecutor(store, cfg.Chat.BulkLimit),
			Bus:          bus,
			ListLimit:    cfg.Chat.ListLimit,
			MaxListLimit: cfg.Chat.MaxListLimit,
		})

		return chat.NewOrchestrator(chat.OrchestratorConfig{
			SessionID: sessionID,
			Context:   conversation,
			Invoker:   chat.NewAgentInvoker(factory, tools.All(dispatcher)),
			Store:     store,
			Bus:       bus,
			ListLimit: cfg.Chat.ListLimit,
		})
	}

	return chat.NewRegistry(build, bus), nil
}
