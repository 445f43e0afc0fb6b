package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskchat/internal/chat"
	"github.com/dohr-michael/taskchat/internal/events"
)

// NewAskCommand returns the ask subcommand.
func NewAskCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Send one message to the assistant and print the reply",
		ArgsUsage: "<message>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the full structured reply as JSON",
			},
		},
		Action: runAsk,
	}
}

func runAsk(ctx context.Context, cmd *cli.Command) error {
	message := cmd.Args().First()
	if message == "" {
		return fmt.Errorf("usage: taskchat ask <message>")
	}

	setupLogging(cmd)
	cfg := loadConfig(cmd)

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

	reply := registry.Get(chat.DefaultSessionID).ProcessMessage(ctx, message)

	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reply)
	}

	fmt.Println(reply.Response)
	if len(reply.DisplayItems) > 0 {
		fmt.Println()
		printDisplayItems(reply.DisplayItems)
	}
	return nil
}

func printDisplayItems(items []chat.DisplayItem) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tDUE\tTITLE")
	for _, item := range items {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n",
			field(item.Data, "id"),
			field(item.Data, "status"),
			field(item.Data, "priority"),
			field(item.Data, "due_date"),
			field(item.Data, "title"),
		)
	}
	w.Flush()
}

func field(data map[string]any, key string) any {
	v, ok := data[key]
	if !ok || v == nil {
		return "-"
	}
	return v
}
