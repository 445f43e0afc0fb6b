package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
)

// NewSessionsCommand returns the sessions subcommand. It talks to a
// running gateway; sessions live in the server process.
func NewSessionsCommand() *cli.Command {
	gatewayFlag := &cli.StringFlag{
		Name:  "gateway",
		Usage: "Gateway base URL",
		Value: "http://127.0.0.1:18520",
	}

	return &cli.Command{
		Name:  "sessions",
		Usage: "Manage chat sessions on a running gateway",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List active sessions",
				Flags:  []cli.Flag{gatewayFlag},
				Action: runSessionsList,
			},
			{
				Name:      "show",
				Usage:     "Show a session's conversation context",
				ArgsUsage: "<session_id>",
				Flags:     []cli.Flag{gatewayFlag},
				Action:    runSessionsShow,
			},
			{
				Name:      "clear",
				Usage:     "Clear a session's conversation context",
				ArgsUsage: "<session_id>",
				Flags:     []cli.Flag{gatewayFlag},
				Action:    runSessionsClear,
			},
			{
				Name:      "remove",
				Usage:     "Remove a session entirely",
				ArgsUsage: "<session_id>",
				Flags:     []cli.Flag{gatewayFlag},
				Action:    runSessionsRemove,
			},
		},
		DefaultCommand: "list",
	}
}

func gatewayGet(ctx context.Context, cmd *cli.Command, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cmd.String("gateway")+path, nil)
	if err != nil {
		return err
	}
	return gatewayDo(req, out)
}

func gatewayCall(ctx context.Context, cmd *cli.Command, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, cmd.String("gateway")+path, nil)
	if err != nil {
		return err
	}
	return gatewayDo(req, out)
}

func gatewayDo(req *http.Request, out any) error {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("connect to gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return fmt.Errorf("%s", e.Error)
		}
		return fmt.Errorf("gateway returned %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

func runSessionsList(ctx context.Context, cmd *cli.Command) error {
	var body struct {
		Sessions []string `json:"sessions"`
	}
	if err := gatewayGet(ctx, cmd, "/api/sessions/", &body); err != nil {
		return err
	}

	if len(body.Sessions) == 0 {
		fmt.Println("No active sessions.")
		return nil
	}
	for _, id := range body.Sessions {
		fmt.Println(id)
	}
	return nil
}

func runSessionsShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: taskchat sessions show <session_id>")
	}

	var summary struct {
		MessageCount   int `json:"message_count"`
		MaxHistory     int `json:"max_history"`
		RecentMessages []struct {
			Role string `json:"role"`
			Text string `json:"content"`
		} `json:"recent_messages"`
	}
	if err := gatewayGet(ctx, cmd, "/api/sessions/"+id+"/context", &summary); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Messages:\t%d (max %d)\n", summary.MessageCount, summary.MaxHistory)
	w.Flush()

	for _, m := range summary.RecentMessages {
		fmt.Printf("[%s] %s\n", m.Role, m.Text)
	}
	return nil
}

func runSessionsClear(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: taskchat sessions clear <session_id>")
	}

	if err := gatewayCall(ctx, cmd, http.MethodPost, "/api/sessions/"+id+"/clear", nil); err != nil {
		return err
	}
	fmt.Printf("Session %s cleared.\n", id)
	return nil
}

func runSessionsRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: taskchat sessions remove <session_id>")
	}

	if err := gatewayCall(ctx, cmd, http.MethodDelete, "/api/sessions/"+id, nil); err != nil {
		return err
	}
	fmt.Printf("Session %s removed.\n", id)
	return nil
}
