package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/procure-chat/backend/internal/client"
	"github.com/zhouzirui/procure-chat/backend/internal/config"
	"github.com/zhouzirui/procure-chat/backend/internal/model/form"
	"github.com/zhouzirui/procure-chat/backend/internal/service/conversation"
	"github.com/zhouzirui/procure-chat/backend/internal/service/formsync"
	"github.com/zhouzirui/procure-chat/backend/internal/service/lifecycle"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	api := client.New(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout)
	engine := formsync.New(api)
	life := lifecycle.New(api, api, engine)
	convo := conversation.New(api, engine)

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Printf("procure-chat client, backend %s\n", cfg.Backend.BaseURL)
	bindSession(ctx, scanner, life)
	fmt.Println("Session ready. Chat freely, or use /help for form commands.")

	repl(ctx, scanner, engine, convo, api, life)
}

// bindSession prompts for a session name until the lifecycle reaches Active.
// Each failed attempt leaves it retryable.
func bindSession(ctx context.Context, scanner *bufio.Scanner, life *lifecycle.Lifecycle) {
	for {
		fmt.Print("session name> ")
		if !scanner.Scan() {
			os.Exit(0)
		}

		id, err := life.Submit(ctx, scanner.Text())
		switch {
		case err == nil:
			fmt.Printf("session %q active (id %s)\n", life.Name(), id)
			return
		case errors.Is(err, lifecycle.ErrNameRequired):
			fmt.Println("Please enter a session name.")
		case isSyncError(err):
			// Session created; only the initial form fetch failed.
			fmt.Printf("session active, but the form could not be fetched: %v\n", err)
			fmt.Println("Use /refresh to retry.")
			return
		default:
			fmt.Printf("Error creating session: %v\n", err)
		}
	}
}

func repl(ctx context.Context, scanner *bufio.Scanner, engine *formsync.Engine, convo *conversation.Service, api *client.Client, life *lifecycle.Lifecycle) {
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "/") {
			reply, err := convo.Send(ctx, line)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Println(reply)
			continue
		}

		parts := strings.SplitN(line, " ", 3)
		switch parts[0] {
		case "/quit", "/exit":
			return
		case "/help":
			printHelp()
		case "/form":
			printForm(engine.Snapshot())
		case "/set":
			if len(parts) < 3 {
				fmt.Println("usage: /set <field> <value>")
				continue
			}
			if err := engine.SetField(parts[1], parts[2]); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
		case "/save":
			doc := engine.Snapshot()
			if err := engine.Push(ctx, &doc); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Println("Form updated successfully.")
		case "/refresh":
			if err := engine.Pull(ctx); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Println("Form refreshed.")
		case "/history":
			printHistory(ctx, api, life.SessionID())
		case "/sessions":
			printSessions(ctx, api)
		default:
			fmt.Printf("unknown command %s, try /help\n", parts[0])
		}
	}
}

func printHelp() {
	fmt.Println(`commands:
  /form             show the current form
  /set <field> <v>  edit a field, e.g. /set title Roof repair
  /save             push the form to the backend
  /refresh          pull the latest form from the backend
  /history          show stored chat turns for this session
  /sessions         list all sessions on the backend
  /quit             leave`)
}

func printForm(doc form.Document) {
	for _, f := range form.Schema {
		if !f.Required(&doc) && f.Get(&doc) == "" {
			continue
		}
		marker := " "
		if f.Required(&doc) && strings.TrimSpace(f.Get(&doc)) == "" {
			marker = "*"
		}
		fmt.Printf("%s %-60s %s\n", marker, f.Path, f.Get(&doc))
	}
	if err := form.Validate(&doc); err != nil {
		fmt.Println("fields marked * are still required")
	}
}

func printHistory(ctx context.Context, api *client.Client, sessionID string) {
	messages, err := api.MessageHistory(ctx, sessionID)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for _, m := range messages {
		fmt.Printf("you: %s\nbot: %s\n", m.Prompt, m.Response)
	}
}

func printSessions(ctx context.Context, api *client.Client) {
	sessions, err := api.ListSessions(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for _, s := range sessions {
		fmt.Printf("%s  updated %s\n", s.ID, s.LastUpdatedAt.Format("2006-01-02 15:04:05"))
	}
}

func isSyncError(err error) bool {
	var syncErr *formsync.SyncError
	return errors.As(err, &syncErr)
}
