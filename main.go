package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"epitrello/internal/config"
	"epitrello/internal/gateway"
	"epitrello/internal/logs"
	"epitrello/internal/realtime"
	"epitrello/internal/service"
	"epitrello/internal/store"
	"epitrello/internal/tui"
)

func main() {
	// Parse CLI flags
	serverFlag := flag.String("server", "", "API base URL")
	tokenFlag := flag.String("token", "", "Bearer token")
	boardFlag := flag.String("board", "", "Board id to open")
	flag.StringVar(boardFlag, "b", "", "Board id to open (shorthand)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(config.CLIFlags{
		ServerURL: *serverFlag,
		Token:     *tokenFlag,
		Board:     *boardFlag,
	})
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ensure config file exists
	if err := config.EnsureConfigFile(); err != nil {
		log.Printf("Warning: could not create config file: %v", err)
	}

	// Logger writes to a file; stdout belongs to the TUI
	if dir, err := config.Dir(); err == nil {
		if err := logs.Initialize(dir, cfg.LogLevel); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not initialize logger: %v\n", err)
		}
	}

	if cfg.DefaultBoard == "" {
		fmt.Fprintln(os.Stderr, "Error: no board selected (use --board or set default_board in the config)")
		os.Exit(1)
	}

	api := gateway.New(cfg.ServerURL, cfg.Token)
	st := store.New()
	svc := service.New(st, api)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	me, err := api.Me(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not authenticate: %v\n", err)
		os.Exit(1)
	}

	exitCh := make(chan string, 1)
	merger := realtime.NewMerger(st, me.ID, func(boardID string) {
		select {
		case exitCh <- boardID:
		default:
		}
	})

	// The board stays usable without the socket; only live sync is lost.
	transport, err := realtime.Dial(context.Background(), cfg.SocketURL, cfg.Token)
	if err != nil {
		logs.Warn().Err(err).Str("url", cfg.SocketURL).Msg("realtime unavailable")
		transport = nil
	} else {
		defer transport.Close()
	}

	logs.Info().Str("board", cfg.DefaultBoard).Str("user", me.ID).Msg("starting board view")
	boardModel := tui.NewBoardModel(svc, merger, transport, cfg.DefaultBoard, exitCh)
	p := tea.NewProgram(boardModel, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Println("Error running program:", err)
		os.Exit(1)
	}
}
