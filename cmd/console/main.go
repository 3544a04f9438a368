package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/mud-engine/internal/app"
	"github.com/jwebster45206/mud-engine/internal/config"
	"github.com/jwebster45206/mud-engine/internal/logger"
)

type ConsoleConfig struct {
	APIBaseURL string
	LogFile    string
	Timeout    time.Duration
}

func main() {
	name := flag.String("name", "", "character to play; created on first use")
	apiURL := flag.String("api", getEnv("API_BASE_URL", ""), "play through a running API server instead of in-process")
	logFile := flag.String("log", getEnv("CONSOLE_LOG", "console.log"), "file for engine logs when playing in-process")
	flag.Parse()

	cfg := &ConsoleConfig{
		APIBaseURL: strings.TrimRight(*apiURL, "/"),
		LogFile:    *logFile,
		Timeout:    30 * time.Second,
	}

	game, closeGame, err := openGame(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer closeGame()

	if *name == "" {
		*name = promptName()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	c, created, err := loadOrCreate(ctx, game, *name)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load character: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(cfg, game, c, created),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
	if ui, ok := final.(ConsoleUI); ok && ui.Farewell != "" {
		fmt.Println(ui.Farewell)
	}
}

// openGame connects to the API when one is configured and otherwise wires
// an engine in-process from the usual environment configuration.
func openGame(cfg *ConsoleConfig) (Game, func(), error) {
	if cfg.APIBaseURL != "" {
		client := &http.Client{Timeout: cfg.Timeout}
		if !testConnection(client, cfg.APIBaseURL) {
			return nil, nil, fmt.Errorf("could not connect to API at %s. Please ensure the API is running.\nTry: go run ./cmd/api", cfg.APIBaseURL)
		}
		return newAPIClient(cfg.APIBaseURL, client), func() {}, nil
	}

	appCfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log := logger.SetupWriter(appCfg, f)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	a, err := app.New(ctx, appCfg, log)
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("failed to start engine: %w", err)
	}
	return a.Engine, func() {
		a.Close()
		_ = f.Close()
	}, nil
}

func promptName() string {
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Character name: ")
		if !in.Scan() {
			log.Fatal("no character name given")
		}
		if name := strings.TrimSpace(in.Text()); name != "" {
			return name
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
