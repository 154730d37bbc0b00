// Command server runs the WordHunt game server.
//
// Configuration is read from the environment (optionally via a .env file)
// and may be overridden with flags. The server stops gracefully on SIGINT or
// SIGTERM.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tyrowin/wordhunt/internal/logging"
	"github.com/Tyrowin/wordhunt/internal/puzzle"
	"github.com/Tyrowin/wordhunt/internal/server"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	config := server.NewConfigFromEnv()
	parseFlags(config)

	logger, err := logging.New(config.LogFile)
	if err != nil {
		log.Fatalf("Failed to open log: %v", err)
	}
	defer logger.Close()

	logger.Infof("Service is starting.")

	puzzles, err := puzzle.NewStore(config.PuzzleDir, logger)
	if err != nil {
		logger.Errorf("Failed to load puzzles: %v", err)
		log.Fatalf("Failed to load puzzles: %v", err)
	}

	srv := server.New(*config, puzzles, logger)
	if err := srv.Start(); err != nil {
		logger.Errorf("Error in server start: %v", err)
		log.Fatalf("Failed to start server: %v", err)
	}
	fmt.Printf("WordHunt listening on %s\n", srv.Addr())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Infof("Service is stopping (%s).", sig)
	if err := srv.Shutdown(config.ShutdownTimeout); err != nil {
		logger.Errorf("Shutdown did not complete: %v", err)
	}
	logger.Infof("Game Server stopped successfully.")
}

// parseFlags applies command-line overrides on top of the environment config.
func parseFlags(cfg *server.Config) {
	flag.StringVar(&cfg.Host, "host", cfg.Host, "Address to bind the game listener to")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "Game listener port")
	flag.StringVar(&cfg.PuzzleDir, "puzzles", cfg.PuzzleDir, "Directory containing puzzle files")
	flag.StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "Address for the HTTP/WebSocket gateway (empty disables it)")
	flag.IntVar(&cfg.MaxConnections, "max-connections", cfg.MaxConnections, "Maximum concurrent players (0 for unlimited)")
	flag.BoolVar(&cfg.AnnounceRounds, "announce-rounds", cfg.AnnounceRounds, "Send the new puzzle after a round completes")
	flag.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Append logs to this file instead of stderr")
	flag.Parse()
}
