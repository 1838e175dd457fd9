package main

import (
	"flag"
	"fmt"
	"os"

	"hooktrade/internal/bootstrap"

	"github.com/joho/godotenv"
)

var (
	// Version information (set via build flags)
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "configs/hooktrade.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("hooktrade version %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	// Credentials come from the environment; a local .env is optional.
	_ = godotenv.Load()

	app, err := bootstrap.NewApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	app.Logger.Info("Starting hooktrade",
		"version", version,
		"exchange", app.Cfg.Exchange.Name,
		"testnet", app.Cfg.Exchange.Testnet,
		"symbols", app.Cfg.Trading.AllowedSymbols,
		"listen_addr", app.Cfg.Server.ListenAddr,
	)

	engine, err := app.BuildEngine()
	if err != nil {
		app.Logger.Error("Failed to build engine", "error", err)
		os.Exit(1)
	}
	defer engine.Audit.Close()

	if err := app.Run(engine.Server); err != nil {
		app.Logger.Error("Shutdown with error", "error", err)
		os.Exit(1)
	}

	app.Logger.Info("hooktrade stopped")
}
