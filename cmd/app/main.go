package main

import (
	"flag"
	"log"
	"os"

	"MarketHub/internal/di"
	"MarketHub/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s namespace=%s redis=%s:%d",
		cfg.Environment, cfg.Hub.Namespace, cfg.Redis.Host, cfg.Redis.Port)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
