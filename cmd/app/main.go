package main

import (
	"flag"
	"log"
	"os"

	"StockCast/internal/di"
	"StockCast/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s symbols=%v forecaster=%s", cfg.Environment, cfg.Symbols, cfg.Forecaster.ServiceURL)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	log.Printf("clickhouse: connected and schema ready - db: %s", cfg.ClickHouse.Database)
	if cfg.Kafka.Enabled {
		log.Printf("kafka: brokers=%v topic=%s", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
