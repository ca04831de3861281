package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Mehdi030/Verletzungsanalyse/config"
	"github.com/Mehdi030/Verletzungsanalyse/models"
	"github.com/Mehdi030/Verletzungsanalyse/services"
	"github.com/Mehdi030/Verletzungsanalyse/sources"
	"github.com/Mehdi030/Verletzungsanalyse/sources/fbref"
	"github.com/Mehdi030/Verletzungsanalyse/sources/sofascore"
	"github.com/Mehdi030/Verletzungsanalyse/sources/transfermarkt"
	"github.com/Mehdi030/Verletzungsanalyse/storage"
)

// Einmaliger Pipeline-Lauf ohne Server: Kader aus einer JSON-Datei lesen,
// Quellen abgleichen, Ergebnis als CSV/JSON exportieren. Gedacht für manuelle
// Läufe und Cron außerhalb des Dienstes.
func main() {
	kaderPath := flag.String("kader", "kader.json", "Pfad zur Kader-Datei (JSON-Liste von Spielern)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Config load error", zap.Error(err))
	}

	players, err := loadKader(*kaderPath)
	if err != nil {
		logger.Fatal("Kader-Datei nicht lesbar", zap.String("path", *kaderPath), zap.Error(err))
	}
	if len(players) == 0 {
		logger.Fatal("Kader-Datei enthält keine Spieler", zap.String("path", *kaderPath))
	}

	var enabledSources []sources.Source
	for _, name := range cfg.EnabledSourceList() {
		switch name {
		case "transfermarkt":
			enabledSources = append(enabledSources, transfermarkt.NewFetcher(cfg, logger))
		case "fbref":
			enabledSources = append(enabledSources, fbref.NewFetcher(cfg, logger))
		case "sofascore":
			enabledSources = append(enabledSources, sofascore.NewFetcher(cfg, logger))
		default:
			logger.Warn("Unknown source in config", zap.String("source_name", name))
		}
	}
	if len(enabledSources) == 0 {
		logger.Fatal("No valid sources enabled. Check ENABLED_SOURCES in .env")
	}

	// Ctrl+C bricht Backoff-Wartezeiten und laufende Abrufe sauber ab.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := services.NewPipeline(cfg, logger, enabledSources)
	result := pipeline.Run(ctx, players)

	var exporter *storage.Exporter
	if cfg.S3Enabled {
		s3Client, err := storage.NewS3Client(cfg)
		if err != nil {
			logger.Fatal("S3 client creation failed", zap.Error(err))
		}
		exporter = storage.NewExporter(cfg, logger, s3Client)
	} else {
		exporter = storage.NewExporter(cfg, logger, nil)
	}

	if err := exporter.Export(context.Background(), result); err != nil {
		logger.Fatal("Export fehlgeschlagen", zap.Error(err))
	}

	logger.Info("Lauf abgeschlossen",
		zap.String("run_id", result.RunID),
		zap.Int("events", len(result.Events)),
		zap.Int("failures", len(result.Failures)))
}

func loadKader(path string) ([]models.TrackedPlayer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var players []models.TrackedPlayer
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, err
	}
	return players, nil
}
