package main

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Mehdi030/Verletzungsanalyse/config"
	"github.com/Mehdi030/Verletzungsanalyse/models"
	"github.com/Mehdi030/Verletzungsanalyse/services"
	"github.com/Mehdi030/Verletzungsanalyse/sources"
	"github.com/Mehdi030/Verletzungsanalyse/sources/fbref"
	"github.com/Mehdi030/Verletzungsanalyse/sources/sofascore"
	"github.com/Mehdi030/Verletzungsanalyse/sources/transfermarkt"
	"github.com/Mehdi030/Verletzungsanalyse/storage"
)

var (
	runsCounter   prometheus.Counter
	eventsCounter prometheus.Counter
)

func init() {
	runsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reconciliation_runs_total",
		Help: "Total number of completed reconciliation runs.",
	})
	eventsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "canonical_injury_events_total",
		Help: "Total number of canonical injury events produced across runs.",
	})
	prometheus.MustRegister(runsCounter, eventsCounter)
}

// runState hält das Ergebnis des letzten Laufs für die API vor.
type runState struct {
	mu   sync.Mutex
	last *models.RunResult
}

func (s *runState) set(r *models.RunResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = r
}

func (s *runState) get() *models.RunResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to injuries database.")

	logging.Info("Running database auto-migration...")
	db.AutoMigrate(&models.TrackedPlayer{}, &models.InjuryEventRow{}, &models.TeamSeasonSummary{})

	// Seeding
	seedDefaultPlayers(db, logging)

	// Setup Sources
	var enabledSources []sources.Source
	for _, name := range cfg.EnabledSourceList() {
		switch name {
		case "transfermarkt":
			enabledSources = append(enabledSources, transfermarkt.NewFetcher(cfg, logging))
		case "fbref":
			enabledSources = append(enabledSources, fbref.NewFetcher(cfg, logging))
		case "sofascore":
			enabledSources = append(enabledSources, sofascore.NewFetcher(cfg, logging))
		default:
			logging.Warn("Unknown source in config", zap.String("source_name", name))
		}
	}
	if len(enabledSources) == 0 {
		logging.Fatal("No valid sources enabled. Check ENABLED_SOURCES in .env")
	}
	logging.Info("Active sources loaded", zap.Strings("sources", cfg.EnabledSourceList()))

	// Setup Exporter (S3 optional)
	var exporter *storage.Exporter
	if cfg.S3Enabled {
		s3Client, err := storage.NewS3Client(cfg)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		exporter = storage.NewExporter(cfg, logging, s3Client)
	} else {
		exporter = storage.NewExporter(cfg, logging, nil)
	}

	pipeline := services.NewPipeline(cfg, logging, enabledSources)
	state := &runState{}

	runOnce := func(ctx context.Context) (*models.RunResult, error) {
		var players []models.TrackedPlayer
		if err := db.Find(&players).Error; err != nil {
			return nil, err
		}
		result := pipeline.Run(ctx, players)
		if err := storage.PersistRun(db, result); err != nil {
			return nil, err
		}
		if err := exporter.Export(ctx, result); err != nil {
			return nil, err
		}
		state.set(result)
		runsCounter.Inc()
		eventsCounter.Add(float64(len(result.Events)))
		return result, nil
	}

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupPlayerRoutes(router, db, logging)
	setupEventRoutes(router, db, logging)
	setupSummaryRoutes(router, db, logging)
	setupRunRoutes(router, state, logging, runOnce)

	// Setup Cron
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CronSchedule, func() {
		logging.Info("Running scheduled reconciliation...")
		result, err := runOnce(context.Background())
		if err != nil {
			logging.Error("Cron run failed", zap.Error(err))
		} else {
			logging.Info("Cron run completed",
				zap.String("run_id", result.RunID),
				zap.Int("events", len(result.Events)))
		}
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func setupPlayerRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/players")

	rg.GET("/", func(c *gin.Context) {
		var players []models.TrackedPlayer
		if err := db.Find(&players).Error; err != nil {
			log.Error("Database query for players failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, players)
	})

	rg.POST("/", func(c *gin.Context) {
		var player models.TrackedPlayer
		if err := c.ShouldBindJSON(&player); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if player.Name == "" || player.Team == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and team are required"})
			return
		}
		if err := db.Create(&player).Error; err != nil {
			log.Error("Failed to create player", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusCreated, player)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		if err := db.Delete(&models.TrackedPlayer{}, c.Param("id")).Error; err != nil {
			log.Error("Failed to delete player", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func setupEventRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/events")

	rg.GET("/", func(c *gin.Context) {
		query := db.Model(&models.InjuryEventRow{})
		if team := c.Query("team"); team != "" {
			query = query.Where("team = ?", team)
		}
		if season := c.Query("season"); season != "" {
			query = query.Where("season = ?", season)
		}
		if category := c.Query("category"); category != "" {
			query = query.Where("category = ?", category)
		}
		if c.Query("exclude_low_confidence") == "true" {
			query = query.Where("low_confidence = ?", false)
		}

		var rows []models.InjuryEventRow
		if err := query.Order("start_date, player").Find(&rows).Error; err != nil {
			log.Error("Database query for events failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, rows)
	})
}

func setupSummaryRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/summaries")

	rg.GET("/", func(c *gin.Context) {
		query := db.Model(&models.TeamSeasonSummary{})
		if team := c.Query("team"); team != "" {
			query = query.Where("team = ?", team)
		}
		if season := c.Query("season"); season != "" {
			query = query.Where("season = ?", season)
		}

		var summaries []models.TeamSeasonSummary
		if err := query.Order("team, season").Find(&summaries).Error; err != nil {
			log.Error("Database query for summaries failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, summaries)
	})
}

func setupRunRoutes(router *gin.Engine, state *runState, log *zap.Logger, runOnce func(context.Context) (*models.RunResult, error)) {
	rg := router.Group("/runs")

	rg.POST("/", func(c *gin.Context) {
		log.Info("Manual reconciliation run triggered via API.")
		result, err := runOnce(c.Request.Context())
		if err != nil {
			log.Error("Manual run failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	})

	rg.GET("/latest", func(c *gin.Context) {
		result := state.get()
		if result == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no run completed yet"})
			return
		}
		c.JSON(http.StatusOK, result)
	})

	rg.GET("/latest/failures", func(c *gin.Context) {
		result := state.get()
		if result == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no run completed yet"})
			return
		}
		c.JSON(http.StatusOK, result.Failures)
	})
}

// seedDefaultPlayers legt eine kleine Kader-Grundausstattung an, falls die
// Tabelle leer ist. Die Transfermarkt-IDs stammen aus der Bundesliga-Saison
// 2023/2024.
func seedDefaultPlayers(db *gorm.DB, log *zap.Logger) {
	var count int64
	db.Model(&models.TrackedPlayer{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []models.TrackedPlayer{
		{Name: "Manuel Neuer", Team: "FC Bayern München", TransfermarktID: "17259", SofascoreID: "4173"},
		{Name: "Joshua Kimmich", Team: "FC Bayern München", TransfermarktID: "161056", FBrefURL: "/en/players/6434f10d/Joshua-Kimmich", SofascoreID: "254491"},
		{Name: "Marco Reus", Team: "Borussia Dortmund", TransfermarktID: "35207", FBrefURL: "/en/players/36a3ff67/Marco-Reus"},
		{Name: "Niclas Füllkrug", Team: "Borussia Dortmund", TransfermarktID: "73164", SofascoreID: "186030"},
		{Name: "Florian Wirtz", Team: "Bayer Leverkusen", TransfermarktID: "598577", FBrefURL: "/en/players/1e2dbf09/Florian-Wirtz", SofascoreID: "975411"},
	}

	for _, p := range defaults {
		if err := db.Create(&p).Error; err != nil {
			log.Warn("Failed to seed player", zap.String("name", p.Name), zap.Error(err))
		}
	}
	log.Info("Seeded default tracked players", zap.Int("count", len(defaults)))
}
