package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"verletzungen"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4280"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// Fetch-Verhalten
	MaxFetchAttempts int           `envconfig:"MAX_FETCH_ATTEMPTS" default:"4"`
	BackoffBase      time.Duration `envconfig:"BACKOFF_BASE" default:"500ms"`
	BackoffCap       time.Duration `envconfig:"BACKOFF_CAP" default:"15s"`
	FetchTimeout     time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	PolitenessDelay  time.Duration `envconfig:"POLITENESS_DELAY" default:"2s"`
	FetchWorkers     int           `envconfig:"FETCH_WORKERS" default:"5"`

	// Reconciler
	MergeToleranceDays int    `envconfig:"MERGE_TOLERANCE_DAYS" default:"7"`
	StaleSources       string `envconfig:"STALE_SOURCES" default:""` // kommagetrennt, z.B. "sofascore"

	// Saison-Zuordnung: Monat, ab dem eine neue Saison beginnt (1-12)
	SeasonBoundaryMonth int `envconfig:"SEASON_BOUNDARY_MONTH" default:"7"`

	// Quellen
	EnabledSources       string `envconfig:"ENABLED_SOURCES" default:"transfermarkt,fbref,sofascore"`
	TransfermarktBaseURL string `envconfig:"TRANSFERMARKT_BASE_URL" default:"https://www.transfermarkt.de"`
	FBrefBaseURL         string `envconfig:"FBREF_BASE_URL" default:"https://fbref.com"`
	SofascoreBaseURL     string `envconfig:"SOFASCORE_BASE_URL" default:"https://api.sofascore.com/api/v1"`

	// Export
	ExportDir    string `envconfig:"EXPORT_DIR" default:"data"`
	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"0 5 * * *"`

	// Optionaler S3-Upload der Export-Artefakte
	S3Enabled bool   `envconfig:"S3_ENABLED" default:"false"`
	S3Key     string `envconfig:"S3_KEY"`
	S3Secret  string `envconfig:"S3_SECRET"`
	S3URL     string `envconfig:"S3_URL"`
	S3Region  string `envconfig:"S3_REGION"`
	S3Bucket  string `envconfig:"S3_BUCKET"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// StaleSourceList zerlegt STALE_SOURCES in einzelne Quellennamen.
func (c *Config) StaleSourceList() []string {
	return splitList(c.StaleSources)
}

// EnabledSourceList zerlegt ENABLED_SOURCES in einzelne Quellennamen.
func (c *Config) EnabledSourceList() []string {
	return splitList(c.EnabledSources)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
