package config

import (
	"log"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool

	DataDir      string
	LedgerFile   string
	ReminderFile string
	PlayerFile   string

	BankingInterval   time.Duration
	SchedulerInterval time.Duration
	SnapshotInterval  time.Duration
	QueueCapacity     int

	RateLimit string
}

// LoadConfig loads configuration from environment variables and a .env
// file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("LEDGER_FILE", "banking.json")
	viper.SetDefault("REMINDER_FILE", "reminders.json")
	viper.SetDefault("PLAYER_FILE", "players.json")
	viper.SetDefault("BANKING_INTERVAL", "1s")
	viper.SetDefault("SCHEDULER_INTERVAL", "500ms")
	viper.SetDefault("SNAPSHOT_INTERVAL", "5m")
	viper.SetDefault("QUEUE_CAPACITY", 256)
	viper.SetDefault("RATE_LIMIT", "120-M")

	viper.AutomaticEnv()

	cfg := &Config{
		Port:          viper.GetString("PORT"),
		IsProduction:  viper.GetBool("IS_PRODUCTION"),
		DataDir:       viper.GetString("DATA_DIR"),
		QueueCapacity: viper.GetInt("QUEUE_CAPACITY"),
		RateLimit:     viper.GetString("RATE_LIMIT"),
	}

	cfg.LedgerFile = filepath.Join(cfg.DataDir, viper.GetString("LEDGER_FILE"))
	cfg.ReminderFile = filepath.Join(cfg.DataDir, viper.GetString("REMINDER_FILE"))
	cfg.PlayerFile = filepath.Join(cfg.DataDir, viper.GetString("PLAYER_FILE"))

	cfg.BankingInterval = duration("BANKING_INTERVAL", time.Second)
	cfg.SchedulerInterval = duration("SCHEDULER_INTERVAL", 500*time.Millisecond)
	cfg.SnapshotInterval = duration("SNAPSHOT_INTERVAL", 5*time.Minute)

	if cfg.QueueCapacity <= 0 {
		log.Printf("Warning: Invalid QUEUE_CAPACITY (%d). Defaulting to 256.\n", cfg.QueueCapacity)
		cfg.QueueCapacity = 256
	}

	return cfg, nil
}

func duration(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		return fallback
	}
	return d
}
