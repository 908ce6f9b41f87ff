package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends accepted by CART_STORE.
const (
	StoreMemory  = "memory"
	StoreFile    = "file"
	StoreRedis   = "redis"
	StoreMongoDB = "mongodb"
)

// Receipt archives accepted by RECEIPT_ARCHIVE.
const (
	ArchiveMemory  = "memory"
	ArchiveMongoDB = "mongodb"
	ArchiveSheets  = "sheets"
)

// Config is everything the simulator reads from the environment.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Catalog   CatalogConfig
	Storage   StorageConfig
	Redis     RedisConfig
	MongoDB   MongoDBConfig
	Sheets    SheetsConfig
	Checkout  CheckoutConfig
	Reporting ReportingConfig
}

// ServerConfig is the listen port of the page and API server.
type ServerConfig struct {
	Port string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string
	Format string
}

// CatalogConfig points at the static product list.
type CatalogConfig struct {
	Source  string
	Timeout time.Duration
}

// StorageConfig selects where the cart is persisted.
type StorageConfig struct {
	Backend  string
	Key      string
	FilePath string
}

// RedisConfig holds connection settings for the redis cart backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MongoDBConfig is used by the mongodb cart store and receipt archive.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig points the sheets receipt archive at a spreadsheet.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// CheckoutConfig holds the simulated payment settings.
type CheckoutConfig struct {
	PaymentDelay   time.Duration
	ReceiptArchive string
}

// ReportingConfig controls when the daily sales summary is logged.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// Load reads an optional env file, then the environment, and validates the result.
// A missing env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("load env file %s: %w", envFile, err)
			}
		}
	} else {
		// .env in the working directory is optional
		_ = godotenv.Load()
	}

	catalogTimeout, err := getenvDuration("CATALOG_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	paymentDelay, err := getenvDuration("PAYMENT_DELAY", 1200*time.Millisecond)
	if err != nil {
		return nil, err
	}
	redisDB, err := getenvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level:  getenvWithDefault("LOG_LEVEL", "info"),
			Format: getenvWithDefault("LOG_FORMAT", "json"),
		},
		Catalog: CatalogConfig{
			Source:  getenvWithDefault("CATALOG_SOURCE", "products.json"),
			Timeout: catalogTimeout,
		},
		Storage: StorageConfig{
			Backend:  getenvWithDefault("CART_STORE", StoreFile),
			Key:      getenvWithDefault("CART_STORAGE_KEY", "simulator_cart_v1"),
			FilePath: getenvWithDefault("CART_FILE_PATH", "data/cart.json"),
		},
		Redis: RedisConfig{
			Addr:     getenvWithDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "shopsim"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Checkout: CheckoutConfig{
			PaymentDelay:   paymentDelay,
			ReceiptArchive: getenvWithDefault("RECEIPT_ARCHIVE", ArchiveMemory),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "UTC"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("unsupported LOG_FORMAT %q", c.Log.Format)
	}

	if c.Catalog.Source == "" {
		return errors.New("CATALOG_SOURCE must be provided")
	}

	if c.Storage.Key == "" {
		return errors.New("CART_STORAGE_KEY must not be empty")
	}

	switch c.Storage.Backend {
	case StoreMemory:
	case StoreFile:
		if c.Storage.FilePath == "" {
			return errors.New("CART_FILE_PATH must be provided for the file store")
		}
	case StoreRedis:
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR must be provided for the redis store")
		}
	case StoreMongoDB:
		if c.MongoDB.URI == "" || c.MongoDB.DBName == "" {
			return errors.New("MONGODB_URI and MONGODB_DB_NAME must be provided for the mongodb store")
		}
	default:
		return fmt.Errorf("unsupported CART_STORE %q", c.Storage.Backend)
	}

	switch c.Checkout.ReceiptArchive {
	case ArchiveMemory:
	case ArchiveMongoDB:
		if c.MongoDB.URI == "" || c.MongoDB.DBName == "" {
			return errors.New("MONGODB_URI and MONGODB_DB_NAME must be provided for the mongodb archive")
		}
	case ArchiveSheets:
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided")
		}
	default:
		return fmt.Errorf("unsupported RECEIPT_ARCHIVE %q", c.Checkout.ReceiptArchive)
	}

	if c.Checkout.PaymentDelay < 0 {
		return errors.New("PAYMENT_DELAY must not be negative")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Reporting.Timezone, err)
	}

	return nil
}

// UsesMongoDB reports whether any component needs a MongoDB connection.
func (c *Config) UsesMongoDB() bool {
	return c.Storage.Backend == StoreMongoDB || c.Checkout.ReceiptArchive == ArchiveMongoDB
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}
