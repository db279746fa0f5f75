package app

import (
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Kirkidoo/Sync-Stock/internal/supplier"
	"github.com/Kirkidoo/Sync-Stock/pkg/errors"
)

// DefaultSuppliersFile is the suppliers file searched for in the working
// directory when --suppliers is not given.
const DefaultSuppliersFile = "stocksync.yaml"

// Config holds the application configuration loaded from environment
// variables, .env files, and the suppliers file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool

	// Catalog access
	ShopDomain  string
	AccessToken string
	APIVersion  string
	BatchSize   int

	// Supplier pairs
	SuppliersFile string
	Suppliers     []SupplierPair

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// SupplierPair defines one supplier/location pair in the suppliers file.
// Credentials are referenced by environment variable name so secrets stay
// out of the file.
type SupplierPair struct {
	Name              string `yaml:"name"`
	Driver            string `yaml:"driver"`
	LocationID        string `yaml:"location_id"`
	URL               string `yaml:"url"`
	TokenEnv          string `yaml:"token_env"`
	CustomerNumberEnv string `yaml:"customer_number_env"`
	Language          string `yaml:"language"`
	ChunkSize         int    `yaml:"chunk_size"`
	Workers           int    `yaml:"workers"`
}

// suppliersFile is the on-disk shape of the suppliers file.
type suppliersFile struct {
	Suppliers []SupplierPair `yaml:"suppliers"`
}

// SourceConfig resolves the pair into a supplier client configuration,
// reading the referenced credential environment variables.
func (p SupplierPair) SourceConfig() (supplier.Config, error) {
	if p.TokenEnv == "" {
		return supplier.Config{}, errors.NewConfigError("suppliers", p.Name+": token_env is required", nil)
	}
	token := os.Getenv(p.TokenEnv)
	if token == "" {
		return supplier.Config{}, errors.NewConfigError("suppliers", p.Name+": environment variable "+p.TokenEnv+" not set", nil)
	}

	cfg := supplier.Config{
		Name:      p.Name,
		Driver:    supplier.Driver(p.Driver),
		URL:       p.URL,
		Token:     token,
		Language:  p.Language,
		ChunkSize: p.ChunkSize,
		Workers:   p.Workers,
	}

	if p.CustomerNumberEnv != "" {
		cfg.CustomerNumber = os.Getenv(p.CustomerNumberEnv)
	}

	return cfg, nil
}

// LoadConfig loads configuration from all sources in order of precedence:
// command-line flags (applied later by cobra), environment variables,
// .env files, then the suppliers file.
func LoadConfig() (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	config := &Config{
		ShopDomain:  firstEnv("SHOP_URL", "SHOP_DOMAIN"),
		AccessToken: firstEnv("SHOPIFY_ACCESS_TOKEN", "ACCESS_TOKEN"),
		APIVersion:  viper.GetString("SHOPIFY_API_VERSION"),
		BatchSize:   viper.GetInt("UPDATE_BATCH_SIZE"),

		SuppliersFile: getEnvOrDefault("SUPPLIERS_FILE", DefaultSuppliersFile),

		LogLevel:  viper.GetString("LOG_LEVEL"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	return config, nil
}

// LoadSuppliers parses the suppliers file into config. Commands that work
// on pairs call this after flag parsing so --suppliers takes effect.
func (c *Config) LoadSuppliers() error {
	data, err := os.ReadFile(c.SuppliersFile)
	if err != nil {
		if os.IsNotExist(err) && c.SuppliersFile == DefaultSuppliersFile {
			// No file and no flag: pairs may still come from nowhere,
			// which commands report as a config error when they need one.
			return nil
		}
		return errors.NewConfigError("suppliers", "reading "+c.SuppliersFile, err)
	}

	var file suppliersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return errors.WrapParse("yaml", c.SuppliersFile, err)
	}

	c.Suppliers = file.Suppliers
	return nil
}

// UpdateFromFlags updates config values from parsed command flags so flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet bool, logLevel, suppliersFile string) {
	c.Verbose = verbose
	c.Quiet = quiet
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if suppliersFile != "" {
		c.SuppliersFile = suppliersFile
	}
}

// loadEnvFiles loads .env files if present. Missing files are fine.
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
}

// firstEnv returns the first non-empty value among the named variables.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := viper.GetString(key); value != "" {
			return value
		}
	}
	return ""
}

// getEnvOrDefault returns the environment value or a default.
func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
