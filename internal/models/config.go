package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Store    StoreConfig
	Formance FormanceConfig
	Server   ServerConfig
	Jobs     JobsConfig
	Seed     SeedConfig
	Tracing  TracingConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

const (
	StoreBackendSqlite   = "sqlite"
	StoreBackendFormance = "formance"
)

// StoreConfig selects the backend used for transactions and accounts
type StoreConfig struct {
	Backend string
}

// FormanceConfig holds Formance Stack connection settings
type FormanceConfig struct {
	StackURL     string
	ClientID     string
	ClientSecret string
	LedgerName   string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port               string
	AllowedOrigins     []string
	MaxRequestBodySize int64
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
}

// JobsConfig holds background job runner settings
type JobsConfig struct {
	SweepInterval time.Duration
	RunOnStart    bool
}

// SeedConfig holds demo data generation settings
type SeedConfig struct {
	ProfilesFile string
	RandomSeed   int64
}

// TracingConfig holds OpenTelemetry exporter settings
type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	Environment string
}
