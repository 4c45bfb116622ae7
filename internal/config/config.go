package config

import "time"

// Config is the root configuration for a tracker instance.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Scrape   ScrapeConfig   `yaml:"scrape"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Notify   NotifyConfig   `yaml:"notify"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds the HTTP API listener settings.
type ServerConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds the PostgreSQL connection.
type DatabaseConfig struct {
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// ScrapeConfig holds shared upstream scraper settings.
type ScrapeConfig struct {
	UserAgent      string        `yaml:"user_agent"`
	Timeout        time.Duration `yaml:"timeout"`
	Retries        int           `yaml:"retries"`
	Workers        int           `yaml:"workers"` // bounded concurrency across detail fetches
	HalkarzBaseURL string        `yaml:"halkarz_base_url"`
	KAPBaseURL     string        `yaml:"kap_base_url"`
	SPKBaseURL     string        `yaml:"spk_base_url"`
	SPKIssuanceURL string        `yaml:"spk_issuance_url"`
}

// JobsConfig holds scheduler intervals. ArchiveSpec is a cron expression with
// a seconds field; the rest are plain intervals.
type JobsConfig struct {
	HalkarzInterval         time.Duration `yaml:"halkarz_interval"`
	KAPIPOInterval          time.Duration `yaml:"kap_ipo_interval"`
	KAPNewsInterval         time.Duration `yaml:"kap_news_interval"`
	SPKApplicationsInterval time.Duration `yaml:"spk_applications_interval"`
	SPKIssuanceInterval     time.Duration `yaml:"spk_issuance_interval"`
	StatusInterval          time.Duration `yaml:"status_interval"`
	ArchiveSpec             string        `yaml:"archive_spec"`
	ReminderInterval        time.Duration `yaml:"reminder_interval"`
}

// NotifyConfig holds push notification settings. FCMCredentials is a path to
// a service account JSON file; notifications fall back to log-only when it is
// empty or Enabled is false.
type NotifyConfig struct {
	Enabled        bool          `yaml:"enabled"`
	FCMCredentials string        `yaml:"fcm_credentials"`
	ExpoURL        string        `yaml:"expo_url"`
	SendDelay      time.Duration `yaml:"send_delay"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
