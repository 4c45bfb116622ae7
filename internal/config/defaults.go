package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultServerPort        = 8000
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultRequestTimeout    = 120 * time.Second
	DefaultShutdownTimeout   = 15 * time.Second

	DefaultDBPort    = 5432
	DefaultDBSSLMode = "prefer"
	DefaultMaxConns  = 10
	DefaultMinConns  = 2

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultScrapeTimeout  = 30 * time.Second
	DefaultScrapeRetries  = 3
	DefaultScrapeWorkers  = 2
	DefaultHalkarzBaseURL = "https://halkarz.com"
	DefaultKAPBaseURL     = "https://www.kap.org.tr"
	DefaultSPKBaseURL     = "https://spk.gov.tr"
	DefaultSPKIssuanceURL = "https://ws.spk.gov.tr"

	DefaultHalkarzInterval         = 4 * time.Hour
	DefaultKAPIPOInterval          = 30 * time.Minute
	DefaultKAPNewsInterval         = 30 * time.Second
	DefaultSPKApplicationsInterval = 4 * time.Hour
	DefaultSPKIssuanceInterval     = 2 * time.Hour
	DefaultStatusInterval          = 1 * time.Hour
	DefaultArchiveSpec             = "0 0 0 * * *"
	DefaultReminderInterval        = 15 * time.Minute

	DefaultExpoURL   = "https://exp.host/--/api/v2/push/send"
	DefaultSendDelay = 2 * time.Second

	DefaultLogLevel = "info"
)

func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = DefaultRequestTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Database defaults
	applyDBDefaults(&c.Database.Postgres)

	// Scrape defaults
	if c.Scrape.UserAgent == "" {
		c.Scrape.UserAgent = DefaultUserAgent
	}
	if c.Scrape.Timeout == 0 {
		c.Scrape.Timeout = DefaultScrapeTimeout
	}
	if c.Scrape.Retries == 0 {
		c.Scrape.Retries = DefaultScrapeRetries
	}
	if c.Scrape.Workers == 0 {
		c.Scrape.Workers = DefaultScrapeWorkers
	}
	if c.Scrape.HalkarzBaseURL == "" {
		c.Scrape.HalkarzBaseURL = DefaultHalkarzBaseURL
	}
	if c.Scrape.KAPBaseURL == "" {
		c.Scrape.KAPBaseURL = DefaultKAPBaseURL
	}
	if c.Scrape.SPKBaseURL == "" {
		c.Scrape.SPKBaseURL = DefaultSPKBaseURL
	}
	if c.Scrape.SPKIssuanceURL == "" {
		c.Scrape.SPKIssuanceURL = DefaultSPKIssuanceURL
	}

	// Jobs defaults
	if c.Jobs.HalkarzInterval == 0 {
		c.Jobs.HalkarzInterval = DefaultHalkarzInterval
	}
	if c.Jobs.KAPIPOInterval == 0 {
		c.Jobs.KAPIPOInterval = DefaultKAPIPOInterval
	}
	if c.Jobs.KAPNewsInterval == 0 {
		c.Jobs.KAPNewsInterval = DefaultKAPNewsInterval
	}
	if c.Jobs.SPKApplicationsInterval == 0 {
		c.Jobs.SPKApplicationsInterval = DefaultSPKApplicationsInterval
	}
	if c.Jobs.SPKIssuanceInterval == 0 {
		c.Jobs.SPKIssuanceInterval = DefaultSPKIssuanceInterval
	}
	if c.Jobs.StatusInterval == 0 {
		c.Jobs.StatusInterval = DefaultStatusInterval
	}
	if c.Jobs.ArchiveSpec == "" {
		c.Jobs.ArchiveSpec = DefaultArchiveSpec
	}
	if c.Jobs.ReminderInterval == 0 {
		c.Jobs.ReminderInterval = DefaultReminderInterval
	}

	// Notify defaults
	if c.Notify.ExpoURL == "" {
		c.Notify.ExpoURL = DefaultExpoURL
	}
	if c.Notify.SendDelay == 0 {
		c.Notify.SendDelay = DefaultSendDelay
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
