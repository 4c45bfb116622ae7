package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("server.request_timeout must be > 0")
	}

	if err := c.Database.Postgres.validate("database.postgres"); err != nil {
		return err
	}

	if c.Scrape.Timeout <= 0 {
		return errors.New("scrape.timeout must be > 0")
	}
	if c.Scrape.Retries < 0 {
		return errors.New("scrape.retries must be >= 0")
	}
	if c.Scrape.Workers < 1 {
		return errors.New("scrape.workers must be >= 1")
	}

	intervals := []struct {
		name  string
		value time.Duration
	}{
		{"jobs.halkarz_interval", c.Jobs.HalkarzInterval},
		{"jobs.kap_ipo_interval", c.Jobs.KAPIPOInterval},
		{"jobs.kap_news_interval", c.Jobs.KAPNewsInterval},
		{"jobs.spk_applications_interval", c.Jobs.SPKApplicationsInterval},
		{"jobs.spk_issuance_interval", c.Jobs.SPKIssuanceInterval},
		{"jobs.status_interval", c.Jobs.StatusInterval},
		{"jobs.reminder_interval", c.Jobs.ReminderInterval},
	}
	for _, iv := range intervals {
		if iv.value <= 0 {
			return fmt.Errorf("%s must be > 0", iv.name)
		}
	}
	if c.Jobs.ArchiveSpec == "" {
		return errors.New("jobs.archive_spec is required")
	}

	if c.Notify.Enabled && c.Notify.FCMCredentials == "" {
		return errors.New("notify.fcm_credentials is required when notify.enabled is true")
	}
	if c.Notify.SendDelay < 0 {
		return errors.New("notify.send_delay must be >= 0")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
