package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// yaml.v3 has no native time.Duration support, so every section carrying
// intervals decodes through a shadow struct whose duration fields are Go
// duration strings ("90s", "4h"). Empty fields stay zero and pick up the
// package defaults later.

func setDuration(dst *time.Duration, name, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}

func (s *ServerConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Host              string `yaml:"host"`
		Port              int    `yaml:"port"`
		ReadHeaderTimeout string `yaml:"read_header_timeout"`
		RequestTimeout    string `yaml:"request_timeout"`
		ShutdownTimeout   string `yaml:"shutdown_timeout"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	s.Host = raw.Host
	s.Port = raw.Port
	if err := setDuration(&s.ReadHeaderTimeout, "server.read_header_timeout", raw.ReadHeaderTimeout); err != nil {
		return err
	}
	if err := setDuration(&s.RequestTimeout, "server.request_timeout", raw.RequestTimeout); err != nil {
		return err
	}
	return setDuration(&s.ShutdownTimeout, "server.shutdown_timeout", raw.ShutdownTimeout)
}

func (s *ScrapeConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		UserAgent      string `yaml:"user_agent"`
		Timeout        string `yaml:"timeout"`
		Retries        int    `yaml:"retries"`
		Workers        int    `yaml:"workers"`
		HalkarzBaseURL string `yaml:"halkarz_base_url"`
		KAPBaseURL     string `yaml:"kap_base_url"`
		SPKBaseURL     string `yaml:"spk_base_url"`
		SPKIssuanceURL string `yaml:"spk_issuance_url"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	s.UserAgent = raw.UserAgent
	s.Retries = raw.Retries
	s.Workers = raw.Workers
	s.HalkarzBaseURL = raw.HalkarzBaseURL
	s.KAPBaseURL = raw.KAPBaseURL
	s.SPKBaseURL = raw.SPKBaseURL
	s.SPKIssuanceURL = raw.SPKIssuanceURL
	return setDuration(&s.Timeout, "scrape.timeout", raw.Timeout)
}

func (j *JobsConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		HalkarzInterval         string `yaml:"halkarz_interval"`
		KAPIPOInterval          string `yaml:"kap_ipo_interval"`
		KAPNewsInterval         string `yaml:"kap_news_interval"`
		SPKApplicationsInterval string `yaml:"spk_applications_interval"`
		SPKIssuanceInterval     string `yaml:"spk_issuance_interval"`
		StatusInterval          string `yaml:"status_interval"`
		ArchiveSpec             string `yaml:"archive_spec"`
		ReminderInterval        string `yaml:"reminder_interval"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	j.ArchiveSpec = raw.ArchiveSpec

	fields := []struct {
		dst   *time.Duration
		name  string
		value string
	}{
		{&j.HalkarzInterval, "jobs.halkarz_interval", raw.HalkarzInterval},
		{&j.KAPIPOInterval, "jobs.kap_ipo_interval", raw.KAPIPOInterval},
		{&j.KAPNewsInterval, "jobs.kap_news_interval", raw.KAPNewsInterval},
		{&j.SPKApplicationsInterval, "jobs.spk_applications_interval", raw.SPKApplicationsInterval},
		{&j.SPKIssuanceInterval, "jobs.spk_issuance_interval", raw.SPKIssuanceInterval},
		{&j.StatusInterval, "jobs.status_interval", raw.StatusInterval},
		{&j.ReminderInterval, "jobs.reminder_interval", raw.ReminderInterval},
	}
	for _, f := range fields {
		if err := setDuration(f.dst, f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

func (n *NotifyConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Enabled        bool   `yaml:"enabled"`
		FCMCredentials string `yaml:"fcm_credentials"`
		ExpoURL        string `yaml:"expo_url"`
		SendDelay      string `yaml:"send_delay"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	n.Enabled = raw.Enabled
	n.FCMCredentials = raw.FCMCredentials
	n.ExpoURL = raw.ExpoURL
	return setDuration(&n.SendDelay, "notify.send_delay", raw.SendDelay)
}
