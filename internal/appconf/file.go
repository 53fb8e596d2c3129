package appconf

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML configuration file layout. Absent fields keep the
// value they already had.
type FileConfig struct {
	Port           *int         `yaml:"port" validate:"omitempty,gte=0,lte=65535"`
	Env            *Environment `yaml:"env"`
	ApiKeys        []string     `yaml:"api_keys" validate:"dive,required"`
	RateLimit      *int         `yaml:"rate_limit" validate:"omitempty,gte=0"`
	Verbose        *bool        `yaml:"verbose"`
	RequestTimeout string       `yaml:"request_timeout"`
	Data           struct {
		Path   string `yaml:"path"`
		Format string `yaml:"format" validate:"omitempty,oneof=json gtfs"`
	} `yaml:"data"`
}

// LoadFromFile reads and validates a YAML configuration file.
func LoadFromFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := validate.Struct(fc); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	if fc.RequestTimeout != "" {
		if _, err := time.ParseDuration(fc.RequestTimeout); err != nil {
			return nil, fmt.Errorf("invalid config file %s: request_timeout: %w", path, err)
		}
	}
	return &fc, nil
}

// ApplyTo overlays the file's values onto cfg.
func (fc *FileConfig) ApplyTo(cfg *Config) {
	if fc.Port != nil {
		cfg.Port = *fc.Port
	}
	if fc.Env != nil {
		cfg.Env = *fc.Env
	}
	if fc.ApiKeys != nil {
		cfg.ApiKeys = fc.ApiKeys
	}
	if fc.RateLimit != nil {
		cfg.RateLimit = *fc.RateLimit
	}
	if fc.Verbose != nil {
		cfg.Verbose = *fc.Verbose
	}
	if fc.RequestTimeout != "" {
		// validated by LoadFromFile
		cfg.RequestTimeout, _ = time.ParseDuration(fc.RequestTimeout)
	}
	if fc.Data.Path != "" {
		cfg.DataPath = fc.Data.Path
	}
	if fc.Data.Format != "" {
		cfg.DataFormat = fc.Data.Format
	}
}
