// Package appconf holds the service configuration and loads it from YAML
// files and environment variables.
package appconf

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Environment is the deployment environment the service runs in.
type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Development:
		return "development"
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return fmt.Sprintf("Environment(%d)", int(e))
	}
}

// ParseEnvironment accepts the names printed by String, plus the short forms
// "dev" and "prod".
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "development", "dev":
		return Development, nil
	case "test":
		return Test, nil
	case "production", "prod":
		return Production, nil
	default:
		return Development, fmt.Errorf("unknown environment %q", s)
	}
}

func (e Environment) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *Environment) UnmarshalText(text []byte) error {
	parsed, err := ParseEnvironment(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Data formats the served network can be loaded from.
const (
	FormatJSON = "json"
	FormatGTFS = "gtfs"
)

// Config is the HTTP service configuration.
type Config struct {
	Port           int           `validate:"gte=0,lte=65535"`
	Env            Environment   `validate:"gte=0,lte=2"`
	ApiKeys        []string      `validate:"dive,required"`
	RateLimit      int           `validate:"gte=0"`
	Verbose        bool
	RequestTimeout time.Duration `validate:"gte=0"`
	DataPath       string
	DataFormat     string `validate:"omitempty,oneof=json gtfs"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Port:           4000,
		Env:            Development,
		ApiKeys:        []string{"test"},
		RateLimit:      100,
		RequestTimeout: 10 * time.Second,
		DataFormat:     FormatJSON,
	}
}

var validate = validator.New()

// Validate checks field ranges.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Environment variable names read by ApplyEnvironment.
const (
	EnvPort           = "TRANSIT_PORT"
	EnvEnvironment    = "TRANSIT_ENV"
	EnvAPIKeys        = "TRANSIT_API_KEYS"
	EnvRateLimit      = "TRANSIT_RATE_LIMIT"
	EnvVerbose        = "TRANSIT_VERBOSE"
	EnvRequestTimeout = "TRANSIT_REQUEST_TIMEOUT"
	EnvDataPath       = "TRANSIT_DATA_PATH"
	EnvDataFormat     = "TRANSIT_DATA_FORMAT"
)

// ApplyEnvironment overrides fields whose variable lookup returns a value.
// TRANSIT_API_KEYS is comma separated.
func (c *Config) ApplyEnvironment(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Port = port
	}
	if v, ok := lookup(EnvEnvironment); ok {
		env, err := ParseEnvironment(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvEnvironment, err)
		}
		c.Env = env
	}
	if v, ok := lookup(EnvAPIKeys); ok {
		c.ApiKeys = ParseAPIKeys(v)
	}
	if v, ok := lookup(EnvRateLimit); ok {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRateLimit, err)
		}
		c.RateLimit = limit
	}
	if v, ok := lookup(EnvVerbose); ok {
		verbose, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvVerbose, err)
		}
		c.Verbose = verbose
	}
	if v, ok := lookup(EnvRequestTimeout); ok {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRequestTimeout, err)
		}
		c.RequestTimeout = timeout
	}
	if v, ok := lookup(EnvDataPath); ok {
		c.DataPath = v
	}
	if v, ok := lookup(EnvDataFormat); ok {
		c.DataFormat = strings.ToLower(v)
	}
	return nil
}

// ParseAPIKeys splits a comma separated list, dropping blanks.
func ParseAPIKeys(s string) []string {
	var keys []string
	for _, key := range strings.Split(s, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
