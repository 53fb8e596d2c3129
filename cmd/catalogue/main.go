// Command catalogue answers transit catalogue request documents, either once
// over stdin/stdout or as an HTTP service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"transitcatalogue.org/internal/appconf"
	"transitcatalogue.org/internal/logging"
)

const (
	modeStdio = "stdio"
	modeServe = "serve"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", opts.envFile, err)
	}
	cfg, err := loadConfig(opts, os.LookupEnv)
	if err != nil {
		return err
	}

	// stdout carries responses in stdio mode
	logger := logging.NewLogger(stderr, cfg.Env == appconf.Production, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch opts.mode {
	case modeStdio:
		return RunStdio(ctx, stdin, stdout, logger)
	case modeServe:
		coreApp, err := BuildApplication(ctx, cfg, logger)
		if err != nil {
			return err
		}
		srv, api := CreateServer(coreApp, cfg)
		return Run(ctx, srv, coreApp, api)
	default:
		return fmt.Errorf("unknown mode %q", opts.mode)
	}
}

type options struct {
	mode       string
	configPath string
	envFile    string
	set        map[string]bool

	port       int
	env        string
	apiKeys    string
	rateLimit  int
	verbose    bool
	dataPath   string
	dataFormat string
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	defaults := appconf.Default()

	fsFlags := flag.NewFlagSet("catalogue", flag.ContinueOnError)
	fsFlags.SetOutput(output)
	fsFlags.StringVar(&opts.mode, "mode", modeStdio, "stdio: answer one document from stdin; serve: run the HTTP service")
	fsFlags.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fsFlags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file with TRANSIT_* variables")
	fsFlags.IntVar(&opts.port, "port", defaults.Port, "API server port")
	fsFlags.StringVar(&opts.env, "env", defaults.Env.String(), "Environment (development|test|production)")
	fsFlags.StringVar(&opts.apiKeys, "api-keys", "", "Comma separated API keys")
	fsFlags.IntVar(&opts.rateLimit, "rate-limit", defaults.RateLimit, "Requests per second per API key")
	fsFlags.BoolVar(&opts.verbose, "verbose", false, "Debug logging")
	fsFlags.StringVar(&opts.dataPath, "data", "", "Network to serve: request document or GTFS zip")
	fsFlags.StringVar(&opts.dataFormat, "data-format", defaults.DataFormat, "Format of -data (json|gtfs)")

	if err := fsFlags.Parse(args); err != nil {
		return opts, err
	}
	opts.set = make(map[string]bool)
	fsFlags.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// loadConfig layers defaults, the YAML file, the environment and explicitly
// set flags, later sources winning.
func loadConfig(opts options, lookup func(string) (string, bool)) (appconf.Config, error) {
	cfg := appconf.Default()

	if opts.configPath != "" {
		fc, err := appconf.LoadFromFile(opts.configPath)
		if err != nil {
			return cfg, err
		}
		fc.ApplyTo(&cfg)
	}

	if err := cfg.ApplyEnvironment(lookup); err != nil {
		return cfg, err
	}

	if opts.set["port"] {
		cfg.Port = opts.port
	}
	if opts.set["env"] {
		env, err := appconf.ParseEnvironment(opts.env)
		if err != nil {
			return cfg, err
		}
		cfg.Env = env
	}
	if opts.set["api-keys"] {
		cfg.ApiKeys = appconf.ParseAPIKeys(opts.apiKeys)
	}
	if opts.set["rate-limit"] {
		cfg.RateLimit = opts.rateLimit
	}
	if opts.set["verbose"] {
		cfg.Verbose = opts.verbose
	}
	if opts.set["data"] {
		cfg.DataPath = opts.dataPath
	}
	if opts.set["data-format"] {
		cfg.DataFormat = opts.dataFormat
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
