// Package cli implements the pollcard command-line interface.
//
// # Commands
//
//   - render: draw a card request (JSON) to PNG files
//   - week: show the results directory of a poll date, optionally rendering
//     every variant of the latest question into it
//   - question: create or show the weekly question
//   - serve: run the HTTP API
//   - labels: show the qualitative gauge labels
//   - version: print build information
//
// Settings come from pollcard.toml and .env (see package config); --config
// and --env override the file locations.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pollcard/pkg/buildinfo"
	"github.com/matzehuels/pollcard/pkg/cache"
	"github.com/matzehuels/pollcard/pkg/config"
	"github.com/matzehuels/pollcard/pkg/pipeline"
	"github.com/matzehuels/pollcard/pkg/results"
	"github.com/matzehuels/pollcard/pkg/storage/mongo"
	"github.com/matzehuels/pollcard/pkg/survey"
)

// =============================================================================
// Constants
// =============================================================================

const (
	appName = "pollcard"

	defaultConfigFile = "pollcard.toml"
	defaultEnvFile    = ".env"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	envFile    string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Pollcard renders weekly poll results as shareable cards",
		Long:         `Pollcard collects answers to a weekly question and renders the results as a card image with a gauge, option bars and a square avatar.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			registerHooks(c.Logger)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+defaultConfigFile+" if present)")
	root.PersistentFlags().StringVar(&c.envFile, "env", defaultEnvFile, "dotenv file with deployment settings")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.weekCommand())
	root.AddCommand(c.questionCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.labelsCommand())
	root.AddCommand(c.versionCommand())

	return root
}

// =============================================================================
// Dependency Factories
// =============================================================================

// loadConfig reads the configuration selected by the persistent flags.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	var envFiles []string
	if c.envFile != "" {
		envFiles = append(envFiles, c.envFile)
	}
	cfg, err := config.Load(path, envFiles...)
	if err != nil {
		return config.Config{}, err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	return cfg, nil
}

// newCache connects to Redis when configured and falls back to a
// process-local cache otherwise.
func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.Storage.RedisURL == "" {
		return cache.NewMemoryCache(), nil
	}
	rc, err := cache.NewRedisCache(ctx, cfg.Storage.RedisURL)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("connected to redis")
	return rc, nil
}

// newStore connects to MongoDB when configured. Without a URI the survey
// data lives in memory for the lifetime of the process.
func (c *CLI) newStore(ctx context.Context, cfg config.Config) (survey.Store, error) {
	if cfg.Storage.MongoURI == "" {
		c.Logger.Warn("no mongo_uri configured, survey data is kept in memory")
		return survey.NewMemoryStore(), nil
	}
	st, err := mongo.Connect(ctx, cfg.Storage.MongoURI, cfg.Storage.MongoDatabase)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("connected to mongo", "database", cfg.Storage.MongoDatabase)
	return st, nil
}

// newRunner creates a pipeline runner on cc writing below the configured
// output directory.
func (c *CLI) newRunner(cfg config.Config, cc cache.Cache) (*pipeline.Runner, error) {
	renderer, err := cfg.Renderer()
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(renderer, cc, cache.NewScopedKeyer(nil, cfg.Storage.CachePrefix), c.Logger)
	runner.Writer = results.NewFileWriter(cfg.Output.Dir)
	if cfg.Storage.CacheTTL > 0 {
		runner.TTL = cfg.Storage.CacheTTL
	}
	return runner, nil
}

// newService wires the survey service. The cache doubles as the duplicate
// response guard when it supports claims.
func (c *CLI) newService(store survey.Store, cc cache.Cache, cfg config.Config) *survey.Service {
	guard, _ := cc.(cache.Guard)
	return survey.NewService(store, guard, cache.NewScopedKeyer(nil, cfg.Storage.CachePrefix), cfg.Survey)
}
