// Package config loads pollcard settings.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file (pollcard.toml)
//  3. environment variables, optionally loaded from a .env file
//
// Environment variables cover deployment addresses only:
//
//	POLLCARD_MONGO_URI    MongoDB connection string
//	POLLCARD_MONGO_DB     MongoDB database name
//	POLLCARD_REDIS_URL    Redis URL for the render cache and response guard
//	POLLCARD_LISTEN       HTTP listen address
//	POLLCARD_OUTPUT_DIR   root directory for results/{year}/{week}
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/pollcard/pkg/errors"
	"github.com/matzehuels/pollcard/pkg/fonts"
	"github.com/matzehuels/pollcard/pkg/render/card"
	"github.com/matzehuels/pollcard/pkg/render/effects"
	"github.com/matzehuels/pollcard/pkg/survey"
)

// Environment variable names.
const (
	EnvMongoURI  = "POLLCARD_MONGO_URI"
	EnvMongoDB   = "POLLCARD_MONGO_DB"
	EnvRedisURL  = "POLLCARD_REDIS_URL"
	EnvListen    = "POLLCARD_LISTEN"
	EnvOutputDir = "POLLCARD_OUTPUT_DIR"
)

// Config is the complete application configuration.
type Config struct {
	Card    card.Params    `toml:"card"`
	Fonts   Fonts          `toml:"fonts"`
	Survey  survey.Config  `toml:"survey"`
	Glitch  effects.Glitch `toml:"glitch"`
	Storage Storage        `toml:"storage"`
	Server  Server         `toml:"server"`
	Output  Output         `toml:"output"`
}

// Fonts are optional TTF overrides; empty paths keep the built-in Go fonts.
type Fonts struct {
	Regular  string `toml:"regular"`
	SemiBold string `toml:"semibold"`
	Display  string `toml:"display"`
}

// Storage holds backend addresses. Empty values select in-memory backends.
type Storage struct {
	MongoURI      string        `toml:"mongo_uri"`
	MongoDatabase string        `toml:"mongo_database"`
	RedisURL      string        `toml:"redis_url"`
	CachePrefix   string        `toml:"cache_prefix"`
	CacheTTL      time.Duration `toml:"cache_ttl"`
}

// Server configures the HTTP API.
type Server struct {
	Listen        string        `toml:"listen"`
	ReadTimeout   time.Duration `toml:"read_timeout"`
	WriteTimeout  time.Duration `toml:"write_timeout"`
	RenderTimeout time.Duration `toml:"render_timeout"`
}

// Output controls persistence of rendered images.
type Output struct {
	Dir     string `toml:"dir"`
	Persist bool   `toml:"persist"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Card:   card.DefaultParams(),
		Survey: survey.DefaultConfig(),
		Storage: Storage{
			MongoDatabase: "pollcard",
			CacheTTL:      24 * time.Hour,
		},
		Server: Server{
			Listen:        ":8080",
			ReadTimeout:   10 * time.Second,
			WriteTimeout:  30 * time.Second,
			RenderTimeout: 20 * time.Second,
		},
		Output: Output{Dir: "."},
	}
}

// Load builds the configuration from defaults, the TOML file at path (skipped
// when path is empty) and the environment. envFiles are loaded into the
// environment first; missing files are ignored. Variables already set in
// the environment are not overwritten by .env files.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %s", path, undecoded[0])
		}
	}

	if err := loadEnvFiles(envFiles...); err != nil {
		return Config{}, err
	}
	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadEnvFiles(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "load %s", f)
		}
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.Storage.MongoURI, EnvMongoURI)
	set(&c.Storage.MongoDatabase, EnvMongoDB)
	set(&c.Storage.RedisURL, EnvRedisURL)
	set(&c.Server.Listen, EnvListen)
	set(&c.Output.Dir, EnvOutputDir)
}

// Validate checks the settings that can be checked without I/O.
func (c Config) Validate() error {
	if err := c.Card.Validate(); err != nil {
		return err
	}
	for i, t := range c.Survey.OptionTexts {
		if t == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "survey option %d has no text", i+1)
		}
	}
	for q, e := range c.Survey.Extras {
		if _, err := survey.ParseExtraQuestion(string(q)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "survey extras")
		}
		if e.ValidityWeeks < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "extra question %s: validity_weeks cannot be negative", q)
		}
	}
	if c.Storage.MongoURI != "" && c.Storage.MongoDatabase == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "mongo_database is required with mongo_uri")
	}
	if c.Storage.CacheTTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache_ttl cannot be negative")
	}
	if c.Glitch.NoiseRate < 0 || c.Glitch.NoiseRate > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "glitch noise_rate must be within [0, 1]")
	}
	return nil
}

// FontSet loads the configured fonts.
func (c Config) FontSet() (*fonts.Set, error) {
	return fonts.Load(map[fonts.Family]string{
		fonts.Regular:  c.Fonts.Regular,
		fonts.SemiBold: c.Fonts.SemiBold,
		fonts.Display:  c.Fonts.Display,
	})
}

// Renderer builds a card renderer from the card parameters and fonts.
func (c Config) Renderer() (*card.Renderer, error) {
	fs, err := c.FontSet()
	if err != nil {
		return nil, err
	}
	return card.NewRenderer(c.Card, fs)
}
