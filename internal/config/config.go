// ABOUTME: Application configuration loading
// ABOUTME: Merges defaults, an optional YAML file, .env and HXPLAY_ environment variables
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/hxtool/hxplay/pkg/audio/output"
	"github.com/hxtool/hxplay/pkg/hx"
	"github.com/hxtool/hxplay/pkg/playback"
	"github.com/hxtool/hxplay/pkg/resolve"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "HXPLAY"

type Output struct {
	Backend  string `mapstructure:"backend"`
	BufferMs int    `mapstructure:"buffer_ms"`
}

type Playback struct {
	Volume     float64 `mapstructure:"volume"`
	Repeat     bool    `mapstructure:"repeat"`
	SampleRate int     `mapstructure:"sample_rate"`
	Channels   int     `mapstructure:"channels"`
}

type Resolve struct {
	MaxDepth        int    `mapstructure:"max_depth"`
	Language        string `mapstructure:"language"`
	IncludeVariants bool   `mapstructure:"include_variants"`
}

type Bank struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type Log struct {
	File       string `mapstructure:"file"`
	MaxEntries int    `mapstructure:"max_entries"`
}

type Remote struct {
	Addr      string `mapstructure:"addr"`
	Advertise bool   `mapstructure:"advertise"`
	Name      string `mapstructure:"name"`
}

type Trace struct {
	Enabled bool `mapstructure:"enabled"`
}

// Config is the full runtime configuration
type Config struct {
	Output   Output   `mapstructure:"output"`
	Playback Playback `mapstructure:"playback"`
	Resolve  Resolve  `mapstructure:"resolve"`
	Bank     Bank     `mapstructure:"bank"`
	Log      Log      `mapstructure:"log"`
	Remote   Remote   `mapstructure:"remote"`
	Trace    Trace    `mapstructure:"trace"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output.backend", "oto")
	v.SetDefault("output.buffer_ms", 50)
	v.SetDefault("playback.volume", playback.DefaultVolume)
	v.SetDefault("playback.repeat", false)
	v.SetDefault("playback.sample_rate", 0)
	v.SetDefault("playback.channels", 0)
	v.SetDefault("resolve.max_depth", resolve.DefaultMaxDepth)
	v.SetDefault("resolve.language", "")
	v.SetDefault("resolve.include_variants", false)
	v.SetDefault("bank.cache_ttl", 5*time.Minute)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_entries", 512)
	v.SetDefault("remote.addr", "")
	v.SetDefault("remote.advertise", false)
	v.SetDefault("remote.name", "")
	v.SetDefault("trace.enabled", false)
}

// Default returns the configuration with no file or environment applied
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return cfg
}

// DefaultPath returns $XDG_CONFIG_HOME/hxplay/config.yaml
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "hxplay", "config.yaml")
}

// Load reads configuration. An explicit path must exist; the default path is optional.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil || explicit {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects out-of-range values
func (c Config) Validate() error {
	switch c.Output.Backend {
	case "", "oto", "malgo", "portaudio", "null":
	default:
		return fmt.Errorf("unknown output backend: %s", c.Output.Backend)
	}
	if c.Output.BufferMs < 0 {
		return fmt.Errorf("output.buffer_ms must not be negative: %d", c.Output.BufferMs)
	}
	if c.Playback.Volume < 0 || c.Playback.Volume > 1 {
		return fmt.Errorf("playback.volume out of range [0,1]: %g", c.Playback.Volume)
	}
	if c.Playback.SampleRate < 0 || c.Playback.Channels < 0 {
		return errors.New("playback.sample_rate and playback.channels must not be negative")
	}
	if c.Resolve.MaxDepth < 1 {
		return fmt.Errorf("resolve.max_depth must be at least 1: %d", c.Resolve.MaxDepth)
	}
	if _, err := hx.ParseLanguage(c.Resolve.Language); err != nil {
		return fmt.Errorf("resolve.language: %w", err)
	}
	if c.Log.MaxEntries < 0 {
		return fmt.Errorf("log.max_entries must not be negative: %d", c.Log.MaxEntries)
	}
	return nil
}

// ResolveOptions converts the resolve section for the resolver
func (c Config) ResolveOptions() resolve.Options {
	// Validate has already rejected unparseable tags
	lang, _ := hx.ParseLanguage(c.Resolve.Language)
	return resolve.Options{
		MaxDepth:        c.Resolve.MaxDepth,
		Language:        lang,
		IncludeVariants: c.Resolve.IncludeVariants,
	}
}

// PlayerConfig converts the playback section for a player session
func (c Config) PlayerConfig() playback.Config {
	return playback.Config{
		Volume:     c.Playback.Volume,
		Repeat:     c.Playback.Repeat,
		SampleRate: c.Playback.SampleRate,
		Channels:   c.Playback.Channels,
		BufferMs:   c.Output.BufferMs,
		Resolve:    c.ResolveOptions(),
	}
}

// Device opens the configured output backend
func (c Config) Device() (output.Device, error) {
	return output.New(c.Output.Backend)
}
