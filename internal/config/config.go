// Package config provides Viper-based configuration loading for the battle
// engine binaries.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/tamer/internal/game/battle"
	"github.com/cory-johannsen/tamer/internal/scripting"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ContentConfig locates the YAML and Lua content tree. Subdirectories are
// fixed by convention.
type ContentConfig struct {
	Dir string `mapstructure:"dir"`
}

// CatalogDir holds species, moves and growth curves.
func (c ContentConfig) CatalogDir() string { return filepath.Join(c.Dir, "catalog") }
func (c ContentConfig) ConditionsDir() string { return filepath.Join(c.Dir, "conditions") }
func (c ContentConfig) ItemsDir() string { return filepath.Join(c.Dir, "items") }
func (c ContentConfig) TrainerSkillsDir() string { return filepath.Join(c.Dir, "trainer_skills") }
func (c ContentConfig) EnemiesDir() string { return filepath.Join(c.Dir, "enemies") }
func (c ContentConfig) AIDir() string { return filepath.Join(c.Dir, "ai") }
func (c ContentConfig) AIScriptsDir() string { return filepath.Join(c.Dir, "scripts", "ai") }

// BattleConfig holds battle pacing and chance settings.
type BattleConfig struct {
	StartDelay   time.Duration `mapstructure:"start_delay"`
	ActionDelay  time.Duration `mapstructure:"action_delay"`
	LogLimit     int           `mapstructure:"log_limit"`
	// Seed makes every roll reproducible when non-zero; 0 uses crypto/rand.
	Seed           uint64 `mapstructure:"seed"`
	WildFleeChance int    `mapstructure:"wild_flee_chance"`
	CaptureChance  int    `mapstructure:"capture_chance"`
}

// Engine converts the section into the battle package's Config.
func (b BattleConfig) Engine() battle.Config {
	return battle.Config{
		StartDelay:     b.StartDelay,
		ActionDelay:    b.ActionDelay,
		LogLimit:       b.LogLimit,
		WildFleeChance: b.WildFleeChance,
		CaptureChance:  b.CaptureChance,
	}
}

// ScriptingConfig holds Lua sandbox settings.
type ScriptingConfig struct {
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Content   ContentConfig   `mapstructure:"content"`
	Battle    BattleConfig    `mapstructure:"battle"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Content.Dir == "" {
		errs = append(errs, "content.dir must not be empty")
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	if b.StartDelay < 0 {
		errs = append(errs, "battle.start_delay must not be negative")
	}
	if b.ActionDelay < 0 {
		errs = append(errs, "battle.action_delay must not be negative")
	}
	if b.LogLimit < 1 {
		errs = append(errs, fmt.Sprintf("battle.log_limit must be >= 1, got %d", b.LogLimit))
	}
	if b.WildFleeChance < 0 || b.WildFleeChance > 100 {
		errs = append(errs, fmt.Sprintf("battle.wild_flee_chance must be 0-100, got %d", b.WildFleeChance))
	}
	if b.CaptureChance < 0 || b.CaptureChance > 100 {
		errs = append(errs, fmt.Sprintf("battle.capture_chance must be 0-100, got %d", b.CaptureChance))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with TAMER_ prefix
	v.SetEnvPrefix("TAMER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the built-in defaults.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "tamer")
	v.SetDefault("database.password", "tamer")
	v.SetDefault("database.name", "tamer")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("content.dir", "content")

	def := battle.DefaultConfig()
	v.SetDefault("battle.start_delay", def.StartDelay.String())
	v.SetDefault("battle.action_delay", def.ActionDelay.String())
	v.SetDefault("battle.log_limit", def.LogLimit)
	v.SetDefault("battle.seed", 0)
	v.SetDefault("battle.wild_flee_chance", def.WildFleeChance)
	v.SetDefault("battle.capture_chance", def.CaptureChance)

	v.SetDefault("scripting.instruction_limit", scripting.DefaultInstructionLimit)
}
