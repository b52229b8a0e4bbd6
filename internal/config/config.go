// Package config provides Viper-based configuration loading for the
// expedition server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ConsoleConfig holds the line-oriented console acceptor settings.
type ConsoleConfig struct {
	// Host is the bind address for the console listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the console listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for console connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for console connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (c ConsoleConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

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

// GameConfig holds expedition ruleset settings.
type GameConfig struct {
	// GridWidth, GridHeight, and GridDepth size each expedition's grid.
	GridWidth  int `mapstructure:"grid_width"`
	GridHeight int `mapstructure:"grid_height"`
	GridDepth  int `mapstructure:"grid_depth"`
	// PlacementAttempts bounds random empty-cell searches.
	PlacementAttempts int `mapstructure:"placement_attempts"`
	// TurnOrder selects who opens each round: "player_first" or "agility".
	TurnOrder string `mapstructure:"turn_order"`
	// Loot selects the victory loot mechanism: "drops" or "inventory".
	Loot string `mapstructure:"loot"`
	// Penalty selects the defeat credit penalty: "symmetric" or "hostile_only".
	Penalty string `mapstructure:"penalty"`
	// Difficulty is the default starting kit: "easy", "medium", or "hard".
	Difficulty string `mapstructure:"difficulty"`
	// MaxRounds bounds a single battle; 0 uses the engine default.
	MaxRounds int `mapstructure:"max_rounds"`
}

// ContentConfig points at optional YAML content overrides. Empty paths
// fall back to the built-in definitions.
type ContentConfig struct {
	// ItemsDir is a directory of item definition YAML files.
	ItemsDir string `mapstructure:"items_dir"`
	// NamesFile is a hostile name-table YAML file.
	NamesFile string `mapstructure:"names_file"`
	// LoadoutsFile is a difficulty loadout YAML file.
	LoadoutsFile string `mapstructure:"loadouts_file"`
}

// ScriptingConfig holds Lua hook script settings.
type ScriptingConfig struct {
	// Dir is the script root; each level-<n> subdirectory is loaded into
	// that dungeon level's VM and global/ into the shared fallback VM.
	// Empty disables scripting.
	Dir string `mapstructure:"dir"`
	// InstructionLimit caps the Lua opcodes a VM may execute; 0 uses the
	// default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Console   ConsoleConfig   `mapstructure:"console"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Game      GameConfig      `mapstructure:"game"`
	Content   ContentConfig   `mapstructure:"content"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateConsole(c.Console); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateConsole(c ConsoleConfig) error {
	var errs []string
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("console.port must be 1-65535, got %d", c.Port))
	}
	if c.ReadTimeout < 0 {
		errs = append(errs, "console.read_timeout must not be negative")
	}
	if c.WriteTimeout < 0 {
		errs = append(errs, "console.write_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
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

func validateGame(g GameConfig) error {
	var errs []string
	if g.GridWidth < 2 {
		errs = append(errs, fmt.Sprintf("game.grid_width must be >= 2, got %d", g.GridWidth))
	}
	if g.GridHeight < 2 {
		errs = append(errs, fmt.Sprintf("game.grid_height must be >= 2, got %d", g.GridHeight))
	}
	if g.GridDepth < 1 {
		errs = append(errs, fmt.Sprintf("game.grid_depth must be >= 1, got %d", g.GridDepth))
	}
	if g.PlacementAttempts < 1 {
		errs = append(errs, fmt.Sprintf("game.placement_attempts must be >= 1, got %d", g.PlacementAttempts))
	}
	validOrders := map[string]bool{"player_first": true, "agility": true}
	if !validOrders[g.TurnOrder] {
		errs = append(errs, fmt.Sprintf("game.turn_order must be one of [player_first, agility], got %q", g.TurnOrder))
	}
	validLoot := map[string]bool{"drops": true, "inventory": true}
	if !validLoot[g.Loot] {
		errs = append(errs, fmt.Sprintf("game.loot must be one of [drops, inventory], got %q", g.Loot))
	}
	validPenalties := map[string]bool{"symmetric": true, "hostile_only": true}
	if !validPenalties[g.Penalty] {
		errs = append(errs, fmt.Sprintf("game.penalty must be one of [symmetric, hostile_only], got %q", g.Penalty))
	}
	validDifficulties := map[string]bool{"easy": true, "medium": true, "hard": true}
	if !validDifficulties[g.Difficulty] {
		errs = append(errs, fmt.Sprintf("game.difficulty must be one of [easy, medium, hard], got %q", g.Difficulty))
	}
	if g.MaxRounds < 0 {
		errs = append(errs, fmt.Sprintf("game.max_rounds must be >= 0, got %d", g.MaxRounds))
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

	// Environment variable overrides with EXPEDITION_ prefix
	v.SetEnvPrefix("EXPEDITION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
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

func setDefaults(v *viper.Viper) {
	v.SetDefault("console.host", "0.0.0.0")
	v.SetDefault("console.port", 4000)
	v.SetDefault("console.read_timeout", "5m")
	v.SetDefault("console.write_timeout", "30s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "expedition")
	v.SetDefault("database.password", "expedition")
	v.SetDefault("database.name", "expedition")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("game.grid_width", 12)
	v.SetDefault("game.grid_height", 12)
	v.SetDefault("game.grid_depth", 3)
	v.SetDefault("game.placement_attempts", 100)
	v.SetDefault("game.turn_order", "player_first")
	v.SetDefault("game.loot", "drops")
	v.SetDefault("game.penalty", "symmetric")
	v.SetDefault("game.difficulty", "medium")
	v.SetDefault("game.max_rounds", 0)

	v.SetDefault("scripting.instruction_limit", 0)
}
