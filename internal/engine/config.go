package engine

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/tradsys-lob/internal/rules"
)

// Config is the engine's construction-time configuration: validation rule
// sets plus tuning knobs, loaded once via viper and never mutated after.
type Config struct {
	Symbols  []string           `mapstructure:"symbols"`
	TickSize []TickIntervalSpec `mapstructure:"tick_size"`
	LotSize  []LotIntervalSpec  `mapstructure:"lot_size"`

	Session SessionConfig `mapstructure:"session"`
	Engine  EngineTuning  `mapstructure:"engine"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// TickIntervalSpec is the on-disk shape of one tick-size band.
type TickIntervalSpec struct {
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
	ToOpen   bool   `mapstructure:"to_open"`
	TickSize string `mapstructure:"tick_size"`
}

// LotIntervalSpec is the on-disk shape of one lot-step band.
type LotIntervalSpec struct {
	From   string `mapstructure:"from"`
	To     string `mapstructure:"to"`
	ToOpen bool   `mapstructure:"to_open"`
	Step   int64  `mapstructure:"step"`
}

// SessionConfig governs end-of-day snapshot I/O.
type SessionConfig struct {
	Path     string `mapstructure:"path"`
	Compress bool   `mapstructure:"compress"`
}

// EngineTuning governs the optional concurrent dispatch pool.
type EngineTuning struct {
	Concurrent   bool `mapstructure:"concurrent"`
	PoolSize     int  `mapstructure:"pool_size"`
	EventBufSize int  `mapstructure:"event_buffer_size"`
}

// LoggingConfig selects the zap logger's verbosity.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("session.path", "snapshot.ndjson")
	v.SetDefault("session.compress", false)
	v.SetDefault("engine.concurrent", false)
	v.SetDefault("engine.pool_size", 8)
	v.SetDefault("engine.event_buffer_size", 1024)
	v.SetDefault("logging.level", "info")
}

// LoadConfig reads {lot_size, tick_size, symbols} plus engine tuning from
// configPath (directory to search) with TRADSYS_-prefixed env overrides,
// following the teacher's LoadConfig/setDefaults shape.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.AddConfigPath(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/tradsys-lob")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("TRADSYS")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// BuildTickRules converts the on-disk spec into rules.TickSizeRules.
func BuildTickRules(specs []TickIntervalSpec) (*rules.TickSizeRules, error) {
	intervals := make([]rules.TickInterval, 0, len(specs))
	for _, s := range specs {
		iv, err := s.toInterval()
		if err != nil {
			return nil, err
		}
		intervals = append(intervals, iv)
	}
	return rules.NewTickSizeRules(intervals), nil
}

// BuildLotRules converts the on-disk spec into rules.LotSizeRules.
func BuildLotRules(specs []LotIntervalSpec) (*rules.LotSizeRules, error) {
	intervals := make([]rules.LotInterval, 0, len(specs))
	for _, s := range specs {
		iv, err := s.toInterval()
		if err != nil {
			return nil, err
		}
		intervals = append(intervals, iv)
	}
	return rules.NewLotSizeRules(intervals), nil
}

// InitLogger builds a *zap.Logger per cfg.Logging.Level, following the
// teacher's InitLogger switch.
func InitLogger(cfg *Config) (*zap.Logger, error) {
	switch cfg.Logging.Level {
	case "debug":
		return zap.NewDevelopment()
	default:
		return zap.NewProduction()
	}
}
