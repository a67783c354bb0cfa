// Package config handles wmoprobe configuration loading and management.
package config

// Config holds all wmoprobe settings.
type Config struct {
	World   WorldConfig   `yaml:"world"`
	Query   QueryConfig   `yaml:"query"`
	Logging LoggingConfig `yaml:"logging"`
}

// WorldConfig holds the world-model input settings.
type WorldConfig struct {
	// Path to a JSON-encoded decoded world definition.
	Path string `yaml:"path"`
}

// QueryConfig holds default query parameters.
type QueryConfig struct {
	// Group is the group index queries run against.
	Group int `yaml:"group"`
	// MaxDistance bounds portal searches; <= 0 means unbounded.
	MaxDistance float32 `yaml:"max_distance"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Path: "world.json",
		},
		Query: QueryConfig{
			Group:       0,
			MaxDistance: 0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
