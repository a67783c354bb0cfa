package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagWorld  = flag.String("world", "", "Path to the world definition (JSON)")
	flagGroup  = flag.Int("group", -1, "Group index to query")
	flagMax    = flag.Float64("max", -1, "Max portal distance (0 = unbounded)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWorld != "" {
		cfg.World.Path = *flagWorld
	}
	if *flagGroup >= 0 {
		cfg.Query.Group = *flagGroup
	}
	if *flagMax >= 0 {
		cfg.Query.MaxDistance = float32(*flagMax)
	}
}
