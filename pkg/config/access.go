package config

// Global configuration instance
var globalConfig *Config

// Initialize sets up the global configuration
func Initialize(cfg *Config) {
	if cfg == nil {
		cfg = Default()
	}
	globalConfig = cfg
}

// Get returns the current configuration
func Get() *Config {
	if globalConfig == nil {
		Initialize(nil)
	}
	return globalConfig
}

// GetReport returns report configuration
func GetReport() Report {
	return Get().Report
}

// GetExit returns exit status configuration
func GetExit() Exit {
	return Get().Exit
}
