package config

// Default values for configuration.
const (
	// Server defaults
	DefaultServerHost             = "0.0.0.0"
	DefaultServerPort             = 8080
	DefaultShutdownTimeoutSeconds = 15

	// Parsing defaults
	DefaultMaxUploadSizeMB    = 50
	DefaultTaskTimeoutSeconds = 600
	DefaultCacheTTLMinutes    = 60

	// Logging defaults
	DefaultLogLevel = "info"
)
