package utils

// Configuration and environment constants shared across packages.
const (
	// ConfigFileName is the name of the configuration file looked up locally and globally.
	ConfigFileName = "config.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".cli2text"
	// DebugEnvironmentVariable enables debug logging when set to a non-empty value.
	DebugEnvironmentVariable = "DEBUG"
	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes fatal application errors.
	ApplicationExecutionFailedMessage = "Error"
)
