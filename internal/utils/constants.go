package utils

const (
	// ConfigFileName is the configuration file looked up locally and globally.
	ConfigFileName            = "config.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".srcview"
	// EnvironmentFileName is the dotenv file loaded from the working directory.
	EnvironmentFileName       = ".env"
	// EnvironmentPrefix prefixes environment variable overrides.
	EnvironmentPrefix         = "SRCVIEW"

	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "logger initialization failed: %w"
	// ApplicationExecutionFailedMessage prefixes a fatal command failure.
	ApplicationExecutionFailedMessage       = "srcview failed"
)
