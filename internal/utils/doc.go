// Package utils exposes reusable helpers consumed by multiple commands.
//
// It houses ConfigurationLoader, EnvironmentFileLoader, and LoggerFactory
// abstractions that integrate Viper, environment variables, .env files, and
// zap logging for the CLI.
package utils
