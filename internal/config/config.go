// Package config loads server configuration from command-line flags,
// environment variables, a .env file and defaults, in that order.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultSourceURL is the public document the Lab 3 shelf loads from.
const DefaultSourceURL = "https://api.jsonbin.io/v3/b/69a19d21d0ea881f40def8e6/latest"

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Server    ServerConfig
	Books     BooksConfig
	Exercises ExercisesConfig
	Menu      MenuConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
	// Format is "json" or "pretty". Empty picks by environment.
	Format string `validate:"omitempty,oneof=json pretty"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port               string        `validate:"required,numeric"`
	ReadTimeout        time.Duration `validate:"gt=0"`
	WriteTimeout       time.Duration `validate:"gt=0"`
	IdleTimeout        time.Duration `validate:"gt=0"`
	AllowedOrigins     []string      `validate:"dive,required"`
	RateLimitPerMinute int           `validate:"gt=0"`
	RateLimitBurst     int           `validate:"gt=0"`

	// EventStream serves GET /api/v1/shelf/events. Off unless asked for.
	EventStream bool
}

// BooksConfig configures the remote book document.
type BooksConfig struct {
	SourceURL string `validate:"required,http_url"`
	// AccessKey and MasterKey unlock private bins. Both optional.
	AccessKey         string
	MasterKey         string
	FetchTimeout      time.Duration `validate:"gt=0"`
	RequestsPerSecond float64       `validate:"gt=0"`
	Burst             int           `validate:"gt=0"`
}

// ExercisesConfig bounds the arithmetic drills.
type ExercisesConfig struct {
	MaxRangeSpan float64 `validate:"gt=0"`
}

// MenuConfig customizes the side menu.
type MenuConfig struct {
	Note string
}

// LoadConfig loads configuration using the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("labdesk", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := fs.String("log-format", "", "Log format (json, pretty; default: by environment)")

	// Server flags
	port := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	allowedOrigins := fs.String("allowed-origins", "", "Comma-separated CORS origins (default: *)")
	rateLimit := fs.String("rate-limit", "", "Requests per minute per client (default: 120)")
	rateBurst := fs.String("rate-burst", "", "Burst per client (default: 20)")
	eventStream := fs.String("event-stream", "", "Serve the shelf event stream (default: false)")

	// Book source flags
	sourceURL := fs.String("books-url", "", "URL of the book JSON document")
	fetchTimeout := fs.String("books-timeout", "", "Book fetch timeout (default: 10s)")

	maxRangeSpan := fs.String("max-range-span", "", "Largest [a, b] span for the range drill (default: 100000)")
	menuNote := fs.String("menu-note", "", "Note shown under the side menu header")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Missing .env is fine; a malformed one is not.
	if err := loadEnvFile(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(*logLevel, "LOG_LEVEL", "info"),
			Format: getConfigValue(*logFormat, "LOG_FORMAT", ""),
		},
		Server: ServerConfig{
			Port:               getConfigValue(*port, "SERVER_PORT", "8080"),
			AllowedOrigins:     splitList(getConfigValue(*allowedOrigins, "CORS_ALLOWED_ORIGINS", "*")),
			RateLimitPerMinute: getIntConfigValue(*rateLimit, "RATE_LIMIT_PER_MINUTE", 120),
			RateLimitBurst:     getIntConfigValue(*rateBurst, "RATE_LIMIT_BURST", 20),
			EventStream:        getBoolConfigValue(*eventStream, "EVENT_STREAM", false),
		},
		Books: BooksConfig{
			SourceURL:         getConfigValue(*sourceURL, "BOOKS_SOURCE_URL", DefaultSourceURL),
			AccessKey:         getConfigValue("", "BOOKS_ACCESS_KEY", ""),
			MasterKey:         getConfigValue("", "BOOKS_MASTER_KEY", ""),
			RequestsPerSecond: getFloatConfigValue("", "BOOKS_REQUESTS_PER_SECOND", 2),
			Burst:             getIntConfigValue("", "BOOKS_BURST", 2),
		},
		Exercises: ExercisesConfig{
			MaxRangeSpan: getFloatConfigValue(*maxRangeSpan, "EXERCISES_MAX_RANGE_SPAN", 100_000),
		},
		Menu: MenuConfig{
			Note: getConfigValue(*menuNote, "MENU_NOTE", ""),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Books.FetchTimeout, err = getDurationConfigValue(*fetchTimeout, "BOOKS_FETCH_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %q (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("invalid %s: %v (failed %q)", fe.Namespace(), fe.Value(), fe.Tag())
		}
		return err
	}

	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envKey != "" {
		if envValue := os.Getenv(envKey); envValue != "" {
			return envValue
		}
	}

	// Priority 3: Default value.
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
// Unparseable values fall back to the default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return defaultValue
	}
	return n
}

// getFloatConfigValue returns a float from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(strValue), 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// getBoolConfigValue accepts what strconv.ParseBool does. Anything else
// falls back to the default.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(getConfigValue(flagValue, envKey, "")))
	if err != nil {
		return defaultValue
	}
	return b
}

// getDurationConfigValue parses a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), strValue, err)
	}
	return d, nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
