package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gridiron/database"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// HTTP configuration
	HTTPAddr      string
	HTTPRateLimit float64 // Requests per second allowed per client IP and route
	HTTPRateBurst int

	// Economy
	StartingBalance   int64
	DefaultMultiplier string // Decimal multiplier applied to generated questions

	// Question timer configuration
	TimerStartClock   int           // Virtual game clock value a room timer counts down from
	TimerFloor        int           // Timer stops once the clock passes below this value
	TimerStep         int           // Clock decrement per tick
	TimerInterval     int           // A question is generated when clock % interval == 0
	TimerTick         time.Duration // Wall-clock duration of a tick
	TimerInitialDelay time.Duration

	// Question generator configuration
	GeneratorURL        string // Upstream generation endpoint, empty means always use the fallback
	GeneratorTimeout    time.Duration
	GeneratorWindowSize int
	GeneratorMaxRetries int

	// Upstream play feed
	FeedDir string // Directory holding one <game_id>.json play file per game

	// Optional integrations
	RedisAddr        string // Enables the cross-instance room timer lock
	NATSServers      string // NATS server addresses (comma-separated), empty disables publishing
	DiscordToken     string
	DiscordChannelID string // Channel that receives question announcements

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// DiscordEnabled reports whether question announcements should be posted to Discord
func (c *Config) DiscordEnabled() bool {
	return c.DiscordToken != "" && c.DiscordChannelID != ""
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// HTTP
		HTTPAddr:      getEnvWithDefault("HTTP_ADDR", ":8080"),
		HTTPRateLimit: 20,
		HTTPRateBurst: 40,

		// Economy
		StartingBalance:   1000,
		DefaultMultiplier: getEnvWithDefault("DEFAULT_MULTIPLIER", "2"),

		// Timer defaults mirror a five minute countdown with a question every 20 seconds
		TimerStartClock:   300,
		TimerFloor:        0,
		TimerStep:         1,
		TimerInterval:     20,
		TimerTick:         time.Second,
		TimerInitialDelay: time.Second,

		// Generator
		GeneratorURL:        os.Getenv("GENERATOR_URL"),
		GeneratorTimeout:    10 * time.Second,
		GeneratorWindowSize: 20,
		GeneratorMaxRetries: 2,

		// Feed
		FeedDir: getEnvWithDefault("FEED_DIR", "data/plays"),

		// Integrations
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		NATSServers:      os.Getenv("NATS_SERVERS"),
		DiscordToken:     os.Getenv("DISCORD_TOKEN"),
		DiscordChannelID: os.Getenv("DISCORD_CHANNEL_ID"),

		// Logging
		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsedBalance, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsedBalance
		}
	}
	if limit := os.Getenv("HTTP_RATE_LIMIT"); limit != "" {
		if parsed, err := strconv.ParseFloat(limit, 64); err == nil {
			config.HTTPRateLimit = parsed
		}
	}
	config.HTTPRateBurst = getIntWithDefault("HTTP_RATE_BURST", config.HTTPRateBurst)

	config.TimerStartClock = getIntWithDefault("TIMER_START_CLOCK", config.TimerStartClock)
	config.TimerFloor = getIntWithDefault("TIMER_FLOOR", config.TimerFloor)
	config.TimerStep = getIntWithDefault("TIMER_STEP", config.TimerStep)
	config.TimerInterval = getIntWithDefault("TIMER_INTERVAL", config.TimerInterval)
	config.TimerTick = getDurationWithDefault("TIMER_TICK", config.TimerTick)
	config.TimerInitialDelay = getDurationWithDefault("TIMER_INITIAL_DELAY", config.TimerInitialDelay)

	config.GeneratorTimeout = getDurationWithDefault("GENERATOR_TIMEOUT", config.GeneratorTimeout)
	config.GeneratorWindowSize = getIntWithDefault("GENERATOR_WINDOW_SIZE", config.GeneratorWindowSize)
	config.GeneratorMaxRetries = getIntWithDefault("GENERATOR_MAX_RETRIES", config.GeneratorMaxRetries)

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration for values the application cannot run with
func (c *Config) Validate() error {
	if c.Environment != "test" {
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		// If DatabaseName is provided, ensure it's not empty
		if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
			return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	if c.TimerStep <= 0 {
		return fmt.Errorf("TIMER_STEP must be positive, got %d", c.TimerStep)
	}
	if c.TimerInterval <= 0 {
		return fmt.Errorf("TIMER_INTERVAL must be positive, got %d", c.TimerInterval)
	}
	if c.TimerFloor > c.TimerStartClock {
		return fmt.Errorf("TIMER_FLOOR (%d) cannot exceed TIMER_START_CLOCK (%d)", c.TimerFloor, c.TimerStartClock)
	}
	if c.TimerTick <= 0 {
		return fmt.Errorf("TIMER_TICK must be positive")
	}
	if c.GeneratorTimeout <= 0 {
		return fmt.Errorf("GENERATOR_TIMEOUT must be positive")
	}
	if c.GeneratorWindowSize <= 0 {
		return fmt.Errorf("GENERATOR_WINDOW_SIZE must be positive, got %d", c.GeneratorWindowSize)
	}
	if c.StartingBalance < 0 {
		return fmt.Errorf("STARTING_BALANCE cannot be negative")
	}

	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getDurationWithDefault accepts Go duration strings ("500ms", "2s")
func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:         "test",
		HTTPAddr:            ":0",
		HTTPRateLimit:       1000,
		HTTPRateBurst:       1000,
		StartingBalance:     1000,
		DefaultMultiplier:   "2",
		TimerStartClock:     300,
		TimerFloor:          0,
		TimerStep:           1,
		TimerInterval:       20,
		TimerTick:           time.Millisecond,
		TimerInitialDelay:   0,
		GeneratorTimeout:    time.Second,
		GeneratorWindowSize: 20,
		GeneratorMaxRetries: 0,
		LogLevel:            "debug",
		LogFormat:           "text",
	}
}
