package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/remote-first-institute/aiwo/internal/api"
	"github.com/remote-first-institute/aiwo/internal/genai"
	"github.com/remote-first-institute/aiwo/internal/playbook"
	"github.com/remote-first-institute/aiwo/internal/sentiment"
	"github.com/remote-first-institute/aiwo/internal/store"
	"github.com/remote-first-institute/aiwo/internal/textutil"
	"github.com/remote-first-institute/aiwo/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for aiwo state data
	DefaultStateDir = "/var/lib/aiwo"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "aiwo.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	ctx := context.Background()

	st, err := store.NewStore(buildStoreOptions(flags)...)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	client, err := genai.NewClient(buildGenAIOptions(flags)...)
	if err != nil {
		slog.Error("Failed to initialize GenAI client", "error", err)
		os.Exit(1)
	}

	retriever, err := playbook.NewChromemRetriever(ctx, buildPlaybookOptions(flags)...)
	if err != nil {
		slog.Error("Failed to initialize playbook retriever", "error", err)
		os.Exit(1)
	}

	// The sentiment backend is optional: without a Google API key interview
	// answers are still recorded without sentiment.
	var analyzer sentiment.Analyzer
	if *flags.googleKey != "" && util.ParseBoolEnv("SENTIMENT_ENABLED", true) {
		googleClient, err := sentiment.NewGoogleClient(sentiment.WithAPIKey(*flags.googleKey))
		if err != nil {
			slog.Error("Failed to initialize sentiment client", "error", err)
			os.Exit(1)
		}
		analyzer = googleClient
	} else {
		slog.Warn("No Google API key set, sentiment analysis disabled")
	}

	// Load the emoji table in the background; replacement is a no-op until
	// the load finishes.
	emoji := textutil.NewEmojiReplacer()
	go func() {
		if err := emoji.Load(ctx); err != nil {
			slog.Warn("Failed to load emoji table", "error", err)
		}
	}()

	slog.Info("Bootstrapping aiwo with configured modules")
	slog.Debug("Final configuration", "dsn_set", *flags.dbDSN != "", "api_addr", *flags.apiAddr, "sentiment_enabled", analyzer != nil)

	server := api.NewServer(st, client, retriever, analyzer, emoji, buildAPIOptions(flags)...)
	if err := server.Run(); err != nil {
		slog.Error("aiwo failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("aiwo exited successfully")
}

// Config holds environment configuration
type Config struct {
	DbDriver     string
	DatabaseURL  string
	StateDir     string
	OpenAIKey    string
	GoogleKey    string
	ServiceKey   string
	APIAddr      string
	PlaybookPath string
}

// Flags holds command line flag values
type Flags struct {
	stateDir     *string
	dbDriver     *string
	dbDSN        *string
	openaiKey    *string
	googleKey    *string
	serviceKey   *string
	apiAddr      *string
	playbookPath *string
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DbDriver:     os.Getenv("DB_DRIVER"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		StateDir:     os.Getenv("AIWO_STATE_DIR"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		GoogleKey:    os.Getenv("GOOGLE_API_KEY"),
		ServiceKey:   os.Getenv("SERVICE_KEY"),
		APIAddr:      os.Getenv("API_ADDR"),
		PlaybookPath: os.Getenv("PLAYBOOK_PATH"),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No AIWO_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DB_DRIVER", config.DbDriver,
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"AIWO_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"GOOGLE_API_KEY_SET", config.GoogleKey != "",
		"SERVICE_KEY_SET", config.ServiceKey != "",
		"API_ADDR", config.APIAddr,
		"PLAYBOOK_PATH", config.PlaybookPath)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:     flag.String("state-dir", config.StateDir, "state directory for aiwo data (overrides $AIWO_STATE_DIR)"),
		dbDriver:     flag.String("db-driver", config.DbDriver, "database driver (overrides $DB_DRIVER)"),
		dbDSN:        flag.String("db-dsn", config.DatabaseURL, "database DSN (overrides $DATABASE_URL)"),
		openaiKey:    flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		googleKey:    flag.String("google-api-key", config.GoogleKey, "Google Cloud API key for sentiment analysis (overrides $GOOGLE_API_KEY)"),
		serviceKey:   flag.String("service-key", config.ServiceKey, "service key for user management endpoints (overrides $SERVICE_KEY)"),
		apiAddr:      flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		playbookPath: flag.String("playbook-path", config.PlaybookPath, "path to the playbook markdown file (overrides $PLAYBOOK_PATH)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDriver", *flags.dbDriver,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"googleKeySet", *flags.googleKey != "",
		"serviceKeySet", *flags.serviceKey != "",
		"apiAddr", *flags.apiAddr,
		"playbookPath", *flags.playbookPath)

	// Update database DSN if not explicitly set but state directory is provided
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "dsn_updated", true)
	}

	return flags
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN != "" {
		storeOpts = append(storeOpts, store.WithDSN(*flags.dbDSN))
	}
	if *flags.dbDriver != "" {
		storeOpts = append(storeOpts, store.WithDriver(*flags.dbDriver))
	}
	return storeOpts
}

// buildGenAIOptions constructs GenAI configuration options
func buildGenAIOptions(flags Flags) []genai.Option {
	var genaiOpts []genai.Option
	if *flags.openaiKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
	}
	return genaiOpts
}

// buildPlaybookOptions constructs playbook retriever configuration options
func buildPlaybookOptions(flags Flags) []playbook.Option {
	var playbookOpts []playbook.Option
	if *flags.playbookPath != "" {
		playbookOpts = append(playbookOpts, playbook.WithPath(*flags.playbookPath))
	}
	if *flags.openaiKey != "" {
		playbookOpts = append(playbookOpts, playbook.WithAPIKey(*flags.openaiKey))
	}
	if topK := util.ParseIntEnv("PLAYBOOK_TOP_K", playbook.DefaultTopK); topK != playbook.DefaultTopK {
		playbookOpts = append(playbookOpts, playbook.WithTopK(topK))
	}
	return playbookOpts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.serviceKey != "" {
		apiOpts = append(apiOpts, api.WithServiceKey(*flags.serviceKey))
	}
	return apiOpts
}
