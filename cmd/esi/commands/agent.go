package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/esi-client/internal/auth"
	"github.com/fivetwenty-io/esi-client/internal/tracer"
	"github.com/fivetwenty-io/esi-client/pkg/esi"
)

// session is an agent built from the CLI configuration plus the resources it
// holds open.
type session struct {
	agent    *esi.Agent
	store    esi.Store
	shutdown func(context.Context) error
}

// Close releases the agent, the store and the tracer.
func (s *session) Close(ctx context.Context) {
	_ = s.agent.Close()

	s.closeStore()

	if s.shutdown != nil {
		_ = s.shutdown(ctx)
	}
}

// newSession creates a request agent from config.
func newSession(ctx context.Context, config *Config) (*session, error) {
	sess := &session{}

	if viper.GetBool("trace") {
		shutdown, err := tracer.Setup(ctx, tracer.Config{Exporter: tracer.ExporterStdout, Writer: os.Stderr})
		if err != nil {
			return nil, fmt.Errorf("failed to set up tracing: %w", err)
		}

		sess.shutdown = shutdown
	}

	agentConfig, err := buildAgentConfig(config)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, config.Store)
	if err != nil {
		return nil, err
	}

	if store != nil {
		agentConfig.Store = store
		sess.store = store
	}

	agent, err := esi.New(agentConfig)
	if err != nil {
		sess.closeStore()

		return nil, fmt.Errorf("failed to create ESI agent: %w", err)
	}

	sess.agent = agent

	return sess, nil
}

func (s *session) closeStore() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

func buildAgentConfig(config *Config) (*esi.Config, error) {
	level := slog.LevelWarn
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}

	agentConfig := &esi.Config{
		BaseURL:               config.BaseURL,
		DataSource:            config.DataSource,
		Language:              config.Language,
		UserAgent:             config.UserAgent,
		MaxConcurrentRequests: config.MaxConcurrentRequests,
		RetryMax:              config.RetryMax,
		CleanupInterval:       -1,
		Logger:                esi.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))),
		Debug:                 viper.GetBool("verbose"),
	}

	if config.MinInterval != "" {
		interval, err := time.ParseDuration(config.MinInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid min_interval %q: %w", config.MinInterval, err)
		}

		agentConfig.MinTimeBetweenRequests = interval
	}

	if config.RoutesFile != "" {
		routes, err := loadRoutesFile(config.RoutesFile)
		if err != nil {
			return nil, err
		}

		agentConfig.Routes = routes
	}

	return agentConfig, nil
}

func buildStore(ctx context.Context, settings StoreSettings) (esi.Store, error) {
	storeConfig := &esi.StoreConfig{Type: esi.StoreType(settings.Type)}

	switch storeConfig.Type {
	case "", esi.StoreTypeNone:
		return nil, nil //nolint:nilnil // no store configured
	case esi.StoreTypeMemory:
		storeConfig.Memory = &esi.MemoryStoreConfig{MaxSize: settings.MaxSize}
	case esi.StoreTypeNATS:
		storeConfig.NATS = &esi.NATSKVConfig{URL: settings.NATSURL, Bucket: settings.NATSBucket}
	case esi.StoreTypeLevelDB:
		path := settings.LevelDBPath
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get user home directory: %w", err)
			}

			path = filepath.Join(home, ".esi", "cache")
		}

		storeConfig.LevelDB = &esi.LevelDBConfig{Path: path}
	}

	store, err := esi.NewStoreFromConfig(ctx, storeConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", settings.Type, err)
	}

	return store, nil
}

// loadRoutesFile reads extra routes and merges them over the built-in table.
func loadRoutesFile(path string) (esi.Routes, error) {
	// path comes from the user's own configuration
	// #nosec G304
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open routes file: %w", err)
	}

	defer func() { _ = file.Close() }()

	routes, err := esi.LoadRoutes(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load routes from %s: %w", path, err)
	}

	return esi.DefaultRoutes().Merge(routes), nil
}

// newTokenManager picks how the CLI obtains an access token: a --token flag
// is used as is, a stored refresh token with a client id refreshes and
// persists, and a stored access token alone is used until it expires.
func newTokenManager(cmd *cobra.Command, config *Config) auth.TokenManager {
	if flag := cmd.Flags().Lookup("token"); flag != nil && flag.Changed {
		return auth.NewStaticTokenManager(config.Token, time.Time{})
	}

	if config.RefreshToken != "" && config.ClientID != "" {
		return auth.NewConfigTokenManager(oauth2Config(config), NewConfigPersister())
	}

	var expiresAt time.Time
	if config.TokenExpiresAt != nil {
		expiresAt = *config.TokenExpiresAt
	}

	return auth.NewStaticTokenManager(config.Token, expiresAt)
}

func oauth2Config(config *Config) *auth.OAuth2Config {
	return &auth.OAuth2Config{
		TokenURL:     config.SSOTokenURL,
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		AccessToken:  config.Token,
		RefreshToken: config.RefreshToken,
	}
}
