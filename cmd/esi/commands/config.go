package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/esi-client/internal/constants"
)

// Config represents the CLI configuration.
type Config struct {
	// Connection settings
	BaseURL    string `json:"base_url,omitempty"   yaml:"base_url,omitempty"`
	DataSource string `json:"datasource,omitempty" yaml:"datasource,omitempty"`
	Language   string `json:"language,omitempty"   yaml:"language,omitempty"`
	UserAgent  string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	Output     string `json:"output,omitempty"     yaml:"output,omitempty"`
	RoutesFile string `json:"routes_file,omitempty" yaml:"routes_file,omitempty"`

	// Request agent settings
	MaxConcurrentRequests int    `json:"max_concurrent_requests,omitempty" yaml:"max_concurrent_requests,omitempty"`
	MinInterval           string `json:"min_interval,omitempty"            yaml:"min_interval,omitempty"`
	RetryMax              int    `json:"retry_max,omitempty"               yaml:"retry_max,omitempty"`

	// SSO settings
	Token          string     `json:"token,omitempty"            yaml:"token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	RefreshToken   string     `json:"refresh_token,omitempty"    yaml:"refresh_token,omitempty"`
	LastRefreshed  *time.Time `json:"last_refreshed,omitempty"   yaml:"last_refreshed,omitempty"`
	ClientID       string     `json:"client_id,omitempty"        yaml:"client_id,omitempty"`
	ClientSecret   string     `json:"client_secret,omitempty"    yaml:"client_secret,omitempty"`
	SSOTokenURL    string     `json:"sso_token_url,omitempty"    yaml:"sso_token_url,omitempty"`

	Store StoreSettings `json:"store,omitempty" yaml:"store,omitempty"`
}

// StoreSettings selects the second cache tier.
type StoreSettings struct {
	Type        string `json:"type,omitempty"         yaml:"type,omitempty"`
	MaxSize     int    `json:"max_size,omitempty"     yaml:"max_size,omitempty"`
	NATSURL     string `json:"nats_url,omitempty"     yaml:"nats_url,omitempty"`
	NATSBucket  string `json:"nats_bucket,omitempty"  yaml:"nats_bucket,omitempty"`
	LevelDBPath string `json:"leveldb_path,omitempty" yaml:"leveldb_path,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage ESI CLI configuration including connection, cache and SSO settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			masked := *config
			masked.Token = maskOptional(config.Token)
			masked.RefreshToken = maskOptional(config.RefreshToken)
			masked.ClientSecret = maskOptional(config.ClientSecret)

			return render(cmd.OutOrStdout(), masked, func(w io.Writer) error {
				return renderProperties(w, configRows(&masked))
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value, e.g. 'esi config set store.type leveldb'",
		Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Reset a configuration value to its default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], "")
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

// loadConfig reads the CLI configuration from viper, so flags and ESI_*
// environment variables override the config file.
func loadConfig() *Config {
	config := &Config{
		BaseURL:               viper.GetString("base_url"),
		DataSource:            viper.GetString("datasource"),
		Language:              viper.GetString("language"),
		UserAgent:             viper.GetString("user_agent"),
		Output:                viper.GetString("output"),
		RoutesFile:            viper.GetString("routes_file"),
		MaxConcurrentRequests: viper.GetInt("max_concurrent_requests"),
		MinInterval:           viper.GetString("min_interval"),
		RetryMax:              viper.GetInt("retry_max"),
		Token:                 viper.GetString("token"),
		RefreshToken:          viper.GetString("refresh_token"),
		ClientID:              viper.GetString("client_id"),
		ClientSecret:          viper.GetString("client_secret"),
		SSOTokenURL:           viper.GetString("sso_token_url"),
		Store: StoreSettings{
			Type:        viper.GetString("store.type"),
			MaxSize:     viper.GetInt("store.max_size"),
			NATSURL:     viper.GetString("store.nats_url"),
			NATSBucket:  viper.GetString("store.nats_bucket"),
			LevelDBPath: viper.GetString("store.leveldb_path"),
		},
	}

	if viper.IsSet("token_expires_at") {
		if expiresAt := viper.GetTime("token_expires_at"); !expiresAt.IsZero() {
			config.TokenExpiresAt = &expiresAt
		}
	}

	if viper.IsSet("last_refreshed") {
		if refreshed := viper.GetTime("last_refreshed"); !refreshed.IsZero() {
			config.LastRefreshed = &refreshed
		}
	}

	return config
}

// configFilePath returns the file config changes are written to.
func configFilePath() (string, error) {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".esi")

	err = os.MkdirAll(configDir, constants.ConfigDirPerm)
	if err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.yml"), nil
}

// saveConfigStruct writes config to the config file and reloads viper from it.
func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	viper.SetConfigFile(configFile)

	err = viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("failed to reload config file: %w", err)
	}

	return nil
}

// configSetters maps config keys to their setters. An empty value resets the key.
var configSetters = map[string]func(*Config, string) error{
	"base_url":                stringSetter(func(c *Config, v string) { c.BaseURL = v }),
	"language":                stringSetter(func(c *Config, v string) { c.Language = v }),
	"user_agent":              stringSetter(func(c *Config, v string) { c.UserAgent = v }),
	"routes_file":             stringSetter(func(c *Config, v string) { c.RoutesFile = v }),
	"max_concurrent_requests": intSetter(func(c *Config, n int) { c.MaxConcurrentRequests = n }),
	"retry_max":               intSetter(func(c *Config, n int) { c.RetryMax = n }),
	"client_id":               stringSetter(func(c *Config, v string) { c.ClientID = v }),
	"client_secret":           stringSetter(func(c *Config, v string) { c.ClientSecret = v }),
	"sso_token_url":           stringSetter(func(c *Config, v string) { c.SSOTokenURL = v }),
	"store.max_size":          intSetter(func(c *Config, n int) { c.Store.MaxSize = n }),
	"store.nats_url":          stringSetter(func(c *Config, v string) { c.Store.NATSURL = v }),
	"store.nats_bucket":       stringSetter(func(c *Config, v string) { c.Store.NATSBucket = v }),
	"store.leveldb_path":      stringSetter(func(c *Config, v string) { c.Store.LevelDBPath = v }),

	"datasource": func(c *Config, v string) error {
		switch v {
		case "", constants.DefaultDataSource, constants.DataSourceSingularity:
			c.DataSource = v

			return nil
		default:
			return fmt.Errorf("%w: datasource %s", constants.ErrInvalidValue, v)
		}
	},

	"output": func(c *Config, v string) error {
		switch v {
		case "", constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
			c.Output = v

			return nil
		default:
			return fmt.Errorf("%w: %s", constants.ErrInvalidOutput, v)
		}
	},

	"min_interval": func(c *Config, v string) error {
		if v != "" {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("%w: min_interval: %w", constants.ErrInvalidValue, err)
			}
		}

		c.MinInterval = v

		return nil
	},

	"store.type": func(c *Config, v string) error {
		switch v {
		case "", "none", "memory", "nats", "leveldb":
			c.Store.Type = v

			return nil
		default:
			return fmt.Errorf("%w: store.type %s", constants.ErrInvalidValue, v)
		}
	},
}

func stringSetter(set func(*Config, string)) func(*Config, string) error {
	return func(c *Config, v string) error {
		set(c, v)

		return nil
	}
}

func intSetter(set func(*Config, int)) func(*Config, string) error {
	return func(c *Config, v string) error {
		if v == "" {
			set(c, 0)

			return nil
		}

		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %q is not a non-negative integer", constants.ErrInvalidValue, v)
		}

		set(c, n)

		return nil
	}
}

func setConfigValue(config *Config, key, value string) error {
	setter, ok := configSetters[key]
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return setter(config, value)
}

func configRows(config *Config) [][]string {
	orDefault := func(value, fallback string) string {
		if value == "" {
			return fallback
		}

		return value
	}

	rows := [][]string{
		{"Base URL", orDefault(config.BaseURL, constants.DefaultBaseURL)},
		{"Datasource", orDefault(config.DataSource, constants.DefaultDataSource)},
		{"Language", orDefault(config.Language, constants.DefaultLanguage)},
		{"User Agent", orDefault(config.UserAgent, constants.DefaultUserAgent)},
		{"Output", orDefault(config.Output, constants.FormatTable)},
		{"Routes File", orDefault(config.RoutesFile, constants.NotAvailable)},
		{"Max Concurrent Requests", strconv.Itoa(config.MaxConcurrentRequests)},
		{"Min Interval", orDefault(config.MinInterval, "0s")},
		{"Retry Max", strconv.Itoa(config.RetryMax)},
		{"Store", orDefault(config.Store.Type, "none")},
		{"Token", orDefault(config.Token, constants.NotAvailable)},
		{"Refresh Token", orDefault(config.RefreshToken, constants.NotAvailable)},
		{"Client ID", orDefault(config.ClientID, constants.NotAvailable)},
		{"Client Secret", orDefault(config.ClientSecret, constants.NotAvailable)},
	}

	switch config.Store.Type {
	case "nats":
		rows = append(rows, []string{"NATS URL", orDefault(config.Store.NATSURL, constants.NotAvailable)})
	case "leveldb":
		rows = append(rows, []string{"LevelDB Path", orDefault(config.Store.LevelDBPath, constants.NotAvailable)})
	}

	return rows
}

func maskOptional(secret string) string {
	if secret == "" {
		return ""
	}

	return maskSecret(secret)
}
