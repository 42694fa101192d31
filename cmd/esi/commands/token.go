package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fivetwenty-io/esi-client/internal/auth"
	"github.com/fivetwenty-io/esi-client/internal/constants"
)

// NewTokenCommand creates the token command group.
func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage EVE SSO tokens",
		Long:  "Store, inspect and refresh the EVE SSO token used for authenticated routes",
	}

	cmd.AddCommand(newTokenSetCommand())
	cmd.AddCommand(newTokenShowCommand())
	cmd.AddCommand(newTokenClearCommand())
	cmd.AddCommand(newTokenRefreshCommand())

	return cmd
}

func newTokenSetCommand() *cobra.Command {
	var (
		refreshToken string
		clientID     string
		clientSecret string
	)

	cmd := &cobra.Command{
		Use:   "set [ACCESS_TOKEN]",
		Short: "Store an access token",
		Long: `Store an EVE SSO access token in the config file.

The token is read from standard input when not given as an argument. With
--refresh-token and --client-id the CLI refreshes the token when it expires.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) == 1 {
				token = args[0]
			} else {
				var err error

				token, err = readSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Access token: ")
				if err != nil {
					return err
				}
			}

			token = strings.TrimSpace(token)
			if token == "" {
				return constants.ErrEmptyToken
			}

			config := loadConfig()
			config.Token = token
			config.TokenExpiresAt = nil

			if expiresAt, err := auth.ParseJWTExpiry(token); err == nil {
				config.TokenExpiresAt = &expiresAt
			}

			if refreshToken != "" {
				config.RefreshToken = refreshToken
			}

			if clientID != "" {
				config.ClientID = clientID
			}

			if clientSecret != "" {
				config.ClientSecret = clientSecret
			}

			err := saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Token saved")

			return nil
		},
	}

	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "SSO refresh token")
	cmd.Flags().StringVar(&clientID, "client-id", "", "SSO application client id")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "SSO application secret (omit for native applications)")

	return cmd
}

func newTokenShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored token",
		Long:  "Display the stored token's character, scopes and expiration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if config.Token == "" {
				return constants.ErrNoToken
			}

			status := buildTokenStatus(config, time.Now())

			return render(cmd.OutOrStdout(), status, func(w io.Writer) error {
				return renderProperties(w, status.rows())
			})
		},
	}
}

func newTokenClearCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored token",
		Long:  "Remove the stored access token, and with --all the refresh token and client credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.Token = ""
			config.TokenExpiresAt = nil
			config.LastRefreshed = nil

			if all {
				config.RefreshToken = ""
				config.ClientID = ""
				config.ClientSecret = ""
			}

			err := saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Token cleared")

			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "also remove the refresh token and client credentials")

	return cmd
}

func newTokenRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the access token",
		Long:  "Exchange the stored refresh token for a new access token and save it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			switch {
			case config.RefreshToken == "":
				return constants.ErrNoRefreshToken
			case config.ClientID == "":
				return constants.ErrNoClientID
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			manager := auth.NewConfigTokenManager(oauth2Config(config), NewConfigPersister())

			err := manager.RefreshToken(ctx)
			if err != nil {
				return fmt.Errorf("failed to refresh token: %w", err)
			}

			expiresAt := manager.GetTokenExpiry()
			if expiresAt.IsZero() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Token refreshed")
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Token refreshed, expires at %s\n", expiresAt.Format(time.RFC3339))
			}

			return nil
		},
	}
}

// tokenStatus describes the stored token.
type tokenStatus struct {
	Token         string     `json:"token"                    yaml:"token"`
	Character     string     `json:"character,omitempty"      yaml:"character,omitempty"`
	CharacterID   int64      `json:"character_id,omitempty"   yaml:"character_id,omitempty"`
	Scopes        []string   `json:"scopes,omitempty"         yaml:"scopes,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"     yaml:"expires_at,omitempty"`
	Status        string     `json:"status"                   yaml:"status"`
	Refreshable   bool       `json:"refreshable"              yaml:"refreshable"`
	LastRefreshed *time.Time `json:"last_refreshed,omitempty" yaml:"last_refreshed,omitempty"`
}

func buildTokenStatus(config *Config, now time.Time) *tokenStatus {
	status := &tokenStatus{
		Token:         maskSecret(config.Token),
		ExpiresAt:     config.TokenExpiresAt,
		Refreshable:   config.RefreshToken != "" && config.ClientID != "",
		LastRefreshed: config.LastRefreshed,
		Status:        "valid",
	}

	if claims, err := auth.ParseJWT(config.Token); err == nil {
		status.Character = claims.Name
		status.Scopes = claims.Scopes

		if id, ok := claims.CharacterID(); ok {
			status.CharacterID = id
		}

		if !claims.ExpiresAt.IsZero() {
			expiresAt := claims.ExpiresAt
			status.ExpiresAt = &expiresAt
		}
	}

	if status.ExpiresAt != nil {
		token := &auth.Token{AccessToken: config.Token, ExpiresAt: *status.ExpiresAt}

		switch {
		case !now.Before(*status.ExpiresAt):
			status.Status = "expired"
		case !token.Valid():
			status.Status = "expiring"
		default:
			status.Status = "valid for " + status.ExpiresAt.Sub(now).Truncate(time.Second).String()
		}
	}

	return status
}

func (s *tokenStatus) rows() [][]string {
	orNA := func(value string) string {
		if value == "" {
			return constants.NotAvailable
		}

		return value
	}

	expires := constants.NotAvailable
	if s.ExpiresAt != nil {
		expires = s.ExpiresAt.Format(time.RFC3339)
	}

	characterID := constants.NotAvailable
	if s.CharacterID != 0 {
		characterID = strconv.FormatInt(s.CharacterID, 10)
	}

	lastRefreshed := constants.NotAvailable
	if s.LastRefreshed != nil {
		lastRefreshed = s.LastRefreshed.Format(time.RFC3339)
	}

	return [][]string{
		{"Token", s.Token},
		{"Character", orNA(s.Character)},
		{"Character ID", characterID},
		{"Scopes", orNA(strings.Join(s.Scopes, " "))},
		{"Expires At", expires},
		{"Status", s.Status},
		{"Refreshable", strconv.FormatBool(s.Refreshable)},
		{"Last Refreshed", lastRefreshed},
	}
}

// readSecret reads one line from in, without echo when in is a terminal.
func readSecret(in io.Reader, prompt io.Writer, label string) (string, error) {
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		_, _ = fmt.Fprint(prompt, label)

		secret, err := term.ReadPassword(int(file.Fd()))
		_, _ = fmt.Fprintln(prompt)

		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}

		return string(secret), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	return line, nil
}
