//go:build integration

package integration

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fivetwenty-io/esi-client/internal/auth"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	BaseURL    string
	DataSource string
	Token      string
	ESIPath    string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		BaseURL:    os.Getenv("ESI_INTEGRATION_BASE_URL"),
		DataSource: os.Getenv("ESI_INTEGRATION_DATASOURCE"),
		Token:      os.Getenv("ESI_INTEGRATION_TOKEN"),
		ESIPath:    getESIPath(),
		Verbose:    os.Getenv("ESI_VERBOSE") == "true",
	}
}

// getESIPath determines the path to the esi binary
func getESIPath() string {
	if path := os.Getenv("ESI_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../esi",
		"./esi",
		"../esi",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "esi"
}

// SkipIfDisabled skips tests that talk to the live ESI API unless
// ESI_INTEGRATION is set.
func (config *TestConfig) SkipIfDisabled(t *testing.T) {
	t.Helper()

	if os.Getenv("ESI_INTEGRATION") == "" {
		t.Skip("ESI_INTEGRATION not set, skipping integration test")
	}
}

// SkipIfNoBinary also skips when the esi binary cannot be found.
func (config *TestConfig) SkipIfNoBinary(t *testing.T) {
	t.Helper()

	config.SkipIfDisabled(t)

	if _, err := exec.LookPath(config.ESIPath); err != nil {
		t.Skipf("esi binary not found at %s, skipping integration test", config.ESIPath)
	}
}

// CommandRunner runs esi commands against an isolated config file.
type CommandRunner struct {
	config     *TestConfig
	t          *testing.T
	configFile string
}

// NewCommandRunner creates a runner with an empty config file in a temp dir.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	configFile := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(configFile, []byte("{}\n"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	return &CommandRunner{
		config:     config,
		t:          t,
		configFile: configFile,
	}
}

// Run executes an esi command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes an esi command with stdin input
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	full := []string{"--config", runner.configFile}

	if runner.config.BaseURL != "" {
		full = append(full, "--base-url", runner.config.BaseURL)
	}

	if runner.config.DataSource != "" {
		full = append(full, "--datasource", runner.config.DataSource)
	}

	full = append(full, args...)

	// #nosec G204
	cmd := exec.Command(runner.config.ESIPath, full...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.ESIPath, strings.Join(full, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// AssertJSONOutput verifies command output is valid JSON
func AssertJSONOutput(t *testing.T, output string) {
	t.Helper()

	output = strings.TrimSpace(output)
	if !strings.HasPrefix(output, "{") && !strings.HasPrefix(output, "[") {
		t.Errorf("Output does not appear to be JSON: %s", output)
	}
}

// characterFromToken reads the character id from an SSO access token.
func characterFromToken(t *testing.T, token string) int64 {
	t.Helper()

	claims, err := auth.ParseJWT(token)
	if err != nil {
		t.Fatalf("failed to parse ESI_INTEGRATION_TOKEN: %v", err)
	}

	id, ok := claims.CharacterID()
	if !ok {
		t.Fatalf("token subject %q is not a character", claims.Subject)
	}

	return id
}
