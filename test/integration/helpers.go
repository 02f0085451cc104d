//go:build integration

package integration

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Endpoint       string
	AccessToken    string
	PrivateEndpoint string
	NATSURL        string
	BinaryPath     string
	Verbose        bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Endpoint:       os.Getenv("PRISMIC_TEST_ENDPOINT"),
		AccessToken:    os.Getenv("PRISMIC_TEST_TOKEN"),
		PrivateEndpoint: os.Getenv("PRISMIC_TEST_PRIVATE_ENDPOINT"),
		NATSURL:        os.Getenv("NATS_URL"),
		BinaryPath:     getBinaryPath(),
		Verbose:        os.Getenv("PRISMIC_VERBOSE") == "true",
	}
}

// getBinaryPath determines the path to the prismic binary
func getBinaryPath() string {
	if path := os.Getenv("PRISMIC_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../prismic",
		"./prismic",
		"../prismic",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "prismic"
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.Endpoint == "" {
		t.Skip("PRISMIC_TEST_ENDPOINT not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("prismic binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// CommandRunner runs the prismic binary against the configured repository
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
	home   string
}

// NewCommandRunner creates a runner with an isolated config directory
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config: config,
		t:      t,
		home:   t.TempDir(),
	}
}

// Run executes a prismic command and returns its output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.BinaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+runner.home)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// RunAgainst runs a command with the endpoint flag prepended
func (runner *CommandRunner) RunAgainst(endpoint string, args ...string) (stdout, stderr string, err error) {
	return runner.Run(append([]string{"--endpoint", endpoint}, args...)...)
}
