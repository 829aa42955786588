package e2e_test

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	binaryPath     string
	binaryBuildErr error
	binaryOnce     sync.Once
	sharedTempDir  string
)

// TestMain sets up and tears down shared test resources.
func TestMain(m *testing.M) {
	var err error
	sharedTempDir, err = os.MkdirTemp("", "filedrop-e2e-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	_ = os.RemoveAll(sharedTempDir)

	os.Exit(code)
}

// ServerConfig holds configuration for starting the filedrop server.
type ServerConfig struct {
	Port         int
	Host         string
	PublicPort   int // 0 = follow Port
	StoragePath  string
	SizeLimit    string
	DenyUpload   bool
	DenyDownload bool
	Env          []string // extra FILEDROP_* variables
	ExtraArgs    []string
}

// buildBinary compiles the filedrop binary once per test run.
// Returns the path to the compiled binary.
func buildBinary(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	binaryOnce.Do(func() {
		binaryPath = filepath.Join(sharedTempDir, "filedrop")

		cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/filedrop")
		cmd.Dir = getProjectRoot(t)
		output, err := cmd.CombinedOutput()
		if err != nil {
			binaryBuildErr = fmt.Errorf("build binary: %w\nOutput: %s", err, output)
			return
		}
	})

	if binaryBuildErr != nil {
		t.Fatalf("failed to build binary: %v", binaryBuildErr)
	}

	return binaryPath
}

// getProjectRoot returns the root directory of the filedrop project.
func getProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err, "get working directory")

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// createConfigFile creates a temporary config file for the server.
// Returns the path to the config file.
func createConfigFile(t *testing.T, cfg ServerConfig) string {
	t.Helper()

	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `server:
  ip: 127.0.0.1
  port: %d
  host: %s
`, cfg.Port, host)

	if cfg.PublicPort != 0 {
		fmt.Fprintf(&sb, "  public_port: %d\n", cfg.PublicPort)
	}
	if cfg.SizeLimit != "" {
		fmt.Fprintf(&sb, "  size_limit: %s\n", cfg.SizeLimit)
	}

	fmt.Fprintf(&sb, `
storage:
  path: "%s"

access:
  allow_upload: %t
  allow_download: %t

log:
  level: error
`, cfg.StoragePath, !cfg.DenyUpload, !cfg.DenyDownload)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(configPath, []byte(sb.String()), 0o600)
	require.NoError(t, err, "write config file")

	return configPath
}

// serverCommand prepares the filedrop binary with a generated config file.
// The process runs in an empty working directory so no stray .env or
// config.yaml is picked up.
func serverCommand(t *testing.T, cfg ServerConfig) *exec.Cmd {
	t.Helper()

	binary := buildBinary(t)
	configPath := createConfigFile(t, cfg)

	args := append([]string{"--config", configPath}, cfg.ExtraArgs...)
	cmd := exec.Command(binary, args...)
	cmd.Dir = t.TempDir()
	cmd.Env = append(cleanEnv(), cfg.Env...)

	return cmd
}

// cleanEnv returns the current environment without FILEDROP_* variables.
func cleanEnv() []string {
	var env []string
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "FILEDROP_") {
			env = append(env, kv)
		}
	}
	return env
}

// startServer starts the filedrop binary with the given configuration.
// Returns the base URL; the server is stopped with SIGTERM on cleanup.
func startServer(t *testing.T, cfg ServerConfig) string {
	t.Helper()

	cmd := serverCommand(t, cfg)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Start()
	require.NoError(t, err, "start server")

	t.Cleanup(func() {
		if cmd.Process != nil {
			_ = cmd.Process.Signal(syscall.SIGTERM)
			_ = cmd.Wait()
		}
	})

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Port)
	waitForServer(t, baseURL, 10*time.Second)

	return baseURL
}

// waitForServer polls the server until it responds or times out.
func waitForServer(t *testing.T, baseURL string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 1 * time.Second}

	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/")
		if err == nil {
			_ = resp.Body.Close()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatalf("server failed to start within %v", timeout)
}

// getOpenPort finds an available TCP port.
func getOpenPort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "find open port")

	port := l.Addr().(*net.TCPAddr).Port

	err = l.Close()
	require.NoError(t, err, "close port")

	return port
}
