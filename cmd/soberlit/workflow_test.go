package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestEndToEndWorkflow drives a built binary through init, toggling, backups
// and diagnostics. Point SOBERLIT_BIN_DIR at the directory holding it.
func TestEndToEndWorkflow(t *testing.T) {
	binDir := os.Getenv("SOBERLIT_BIN_DIR")
	if binDir == "" {
		binDir = filepath.Join("..", "..", "bin")
	}
	binDir, _ = filepath.Abs(binDir)
	cliPath := filepath.Join(binDir, "soberlit")
	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Skipf("CLI binary not found at %s, build it first", cliPath)
	}

	tempDir := t.TempDir()
	var env []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "HOME=") && !strings.HasPrefix(e, "SOBERLIT_DB_CONNECTION=") {
			env = append(env, e)
		}
	}
	env = append(env, fmt.Sprintf("HOME=%s", tempDir))

	config := filepath.Join(tempDir, "soberlit", "soberlit.db")
	run := func(args ...string) string {
		t.Helper()
		return runCmd(t, cliPath, env, append([]string{"--config", config}, args...)...)
	}

	run("init")

	today := time.Now()
	for i := 2; i >= 0; i-- {
		run("toggle", today.AddDate(0, 0, -i).Format("2006-01-02"))
	}

	if out := run("status"); !strings.Contains(out, "Current streak: 3") {
		t.Errorf("expected a 3 day streak, got:\n%s", out)
	}
	if out := run("timer"); !strings.Contains(out, "running") {
		t.Errorf("expected the timer to be running, got:\n%s", out)
	}

	run("settings", "set", "--drink-cost", "4.5", "--currency", "EUR")
	if out := run("settings", "show"); !strings.Contains(out, "EUR") {
		t.Errorf("expected currency EUR, got:\n%s", out)
	}

	run("calendar", "--past", "1")
	run("backup", "create")
	if out := run("backup", "list"); !strings.Contains(out, "soberlit-") {
		t.Errorf("expected a backup in the listing, got:\n%s", out)
	}
	run("doctor")

	cmd := exec.Command(cliPath, "--config", config, "toggle", today.AddDate(0, 0, 1).Format("2006-01-02"))
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Errorf("toggling tomorrow should fail, got:\n%s", out)
	}
	if !strings.Contains(string(out), "Warning:") {
		t.Errorf("expected a warning for a future day, got:\n%s", out)
	}
}

func runCmd(t *testing.T, path string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command(path, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return string(out)
}
