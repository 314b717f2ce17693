package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// daemonState is written next to the PID file so status can find the listener.
type daemonState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DataDir   string    `json:"data_dir"`
	Source    string    `json:"source,omitempty"`
}

// daemonFiles manages the PID file and its JSON state sidecar.
type daemonFiles struct {
	pidPath string
}

func (f daemonFiles) statePath() string {
	return f.pidPath + ".json"
}

// claim writes the PID and state files for the current process.
func (f daemonFiles) claim(st daemonState) error {
	if err := os.MkdirAll(filepath.Dir(f.pidPath), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	if err := os.WriteFile(f.pidPath, []byte(strconv.Itoa(st.PID)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	// state is advisory; status falls back to --addr without it
	_ = os.WriteFile(f.statePath(), append(data, '\n'), 0o600)
	return nil
}

func (f daemonFiles) release() {
	_ = os.Remove(f.pidPath)
	_ = os.Remove(f.statePath())
}

func (f daemonFiles) pid() (int, error) {
	//nolint:gosec // daemon pid path is configured by the local user
	data, err := os.ReadFile(f.pidPath)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", f.pidPath)
	}
	return pid, nil
}

func (f daemonFiles) state() (daemonState, error) {
	var st daemonState
	//nolint:gosec // daemon state path is configured by the local user
	data, err := os.ReadFile(f.statePath())
	if err != nil {
		return st, err
	}
	err = json.Unmarshal(data, &st)
	return st, err
}

// ensureFree fails when a live daemon owns the PID file and clears stale files.
func (f daemonFiles) ensureFree() error {
	pid, err := f.pid()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if processAlive(pid) {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}
	f.release()
	return nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

// childArgs re-launches the current invocation as a foreground child.
func childArgs(args []string) []string {
	out := make([]string, 0, len(args)+1)
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return append(out, "--child")
}
