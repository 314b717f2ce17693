package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/finburn/internal/cache"
	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/daemon"
	"github.com/theirongolddev/finburn/internal/log"
	"github.com/theirongolddev/finburn/internal/pipeline"
)

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run a background metrics daemon with HTTP/SSE endpoints",
	Long: "Recompute metrics on a schedule and serve them on /v1/metrics, /v1/buckets,\n" +
		"/v1/status, /v1/events and the /v1/stream SSE feed.",
	RunE: runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	defaultPID := filepath.Join(pipeline.CacheDir(), "finburnd.pid")
	defaultLog := filepath.Join(pipeline.CacheDir(), "finburnd.log")

	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "127.0.0.1:8787", "HTTP listen address (default from config)")
	daemonCmd.PersistentFlags().DurationVar(&flagDaemonInterval, "interval", time.Minute, "Polling interval (default from config)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonPIDFile, "pid-file", defaultPID, "PID file path")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", defaultLog, "Log file path for detached mode")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 200, "Max in-memory events retained (default from config)")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

// applyDaemonDefaults fills flags the user did not set from the [daemon] config section.
func applyDaemonDefaults(cmd *cobra.Command) {
	flags := cmd.Flags()
	if !flags.Changed("addr") && appCfg.Daemon.Addr != "" {
		flagDaemonAddr = appCfg.Daemon.Addr
	}
	if !flags.Changed("interval") {
		flagDaemonInterval = appCfg.DaemonInterval()
	}
	if !flags.Changed("events-buffer") && appCfg.Daemon.EventsBuffer > 0 {
		flagDaemonEventsBuffer = appCfg.Daemon.EventsBuffer
	}
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}
	applyDaemonDefaults(cmd)

	files := daemonFiles{pidPath: flagDaemonPIDFile}
	if err := files.ensureFree(); err != nil {
		return err
	}
	if flagDaemonDetach {
		return startDaemonDetached()
	}
	return runDaemonForeground(cmd.Context(), files)
}

func startDaemonDetached() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}

	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, childArgs(os.Args[1:])...) //nolint:gosec // exe/args come from current process invocation
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", child.Process.Pid)
	fmt.Printf("  PID file: %s\n", flagDaemonPIDFile)
	fmt.Printf("  API: http://%s/v1/status\n", flagDaemonAddr)
	fmt.Printf("  Log: %s\n", flagDaemonLogFile)
	return nil
}

func runDaemonForeground(parent context.Context, files daemonFiles) error {
	if flagDaemonChild {
		log.SetJSON()
	}

	err := files.claim(daemonState{
		PID:       os.Getpid(),
		Addr:      flagDaemonAddr,
		StartedAt: time.Now(),
		DataDir:   flagDataDir,
		Source:    flagSource,
	})
	if err != nil {
		return err
	}
	defer files.release()

	svc := daemon.New(daemon.Config{
		DataDir:      flagDataDir,
		Days:         flagDays,
		Source:       flagSource,
		UseCache:     !flagNoCache,
		Interval:     flagDaemonInterval,
		Addr:         flagDaemonAddr,
		EventsBuffer: flagDaemonEventsBuffer,
		Engine:       appCfg.Engine(),
		Cache:        cache.NewSnapshots(64, time.Hour),
	})

	fmt.Printf("  finburn daemon listening on http://%s\n", flagDaemonAddr)
	fmt.Printf("  Polling every %s from %s\n", flagDaemonInterval, flagDataDir)
	fmt.Printf("  Stop with: finburn daemon stop --pid-file %s\n", flagDaemonPIDFile)

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runDaemonStatus(cmd *cobra.Command, _ []string) error {
	applyDaemonDefaults(cmd)
	files := daemonFiles{pidPath: flagDaemonPIDFile}

	pid, err := files.pid()
	if err != nil {
		fmt.Printf("  Daemon: not running (pid file not found)\n")
		return nil
	}
	if !processAlive(pid) {
		fmt.Printf("  Daemon: stale pid file (pid %d not alive)\n", pid)
		return nil
	}

	addr := flagDaemonAddr
	if st, err := files.state(); err == nil && st.Addr != "" {
		addr = st.Addr
	}
	fmt.Printf("  Daemon PID: %d\n", pid)
	fmt.Printf("  Address: http://%s\n", addr)

	st, err := fetchStatus(cmd.Context(), addr)
	if err != nil {
		fmt.Printf("  API status: %v\n", err)
		return nil
	}
	if flagJSON {
		return printJSON(st)
	}
	printDaemonStatus(st)
	return nil
}

func fetchStatus(ctx context.Context, addr string) (daemon.Status, error) {
	var st daemon.Status
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/v1/status", nil)
	if err != nil {
		return st, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return st, fmt.Errorf("unreachable (%w)", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("malformed response (%w)", err)
	}
	return st, nil
}

func printDaemonStatus(st daemon.Status) {
	if st.LastPollAt.IsZero() {
		fmt.Printf("  Last poll: pending\n")
	} else {
		fmt.Printf("  Last poll: %s\n", st.LastPollAt.Local().Format(time.RFC3339))
	}
	fmt.Printf("  Poll count: %d\n", st.PollCount)
	fmt.Printf("  Dataset: %s\n", st.Summary.Version)
	fmt.Printf("  Revenue: %s\n", cli.FormatMoney(st.Summary.Revenue))
	fmt.Printf("  Expenses: %s\n", cli.FormatMoney(st.Summary.Expenses))
	fmt.Printf("  Net profit: %s\n", cli.FormatMoney(st.Summary.NetProfit))
	fmt.Printf("  Transactions: %s\n", cli.FormatNumber(int64(st.Summary.Transactions)))
	fmt.Printf("  Runway: %s\n", cli.FormatRunway(st.Summary.Runway))
	fmt.Printf("  Subscribers: %d\n", st.SubscriberCount)
	if st.ParseErrors > 0 || st.FileErrors > 0 {
		fmt.Printf("  Skipped: %d records, %d files\n", st.ParseErrors, st.FileErrors)
	}
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	files := daemonFiles{pidPath: flagDaemonPIDFile}
	pid, err := files.pid()
	if err != nil {
		return errors.New("daemon is not running")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			files.release()
			fmt.Printf("  Stopped daemon (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}
	return fmt.Errorf("daemon (pid %d) did not exit in time", pid)
}
