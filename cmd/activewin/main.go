package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/activewin/activewin/internal/config"
	"github.com/activewin/activewin/internal/daemon"
	"github.com/activewin/activewin/internal/database"
	"github.com/activewin/activewin/internal/logger"
	"github.com/activewin/activewin/internal/watcher"
	"github.com/activewin/activewin/internal/web"
	"github.com/activewin/activewin/pkg/detector"
	"github.com/activewin/activewin/pkg/utils"
	"github.com/activewin/activewin/pkg/window"
	"github.com/activewin/activewin/version"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

const (
	daemonChildEnv   = "ACTIVEWIN_DAEMON_CHILD"
	failureRetention = 30 * 24 * time.Hour
)

// Exit codes of the resolve command.
const (
	exitFound       = 0
	exitNoWindow    = 1
	exitUnavailable = 2
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "resolve":
		os.Exit(resolveOnce(os.Args[2:]))
	case "watch":
		watchForeground()
	case "start":
		startDaemon(false)
	case "serve":
		startDaemon(true)
	case "stop":
		stopDaemon()
	case "status":
		showStatus()
	case "failures":
		showFailures(os.Args[2:])
	case "clear":
		clearDatabase(os.Args[2:])
	case "version":
		showVersion()
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`activewin - Active window resolver

Usage:
  activewin <command> [options]

Commands:
  resolve [--json] [--explain]   Print the active window of the frontmost application
  watch                          Sample the active window in the foreground
  start                          Start the watcher daemon
  serve                          Start the watcher daemon with the web API
  stop                           Stop the watcher daemon
  status                         Show daemon status and the active window
  failures [N]                   List the last N enumeration failures (default 20)
  clear [--yes]                  Delete all stored failures
  version                        Show version information
  help                           Show this help message

Environment Variables:
  ACTIVEWIN_CONFIG            Config file path (default ~/.config/activewin/activewin.yaml)
  ACTIVEWIN_MIN_WINDOW_SIZE   Minimum window width and height (default 50)
  ACTIVEWIN_POLL_INTERVAL     Poll interval, seconds or Go duration
  ACTIVEWIN_QUERY_TIMEOUT     Bound on each window system query
  ACTIVEWIN_DB_PATH           Database file path
  ACTIVEWIN_PID_FILE          PID file path
  ACTIVEWIN_WEB_HOST          Web API host
  ACTIVEWIN_WEB_PORT          Web API port
  ACTIVEWIN_LOG_LEVEL         debug, info, warn or error
  ACTIVEWIN_LOG_FILE          Log file path

Version: %s
`, version.Version)
}

func showVersion() {
	fmt.Printf("activewin version %s\n", version.Version)
	fmt.Printf("  commit: %s\n", version.Commit)
	fmt.Printf("  built:  %s\n", version.Date)
}

func loadConfig() *config.Config {
	cfg, err := config.New()
	if err != nil {
		logger.Fatal("Invalid configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", err)
	}
	logger.SetLevel(cfg.Log.Level)
	return cfg
}

func newLocator(cfg *config.Config, p window.Platform, verdicts bool) *window.Locator {
	resolver := window.NewResolver(window.WithMinWindowSize(cfg.Resolver.MinWindowSize))
	return window.NewPlatformLocator(p,
		window.WithResolver(resolver),
		window.WithQueryTimeout(cfg.Watch.QueryTimeout),
		window.WithVerdicts(verdicts),
	)
}

func resolveOnce(args []string) int {
	jsonOutput, explain := false, false
	for _, arg := range args {
		switch arg {
		case "--json":
			jsonOutput = true
		case "--explain":
			explain = true
		default:
			fmt.Fprintf(os.Stderr, "Unknown option: %s\n", arg)
			return exitNoWindow
		}
	}

	cfg := loadConfig()

	p, err := detector.New()
	if err != nil {
		printResult(os.Stdout, &window.Result{Reason: window.EnumerationUnavailable}, err, jsonOutput)
		return exitUnavailable
	}
	defer p.Close()

	res, err := newLocator(cfg, p, explain).Locate(context.Background())
	printResult(os.Stdout, res, err, jsonOutput)

	switch res.Reason {
	case window.Found:
		return exitFound
	case window.EnumerationUnavailable:
		return exitUnavailable
	}
	return exitNoWindow
}

func watchForeground() {
	cfg := loadConfig()
	if cfg.Log.File != "" {
		if err := logger.SetOutputFile(cfg.Log.File); err != nil {
			logger.Error("Failed to open log file", err)
		}
		defer logger.CloseLogFile()
	}

	p, err := detector.New()
	if err != nil {
		logger.Fatal("Failed to initialize window system integration", err)
	}
	defer p.Close()

	db, repo := openStore(cfg)
	defer db.Close()

	svc := watcher.NewService(cfg, repo, newLocator(cfg, p, false), p.Name())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := svc.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Watcher error", err)
	}
}

func openStore(cfg *config.Config) (*database.DB, *database.Repository) {
	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		logger.Fatal("Failed to initialize database", err)
	}
	return db, database.NewRepository(db)
}

func startDaemon(withWeb bool) {
	cfg := loadConfig()

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		logger.Fatal("Failed to check daemon status", err)
	}
	if running {
		logger.Fatal("Daemon is already running", errors.Errorf("pid %d", pid))
	}

	if os.Getenv(daemonChildEnv) != "1" {
		daemonize(cfg, withWeb)
		return
	}

	runDaemon(cfg, dm, withWeb)
}

func daemonLogPath(cfg *config.Config) string {
	if cfg.Log.File != "" {
		return cfg.Log.File
	}
	return fmt.Sprintf("/tmp/activewin-%d.log", os.Getuid())
}

func runDaemon(cfg *config.Config, dm *daemon.Daemon, withWeb bool) {
	if err := logger.SetOutputFile(daemonLogPath(cfg)); err == nil {
		defer logger.CloseLogFile()
	} else {
		logger.Warn("Daemon log file unavailable, logging to stderr")
	}

	db, repo := openStore(cfg)
	defer db.Close()

	if pruned, err := repo.DeleteFailuresBefore(time.Now().Add(-failureRetention)); err != nil {
		logger.Error("Failed to prune old failures", err)
	} else if pruned > 0 {
		logger.Infof("Pruned %d failures older than %v", pruned, failureRetention)
	}

	p, err := detector.New()
	if err != nil {
		logger.Fatal("Failed to initialize window system integration", err)
	}
	defer p.Close()
	logger.Infof("Window system integration initialized: %s", p.Name())

	if err := dm.WritePID(); err != nil {
		logger.Fatal("Failed to write PID file", err)
	}
	defer dm.RemovePID()

	// Verdicts let the web API answer ?explain=1 from the latest sample.
	svc := watcher.NewService(cfg, repo, newLocator(cfg, p, withWeb), p.Name())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var webServer *web.Server
	if withWeb {
		webServer = web.NewServer(cfg, svc, repo, p.Name())
		go func() {
			if err := webServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("Web server error", err)
			}
		}()
		logger.Infof("Web API available at: http://%s", webServer.GetAddress())
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := svc.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Watcher error", err)
		}
	}()

	logger.Info("Starting activewin daemon...")
	logger.Infof("Configuration:\n%s", cfg.String())

	select {
	case <-sigChan:
		logger.Info("Received shutdown signal")
	case <-done:
	}

	cancel()
	svc.Stop()
	<-done

	if webServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := webServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down web server", err)
		}
	}

	logger.Info("Daemon stopped successfully")
}

func daemonize(cfg *config.Config, withWeb bool) {
	env := append(os.Environ(), daemonChildEnv+"=1")

	procAttr := &os.ProcAttr{
		Env:   env,
		Files: []*os.File{nil, nil, nil},
		Sys: &syscall.SysProcAttr{
			Setsid: true,
		},
	}

	executable, err := os.Executable()
	if err != nil {
		executable = os.Args[0]
	}

	process, err := os.StartProcess(executable, os.Args, procAttr)
	if err != nil {
		logger.Fatal("Failed to start daemon process", err)
	}

	color.Green("Daemon started successfully (PID: %d)", process.Pid)
	if withWeb {
		fmt.Printf("Web API available at: http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	}
	fmt.Printf("Logs: %s\n", daemonLogPath(cfg))
}

func stopDaemon() {
	cfg := loadConfig()
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		logger.Fatal("Failed to check daemon status", err)
	}

	if !running {
		color.Yellow("Daemon is not running")
		return
	}

	fmt.Printf("Stopping daemon (PID: %d)...\n", pid)
	if err := dm.Stop(); err != nil {
		logger.Fatal("Failed to stop daemon", err)
	}

	color.Green("Daemon stopped successfully")
}

func showStatus() {
	cfg := loadConfig()
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		logger.Fatal("Failed to check daemon status", err)
	}

	if !running {
		fmt.Printf("Status: %s\n", color.YellowString("Not running"))
	} else {
		fmt.Printf("Status: %s (PID: %d)\n", color.GreenString("Running"), pid)
		fmt.Printf("PID File: %s\n", dm.PIDFile())
		fmt.Printf("Poll Interval: %v\n", cfg.Watch.PollInterval)
	}

	if db, err := database.Connect(cfg.Database.Path); err == nil {
		fmt.Printf("Database: %s\n", db.Path())
		if err := db.Initialize(); err == nil {
			count, err := database.NewRepository(db).CountFailuresSince(time.Now().Add(-24 * time.Hour))
			if err == nil {
				fmt.Printf("Failures (24h): %d\n", count)
			}
		}
		db.Close()
	}

	p, err := detector.New()
	if err != nil {
		fmt.Printf("\nCould not query the window system: %v\n", err)
		return
	}
	defer p.Close()

	fmt.Printf("\nPlatform: %s\n", p.Name())
	res, err := newLocator(cfg, p, false).Locate(context.Background())
	printResult(os.Stdout, res, err, false)
}

func showFailures(args []string) {
	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			fmt.Fprintf(os.Stderr, "Invalid count: %s\n", args[0])
			os.Exit(1)
		}
		limit = n
	}

	cfg := loadConfig()
	db, repo := openStore(cfg)
	defer db.Close()

	failures, err := repo.RecentFailures(limit)
	if err != nil {
		logger.Fatal("Failed to list failures", err)
	}

	printFailures(os.Stdout, failures, time.Now())
}

func clearDatabase(args []string) {
	cfg := loadConfig()

	confirmed := len(args) > 0 && (args[0] == "--yes" || args[0] == "-y")
	if !confirmed {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Refusing to clear without a terminal; pass --yes to confirm")
			os.Exit(1)
		}
		fmt.Print("This will delete all stored failures. Are you sure? (yes/no): ")
		var response string
		fmt.Scanln(&response)
		if response != "yes" && response != "y" {
			fmt.Println("Operation cancelled")
			return
		}
	}

	db, repo := openStore(cfg)
	defer db.Close()

	if err := repo.Clear(); err != nil {
		logger.Fatal("Failed to clear database", err)
	}

	color.Green("Database cleared successfully")
}

func encodeJSON(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": %q}", err.Error())
	}
	return string(data)
}

func formatAge(t, now time.Time) string {
	return utils.FormatSince(t, now) + " ago"
}
