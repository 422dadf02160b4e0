package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/abrezinsky/castawayleague/internal/app"
	"github.com/abrezinsky/castawayleague/internal/auth"
	"github.com/abrezinsky/castawayleague/internal/config"
	"github.com/abrezinsky/castawayleague/internal/logger"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	orange = "\033[38;5;208m"
	bold   = "\033[1m"
)

var (
	version = "dev"
)

// printBanner writes the startup logo, in color when w is a terminal
func printBanner(w io.Writer, color bool) {
	logo := []string{
		`   ___         _                        `,
		`  / __|__ _ __| |_ __ ___ __ ____ _ _  _ `,
		` | (__/ _' (_-<  _/ _' \ V  V / _' | || |`,
		`  \___\__,_/__/\__\__,_|\_/\_/\__,_|\_, |`,
		`            League                  |__/ `,
	}
	for _, line := range logo {
		if color {
			fmt.Fprintf(w, "  %s%s%s%s\n", bold, orange, line, reset)
		} else {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	fmt.Fprintln(w)
}

// options are the command-line flags; only flags the user set override the environment
type options struct {
	showVersion bool
	noBanner    bool
}

// parseFlags applies explicitly set flags on top of cfg
func parseFlags(cfg *config.Config, args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("castawayleague", flag.ContinueOnError)
	fs.SetOutput(stderr)

	port := fs.Int("port", cfg.Port, "HTTP server port")
	dbPath := fs.String("db", cfg.DBPath, "SQLite database path")
	adminPw := fs.String("adminpw", cfg.AdminPassword, "Commissioner password (auto-generated if not set)")
	logLevel := fs.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	workers := fs.Int("workers", cfg.RecalcWorkers, "Teams recalculated in parallel")
	baseURL := fs.String("baseurl", cfg.BaseURL, "Public base URL used in standings QR codes")
	httpLog := fs.Bool("httplog", cfg.HTTPLogging, "Log every HTTP request")
	opts := &options{}
	fs.BoolVar(&opts.noBanner, "nobanner", false, "Skip the startup logo")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Castaway League - fantasy Survivor points ledger

Usage:
  castawayleague [options]

Options:
  -port int        HTTP server port (default 8081, env CASTAWAY_PORT)
  -db string       SQLite database path (default "castaway.db", env CASTAWAY_DB_PATH)
  -adminpw str     Commissioner password (env CASTAWAY_ADMIN_PASSWORD, auto-generated if not set)
  -loglevel str    Log level: debug, info, warn, error (default "info", env CASTAWAY_LOG_LEVEL)
  -workers int     Teams recalculated in parallel (default 4, env CASTAWAY_RECALC_WORKERS)
  -baseurl str     Public base URL for QR codes (env CASTAWAY_BASE_URL, detected if not set)
  -httplog         Log every HTTP request (env CASTAWAY_HTTP_LOGGING)
  -nobanner        Skip the startup logo
  -version         Show version and exit
  -help            Show this help message

Examples:
  castawayleague                              # Run on port 8081 with castaway.db
  castawayleague -port 8080                   # Run on port 8080
  castawayleague -db /data/league.db          # Use custom database path
  castawayleague -adminpw idol-merge-jury     # Use specific commissioner password
  castawayleague -workers 8 -httplog          # Bigger pool, request logging

`)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "db":
			cfg.DBPath = *dbPath
		case "adminpw":
			cfg.AdminPassword = *adminPw
		case "loglevel":
			cfg.LogLevel = *logLevel
		case "workers":
			cfg.RecalcWorkers = *workers
		case "baseurl":
			cfg.BaseURL = *baseURL
		case "httplog":
			cfg.HTTPLogging = *httpLog
		}
	})
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.RecalcWorkers < 1 {
		cfg.RecalcWorkers = 1
	}
	return opts, nil
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	opts, err := parseFlags(cfg, args, os.Stderr)
	if err != nil {
		return err
	}

	if opts.showVersion {
		fmt.Printf("castawayleague %s\n", version)
		return nil
	}
	if !opts.noBanner {
		printBanner(os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))
	}

	// Setup commissioner authentication
	password := cfg.AdminPassword
	if password == "" {
		password = auth.GeneratePassword()
	}
	adminAuth := auth.New(password)

	appLog := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))
	if cfg.HTTPLogging {
		appLog.EnableHTTPLogging()
	}

	a, err := app.New(appLog, cfg, adminAuth)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer a.Close()

	appLog.Info("Commissioner password", "password", password)
	appLog.Info("Recalculation pool", "workers", cfg.RecalcWorkers)

	return a.Run(ctx)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "%s%s%s\n", yellow, err, reset)
		os.Exit(1)
	}
}
