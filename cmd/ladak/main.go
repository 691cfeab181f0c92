package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/erazemk/ladak/internal/api"
	"github.com/erazemk/ladak/internal/auth"
	"github.com/erazemk/ladak/internal/config"
	"github.com/erazemk/ladak/internal/export"
	"github.com/erazemk/ladak/internal/logger"
	"github.com/erazemk/ladak/internal/metrics"
	"github.com/erazemk/ladak/internal/store"
	"github.com/erazemk/ladak/internal/web"
)

const usage = `Usage: ladak [flags] [command]

Commands:
  serve              run the HTTP server (default)
  balances           print the balance table
  export             write the CSV export to stdout
  hash-pin <pin>     print a bcrypt hash for auth.users[].pin_hash

Flags:
  -c, -config <path>  config file (default: ladak.yaml or config/ladak.yaml if present)
  -charset <name>     export charset, overrides export.charset
  -h, -help           show this help and exit
`

func main() {
	fs := flag.NewFlagSet("ladak", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "")
	fs.StringVar(&configPath, "c", "", "")

	var charset string
	fs.StringVar(&charset, "charset", "", "")

	fs.Usage = func() { fmt.Fprint(os.Stdout, usage) }

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	cmd, args := "serve", fs.Args()
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	if cmd == "hash-pin" {
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "usage: ladak hash-pin <pin>")
			os.Exit(1)
		}
		hash, err := auth.HashPIN(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := loadConfig(configPath, charset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.Env, Level: cfg.Log.Level})

	switch cmd {
	case "serve":
		err = serve(cfg, log)
	case "balances":
		err = withStore(cfg, log, func(ctx context.Context, snap *store.Snapshot) error {
			return printBalances(os.Stdout, snap)
		})
	case "export":
		err = withStore(cfg, log, func(ctx context.Context, snap *store.Snapshot) error {
			return export.Write(os.Stdout, cfg.Export.Charset, snap.Partners, snap.CrateTypes, snap.Movements)
		})
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		fs.Usage()
		os.Exit(1)
	}
	if err != nil {
		log.Error().Err(err).Str("command", cmd).Msg("command failed")
		os.Exit(1)
	}
}

// loadConfig reads the configuration and applies the -charset override
// before validating, so every command rejects an unsupported charset.
func loadConfig(path, charset string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if charset == "" {
		return cfg, nil
	}
	cfg.Export.Charset = charset
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withStore loads a snapshot of the configured store and hands it to fn.
func withStore(cfg *config.Config, log zerolog.Logger, fn func(context.Context, *store.Snapshot) error) error {
	ctx := context.Background()
	s, err := openStore(ctx, cfg.Store, log)
	if err != nil {
		return err
	}
	defer s.Close()

	snap, err := store.LoadAll(ctx, s)
	if err != nil {
		return err
	}
	return fn(ctx, snap)
}

// printBalances writes the balance table: a column per crate type, a row per
// partner, largest debtors first.
func printBalances(w io.Writer, snap *store.Snapshot) error {
	view := api.ComputeBalancesView(snap)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "Partner\t")
	for _, ct := range view.CrateTypes {
		fmt.Fprintf(tw, "%s\t", ct.Label)
	}
	fmt.Fprintln(tw, "Total\t")
	for _, row := range view.Rows {
		fmt.Fprintf(tw, "%s\t", row.PartnerName)
		for _, ct := range view.CrateTypes {
			fmt.Fprintf(tw, "%d\t", row.Sums[ct.ID])
		}
		fmt.Fprintf(tw, "%d\t\n", row.Total)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nOutstanding: %d\n", view.Outstanding)
	return err
}

func serve(cfg *config.Config, log zerolog.Logger) error {
	ctx := context.Background()

	users, err := auth.NewDirectory(cfg.Auth.Users)
	if err != nil {
		return fmt.Errorf("auth.users: %w", err)
	}
	if users.Len() == 0 {
		log.Warn().Msg("no users configured; nobody can sign in")
	}

	s, err := openStore(ctx, cfg.Store, log)
	switch {
	case errors.Is(err, store.ErrConfigMissing):
		log.Warn().Err(err).Msg("store not configured, serving setup page")
		s = nil
	case err != nil:
		return err
	default:
		defer s.Close()
	}

	secret, err := jwtSecret(ctx, cfg.Auth, s)
	if err != nil {
		return err
	}

	m := metrics.New()

	apiRouter := api.NewRouter(api.Config{
		Store:         s,
		Users:         users,
		JWTSecret:     secret,
		Metrics:       m,
		Logger:        log,
		ExportCharset: cfg.Export.Charset,
	})
	webRouter, err := web.NewRouter(web.Config{
		Store:         s,
		Users:         users,
		JWTSecret:     secret,
		Metrics:       m,
		Logger:        log,
		ExportCharset: cfg.Export.Charset,
	})
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("GET /metrics", m.Handler())
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.LoggingMiddleware(log, m)(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
		}
	}()

	log.Info().Str("addr", cfg.HTTP.Addr).Int("users", users.Len()).Bool("setup_mode", s == nil).Msg("server started")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}
