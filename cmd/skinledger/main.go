package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/erazemk/skinledger/internal/api"
	"github.com/erazemk/skinledger/internal/cache"
	"github.com/erazemk/skinledger/internal/config"
	"github.com/erazemk/skinledger/internal/db"
	"github.com/erazemk/skinledger/internal/logging"
	"github.com/erazemk/skinledger/internal/service"
	"github.com/erazemk/skinledger/internal/store"
)

const usage = `Usage: skinledger <serve|seed> [flags]

Commands:
  serve   run the HTTP API
  seed    create the demo accounts and sample items

Flags:
  -d, -db <path>          SQLite database path (default: $DB_PATH or skinledger.sqlite3)
  -a, -addr <host:port>   listen address, serve only (default: $SERVER_HOST:$SERVER_PORT)
  -e, -env <path>         env file to load (default: .env if present)
  -h, -help               show this help and exit
`

// tokenPurgeInterval is how often expired token revocations are dropped.
const tokenPurgeInterval = time.Hour

type options struct {
	dbPath  string
	addr    string
	envFile string
}

func parseFlags(name string, args []string) (options, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stdout, usage) }

	var o options
	fs.StringVar(&o.dbPath, "db", "", "")
	fs.StringVar(&o.dbPath, "d", "", "")
	fs.StringVar(&o.addr, "addr", "", "")
	fs.StringVar(&o.addr, "a", "", "")
	fs.StringVar(&o.envFile, "env", "", "")
	fs.StringVar(&o.envFile, "e", "", "")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	return o, nil
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig(o options) (*config.Config, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.Database.Path = o.dbPath
	}
	if o.addr != "" {
		cfg.Server.Addr = o.addr
	}
	return cfg, nil
}

func main() {
	// Prices travel as JSON numbers, matching what the client sends.
	decimal.MarshalJSONWithoutQuotes = true

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	var run func(*config.Config) error
	switch os.Args[1] {
	case "serve":
		run = serve
	case "seed":
		run = seed
	case "-h", "-help", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n%s", os.Args[1], usage)
		os.Exit(1)
	}

	o, err := parseFlags(os.Args[1], os.Args[2:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := loadConfig(o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := logging.Setup(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg); err != nil {
		slog.Error("command failed", "command", os.Args[1], "error", err)
		closeLog()
		os.Exit(1)
	}
}

// openDatabase opens the SQLite file and brings its schema up to date.
func openDatabase(path string) (*sql.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	slog.Info("database ready", "path", path)
	return database, nil
}

// newStatsCache connects to Redis when configured. An unreachable server
// disables caching rather than failing startup.
func newStatsCache(ctx context.Context, cfg config.CacheConfig) (service.StatsCache, func()) {
	if !cfg.CacheEnabled() {
		return cache.Nop{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		slog.Warn("redis unavailable, stats cache disabled", "addr", cfg.RedisAddr, "error", err)
		client.Close()
		return cache.Nop{}, func() {}
	}

	slog.Info("stats cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.TTL)
	return cache.NewRedisStats(client, cfg.TTL), func() { client.Close() }
}

func serve(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := openDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		// Persisted so tokens survive restarts.
		if jwtSecret, err = store.GetJWTSecret(ctx, database); err != nil {
			return fmt.Errorf("loading JWT secret: %w", err)
		}
	}

	statsCache, closeCache := newStatsCache(ctx, cfg.Cache)
	defer closeCache()

	router := api.NewRouter(api.Config{
		DB:             database,
		Items:          service.NewItemService(database, statsCache),
		Users:          service.NewUserService(database, cfg.Auth.BcryptCost),
		JWTSecret:      jwtSecret,
		TokenTTL:       cfg.Auth.TokenTTL,
		SecureCookies:  cfg.App.IsProduction(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go purgeRevokedTokens(ctx, database)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server started", "addr", server.Addr, "env", cfg.App.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

func purgeRevokedTokens(ctx context.Context, database *sql.DB) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.PurgeExpiredTokens(ctx, database, now)
			if err != nil {
				slog.Warn("purging revoked tokens failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("purged revoked tokens", "count", n)
			}
		}
	}
}
