package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"golang.org/x/text/language"
	_ "modernc.org/sqlite"

	"github.com/rl1809/storefront/internal/adapter/api"
	"github.com/rl1809/storefront/internal/adapter/cli"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/port"
	"github.com/rl1809/storefront/internal/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return cli.ExitUsage
	}

	// Diagnostics go to stderr only when asked for
	if !cfg.Debug {
		log.SetOutput(io.Discard)
	}

	shutdownTracing, err := telemetry.Setup(ctx, "storefront", cfg.OTelEndpoint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup tracing: %v\n", err)
		return cli.ExitError
	}
	defer func() {
		if err := shutdownTracing(context.WithoutCancel(ctx)); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	// Initialize state backend
	store, closeStore, err := openStateStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open state backend: %v\n", err)
		return cli.ExitError
	}
	defer closeStore()
	snapshots := storage.NewSnapshots(store)

	// Initialize API client and session
	client := api.NewClient(cfg.APIURL, api.WithTimeout(cfg.RequestTimeout))
	sessions, err := service.NewSessionHolder(ctx, snapshots, client)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return cli.ExitError
	}
	client.UseSession(sessions)

	cart, err := service.NewCartStore(ctx, snapshots)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return cli.ExitError
	}

	app := cli.New(cli.Services{
		Sessions: sessions,
		Cart:     cart,
		Orders:   service.NewOrderService(cart, sessions, client),
		Catalog:  service.NewCatalogService(client, sessions),
		Accounts: service.NewAccountService(client, sessions),
	}, cli.Options{
		Out:   os.Stdout,
		In:    os.Stdin,
		Lang:  language.AmericanEnglish,
		Color: os.Getenv("NO_COLOR") == "",
	})
	defer app.Close()

	return app.Run(ctx, os.Args[1:])
}

func openStateStore(ctx context.Context, cfg config.Client) (port.StateStore, func(), error) {
	switch cfg.StateBackend {
	case config.BackendMemory:
		return storage.NewMemoryStore(), func() {}, nil

	case config.BackendBolt:
		store, err := storage.OpenBoltStore(cfg.StatePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return storage.NewRedisAdapter(rdb, cfg.Namespace), func() { rdb.Close() }, nil

	case config.BackendMySQL, config.BackendSQLite:
		driver, dsn := "mysql", cfg.MySQLDSN
		if cfg.StateBackend == config.BackendSQLite {
			driver, dsn = "sqlite", cfg.StatePath
		}
		db, err := sql.Open(driver, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", driver, err)
		}
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ping %s: %w", driver, err)
		}
		adapter := storage.NewSQLAdapter(db)
		if err := adapter.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return adapter, func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
	}
}
