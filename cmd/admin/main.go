// Command admin is the back-office CLI. It drives the lead, quote and
// dashboard services either against the REST API (default) or directly
// against the database.
//
//	admin [-backend api|db] login -email E -password P
//	admin leads create -name N -email E -phone P -event ID -package ID -travelers N -date YYYY-MM-DD [-notes T]
//	admin leads status -id ID -to STATUS [-notes T]
//	admin leads history -id ID
//	admin quotes generate -lead ID [-valid-until YYYY-MM-DD] [-notes T]
//	admin quotes expired
//	admin quotes pdf -id ID [-out FILE]
//	admin dashboard
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/sports-travel-platform/internal/apiclient"
	"github.com/wolfman30/sports-travel-platform/internal/app/bootstrap"
	"github.com/wolfman30/sports-travel-platform/internal/catalog"
	appconfig "github.com/wolfman30/sports-travel-platform/internal/config"
	"github.com/wolfman30/sports-travel-platform/internal/dashboard"
	"github.com/wolfman30/sports-travel-platform/internal/leads"
	"github.com/wolfman30/sports-travel-platform/internal/observability/metrics"
	"github.com/wolfman30/sports-travel-platform/internal/quotes"
	"github.com/wolfman30/sports-travel-platform/pkg/logging"
)

const dateLayout = "2006-01-02"

var errUsage = errors.New("usage: admin [-backend api|db] <login|leads|quotes|dashboard> ...")

func main() {
	cfg := appconfig.Load()
	logger := logging.NewWithWriter(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "admin:", err)
		os.Exit(1)
	}
}

// app holds the services one invocation needs. Fields are built lazily so
// that commands only touch the backends they use.
type app struct {
	cfg     *appconfig.Config
	logger  *logging.Logger
	out     io.Writer
	backend string
	metrics *metrics.CoreMetrics
	now     func() time.Time

	client *apiclient.Client
	db     *sql.DB
	pool   *pgxpool.Pool

	catalog *catalog.Service
	leads   *leads.Service
	quotes  *quotes.Service
}

func run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	backend := fs.String("backend", "api", "data backend: api or db")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *backend != "api" && *backend != "db" {
		return fmt.Errorf("unknown backend %q", *backend)
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return errUsage
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		out:     out,
		backend: *backend,
		metrics: metrics.NewCoreMetrics(prometheus.NewRegistry()),
		now:     func() time.Time { return time.Now().UTC() },
	}
	defer a.close()

	switch rest[0] {
	case "login":
		return a.login(ctx, rest[1:])
	case "leads":
		return a.leadsCommand(ctx, rest[1:])
	case "quotes":
		return a.quotesCommand(ctx, rest[1:])
	case "dashboard":
		return a.dashboard(ctx)
	default:
		return fmt.Errorf("unknown command %q: %w", rest[0], errUsage)
	}
}

func (a *app) close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *app) apiClient() (*apiclient.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	c, err := bootstrap.BuildAPIClient(a.cfg, a.logger, a.metrics)
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

func (a *app) sqlDB(ctx context.Context) (*sql.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := bootstrap.OpenDatabase(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, errors.New("DATABASE_URL is required for the db backend")
	}
	a.db = db
	return db, nil
}

func (a *app) pgxPool(ctx context.Context) (*pgxpool.Pool, error) {
	if a.pool != nil {
		return a.pool, nil
	}
	pool, err := bootstrap.OpenPool(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, errors.New("DATABASE_URL is required for the db backend")
	}
	a.pool = pool
	return pool, nil
}

func (a *app) catalogService(ctx context.Context) (*catalog.Service, error) {
	if a.catalog != nil {
		return a.catalog, nil
	}
	var (
		db     *sql.DB
		client *apiclient.Client
		err    error
	)
	if a.backend == "db" {
		if db, err = a.sqlDB(ctx); err != nil {
			return nil, err
		}
	} else if client, err = a.apiClient(); err != nil {
		return nil, err
	}
	redisClient := bootstrap.BuildRedisClient(ctx, a.cfg, a.logger, true)
	repo := bootstrap.BuildCatalogRepository(db, client, redisClient, a.cfg.CatalogCacheTTL, a.logger)
	a.catalog = catalog.NewService(repo, a.logger)
	return a.catalog, nil
}

func (a *app) leadService(ctx context.Context, opts ...leads.ServiceOption) (*leads.Service, error) {
	if a.leads != nil && len(opts) == 0 {
		return a.leads, nil
	}
	cat, err := a.catalogService(ctx)
	if err != nil {
		return nil, err
	}
	var repo leads.Repository
	if a.backend == "db" {
		pool, err := a.pgxPool(ctx)
		if err != nil {
			return nil, err
		}
		repo = leads.NewPostgresRepository(pool)
	} else {
		client, err := a.apiClient()
		if err != nil {
			return nil, err
		}
		repo = apiclient.NewLeadRepository(client)
	}
	opts = append([]leads.ServiceOption{leads.WithMetrics(a.metrics), leads.WithClock(a.now)}, opts...)
	a.leads = leads.NewService(repo, cat, a.logger, opts...)
	return a.leads, nil
}

func (a *app) quoteService(ctx context.Context) (*quotes.Service, error) {
	if a.quotes != nil {
		return a.quotes, nil
	}
	leadSvc, err := a.leadService(ctx)
	if err != nil {
		return nil, err
	}
	cat, err := a.catalogService(ctx)
	if err != nil {
		return nil, err
	}
	var repo quotes.Repository
	if a.backend == "db" {
		pool, err := a.pgxPool(ctx)
		if err != nil {
			return nil, err
		}
		repo = quotes.NewPostgresRepository(pool)
	} else {
		client, err := a.apiClient()
		if err != nil {
			return nil, err
		}
		repo = apiclient.NewQuoteRepository(client)
	}
	a.quotes = quotes.NewService(repo, leadSvc, cat, a.logger,
		quotes.WithMetrics(a.metrics),
		quotes.WithClock(a.now),
		quotes.WithValidityDays(a.cfg.QuoteValidityDays),
	)
	return a.quotes, nil
}

func (a *app) dashboardSource(ctx context.Context) (dashboard.Source, error) {
	if a.backend == "db" || strings.TrimSpace(a.cfg.DatabaseURL) != "" {
		db, err := a.sqlDB(ctx)
		if err != nil {
			return nil, err
		}
		return dashboard.NewSQLRepository(db, a.logger, a.now), nil
	}
	client, err := a.apiClient()
	if err != nil {
		return nil, err
	}
	return apiclient.NewDashboardSource(client), nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD: %w", field, err)
	}
	return t, nil
}
