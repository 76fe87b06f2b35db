package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/wouldreads/pkg/articles"
	"github.com/umputun/wouldreads/pkg/config"
	"github.com/umputun/wouldreads/pkg/domain"
	"github.com/umputun/wouldreads/pkg/feed"
	"github.com/umputun/wouldreads/pkg/repository"
	"github.com/umputun/wouldreads/pkg/scheduler"
	"github.com/umputun/wouldreads/pkg/service"
	"github.com/umputun/wouldreads/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" description:"configuration file, built-in defaults if not set"`
	Listen string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides config"`
	DB     string `long:"db" env:"DB" description:"database DSN, overrides config"`
	Once   bool   `long:"once" description:"refresh once, print articles and exit"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug, opts.NoColor)
	lgr.Printf("[INFO] starting wouldreads version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		lgr.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts, os.Stdout)
	cancel()

	if err != nil {
		lgr.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	lgr.Print("[INFO] shutdown complete")
}

// run wires storage, fetcher, parser and aggregator, then serves HTTP or refreshes once
func run(ctx context.Context, opts Opts, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := repository.NewSQLiteStore(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			lgr.Printf("[WARN] failed to close database: %v", err)
		}
	}()

	fetcher := feed.NewHTTPFetcher(feed.FetcherParams{
		Timeout:     cfg.Fetch.Timeout,
		RelayURL:    cfg.RelayURL(),
		UserAgent:   cfg.Fetch.UserAgent,
		MaxFailures: cfg.Fetch.Breaker.MaxFailures,
		OpenTimeout: cfg.Fetch.Breaker.OpenTimeout,
	})

	aggregator := service.NewAggregator(service.Params{
		Sources:      cfg.Sources,
		Fetcher:      fetcher,
		Parser:       feed.NewParser(cfg.Aggregate.DescriptionLimit),
		Store:        store,
		FetchTimeout: cfg.Fetch.Timeout,
		MaxWorkers:   cfg.Fetch.MaxWorkers,
		MaxArticles:  cfg.Aggregate.MaxArticles,
	})
	lgr.Printf("[INFO] %d sources configured, relay %q", len(cfg.Sources), cfg.RelayURL())

	if opts.Once {
		list, err := aggregator.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}
		printArticles(out, list, time.Now())
		return nil
	}

	if _, err := aggregator.LoadIfEmpty(ctx); err != nil {
		// keep serving, the next refresh may succeed
		lgr.Printf("[WARN] initial load failed: %v", err)
	}

	if cfg.Schedule.RefreshInterval > 0 {
		sched := scheduler.NewScheduler(scheduler.Params{Refresher: aggregator, Interval: cfg.Schedule.RefreshInterval})
		sched.Start(ctx)
		defer sched.Stop()
	}

	srv := server.New(cfg, aggregator, revision, opts.Debug)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func loadConfig(opts Opts) (*config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		var err error
		if cfg, err = config.Load(opts.Config); err != nil {
			return nil, err
		}
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}
	if opts.DB != "" {
		cfg.Database.DSN = opts.DB
	}
	return cfg, nil
}

// printArticles writes the ranked list, one article per block
func printArticles(out io.Writer, list []domain.Article, now time.Time) {
	for i, a := range list {
		mark := " "
		if a.IsRead {
			mark = "*"
		}
		fmt.Fprintf(out, "%2d.%s [%s] %s (%s)\n", i+1, mark, a.Source, a.Title, articles.TimeAgo(a.PublishedAt, now))
		if a.Link != "" {
			fmt.Fprintf(out, "    %s\n", a.Link)
		}
	}
	stats := articles.Count(list)
	fmt.Fprintf(out, "%d articles, %d read\n", stats.Total, stats.Read)
}

func setupLog(dbg, noColor bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.CallerFunc}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
