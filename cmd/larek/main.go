// Package main is the entry point for the larek storefront client.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/larek/internal/api"
	"github.com/dshills/larek/internal/app"
	"github.com/dshills/larek/internal/config"
	"github.com/dshills/larek/internal/logging"
	"github.com/dshills/larek/internal/script"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath  string
	logLevel    string
	scriptPath  string
	catalogFile string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: config: %v\n", err)
		return 1
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.catalogFile != "" {
		cfg.Catalog.File = opts.catalogFile
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: config: %v\n", err)
		return 1
	}

	log := logging.New(cfg.LoggerConfig())
	logging.SetDefault(log)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var console *app.Console
	out := os.Stdout
	if opts.scriptPath == "" {
		console, err = app.OpenConsole(os.Stdin, out, "larek> ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: console: %v\n", err)
			return 1
		}
		defer console.Close()
	}

	client := api.New(cfg.APIConfig(), api.WithLogger(log))
	appOpts := app.Options{
		Out:     out,
		Catalog: catalogFor(cfg, client, log),
		Orders:  client,
		Logger:  log,
	}
	if console != nil {
		appOpts.Out = console.Out
	}

	application, err := app.New(appOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	// The runner must exist before Run so it sees the first catalog load.
	var runner *script.Runner
	if opts.scriptPath != "" {
		runner, err = script.New(application, script.WithLogger(log))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: script: %v\n", err)
			return 1
		}
		defer runner.Close()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return application.Run(gctx)
	})
	g.Go(func() error {
		defer application.Shutdown()
		if runner != nil {
			return runner.RunFile(gctx, opts.scriptPath)
		}
		return interact(gctx, application, console)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, app.ErrQuit) && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// interact returns when the session ends or ctx is done, whichever is
// first. A console blocked on input is abandoned.
func interact(ctx context.Context, application *app.Application, console *app.Console) error {
	done := make(chan error, 1)
	go func() { done <- application.Interact(ctx, console) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return nil
	}
}

// staticCatalog hides the file watcher when reloading is off.
type staticCatalog struct {
	api.Catalog
}

func catalogFor(cfg *config.Config, client *api.Client, log *logging.Logger) api.Catalog {
	if cfg.Catalog.File == "" {
		return client
	}
	src := api.NewFileSource(cfg.Catalog.File, cfg.API.CDNURL, log)
	src.SetReloadDelay(cfg.Catalog.ReloadDelay)
	if !cfg.Catalog.Watch {
		return staticCatalog{src}
	}
	return src
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file (.toml or .yaml)")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.scriptPath, "script", "", "Run a Lua script instead of the console")
	flag.StringVar(&opts.catalogFile, "catalog", "", "Read products from a JSON file instead of the API")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "larek - storefront client\n\n")
		fmt.Fprintf(os.Stderr, "Usage: larek [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  larek                         Browse the hosted shop\n")
		fmt.Fprintf(os.Stderr, "  larek -c larek.toml           Use a config file\n")
		fmt.Fprintf(os.Stderr, "  larek -catalog products.json  Browse an offline catalog\n")
		fmt.Fprintf(os.Stderr, "  larek -script checkout.lua    Run a scripted session\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("larek %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	return opts
}
