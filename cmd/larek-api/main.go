// Package main runs the larek development backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/larek/internal/api"
	"github.com/dshills/larek/internal/apiserver"
	"github.com/dshills/larek/internal/config"
	"github.com/dshills/larek/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  string
		addr        string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "Path to configuration file (.toml or .yaml)")
	flag.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&addr, "addr", "", "Listen address, overrides server.addr")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("larek-api %s (%s)\n", version, commit)
		return 0
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: config: %v\n", err)
		return 1
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	log := logging.New(cfg.LoggerConfig())
	logging.SetDefault(log)
	defer log.Sync()

	store, err := apiserver.OpenStore(cfg.Server.Database)
	if err != nil {
		log.Error("%v", err)
		return 1
	}
	defer store.Close()

	catalog := api.NewFileSource(cfg.Server.Catalog, "", log)
	srv := apiserver.New(apiserver.Config{
		Addr:     cfg.Server.Addr,
		BasePath: cfg.Server.BasePath,
	}, catalog, store, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server: %v", err)
		return 1
	}
	return 0
}
