// customerd is the standalone customer data service: the HTTP lookup
// contract the getCustomerData tool calls, backed by the SQLite
// document store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dealbrief/dealbrief/internal/customerdata"
	"github.com/dealbrief/dealbrief/internal/logging"
	"github.com/dealbrief/dealbrief/internal/version"
)

func main() {
	var (
		dbPath      = flag.String("db", "customers.db", "customer store database path")
		listen      = flag.String("listen", "127.0.0.1:8787", "listen address")
		logLevel    = flag.String("log-level", "info", "log level")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	log := logging.New(nil, *logLevel)

	store, err := customerdata.OpenStore(*dbPath, log)
	if err != nil {
		log.Fatal().Err(err).Str("db", *dbPath).Msg("opening customer store")
	}
	defer store.Close()

	srv := customerdata.NewServer(store, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", *listen).Str("db", *dbPath).Msg("customer data service starting")
	if err := srv.Start(*listen); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
