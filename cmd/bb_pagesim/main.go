package main

import (
	"log"
	"os"

	"github.com/buildbarn/bb-pagesim/pkg/api"
	"github.com/buildbarn/bb-pagesim/pkg/configuration"
	"github.com/buildbarn/bb-pagesim/pkg/global"
	bb_http "github.com/buildbarn/bb-pagesim/pkg/http"
	"github.com/buildbarn/bb-pagesim/pkg/http/server"
	"github.com/buildbarn/bb-pagesim/pkg/util"
	"github.com/google/uuid"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatal("Usage: bb_pagesim bb_pagesim.jsonnet")
	}
	var config configuration.ApplicationConfiguration
	if err := util.UnmarshalConfigurationFromFile(os.Args[1], &config); err != nil {
		log.Fatalf("Failed to read configuration from %s: %s", os.Args[1], err)
	}
	diagnosticsServer, tracerProvider, err := global.ApplyConfiguration(config.Global)
	if err != nil {
		log.Fatal("Failed to apply global configuration options: ", err)
	}

	parser, err := configuration.NewParserFromConfiguration(config.Parser)
	if err != nil {
		log.Fatal("Failed to create reference sequence parser: ", err)
	}
	runner, comparer, err := configuration.NewRunnerAndComparerFromConfiguration(&config, tracerProvider)
	if err != nil {
		log.Fatal("Failed to create simulator: ", err)
	}

	handler := api.NewHandler(api.HandlerOptions{
		Parser:         parser,
		Runner:         runner,
		Comparer:       comparer,
		MaximumFrames:  config.MaximumFrames,
		AllowedOrigins: config.AllowedOrigins,
		UUIDGenerator:  uuid.NewRandom,
		ErrorLogger:    util.DefaultErrorLogger,
	})
	handler = otelhttp.NewHandler(
		server.NewMetricsHandler(handler, "PageSimulator"),
		"PageSimulator",
		otelhttp.WithTracerProvider(tracerProvider))

	terminationContext, terminationGroup := global.InstallGracefulTerminationHandler(config.Global.GetGracefulShutdownTimeout())
	if err := bb_http.NewServersFromConfigurationAndServe(terminationContext, config.HTTPServers, handler, terminationGroup); err != nil {
		log.Fatal("Failed to create HTTP servers: ", err)
	}
	global.ServeDiagnostics(terminationContext, terminationGroup, diagnosticsServer)
	diagnosticsServer.SetReady()

	// Servers only stop without an error after a termination signal
	// is received. The graceful termination handler then raises the
	// signal again to terminate the process.
	if err := terminationGroup.Wait(); err != nil {
		log.Fatal(err)
	}
	select {}
}
