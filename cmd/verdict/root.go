package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ahrav/go-verdict/infrastructure/middleware"
	"github.com/ahrav/go-verdict/internal/application"
	"github.com/ahrav/go-verdict/internal/logging"
	"github.com/ahrav/go-verdict/internal/ports"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootFlags struct {
	logLevel    string
	logFormat   string
	metricsAddr string
	metricsHold bool
	trace       bool
}

// app holds the process-wide services built from the persistent flags.
type app struct {
	flags  rootFlags
	out    io.Writer
	errOut io.Writer

	logger   *slog.Logger
	tracer   trace.TracerProvider
	metrics  ports.MetricsCollector
	shutdown []func(context.Context) error
	server   *http.Server
	listener net.Listener
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "verdict",
		Short: "Compare preference aggregation with belief aggregation",
		Long: "Verdict estimates how often a group accepting a proposal by unanimous\n" +
			"individual verdicts agrees with a group accepting it on averaged beliefs.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close(cmd.Context())
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	f := root.PersistentFlags()
	f.StringVar(&a.flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	f.StringVar(&a.flags.logFormat, "log-format", logging.FormatText, "Log format (text, json)")
	f.StringVar(&a.flags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090); empty = disabled")
	f.BoolVar(&a.flags.metricsHold, "metrics-hold", false, "Keep serving metrics after the command completes until interrupted")
	f.BoolVar(&a.flags.trace, "trace", false, "Export sweep spans to stderr")

	root.AddCommand(newTrialCmd(a))
	root.AddCommand(newSweepCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

// setup builds the logger, tracer provider, and metrics sink.
func (a *app) setup(ctx context.Context) error {
	level, err := logging.ParseLevel(a.flags.logLevel)
	if err != nil {
		return err
	}
	if a.logger, err = logging.New(a.errOut, level, a.flags.logFormat); err != nil {
		return err
	}

	a.tracer = noop.NewTracerProvider()
	if a.flags.trace {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(a.errOut), stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		a.tracer = tp
		a.shutdown = append(a.shutdown, tp.Shutdown)
	}

	if a.flags.metricsAddr == "" {
		return nil
	}
	return a.serveMetrics(ctx)
}

// serveMetrics registers the sweep metrics on a private registry and
// serves it over HTTP.
func (a *app) serveMetrics(ctx context.Context) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = middleware.NewPrometheusMetrics(reg)

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", a.flags.metricsAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.flags.metricsAddr, err)
	}
	a.listener = ln

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	a.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", ln.Addr().String())

	a.shutdown = append(a.shutdown, a.server.Shutdown)
	return nil
}

// close releases everything setup created, honoring --metrics-hold.
func (a *app) close(ctx context.Context) error {
	if a.server != nil && a.flags.metricsHold {
		a.logger.Info("holding metrics endpoint open; interrupt to exit")
		<-ctx.Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	var errs []error
	for i := len(a.shutdown) - 1; i >= 0; i-- {
		if err := a.shutdown[i](shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	a.shutdown = nil
	return errors.Join(errs...)
}

// sweepOptions returns the options shared by every sweep the CLI runs.
func (a *app) sweepOptions(workers int) []application.SweepOption {
	opts := []application.SweepOption{
		application.WithWorkers(workers),
		application.WithLogger(logging.Component(a.logger, "sweep")),
		application.WithObserver(middleware.NewOTelSweepObserver(a.tracer)),
	}
	if a.metrics != nil {
		opts = append(opts, application.WithObserver(application.NewMetricsObserver(a.metrics)))
	}
	return opts
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "verdict %s\n", version)
			return err
		},
	}
}
