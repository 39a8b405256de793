package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	scheduleapi "github.com/kilianp07/chargeplan/api/schedule"
	"github.com/kilianp07/chargeplan/app/plugins"
	"github.com/kilianp07/chargeplan/config"
	"github.com/kilianp07/chargeplan/core/audit"
	"github.com/kilianp07/chargeplan/core/gateway"
	coremetrics "github.com/kilianp07/chargeplan/core/metrics"
	"github.com/kilianp07/chargeplan/core/monitoring"
	coremqtt "github.com/kilianp07/chargeplan/core/mqtt"
	"github.com/kilianp07/chargeplan/core/rules"
	"github.com/kilianp07/chargeplan/infra/chart"
	"github.com/kilianp07/chargeplan/infra/logger"
	_ "github.com/kilianp07/chargeplan/infra/metrics" // registers sink types
	infmon "github.com/kilianp07/chargeplan/infra/monitoring"
	"github.com/kilianp07/chargeplan/infra/mqtt"
	"github.com/kilianp07/chargeplan/infra/prices"
	"github.com/kilianp07/chargeplan/infra/store"
	"github.com/kilianp07/chargeplan/infra/telemetry"
)

// Service wires the schedule gateway, the HTTP API and the rule renderer.
type Service struct {
	Gateway  *gateway.Gateway
	Renderer *Renderer
	Handler  http.Handler

	cfg   *config.Config
	audit audit.Store
	sub   coremqtt.Subscriber
	log   logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := infmon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	monitoring.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	auditStore, err := plugins.OpenAuditStore(cfg.Audit)
	if err != nil {
		return nil, fmt.Errorf("audit store: %w", err)
	}

	svc := &Service{cfg: cfg, audit: auditStore, log: logg}
	if cfg.MQTT.Broker != "" {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			_ = auditStore.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.sub = client
	}

	battery, err := telemetry.Build(cfg.Battery.Sources, cfg.Battery.Timeout(), svc.sub)
	if err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("battery sources: %w", err)
	}
	svc.Renderer = &Renderer{
		RulesPath:  cfg.Rules.Path,
		OutputPath: cfg.Schedule.ConditionalPath,
		Engine:     rules.NewEngine(logger.New("rules")),
		Metrics:    sink,
		Log:        logger.New("renderer"),
	}
	if len(cfg.Battery.Sources) > 0 {
		svc.Renderer.Battery = battery
	}
	if cfg.Prices.URL != "" {
		svc.Renderer.Prices = prices.NewClient(cfg.Prices)
	}

	svc.Gateway = newGateway(cfg, auditStore, sink)
	svc.Handler = svc.router()
	return svc, nil
}

func newGateway(cfg *config.Config, auditStore audit.Store, sink coremetrics.MetricsSink) *gateway.Gateway {
	return gateway.New(
		store.NewFileStore(cfg.Schedule.Path),
		gateway.WithFragment(store.NewFileStore(cfg.Schedule.ConditionalPath)),
		gateway.WithAudit(auditStore),
		gateway.WithMetrics(sink),
		gateway.WithLogger(logger.New("gateway")),
	)
}

// OpenGateway builds only the gateway and its audit store, for one-shot
// commands. The returned func closes the audit store.
func OpenGateway(cfg *config.Config) (*gateway.Gateway, func() error, error) {
	auditStore, err := plugins.OpenAuditStore(cfg.Audit)
	if err != nil {
		return nil, nil, fmt.Errorf("audit store: %w", err)
	}
	return newGateway(cfg, auditStore, coremetrics.NopSink{}), auditStore.Close, nil
}

func (s *Service) router() http.Handler {
	r := mux.NewRouter()
	scheduleapi.NewHandler(s.Gateway, s.audit, chart.EChartsRenderer{}, logger.New("api")).Register(r)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)
	if s.cfg.HTTP.MetricsPath != "" {
		r.Handle(s.cfg.HTTP.MetricsPath, promhttp.Handler()).Methods(http.MethodGet)
	}

	var h http.Handler = r
	if len(s.cfg.HTTP.CORSOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(s.cfg.HTTP.CORSOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type"}),
		)(h)
	}
	h = handlers.LoggingHandler(os.Stdout, h)
	return handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{s.log}))(h)
}

// recoveryLogger forwards recovered panics to the log and the monitor.
type recoveryLogger struct{ log logger.Logger }

func (l recoveryLogger) Println(v ...any) {
	err := fmt.Errorf("panic: %v", fmt.Sprint(v...))
	l.log.Errorf("%v", err)
	monitoring.Capture(err, "component", "http")
}

// Run serves HTTP and, when configured, renders the rule set periodically.
// It blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if iv := s.cfg.Rules.RenderInterval(); iv > 0 {
		monitoring.Go("renderer", func() { s.Renderer.RunEvery(ctx, iv) })
	}
	if port := s.cfg.Metrics.PrometheusPort; port != "" {
		m := http.NewServeMux()
		m.Handle("/metrics", promhttp.Handler())
		monitoring.Go("metrics", func() { _ = serve(ctx, ":"+port, m, s.log) })
	}
	s.log.Infof("listening on %s", s.cfg.HTTP.Address)
	return serve(ctx, s.cfg.HTTP.Address, s.Handler, s.log)
}

func serve(ctx context.Context, addr string, h http.Handler, log logger.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		log.Errorf("http server %s: %v", addr, err)
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.sub != nil {
		s.sub.Disconnect()
	}
	monitoring.Flush(time.Duration(s.cfg.Sentry.FlushSeconds) * time.Second)
	if s.audit != nil {
		return s.audit.Close()
	}
	return nil
}
