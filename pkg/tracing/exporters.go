package tracing

import (
	"fmt"
	"net/http"
	"strings"

	"contrib.go.opencensus.io/exporter/aws"
	"contrib.go.opencensus.io/exporter/jaeger"
	"contrib.go.opencensus.io/exporter/prometheus"
	"contrib.go.opencensus.io/exporter/stackdriver"
	"contrib.go.opencensus.io/exporter/zipkin"
	"contrib.go.opencensus.io/integrations/ocsql"
	datadog "github.com/DataDog/opencensus-go-exporter-datadog"
	zipkinhttp "github.com/openzipkin/zipkin-go/reporter/http"
	"go.opencensus.io/plugin/ochttp"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/trace"

	"github.com/listingdeck/listingdeck/config"
	"github.com/listingdeck/listingdeck/pkg/logger"
)

// Exporters holds what InitTracing registered with OpenCensus
type Exporters struct {
	// MetricsHandler serves OpenCensus views in Prometheus format.
	// Nil unless the prometheus metrics exporter is configured.
	MetricsHandler http.Handler

	flushers []func()
}

// Flush pushes buffered spans and stats out of every exporter
func (e *Exporters) Flush() {
	if e == nil {
		return
	}
	for _, flush := range e.flushers {
		flush()
	}
}

// InitTracing configures sampling, exporters and views from cfg.
// It returns an empty Exporters when tracing is disabled.
func InitTracing(cfg *config.TracingConfig, log logger.Logger) (*Exporters, error) {
	exporters := &Exporters{}
	if !cfg.Enabled {
		return exporters, nil
	}

	trace.ApplyConfig(trace.Config{
		DefaultSampler: trace.ProbabilitySampler(cfg.SamplingProbability),
	})

	if err := exporters.initTraceExporter(cfg, log); err != nil {
		return nil, err
	}
	if err := exporters.initMetricsExporters(cfg, log); err != nil {
		return nil, err
	}

	if err := registerViews(); err != nil {
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"trace_exporter":   cfg.TraceExporter,
		"metrics_exporter": cfg.MetricsExporter,
		"sampling":         cfg.SamplingProbability,
	}).Info("OpenCensus initialized")
	return exporters, nil
}

func registerViews() error {
	if err := view.Register(ochttp.DefaultServerViews...); err != nil {
		return fmt.Errorf("failed to register HTTP server views: %w", err)
	}
	if err := view.Register(ochttp.DefaultClientViews...); err != nil {
		return fmt.Errorf("failed to register HTTP client views: %w", err)
	}
	if err := view.Register(ocsql.DefaultViews...); err != nil {
		return fmt.Errorf("failed to register database views: %w", err)
	}
	return nil
}

func (e *Exporters) initTraceExporter(cfg *config.TracingConfig, log logger.Logger) error {
	var (
		exporter trace.Exporter
		err      error
	)

	switch cfg.TraceExporter {
	case "none", "":
		log.Info("No trace exporter configured")
		return nil
	case "jaeger":
		exporter, err = newJaegerExporter(cfg)
	case "zipkin":
		exporter, err = newZipkinExporter(cfg)
	case "stackdriver":
		exporter, err = newStackdriverExporter(cfg, log)
	case "datadog":
		exporter, err = newDatadogExporter(cfg, log)
	case "xray":
		exporter, err = newXRayExporter(cfg)
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	if err != nil {
		return err
	}

	trace.RegisterExporter(exporter)
	e.trackFlush(exporter)
	log.WithField("exporter", cfg.TraceExporter).Info("Trace exporter registered")
	return nil
}

// initMetricsExporters accepts a comma separated list of exporters
func (e *Exporters) initMetricsExporters(cfg *config.TracingConfig, log logger.Logger) error {
	for _, name := range strings.Split(cfg.MetricsExporter, ",") {
		name = strings.TrimSpace(name)

		var (
			exporter view.Exporter
			err      error
		)
		switch name {
		case "", "none":
			continue
		case "prometheus":
			var pe *prometheus.Exporter
			pe, err = newPrometheusExporter(cfg, log)
			if err == nil {
				e.MetricsHandler = pe
				exporter = pe
			}
		case "stackdriver":
			exporter, err = newStackdriverExporter(cfg, log)
		case "datadog":
			exporter, err = newDatadogExporter(cfg, log)
		default:
			return fmt.Errorf("unsupported metrics exporter: %s", name)
		}
		if err != nil {
			return fmt.Errorf("failed to initialize %s metrics exporter: %w", name, err)
		}

		view.RegisterExporter(exporter)
		e.trackFlush(exporter)
		log.WithField("exporter", name).Info("Metrics exporter registered")
	}
	return nil
}

func (e *Exporters) trackFlush(exporter interface{}) {
	switch x := exporter.(type) {
	case interface{ Flush() }:
		e.flushers = append(e.flushers, x.Flush)
	case interface{ Stop() }:
		e.flushers = append(e.flushers, x.Stop)
	}
}

func newJaegerExporter(cfg *config.TracingConfig) (*jaeger.Exporter, error) {
	if cfg.JaegerEndpoint == "" {
		return nil, fmt.Errorf("jaeger endpoint is required for the jaeger exporter")
	}

	je, err := jaeger.NewExporter(jaeger.Options{
		CollectorEndpoint: cfg.JaegerEndpoint,
		Process: jaeger.Process{
			ServiceName: cfg.ServiceName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create jaeger exporter: %w", err)
	}
	return je, nil
}

func newZipkinExporter(cfg *config.TracingConfig) (*zipkin.Exporter, error) {
	if cfg.ZipkinEndpoint == "" {
		return nil, fmt.Errorf("zipkin endpoint is required for the zipkin exporter")
	}
	return zipkin.NewExporter(zipkinhttp.NewReporter(cfg.ZipkinEndpoint), nil), nil
}

func newStackdriverExporter(cfg *config.TracingConfig, log logger.Logger) (*stackdriver.Exporter, error) {
	if cfg.StackdriverProjectID == "" {
		return nil, fmt.Errorf("stackdriver project ID is required for the stackdriver exporter")
	}

	se, err := stackdriver.NewExporter(stackdriver.Options{
		ProjectID:    cfg.StackdriverProjectID,
		MetricPrefix: cfg.ServiceName,
		OnError: func(err error) {
			log.WithField("error", err.Error()).Error("Stackdriver exporter error")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create stackdriver exporter: %w", err)
	}
	return se, nil
}

func newDatadogExporter(cfg *config.TracingConfig, log logger.Logger) (*datadog.Exporter, error) {
	agentAddr := cfg.DatadogAgentAddress
	if agentAddr == "" {
		agentAddr = cfg.AgentEndpoint
	}
	if agentAddr == "" {
		return nil, fmt.Errorf("datadog agent address is required for the datadog exporter")
	}

	options := datadog.Options{
		Service:   cfg.ServiceName,
		TraceAddr: agentAddr,
		StatsAddr: agentAddr,
		Tags:      []string{"env:" + cfg.Environment},
		OnError: func(err error) {
			log.WithField("error", err.Error()).Error("Datadog exporter error")
		},
	}
	if cfg.DatadogAPIKey != "" {
		options.GlobalTags = map[string]interface{}{
			"api_key": cfg.DatadogAPIKey,
		}
	}

	exporter, err := datadog.NewExporter(options)
	if err != nil {
		return nil, fmt.Errorf("failed to create datadog exporter: %w", err)
	}
	return exporter, nil
}

func newXRayExporter(cfg *config.TracingConfig) (*aws.Exporter, error) {
	if cfg.XRayRegion == "" {
		return nil, fmt.Errorf("AWS region is required for the X-Ray exporter")
	}

	exporter, err := aws.NewExporter(
		aws.WithRegion(cfg.XRayRegion),
		aws.WithVersion("latest"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create X-Ray exporter: %w", err)
	}
	return exporter, nil
}

func newPrometheusExporter(cfg *config.TracingConfig, log logger.Logger) (*prometheus.Exporter, error) {
	namespace := strings.ReplaceAll(cfg.ServiceName, "-", "_")
	pe, err := prometheus.NewExporter(prometheus.Options{
		Namespace: namespace,
		OnError: func(err error) {
			log.WithField("error", err.Error()).Error("Prometheus exporter error")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	return pe, nil
}
