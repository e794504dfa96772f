package global

import (
	"time"

	"github.com/buildbarn/bb-pagesim/pkg/util"
)

// Configuration of options that apply to the process as a whole,
// regardless of what the process does.
type Configuration struct {
	// Paths of files to which log output is written, in addition to
	// standard error.
	LogPaths []string `json:"logPaths"`
	// Trace spans through OpenTelemetry.
	Tracing *TracingConfiguration `json:"tracing"`
	// Periodically push metrics to a Prometheus Pushgateway.
	PrometheusPushgateway *PrometheusPushgatewayConfiguration `json:"prometheusPushgateway"`
	// Rate at which mutex contention is sampled for pprof.
	MutexProfileFraction int `json:"mutexProfileFraction"`
	// Resource limits to apply to the process, keyed by name
	// (e.g., "NOFILE").
	SetResourceLimits map[string]*SetResourceLimitConfiguration `json:"setResourceLimits"`
	// Umask to set at startup.
	SetUmask *uint32 `json:"setUmask"`
	// Web server exposing health checks, metrics and pprof.
	DiagnosticsHTTPServer *DiagnosticsHTTPServerConfiguration `json:"diagnosticsHttpServer"`
	// Maximum amount of time to wait for servers to drain after a
	// termination signal is received. Zero waits indefinitely.
	GracefulShutdownTimeout util.Duration `json:"gracefulShutdownTimeout"`
}

// GetGracefulShutdownTimeout returns the graceful shutdown timeout, or
// zero if no configuration is provided.
func (c *Configuration) GetGracefulShutdownTimeout() time.Duration {
	if c == nil {
		return 0
	}
	return c.GracefulShutdownTimeout.AsDuration()
}

// SetResourceLimitConfiguration contains the soft and hard limits of a
// single resource. Absent limits are infinite.
type SetResourceLimitConfiguration struct {
	SoftLimit *uint64 `json:"softLimit"`
	HardLimit *uint64 `json:"hardLimit"`
}

// DiagnosticsHTTPServerConfiguration contains the options of the
// diagnostics web server.
type DiagnosticsHTTPServerConfiguration struct {
	ListenAddress    string `json:"listenAddress"`
	EnablePrometheus bool   `json:"enablePrometheus"`
	EnablePprof      bool   `json:"enablePprof"`
}

// PrometheusPushgatewayConfiguration contains the options for pushing
// metrics to a Prometheus Pushgateway.
type PrometheusPushgatewayConfiguration struct {
	URL          string            `json:"url"`
	Job          string            `json:"job"`
	Grouping     map[string]string `json:"grouping"`
	PushInterval util.Duration     `json:"pushInterval"`
	// If set, only push metrics whose name matches this regular
	// expression.
	MetricNamePattern string `json:"metricNamePattern"`
}

// TracingConfiguration contains the options for OpenTelemetry tracing.
type TracingConfiguration struct {
	Backends           []TracingBackendConfiguration `json:"backends"`
	ResourceAttributes map[string]string             `json:"resourceAttributes"`
	Sampler            *SamplerConfiguration         `json:"sampler"`
}

// TracingBackendConfiguration describes where spans are exported to,
// and how they are batched.
type TracingBackendConfiguration struct {
	// Exactly one span exporter must be set.
	JaegerCollectorSpanExporter *JaegerCollectorSpanExporterConfiguration `json:"jaegerCollectorSpanExporter"`
	OTLPSpanExporter            *OTLPSpanExporterConfiguration            `json:"otlpSpanExporter"`
	// If not set, spans are exported synchronously.
	BatchSpanProcessor *BatchSpanProcessorConfiguration `json:"batchSpanProcessor"`
}

// JaegerCollectorSpanExporterConfiguration contains the address and
// credentials of a Jaeger collector.
type JaegerCollectorSpanExporterConfiguration struct {
	Endpoint string `json:"endpoint"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// OTLPSpanExporterConfiguration contains the address of an
// OpenTelemetry collector that accepts OTLP over gRPC.
type OTLPSpanExporterConfiguration struct {
	// Address of the collector, in the form accepted by
	// grpc.NewClient() (e.g., "dns:///otel-collector:4317").
	Address string `json:"address"`
	// Connect without transport security.
	Insecure bool `json:"insecure"`
}

// BatchSpanProcessorConfiguration contains the options of
// sdktrace.NewBatchSpanProcessor().
type BatchSpanProcessorConfiguration struct {
	BatchTimeout       *util.Duration `json:"batchTimeout"`
	Blocking           bool           `json:"blocking"`
	ExportTimeout      *util.Duration `json:"exportTimeout"`
	MaxExportBatchSize int            `json:"maxExportBatchSize"`
	MaxQueueSize       int            `json:"maxQueueSize"`
}

// SamplerConfiguration is a policy for deciding which traces are
// sampled. Exactly one field must be set.
type SamplerConfiguration struct {
	Always            bool                             `json:"always"`
	Never             bool                             `json:"never"`
	ParentBased       *ParentBasedSamplerConfiguration `json:"parentBased"`
	TraceIDRatioBased *float64                         `json:"traceIdRatioBased"`
	MaximumRate       *MaximumRateSamplerConfiguration `json:"maximumRate"`
}

// ParentBasedSamplerConfiguration uses different policies, depending
// on whether the parent span was sampled.
type ParentBasedSamplerConfiguration struct {
	NoParent               *SamplerConfiguration `json:"noParent"`
	LocalParentNotSampled  *SamplerConfiguration `json:"localParentNotSampled"`
	LocalParentSampled     *SamplerConfiguration `json:"localParentSampled"`
	RemoteParentNotSampled *SamplerConfiguration `json:"remoteParentNotSampled"`
	RemoteParentSampled    *SamplerConfiguration `json:"remoteParentSampled"`
}

// MaximumRateSamplerConfiguration limits the number of traces that are
// sampled per epoch.
type MaximumRateSamplerConfiguration struct {
	SamplesPerEpoch int           `json:"samplesPerEpoch"`
	EpochDuration   util.Duration `json:"epochDuration"`
}
